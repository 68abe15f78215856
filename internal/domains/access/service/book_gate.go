package service

import (
	"context"

	"pubops-backend/internal/domains/access/model"
	bookModel "pubops-backend/internal/domains/book/model"
	"pubops-backend/internal/shared"
)

// BookLocator reports which imprint owns a book
type BookLocator interface {
	BookImprint(ctx context.Context, bookID int64) (imprintID int64, found bool, err error)
}

// BookGate authorizes access to a book and to the rows that hang off it
// (releases, checklist items, attachments).
type BookGate struct {
	resolver ScopeResolver
	books    BookLocator
}

func NewBookGate(resolver ScopeResolver, books BookLocator) *BookGate {
	return &BookGate{resolver: resolver, books: books}
}

// Read fails with BOOK_NOT_FOUND when the book is missing or outside the
// actor's scope
func (g *BookGate) Read(ctx context.Context, actor shared.Actor, bookID int64) error {
	allowed, err := g.allows(ctx, actor, bookID)
	if err != nil {
		return err
	}
	return model.CheckRead(allowed, bookModel.NewBookNotFound(bookID))
}

// Write fails with BOOK_NOT_FOUND when the book is missing and
// ACCESS_DENIED when it is outside the actor's scope
func (g *BookGate) Write(ctx context.Context, actor shared.Actor, bookID int64) error {
	allowed, err := g.allows(ctx, actor, bookID)
	if err != nil {
		return err
	}
	return model.CheckWrite(allowed)
}

func (g *BookGate) allows(ctx context.Context, actor shared.Actor, bookID int64) (bool, error) {
	imprintID, found, err := g.books.BookImprint(ctx, bookID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, bookModel.NewBookNotFound(bookID)
	}

	scope, err := g.resolver.ResolveBooks(ctx, actor)
	if err != nil {
		return false, err
	}
	return scope.Allows(bookID, imprintID), nil
}
