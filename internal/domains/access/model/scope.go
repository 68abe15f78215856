package model

import (
	"fmt"
	"slices"
)

// Kind names a resource family in the ownership mapping
type Kind string

const (
	KindImprint Kind = "imprint"
	KindBook    Kind = "book"
)

func (k Kind) Valid() bool {
	return k == KindImprint || k == KindBook
}

// Scope is the set of resource ids an actor may see for one Kind.
// The zero value is the empty scope, so anything not explicitly
// granted is denied.
type Scope struct {
	unrestricted bool
	ids          []int64 // sorted, unique
}

func Unrestricted() Scope {
	return Scope{unrestricted: true}
}

// Deny is the empty scope
func Deny() Scope {
	return Scope{}
}

// NewScope builds a restricted scope from ids; duplicates are dropped
func NewScope(ids []int64) Scope {
	cp := slices.Clone(ids)
	slices.Sort(cp)
	return Scope{ids: slices.Compact(cp)}
}

func (s Scope) IsUnrestricted() bool { return s.unrestricted }

func (s Scope) IsEmpty() bool { return !s.unrestricted && len(s.ids) == 0 }

func (s Scope) Allows(id int64) bool {
	if s.unrestricted {
		return true
	}
	_, found := slices.BinarySearch(s.ids, id)
	return found
}

// IDs returns the granted ids, or nil when unrestricted
func (s Scope) IDs() []int64 {
	if s.unrestricted {
		return nil
	}
	return slices.Clone(s.ids)
}

// SQL renders the scope as a predicate on column.
// Unrestricted is TRUE, empty is FALSE, otherwise column = ANY($argIndex).
func (s Scope) SQL(column string, argIndex int) (string, []any) {
	switch {
	case s.unrestricted:
		return "TRUE", nil
	case len(s.ids) == 0:
		return "FALSE", nil
	default:
		return fmt.Sprintf("%s = ANY($%d)", column, argIndex), []any{s.IDs()}
	}
}

// MarshalJSON renders "*" for unrestricted and the id list otherwise
func (s Scope) MarshalJSON() ([]byte, error) {
	if s.unrestricted {
		return []byte(`"*"`), nil
	}
	if len(s.ids) == 0 {
		return []byte(`[]`), nil
	}
	out := []byte{'['}
	for i, id := range s.ids {
		if i > 0 {
			out = append(out, ',')
		}
		out = fmt.Appendf(out, "%d", id)
	}
	return append(out, ']'), nil
}

// BookScope is what an actor may see of books: everything in an
// allowed imprint plus explicitly granted books.
type BookScope struct {
	Imprints Scope
	Books    Scope
}

func (b BookScope) IsUnrestricted() bool {
	return b.Imprints.IsUnrestricted() || b.Books.IsUnrestricted()
}

func (b BookScope) IsEmpty() bool {
	return b.Imprints.IsEmpty() && b.Books.IsEmpty()
}

func (b BookScope) Allows(bookID, imprintID int64) bool {
	return b.Imprints.Allows(imprintID) || b.Books.Allows(bookID)
}

// SQL renders the combined predicate over the book's imprint and id columns
func (b BookScope) SQL(imprintColumn, idColumn string, argIndex int) (string, []any) {
	switch {
	case b.IsUnrestricted():
		return "TRUE", nil
	case b.IsEmpty():
		return "FALSE", nil
	case b.Books.IsEmpty():
		return b.Imprints.SQL(imprintColumn, argIndex)
	case b.Imprints.IsEmpty():
		return b.Books.SQL(idColumn, argIndex)
	}

	imp, impArgs := b.Imprints.SQL(imprintColumn, argIndex)
	book, bookArgs := b.Books.SQL(idColumn, argIndex+len(impArgs))
	return fmt.Sprintf("(%s OR %s)", imp, book), append(impArgs, bookArgs...)
}
