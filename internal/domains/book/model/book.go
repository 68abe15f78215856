package model

import (
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"pubops-backend/internal/shared/apperror"
	"pubops-backend/internal/shared/utils"
)

type Status string

const (
	StatusPlanned      Status = "planned"
	StatusInProduction Status = "in_production"
	StatusPublished    Status = "published"
	StatusOutOfPrint   Status = "out_of_print"
)

var statuses = []any{StatusPlanned, StatusInProduction, StatusPublished, StatusOutOfPrint}

// ISBNPattern accepts ISBN-10 and ISBN-13 with optional hyphens
var ISBNPattern = regexp.MustCompile(`^(97[89][-]?)?\d{1,5}[-]?\d{1,7}[-]?\d{1,7}[-]?[\dX]$`)

type Book struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Subtitle    *string     `json:"subtitle"`
	ISBN        *string     `json:"isbn"`
	ImprintID   int64       `json:"fk_imprint"`
	Status      Status      `json:"status"`
	PubDate     *utils.Date `json:"pub_date"`
	PageCount   *int        `json:"page_count"`
	Keywords    []string    `json:"keywords"`
	Description *string     `json:"description"`
	CreatedBy   *int64      `json:"created_by"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedBy   *int64      `json:"updated_by"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// BookDetail is a book plus the fields resolved by joins
type BookDetail struct {
	Book
	ImprintName string `json:"imprint_name"`
}

type CreateBookRequest struct {
	Title       string      `json:"title"`
	Subtitle    *string     `json:"subtitle"`
	ISBN        *string     `json:"isbn"`
	ImprintID   int64       `json:"fk_imprint"`
	Status      Status      `json:"status"`
	PubDate     *utils.Date `json:"pub_date"`
	PageCount   *int        `json:"page_count"`
	Keywords    []string    `json:"keywords"`
	Description *string     `json:"description"`
}

func (r CreateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.By(utils.NotBlank), validation.Length(1, 500)),
		validation.Field(&r.ISBN, validation.NilOrNotEmpty, validation.Match(ISBNPattern)),
		validation.Field(&r.ImprintID, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.Status, validation.In(statuses...)),
		validation.Field(&r.PageCount, validation.NilOrNotEmpty, validation.Min(1)),
		validation.Field(&r.Keywords, validation.Each(validation.Required, validation.Length(1, 100))),
	)
}

func (r CreateBookRequest) ToBook() *Book {
	status := r.Status
	if status == "" {
		status = StatusPlanned
	}
	keywords := r.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return &Book{
		Title:       strings.TrimSpace(r.Title),
		Subtitle:    r.Subtitle,
		ISBN:        r.ISBN,
		ImprintID:   r.ImprintID,
		Status:      status,
		PubDate:     r.PubDate,
		PageCount:   r.PageCount,
		Keywords:    keywords,
		Description: r.Description,
	}
}

// UpdateBookRequest is a partial update. Nullable columns are cleared by
// sending an explicit null, so they use Optional.
type UpdateBookRequest struct {
	Title       *string                    `json:"title"`
	Subtitle    utils.Optional[string]     `json:"subtitle"`
	ISBN        utils.Optional[string]     `json:"isbn"`
	ImprintID   *int64                     `json:"fk_imprint"`
	Status      *Status                    `json:"status"`
	PubDate     utils.Optional[utils.Date] `json:"pub_date"`
	PageCount   utils.Optional[int]        `json:"page_count"`
	Keywords    *[]string                  `json:"keywords"`
	Description utils.Optional[string]     `json:"description"`
}

func (r UpdateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.By(utils.NotBlank), validation.Length(1, 500)),
		validation.Field(&r.ISBN, validation.By(utils.OptionalRule(validation.Required, validation.Match(ISBNPattern)))),
		validation.Field(&r.ImprintID, validation.NilOrNotEmpty, validation.Min(int64(1))),
		validation.Field(&r.Status, validation.NilOrNotEmpty, validation.In(statuses...)),
		validation.Field(&r.PageCount, validation.By(utils.OptionalRule(validation.Min(1)))),
		validation.Field(&r.Keywords, validation.By(func(v any) error {
			kw, _ := v.(*[]string)
			if kw == nil {
				return nil
			}
			return validation.Validate(*kw, validation.Each(validation.Required, validation.Length(1, 100)))
		})),
	)
}

// ApplyTo copies the fields present in the request onto b
func (r UpdateBookRequest) ApplyTo(b *Book) {
	if r.Title != nil {
		b.Title = strings.TrimSpace(*r.Title)
	}
	r.Subtitle.ApplyTo(&b.Subtitle)
	r.ISBN.ApplyTo(&b.ISBN)
	if r.ImprintID != nil {
		b.ImprintID = *r.ImprintID
	}
	if r.Status != nil {
		b.Status = *r.Status
	}
	r.PubDate.ApplyTo(&b.PubDate)
	r.PageCount.ApplyTo(&b.PageCount)
	if r.Keywords != nil {
		b.Keywords = *r.Keywords
		if b.Keywords == nil {
			b.Keywords = []string{}
		}
	}
	r.Description.ApplyTo(&b.Description)
}

// Filter narrows Find. Q is a case-insensitive title search.
type Filter struct {
	ImprintID int64
	Status    Status
	Q         string
	Page      utils.Page
}

func (f Filter) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Status, validation.In(statuses...)),
	)
}

// ============================================
// Errors
// ============================================

func NewBookNotFound(id int64) *apperror.Error {
	return apperror.NotFound("BOOK_NOT_FOUND", "Book not found").WithDetail("book_id", id)
}

func NewUnknownImprint(id int64) *apperror.Error {
	return apperror.Validation("UNKNOWN_IMPRINT", "Imprint does not exist").WithDetail("fk_imprint", id)
}

func init() {
	apperror.RegisterConstraint("books_isbn_key", "DUPLICATE_ISBN", "A book with this ISBN already exists")
}
