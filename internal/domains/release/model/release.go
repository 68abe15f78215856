package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	bookModel "pubops-backend/internal/domains/book/model"
	"pubops-backend/internal/shared/utils"
)

type Format string

const (
	FormatHardcover Format = "hardcover"
	FormatPaperback Format = "paperback"
	FormatEbook     Format = "ebook"
	FormatAudiobook Format = "audiobook"
)

var formats = []any{FormatHardcover, FormatPaperback, FormatEbook, FormatAudiobook}

type Status string

const (
	StatusPlanned   Status = "planned"
	StatusScheduled Status = "scheduled"
	StatusReleased  Status = "released"
	StatusCancelled Status = "cancelled"
)

var statuses = []any{StatusPlanned, StatusScheduled, StatusReleased, StatusCancelled}

// Release is one sellable edition of a book
type Release struct {
	ID          int64       `json:"id"`
	BookID      int64       `json:"book_id"`
	Format      Format      `json:"format"`
	ISBN        *string     `json:"isbn"`
	ReleaseDate *utils.Date `json:"release_date"`
	Status      Status      `json:"status"`
	CreatedBy   *int64      `json:"created_by"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedBy   *int64      `json:"updated_by"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// ReleaseDetail adds the owning book's title and the release's prices
type ReleaseDetail struct {
	Release
	BookTitle string  `json:"book_title"`
	Prices    []Price `json:"prices"`
}

type CreateReleaseRequest struct {
	Format      Format      `json:"format"`
	ISBN        *string     `json:"isbn"`
	ReleaseDate *utils.Date `json:"release_date"`
	Status      Status      `json:"status"`
}

func (r CreateReleaseRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Format, validation.Required, validation.In(formats...)),
		validation.Field(&r.ISBN, validation.NilOrNotEmpty, validation.Match(bookModel.ISBNPattern)),
		validation.Field(&r.Status, validation.In(statuses...)),
	)
}

func (r CreateReleaseRequest) ToRelease(bookID int64) *Release {
	status := r.Status
	if status == "" {
		status = StatusPlanned
	}
	return &Release{
		BookID:      bookID,
		Format:      r.Format,
		ISBN:        r.ISBN,
		ReleaseDate: r.ReleaseDate,
		Status:      status,
	}
}

type UpdateReleaseRequest struct {
	Format      *Format                    `json:"format"`
	ISBN        utils.Optional[string]     `json:"isbn"`
	ReleaseDate utils.Optional[utils.Date] `json:"release_date"`
	Status      *Status                    `json:"status"`
}

func (r UpdateReleaseRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Format, validation.NilOrNotEmpty, validation.In(formats...)),
		validation.Field(&r.ISBN, validation.By(utils.OptionalRule(validation.Required, validation.Match(bookModel.ISBNPattern)))),
		validation.Field(&r.Status, validation.NilOrNotEmpty, validation.In(statuses...)),
	)
}

func (r UpdateReleaseRequest) ApplyTo(rel *Release) {
	if r.Format != nil {
		rel.Format = *r.Format
	}
	r.ISBN.ApplyTo(&rel.ISBN)
	r.ReleaseDate.ApplyTo(&rel.ReleaseDate)
	if r.Status != nil {
		rel.Status = *r.Status
	}
}
