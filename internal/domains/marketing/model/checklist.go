package model

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"pubops-backend/internal/shared/apperror"
	"pubops-backend/internal/shared/utils"
)

// ChecklistItem is one marketing task for a book
type ChecklistItem struct {
	ID          int64       `json:"id"`
	BookID      int64       `json:"book_id"`
	Task        string      `json:"task"`
	DueDate     *utils.Date `json:"due_date"`
	Completed   bool        `json:"completed"`
	CompletedAt *time.Time  `json:"completed_at"`
	Notes       *string     `json:"notes"`
	CreatedBy   *int64      `json:"created_by"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedBy   *int64      `json:"updated_by"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// SetCompleted flips the flag and keeps CompletedAt in step with it
func (i *ChecklistItem) SetCompleted(done bool, now time.Time) {
	if done == i.Completed {
		return
	}
	i.Completed = done
	if done {
		t := now.UTC().Truncate(time.Second)
		i.CompletedAt = &t
	} else {
		i.CompletedAt = nil
	}
}

type CreateItemRequest struct {
	Task      string      `json:"task"`
	DueDate   *utils.Date `json:"due_date"`
	Completed bool        `json:"completed"`
	Notes     *string     `json:"notes"`
}

func (r CreateItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Task, validation.Required, validation.By(utils.NotBlank), validation.Length(1, 500)),
		validation.Field(&r.Notes, validation.Length(0, 5000)),
	)
}

func (r CreateItemRequest) ToItem(bookID int64, now time.Time) *ChecklistItem {
	item := &ChecklistItem{
		BookID:  bookID,
		Task:    strings.TrimSpace(r.Task),
		DueDate: r.DueDate,
		Notes:   r.Notes,
	}
	item.SetCompleted(r.Completed, now)
	return item
}

type UpdateItemRequest struct {
	Task      *string                    `json:"task"`
	DueDate   utils.Optional[utils.Date] `json:"due_date"`
	Completed *bool                      `json:"completed"`
	Notes     utils.Optional[string]     `json:"notes"`
}

func (r UpdateItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Task, validation.NilOrNotEmpty, validation.By(utils.NotBlank), validation.Length(1, 500)),
		validation.Field(&r.Notes, validation.By(utils.OptionalRule(validation.Length(0, 5000)))),
	)
}

func (r UpdateItemRequest) ApplyTo(item *ChecklistItem, now time.Time) {
	if r.Task != nil {
		item.Task = strings.TrimSpace(*r.Task)
	}
	r.DueDate.ApplyTo(&item.DueDate)
	if r.Completed != nil {
		item.SetCompleted(*r.Completed, now)
	}
	r.Notes.ApplyTo(&item.Notes)
}

func NewItemNotFound(id int64) *apperror.Error {
	return apperror.NotFound("CHECKLIST_ITEM_NOT_FOUND", "Checklist item not found").WithDetail("item_id", id)
}
