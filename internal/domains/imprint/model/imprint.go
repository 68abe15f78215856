package model

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"pubops-backend/internal/shared/apperror"
	"pubops-backend/internal/shared/utils"
)

// Imprint is a publishing vendor. Books belong to exactly one imprint.
type Imprint struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	AccountingCode string    `json:"accounting_code"`
	IsActive       bool      `json:"is_active"`
	CreatedBy      *int64    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedBy      *int64    `json:"updated_by"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type CreateImprintRequest struct {
	Name           string `json:"name"`
	AccountingCode string `json:"accounting_code"`
	IsActive       *bool  `json:"is_active"`
}

func (r CreateImprintRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.By(utils.NotBlank), validation.Length(1, 200)),
		validation.Field(&r.AccountingCode, validation.Required, validation.By(utils.NotBlank), validation.Length(1, 50), is.PrintableASCII),
	)
}

// ToImprint builds the row to insert
func (r CreateImprintRequest) ToImprint() *Imprint {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &Imprint{
		Name:           strings.TrimSpace(r.Name),
		AccountingCode: strings.TrimSpace(r.AccountingCode),
		IsActive:       active,
	}
}

// UpdateImprintRequest is a partial update; nil fields are left alone
type UpdateImprintRequest struct {
	Name           *string `json:"name"`
	AccountingCode *string `json:"accounting_code"`
	IsActive       *bool   `json:"is_active"`
}

func (r UpdateImprintRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.By(utils.NotBlank), validation.Length(1, 200)),
		validation.Field(&r.AccountingCode, validation.NilOrNotEmpty, validation.By(utils.NotBlank), validation.Length(1, 50), is.PrintableASCII),
	)
}

func (r UpdateImprintRequest) ApplyTo(imp *Imprint) {
	if r.Name != nil {
		imp.Name = strings.TrimSpace(*r.Name)
	}
	if r.AccountingCode != nil {
		imp.AccountingCode = strings.TrimSpace(*r.AccountingCode)
	}
	if r.IsActive != nil {
		imp.IsActive = *r.IsActive
	}
}

// Filter narrows Find. Q matches name or accounting code.
type Filter struct {
	Q      string
	Active *bool
	Page   utils.Page
}

// ============================================
// Errors
// ============================================

func NewImprintNotFound(id int64) *apperror.Error {
	return apperror.NotFound("IMPRINT_NOT_FOUND", "Imprint not found").WithDetail("imprint_id", id)
}

func init() {
	apperror.RegisterConstraint("imprints_accounting_code_key", "DUPLICATE_ACCOUNTING_CODE", "An imprint with this accounting code already exists")
	apperror.RegisterConstraint("books_fk_imprint_fkey", "IMPRINT_HAS_BOOKS", "Imprint still has books")
}
