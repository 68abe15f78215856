package model

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"pubops-backend/internal/shared/utils"
)

// Contributor is a person profile that can hold roles on books
type Contributor struct {
	ID            int64     `json:"id"`
	PublishedName string    `json:"published_name"`
	LegalName     string    `json:"legal_name"`
	Email         *string   `json:"email"`
	Bio           *string   `json:"bio"`
	Website       *string   `json:"website"`
	CreatedBy     *int64    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedBy     *int64    `json:"updated_by"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SamePerson reports whether both name fields match after trim and case-fold
func (c Contributor) SamePerson(other Contributor) bool {
	return utils.NormalizeName(c.PublishedName) == utils.NormalizeName(other.PublishedName) &&
		utils.NormalizeName(c.LegalName) == utils.NormalizeName(other.LegalName)
}

type CreateContributorRequest struct {
	PublishedName string  `json:"published_name"`
	LegalName     string  `json:"legal_name"`
	Email         *string `json:"email"`
	Bio           *string `json:"bio"`
	Website       *string `json:"website"`
}

func (r CreateContributorRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PublishedName, validation.Required, validation.By(utils.NotBlank), validation.Length(1, 300)),
		validation.Field(&r.LegalName, validation.Length(0, 300)),
		validation.Field(&r.Email, validation.NilOrNotEmpty, is.EmailFormat),
		validation.Field(&r.Website, validation.NilOrNotEmpty, is.URL),
	)
}

func (r CreateContributorRequest) ToContributor() *Contributor {
	return &Contributor{
		PublishedName: strings.TrimSpace(r.PublishedName),
		LegalName:     strings.TrimSpace(r.LegalName),
		Email:         normalizeEmail(r.Email),
		Bio:           r.Bio,
		Website:       r.Website,
	}
}

type UpdateContributorRequest struct {
	PublishedName *string                `json:"published_name"`
	LegalName     *string                `json:"legal_name"`
	Email         utils.Optional[string] `json:"email"`
	Bio           utils.Optional[string] `json:"bio"`
	Website       utils.Optional[string] `json:"website"`
}

func (r UpdateContributorRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PublishedName, validation.NilOrNotEmpty, validation.By(utils.NotBlank), validation.Length(1, 300)),
		validation.Field(&r.LegalName, validation.Length(0, 300)),
		validation.Field(&r.Email, validation.By(utils.OptionalRule(is.EmailFormat))),
		validation.Field(&r.Website, validation.By(utils.OptionalRule(is.URL))),
	)
}

func (r UpdateContributorRequest) ApplyTo(c *Contributor) {
	if r.PublishedName != nil {
		c.PublishedName = strings.TrimSpace(*r.PublishedName)
	}
	if r.LegalName != nil {
		c.LegalName = strings.TrimSpace(*r.LegalName)
	}
	if r.Email.Set {
		c.Email = normalizeEmail(r.Email.Value)
	}
	r.Bio.ApplyTo(&c.Bio)
	r.Website.ApplyTo(&c.Website)
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	e := strings.ToLower(strings.TrimSpace(*email))
	return &e
}

// Filter narrows Find. Q matches either name.
type Filter struct {
	Q    string
	Page utils.Page
}
