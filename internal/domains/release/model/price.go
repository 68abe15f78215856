package model

import (
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Price is the list price of a release in one currency
type Price struct {
	ID        int64           `json:"id"`
	ReleaseID int64           `json:"release_id"`
	Currency  string          `json:"currency"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedBy *int64          `json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedBy *int64          `json:"updated_by"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type CreatePriceRequest struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

func (r CreatePriceRequest) Validate() error {
	r.Currency = normalizeCurrency(r.Currency)
	return validation.ValidateStruct(&r,
		validation.Field(&r.Currency, validation.Required, validation.Match(currencyPattern)),
		validation.Field(&r.Amount, validation.By(positiveAmount)),
	)
}

func (r CreatePriceRequest) ToPrice(releaseID int64) *Price {
	return &Price{
		ReleaseID: releaseID,
		Currency:  normalizeCurrency(r.Currency),
		Amount:    r.Amount.Round(2),
	}
}

type UpdatePriceRequest struct {
	Currency *string          `json:"currency"`
	Amount   *decimal.Decimal `json:"amount"`
}

func (r UpdatePriceRequest) Validate() error {
	if r.Currency != nil {
		c := normalizeCurrency(*r.Currency)
		r.Currency = &c
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Currency, validation.NilOrNotEmpty, validation.Match(currencyPattern)),
		validation.Field(&r.Amount, validation.By(positiveAmount)),
	)
}

func (r UpdatePriceRequest) ApplyTo(p *Price) {
	if r.Currency != nil {
		p.Currency = normalizeCurrency(*r.Currency)
	}
	if r.Amount != nil {
		p.Amount = r.Amount.Round(2)
	}
}

func normalizeCurrency(c string) string {
	return strings.ToUpper(strings.TrimSpace(c))
}

func positiveAmount(v any) error {
	var d decimal.Decimal
	switch a := v.(type) {
	case decimal.Decimal:
		d = a
	case *decimal.Decimal:
		if a == nil {
			return nil
		}
		d = *a
	default:
		return nil
	}
	if !d.IsPositive() {
		return validation.NewError("validation_amount_positive", "must be greater than zero")
	}
	return nil
}
