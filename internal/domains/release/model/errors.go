package model

import "pubops-backend/internal/shared/apperror"

func NewReleaseNotFound(id int64) *apperror.Error {
	return apperror.NotFound("RELEASE_NOT_FOUND", "Release not found").WithDetail("release_id", id)
}

func NewPriceNotFound(id int64) *apperror.Error {
	return apperror.NotFound("PRICE_NOT_FOUND", "Price not found").WithDetail("price_id", id)
}

func init() {
	apperror.RegisterConstraint("releases_isbn_key", "DUPLICATE_RELEASE_ISBN", "A release with this ISBN already exists")
	apperror.RegisterConstraint("release_prices_release_currency_key", "DUPLICATE_PRICE", "This release already has a price in that currency")
}
