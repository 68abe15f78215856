package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"pubops-backend/internal/shared/apperror"
)

// Grant is one row of the ownership mapping
type Grant struct {
	UserID     int64     `json:"user_id"`
	Kind       Kind      `json:"resource_kind"`
	ResourceID int64     `json:"resource_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// UserGrants groups a user's grants by kind
type UserGrants struct {
	UserID   int64   `json:"user_id"`
	Imprints []int64 `json:"imprint_ids"`
	Books    []int64 `json:"book_ids"`
}

type ReplaceGrantsRequest struct {
	ResourceIDs []int64 `json:"resource_ids"`
}

func (r ReplaceGrantsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ResourceIDs, validation.NotNil, validation.Each(validation.Min(int64(1)))),
	)
}

// CheckRead hides resources outside the scope behind notFound
func CheckRead(allowed bool, notFound *apperror.Error) error {
	if !allowed {
		return notFound
	}
	return nil
}

// CheckWrite rejects mutations outside the scope
func CheckWrite(allowed bool) error {
	if !allowed {
		return apperror.AccessDenied()
	}
	return nil
}

func NewInvalidKind(kind string) *apperror.Error {
	return apperror.Validation("INVALID_RESOURCE_KIND", "resource kind must be imprint or book").WithDetail("kind", kind)
}

func NewUserNotFound(userID int64) *apperror.Error {
	return apperror.NotFound("USER_NOT_FOUND", "User not found").WithDetail("user_id", userID)
}

func NewUnknownResources(kind Kind, ids []int64) *apperror.Error {
	return apperror.Validation("UNKNOWN_RESOURCE", "Some resource ids do not exist").
		WithDetail("kind", kind).
		WithDetail("resource_ids", ids)
}
