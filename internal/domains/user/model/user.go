package model

import (
	"time"

	accessModel "pubops-backend/internal/domains/access/model"
)

// User is a staff account. Authentication happens upstream; this service
// only reads the profile.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Me is the caller's profile with the scopes resolved for this request.
// An unrestricted scope serializes as "*".
type Me struct {
	ID                int64             `json:"id"`
	Email             string            `json:"email"`
	FullName          string            `json:"full_name"`
	Roles             []string          `json:"roles"`
	AllowedImprintIDs accessModel.Scope `json:"allowed_imprint_ids"`
	AllowedBookIDs    accessModel.Scope `json:"allowed_book_ids"`
}
