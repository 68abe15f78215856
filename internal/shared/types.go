package shared

import "slices"

// RoleAdmin grants unrestricted access to every resource kind
const RoleAdmin = "admin"

// Actor is the authenticated principal a request runs as.
// Resolved once by the auth middleware and passed explicitly to services.
type Actor struct {
	ID    int64    `json:"id"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

func (a Actor) IsAdmin() bool {
	return slices.Contains(a.Roles, RoleAdmin)
}

// Background task types processed by cmd/worker
const (
	TypeConsolidateContributors = "contributor:consolidate"
	TypeDeleteAttachmentObject  = "attachment:delete_object"
)

// Queue names
const (
	QueueDefault     = "default"
	QueueMaintenance = "maintenance"
)

// DeleteObjectPayload names either one object or a whole key prefix to remove
type DeleteObjectPayload struct {
	ObjectKey string `json:"object_key,omitempty"`
	Prefix    string `json:"prefix,omitempty"`
}
