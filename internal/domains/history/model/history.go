package model

import (
	"encoding/json"
	"time"

	"pubops-backend/internal/shared/apperror"
)

// Op is a JSON-Patch style operation
type Op string

const (
	OpAdd     Op = "add"
	OpReplace Op = "replace"
	OpRemove  Op = "remove"
)

func (o Op) Valid() bool {
	return o == OpAdd || o == OpReplace || o == OpRemove
}

// EntityType names the kind of entity a ChangeRecord belongs to
type EntityType string

const (
	EntityBook                EntityType = "book"
	EntityContributor         EntityType = "contributor"
	EntityImprint             EntityType = "imprint"
	EntityRelease             EntityType = "release"
	EntityPrice               EntityType = "price"
	EntityChecklistItem       EntityType = "checklist_item"
	EntityBookContributorRole EntityType = "book_contributor_role"
	EntityAttachment          EntityType = "attachment"
)

var entityTypes = map[EntityType]bool{
	EntityBook:                true,
	EntityContributor:         true,
	EntityImprint:             true,
	EntityRelease:             true,
	EntityPrice:               true,
	EntityChecklistItem:       true,
	EntityBookContributorRole: true,
	EntityAttachment:          true,
}

func (e EntityType) Valid() bool {
	return entityTypes[e]
}

// ChangeRecord is one immutable field-level change. Value is opaque JSON and
// is null for remove.
type ChangeRecord struct {
	ID         int64           `json:"id"`
	EntityType EntityType      `json:"entity_type"`
	EntityID   int64           `json:"entity_id"`
	ActorID    int64           `json:"actor_id"`
	ActorEmail string          `json:"actor_email"`
	Timestamp  time.Time       `json:"timestamp"`
	Op         Op              `json:"op"`
	Path       string          `json:"path"`
	Value      json.RawMessage `json:"value"`
}

// FieldEdit is a change before it is persisted
type FieldEdit struct {
	Path  string `json:"path"`
	Op    Op     `json:"op"`
	Value any    `json:"value,omitempty"`
}

// ============================================
// Errors
// ============================================

func NewInvalidEntityType(entityType string) *apperror.Error {
	return apperror.Validation("INVALID_ENTITY_TYPE", "Unknown entity type").WithDetail("entity_type", entityType)
}

func NewInvalidChange(reason string) *apperror.Error {
	return apperror.Validation("INVALID_CHANGE_RECORD", reason)
}

func NewEntityNotFound(entityType EntityType, id int64) *apperror.Error {
	return apperror.NotFound("ENTITY_NOT_FOUND", "Entity not found").
		WithDetail("entity_type", entityType).
		WithDetail("entity_id", id)
}

func init() {
	apperror.RegisterConstraint("history_append_only", "HISTORY_APPEND_ONLY", "History records cannot be modified")
}
