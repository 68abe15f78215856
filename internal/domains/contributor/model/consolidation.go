package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"pubops-backend/internal/shared/utils"
)

// Plan lists the merges to perform. It is read from YAML by the CLI and
// from JSON by the admin endpoint.
type Plan struct {
	Pairs []Pair `yaml:"pairs" json:"pairs"`
}

// Pair merges every contributor published as one of MergeFrom into the
// single contributor published as Preferred.
type Pair struct {
	Preferred string   `yaml:"preferred" json:"preferred"`
	MergeFrom []string `yaml:"merge_from" json:"merge_from"`
}

func (p Plan) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Pairs, validation.Required),
	)
}

func (p Pair) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Preferred, validation.Required, validation.By(utils.NotBlank)),
		validation.Field(&p.MergeFrom, validation.Required, validation.Each(validation.Required, validation.By(utils.NotBlank))),
	)
}

// Action is what consolidation did with one item
type Action string

const (
	// ActionMoved re-pointed a role assignment to the preferred contributor
	ActionMoved Action = "moved"
	// ActionDropped deleted a role assignment the preferred contributor already held
	ActionDropped Action = "dropped"
	// ActionDeleted removed the duplicate contributor
	ActionDeleted Action = "deleted"
	// ActionSkipped means a merge-from name matched no contributor
	ActionSkipped Action = "skipped"
)

// Decision is one logged consolidation step
type Decision struct {
	Action         Action `json:"action"`
	Preferred      string `json:"preferred"`
	MergeFrom      string `json:"merge_from"`
	SourceID       int64  `json:"source_id,omitempty"`
	TargetID       int64  `json:"target_id,omitempty"`
	RoleID         int64  `json:"role_id,omitempty"`
	BookID         int64  `json:"book_id,omitempty"`
	Role           Role   `json:"role,omitempty"`
	HistoryRecords int64  `json:"history_records,omitempty"`
}

// Report is the outcome of one consolidation run
type Report struct {
	DryRun    bool       `json:"dry_run"`
	Decisions []Decision `json:"decisions"`
}

// Count returns how many decisions took action a
func (r Report) Count(a Action) int {
	n := 0
	for _, d := range r.Decisions {
		if d.Action == a {
			n++
		}
	}
	return n
}

// ConsolidateRequest is the body of the admin endpoint
type ConsolidateRequest struct {
	Plan   Plan `json:"plan"`
	DryRun bool `json:"dry_run"`
}

func (r ConsolidateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Plan),
	)
}

// ConsolidateTask is the payload of the background consolidation job
type ConsolidateTask struct {
	Plan        Plan  `json:"plan"`
	DryRun      bool  `json:"dry_run"`
	RequestedBy int64 `json:"requested_by"`
}
