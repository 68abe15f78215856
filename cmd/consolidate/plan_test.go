package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pubops-backend/internal/domains/contributor/model"
)

func TestParsePlan(t *testing.T) {
	raw := []byte(`
pairs:
  - preferred: Ann Lee
    merge_from:
      - A. Lee
      - Annie Lee
  - preferred: Bo Chen
    merge_from: [B. Chen]
`)

	plan, err := parsePlan(raw)
	require.NoError(t, err)

	assert.Equal(t, model.Plan{Pairs: []model.Pair{
		{Preferred: "Ann Lee", MergeFrom: []string{"A. Lee", "Annie Lee"}},
		{Preferred: "Bo Chen", MergeFrom: []string{"B. Chen"}},
	}}, plan)
}

func TestParsePlan_Malformed(t *testing.T) {
	_, err := parsePlan([]byte("pairs: [preferred"))
	assert.Error(t, err)
}

func TestPrintReport(t *testing.T) {
	report := &model.Report{DryRun: true, Decisions: []model.Decision{
		{Action: model.ActionMoved, Preferred: "Ann Lee", MergeFrom: "A. Lee", SourceID: 2, TargetID: 1, RoleID: 12, BookID: 50},
		{Action: model.ActionDeleted, Preferred: "Ann Lee", MergeFrom: "A. Lee", SourceID: 2, TargetID: 1, HistoryRecords: 4},
		{Action: model.ActionSkipped, Preferred: "Ann Lee", MergeFrom: "Nobody"},
	}}

	var buf bytes.Buffer
	require.NoError(t, printReport(&buf, report))

	out := buf.String()
	assert.Contains(t, out, "moved")
	assert.Contains(t, out, "Nobody")
	assert.Contains(t, out, "1 moved, 0 dropped, 1 deleted, 1 skipped (dry run, nothing written)")
}
