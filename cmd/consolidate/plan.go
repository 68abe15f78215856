package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"pubops-backend/internal/domains/contributor/model"
)

// loadPlan reads a YAML merge plan:
//
//	pairs:
//	  - preferred: Ann Lee
//	    merge_from: [A. Lee, Annie Lee]
func loadPlan(path string) (model.Plan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Plan{}, fmt.Errorf("reading plan: %w", err)
	}
	return parsePlan(raw)
}

func parsePlan(raw []byte) (model.Plan, error) {
	var plan model.Plan
	if err := yaml.Unmarshal(raw, &plan); err != nil {
		return model.Plan{}, fmt.Errorf("parsing plan: %w", err)
	}
	return plan, nil
}

// printReport writes one line per decision followed by the totals
func printReport(w io.Writer, report *model.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ACTION\tPREFERRED\tMERGE FROM\tSOURCE\tTARGET\tROLE ID\tBOOK\tHISTORY")
	for _, d := range report.Decisions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
			d.Action, d.Preferred, d.MergeFrom, d.SourceID, d.TargetID, d.RoleID, d.BookID, d.HistoryRecords)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	mode := "applied"
	if report.DryRun {
		mode = "dry run, nothing written"
	}
	_, err := fmt.Fprintf(w, "\n%d moved, %d dropped, %d deleted, %d skipped (%s)\n",
		report.Count(model.ActionMoved),
		report.Count(model.ActionDropped),
		report.Count(model.ActionDeleted),
		report.Count(model.ActionSkipped),
		mode,
	)
	return err
}
