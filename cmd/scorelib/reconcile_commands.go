package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"scorelib/internal/drive"
	"scorelib/internal/reconcile"
	"scorelib/internal/workflow"
)

func newListingCommand(ctx *commandContext) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "listing",
		Short: "Show the current Drive listing per section",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service()
			if err != nil {
				return err
			}
			listing, source, err := svc.Listing(cmd.Context(), refresh)
			if err != nil {
				return err
			}
			if ctx.jsonMode() {
				return writeJSON(cmd, struct {
					Source   string            `json:"source"`
					Sections reconcile.Listing `json:"sections"`
				}{source, listing})
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(listing))
			for _, name := range svc.Vocabulary().Names() {
				files, ok := listing[name]
				if !ok {
					continue
				}
				rows = append(rows, []string{name, strconv.Itoa(len(files))})
			}
			fmt.Fprintln(out, renderTable([]string{"Section", "Files"}, rows, []columnAlignment{alignLeft, alignRight}))
			fmt.Fprintf(out, "%d files from %s\n", listing.FileCount(), source)
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Fetch from Drive even when a cached listing exists")
	return cmd
}

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var refresh bool
	var section string
	var all bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what apply would rename or move, without touching Drive",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service()
			if err != nil {
				return err
			}
			plan, err := svc.Plan(cmd.Context(), workflow.PlanRequest{Refresh: refresh, Section: section, Record: true})
			if err != nil {
				return err
			}
			if ctx.jsonMode() {
				return writeJSON(cmd, plan)
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(plan.Decisions))
			for _, d := range plan.Decisions {
				if d.Outcome == reconcile.OutcomeConforming && !all {
					continue
				}
				rows = append(rows, decisionRow(d))
			}
			if len(rows) > 0 {
				fmt.Fprintln(out, renderTable([]string{"Outcome", "Section", "Current name", "New name / reason"}, rows, nil))
			}
			printSummary(out, plan)
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Fetch from Drive even when a cached listing exists")
	cmd.Flags().StringVar(&section, "section", "", "Limit the plan to one section")
	cmd.Flags().BoolVar(&all, "all", false, "Include files that already conform")
	return cmd
}

func newApplyCommand(ctx *commandContext) *cobra.Command {
	var refresh bool
	var dryRun bool
	var section string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Rename and move non-conforming files on Drive",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service()
			if err != nil {
				return err
			}
			report, err := svc.Apply(cmd.Context(), workflow.ApplyRequest{Refresh: refresh, DryRun: dryRun, Section: section})
			if err != nil {
				return err
			}
			if ctx.jsonMode() {
				if err := writeJSON(cmd, applyJSON(report)); err != nil {
					return err
				}
			} else {
				printApplyReport(cmd.OutOrStdout(), report)
			}
			if report.Failed > 0 {
				return fmt.Errorf("%d of %d changes failed", report.Failed, len(report.Results))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Fetch from Drive even when a cached listing exists")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without calling Drive")
	cmd.Flags().StringVar(&section, "section", "", "Limit apply to one section")
	return cmd
}

func decisionRow(d reconcile.Decision) []string {
	section := d.Section
	if d.Moves() {
		section = d.ListedSection + " -> " + d.Section
	}
	detail := d.Reason
	if d.Outcome == reconcile.OutcomeRenamed {
		detail = d.NewName
	}
	return []string{string(d.Outcome), section, d.OldName, detail}
}

func printSummary(out io.Writer, plan *workflow.Plan) {
	s := plan.Summary
	fmt.Fprintf(out, "%d files (%s): %d conforming, %d to rename (%d moves), %d unresolved\n",
		s.Total, plan.Source, s.Conforming, s.Renamed, s.Moved, s.Unresolved)
	if plan.RunID != "" {
		fmt.Fprintf(out, "Run: %s\n", plan.RunID)
	}
}

func applyStatus(result drive.ApplyResult, dryRun bool) (string, string) {
	switch {
	case result.Applied:
		return "applied", ""
	case drive.IsConflict(result.Err):
		return "conflict", result.Err.Error()
	case result.Err != nil:
		return "failed", result.Err.Error()
	case dryRun:
		return "would apply", ""
	default:
		return "skipped", ""
	}
}

func printApplyReport(out io.Writer, report *workflow.ApplyReport) {
	if len(report.Results) > 0 {
		rows := make([][]string, 0, len(report.Results))
		for _, result := range report.Results {
			status, detail := applyStatus(result, report.DryRun)
			row := decisionRow(result.Decision)
			rows = append(rows, []string{status, row[1], row[2], row[3], detail})
		}
		fmt.Fprintln(out, renderTable([]string{"Result", "Section", "Old name", "New name", "Detail"}, rows, nil))
	}
	printSummary(out, report.Plan)
	if report.DryRun {
		fmt.Fprintf(out, "Dry run: %d changes planned, %d conflicts\n", len(report.Results)-report.Conflicts, report.Conflicts)
		return
	}
	fmt.Fprintf(out, "Applied %d, failed %d, conflicts %d\n", report.Applied, report.Failed, report.Conflicts)
}

type applyResultJSON struct {
	reconcile.Decision
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func applyJSON(report *workflow.ApplyReport) any {
	results := make([]applyResultJSON, 0, len(report.Results))
	for _, result := range report.Results {
		status, detail := applyStatus(result, report.DryRun)
		results = append(results, applyResultJSON{Decision: result.Decision, Status: status, Error: detail})
	}
	return struct {
		*workflow.ApplyReport
		Results []applyResultJSON `json:"results"`
	}{report, results}
}
