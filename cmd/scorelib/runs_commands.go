package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"scorelib/internal/catalog"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded reconciliation runs",
	}

	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))

	return runsCmd
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.catalog()
			if err != nil {
				return err
			}
			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if ctx.jsonMode() {
				if runs == nil {
					runs = []catalog.Run{}
				}
				return writeJSON(cmd, runs)
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortID(run.ID),
					string(run.Mode),
					run.Source,
					strconv.Itoa(run.Total),
					strconv.Itoa(run.Renamed),
					strconv.Itoa(run.Unresolved),
					ago(run.CreatedAt),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Mode", "Source", "Files", "Renamed", "Unresolved", "When"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a run and its decisions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.catalog()
			if err != nil {
				return err
			}
			run, err := store.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			decisions, err := store.RunDecisions(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			if ctx.jsonMode() {
				return writeJSON(cmd, struct {
					*catalog.Run
					Decisions []catalog.DecisionRecord `json:"decisions"`
				}{run, decisions})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run:     %s\n", run.ID)
			fmt.Fprintf(out, "Mode:    %s\n", run.Mode)
			fmt.Fprintf(out, "Source:  %s\n", run.Source)
			fmt.Fprintf(out, "When:    %s (%s)\n", run.CreatedAt.Local().Format("2006-01-02 15:04:05"), ago(run.CreatedAt))
			fmt.Fprintf(out, "Files:   %d (%d conforming, %d renamed, %d moved, %d unresolved)\n",
				run.Total, run.Conforming, run.Renamed, run.Moved, run.Unresolved)
			if len(decisions) == 0 {
				return nil
			}
			rows := make([][]string, 0, len(decisions))
			for _, d := range decisions {
				detail := d.Reason
				if d.NewName != "" {
					detail = d.NewName
				}
				if d.ErrorMessage != "" {
					detail += " (" + d.ErrorMessage + ")"
				}
				rows = append(rows, []string{d.Outcome, string(d.Status), d.Section, d.OldName, detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Outcome", "Status", "Section", "Name", "New name / reason"}, rows, nil))
			return nil
		},
	}
}
