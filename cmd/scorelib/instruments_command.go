package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newInstrumentsCommand(ctx *commandContext) *cobra.Command {
	instrumentsCmd := &cobra.Command{
		Use:   "instruments",
		Short: "Manage the catalog's instrument records",
	}

	instrumentsCmd.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Mirror the configured sections into the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service()
			if err != nil {
				return err
			}
			n, err := svc.SyncInstruments(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.jsonMode() {
				return writeJSON(cmd, map[string]int{"instruments": n})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Synced %d instruments\n", n)
			return nil
		},
	})

	instrumentsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List instruments stored in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.catalog()
			if err != nil {
				return err
			}
			instruments, err := store.ListInstruments(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.jsonMode() {
				return writeJSON(cmd, instruments)
			}
			out := cmd.OutOrStdout()
			if len(instruments) == 0 {
				fmt.Fprintln(out, "No instruments stored; run 'scorelib instruments sync'")
				return nil
			}
			rows := make([][]string, 0, len(instruments))
			for _, inst := range instruments {
				rows = append(rows, []string{strconv.Itoa(inst.Position + 1), inst.Name, strings.Join(inst.Variants, ", ")})
			}
			fmt.Fprintln(out, renderTable([]string{"#", "Instrument", "Variants"}, rows, []columnAlignment{alignRight}))
			return nil
		},
	})

	return instrumentsCmd
}
