package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newSectionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sections",
		Short: "List the instrument sections and their aliases in match order",
		RunE: func(cmd *cobra.Command, args []string) error {
			vocab, err := ctx.vocabulary()
			if err != nil {
				return err
			}
			sections := vocab.Sections()
			if ctx.jsonMode() {
				return writeJSON(cmd, sections)
			}
			rows := make([][]string, 0, len(sections))
			for i, sec := range sections {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					sec.Name,
					dash(sec.FolderID),
					strings.Join(sec.Aliases, ", "),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Section", "Folder", "Aliases"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
