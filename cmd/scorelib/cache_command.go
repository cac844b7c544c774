package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the listing cache",
	}

	cacheCmd.AddCommand(newCacheShowCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the cached listing snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.listingCache()
			if err != nil {
				return err
			}
			info, err := cache.Info()
			if err != nil {
				return err
			}
			if ctx.jsonMode() {
				return writeJSON(cmd, info)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Path:     %s\n", info.Path)
			switch {
			case !info.Exists:
				fmt.Fprintln(out, "Status:   empty")
				return nil
			case !info.Valid:
				fmt.Fprintln(out, "Status:   unreadable (run 'scorelib cache clear')")
				return nil
			case info.Expired:
				fmt.Fprintln(out, "Status:   expired")
			default:
				fmt.Fprintln(out, "Status:   valid")
			}
			fmt.Fprintf(out, "Fetched:  %s (%s)\n", info.FetchedAt.Local().Format("2006-01-02 15:04"), ago(info.FetchedAt))
			fmt.Fprintf(out, "Sections: %d\n", info.Sections)
			fmt.Fprintf(out, "Files:    %d\n", info.Files)
			fmt.Fprintf(out, "Size:     %s\n", humanize.Bytes(uint64(info.SizeBytes)))
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the cached listing so the next run fetches from Drive",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.listingCache()
			if err != nil {
				return err
			}
			if err := cache.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared listing cache at %s\n", cache.Path())
			return nil
		},
	}
}
