package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"scorelib/internal/catalog"
	"scorelib/internal/fileutil"
	"scorelib/internal/scoreinfo"
	"scorelib/internal/workflow"
)

type importFlags struct {
	name       string
	folderID   string
	arranger   string
	current    bool
	keepSource bool
}

func (f *importFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Catalog name (defaults to the project title)")
	cmd.Flags().StringVar(&f.folderID, "folder", "", "Drive folder holding the piece's parts")
	cmd.Flags().StringVar(&f.arranger, "arranger", "", "Arranger credit")
	cmd.Flags().BoolVar(&f.current, "current", false, "Mark the piece as current repertoire")
	cmd.Flags().BoolVar(&f.keepSource, "keep-source", false, "Store the project file in the catalog")
}

func (f *importFlags) request(cmd *cobra.Command) workflow.ImportRequest {
	req := workflow.ImportRequest{
		Name:          f.name,
		DriveFolderID: f.folderID,
		Arranger:      f.arranger,
		KeepSource:    f.keepSource,
	}
	if cmd.Flags().Changed("current") {
		current := f.current
		req.Current = &current
	}
	return req
}

func newPieceCommand(ctx *commandContext) *cobra.Command {
	pieceCmd := &cobra.Command{
		Use:   "piece",
		Short: "Import and manage catalog pieces",
	}

	pieceCmd.AddCommand(newPieceImportCommand(ctx))
	pieceCmd.AddCommand(newPieceFetchCommand(ctx))
	pieceCmd.AddCommand(newPieceInspectCommand(ctx))
	pieceCmd.AddCommand(newPieceCurrentCommand(ctx))
	pieceCmd.AddCommand(newPieceSourceCommand(ctx))

	return pieceCmd
}

func newPieceImportCommand(ctx *commandContext) *cobra.Command {
	var flags importFlags

	cmd := &cobra.Command{
		Use:   "import <file.dorico>",
		Short: "Read a Dorico project and add it to the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service()
			if err != nil {
				return err
			}
			req := flags.request(cmd)
			req.Path = args[0]
			result, err := svc.ImportPiece(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printImport(cmd, ctx, result)
		},
	}
	flags.register(cmd)
	return cmd
}

func newPieceFetchCommand(ctx *commandContext) *cobra.Command {
	var flags importFlags

	cmd := &cobra.Command{
		Use:   "fetch <drive-file-id>",
		Short: "Download a Dorico project from Drive and add it to the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service()
			if err != nil {
				return err
			}
			result, err := svc.FetchPiece(cmd.Context(), args[0], flags.request(cmd))
			if err != nil {
				return err
			}
			return printImport(cmd, ctx, result)
		},
	}
	flags.register(cmd)
	return cmd
}

func printImport(cmd *cobra.Command, ctx *commandContext, result *workflow.ImportResult) error {
	if ctx.jsonMode() {
		return writeJSON(cmd, result)
	}
	out := cmd.OutOrStdout()
	piece := result.Piece
	fmt.Fprintf(out, "Imported piece %d: %s\n", piece.ID, piece.Name)
	fmt.Fprintf(out, "Composer: %s\n", dash(piece.Composer))
	fmt.Fprintf(out, "Current:  %s\n", yesNo(piece.IsCurrentRepertoire))
	for _, warning := range result.Warnings {
		fmt.Fprintf(out, "Warning: %s\n", warning)
	}
	return nil
}

func newPieceInspectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "inspect <file.dorico>",
		Short:       "Print the title and composer stored in a Dorico project",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := scoreinfo.Extract(args[0])
			var missing *scoreinfo.MissingFieldError
			if err != nil && !errors.As(err, &missing) {
				return err
			}
			if ctx.jsonMode() {
				return writeJSON(cmd, meta)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Title:    %s\n", dash(meta.Title))
			fmt.Fprintf(out, "Composer: %s\n", dash(meta.Composer))
			fmt.Fprintf(out, "Entry:    %s\n", meta.Entry)
			if missing != nil {
				fmt.Fprintf(out, "Warning: %v\n", missing)
			}
			return nil
		},
	}
}

func newPieceCurrentCommand(ctx *commandContext) *cobra.Command {
	var off bool

	cmd := &cobra.Command{
		Use:   "current <id|name>",
		Short: "Mark a piece as current repertoire",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.catalog()
			if err != nil {
				return err
			}
			piece, err := resolvePiece(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}
			if err := store.SetCurrentRepertoire(cmd.Context(), piece.ID, !off); err != nil {
				return err
			}
			state := "now"
			if off {
				state = "no longer"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is %s current repertoire\n", piece.Name, state)
			return nil
		},
	}
	cmd.Flags().BoolVar(&off, "off", false, "Remove the piece from current repertoire")
	return cmd
}

func newPieceSourceCommand(ctx *commandContext) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "source <id|name>",
		Short: "Write a piece's stored project file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(outPath) == "" {
				return errors.New("--out is required")
			}
			store, err := ctx.catalog()
			if err != nil {
				return err
			}
			piece, err := resolvePiece(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}
			data, err := store.PieceSource(cmd.Context(), piece.ID)
			if err != nil {
				return err
			}
			if len(data) == 0 {
				return fmt.Errorf("%s has no stored source; re-import with --keep-source", piece.Name)
			}
			if err := fileutil.WriteFileAtomic(outPath, data, 0o644); err != nil {
				return fmt.Errorf("write source: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", outPath, humanize.Bytes(uint64(len(data))))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Destination file")
	return cmd
}

func newPiecesCommand(ctx *commandContext) *cobra.Command {
	var currentOnly bool

	cmd := &cobra.Command{
		Use:   "pieces",
		Short: "List catalog pieces",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.catalog()
			if err != nil {
				return err
			}
			pieces, err := store.ListPieces(cmd.Context(), currentOnly)
			if err != nil {
				return err
			}
			if ctx.jsonMode() {
				if pieces == nil {
					pieces = []catalog.Piece{}
				}
				return writeJSON(cmd, pieces)
			}
			printPieces(cmd.OutOrStdout(), pieces)
			return nil
		},
	}
	cmd.Flags().BoolVar(&currentOnly, "current", false, "Only list current repertoire")
	return cmd
}

func printPieces(out io.Writer, pieces []catalog.Piece) {
	if len(pieces) == 0 {
		fmt.Fprintln(out, "No pieces")
		return
	}
	rows := make([][]string, 0, len(pieces))
	for _, p := range pieces {
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10),
			p.Name,
			dash(p.Composer),
			dash(p.Arranger),
			yesNo(p.IsCurrentRepertoire),
			ago(p.UpdatedAt),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"ID", "Name", "Composer", "Arranger", "Current", "Updated"},
		rows,
		[]columnAlignment{alignRight},
	))
}

func resolvePiece(ctx context.Context, store *catalog.Store, ref string) (*catalog.Piece, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		piece, err := store.GetPiece(ctx, id)
		if err == nil || !errors.Is(err, catalog.ErrNotFound) {
			return piece, err
		}
	}
	return store.GetPieceByName(ctx, ref)
}
