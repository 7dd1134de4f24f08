package main

import (
	"io"
	"os"

	"trendscope-backend/dtos"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newImportCmd(root *rootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Upsert a document produced by export (use - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return errors.Wrap(err, "open import file")
				}
				defer f.Close()
				r = f
			}

			payload, err := dtos.DecodeBulkPayload(r)
			if err != nil {
				return errors.Wrap(err, "decode import file")
			}
			if dryRun {
				if err := validatePayload(payload); err != nil {
					return err
				}
				printStats(cmd.OutOrStdout(), "valid", payload.Stats())
				return nil
			}

			e, err := root.connect()
			if err != nil {
				return err
			}
			defer e.close()

			stats, err := e.bulk.Import(cmd.Context(), payload)
			if err != nil {
				return describe(err)
			}
			e.tree.Invalidate(cmd.Context())
			printStats(cmd.OutOrStdout(), "imported", stats)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only validate the file")
	return cmd
}
