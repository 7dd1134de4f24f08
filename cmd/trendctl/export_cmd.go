package main

import (
	"os"

	"trendscope-backend/dtos"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newExportCmd(root *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole catalog as a portable JSON document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := root.connect()
			if err != nil {
				return err
			}
			defer e.close()

			payload, err := e.bulk.Export(cmd.Context())
			if err != nil {
				return err
			}
			doc := dtos.ExportResponse{Success: true, Data: payload, Stats: payload.Stats()}

			if output == "" || output == "-" {
				return writeJSON(cmd.OutOrStdout(), doc)
			}
			f, err := os.Create(output)
			if err != nil {
				return errors.Wrap(err, "create output file")
			}
			defer f.Close()
			if err := writeJSON(f, doc); err != nil {
				return errors.Wrap(err, "write export")
			}
			printStats(cmd.ErrOrStderr(), "exported", doc.Stats)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (stdout when empty or -)")
	return cmd
}
