package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export <hexagon-id>",
	Short: "Export a hexagon's analyzed businesses to an XLSX workbook",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringP("out", "f", "", "output file path (default <hexagon-id>.xlsx)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	hexagonID := args[0]

	svc, st, err := newService(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	payload, err := svc.GetHexagon(ctx, hexagonID)
	if err != nil {
		return eris.Wrapf(err, "export: hexagon %s", hexagonID)
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = hexagonID + ".xlsx"
	}

	if err := export.WriteXLSX(payload, out); err != nil {
		return err
	}

	fmt.Printf("Wrote %d businesses to %s\n", len(payload.Businesses), out)
	return nil
}
