package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/hexgrid"
)

var hexagonsCmd = &cobra.Command{
	Use:   "hexagons",
	Short: "Work with hexagon grid cells",
}

var hexagonsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List hexagons that have already been fetched",
	RunE:  runHexagonsList,
}

var hexagonsGridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Print the grid cells covering a viewport",
	Long: `Print every H3 cell at the configured resolution whose center falls
inside the bounding box given by --sw-lat/--sw-lng and --ne-lat/--ne-lng.`,
	RunE: runHexagonsGrid,
}

func init() {
	f := hexagonsGridCmd.Flags()
	f.Float64("sw-lat", 0, "south-west corner latitude")
	f.Float64("sw-lng", 0, "south-west corner longitude")
	f.Float64("ne-lat", 0, "north-east corner latitude")
	f.Float64("ne-lng", 0, "north-east corner longitude")
	for _, name := range []string{"sw-lat", "sw-lng", "ne-lat", "ne-lng"} {
		if err := hexagonsGridCmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}

	hexagonsCmd.AddCommand(hexagonsListCmd)
	hexagonsCmd.AddCommand(hexagonsGridCmd)
	rootCmd.AddCommand(hexagonsCmd)
}

func runHexagonsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	fetched, empty, err := st.ListHexagonIDs(ctx)
	if err != nil {
		return eris.Wrap(err, "hexagons: list")
	}

	fmt.Printf("Fetched hexagons (%d):\n", len(fetched))
	for _, id := range fetched {
		fmt.Printf("  %s\n", id)
	}
	fmt.Printf("Empty hexagons (%d):\n", len(empty))
	for _, id := range empty {
		fmt.Printf("  %s\n", id)
	}
	return nil
}

func runHexagonsGrid(cmd *cobra.Command, _ []string) error {
	swLat, _ := cmd.Flags().GetFloat64("sw-lat")
	swLng, _ := cmd.Flags().GetFloat64("sw-lng")
	neLat, _ := cmd.Flags().GetFloat64("ne-lat")
	neLng, _ := cmd.Flags().GetFloat64("ne-lng")

	grid, err := hexgrid.New(cfg.Grid.Resolution)
	if err != nil {
		return err
	}
	cells, err := grid.CellsForViewport(swLat, swLng, neLat, neLng)
	if err != nil {
		return err
	}
	for _, id := range cells {
		fmt.Println(id)
	}
	return nil
}
