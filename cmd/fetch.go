package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/hexgrid"
	"github.com/sells-group/prospect-cli/internal/model"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch businesses for a hexagon from the Places API",
	Long: `Fetch nearby businesses for one hexagon cell and persist them.

The cell can be given directly with --hexagon, or derived from a coordinate
with --lat/--lng at the configured grid resolution.

Examples:
  # Fetch a specific cell
  fetch --hexagon 8828308281fffff

  # Fetch the cell containing a coordinate
  fetch --lat 40.7484 --lng -73.9857`,
	RunE: runFetch,
}

func init() {
	f := fetchCmd.Flags()
	f.String("hexagon", "", "H3 cell index to fetch")
	f.Float64("lat", 0, "latitude (used with --lng when --hexagon is not set)")
	f.Float64("lng", 0, "longitude (used with --lat when --hexagon is not set)")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("google"); err != nil {
		return err
	}

	svc, st, err := newService(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	hexagonID, _ := cmd.Flags().GetString("hexagon")
	if hexagonID == "" {
		lat, _ := cmd.Flags().GetFloat64("lat")
		lng, _ := cmd.Flags().GetFloat64("lng")
		if lat == 0 && lng == 0 {
			return eris.New("fetch: either --hexagon or --lat/--lng is required")
		}
		grid, err := hexgrid.New(cfg.Grid.Resolution)
		if err != nil {
			return err
		}
		hexagonID, err = grid.CellForLocation(model.Location{Lat: lat, Lng: lng})
		if err != nil {
			return err
		}
		zap.L().Info("resolved cell from coordinate", zap.String("hexagon_id", hexagonID))
	}

	payload, result, err := svc.FetchHexagon(ctx, hexagonID)
	if err != nil {
		return eris.Wrapf(err, "fetch: hexagon %s", hexagonID)
	}

	fmt.Printf("Hexagon:     %s\n", hexagonID)
	fmt.Printf("Businesses:  %d\n", result.BusinessesFound)
	fmt.Printf("API calls:   %d\n", result.APICalls)
	fmt.Printf("Cost:        $%.3f\n", result.CostUSD)
	if payload.AreaAnalysis != nil {
		a := payload.AreaAnalysis
		fmt.Printf("Opportunity: %d high / %d medium / %d low\n",
			a.HighOpportunity, a.MediumOpportunity, a.LowOpportunity)
	}

	return nil
}
