package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/analyzer"
)

var compareCmd = &cobra.Command{
	Use:   "compare <place-id>",
	Short: "Benchmark a business's online presence against nearby competitors",
	Long: `Compare a stored business against others of the same category in its hexagon.

The presence score covers the website, reviews, photos, and contact
completeness dimensions. Competitors are ranked by their own presence score.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().IntP("top", "n", 0, "number of competitors to show (default from config)")
	compareCmd.Flags().Bool("json", false, "emit the comparison as JSON")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	placeID := args[0]

	svc, st, err := newService(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	topN, _ := cmd.Flags().GetInt("top")
	if topN <= 0 {
		topN = cfg.Analyzer.TopCompetitors
	}

	cmp, err := svc.Compare(ctx, placeID, topN)
	if err != nil {
		return eris.Wrapf(err, "compare: place %s", placeID)
	}
	if cmp == nil {
		return eris.Errorf("compare: business %s not found", placeID)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cmp)
	}

	fmt.Printf("%s\n", cmp.Business.Name)
	printPresence("  ", cmp.Presence)
	fmt.Printf("\nCompetitors (%d):\n", len(cmp.Competitors))
	for i, peer := range cmp.Competitors {
		fmt.Printf("%d. %s\n", i+1, peer.Business.Name)
		printPresence("   ", peer.Presence)
	}
	return nil
}

func printPresence(indent string, p analyzer.Presence) {
	fmt.Printf("%sPresence score: %d/100\n", indent, p.Score)
	for _, dim := range []string{"website", "reviews", "photos", "contact"} {
		d, ok := p.Breakdown[dim]
		if !ok {
			continue
		}
		fmt.Printf("%s  %-12s %d/%d  %s\n", indent, dim, d.Score, d.MaxScore, d.Details)
	}
}
