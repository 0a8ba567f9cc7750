package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/prospect-cli/internal/prospect"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <hexagon-id>",
	Short: "Analyze the businesses stored for a hexagon",
	Long: `Score every business stored for a hexagon and summarize the area.

Businesses are ranked by opportunity score and each one carries the insights
behind its score. Output defaults to a table; use --output json or yaml for
machine-readable payloads.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringP("output", "o", "table", "output format: table, json, or yaml")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	hexagonID := args[0]

	svc, st, err := newService(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	payload, err := svc.GetHexagon(ctx, hexagonID)
	if err != nil {
		return eris.Wrapf(err, "analyze: hexagon %s", hexagonID)
	}

	format, _ := cmd.Flags().GetString("output")
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close() //nolint:errcheck
		return enc.Encode(payload)
	case "table":
		renderAnalysisTable(payload)
		return nil
	default:
		return eris.Errorf("analyze: unknown output format %q", format)
	}
}

var categoryTitler = cases.Title(language.English)

// categoryLabel turns a raw place type like "real_estate_agency" into a
// display label like "Real Estate Agency".
func categoryLabel(category string) string {
	return categoryTitler.String(strings.ReplaceAll(category, "_", " "))
}

func renderAnalysisTable(payload *prospect.Payload) {
	if payload.AreaAnalysis != nil {
		a := payload.AreaAnalysis
		fmt.Printf("Area: %d businesses (%d high / %d medium / %d low opportunity)\n",
			a.TotalBusinesses, a.HighOpportunity, a.MediumOpportunity, a.LowOpportunity)
		fmt.Printf("No website: %d  No reviews: %d  Low rating: %d\n",
			a.NoWebsite, a.NoReviews, a.LowRating)
		fmt.Printf("Average rating: %.2f over %d reviews\n", a.AverageRating, a.TotalReviews)
		if len(a.TopCategories) > 0 {
			parts := make([]string, 0, len(a.TopCategories))
			for _, c := range a.TopCategories {
				parts = append(parts, fmt.Sprintf("%s (%d)", categoryLabel(c.Category), c.Count))
			}
			fmt.Printf("Top categories: %s\n", strings.Join(parts, ", "))
		}
		fmt.Println()
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tPRIORITY\tNAME\tRATING\tREVIEWS\tWEBSITE\tSTATUS")
	for _, b := range payload.Businesses {
		website := "yes"
		if b.Website == "" {
			website = "no"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%.1f\t%d\t%s\t%s\n",
			b.Analysis.OpportunityScore, b.Analysis.Priority, b.Name,
			b.RatingValue(), b.ReviewCount(), website, b.Status)
	}
	w.Flush() //nolint:errcheck
}
