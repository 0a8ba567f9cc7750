package export

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/prospect-cli/internal/analyzer"
	"github.com/sells-group/prospect-cli/internal/prospect"
)

var businessHeader = []string{
	"Place ID", "Name", "Address", "Phone", "Website", "Rating", "Reviews",
	"Categories", "Opportunity Score", "Priority", "Insights", "Status",
}

// WriteXLSX writes a hexagon payload as a two-sheet workbook: one row per
// business on the first sheet, the area summary on the second.
func WriteXLSX(payload *prospect.Payload, path string) error {
	f := xlsx.NewFile()

	sheet, err := f.AddSheet("Businesses")
	if err != nil {
		return eris.Wrap(err, "export: add businesses sheet")
	}

	header := sheet.AddRow()
	for _, h := range businessHeader {
		header.AddCell().Value = h
	}

	for _, b := range payload.Businesses {
		row := sheet.AddRow()
		row.AddCell().Value = b.PlaceID
		row.AddCell().Value = b.Name
		row.AddCell().Value = b.FormattedAddress
		row.AddCell().Value = b.Phone
		row.AddCell().Value = b.Website
		if b.Rating != nil {
			row.AddCell().SetFloat(*b.Rating)
		} else {
			row.AddCell()
		}
		row.AddCell().SetInt(b.ReviewCount())
		row.AddCell().Value = strings.Join(b.Types, ", ")
		row.AddCell().SetInt(b.Analysis.OpportunityScore)
		row.AddCell().Value = b.Analysis.Priority
		row.AddCell().Value = joinInsights(b.Analysis.Insights)
		row.AddCell().Value = string(b.Status)
	}

	if payload.AreaAnalysis != nil {
		if err := addSummarySheet(f, payload.AreaAnalysis); err != nil {
			return err
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

func addSummarySheet(f *xlsx.File, a *analyzer.AreaAnalysis) error {
	sheet, err := f.AddSheet("Area Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}

	addKV := func(key string, set func(*xlsx.Cell)) {
		row := sheet.AddRow()
		row.AddCell().Value = key
		set(row.AddCell())
	}

	addKV("Total businesses", func(c *xlsx.Cell) { c.SetInt(a.TotalBusinesses) })
	addKV("High opportunity", func(c *xlsx.Cell) { c.SetInt(a.HighOpportunity) })
	addKV("Medium opportunity", func(c *xlsx.Cell) { c.SetInt(a.MediumOpportunity) })
	addKV("Low opportunity", func(c *xlsx.Cell) { c.SetInt(a.LowOpportunity) })
	addKV("No website", func(c *xlsx.Cell) { c.SetInt(a.NoWebsite) })
	addKV("No reviews", func(c *xlsx.Cell) { c.SetInt(a.NoReviews) })
	addKV("Low rating", func(c *xlsx.Cell) { c.SetInt(a.LowRating) })
	addKV("Average rating", func(c *xlsx.Cell) { c.SetFloat(a.AverageRating) })
	addKV("Total reviews", func(c *xlsx.Cell) { c.SetInt(a.TotalReviews) })

	sheet.AddRow()
	catHeader := sheet.AddRow()
	catHeader.AddCell().Value = "Category"
	catHeader.AddCell().Value = "Count"
	for _, c := range a.TopCategories {
		row := sheet.AddRow()
		row.AddCell().Value = c.Category
		row.AddCell().SetInt(c.Count)
	}

	return nil
}

func joinInsights(insights []analyzer.Insight) string {
	parts := make([]string, len(insights))
	for i, in := range insights {
		parts[i] = in.Message
	}
	return strings.Join(parts, "; ")
}
