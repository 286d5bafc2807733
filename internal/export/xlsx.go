package export

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/KingPinFPV/basarometer-sub000/internal/model"
)

// WriteXLSX writes the final product set plus the quality report as a
// two-sheet workbook.
func WriteXLSX(result *model.ReconcileResult, outputPath string) error {
	f := xlsx.NewFile()

	products, err := f.AddSheet("Products")
	if err != nil {
		return eris.Wrap(err, "export: add products sheet")
	}

	header := products.AddRow()
	for _, col := range productColumns {
		header.AddCell().SetString(col)
	}

	for _, p := range result.Products {
		row := products.AddRow()
		row.AddCell().SetString(p.ID)
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Brand)
		row.AddCell().SetString(p.Chain)
		row.AddCell().SetString(p.Category)
		row.AddCell().SetFloat(p.Price)
		row.AddCell().SetFloat(p.PricePerUnit)
		row.AddCell().SetString(p.Barcode)
		row.AddCell().SetFloat(p.HybridConfidence)
		row.AddCell().SetBool(p.Verified)
		row.AddCell().SetString(string(p.Provenance))
		row.AddCell().SetString(p.VerificationSource)
		row.AddCell().SetString(p.Timestamp.UTC().Format(time.RFC3339))
	}

	quality, err := f.AddSheet("Quality")
	if err != nil {
		return eris.Wrap(err, "export: add quality sheet")
	}
	writeQualitySheet(quality, result)

	return eris.Wrap(f.Save(outputPath), "export: save xlsx")
}

func writeQualitySheet(sheet *xlsx.Sheet, result *model.ReconcileResult) {
	addKV := func(key string, value any) {
		row := sheet.AddRow()
		row.AddCell().SetString(key)
		row.AddCell().SetValue(value)
	}

	q := result.Quality
	addKV("Run ID", result.RunID)
	addKV("Success", result.Success)
	addKV("Products", result.ProductCount())
	addKV("Base Records", result.BaseCount)
	addKV("Selected For Verification", result.SelectedCount)
	addKV("Verified", q.VerifiedCount)
	addKV("Duplicates Removed", result.RemovedCount)
	addKV("Average Confidence", q.AvgConfidence)
	addKV("Unique Chains", q.UniqueChains)
	addKV("Complete Records", q.CompleteCount)
	addKV("Coverage %", q.CoveragePercent)
	addKV("Grade Excellent", q.Grades.Excellent)
	addKV("Grade Good", q.Grades.Good)
	addKV("Grade Fair", q.Grades.Fair)
	addKV("Grade Poor", q.Grades.Poor)
}
