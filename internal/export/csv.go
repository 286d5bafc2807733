// Package export writes the final product set to CSV, JSON, and XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"

	"github.com/KingPinFPV/basarometer-sub000/internal/model"
)

// productColumns defines the ordered CSV output columns.
var productColumns = []string{
	"ID",
	"Name",
	"Brand",
	"Chain",
	"Category",
	"Price",
	"Unit Price",
	"Barcode",
	"Confidence",
	"Verified",
	"Provenance",
	"Verification Source",
	"Timestamp",
}

// WriteCSV writes the final product set as a CSV file.
func WriteCSV(products []model.EnrichedRecord, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return eris.Wrap(err, "export: create csv file")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(productColumns); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}

	for _, p := range products {
		if err := w.Write(buildProductRow(p)); err != nil {
			return eris.Wrapf(err, "export: write csv row %s", p.ID)
		}
	}

	w.Flush()
	return eris.Wrap(w.Error(), "export: flush csv")
}

// buildProductRow maps an EnrichedRecord to a CSV row.
func buildProductRow(p model.EnrichedRecord) []string {
	return []string{
		p.ID,
		p.Name,
		p.Brand,
		p.Chain,
		p.Category,
		formatPrice(p.Price),
		formatPrice(p.PricePerUnit),
		p.Barcode,
		fmt.Sprintf("%.3f", p.HybridConfidence),
		formatBool(p.Verified),
		string(p.Provenance),
		p.VerificationSource,
		p.Timestamp.UTC().Format(time.RFC3339),
	}
}

func formatPrice(v float64) string {
	if v <= 0 {
		return ""
	}
	return fmt.Sprintf("%.2f", v)
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
