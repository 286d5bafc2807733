package bulk

import (
	"encoding/xml"
	"io"
	"time"

	"github.com/rotisserie/eris"

	"github.com/KingPinFPV/basarometer-sub000/internal/hebrew"
	"github.com/KingPinFPV/basarometer-sub000/internal/model"
)

// priceFile mirrors the chain price-transparency XML layout.
type priceFile struct {
	XMLName xml.Name    `xml:"Root"`
	ChainID string      `xml:"ChainId"`
	Items   []priceItem `xml:"Items>Item"`
}

type priceItem struct {
	ItemCode           string `xml:"ItemCode"`
	ItemName           string `xml:"ItemName"`
	ManufacturerName   string `xml:"ManufacturerName"`
	ItemPrice          string `xml:"ItemPrice"`
	UnitOfMeasurePrice string `xml:"UnitOfMeasurePrice"`
	PriceUpdateDate    string `xml:"PriceUpdateDate"`
}

// priceUpdateLayouts are the timestamp formats seen across chain dumps.
var priceUpdateLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParsePriceXML decodes one chain price file into base records. Items with
// no parsable price are skipped; only meat products pass the category gate.
func ParsePriceXML(r io.Reader, chain string, confidence float64, now time.Time) ([]model.BaseRecord, error) {
	var file priceFile
	if err := xml.NewDecoder(r).Decode(&file); err != nil {
		return nil, eris.Wrapf(err, "bulk: decode price xml for %s", chain)
	}

	records := make([]model.BaseRecord, 0, len(file.Items))
	for _, item := range file.Items {
		if item.ItemName == "" || !hebrew.IsMeatProduct(item.ItemName) {
			continue
		}

		price, ok := hebrew.ExtractPrice(item.ItemPrice)
		if !ok {
			continue
		}

		unitPrice, _ := hebrew.ExtractPrice(item.UnitOfMeasurePrice)

		ts := now
		for _, layout := range priceUpdateLayouts {
			if parsed, err := time.Parse(layout, item.PriceUpdateDate); err == nil {
				ts = parsed
				break
			}
		}

		records = append(records, model.BaseRecord{
			ID:             chain + ":" + item.ItemCode,
			Name:           item.ItemName,
			NormalizedName: hebrew.Normalize(item.ItemName),
			Brand:          item.ManufacturerName,
			Price:          price,
			PricePerUnit:   unitPrice,
			Chain:          chain,
			Category:       hebrew.DetectCategory(item.ItemName),
			Barcode:        item.ItemCode,
			Confidence:     confidence,
			Timestamp:      ts,
		})
	}

	return records, nil
}
