package export

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/KingPinFPV/basarometer-sub000/internal/model"
)

// WriteJSON writes the full reconciliation result, quality report included,
// as indented JSON.
func WriteJSON(result *model.ReconcileResult, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return eris.Wrap(err, "export: create json file")
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(result); err != nil {
		return eris.Wrap(err, "export: encode json")
	}
	return nil
}
