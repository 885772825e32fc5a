package extractor

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fizko/dte/internal/models"
)

// LoadBatch reads a JSON array of raw records, the format upstream sync jobs
// use when they queue a batch to disk instead of streaming it.
func LoadBatch(path string) ([]models.RawDTE, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading batch file: %v", err)
	}

	var records []models.RawDTE
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("error parsing batch file: %v", err)
	}

	return records, nil
}
