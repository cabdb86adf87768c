package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/dynobj/internal/experiment"
)

type ExportData struct {
	Run   RunMetadata         `json:"run"`
	Steps []experiment.Record `json:"steps"`
}

// Export writes a saved run's metadata and step log as indented JSON.
func (s *Store) Export(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	records, err := s.LoadSteps(runID)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{Run: *meta, Steps: records})
}
