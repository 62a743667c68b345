package dataio

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mamadbah2/microgreens/internal/domain/models"
)

var requiredSnapshotKeys = []string{"orders", "microgreenVarieties"}

// ExportSnapshot writes the whole application state as one indented JSON document.
func ExportSnapshot(w io.Writer, data models.AppData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// ImportSnapshot decodes a document produced by ExportSnapshot. The orders and
// microgreenVarieties keys must be present; every other collection defaults to empty.
func ImportSnapshot(r io.Reader) (models.AppData, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return models.AppData{}, fmt.Errorf("read snapshot: %w", err)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return models.AppData{}, invalidFilef("snapshot is not a JSON object: %v", err)
	}
	for _, key := range requiredSnapshotKeys {
		value, ok := keys[key]
		if !ok || string(value) == "null" {
			return models.AppData{}, invalidFilef("snapshot is missing %q", key)
		}
	}

	var data models.AppData
	if err := json.Unmarshal(raw, &data); err != nil {
		return models.AppData{}, invalidFilef("decode snapshot: %v", err)
	}
	data.Normalize()
	return data, nil
}
