// Package reference loads the read-only lookup tables shared by one run.
package reference

import (
	"fmt"

	"fedcite/internal/models"
	"fedcite/internal/util"
)

// LoadStringMap reads a flat JSON object of string keys and values, such as
// the agency id → name table or the entity alias table.
func LoadStringMap(path string) (map[string]string, error) {
	raw := map[string]any{}
	if err := util.ReadJSON(path, &raw); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case string:
			out[k] = t
		case nil:
		default:
			out[k] = fmt.Sprint(t)
		}
	}
	return out, nil
}

// LoadCorpus reads the document listing saved by the fetch stage.
func LoadCorpus(path string) ([]models.Document, error) {
	var docs []models.Document
	if err := util.ReadJSON(path, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
