package output

import (
	"encoding/csv"
	"fmt"
	"io"

	"fedcite/internal/models"
	"fedcite/internal/util"
)

func WriteCSV(path string, records []models.NormalizedRecord) error {
	return util.WriteAtomic(path, func(w io.Writer) error {
		return EncodeCSV(w, records)
	})
}

func EncodeCSV(w io.Writer, records []models.NormalizedRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(Row(r)); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.CustomID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
