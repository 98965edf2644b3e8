package domain

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// catalogueHeaderPrefix marks catalogue header rows, which carry column names
// rather than code/label pairs.
const catalogueHeaderPrefix = "Catalogue"

// Catalogue maps opaque registry codes to human-readable labels.
// It is built once per run and treated as immutable afterwards.
type Catalogue map[string]string

// Merge reads one catalogue CSV and adds its code→label pairs. Each data row
// is "code,<label>,...,<label>"; the last column (the English label) wins.
// Codes already present are overwritten silently: codes are globally unique
// across the BFE catalogues in practice, so collisions are not expected, but
// a later catalogue overwriting an earlier one must not fail.
func (c Catalogue) Merge(r io.Reader) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	for {
		row, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read catalogue row: %w", err)
		}
		if len(row) == 0 || strings.HasPrefix(row[0], catalogueHeaderPrefix) {
			continue
		}
		if len(row) < 2 {
			continue
		}
		c[row[0]] = strings.TrimSpace(row[len(row)-1])
	}
}
