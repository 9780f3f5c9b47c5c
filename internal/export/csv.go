package export

import (
	"encoding/csv"
	"io"

	"peopledesk/internal/domain"
	"peopledesk/internal/metadata"
)

// WriteCSV writes records with a label header row and display-formatted cells.
func (f Formatter) WriteCSV(w io.Writer, schema metadata.Schema, records []domain.Record) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(schema.Fields))
	for i, field := range schema.Fields {
		header[i] = label(field)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(schema.Fields))
	for _, rec := range records {
		for i, field := range schema.Fields {
			v, _ := rec.Get(field.Name)
			row[i] = f.Format(field, v)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
