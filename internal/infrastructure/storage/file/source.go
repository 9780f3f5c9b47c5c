package file

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"peopledesk/internal/domain"
	"peopledesk/internal/metadata"
)

// Source loads a screen's records from a dataset file on every Load, so edits
// to the file show up after a reload.
type Source struct {
	path   string
	format Format
	schema metadata.Schema
}

// New returns a source for path. The format is detected from the extension
// or the file content.
func New(path string, schema metadata.Schema) (*Source, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	return &Source{path: path, format: format, schema: schema}, nil
}

// Path returns the dataset path.
func (s *Source) Path() string { return s.path }

// Describe implements domain.Describer.
func (s *Source) Describe() string { return string(s.format) + ":" + s.path }

// Load reads and decodes the whole file.
func (s *Source) Load(ctx context.Context) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	records, err := Decode(bytes.NewReader(data), s.format, s.schema)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return records, nil
}

// Decode reads records in the given format. Tabular formats (CSV, XLSX) match
// header cells to field names or labels.
func Decode(r io.Reader, format Format, schema metadata.Schema) ([]domain.Record, error) {
	switch format {
	case JSON:
		return decodeJSON(r)
	case YAML:
		return decodeYAML(r)
	case TOML:
		return decodeTOML(r)
	case CSV:
		rows, err := readCSV(r)
		if err != nil {
			return nil, err
		}
		return fromTable(rows, schema), nil
	case XLSX:
		rows, err := readXLSX(r)
		if err != nil {
			return nil, err
		}
		return fromTable(rows, schema), nil
	}
	return nil, fmt.Errorf("unsupported dataset format %q", format)
}

// decodeJSON accepts either a top-level array or {"records": [...]}.
func decodeJSON(r io.Reader) ([]domain.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if data[0] == '[' {
		var rows []domain.Record
		if err := dec.Decode(&rows); err != nil {
			return nil, err
		}
		return rows, nil
	}

	var doc struct {
		Records []domain.Record `json:"records"`
	}
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc.Records, nil
}

func decodeYAML(r io.Reader) ([]domain.Record, error) {
	var doc any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}

	if m, ok := doc.(map[string]any); ok {
		doc = m["records"]
	}
	items, ok := doc.([]any)
	if !ok {
		if doc == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("expected a list of records, got %T", doc)
	}
	return recordsOf(items)
}

// decodeTOML expects an array of tables named "records".
func decodeTOML(r io.Reader) ([]domain.Record, error) {
	var doc struct {
		Records []map[string]any `toml:"records"`
	}
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	out := make([]domain.Record, len(doc.Records))
	for i, m := range doc.Records {
		out[i] = domain.Record(m)
	}
	return out, nil
}

func recordsOf(items []any) ([]domain.Record, error) {
	out := make([]domain.Record, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("record %d: expected a mapping, got %T", i, item)
		}
		out = append(out, domain.Record(m))
	}
	return out, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// readXLSX returns the rows of the first sheet.
func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	return f.GetRows(sheets[0])
}

// fromTable turns rows into records. The first non-empty row is the header;
// blank cells are left out so they read as missing.
func fromTable(rows [][]string, schema metadata.Schema) []domain.Record {
	var header []string
	var out []domain.Record

	for _, row := range rows {
		if isEmptyRow(row) {
			continue
		}
		if header == nil {
			header = make([]string, len(row))
			for i, cell := range row {
				header[i] = columnName(strings.TrimSpace(cell), schema)
			}
			continue
		}

		rec := make(domain.Record, len(header))
		for i, name := range header {
			if name == "" || i >= len(row) {
				continue
			}
			if cell := strings.TrimSpace(row[i]); cell != "" {
				rec[name] = cell
			}
		}
		out = append(out, rec)
	}
	return out
}

// columnName maps a header cell to a field name by exact name, then by
// case-insensitive name or label. Unknown headers are kept verbatim.
func columnName(header string, schema metadata.Schema) string {
	if _, ok := schema.Field(header); ok {
		return header
	}
	for _, f := range schema.Fields {
		if strings.EqualFold(f.Name, header) || strings.EqualFold(f.Label, header) {
			return f.Name
		}
	}
	return header
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
