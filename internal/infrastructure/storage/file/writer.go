package file

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"peopledesk/internal/domain"
	"peopledesk/internal/export"
	"peopledesk/internal/listing"
	"peopledesk/internal/metadata"
)

// Write stores records in path, creating parent directories. The format
// follows the extension.
func Write(path string, schema metadata.Schema, records []domain.Record) error {
	format, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dataset dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset: %w", err)
	}
	if err := Encode(f, format, schema, records); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// Encode writes records in format. The output decodes back to the same
// records once coerced by the schema.
func Encode(w io.Writer, format Format, schema metadata.Schema, records []domain.Record) error {
	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(plainRecords(records, false))
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(plainRecords(records, false)); err != nil {
			return err
		}
		return enc.Close()
	case TOML:
		return toml.NewEncoder(w).Encode(map[string]any{"records": plainRecords(records, true)})
	case CSV:
		return encodeCSV(w, schema, records)
	case XLSX:
		return export.WriteXLSX(w, schema, records)
	}
	return fmt.Errorf("unsupported dataset format %q", format)
}

func encodeCSV(w io.Writer, schema metadata.Schema, records []domain.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(schema.FieldNames()); err != nil {
		return err
	}
	row := make([]string, len(schema.Fields))
	for _, rec := range records {
		for i, field := range schema.Fields {
			v, _ := rec.Get(field.Name)
			row[i] = listing.Text(v)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// plainRecords converts values the encoders cannot handle natively. TOML has
// no null, so dropNil removes missing values.
func plainRecords(records []domain.Record, dropNil bool) []map[string]any {
	out := make([]map[string]any, len(records))
	for i, rec := range records {
		out[i] = plainMap(rec, dropNil)
	}
	return out
}

func plainMap(m map[string]any, dropNil bool) map[string]any {
	res := make(map[string]any, len(m))
	for k, v := range m {
		pv := plain(v, dropNil)
		if pv == nil && dropNil {
			continue
		}
		res[k] = pv
	}
	return res
}

func plain(v any, dropNil bool) any {
	switch x := v.(type) {
	case decimal.Decimal:
		return x.String()
	case *decimal.Decimal:
		if x == nil {
			return nil
		}
		return x.String()
	case json.Number:
		return x.String()
	case domain.Record:
		return plainMap(x, dropNil)
	case map[string]any:
		return plainMap(x, dropNil)
	case []any:
		res := make([]any, 0, len(x))
		for _, item := range x {
			if pv := plain(item, dropNil); pv != nil || !dropNil {
				res = append(res, pv)
			}
		}
		return res
	}
	return v
}
