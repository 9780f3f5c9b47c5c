package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"peopledesk/internal/core/types"
)

// Record is one row of a list screen: field name to value.
// Values are strings, integers, floats, decimal money, bools, time.Time dates
// or nested objects (map[string]any / Record).
//
// Records are shared between the source cache and every derived page, so the
// list core treats them as read-only.
type Record map[string]any

// Scan implements sql.Scanner for reading a JSONB row document.
// Uses UseNumber() so money amounts keep their precision.
func (r *Record) Scan(src any) error {
	if src == nil {
		*r = nil
		return nil
	}

	var source []byte
	switch v := src.(type) {
	case []byte:
		source = v
	case string:
		source = []byte(v)
	default:
		return fmt.Errorf("unsupported type for Record: %T", src)
	}

	if len(source) == 0 {
		*r = nil
		return nil
	}

	decoder := json.NewDecoder(bytes.NewReader(source))
	decoder.UseNumber()

	var result map[string]any
	if err := decoder.Decode(&result); err != nil {
		return fmt.Errorf("failed to decode Record: %w", err)
	}

	*r = result
	return nil
}

// Value implements driver.Valuer.
func (r Record) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	return json.Marshal(r)
}

// Get resolves a field by name. A dotted name ("manager.name") walks nested
// objects when the record has no flat key of that name.
func (r Record) Get(name string) (any, bool) {
	if r == nil {
		return nil, false
	}
	if v, ok := r[name]; ok {
		return v, true
	}
	if !strings.Contains(name, ".") {
		return nil, false
	}

	var cur any = map[string]any(r)
	for _, part := range strings.Split(name, ".") {
		switch m := cur.(type) {
		case Record:
			v, ok := m[part]
			if !ok {
				return nil, false
			}
			cur = v
		case map[string]any:
			v, ok := m[part]
			if !ok {
				return nil, false
			}
			cur = v
		default:
			return nil, false
		}
	}
	return cur, true
}

// Has reports whether the field is present with a non-nil value.
func (r Record) Has(name string) bool {
	v, ok := r.Get(name)
	return ok && v != nil
}

// --- Type-safe getters ---

// GetString returns string value or empty string if not found/wrong type.
func (r Record) GetString(name string) string {
	v, _ := r.Get(name)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// GetInt returns int64 value, handling json.Number correctly.
func (r Record) GetInt(name string) int64 {
	v, _ := r.Get(name)
	switch x := v.(type) {
	case json.Number:
		i, _ := x.Int64()
		return i
	case float64:
		return int64(x)
	case int64:
		return x
	case int:
		return int64(x)
	}
	return 0
}

// GetDecimal returns decimal value with full precision.
func (r Record) GetDecimal(name string) decimal.Decimal {
	v, _ := r.Get(name)
	d, _ := types.MoneyFrom(v)
	return d
}

// GetBool returns bool value or false if not found/wrong type.
func (r Record) GetBool(name string) bool {
	v, _ := r.Get(name)
	b, _ := v.(bool)
	return b
}

// Clone returns a shallow copy. Nested objects are shared.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Project returns a copy restricted to the given fields.
func (r Record) Project(fields []string) Record {
	out := make(Record, len(fields))
	for _, f := range fields {
		if v, ok := r.Get(f); ok {
			out[f] = v
		}
	}
	return out
}
