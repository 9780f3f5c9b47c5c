package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Parse decodes a JSON array of filter items ("filter" query parameter).
// Numbers are kept as json.Number so money comparisons stay exact.
func Parse(raw string) ([]Item, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	var items []Item
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("decode filter: %w", err)
	}

	for i := range items {
		items[i].Field = strings.TrimSpace(items[i].Field)
		items[i].Operator = ComparisonType(strings.ToLower(string(items[i].Operator)))
		if err := items[i].Validate(); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// ParseShorthand parses the compact "field:op:value" form used by the CLI.
// Values of in/nin are separated by "|".
func ParseShorthand(s string) (Item, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 {
		return Item{}, fmt.Errorf("filter %q: expected field:op[:value]", s)
	}

	it := Item{Field: strings.TrimSpace(parts[0]), Operator: ComparisonType(strings.ToLower(strings.TrimSpace(parts[1])))}
	if len(parts) == 3 {
		if it.Operator.IsList() {
			var vals []any
			for _, v := range strings.Split(parts[2], "|") {
				vals = append(vals, v)
			}
			it.Value = vals
		} else {
			it.Value = parts[2]
		}
	}
	return it, it.Validate()
}
