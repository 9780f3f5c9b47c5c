// Package types provides value coercion for loosely typed record fields.
package types

import (
	"database/sql/driver"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// ParseMoney parses a decimal string, tolerating thousands separators and a
// leading currency symbol ("$12,500.00").
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "$€£¥")
	s = strings.ReplaceAll(s, ",", "")
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and generated datasets.
func MustMoney(s string) Money {
	d, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return d
}

// MoneyFrom coerces v into Money. The second result is false when v has no
// numeric interpretation, which includes NaN and infinities.
func MoneyFrom(v any) (Money, bool) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return x, true
	case *decimal.Decimal:
		if x == nil {
			return decimal.Zero, false
		}
		return *x, true
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		return d, err == nil
	case string:
		d, err := ParseMoney(x)
		return d, err == nil
	case float64:
		if !finite(x) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(x), true
	case float32:
		if !finite(float64(x)) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat32(x), true
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int8:
		return decimal.NewFromInt(int64(x)), true
	case int16:
		return decimal.NewFromInt(int64(x)), true
	case int32:
		return decimal.NewFromInt32(x), true
	case int64:
		return decimal.NewFromInt(x), true
	case uint:
		return decimal.RequireFromString(strconv.FormatUint(uint64(x), 10)), true
	case uint8:
		return decimal.NewFromInt(int64(x)), true
	case uint16:
		return decimal.NewFromInt(int64(x)), true
	case uint32:
		return decimal.RequireFromString(strconv.FormatUint(uint64(x), 10)), true
	case uint64:
		return decimal.RequireFromString(strconv.FormatUint(x, 10)), true
	case driver.Valuer:
		// database numerics (pgtype.Numeric) surface through driver.Valuer
		dv, err := x.Value()
		if err != nil || dv == nil {
			return decimal.Zero, false
		}
		if _, again := dv.(driver.Valuer); again {
			return decimal.Zero, false
		}
		return MoneyFrom(dv)
	}
	return decimal.Zero, false
}

// NumberFrom coerces v into a finite float64.
func NumberFrom(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, finite(x)
	case float32:
		return float64(x), finite(float64(x))
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	d, ok := MoneyFrom(v)
	if !ok {
		return 0, false
	}
	return d.InexactFloat64(), true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
