package listing

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"

	"peopledesk/internal/core/types"
	"peopledesk/internal/domain"
)

// valueKind orders values of different types relative to each other.
// Missing sorts least; mixed kinds fall back to this rank.
type valueKind int

const (
	kindMissing valueKind = iota
	kindBool
	kindNumber
	kindDate
	kindString
	kindOther
)

// canonical is a value reduced to something comparable.
type canonical struct {
	kind valueKind
	b    bool
	num  decimal.Decimal
	date time.Time
	str  string
	raw  any
}

func canonicalize(v any) canonical {
	switch x := v.(type) {
	case nil:
		return canonical{kind: kindMissing}
	case string:
		return canonical{kind: kindString, str: x}
	case bool:
		return canonical{kind: kindBool, b: x}
	case time.Time:
		if x.IsZero() {
			return canonical{kind: kindMissing}
		}
		return canonical{kind: kindDate, date: x}
	case *time.Time:
		if x == nil || x.IsZero() {
			return canonical{kind: kindMissing}
		}
		return canonical{kind: kindDate, date: *x}
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64,
		decimal.Decimal, *decimal.Decimal, json.Number:
		if d, ok := types.MoneyFrom(x); ok {
			return canonical{kind: kindNumber, num: d}
		}
		return canonical{kind: kindMissing}
	}
	return canonical{kind: kindOther, raw: v}
}

// comparer compares record values. It carries a collator, which is not safe
// for concurrent use, so each derivation builds its own.
type comparer struct {
	col  *collate.Collator
	fold cases.Caser
}

func (c *comparer) compare(a, b any) int {
	ca, cb := canonicalize(a), canonicalize(b)
	if ca.kind != cb.kind {
		if ca.kind < cb.kind {
			return -1
		}
		return 1
	}

	switch ca.kind {
	case kindMissing:
		return 0
	case kindBool:
		switch {
		case ca.b == cb.b:
			return 0
		case !ca.b:
			return -1
		default:
			return 1
		}
	case kindNumber:
		return ca.num.Cmp(cb.num)
	case kindDate:
		return ca.date.Compare(cb.date)
	case kindString:
		return c.col.CompareString(ca.str, cb.str)
	}
	return c.col.CompareString(text(ca.raw), text(cb.raw))
}

// equal implements exact-match filtering. Text is compared byte for byte
// unless fold is set; numbers, dates and bools compare by value.
func (c *comparer) equal(recordValue, want any, fold bool) bool {
	ca, cb := canonicalize(recordValue), canonicalize(want)
	if ca.kind == kindMissing || cb.kind == kindMissing {
		return false
	}
	if ca.kind == cb.kind {
		switch ca.kind {
		case kindBool:
			return ca.b == cb.b
		case kindNumber:
			return ca.num.Equal(cb.num)
		case kindDate:
			return ca.date.Equal(cb.date)
		case kindString:
			if fold {
				return c.fold.String(ca.str) == c.fold.String(cb.str)
			}
			return ca.str == cb.str
		}
	}
	// Mixed kinds (a text operand against a typed value that could not be
	// coerced): compare their text renderings.
	ta, tb := text(recordValue), text(want)
	if fold {
		return c.fold.String(ta) == c.fold.String(tb)
	}
	return ta == tb
}

// text renders a value for searching and display.
func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case decimal.Decimal:
		return x.String()
	case json.Number:
		return x.String()
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return types.FormatDate(x)
	case domain.Record:
		return text(map[string]any(x))
	case map[string]any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

// Text renders a record value the way search and exports see it.
func Text(v any) string { return text(v) }
