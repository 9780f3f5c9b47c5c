// Package export renders list records for download: display-formatted CSV
// and typed XLSX workbooks.
package export

import (
	"strings"

	"github.com/Rhymond/go-money"

	"peopledesk/internal/core/types"
	"peopledesk/internal/listing"
	"peopledesk/internal/metadata"
)

// DefaultCurrency is used for money fields when none is configured.
const DefaultCurrency = money.USD

// Formatter renders field values for humans.
type Formatter struct {
	Currency string
}

// NewFormatter returns a formatter for currency (an ISO 4217 code).
func NewFormatter(currency string) Formatter {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" || money.GetCurrency(currency) == nil {
		currency = DefaultCurrency
	}
	return Formatter{Currency: currency}
}

// Format renders v according to the field type. Missing values render empty.
func (f Formatter) Format(field metadata.FieldDef, v any) string {
	if v == nil {
		return ""
	}
	switch field.Type {
	case metadata.TypeMoney:
		if amount, ok := types.MoneyFrom(v); ok {
			return f.Money(amount)
		}
	case metadata.TypeDate:
		if t, ok := types.DateFrom(v); ok {
			return types.FormatDate(t)
		}
	case metadata.TypeBoolean:
		if b, ok := v.(bool); ok {
			if b {
				return "Yes"
			}
			return "No"
		}
	}
	return listing.Text(v)
}

// Money renders an amount with the currency symbol and grouping, e.g. "$4,500.00".
func (f Formatter) Money(amount types.Money) string {
	currency := f.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	fraction := int32(2)
	if c := money.GetCurrency(currency); c != nil {
		fraction = int32(c.Fraction)
	}
	minor := amount.Shift(fraction).Round(0).IntPart()
	return money.New(minor, currency).Display()
}

func label(field metadata.FieldDef) string {
	if field.Label != "" {
		return field.Label
	}
	return field.Name
}
