package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"peopledesk/internal/core/types"
	"peopledesk/internal/domain"
	"peopledesk/internal/metadata"
)

const maxSheetName = 31

// WriteXLSX writes records as a single-sheet workbook. Headers are field
// labels; money, numbers, dates and booleans are stored as typed cells.
func WriteXLSX(w io.Writer, schema metadata.Schema, records []domain.Record) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := sheetName(schema)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	styles, err := newStyles(f)
	if err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}

	header := make([]any, len(schema.Fields))
	for i, field := range schema.Fields {
		header[i] = excelize.Cell{StyleID: styles.header, Value: label(field)}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for r, rec := range records {
		row := make([]any, len(schema.Fields))
		for i, field := range schema.Fields {
			v, _ := rec.Get(field.Name)
			row[i] = styles.cell(field, v)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", r+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}
	return f.Write(w)
}

type styles struct {
	header int
	money  int
	date   int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	var err error

	if s.header, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return s, err
	}
	// 4 is the built-in "#,##0.00" format.
	if s.money, err = f.NewStyle(&excelize.Style{NumFmt: 4}); err != nil {
		return s, err
	}
	dateFmt := "yyyy-mm-dd"
	if s.date, err = f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt}); err != nil {
		return s, err
	}
	return s, nil
}

func (s styles) cell(field metadata.FieldDef, v any) any {
	if v == nil {
		return nil
	}
	switch field.Type {
	case metadata.TypeMoney:
		if amount, ok := types.MoneyFrom(v); ok {
			return excelize.Cell{StyleID: s.money, Value: amount.InexactFloat64()}
		}
	case metadata.TypeNumber, metadata.TypeInteger:
		if n, ok := types.NumberFrom(v); ok {
			return n
		}
	case metadata.TypeDate:
		if t, ok := types.DateFrom(v); ok {
			return excelize.Cell{StyleID: s.date, Value: t}
		}
	case metadata.TypeBoolean:
		if b, ok := v.(bool); ok {
			return b
		}
	}
	if _, ok := v.(string); ok {
		return v
	}
	return Formatter{}.Format(field, v)
}

func sheetName(schema metadata.Schema) string {
	name := schema.Label
	if name == "" {
		name = schema.Name
	}
	name = strings.NewReplacer(":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", "(", "]", ")").Replace(name)
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	if strings.TrimSpace(name) == "" {
		return "Sheet1"
	}
	return name
}
