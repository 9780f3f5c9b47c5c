package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"peopledesk/internal/domain"
	"peopledesk/internal/metadata"
)

func testSchema() metadata.Schema {
	return metadata.Schema{
		Name:  "employees",
		Label: "Employees",
		Fields: []metadata.FieldDef{
			{Name: "fullName", Label: "Full Name", Type: metadata.TypeString},
			{Name: "salary", Label: "Salary", Type: metadata.TypeMoney},
			{Name: "remote", Type: metadata.TypeBoolean},
			{Name: "hiredAt", Label: "Hired At", Type: metadata.TypeDate},
		},
	}
}

func testRecords() []domain.Record {
	return []domain.Record{
		{"fullName": "Sarah Johnson", "salary": decimal.NewFromInt(4500), "remote": true,
			"hiredAt": time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"fullName": "Abebe Mekonnen", "salary": decimal.RequireFromString("1234.5"), "remote": false},
	}
}

func TestFormatter_Format(t *testing.T) {
	f := NewFormatter("usd")
	schema := testSchema()
	salary, _ := schema.Field("salary")
	remote, _ := schema.Field("remote")
	hired, _ := schema.Field("hiredAt")
	name, _ := schema.Field("fullName")

	tests := []struct {
		name  string
		field metadata.FieldDef
		value any
		want  string
	}{
		{"money", salary, decimal.NewFromInt(4500), "$4,500.00"},
		{"money rounds to cents", salary, decimal.RequireFromString("10.005"), "$10.01"},
		{"money from text", salary, "1200", "$1,200.00"},
		{"bool true", remote, true, "Yes"},
		{"bool false", remote, false, "No"},
		{"date", hired, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), "2024-06-30"},
		{"string", name, "Sarah", "Sarah"},
		{"missing", name, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Format(tt.field, tt.value))
		})
	}
}

func TestNewFormatter_UnknownCurrencyFallsBack(t *testing.T) {
	assert.Equal(t, DefaultCurrency, NewFormatter("").Currency)
	assert.Equal(t, DefaultCurrency, NewFormatter("XYZQ").Currency)
	assert.Equal(t, "EUR", NewFormatter("eur").Currency)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter("USD").WriteCSV(&buf, testSchema(), testRecords()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Full Name,Salary,remote,Hired At", lines[0])
	assert.Equal(t, `Sarah Johnson,"$4,500.00",Yes,2021-03-01`, lines[1])
	assert.Equal(t, `Abebe Mekonnen,"$1,234.50",No,`, lines[2])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, testSchema(), testRecords()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Employees"}, f.GetSheetList())

	header, err := f.GetCellValue("Employees", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Full Name", header)

	name, err := f.GetCellValue("Employees", "A3")
	require.NoError(t, err)
	assert.Equal(t, "Abebe Mekonnen", name)

	raw, err := f.GetCellValue("Employees", "B2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "4500", raw)
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Sales (Q1) 2024", sheetName(metadata.Schema{Label: "Sales [Q1] 2024"}))
	assert.Equal(t, "leads", sheetName(metadata.Schema{Name: "leads"}))
	assert.Len(t, sheetName(metadata.Schema{Label: strings.Repeat("x", 40)}), maxSheetName)
}
