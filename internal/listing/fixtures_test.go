package listing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"peopledesk/internal/domain"
	"peopledesk/internal/metadata"
)

func employeeSchema() metadata.Schema {
	return metadata.Schema{
		Name:    "employees",
		IDField: "id",
		Fields: []metadata.FieldDef{
			{Name: "id", Type: metadata.TypeString},
			{Name: "fullName", Type: metadata.TypeString, Searchable: true},
			{Name: "email", Type: metadata.TypeString, Searchable: true},
			{Name: "department", Type: metadata.TypeString, Searchable: true, Filterable: true},
			{Name: "status", Type: metadata.TypeEnum, Filterable: true, CaseInsensitive: true,
				Options: []string{"Active", "On Leave", "Terminated"}},
			{Name: "remote", Type: metadata.TypeBoolean, Filterable: true},
			{Name: "salary", Type: metadata.TypeMoney},
			{Name: "age", Type: metadata.TypeInteger},
			{Name: "hiredAt", Type: metadata.TypeDate},
		},
		DefaultSort: metadata.SortDef{Field: "id", Direction: metadata.Asc},
	}
}

// employees returns 25 records: 12 in Finance, 8 in HR, 5 in IT.
func employees() []domain.Record {
	depts := make([]string, 0, 25)
	for i := 0; i < 12; i++ {
		depts = append(depts, "Finance")
	}
	for i := 0; i < 8; i++ {
		depts = append(depts, "HR")
	}
	for i := 0; i < 5; i++ {
		depts = append(depts, "IT")
	}
	statuses := []string{"Active", "Active", "On Leave", "Terminated"}

	out := make([]domain.Record, 0, 25)
	for i, d := range depts {
		n := i + 1
		out = append(out, domain.Record{
			"id":         fmt.Sprintf("E%03d", n),
			"fullName":   fmt.Sprintf("Employee %02d", n),
			"email":      fmt.Sprintf("employee%02d@example.com", n),
			"department": d,
			"status":     statuses[i%len(statuses)],
			"remote":     n%3 == 0,
			"salary":     decimal.NewFromInt(int64(3000 + 250*(n%7))),
			"age":        int64(22 + n),
			"hiredAt":    time.Date(2015+n%8, time.Month(1+n%12), 1, 0, 0, 0, 0, time.UTC),
		})
	}
	return out
}

func ids(records []domain.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.GetString("id")
	}
	return out
}
