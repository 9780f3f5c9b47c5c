// Package screens declares the list screens of the dashboard: their record
// schemas (derived from tagged structs) and deterministic mock datasets.
package screens

import (
	"fmt"
	"strings"
	"unicode"

	"peopledesk/internal/domain"
	"peopledesk/internal/infrastructure/storage/memory"
	"peopledesk/internal/listing"
	"peopledesk/internal/metadata"
)

// Definition describes one screen.
type Definition struct {
	Name     string
	Label    string
	Entity   any
	Generate func() []domain.Record
}

// Schema derives the screen schema from the entity's struct tags.
func (d Definition) Schema() metadata.Schema {
	s := metadata.Inspect(d.Entity, d.Name)
	if d.Label != "" {
		s.Label = d.Label
	}
	return s
}

func define[T any](name, label string, gen func() []T) Definition {
	var zero T
	return Definition{
		Name:     name,
		Label:    label,
		Entity:   zero,
		Generate: func() []domain.Record { return metadata.ToRecords(gen()) },
	}
}

var catalog = []Definition{
	define("employees", "Employees", generateEmployees),
	define("departments", "Departments", generateDepartments),
	define("branches", "Branches", generateBranches),
	define("job-grades", "Job Grades", generateJobGrades),
	define("leave-requests", "Leave Requests", generateLeaveRequests),
	define("leads", "Leads", generateLeads),
	define("deals", "Sales Pipeline", generateDeals),
	define("commissions", "Commissions", generateCommissions),
	define("routing-rules", "Routing Rules", generateRoutingRules),
	define("quotations", "Quotations", generateQuotations),
}

// Catalog returns all screen definitions in menu order.
func Catalog() []Definition {
	return append([]Definition(nil), catalog...)
}

// Lookup finds a definition by name.
func Lookup(name string) (Definition, bool) {
	for _, d := range catalog {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// SourceFactory returns a source for a screen, or false to defer to the next
// factory.
type SourceFactory func(def Definition, schema metadata.Schema) (domain.RecordSource, bool, error)

// Register adds every screen to svc. Each screen takes its records from the
// first factory that claims it, or from its generated dataset.
func Register(svc *listing.Service, factories ...SourceFactory) error {
	for _, def := range catalog {
		schema := def.Schema()

		var src domain.RecordSource
		for _, factory := range factories {
			s, ok, err := factory(def, schema)
			if err != nil {
				return fmt.Errorf("source for %s: %w", def.Name, err)
			}
			if ok {
				src = s
				break
			}
		}
		if src == nil {
			src = memory.FromFunc(def.Name, def.Generate)
		}

		if err := svc.Register(listing.Screen{Schema: schema, Source: src}); err != nil {
			return fmt.Errorf("register %s: %w", def.Name, err)
		}
	}
	return nil
}

// slug lowercases s and joins its words with dashes.
func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
