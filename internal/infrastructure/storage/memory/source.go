// Package memory serves records held in memory: generated mock datasets and
// records handed over by tests.
package memory

import (
	"context"
	"fmt"

	"peopledesk/internal/domain"
)

// Source is a static record set.
type Source struct {
	name    string
	records []domain.Record
}

// New creates a source over records. The slice is copied; the records are not.
func New(name string, records []domain.Record) *Source {
	return &Source{name: name, records: append([]domain.Record(nil), records...)}
}

// FromFunc creates a source that is filled by gen on every Load.
func FromFunc(name string, gen func() []domain.Record) domain.RecordSource {
	return &generated{name: name, gen: gen}
}

// Load implements domain.RecordSource.
func (s *Source) Load(ctx context.Context) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]domain.Record(nil), s.records...), nil
}

// Describe implements domain.Describer.
func (s *Source) Describe() string {
	return fmt.Sprintf("memory:%s (%d records)", s.name, len(s.records))
}

type generated struct {
	name string
	gen  func() []domain.Record
}

func (g *generated) Load(ctx context.Context) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.gen(), nil
}

func (g *generated) Describe() string { return "generated:" + g.name }
