package metadata

import (
	"sort"
	"sync"
)

// FieldType defines the data type of a field.
type FieldType string

const (
	TypeString    FieldType = "string"
	TypeInteger   FieldType = "integer"
	TypeNumber    FieldType = "number" // float
	TypeMoney     FieldType = "money"  // decimal.Decimal
	TypeBoolean   FieldType = "boolean"
	TypeDate      FieldType = "date"
	TypeEnum      FieldType = "enum"
	TypeReference FieldType = "reference"
	TypeObject    FieldType = "object"
)

// SortDirection is the order of a sort.
type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

// SortDef names a field and a direction.
type SortDef struct {
	Field     string        `json:"field"`
	Direction SortDirection `json:"direction"`
}

// Schema describes the record shape of one list screen.
type Schema struct {
	Name        string     `json:"name"`
	Label       string     `json:"label,omitempty"`
	IDField     string     `json:"idField,omitempty"`
	Fields      []FieldDef `json:"fields"`
	DefaultSort SortDef    `json:"defaultSort"`
}

// FieldDef describes a field.
type FieldDef struct {
	Name            string    `json:"name"`
	Label           string    `json:"label,omitempty"`
	Type            FieldType `json:"type"`
	ReferenceType   string    `json:"referenceType,omitempty"` // For references, e.g. "department"
	Searchable      bool      `json:"searchable,omitempty"`
	Filterable      bool      `json:"filterable,omitempty"`
	CaseInsensitive bool      `json:"caseInsensitive,omitempty"` // exact filters ignore case
	Options         []string  `json:"options,omitempty"`
	Scale           int       `json:"scale,omitempty"` // For numbers
	Column          string    `json:"-"`               // SQL column when it differs from Name
}

// Registry stores screen schemas.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]Schema
}

func NewRegistry() *Registry {
	return &Registry{
		schemas: make(map[string]Schema),
	}
}

// Register validates and stores a schema, replacing one of the same name.
func (r *Registry) Register(s Schema) error {
	if err := s.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.schemas[s.Name] = s
	r.mu.Unlock()
	return nil
}

func (r *Registry) Get(name string) (Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[name]
	return s, ok
}

// List returns schemas ordered by name.
func (r *Registry) List() []Schema {
	r.mu.RLock()
	list := make([]Schema, 0, len(r.schemas))
	for _, s := range r.schemas {
		list = append(list, s)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Names returns registered schema names in order.
func (r *Registry) Names() []string {
	list := r.List()
	names := make([]string, len(list))
	for i, s := range list {
		names[i] = s.Name
	}
	return names
}
