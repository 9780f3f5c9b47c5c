package metadata

import (
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"peopledesk/internal/core/id"
)

var (
	idType      = reflect.TypeOf(id.ID{})
	timeType    = reflect.TypeOf(time.Time{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

// Inspect analyzes a struct and returns its Schema.
//
// Field behaviour comes from the `list` tag:
//
//	list:"id"              identifier field
//	list:"search,filter"   searchable and filterable
//	list:"fold"            exact filters ignore case
//	list:"sort"            default sort (ascending); "sort:desc" for descending
//	list:"-"               not part of the list
//
// `label` overrides the generated label, `options` ("A|B|C") makes the field
// an enum, and `db` names the SQL column when it differs from the field name.
func Inspect(entity any, name string) Schema {
	t := reflect.TypeOf(entity)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if name == "" {
		name = t.Name()
	}

	s := Schema{
		Name:   name,
		Label:  guessLabel(t.Name()),
		Fields: make([]FieldDef, 0, t.NumField()),
	}

	inspectStruct(t, &s)

	return s
}

func inspectStruct(t reflect.Type, s *Schema) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.PkgPath != "" { // unexported
			continue
		}

		// Handle embedded structs (flattening)
		if field.Anonymous {
			ft := field.Type
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			inspectStruct(ft, s)
			continue
		}

		name := jsonName(field)
		if name == "-" {
			continue
		}
		opts := parseListTag(field.Tag.Get("list"))
		if opts.skip {
			continue
		}

		fDef := FieldDef{
			Name:            name,
			Label:           guessLabel(field.Name),
			Searchable:      opts.search,
			Filterable:      opts.filter,
			CaseInsensitive: opts.fold,
		}
		if label := field.Tag.Get("label"); label != "" {
			fDef.Label = label
		}
		if col := field.Tag.Get("db"); col != "" && col != "-" {
			fDef.Column = col
		}

		mapFieldType(&fDef, field)

		if options := field.Tag.Get("options"); options != "" {
			fDef.Type = TypeEnum
			fDef.Options = strings.Split(options, "|")
		}

		if opts.id {
			s.IDField = name
		}
		if opts.sort != "" {
			s.DefaultSort = SortDef{Field: name, Direction: opts.sort}
		}

		s.Fields = append(s.Fields, fDef)
	}
}

type listTag struct {
	skip, id, search, filter, fold bool
	sort                           SortDirection
}

func parseListTag(tag string) listTag {
	var lt listTag
	if tag == "-" {
		lt.skip = true
		return lt
	}
	for _, part := range strings.Split(tag, ",") {
		switch strings.TrimSpace(part) {
		case "id":
			lt.id = true
		case "search":
			lt.search = true
		case "filter":
			lt.filter = true
		case "fold":
			lt.fold = true
		case "sort", "sort:asc":
			lt.sort = Asc
		case "sort:desc":
			lt.sort = Desc
		}
	}
	return lt
}

func mapFieldType(def *FieldDef, field reflect.StructField) {
	t := field.Type
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t {
	case idType:
		// "DepartmentID" -> reference to "department"; the own ID stays a string
		if name := field.Name; name != "ID" && strings.HasSuffix(name, "ID") {
			def.Type = TypeReference
			def.ReferenceType = strings.ToLower(strings.TrimSuffix(name, "ID"))
			return
		}
		def.Type = TypeString
		return
	case timeType:
		def.Type = TypeDate
		return
	case decimalType:
		def.Type = TypeMoney
		def.Scale = 2
		return
	}

	switch t.Kind() {
	case reflect.String:
		def.Type = TypeString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		def.Type = TypeInteger
	case reflect.Float32, reflect.Float64:
		def.Type = TypeNumber
		def.Scale = 2
	case reflect.Bool:
		def.Type = TypeBoolean
	case reflect.Struct, reflect.Map:
		def.Type = TypeObject
	default:
		def.Type = TypeString // fallback
	}
}

func jsonName(field reflect.StructField) string {
	if tag, ok := field.Tag.Lookup("json"); ok {
		parts := strings.Split(tag, ",")
		if parts[0] != "" {
			return parts[0]
		}
	}
	// Fallback: camelCase
	runes := []rune(field.Name)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// guessLabel splits a CamelCase identifier into words: "HireDate" -> "Hire Date",
// "EmployeeID" -> "Employee ID".
func guessLabel(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte(' ')
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}
