package metadata

import (
	"reflect"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"peopledesk/internal/core/id"
	"peopledesk/internal/domain"
)

// fieldInfo contains pre-computed metadata about a struct field.
type fieldInfo struct {
	index int
	name  string
}

// typeMetadata contains cached reflection metadata for a type.
type typeMetadata struct {
	fields          []fieldInfo
	embeddedIndices []int
}

// Global cache for type metadata (thread-safe).
var typeCache sync.Map // map[reflect.Type]*typeMetadata

// getOrCreateTypeMetadata returns cached metadata or creates it if not exists.
func getOrCreateTypeMetadata(t reflect.Type) *typeMetadata {
	if cached, ok := typeCache.Load(t); ok {
		return cached.(*typeMetadata)
	}

	meta := &typeMetadata{}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue
		}
		if field.Anonymous {
			meta.embeddedIndices = append(meta.embeddedIndices, i)
			continue
		}
		name := jsonName(field)
		if name == "-" || field.Tag.Get("list") == "-" {
			continue
		}
		meta.fields = append(meta.fields, fieldInfo{index: i, name: name})
	}

	typeCache.Store(t, meta)
	return meta
}

// ToRecord converts a struct into a Record keyed by the same names Inspect
// produces. Identifiers become strings, nil pointers become nil, and nested
// structs become nested records.
func ToRecord(v any) domain.Record {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	res := make(domain.Record)
	fillRecord(rv, res)
	return res
}

// ToRecords converts a slice of structs.
func ToRecords[T any](items []T) []domain.Record {
	out := make([]domain.Record, 0, len(items))
	for i := range items {
		out = append(out, ToRecord(items[i]))
	}
	return out
}

func fillRecord(rv reflect.Value, res domain.Record) {
	meta := getOrCreateTypeMetadata(rv.Type())

	for _, fi := range meta.fields {
		res[fi.name] = plainValue(rv.Field(fi.index))
	}

	for _, embIdx := range meta.embeddedIndices {
		ev := rv.Field(embIdx)
		if ev.Kind() == reflect.Ptr {
			if ev.IsNil() {
				continue
			}
			ev = ev.Elem()
		}
		if ev.Kind() == reflect.Struct {
			fillRecord(ev, res)
		}
	}
}

func plainValue(v reflect.Value) any {
	if v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		return plainValue(v.Elem())
	}

	switch v.Type() {
	case idType:
		u := v.Interface().(id.ID)
		if id.IsNil(u) {
			return nil
		}
		return u.String()
	case timeType:
		t := v.Interface().(time.Time)
		if t.IsZero() {
			return nil
		}
		return t
	case decimalType:
		return v.Interface().(decimal.Decimal)
	}

	switch v.Kind() {
	case reflect.String:
		return v.String() // named string types (enums) collapse to string
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Bool:
		return v.Bool()
	case reflect.Struct:
		nested := make(domain.Record)
		fillRecord(v, nested)
		return nested
	case reflect.Slice, reflect.Array:
		out := make([]any, v.Len())
		for i := range out {
			out[i] = plainValue(v.Index(i))
		}
		return out
	}
	return v.Interface()
}
