package domain

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_GetDottedPath(t *testing.T) {
	r := Record{
		"name":    "Sarah Connor",
		"manager": map[string]any{"name": "John", "office": Record{"city": "Kyiv"}},
		"a.b":     "flat wins",
	}

	v, ok := r.Get("manager.name")
	require.True(t, ok)
	assert.Equal(t, "John", v)

	v, ok = r.Get("manager.office.city")
	require.True(t, ok)
	assert.Equal(t, "Kyiv", v)

	v, ok = r.Get("a.b")
	require.True(t, ok)
	assert.Equal(t, "flat wins", v)

	_, ok = r.Get("manager.phone")
	assert.False(t, ok)
	_, ok = r.Get("name.first")
	assert.False(t, ok)
}

func TestRecord_Scan_PreservesPrecision(t *testing.T) {
	var r Record
	require.NoError(t, r.Scan([]byte(`{"salary": 12345678901234.56, "age": 41}`)))

	assert.Equal(t, json.Number("12345678901234.56"), r["salary"])
	assert.Equal(t, "12345678901234.56", r.GetDecimal("salary").String())
	assert.Equal(t, int64(41), r.GetInt("age"))
}

func TestRecord_CloneAndProject(t *testing.T) {
	r := Record{"id": 1, "name": "A", "active": true}

	c := r.Clone()
	c["name"] = "B"
	assert.Equal(t, "A", r["name"])

	p := r.Project([]string{"id", "missing"})
	assert.Equal(t, Record{"id": 1}, p)
	assert.True(t, r.Has("active"))
	assert.True(t, r.GetBool("active"))
	assert.False(t, Record{"x": nil}.Has("x"))
}

func TestHookRegistry_ThreadsPayload(t *testing.T) {
	hooks := NewHookRegistry[[]Record]()
	hooks.OnAfterLoad(func(_ context.Context, rs []Record) ([]Record, error) {
		return append(rs, Record{"id": 2}), nil
	})
	hooks.OnAfterLoad(func(_ context.Context, rs []Record) ([]Record, error) {
		return rs[1:], nil
	})

	out, err := hooks.Run(context.Background(), AfterLoad, []Record{{"id": 1}})
	require.NoError(t, err)
	assert.Equal(t, []Record{{"id": 2}}, out)

	hooks.On(BeforeLoad, func(_ context.Context, rs []Record) ([]Record, error) {
		return nil, errors.New("stop")
	})
	_, err = hooks.Run(context.Background(), BeforeLoad, nil)
	assert.EqualError(t, err, "stop")
}

func TestSourceFunc(t *testing.T) {
	src := SourceFunc(func(context.Context) ([]Record, error) {
		return []Record{{"id": 1}}, nil
	})
	rs, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, rs, 1)
	assert.Equal(t, "custom", DescribeSource(src))
}
