package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peopledesk/internal/domain"
)

func TestSource_LoadReturnsCopy(t *testing.T) {
	records := []domain.Record{{"id": 1}, {"id": 2}}
	src := New("employees", records)

	got, err := src.Load(context.Background())
	require.NoError(t, err)
	got[0] = domain.Record{"id": 99}

	again, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, again[0]["id"])
	assert.Equal(t, "memory:employees (2 records)", domain.DescribeSource(src))
}

func TestSource_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New("x", nil).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = FromFunc("x", func() []domain.Record { return nil }).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFromFunc(t *testing.T) {
	calls := 0
	src := FromFunc("leads", func() []domain.Record {
		calls++
		return []domain.Record{{"id": calls}}
	})

	first, _ := src.Load(context.Background())
	second, _ := src.Load(context.Background())
	assert.Equal(t, 1, first[0]["id"])
	assert.Equal(t, 2, second[0]["id"])
	assert.Equal(t, "generated:leads", domain.DescribeSource(src))
}
