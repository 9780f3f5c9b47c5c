package listing

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"peopledesk/internal/core/apperror"
	"peopledesk/internal/domain"
	"peopledesk/pkg/logger"
)

type countingSource struct {
	calls   atomic.Int32
	records []domain.Record
	err     error
}

func (s *countingSource) Load(context.Context) ([]domain.Record, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func newService(t *testing.T, cfg ServiceConfig, src domain.RecordSource) *Service {
	t.Helper()
	svc := NewService(cfg, nil, nil)
	require.NoError(t, svc.Register(Screen{Schema: employeeSchema(), Source: src}))
	return svc
}

func TestService_ListLoadsOnce(t *testing.T) {
	src := &countingSource{records: employees()}
	svc := newService(t, DefaultServiceConfig(), src)
	ctx := context.Background()

	page, err := svc.List(ctx, "employees", Query{Filters: map[string]any{"department": "Finance"}})
	require.NoError(t, err)
	assert.Equal(t, 12, page.TotalItems)
	assert.Equal(t, 10, page.PageSize)

	_, err = svc.List(ctx, "employees", Query{Page: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 1, src.calls.Load())
	assert.False(t, svc.LoadedAt("employees").IsZero())
	assert.Equal(t, "custom", svc.Source("employees"))
	assert.Empty(t, svc.Source("missing"))
}

func TestService_CoercesLoadedRecords(t *testing.T) {
	src := domain.SourceFunc(func(context.Context) ([]domain.Record, error) {
		return []domain.Record{
			{"id": "1", "salary": "4,500.00", "remote": "yes", "hiredAt": "2020-02-03"},
			{"id": "2", "salary": "900", "remote": "no", "hiredAt": ""},
		}, nil
	})
	svc := newService(t, DefaultServiceConfig(), src)

	page, err := svc.List(context.Background(), "employees", Query{Sort: Sort{Field: "salary", Direction: Desc}})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "1", page.Items[0]["id"])
	assert.Equal(t, true, page.Items[0]["remote"])
	assert.Nil(t, page.Items[1]["hiredAt"])

	page, err = svc.List(context.Background(), "employees", Query{Filters: map[string]any{"remote": "true"}})
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalItems)
}

func TestService_AfterLoadHook(t *testing.T) {
	svc := newService(t, DefaultServiceConfig(), &countingSource{records: employees()})
	svc.Hooks().OnAfterLoad(func(_ context.Context, rs []domain.Record) ([]domain.Record, error) {
		return rs[:3], nil
	})

	records, err := svc.Records(context.Background(), "employees")
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestService_PageSizeLimits(t *testing.T) {
	svc := newService(t, ServiceConfig{DefaultPageSize: 5, MaxPageSize: 20}, &countingSource{records: employees()})
	ctx := context.Background()

	page, err := svc.List(ctx, "employees", Query{})
	require.NoError(t, err)
	assert.Equal(t, 5, page.PageSize)

	page, err = svc.List(ctx, "employees", Query{PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 20, page.PageSize)
	assert.Len(t, page.Items, 20)

	_, err = svc.List(ctx, "employees", Query{PageSize: -1})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestService_StrictPaging(t *testing.T) {
	svc := newService(t, ServiceConfig{DefaultPageSize: 10, MaxPageSize: 50, StrictPaging: true}, &countingSource{records: employees()})
	ctx := context.Background()

	_, err := svc.List(ctx, "employees", Query{Page: 4})
	assert.True(t, apperror.IsPageOutOfRange(err))

	page, err := svc.List(ctx, "employees", Query{Page: 3})
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)

	clamping := newService(t, DefaultServiceConfig(), &countingSource{records: employees()})
	page, err = clamping.List(ctx, "employees", Query{Page: 4})
	require.NoError(t, err)
	assert.Equal(t, 3, page.CurrentPage)
}

func TestService_UnknownScreen(t *testing.T) {
	svc := newService(t, DefaultServiceConfig(), &countingSource{})

	_, err := svc.List(context.Background(), "payroll", Query{})
	assert.True(t, apperror.IsNotFound(err))

	_, err = svc.Schema("payroll")
	assert.True(t, apperror.IsNotFound(err))

	_, err = svc.Reload(context.Background(), "payroll")
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_Reload(t *testing.T) {
	src := &countingSource{records: employees()}
	svc := newService(t, DefaultServiceConfig(), src)
	ctx := context.Background()

	_, err := svc.Records(ctx, "employees")
	require.NoError(t, err)

	src.records = employees()[:4]
	n, err := svc.Reload(ctx, "employees")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	src.err = errors.New("disk on fire")
	_, err = svc.Reload(ctx, "employees")
	assert.True(t, apperror.HasCode(err, apperror.CodeSourceUnavailable))
	assert.ErrorIs(t, err, src.err)

	records, err := svc.Records(ctx, "employees")
	require.NoError(t, err)
	assert.Len(t, records, 4)
}

func TestService_SourceFailure(t *testing.T) {
	svc := newService(t, DefaultServiceConfig(), &countingSource{err: errors.New("timeout")})
	_, err := svc.List(context.Background(), "employees", Query{})
	assert.Equal(t, 503, apperror.GetHTTPStatus(err))
}

func TestService_SourceFailureLogsScreenOnce(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	ctx := logger.WithLogger(context.Background(), logger.FromCore(core))

	svc := newService(t, DefaultServiceConfig(), &countingSource{err: errors.New("timeout")})
	_, err := svc.Records(ctx, "employees")
	require.Error(t, err)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	screens := 0
	for _, f := range entry.Context {
		if f.Key == "screen" {
			screens++
		}
	}
	assert.Equal(t, 1, screens)
	assert.Equal(t, "employees", entry.ContextMap()["screen"])
}

// blockingSource holds Load until release is closed.
type blockingSource struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	records []domain.Record
}

func (s *blockingSource) Load(ctx context.Context) ([]domain.Record, error) {
	if s.calls.Add(1) == 1 {
		close(s.started)
	}
	select {
	case <-s.release:
		return s.records, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestService_CancelledCallerDoesNotFailSharedLoad(t *testing.T) {
	src := &blockingSource{
		started: make(chan struct{}),
		release: make(chan struct{}),
		records: employees(),
	}
	svc := newService(t, DefaultServiceConfig(), src)

	firstCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Records(firstCtx, "employees")
		firstErr <- err
	}()
	<-src.started

	type result struct {
		records []domain.Record
		err     error
	}
	second := make(chan result, 1)
	go func() {
		records, err := svc.Records(context.Background(), "employees")
		second <- result{records, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(src.release)
	got := <-second
	require.NoError(t, got.err)
	assert.Len(t, got.records, 25)
	assert.EqualValues(t, 1, src.calls.Load())

	// The detached read still filled the cache.
	records, err := svc.Records(context.Background(), "employees")
	require.NoError(t, err)
	assert.Len(t, records, 25)
	assert.EqualValues(t, 1, src.calls.Load())
}

func TestService_MatchingFacetsAndController(t *testing.T) {
	svc := newService(t, DefaultServiceConfig(), &countingSource{records: employees()})
	ctx := context.Background()

	matching, err := svc.Matching(ctx, "employees", Query{Filters: map[string]any{"department": "HR"}, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, matching, 8)

	facets, err := svc.Facets(ctx, "employees", Query{})
	require.NoError(t, err)
	assert.Len(t, facets, 3)

	c, err := svc.Controller(ctx, "employees")
	require.NoError(t, err)
	c.SetFilter("department", "IT")
	assert.Equal(t, 5, c.VisiblePage().TotalItems)

	assert.Equal(t, []string{"employees"}, func() []string {
		var names []string
		for _, s := range svc.Screens() {
			names = append(names, s.Name)
		}
		return names
	}())
}

func TestService_RegisterRejectsMissingSource(t *testing.T) {
	svc := NewService(DefaultServiceConfig(), nil, nil)
	err := svc.Register(Screen{Schema: employeeSchema()})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidSchema))
}

func TestService_WarmLoadsEveryScreen(t *testing.T) {
	svc := NewService(DefaultServiceConfig(), nil, nil)
	sources := make([]*countingSource, 3)
	for i, name := range []string{"employees", "contractors", "interns"} {
		sources[i] = &countingSource{records: employees()}
		schema := employeeSchema()
		schema.Name = name
		require.NoError(t, svc.Register(Screen{Schema: schema, Source: sources[i]}))
	}

	require.NoError(t, svc.Warm(context.Background()))
	for _, src := range sources {
		assert.EqualValues(t, 1, src.calls.Load())
	}
	assert.False(t, svc.LoadedAt("interns").IsZero())

	_, err := svc.Records(context.Background(), "contractors")
	require.NoError(t, err)
	assert.EqualValues(t, 1, sources[1].calls.Load())
}

func TestService_WarmReportsFailure(t *testing.T) {
	svc := newService(t, DefaultServiceConfig(), &countingSource{err: errors.New("disk gone")})

	err := svc.Warm(context.Background())
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeSourceUnavailable))
}
