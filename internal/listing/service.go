package listing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"peopledesk/internal/core/apperror"
	appctx "peopledesk/internal/core/context"
	"peopledesk/internal/domain"
	"peopledesk/internal/metadata"
	"peopledesk/pkg/logger"
)

var tracer = otel.Tracer("peopledesk/listing")

const warmConcurrency = 4

// Screen binds a schema to the source of its records.
type Screen struct {
	Schema metadata.Schema
	Source domain.RecordSource
}

// ServiceConfig holds paging limits applied to incoming queries.
type ServiceConfig struct {
	DefaultPageSize int
	MaxPageSize     int
	StrictPaging    bool
}

// DefaultServiceConfig returns sensible defaults.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		DefaultPageSize: DefaultPageSize,
		MaxPageSize:     100,
	}
}

type screenState struct {
	screen   Screen
	records  []domain.Record
	loaded   bool
	loadedAt time.Time
}

// Service serves the registered screens. Records are loaded lazily on first
// use and cached read-only; every request derives its page from the cache.
type Service struct {
	cfg      ServiceConfig
	engine   *Engine
	log      *logger.Logger
	registry *metadata.Registry
	hooks    *domain.HookRegistry[[]domain.Record]

	mu      sync.RWMutex
	screens map[string]*screenState
	loads   singleflight.Group
}

// NewService creates a service. Loaded records are coerced to their schema
// before any other after-load hook runs.
func NewService(cfg ServiceConfig, engine *Engine, log *logger.Logger) *Service {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = DefaultPageSize
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		cfg.MaxPageSize = cfg.DefaultPageSize
	}
	if engine == nil {
		engine = defaultEngine
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		cfg:      cfg,
		engine:   engine,
		log:      log.WithComponent("listing"),
		registry: metadata.NewRegistry(),
		hooks:    domain.NewHookRegistry[[]domain.Record](),
		screens:  make(map[string]*screenState),
	}
}

// Hooks exposes the after-load hooks applied to every screen.
func (s *Service) Hooks() *domain.HookRegistry[[]domain.Record] { return s.hooks }

// Config returns the effective paging configuration.
func (s *Service) Config() ServiceConfig { return s.cfg }

// Register adds a screen, replacing one with the same schema name.
func (s *Service) Register(screen Screen) error {
	if screen.Source == nil {
		return apperror.NewInvalidSchema(screen.Schema.Name, "screen has no record source")
	}
	if err := s.registry.Register(screen.Schema); err != nil {
		return err
	}

	s.mu.Lock()
	s.screens[screen.Schema.Name] = &screenState{screen: screen}
	s.mu.Unlock()

	s.log.Debugw("screen registered",
		"screen", screen.Schema.Name,
		"source", domain.DescribeSource(screen.Source),
	)
	return nil
}

// Screens returns the registered schemas ordered by name.
func (s *Service) Screens() []metadata.Schema {
	return s.registry.List()
}

// Schema returns the schema of a screen.
func (s *Service) Schema(name string) (metadata.Schema, error) {
	schema, ok := s.registry.Get(name)
	if !ok {
		return metadata.Schema{}, apperror.NewNotFound("screen", name)
	}
	return schema, nil
}

// Records returns the cached records of a screen, loading them on first use.
func (s *Service) Records(ctx context.Context, name string) ([]domain.Record, error) {
	s.mu.RLock()
	st, ok := s.screens[name]
	var records []domain.Record
	loaded := ok && st.loaded
	if loaded {
		records = st.records
	}
	s.mu.RUnlock()

	if !ok {
		return nil, apperror.NewNotFound("screen", name)
	}
	if loaded {
		return records, nil
	}
	return s.load(ctx, st)
}

// Reload re-reads a screen from its source and returns the record count.
// On failure the previously cached records stay in place.
func (s *Service) Reload(ctx context.Context, name string) (int, error) {
	ctx, span := tracer.Start(ctx, "listing.Reload",
		trace.WithAttributes(attribute.String("list.screen", name)))
	defer span.End()

	s.mu.RLock()
	st, ok := s.screens[name]
	s.mu.RUnlock()
	if !ok {
		return 0, apperror.NewNotFound("screen", name)
	}

	records, err := s.load(ctx, st)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	span.SetAttributes(attribute.Int("list.records", len(records)))
	return len(records), nil
}

// Warm loads every registered screen, a few at a time.
func (s *Service) Warm(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(warmConcurrency)
	for _, schema := range s.Screens() {
		name := schema.Name
		g.Go(func() error {
			_, err := s.Records(ctx, name)
			return err
		})
	}
	return g.Wait()
}

// load reads the screen's source and swaps in the result. Concurrent loads
// of one screen share a single read. The read is detached from the caller
// that started it, so a cancelled caller only abandons its own wait.
func (s *Service) load(ctx context.Context, st *screenState) ([]domain.Record, error) {
	name := st.screen.Schema.Name
	shared := context.WithoutCancel(ctx)
	ch := s.loads.DoChan(name, func() (any, error) {
		records, err := s.fetch(shared, st.screen)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		st.records = records
		st.loaded = true
		st.loadedAt = time.Now()
		s.mu.Unlock()
		return records, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]domain.Record), nil
	}
}

// fetch reads, coerces and post-processes a screen's records. Hooks find
// the screen name in ctx.
func (s *Service) fetch(ctx context.Context, screen Screen) ([]domain.Record, error) {
	name := screen.Schema.Name
	ctx = appctx.WithScreen(ctx, name)
	start := time.Now()

	records, err := screen.Source.Load(ctx)
	if err != nil {
		logger.FromContext(ctx).Errorw("load records failed",
			"source", domain.DescribeSource(screen.Source),
			"error", err,
		)
		return nil, apperror.NewSourceUnavailable(name, err)
	}

	coerced := make([]domain.Record, len(records))
	for i, r := range records {
		coerced[i] = screen.Schema.Coerce(r)
	}
	coerced, err = s.hooks.Run(ctx, domain.AfterLoad, coerced)
	if err != nil {
		return nil, fmt.Errorf("after-load hooks for %s: %w", name, err)
	}

	s.log.Infow("records loaded",
		"screen", name,
		"count", len(coerced),
		"duration", time.Since(start),
	)
	return coerced, nil
}

// normalize applies the service paging limits to q.
func (s *Service) normalize(q Query) (Query, error) {
	switch {
	case q.PageSize == 0:
		q.PageSize = s.cfg.DefaultPageSize
	case q.PageSize < 0:
		return q, apperror.NewValidation("page size must be positive").WithDetail("pageSize", q.PageSize)
	case q.PageSize > s.cfg.MaxPageSize:
		q.PageSize = s.cfg.MaxPageSize
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Page < 0 && s.cfg.StrictPaging {
		return q, apperror.NewPageOutOfRange(q.Page, 1)
	}
	return q, nil
}

// plan loads the screen and prepares q against it.
func (s *Service) plan(ctx context.Context, name string, q Query) (*Plan, []domain.Record, error) {
	schema, err := s.Schema(name)
	if err != nil {
		return nil, nil, err
	}
	if q, err = s.normalize(q); err != nil {
		return nil, nil, err
	}
	plan, err := s.engine.Prepare(schema, q)
	if err != nil {
		return nil, nil, err
	}
	records, err := s.Records(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	return plan, records, nil
}

// List derives one page of a screen.
func (s *Service) List(ctx context.Context, name string, q Query) (Page, error) {
	ctx = appctx.WithScreen(ctx, name)
	ctx, span := tracer.Start(ctx, "listing.List",
		trace.WithAttributes(
			attribute.String("list.screen", name),
			attribute.Int("list.page", q.Page),
			attribute.Int("list.page_size", q.PageSize),
			attribute.Bool("list.search", q.Search != ""),
		))
	defer span.End()

	plan, records, err := s.plan(ctx, name, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Page{}, err
	}

	page := plan.Page(records)
	if s.cfg.StrictPaging && plan.query.Page != page.CurrentPage {
		err := apperror.NewPageOutOfRange(plan.query.Page, page.TotalPages)
		span.SetStatus(codes.Error, err.Error())
		return Page{}, err
	}

	span.SetAttributes(
		attribute.Int("list.total_items", page.TotalItems),
		attribute.Int("list.total_pages", page.TotalPages),
	)
	logger.FromContext(ctx).Debugw("page derived",
		"page", page.CurrentPage,
		"totalItems", page.TotalItems,
	)
	return page, nil
}

// Matching returns the full filtered and sorted record set of a screen.
func (s *Service) Matching(ctx context.Context, name string, q Query) ([]domain.Record, error) {
	ctx, span := tracer.Start(ctx, "listing.Matching",
		trace.WithAttributes(attribute.String("list.screen", name)))
	defer span.End()

	plan, records, err := s.plan(ctx, name, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	out := plan.Matching(records)
	span.SetAttributes(attribute.Int("list.total_items", len(out)))
	return out, nil
}

// Facets returns dropdown options with counts for a screen.
func (s *Service) Facets(ctx context.Context, name string, q Query) ([]Facet, error) {
	ctx, span := tracer.Start(ctx, "listing.Facets",
		trace.WithAttributes(attribute.String("list.screen", name)))
	defer span.End()

	plan, records, err := s.plan(ctx, name, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return plan.Facets(records), nil
}

// Controller builds a stateful controller over a screen's current records.
func (s *Service) Controller(ctx context.Context, name string, opts ...Option) (*Controller, error) {
	schema, err := s.Schema(name)
	if err != nil {
		return nil, err
	}
	records, err := s.Records(ctx, name)
	if err != nil {
		return nil, err
	}

	base := []Option{WithEngine(s.engine), WithLogger(s.log), WithPageSize(s.cfg.DefaultPageSize)}
	if s.cfg.StrictPaging {
		base = append(base, WithStrictPaging())
	}
	return NewController(records, schema, append(base, opts...)...)
}

// LoadedAt reports when a screen was last loaded; zero if never.
func (s *Service) LoadedAt(name string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.screens[name]; ok {
		return st.loadedAt
	}
	return time.Time{}
}

// Source describes where a screen reads its records from; empty for unknown
// screens.
func (s *Service) Source(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.screens[name]; ok {
		return domain.DescribeSource(st.screen.Source)
	}
	return ""
}
