// Package app wires configuration, storage and the listing service together
// for the server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"peopledesk/internal/config"
	"peopledesk/internal/domain"
	"peopledesk/internal/domain/filter"
	"peopledesk/internal/infrastructure/storage/file"
	"peopledesk/internal/infrastructure/storage/postgres"
	"peopledesk/internal/infrastructure/storage/sqlite"
	"peopledesk/internal/infrastructure/storage/sqltable"
	"peopledesk/internal/listing"
	"peopledesk/internal/metadata"
	"peopledesk/internal/screens"
	"peopledesk/pkg/logger"
)

// App holds the wired components.
type App struct {
	Config  *config.Config
	Log     *logger.Logger
	Service *listing.Service

	pool    *postgres.Pool
	closers []func() error
}

// New builds the listing service and registers every screen with the
// configured sources. Screens take records from PostgreSQL, then SQLite, then
// DATA_DIR, then their generated dataset.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	if log == nil {
		log = logger.Nop()
	}
	a := &App{Config: cfg, Log: log}

	engine := listing.NewEngine(
		listing.WithLocale(cfg.List.Tag()),
		listing.WithEngineLogger(log),
	)
	a.Service = listing.NewService(listing.ServiceConfig{
		DefaultPageSize: cfg.List.PageSize,
		MaxPageSize:     cfg.List.MaxPageSize,
		StrictPaging:    cfg.List.StrictPaging,
	}, engine, log)

	factories, err := a.factories(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if err := screens.Register(a.Service, factories...); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// Close releases database connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) factories(ctx context.Context) ([]screens.SourceFactory, error) {
	var out []screens.SourceFactory

	if a.Config.Database.URL != "" && a.Config.Database.Tables != "" {
		f, err := a.postgresFactory(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if a.Config.SQLite.Path != "" && a.Config.SQLite.Tables != "" {
		f, err := a.sqliteFactory(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if a.Config.Data.Dir != "" {
		out = append(out, FileFactory(a.Config.Data.Dir))
	}
	return out, nil
}

func (a *App) postgresFactory(ctx context.Context) (screens.SourceFactory, error) {
	tables, err := sqltable.ParseTables(a.Config.Database.Tables)
	if err != nil {
		return nil, err
	}
	scopes, err := sqltable.ParseScopes(a.Config.Database.Scopes)
	if err != nil {
		return nil, err
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(a.Config.Database.URL))
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	a.pool = pool
	a.closers = append(a.closers, func() error { pool.Close(); return nil })
	a.Log.Infow("postgres sources enabled", "screens", sqltable.Screens(tables))

	postgres.LogPoolStats(ctx, pool.Pool)

	return TableFactory(tables, scopes, sqltable.Postgres, func(t sqltable.Table) domain.RecordSource {
		return postgres.NewTableSource(pool, t)
	}), nil
}

func (a *App) sqliteFactory(ctx context.Context) (screens.SourceFactory, error) {
	tables, err := sqltable.ParseTables(a.Config.SQLite.Tables)
	if err != nil {
		return nil, err
	}

	db, err := sqlite.Open(ctx, a.Config.SQLite.Path)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db.Close)
	a.Log.Infow("sqlite sources enabled", "path", a.Config.SQLite.Path, "screens", sqltable.Screens(tables))

	return TableFactory(tables, nil, sqltable.SQLite, func(t sqltable.Table) domain.RecordSource {
		return sqlite.NewTableSource(db, t)
	}), nil
}

// TableFactory claims the screens mapped in tables. The generated SELECT is
// checked up front so a bad column or scope fails at startup.
func TableFactory(tables map[string]string, scopes map[string][]filter.Item, d sqltable.Dialect, open func(sqltable.Table) domain.RecordSource) screens.SourceFactory {
	return func(def screens.Definition, schema metadata.Schema) (domain.RecordSource, bool, error) {
		name, ok := tables[def.Name]
		if !ok {
			return nil, false, nil
		}
		t := sqltable.Table{Name: name, Schema: schema, Scope: scopes[def.Name]}
		if _, err := t.Select(d); err != nil {
			return nil, false, err
		}
		return open(t), true, nil
	}
}

// FileFactory claims screens that have a dataset file in dir.
func FileFactory(dir string) screens.SourceFactory {
	return func(def screens.Definition, schema metadata.Schema) (domain.RecordSource, bool, error) {
		path, ok := file.Find(dir, def.Name)
		if !ok {
			return nil, false, nil
		}
		src, err := file.New(path, schema)
		if err != nil {
			return nil, false, err
		}
		return src, true, nil
	}
}

// WatchData reloads screens whose dataset files change and, when a NOTIFY
// channel is configured, screens named in database notifications. It blocks
// until ctx is cancelled.
func (a *App) WatchData(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	if a.Config.Data.Watch && a.Config.Data.Dir != "" {
		w := file.NewWatcher(a.Config.Data.Dir, func(ctx context.Context, screen string) {
			a.reload(ctx, screen)
		}, a.Log)
		g.Go(func() error { return w.Run(ctx) })
	}
	if a.pool != nil && a.Config.Database.NotifyChannel != "" {
		l := postgres.NewListener(a.pool.Pool, a.Config.Database.NotifyChannel, a.reload, a.Log)
		g.Go(func() error { return l.Run(ctx) })
	}
	return g.Wait()
}

// reload refreshes one screen, or all of them when screen is empty. Unknown
// screens are ignored.
func (a *App) reload(ctx context.Context, screen string) {
	names := []string{screen}
	if screen == "" {
		names = names[:0]
		for _, s := range a.Service.Screens() {
			names = append(names, s.Name)
		}
	}
	for _, name := range names {
		if _, err := a.Service.Schema(name); err != nil {
			continue
		}
		n, err := a.Service.Reload(ctx, name)
		if err != nil {
			a.Log.Warnw("reload failed", "screen", name, "error", err)
			continue
		}
		a.Log.Infow("screen reloaded", "screen", name, "records", n)
	}
}
