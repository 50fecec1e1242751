// ABOUTME: Wires config, store, session manager, gallery, and metrics for CLI commands
// ABOUTME: One app per process; Close saves metric totals and releases the database

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/2389/partycollage/internal/auth"
	"github.com/2389/partycollage/internal/config"
	"github.com/2389/partycollage/internal/gallery"
	"github.com/2389/partycollage/internal/kv"
	"github.com/2389/partycollage/internal/metrics"
	"github.com/2389/partycollage/internal/session"
	"github.com/2389/partycollage/internal/store"
)

type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    store.Store
	kv       *kv.Store
	sessions *session.Manager
	gallery  *gallery.Gallery
	metrics  *metrics.Metrics
}

// openApp loads configuration and opens the database.
func openApp(configPath string, logOut io.Writer) (*app, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return newApp(cfg, logOut)
}

func newApp(cfg *config.Config, logOut io.Writer) (*app, error) {
	logger := setupLogger(cfg.Logging, logOut)

	checker, err := auth.ForScheme(cfg.Auth.PasswordScheme)
	if err != nil {
		return nil, err
	}

	db, err := store.NewSQLiteStoreWithDriver(cfg.Database.Driver, cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		store:  db,
		kv:     kv.New(db, logger),
	}

	opts := []session.Option{
		session.WithLogger(logger),
		session.WithCredentialChecker(checker),
		session.WithDefaultExpiryDays(cfg.Session.DefaultExpiryDays),
	}
	if cfg.Metrics.Enabled {
		a.metrics = metrics.New(prometheus.NewRegistry())
		var totals []metrics.Sample
		if a.kv.Get(context.Background(), metrics.SlotKey, &totals) {
			if err := a.metrics.Restore(totals); err != nil {
				logger.Warn("some metric totals were not restored", "error", err)
			}
		}
		opts = append(opts, session.WithMetrics(a.metrics))
	}

	a.sessions = session.NewManager(a.kv, db, opts...)
	a.gallery = gallery.New(a.sessions, a.kv, db, logger)
	return a, nil
}

// Close persists metric totals, refreshes the textfile export, and closes
// the database.
func (a *app) Close() error {
	var errs []error
	if a.metrics != nil {
		totals, err := a.metrics.Snapshot()
		if err != nil {
			errs = append(errs, err)
		} else if !a.kv.Save(context.Background(), metrics.SlotKey, totals) {
			errs = append(errs, errors.New("saving metric totals"))
		}
		if a.cfg.Metrics.Path != "" {
			if err := a.metrics.WriteTextfile(a.cfg.Metrics.Path); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if err := a.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing database: %w", err))
	}
	return errors.Join(errs...)
}
