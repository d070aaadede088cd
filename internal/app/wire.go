package app

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"cipherbox/internal/box"
	"cipherbox/internal/domain"
	"cipherbox/internal/engine"
	"cipherbox/internal/logging"
	"cipherbox/internal/metrics"
	"cipherbox/internal/store"
)

// Wire bundles the engine, logger and metrics built from a Config.
type Wire struct {
	Config   Config
	Log      *logrus.Logger
	Engine   *engine.Engine
	Registry *prometheus.Registry // nil when metrics are disabled
	Metrics  *metrics.Metrics     // nil when metrics are disabled
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	w := &Wire{Config: cfg, Log: log}
	if cfg.Metrics.Enabled {
		w.Registry = prometheus.NewRegistry()
		if w.Metrics, err = metrics.New(w.Registry); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	var backend engine.BackendFactory
	switch store.Kind(cfg.Storage.Backend) {
	case store.KindBadger:
		backend = engine.BadgerBackend(cfg.Storage.SyncWrites, log)
	default:
		backend = engine.FileBackend
	}

	w.Engine = engine.New(
		engine.WithBackendFactory(backend),
		engine.WithPassphrase(cfg.Identity.Passphrase),
		engine.WithLogger(log.WithField("package", "engine")),
	)
	return w, nil
}

// Open opens the box at the configured home.
func (w *Wire) Open() (*box.Box, error) {
	return box.Open(w.Engine, w.Config.Home, w.boxOptions()...)
}

// OpenWith opens the box at the configured home with an external identity,
// persisted according to the configured identity mode.
func (w *Wire) OpenWith(identity []byte) (*box.Box, error) {
	mode, err := domain.ParseIdentityMode(w.Config.Identity.Mode)
	if err != nil {
		return nil, err
	}
	return box.OpenWith(w.Engine, w.Config.Home, identity, mode, w.boxOptions()...)
}

func (w *Wire) boxOptions() []box.Option {
	return []box.Option{box.WithLogger(w.Log), box.WithMetrics(w.Metrics)}
}
