package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/gcbaptista/promo-search-engine/config"
	"github.com/gcbaptista/promo-search-engine/internal/engine"
	"github.com/gcbaptista/promo-search-engine/internal/lexicon"
	"github.com/gcbaptista/promo-search-engine/internal/logging"
	"github.com/gcbaptista/promo-search-engine/internal/metrics"
	"github.com/gcbaptista/promo-search-engine/internal/session"
	"github.com/gcbaptista/promo-search-engine/internal/source"
)

// setup loads configuration and configures logging. The returned closer
// flushes the log file, if any.
func setup(cfgPath string) (*config.Config, io.Closer, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	closer, err := logging.Configure(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	return cfg, closer, nil
}

// newSessionStore builds the configured session backend. The memory store
// runs its janitor until ctx is cancelled.
func newSessionStore(ctx context.Context, cfg *config.Config) (session.Store, func(), error) {
	switch cfg.Session.Backend {
	case "redis":
		client := session.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		store, err := session.NewRedisStore(client, cfg.Redis.KeyPrefix, cfg.Session.Timeout)
		if err != nil {
			return nil, nil, err
		}
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}
		log.WithField("addr", cfg.Redis.Addr).Info("using redis session store")
		return store, func() { _ = store.Close() }, nil
	default:
		var recorder metrics.Recorder
		store := session.NewMemoryStore(cfg.Session.Timeout,
			session.WithEvictionObserver(recorder.AddSessionEvictions))
		store.Start(ctx, cfg.Session.SweepInterval)
		return store, func() {}, nil
	}
}

// newEngine builds an engine using the configured lexicon.
func newEngine(cfg *config.Config, sessions session.Store, tracker engine.EventTracker) (*engine.Engine, error) {
	lex, err := lexicon.Load(cfg.Search.LexiconFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load lexicon: %w", err)
	}
	return engine.NewEngine(engine.Options{
		Settings: cfg.Search,
		Lexicon:  lex,
		Sessions: sessions,
		Tracker:  tracker,
		Metrics:  metrics.Recorder{},
	})
}

// newSource returns the configured data source
func newSource(cfg *config.Config) source.Source {
	if cfg.Data.Source == "upstream" {
		return source.NewUpstreamClient(cfg.Upstream, &http.Client{})
	}
	return source.NewFileSource(cfg.Data.File)
}
