package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gcbaptista/promo-search-engine/api"
	"github.com/gcbaptista/promo-search-engine/config"
	"github.com/gcbaptista/promo-search-engine/internal/analytics"
	"github.com/gcbaptista/promo-search-engine/internal/jobs"
	"github.com/gcbaptista/promo-search-engine/internal/linebot"
	"github.com/gcbaptista/promo-search-engine/internal/metrics"
	"github.com/gcbaptista/promo-search-engine/internal/source"
	"github.com/gcbaptista/promo-search-engine/services"
)

const shutdownTimeout = 10 * time.Second

func serveCMD(cfgPath *string) *cobra.Command {
	var addr string
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, LINE webhook and data refresher",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closer, err := setup(*cfgPath)
			if err != nil {
				return err
			}
			defer closer.Close()
			if addr != "" {
				cfg.Server.Address = addr
			}
			return runServer(cfg)
		},
	}
	serve.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.address)")
	return serve
}

func runServer(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	sessions, closeSessions, err := newSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSessions()

	analyticsService := analytics.NewService(nil, cfg.Analytics.MaxEvents, cfg.Analytics.DataFile)
	defer func() {
		if err := analyticsService.Flush(); err != nil {
			log.WithError(err).Warn("failed to flush analytics data")
		}
	}()

	eng, err := newEngine(cfg, sessions, analyticsService)
	if err != nil {
		return err
	}
	analyticsService.SetStatsProvider(eng)

	src := newSource(cfg)
	refresher, err := source.NewRefresher(src, eng, cfg.Data.RefreshInterval)
	if err != nil {
		return err
	}
	if _, err := refresher.Refresh(ctx); err != nil {
		log.WithError(err).Warn("initial load failed, serving an empty collection until the next refresh")
	}
	refresher.Start(ctx, cfg.Data.RefreshInterval)

	if cfg.Data.Source == "file" && cfg.Data.Watch {
		watcher, err := source.NewWatcher(cfg.Data.File, cfg.Data.WatchDebounce, func() {
			if _, err := refresher.Refresh(ctx); err != nil {
				log.WithError(err).Warn("reload after data file change failed")
			}
		})
		if err != nil {
			log.WithError(err).Warn("data file watch disabled")
		} else {
			defer watcher.Stop()
		}
	}

	jobManager, err := jobs.NewManager(cfg.Jobs.Workers, cfg.Jobs.MaxAge)
	if err != nil {
		return err
	}
	jobManager.Start()
	defer jobManager.Stop()

	deps := api.Dependencies{
		Searcher:  eng,
		Refresher: refresher,
		Jobs:      jobManager,
		Analytics: analyticsService,
	}
	if cfg.LINE.Enabled() {
		lineHandler, err := newLINEHandler(cfg, eng)
		if err != nil {
			return err
		}
		deps.LINE = lineHandler
		log.Info("LINE webhook mounted at /callback")
	}

	router, err := api.NewRouter(deps, cfg.Server.MaxRequestSize)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"addr":    cfg.Server.Address,
			"source":  src.Name(),
			"session": cfg.Session.Backend,
			"version": version,
		}).Info("promotion search service started")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newLINEHandler(cfg *config.Config, searcher services.PromotionSearcher) (http.Handler, error) {
	replier, err := linebot.NewReplier(cfg.LINE.ChannelAccessToken)
	if err != nil {
		return nil, err
	}
	return linebot.NewHandler(cfg.LINE, cfg.Server.ViewBaseURL, searcher, replier)
}
