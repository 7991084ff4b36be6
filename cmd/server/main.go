package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gyaneshwarpardhi/siloroute/internal/api"
	"github.com/gyaneshwarpardhi/siloroute/internal/config"
	"github.com/gyaneshwarpardhi/siloroute/internal/dispatch"
	"github.com/gyaneshwarpardhi/siloroute/internal/integration"
	"github.com/gyaneshwarpardhi/siloroute/internal/provider"
	"github.com/gyaneshwarpardhi/siloroute/internal/provider/discord"
	"github.com/gyaneshwarpardhi/siloroute/internal/provider/github"
	"github.com/gyaneshwarpardhi/siloroute/internal/region"
	"github.com/gyaneshwarpardhi/siloroute/internal/router"
	"github.com/gyaneshwarpardhi/siloroute/internal/signing"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	cfgPath := flag.String("config", "configs/ingress.yaml", "Path to ingress YAML config")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// ── Load config ──────────────────────────────────────────────────────────
	loader, err := config.NewLoader(*cfgPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	cfg := loader.Config()
	if err := config.Validate(cfg); err != nil {
		slog.Error("config validation failed", "err", err)
		os.Exit(1)
	}

	// ── Providers ─────────────────────────────────────────────────────────────
	providers, err := buildProviders(cfg)
	if err != nil {
		slog.Error("failed to build providers", "err", err)
		os.Exit(1)
	}
	registry := provider.NewRegistry()
	for _, p := range providers {
		registry.Register(p)
	}
	slog.Info("providers registered", "names", registry.Names())

	// ── Lookup collaborators ──────────────────────────────────────────────────
	codec := signing.NewCodec(cfg.SigningSecret)
	store := integration.NewStore(cfg)
	regions := region.NewResolver(store, cfg)
	resolver := integration.NewResolver(store, codec)

	// ── Dispatch ──────────────────────────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	forwarder := dispatch.NewHTTPForwarder(time.Duration(cfg.Server.ForwardTimeoutMs) * time.Millisecond)
	broadcaster := dispatch.NewBroadcaster(ctx, forwarder, cfg.Server.DispatchWorkers, cfg.Server.QueueDepth)

	rt := router.New(resolver, regions, dispatch.LocalControl(), forwarder, broadcaster)
	rt.AddObserver(router.NewLogObserver(logger))
	rt.AddObserver(router.MetricsObserver{})

	// ── Hot-reload ────────────────────────────────────────────────────────────
	apply := func(newCfg *config.Config) error {
		if err := config.Validate(newCfg); err != nil {
			return err
		}
		newProviders, err := buildProviders(newCfg)
		if err != nil {
			return err
		}
		registry.Swap(newProviders)
		store.Swap(newCfg)
		regions.Swap(newCfg)
		return nil
	}
	loader.OnChange(func(newCfg *config.Config) {
		if err := apply(newCfg); err != nil {
			slog.Warn("hot-reload skipped: config invalid", "err", err)
			return
		}
		slog.Info("routing map hot-reloaded",
			"regions", len(newCfg.Regions),
			"integrations", len(newCfg.Integrations),
		)
	})
	stopWatch, err := loader.Watch()
	if err != nil {
		slog.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
	} else {
		defer stopWatch()
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	handler := api.New(rt, registry, loader, apply, broadcaster.QueueUtilization)
	srv := &http.Server{
		Addr:         *addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down…")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)
	cancel() // stop dispatch workers
	broadcaster.Shutdown()
	slog.Info("goodbye")
}

// buildProviders constructs one provider per config entry.
func buildProviders(cfg *config.Config) ([]provider.Provider, error) {
	out := make([]provider.Provider, 0, len(cfg.Providers))
	for _, pc := range cfg.Providers {
		switch pc.Name {
		case "discord":
			p, err := discord.New(pc.PublicKey)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		case "github":
			out = append(out, github.New(pc.WebhookSecret))
		default:
			return nil, fmt.Errorf("unknown provider %q", pc.Name)
		}
	}
	return out, nil
}
