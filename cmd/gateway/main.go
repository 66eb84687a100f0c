package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/ByronChang/cart-frontend/internal/gateway/httpx"
	"github.com/ByronChang/cart-frontend/internal/pkg/config"
	"github.com/ByronChang/cart-frontend/internal/pkg/sessions"
	"github.com/ByronChang/cart-frontend/internal/pkg/telemetry"
	"github.com/ByronChang/cart-frontend/internal/storefront/api"
	"github.com/ByronChang/cart-frontend/internal/storefront/auth"
	"github.com/ByronChang/cart-frontend/internal/storefront/cart"
	"github.com/ByronChang/cart-frontend/internal/storefront/catalog"
	"github.com/ByronChang/cart-frontend/internal/storefront/orders"
)

// sessionTokens adapts the sessions store to the API client's token
// lookup.
type sessionTokens struct {
	store sessions.Store
}

func (s sessionTokens) Token(ctx context.Context) (string, error) {
	return s.store.Load(ctx)
}

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("configuration failed", "error", err)
		os.Exit(1)
	}

	telemetry.InitLogger(cfg.Telemetry.ServiceName)

	ctx := context.Background()
	if cfg.Telemetry.TracingEnabled {
		shutdown, err := telemetry.SetupTracer(ctx, cfg.Telemetry.ServiceName)
		if err != nil {
			slog.Error("tracer setup failed", "error", err)
			os.Exit(1)
		}
		defer shutdown(context.Background())
	}

	tokenStore, err := newTokenStore(cfg.Session)
	if err != nil {
		slog.Error("token store setup failed", "error", err)
		os.Exit(1)
	}
	if closer, ok := tokenStore.(io.Closer); ok {
		defer closer.Close()
	}

	client := api.NewClient(cfg.API.BaseURL,
		api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		api.WithTokenSource(sessionTokens{store: tokenStore}),
	)

	cartStore := cart.NewStore(client, slog.Default())
	catalogStore := catalog.NewStore(client, slog.Default())
	orderStore := orders.NewStore(client, slog.Default())
	authManager := auth.NewManager(client, tokenStore, cartStore, slog.Default())

	// Restore a previous session, if one was persisted.
	bootCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := authManager.Bootstrap(bootCtx); err != nil {
		slog.Warn("session bootstrap failed, starting unauthenticated", "error", err)
	}
	cancel()

	handler := httpx.NewHandler(authManager, cartStore, catalogStore, orderStore)
	router := httpx.NewRouter(handler)

	slog.Info("storefront gateway listening", "addr", cfg.HTTP.Addr, "api", cfg.API.BaseURL)
	if err := http.ListenAndServe(cfg.HTTP.Addr, router); err != nil {
		slog.Error("http server failed", "error", err)
		os.Exit(1)
	}
}

func newTokenStore(cfg config.SessionConfig) (sessions.Store, error) {
	switch cfg.Backend {
	case "redis":
		return sessions.NewRedisStore(cfg.RedisAddr, "storefront"), nil
	case "memory":
		return sessions.NewMemoryStore(), nil
	default:
		return sessions.OpenSQLiteStore(cfg.SQLitePath)
	}
}
