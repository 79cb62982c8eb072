// Command server runs the AdCP Sales Agent: a dual A2A (JSON-RPC 2.0)
// and MCP (tool-call) server exposing inventory discovery, media-buy
// management, creative sync, and delivery reporting, routed per
// publisher tenant and advertiser principal.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kagent-dev/adcp-sales-agent/internal/adapter"
	"github.com/kagent-dev/adcp-sales-agent/internal/agentcard"
	"github.com/kagent-dev/adcp-sales-agent/internal/audit"
	"github.com/kagent-dev/adcp-sales-agent/internal/config"
	"github.com/kagent-dev/adcp-sales-agent/internal/dispatcher"
	"github.com/kagent-dev/adcp-sales-agent/internal/mcpbridge"
	"github.com/kagent-dev/adcp-sales-agent/internal/pushconfig"
	"github.com/kagent-dev/adcp-sales-agent/internal/skills"
	"github.com/kagent-dev/adcp-sales-agent/internal/tenant"
	"github.com/kagent-dev/adcp-sales-agent/internal/webhook"
)

// setupLogger builds a zap-backed logr.Logger, mirroring the teacher's
// cmd/main.go setupLogger (level string -> zapcore.Level, ISO8601
// timestamps, production config falling back to development config on
// build error).
func setupLogger(logLevel string) (logr.Logger, *zap.Logger) {
	var zapLevel zapcore.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	zapConfig.EncoderConfig.TimeKey = "timestamp"
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zapLogger, err := zapConfig.Build()
	if err != nil {
		devConfig := zap.NewDevelopmentConfig()
		devConfig.Level = zap.NewAtomicLevelAt(zapLevel)
		zapLogger, _ = devConfig.Build()
	}
	return zapr.NewLogger(zapLogger), zapLogger
}

func main() {
	logLevel := os.Getenv("ADCP_LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logger, zapLogger := setupLogger(logLevel)
	defer func() { _ = zapLogger.Sync() }()

	baseCtx := logr.NewContext(context.Background(), logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error(err, "failed to load configuration")
		os.Exit(1)
	}

	registerer := prometheus.NewRegistry()

	store := tenant.NewMemoryStore()
	seedDevTenant(store)

	var cache tenant.Cache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		cache = tenant.NewRedisCache(redisClient, 5*time.Minute)
		logger.Info("using Redis tenant cache", "addr", cfg.RedisAddr)
	} else {
		cache = tenant.NewInMemoryCache(5 * time.Minute)
		logger.Info("using in-process tenant cache")
	}
	resolver := tenant.NewResolver(store, cache)

	var configStore pushconfig.Store
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(baseCtx, cfg.DatabaseURL)
		if err != nil {
			logger.Error(err, "failed to connect to Postgres")
			os.Exit(1)
		}
		defer pool.Close()
		pgStore := pushconfig.NewPostgresStore(pool)
		if err := pgStore.EnsureSchema(baseCtx); err != nil {
			logger.Error(err, "failed to create push notification config table")
			os.Exit(1)
		}
		configStore = pgStore
		logger.Info("using Postgres-backed push notification config store")
	} else {
		configStore = pushconfig.NewMemoryStore()
		logger.Info("using in-memory push notification config store")
	}

	var adServer adapter.AdServerAdapter
	if cfg.DryRun {
		adServer = adapter.NewDryRunAdapter()
		logger.Info("ad server adapter running in dry-run mode")
	} else {
		adServer = adapter.NewInMemoryAdapter()
	}
	catalog := adapter.NewInMemoryCatalog()
	formats := adapter.NewInMemoryFormatRegistry()
	signalsProvider := adapter.NewInMemorySignalsProvider()

	registry := skills.NewRegistry(logger, adServer, catalog, formats, signalsProvider)

	webhookService := webhook.NewService(logger, cfg.WorkerPoolSize, registerer)
	auditFeed := audit.NewFeed(logger, registerer)

	d := dispatcher.New(logger, resolver, registry, configStore, webhookService, auditFeed, cfg.TaskRetention)
	sweepCtx, cancelSweep := context.WithCancel(baseCtx)
	defer cancelSweep()
	d.StartSweeper(sweepCtx)

	mcpHandler := mcpbridge.New(logger, resolver, registry)
	cardHandler := agentcard.NewHandler("AdCP Sales Agent", "Multi-tenant advertising sales agent speaking AdCP", "1.0.0")

	router := mux.NewRouter()
	router.Handle("/a2a", d).Methods(http.MethodPost)
	router.PathPrefix("/mcp/").Handler(mcpHandler)
	router.Handle("/.well-known/agent-card.json", cardHandler).Methods(http.MethodGet)
	router.Handle("/.well-known/agent.json", cardHandler).Methods(http.MethodGet)
	router.Handle("/agent.json", cardHandler).Methods(http.MethodGet)
	router.HandleFunc("/debug/tenant", debugTenantHandler(resolver)).Methods(http.MethodGet)
	router.HandleFunc("/debug/activity", debugActivityHandler(auditFeed)).Methods(http.MethodGet)
	router.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	router.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(registerer, promhttp.HandlerOpts{}))

	httpServer := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	logger.Info("starting AdCP sales agent", "addr", cfg.Addr(), "env", cfg.Env, "dry_run", cfg.DryRun)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(err, "server failed")
			os.Exit(1)
		}
	}()

	<-stop
	shutdownCtx, shutdownCancel := context.WithTimeout(baseCtx, 5*time.Second)
	defer shutdownCancel()
	logger.Info("shutting down server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(err, "error shutting down server")
	}
}

// seedDevTenant registers one tenant/principal pair from env vars so
// the server has something to route against out of the box; real
// tenant/principal provisioning is owned by the Admin subsystem
// (out of scope, SPEC_FULL §1).
func seedDevTenant(store *tenant.MemoryStore) {
	tenantID := os.Getenv("ADCP_DEV_TENANT_ID")
	if tenantID == "" {
		tenantID = "demo"
	}
	subdomain := os.Getenv("ADCP_DEV_TENANT_SUBDOMAIN")
	if subdomain == "" {
		subdomain = tenantID
	}
	token := os.Getenv("ADCP_DEV_PRINCIPAL_TOKEN")
	if token == "" {
		token = "dev-token"
	}

	store.SeedTenant(tenant.Tenant{
		TenantID:  tenantID,
		Subdomain: subdomain,
		IsActive:  true,
	})
	store.SeedPrincipal(tenant.Principal{
		PrincipalID: "dev-principal",
		TenantID:    tenantID,
		AccessToken: token,
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// debugTenantHandler resolves the tenant for the incoming request's
// headers and reports it, without requiring a valid principal token —
// useful for diagnosing routing ambiguity in the field (§4.5/§4.8).
func debugTenantHandler(resolver *tenant.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// net/http keeps the request host in r.Host rather than r.Header.
		headers := r.Header
		if headers.Get("Host") == "" && r.Host != "" {
			headers = r.Header.Clone()
			headers.Set("Host", r.Host)
		}
		t, adcpErr := resolver.ResolveTenant(r.Context(), headers)
		w.Header().Set("Content-Type", "application/json")
		if adcpErr != nil {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprintf(w, `{"error":%q}`, adcpErr.Error())
			return
		}
		fmt.Fprintf(w, `{"tenant_id":%q,"subdomain":%q,"virtual_host":%q}`, t.TenantID, t.Subdomain, t.VirtualHost)
	}
}

// debugActivityHandler streams the live audit feed as SSE for the
// Admin UI (§4.8).
func debugActivityHandler(feed *audit.Feed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		ch := feed.Subscribe()
		defer feed.Unsubscribe(ch)

		for {
			select {
			case <-r.Context().Done():
				return
			case entry, open := <-ch:
				if !open {
					return
				}
				body, err := audit.MarshalEntry(entry)
				if err != nil {
					continue
				}
				_, _ = w.Write([]byte("data: "))
				_, _ = w.Write(body)
				_, _ = w.Write([]byte("\n\n"))
				if ok {
					flusher.Flush()
				}
			}
		}
	}
}
