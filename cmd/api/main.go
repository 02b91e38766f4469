package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"admin-console/internal/audit"
	"admin-console/internal/config"
	"admin-console/internal/gateway"
	"admin-console/internal/httpapi"
	"admin-console/internal/permission"
	"admin-console/internal/session"
	"admin-console/internal/settings"
	"admin-console/internal/token"
	"admin-console/pkg/logger"
	"admin-console/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	codec, err := token.NewCodec(cfg.Session.Secret, log)
	if err != nil {
		log.Error("token codec init failed", "err", err)
		os.Exit(1)
	}
	store := &session.CookieStore{
		Name:      cfg.Session.CookieName,
		ChunkSize: cfg.Session.ChunkSize,
		MaxAge:    cfg.Session.TTL,
		Secure:    cfg.TransportSecure(),
	}
	sessions, err := session.NewManager(codec, store, cfg.Session.TTL)
	if err != nil {
		log.Error("session manager init failed", "err", err)
		os.Exit(1)
	}

	perms := permission.NewEvaluator(cfg.Access.AdminRoles)

	signer, err := gateway.NewSigner(cfg.Gateway.Secret)
	if err != nil {
		log.Error("signer init failed", "err", err)
		os.Exit(1)
	}
	registry := prometheus.NewRegistry()
	client, err := gateway.NewClient(gateway.ClientConfig{
		BaseURL:        cfg.Gateway.BaseURL,
		Channel:        cfg.Gateway.Channel,
		DefaultCountry: cfg.Access.DefaultCountry,
		Timeout:        cfg.Gateway.Timeout,
		RPS:            cfg.Gateway.RPS,
		Metrics:        gateway.NewMetrics(registry),
	}, signer, log)
	if err != nil {
		log.Error("gateway client init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	settingsRepo, err := settings.NewPostgresRepo(db)
	if err != nil {
		log.Error("settings repo init failed", "err", err)
		os.Exit(1)
	}
	if err := settingsRepo.EnsureSchema(rootCtx); err != nil {
		log.Error("settings schema init failed", "err", err)
		os.Exit(1)
	}
	settingsSvc, err := settings.NewService(settingsRepo, 30*time.Second)
	if err != nil {
		log.Error("settings service init failed", "err", err)
		os.Exit(1)
	}

	auditRepo, err := audit.NewPostgresRepo(db)
	if err != nil {
		log.Error("audit repo init failed", "err", err)
		os.Exit(1)
	}
	if err := auditRepo.EnsureSchema(rootCtx); err != nil {
		log.Error("audit schema init failed", "err", err)
		os.Exit(1)
	}

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	h := httpapi.Handlers{
		Sessions: sessions,
		Gateway:  client,
		Perms:    perms,
		Settings: settingsSvc,
		Audit:    audit.NewService(auditRepo),
		Redis:    rdb,
		Login:    cfg.Login,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, h, sessions, perms, client, registry)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("console api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
