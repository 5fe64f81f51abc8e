package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"biolink/internal/api"
	"biolink/internal/api/handlers"
	"biolink/internal/api/middleware"
	"biolink/internal/engine/analytics"
	"biolink/internal/engine/pages"
	"biolink/internal/engine/tenants"
	"biolink/internal/pkg/logger"
	"biolink/internal/platform/audit"
	"biolink/internal/platform/auth"
	"biolink/internal/platform/blob"
	"biolink/internal/platform/config"
	"biolink/internal/platform/mailer"
	"biolink/internal/platform/repositories"
	"biolink/internal/platform/store"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "biolink-server",
	Short: "Serve public link pages and the page editor API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "configs/config.yaml", "Path to config file")
}

func run(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(cfg.Logging)

	if cfg.JWT.Secret == "" {
		return errors.New("jwt.secret must be set")
	}

	// Store
	kv, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	defer kv.Close()

	auditLog := audit.NewLogger(log.Logger)

	// Services
	tokenSvc := auth.NewTokenService(cfg.JWT)
	tenantSvc := tenants.NewService(kv, auditLog)
	pageSvc := pages.NewService(pages.NewRepository(kv), tenantSvc, publicBaseURL(cfg.Domains.PublicDomain))
	analyticsSvc := analytics.NewService(analytics.NewRepository(kv), pageSvc)

	if cfg.Admin.MasterEmail != "" {
		admin, err := tenantSvc.BootstrapMasterAdmin(ctx, cfg.Admin.MasterEmail)
		if err != nil {
			return fmt.Errorf("bootstrap master admin: %w", err)
		}
		log.Info().Str("email", admin.Email).Msg("Master admin ready")
	}

	proxies, err := middleware.NewProxyTrust(cfg.Server.TrustedProxies)
	if err != nil {
		return fmt.Errorf("server.trusted_proxies: %w", err)
	}

	uploader := blob.NewLocalUploader(cfg.Blob)
	rl := middleware.NewRateLimiter()
	defer rl.Stop()

	// Router
	deps := &api.Dependencies{
		AuthHandler:      handlers.NewAuthHandler(tenantSvc, tokenSvc, auth.NewMagicLinkGuard(kv), mailer.New(cfg.Email), cfg.Domains.AppDomain),
		AdminHandler:     handlers.NewAdminHandler(tenantSvc),
		PageHandler:      handlers.NewPageHandler(pageSvc, auditLog),
		PublicHandler:    handlers.NewPublicHandler(pageSvc, analyticsSvc),
		AnalyticsHandler: handlers.NewAnalyticsHandler(analyticsSvc),
		MemberHandler:    handlers.NewMemberHandler(tenantSvc),
		UploadHandler:    handlers.NewUploadHandler(uploader, cfg.Blob.MaxUploadSize),
		HealthHandler:    handlers.NewHealthHandler(kv),
		AuthMiddleware:   middleware.NewAuthMiddleware(tokenSvc, repositories.NewUserRepository(kv)),
		TenantMiddleware: middleware.NewTenantMiddleware(tenantSvc),
		RateLimiter:      rl,
		RateLimits:       cfg.RateLimit,
		ProxyTrust:       proxies,
		UploadsDir:       uploader.BaseDir(),
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("store", cfg.Store.Driver).Msg("Server starting")
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func publicBaseURL(domain string) string {
	scheme := "https"
	if strings.HasPrefix(domain, "localhost") || strings.HasPrefix(domain, "127.0.0.1") {
		scheme = "http"
	}
	return scheme + "://" + domain
}
