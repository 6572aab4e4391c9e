// Package main is the entrypoint for the Chatvault API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/chatvault/chatvault/internal/auth"
	"github.com/chatvault/chatvault/internal/cache"
	"github.com/chatvault/chatvault/internal/config"
	"github.com/chatvault/chatvault/internal/handler"
	"github.com/chatvault/chatvault/internal/identity"
	"github.com/chatvault/chatvault/internal/middleware"
	"github.com/chatvault/chatvault/internal/migrations"
	"github.com/chatvault/chatvault/internal/repository"
	"github.com/chatvault/chatvault/internal/server"
	"github.com/chatvault/chatvault/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if err := migrations.Up(ctx, cfg.DatabaseURL); err != nil {
		logger.Error(
			"failed to apply migrations",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("migrations applied")

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	hasher := auth.NewHasher(auth.HashParams{
		Time:    cfg.HashTime,
		Memory:  cfg.HashMemory,
		Threads: cfg.HashThreads,
	})
	tokens := auth.NewTokenService([]byte(cfg.SecretKey), cfg.AccessTokenTTL)

	authService, err := service.NewAuthService(repo, hasher, tokens)
	if err != nil {
		logger.Error("failed to initialize auth service", "error", err)
		os.Exit(1)
	}
	chatService := service.NewChatService(repo)

	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	authHandler := handler.NewAuthHandler(authService, logger)
	chatHandler := handler.NewChatBoxHandler(chatService, logger)

	var oauthHandler *handler.OAuthHandler
	if cfg.OAuthEnabled() {
		provider := identity.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectURL)
		oauthHandler = handler.NewOAuthHandler(provider, authService, logger)
	} else {
		logger.Info("Google OAuth not configured, /auth/google routes disabled")
	}

	r := setupRouter(h, healthHandler, authHandler, chatHandler, oauthHandler, authService, tokens, cacheClient, logger)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	chatHandler *handler.ChatBoxHandler,
	oauthHandler *handler.OAuthHandler,
	authService *service.AuthService,
	tokens *auth.TokenService,
	cacheClient *cache.Cache,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	r.Get("/", h.Hello)

	// Public auth endpoints
	r.Post("/users/", authHandler.Register)
	r.Post("/token", authHandler.Login)

	if oauthHandler != nil {
		r.Get("/auth/google", oauthHandler.Redirect)
		r.Get("/auth/google/callback", oauthHandler.Callback)
	}

	// Chat box routes (require a bearer token)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(middleware.AuthConfig{
			Logger:   logger,
			Tokens:   tokens,
			Resolver: authService,
			Cache:    cacheClient,
		}))
		r.Get("/chatboxes/", chatHandler.List)
		r.Post("/chatboxes/", chatHandler.Create)
		r.Delete("/chatboxes/{id}", chatHandler.Delete)
		r.Get("/chatboxes/{id}/messages/", chatHandler.History)
		r.Post("/chatboxes/{id}/messages/", chatHandler.PostMessage)
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
