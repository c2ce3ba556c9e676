package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	httpapi "github.com/aussiebroadwan/voxauth/internal/auth/http"
	"github.com/aussiebroadwan/voxauth/internal/auth/limiter"
	"github.com/aussiebroadwan/voxauth/internal/auth/mailer"
	"github.com/aussiebroadwan/voxauth/internal/auth/service"
	"github.com/aussiebroadwan/voxauth/internal/auth/speech"
	"github.com/aussiebroadwan/voxauth/internal/auth/store"
	"github.com/aussiebroadwan/voxauth/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/voxauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/voxauth/pkg/cryptox"
	"github.com/aussiebroadwan/voxauth/pkg/retryx"
	"github.com/aussiebroadwan/voxauth/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags "-X ...BuildVersion=".
var BuildVersion = "v0.1.0"

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db      store.Store
	secret  []byte
	mailer  mailer.Sender
	speech  speech.Transcriber
	limiter limiter.Limiter
	redis   *redis.Client // nil unless AUTH_REDIS_ADDR is set

	// closers run on shutdown after the server has drained
	closers []io.Closer

	// Services
	sessionService      *service.SessionService
	accountService      *service.AccountService
	housekeepingService *service.HousekeepingService
	stopHousekeeping    func()

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	ctx := context.Background()

	if err := cryptox.LoadPepperFile(cfg.PepperFile); err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	secret, err := InitSessionSecret(cfg, app.logger)
	if err != nil {
		_ = app.closeAll()
		return nil, fmt.Errorf("failed to initialize session secret: %w", err)
	}
	app.secret = secret

	if err := app.initCollaborators(ctx); err != nil {
		_ = app.closeAll()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.closeAll()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler exposes the routed HTTP handler, mainly for in-process tests.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run serves until SIGINT or SIGTERM, then drains and shuts down. A listener
// failure also shuts down, and is returned.
func (app *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app.startHousekeeping()
	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serveErr := make(chan error, 1)
	go func() { serveErr <- app.server.ListenAndServe() }()

	var runErr error
	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		app.logger.Info("shutdown signal received")
	}

	if err := app.Shutdown(); err != nil {
		return errors.Join(runErr, fmt.Errorf("graceful shutdown failed: %w", err))
	}
	return runErr
}

// startHousekeeping runs the cleanup loop until Shutdown.
func (app *Application) startHousekeeping() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		app.housekeepingService.Run(ctx)
	}()
	app.stopHousekeeping = func() {
		cancel()
		<-done
	}
}

// Shutdown drains in-flight requests for up to the grace period, stops the
// housekeeping loop and closes every collaborator. Safe to call once.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		_ = app.server.Close()
	}

	if app.stopHousekeeping != nil {
		app.stopHousekeeping()
		app.stopHousekeeping = nil
	}

	if err := app.closeAll(); err != nil {
		return err
	}
	app.logger.Info("auth service stopped")
	return nil
}

// closeAll releases collaborators in reverse order of creation and returns
// the first error.
func (app *Application) closeAll() error {
	var first error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			app.logger.Error("error closing dependency", "error", err)
			if first == nil {
				first = err
			}
		}
	}
	app.closers = nil
	return first
}

// initDatabase opens the configured store and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.DatabaseDriver {
	case "postgres":
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL)
	default:
		db, err = sqlite.NewStore(sqlite.DSN(app.cfg.DatabaseFile))
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}
	app.closers = append(app.closers, db)

	log := app.logger.With("driver", app.cfg.DatabaseDriver)
	if sv, ok := db.(interface {
		SchemaVersion() (uint, bool, error)
	}); ok {
		if v, dirty, err := sv.SchemaVersion(); err == nil {
			log = log.With("schema_version", v, "dirty", dirty)
		}
	}
	log.Info("database migrations applied successfully")
	return nil
}

// initCollaborators builds the mail, speech and attempt-limit backends.
func (app *Application) initCollaborators(ctx context.Context) error {
	var sender mailer.Sender
	if app.cfg.SMTP.Host == "" {
		app.logger.Warn("AUTH_SMTP_HOST not set, verification codes will only be logged")
		sender = mailer.LogSender{Log: app.logger}
	} else {
		smtp, err := mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     app.cfg.SMTP.Host,
			Port:     app.cfg.SMTP.Port,
			Username: app.cfg.SMTP.Username,
			Password: app.cfg.SMTP.Password,
			From:     app.cfg.SMTP.From,
			Timeout:  app.cfg.SMTP.Timeout,
		})
		if err != nil {
			return fmt.Errorf("failed to configure smtp: %w", err)
		}
		sender = smtp
		app.logger.Info("smtp mailer configured", "host", app.cfg.SMTP.Host, "port", app.cfg.SMTP.Port)
	}
	app.mailer = mailer.Retrying{
		Next: sender,
		Policy: retryx.Policy{
			MaxRetries:     app.cfg.SMTP.Retries,
			AttemptTimeout: app.cfg.SMTP.Timeout,
		},
	}

	var transcriber speech.Transcriber = speech.Disabled{}
	if app.cfg.Speech.Provider == "google" {
		g, err := speech.NewGoogleTranscriber(ctx, app.cfg.Speech.CredentialsFile)
		if err != nil {
			return fmt.Errorf("failed to configure speech provider: %w", err)
		}
		app.closers = append(app.closers, g)
		transcriber = g
		app.logger.Info("google speech transcription enabled", "language", app.cfg.Speech.LanguageCode)
	} else {
		app.logger.Warn("speech provider disabled, voice enrollment and voice login will fail")
	}
	app.speech = speech.Retrying{
		Next: transcriber,
		Policy: retryx.Policy{
			MaxRetries:     app.cfg.Speech.Retries,
			AttemptTimeout: app.cfg.Speech.Timeout,
		},
	}

	limits := limiter.Config{
		MaxAttempts: app.cfg.Limiter.MaxAttempts,
		Window:      app.cfg.Limiter.Window,
	}
	if app.cfg.Limiter.RedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{
			Addr:     app.cfg.Limiter.RedisAddr,
			Password: app.cfg.Limiter.RedisPassword,
			DB:       app.cfg.Limiter.RedisDB,
		})
		app.closers = append(app.closers, app.redis)
		app.limiter = limiter.NewRedisLimiter(app.redis, limits)
		app.logger.Info("attempt limiter backed by redis", "addr", app.cfg.Limiter.RedisAddr)
	} else {
		app.limiter = limiter.NewMemoryLimiter(limits)
		app.logger.Info("attempt limiter in memory; limits are per replica")
	}

	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	sessions, err := service.NewSessionService(app.secret, app.cfg.Issuer, app.cfg.SessionTTL, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize sessions: %w", err)
	}
	app.sessionService = sessions

	app.accountService = &service.AccountService{
		Store: app.db,
		OTP: &service.OTPService{
			Store: app.db,
			TTL:   app.cfg.OTPTTL,
		},
		Correlation: service.CorrelationIssuer{},
		Voice: &service.VoiceService{
			Store:       app.db,
			Transcriber: app.speech,
			Format: speech.SampleFormat{
				Encoding:        app.cfg.Speech.Encoding,
				SampleRateHertz: app.cfg.Speech.SampleRateHertz,
				LanguageCode:    app.cfg.Speech.LanguageCode,
			}.WithDefaults(),
			TempDir:        app.cfg.Audio.TempDir,
			MaxSampleBytes: app.cfg.Audio.MaxBytes,
		},
		Sessions: sessions,
		Mailer:   app.mailer,
		Limiter:  app.limiter,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	if p, ok := app.limiter.(service.Pruner); ok {
		app.housekeepingService.Pruners = append(app.housekeepingService.Pruners, p)
	}

	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.sessionService,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AccountService = app.accountService
	router.MaxUploadBytes = app.cfg.Audio.MaxBytes
	router.Limits = app.cfg.RateLimits
	if app.redis != nil {
		client := app.redis
		router.PingLimiter = func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			return client.Ping(ctx).Err()
		}
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
