package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/aprendeexcel/quiz-engine/internal/activity"
	"github.com/aprendeexcel/quiz-engine/internal/auth"
	"github.com/aprendeexcel/quiz-engine/internal/auth/jwt"
	"github.com/aprendeexcel/quiz-engine/internal/config"
	"github.com/aprendeexcel/quiz-engine/internal/db/queries"
	"github.com/aprendeexcel/quiz-engine/internal/db/repository"
	"github.com/aprendeexcel/quiz-engine/internal/logging"
	"github.com/aprendeexcel/quiz-engine/internal/notify"
	"github.com/aprendeexcel/quiz-engine/internal/progress"
	"github.com/aprendeexcel/quiz-engine/internal/question"
	"github.com/aprendeexcel/quiz-engine/internal/quiz"
	"github.com/aprendeexcel/quiz-engine/internal/server"
	ws "github.com/aprendeexcel/quiz-engine/pkg/http/ws"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server

	quiz        *quiz.Service
	janitor     *quiz.Janitor
	broadcaster *progress.Broadcaster
	bgCancels   []context.CancelFunc
}

// New bootstraps logger, Postgres, Redis, domain services and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	bank, err := loadBank(cfg.Quiz.BankPath)
	if err != nil {
		return nil, err
	}
	logger.Info().Int("questions", bank.Len()).Int("max_points", bank.TotalPoints()).Msg("question bank loaded")

	pool, err := pgxpool.New(ctx, cfg.Postgres.ConnString())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	q := queries.New(pool)
	hub := ws.NewHub(logger)

	// Progress: postgres behind a redis read-through cache, updates fanned
	// out over pub/sub to every instance's websocket hub.
	progressStore := progress.NewCachedStore(
		repository.NewProgressRepository(q),
		progress.NewCache(redisClient, cfg.Progress.CacheTTL),
		logger,
	)
	broadcaster := progress.NewBroadcaster(redisClient, hub, cfg.Progress.PubSubChannel, logger)
	aggregator := progress.NewAggregator(bank, time.Now, logging.Component(logger, "aggregator"))
	progressSvc := progress.NewService(progressStore, aggregator, broadcaster, logger)

	var notifier quiz.CompletionNotifier
	if cfg.SMTP.Enabled() {
		notifier = notify.NewEmailNotifier(notify.EmailConfig{
			SMTPHost:     cfg.SMTP.Host,
			SMTPPort:     cfg.SMTP.Port,
			SMTPUsername: cfg.SMTP.Username,
			SMTPPassword: cfg.SMTP.Password,
			FromEmail:    cfg.SMTP.FromEmail,
			AdminEmail:   cfg.SMTP.AdminEmail,
		}, logger)
		logger.Info().Str("admin", cfg.SMTP.AdminEmail).Msg("completion notices enabled")
	} else {
		logger.Warn().Msg("SMTP not configured; completion notices disabled")
	}

	quizSvc := quiz.NewService(aggregator, progressSvc, notifier, quiz.ServiceOptions{
		IntermediateSaveTimeout: cfg.Quiz.IntermediateSaveTimeout,
		FinalSaveTimeout:        cfg.Quiz.FinalSaveTimeout,
		SessionTTL:              cfg.Quiz.SessionTTL,
	}, logger)

	var janitor *quiz.Janitor
	if cfg.Quiz.SweepInterval > 0 {
		janitor = quiz.NewJanitor(quizSvc, cfg.Quiz.SweepInterval, logger)
	}

	activitySvc := activity.NewService(
		repository.NewActivityRepository(repository.NewPostgresActivityStore(pool)),
		time.Now,
		logger,
	)

	tokens := jwt.NewManager(jwt.TokenConfig{
		Secret: []byte(cfg.Security.JWTSecret),
		Issuer: cfg.Security.JWTIssuer,
	})

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient,
		auth.Middleware(tokens, logger),
		quiz.NewHTTPHandler(quizSvc, logger),
		progress.NewHTTPHandler(progressSvc, logger),
		progress.NewWSHandler(progressSvc, hub, logger),
		activity.NewHTTPHandler(activitySvc, logger),
	)

	return &Application{
		cfg:         cfg,
		logger:      logger,
		pool:        pool,
		redis:       redisClient,
		http:        apiServer,
		quiz:        quizSvc,
		janitor:     janitor,
		broadcaster: broadcaster,
		bgCancels:   make([]context.CancelFunc, 0, 2),
	}, nil
}

func loadBank(path string) (*question.Bank, error) {
	if path == "" {
		bank, err := question.DefaultBank()
		if err != nil {
			return nil, fmt.Errorf("load default question bank: %w", err)
		}
		return bank, nil
	}
	bank, err := question.LoadBankFile(path)
	if err != nil {
		return nil, fmt.Errorf("load question bank %s: %w", path, err)
	}
	return bank, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	// in-flight progress saves and notices still need the pool
	a.quiz.Wait()

	for _, cancel := range a.bgCancels {
		cancel()
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return runErr
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	a.goBackground(ctx, "progress broadcaster", a.broadcaster.Run)
	if a.janitor != nil {
		a.goBackground(ctx, "session janitor", a.janitor.Run)
	}
}

func (a *Application) goBackground(ctx context.Context, name string, run func(context.Context) error) {
	bgCtx, cancel := context.WithCancel(ctx)
	a.bgCancels = append(a.bgCancels, cancel)
	go func() {
		if err := run(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Warn().Err(err).Str("worker", name).Msg("background worker stopped")
		}
	}()
}
