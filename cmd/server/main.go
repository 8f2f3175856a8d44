package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/cybertest-backend/internal/config"
	"github.com/stemsi/cybertest-backend/internal/database"
	"github.com/stemsi/cybertest-backend/internal/handler"
	"github.com/stemsi/cybertest-backend/internal/logger"
	"github.com/stemsi/cybertest-backend/internal/middleware"
	"github.com/stemsi/cybertest-backend/internal/repository"
	"github.com/stemsi/cybertest-backend/internal/router"
	"github.com/stemsi/cybertest-backend/internal/service"
	"github.com/stemsi/cybertest-backend/internal/validator"
	"github.com/stemsi/cybertest-backend/internal/worker"
)

const (
	examRequestsPerMinute = 120
	shutdownTimeout       = 5 * time.Second
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("session_backend", cfg.SessionBackend).
		Strs("versions", cfg.AllowedVersions).
		Msg("Starting CyberTest Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	checks := map[string]handler.HealthCheck{
		"postgres": pool.Ping,
	}

	// ─── Connect to Redis (sessions, login attempts, answer queue) ─────
	var rdb *redis.Client
	if cfg.SessionBackend == config.SessionBackendRedis {
		rdb, err = database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	questionRepo := repository.NewQuestionRepository(pool)
	answerLogRepo := repository.NewAnswerLogRepository(pool)

	// ─── Initialize Session + Limiter Backends ─────────────────────────
	var (
		sessions   service.SessionStore
		limiter    service.AttemptLimiter
		answerLog  service.AnswerLogQueue
		queueDepth handler.QueueDepth
	)
	if rdb != nil {
		sessions = service.NewRedisSessionStore(rdb, cfg.ExamSessionTTL)
		limiter = service.NewRedisAttemptLimiter(rdb, cfg.LoginMaxAttempts, cfg.LoginWindow)
		queue := service.NewRedisAnswerLogQueue(rdb)
		answerLog = queue
		queueDepth = queue.Len
	} else {
		sessions = service.NewMemorySessionStore(cfg.ExamSessionTTL)
		limiter = service.NewMemoryAttemptLimiter(cfg.LoginMaxAttempts, cfg.LoginWindow)
		log.Warn().Msg("In-memory sessions and login limiter: state is per-process and lost on restart")
	}

	// ─── Initialize Services ──────────────────────────────────────────
	authService, err := service.NewAuthService(cfg, limiter, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize auth service")
	}
	questionValidator := service.NewQuestionValidator(cfg.AllowedVersions, questionRepo, cfg.StoreTimeout)
	questionService := service.NewQuestionService(questionRepo, questionValidator, cfg.StoreTimeout, log)
	sessionService := service.NewExamSessionService(
		questionRepo, sessions, answerLog, cfg.DefaultNumQuestions, cfg.StoreTimeout, log,
	)

	// Shared by the HTTP exam routes and the answer stream.
	examLimiter := middleware.NewRateLimiter(examRequestsPerMinute, time.Minute)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Exam:     handler.NewExamHandler(sessionService),
		Question: handler.NewQuestionHandler(questionService),
		WS:       handler.NewWSHandler(sessionService, examLimiter, log, cfg.AllowedOrigins),
		System:   handler.NewSystemHandler(checks, queueDepth, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	go examLimiter.StartCleanup(workerCtx)

	if rdb != nil {
		answerLogWorker := worker.NewAnswerLogWorker(answerLogRepo, rdb, log)
		workers.Add(1)
		go func() {
			defer workers.Done()
			answerLogWorker.Start(workerCtx)
		}()
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, examLimiter, handlers, cfg, log)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for the answer queue to drain.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}
