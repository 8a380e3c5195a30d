package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/sujittra/Uni-Exam/internal/cache"
	"github.com/sujittra/Uni-Exam/internal/coderunner"
	"github.com/sujittra/Uni-Exam/internal/config"
	"github.com/sujittra/Uni-Exam/internal/database"
	"github.com/sujittra/Uni-Exam/internal/handler"
	"github.com/sujittra/Uni-Exam/internal/logger"
	"github.com/sujittra/Uni-Exam/internal/repository"
	"github.com/sujittra/Uni-Exam/internal/router"
	"github.com/sujittra/Uni-Exam/internal/service"
	"github.com/sujittra/Uni-Exam/internal/session"
	"github.com/sujittra/Uni-Exam/internal/store"
	"github.com/sujittra/Uni-Exam/internal/validator"
	"github.com/sujittra/Uni-Exam/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting UniExam Backend")

	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// Repositories.
	studentRepo := repository.NewStudentRepository(pool)
	teacherRepo := repository.NewTeacherRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	progressRepo := repository.NewProgressRepository(pool)

	// Stores: Redis is the fast local cache, Postgres the store of record,
	// the Redis list queue feeds the background sync worker.
	progressCache := cache.NewProgressCache(rdb)
	syncQueue := cache.NewSyncQueue(rdb)
	stores := store.NewAdapter(progressCache, progressRepo, syncQueue, log)

	runner := coderunner.NewHTTPRunner(cfg.CodeRunnerURL, cfg.CodeRunnerTimeout)

	sessions := session.NewController(examRepo, stores, runner, cfg.TickInterval, cfg.SyncInterval, log)

	// Services.
	authService := service.NewAuthService(cfg, rdb, studentRepo, teacherRepo)
	examService := service.NewExamService(examRepo, progressRepo, sessions, rdb, log)

	// Handlers.
	handlers := &router.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		StudentPortal: handler.NewStudentPortalHandler(examService, sessions, log),
		Teacher:       handler.NewTeacherHandler(examService, log),
		WS:            handler.NewWSHandler(sessions, log, cfg.AllowedOrigins),
	}

	// Background sync worker.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	syncWorker := worker.NewSyncWorker(progressRepo, rdb, log)
	go syncWorker.Start(workerCtx)

	r := router.SetupRouter(authService, handlers, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop session tickers. Records are persisted on every mutation and
	//    resumed from the stores at next open, so nothing is lost here.
	sessions.Shutdown()

	// 3. Stop the sync worker and wait for the queue to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow the worker to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
