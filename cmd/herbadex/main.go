package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	blobS3 "github.com/kailas-cloud/herbadex/internal/blob/s3"
	"github.com/kailas-cloud/herbadex/internal/config"
	dbRedis "github.com/kailas-cloud/herbadex/internal/db/redis"
	"github.com/kailas-cloud/herbadex/internal/jobs"
	logpkg "github.com/kailas-cloud/herbadex/internal/logger"
	"github.com/kailas-cloud/herbadex/internal/metrics"
	imagerepo "github.com/kailas-cloud/herbadex/internal/repository/image"
	specimenrepo "github.com/kailas-cloud/herbadex/internal/repository/specimen"
	chiTransport "github.com/kailas-cloud/herbadex/internal/transport/chi"
	openaiVision "github.com/kailas-cloud/herbadex/internal/transport/openai"
	healthuc "github.com/kailas-cloud/herbadex/internal/usecase/health"
	imageuc "github.com/kailas-cloud/herbadex/internal/usecase/image"
	searchuc "github.com/kailas-cloud/herbadex/internal/usecase/specsearch"
	"github.com/kailas-cloud/herbadex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting herbadex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	if err := specimenrepo.EnsureIndex(ctx, store); err != nil {
		logger.Fatal("Failed to ensure specimen index", zap.Error(err))
	}

	// Register vision metrics explicitly (no init())
	metrics.RegisterVisionMetrics()

	blob, err := blobS3.New(ctx, &cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to create blob store", zap.Error(err))
	}

	vision := openaiVision.NewExtractor(&openaiVision.Config{
		APIKey:    cfg.Vision.APIKey,
		BaseURL:   cfg.Vision.BaseURL,
		Model:     cfg.Vision.Model,
		MaxTokens: cfg.Vision.MaxTokens,
		Detail:    cfg.Vision.Detail,
		Logger:    logger,
	})
	logger.Info("Vision extractor created",
		zap.String("model", cfg.Vision.Model),
		zap.String("detail", cfg.Vision.Detail),
	)

	queue := jobs.NewQueue(store, cfg.Jobs.Queue)

	imageRepo := imagerepo.New(store)
	specimenRepo := specimenrepo.New(store)

	imageSvc := imageuc.New(imageRepo, blob, vision, queue, logger)
	searchSvc := searchuc.New(specimenRepo, cfg.Search.DefaultLimit, cfg.Search.MaxLimit, logger)
	healthSvc := healthuc.New(store, vision, queue)

	// Worker pool draining the analysis queue
	workerCtx, stopWorkers := context.WithCancel(ctx)
	pool := jobs.NewPool(
		queue,
		func(ctx context.Context, job jobs.AnalyzeJob) error {
			return imageSvc.Analyze(ctx, job.ImageID, job.Revision)
		},
		cfg.Jobs.Workers,
		time.Duration(cfg.Jobs.PollTimeoutSec)*time.Second,
		logger,
	)
	pool.Start(workerCtx)
	logger.Info("Analysis workers started", zap.Int("workers", cfg.Jobs.Workers))

	server := chiTransport.NewServer(imageSvc, searchSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	// Let in-flight jobs finish before closing the store.
	stopWorkers()
	pool.Wait()

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
