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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/user/classifier-service/internal/adapter/chromedp_fetcher"
	"github.com/user/classifier-service/internal/adapter/detector"
	"github.com/user/classifier-service/internal/adapter/httpfetch"
	"github.com/user/classifier-service/internal/adapter/postgres"
	redis_adapter "github.com/user/classifier-service/internal/adapter/redis"
	"github.com/user/classifier-service/internal/adapter/s3storage"
	"github.com/user/classifier-service/internal/delivery/http/handler"
	"github.com/user/classifier-service/internal/delivery/http/router"
	"github.com/user/classifier-service/internal/repository"
	"github.com/user/classifier-service/internal/usecase"
	"github.com/user/classifier-service/pkg/config"
	"github.com/user/classifier-service/pkg/logger"
	"github.com/user/classifier-service/pkg/metrics"
)

const browserPoolSize = 2

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// --- Logger ---
	logLevel := logger.ParseLevel(cfg.LogLevel)
	logger.Init(os.Stdout, logLevel, cfg.WorkerID)
	slog.Info("Logger initialized", "level", logLevel.String())

	// --- Metrics ---
	metrics.Init()
	slog.Info("Metrics initialized")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database Connections ---

	// PostgreSQL
	dbpool, err := pgxpool.New(ctx, cfg.PostgresURL())
	if err != nil {
		slog.Error("Unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	if err := postgres.Migrate(ctx, dbpool); err != nil {
		slog.Error("Unable to apply migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("PostgreSQL connection pool established")

	// Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		slog.Error("Unable to connect to Redis", "error", err)
		os.Exit(1)
	}
	slog.Info("Redis connection established")

	// --- Repositories ---
	queueRepo := redis_adapter.NewQueueRepo(rdb)
	submissionRepo := redis_adapter.NewSubmissionRepo(rdb)
	poolManager := redis_adapter.NewPoolManager(rdb, cfg.TerminateQueue)
	productRepo := postgres.NewProductRepo(dbpool)
	imageRepo := postgres.NewImageRepo(dbpool)
	objectRepo := postgres.NewObjectRepo(dbpool)
	featureRepo := postgres.NewFeatureRepo(dbpool)
	versionRepo := postgres.NewVersionRepo(dbpool)

	storage, err := newStorage(ctx, cfg)
	if err != nil {
		slog.Error("Unable to initialize object storage", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}
	fetcher := newFetcher(cfg)
	detectorRepo := detector.NewHTTPDetector(cfg.DetectorURL, cfg.DetectorTimeout())

	// --- Run State ---
	state, err := usecase.LoadRunState(ctx, versionRepo, poolManager, cfg.WorkerID, cfg.PodNamespace)
	if err != nil {
		slog.Error("Unable to start worker", "error", err)
		os.Exit(1)
	}
	slog.Info("Worker state loaded", "version_id", state.VersionID, "namespace", state.Namespace)

	// --- Use Cases ---
	opts := usecase.ClassifierOptions{EnableSubImages: cfg.EnableSubImages}
	if cfg.EnableMobileImages {
		opts.Mobile = usecase.NewMobileRenderer(storage, productRepo, cfg.MobileBucket)
	}
	linker := usecase.NewEntityLinker(imageRepo, objectRepo, featureRepo, productRepo, storage, cfg.ObjectBucket, cfg.ReleaseMode)
	classifier := usecase.NewClassifier(
		state,
		fetcher,
		usecase.NewDetectorClient(detectorRepo, cfg.ScoreMin, cfg.MaxObjects),
		linker,
		usecase.NewDownstreamNotifier(queueRepo, cfg.DownstreamQueue),
		opts,
	)
	dispatcher := usecase.NewDispatcher(queueRepo, cfg.ClassifyQueue, classifier, state)

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	heartbeat := usecase.NewHeartbeatMonitor(state, poolManager, cfg.HealthCheckInterval(), cancelRun)
	go heartbeat.Run(runCtx)

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(
		usecase.NewJobSubmitter(submissionRepo, queueRepo, cfg.ClassifyQueue),
		usecase.NewInspector(imageRepo, objectRepo),
		state,
		queueRepo,
		cfg.ClassifyQueue,
		map[string]handler.HealthCheck{
			"postgres": dbpool.Ping,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
	)
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router.New(apiHandler),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	go func() {
		slog.Info("Starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", "port", cfg.ServerPort, "error", err)
			cancelRun()
		}
	}()

	// --- Dispatch Loop ---
	runErr := dispatcher.Run(runCtx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown failed", "error", err)
	}

	if runErr != nil {
		slog.Error("Dispatcher stopped with error", "error", runErr)
		os.Exit(1)
	}
	if state.Terminating() {
		slog.Info("Worker terminated by heartbeat monitor")
		os.Exit(1)
	}
	slog.Info("Worker stopped")
}

func newStorage(ctx context.Context, cfg *config.Config) (repository.ObjectStorage, error) {
	if cfg.StorageBackend == "filesystem" {
		fs, err := s3storage.NewFilesystemStorage(cfg.StorageDir, cfg.StoragePublicURL)
		if err != nil {
			return nil, err
		}
		return fs, nil
	}
	s3, err := s3storage.New(ctx, s3storage.Config{
		Region:    cfg.AWSRegion,
		AccessKey: cfg.AWSAccessKey,
		SecretKey: cfg.AWSSecretKey,
		Endpoint:  cfg.S3Endpoint,
	})
	if err != nil {
		return nil, err
	}
	return s3, nil
}

func newFetcher(cfg *config.Config) repository.ImageFetcher {
	proxies := httpfetch.NewProxyManager(cfg.Proxies())
	if cfg.FetchMode == "browser" {
		return chromedp_fetcher.NewChromedpFetcher(browserPoolSize, cfg.FetchTimeout(), proxies.UserAgent())
	}
	return httpfetch.NewFetcher(cfg.FetchTimeout(), proxies)
}
