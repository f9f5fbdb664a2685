package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/cellarscan/cellarscan/internal/async"
	"github.com/cellarscan/cellarscan/internal/cache"
	"github.com/cellarscan/cellarscan/internal/common"
	"github.com/cellarscan/cellarscan/internal/ingest"
	"github.com/cellarscan/cellarscan/internal/ocr"
	"github.com/cellarscan/cellarscan/internal/pipeline"
	"github.com/cellarscan/cellarscan/internal/recordstore"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using environment")
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if len(cfg.Ingest.Roots) == 0 {
		logger.Error("WATCH_ROOTS is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("opening record store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("closing record store", "error", cerr)
		}
	}()

	ocrCache := cache.New(cache.Config{
		MaxEntries:    cfg.Cache.MaxEntries,
		DefaultTTL:    cfg.Cache.DefaultTTL,
		CheckInterval: cfg.Cache.CheckInterval,
		Memory: cache.Limits{
			Warn:    cfg.Cache.MemoryWarn,
			Cleanup: cfg.Cache.MemoryCleanup,
			Max:     cfg.Cache.MemoryMax,
		},
	}, logger)
	defer ocrCache.Close()

	vision := ocr.NewVisionClient(ocr.Config{
		BaseURL:  cfg.OCR.BaseURL,
		APIKey:   cfg.OCR.APIKey,
		Model:    cfg.OCR.Model,
		Timeout:  cfg.OCR.Timeout,
		MaxBytes: cfg.OCR.MaxBytes,
	}, logger)

	proc := pipeline.NewProcessor(logger, ocrCache, vision, nil, nil, nil)

	queue := async.NewProcessorQueue(func(ctx context.Context, job async.Job) error {
		res, err := proc.Process(ctx, job.ImageRef)
		if err != nil {
			return err
		}
		rec, err := recordstore.FromResult(res)
		if err != nil {
			return err
		}
		return store.Save(ctx, rec)
	}, logger)

	events, watchErrs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       cfg.Ingest.Roots,
		InitialScan: true,
		Debounce:    cfg.Ingest.Debounce,
		SkipHidden:  true,
	}, logger)
	if err != nil {
		logger.Error("starting watcher", "error", err)
		os.Exit(1)
	}

	go func() {
		for path := range events {
			_ = queue.Enqueue(ctx, async.Job{ID: uuid.New(), ImageRef: path})
		}
	}()
	go func() {
		for err := range watchErrs {
			logger.Error("watch error", "error", err)
		}
	}()

	// Health + reflection only; capture results land in the record store.
	grpcServer := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("listen", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	logger.Info("gRPC serving", "addr", cfg.Server.GRPCAddr)

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	grpcServer.GracefulStop()

	drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	queue.Shutdown(drainCtx)
	logger.Info("stopped")
}

// openStore picks Postgres when DB_URL is set, SQLite otherwise.
func openStore(ctx context.Context, cfg *common.Config, logger *slog.Logger) (recordstore.Store, error) {
	if cfg.Database.DSN != "" {
		pg, err := recordstore.OpenPostgres(ctx, recordstore.PostgresConfig{
			DSN:             cfg.Database.DSN,
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
			DialTimeout:     cfg.Database.DialTimeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		if err := pg.HealthCheck(ctx, 3*time.Second); err != nil {
			_ = pg.Close()
			return nil, err
		}
		return pg, nil
	}
	return recordstore.OpenSQLite(ctx, cfg.Database.SQLitePath, logger)
}
