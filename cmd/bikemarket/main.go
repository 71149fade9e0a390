package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bikemarket/internal/adapter/cache"
	"bikemarket/internal/adapter/events"
	"bikemarket/internal/adapter/filestore"
	adapthttp "bikemarket/internal/adapter/http"
	"bikemarket/internal/adapter/metrics"
	"bikemarket/internal/adapter/passhash"
	"bikemarket/internal/adapter/postgres"
	"bikemarket/internal/app"
	"bikemarket/internal/config"
	"bikemarket/internal/domain"
	"bikemarket/internal/logger"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", env("CONFIG_PATH", "config.yaml"), "path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg := logger.New(cfg.Logger)
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Fatal("exiting", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, lg *zap.Logger) error {
	reg := metrics.NewRegistry()

	db, err := postgres.Open(cfg.Database.URL, postgres.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		QueryTimeout:    cfg.Database.QueryTimeout,
		Metrics:         metrics.NewStore(reg),
		Log:             lg.Named("postgres"),
	})
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	files, err := openFileStore(ctx, cfg.Storage, lg.Named("files"))
	if err != nil {
		return err
	}

	hasher, err := passhash.New(cfg.Auth.HashScheme, cfg.Auth.Pepper, cfg.Auth.HashIterations)
	if err != nil {
		return err
	}

	deps := app.Deps{
		Accounts: db,
		Listings: db,
		Messages: db,
		Files:    files,
		Hasher:   hasher,
		Store:    db,
		Limits: app.Limits{
			Search:        cfg.Listing.SearchLimit,
			NewestDefault: cfg.Listing.NewestDefault,
			NewestMax:     cfg.Listing.NewestMax,
		},
		Log: lg,
	}

	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedis(ctx, cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		})
		if err != nil {
			return err
		}
		defer func() { _ = rc.Close() }()
		deps.Cache = rc
		lg.Info("listing cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	if cfg.NATS.URL != "" {
		pub, err := events.Connect(cfg.NATS.URL, cfg.NATS.SubjectPrefix, cfg.NATS.ConnectTimeout, lg.Named("events"))
		if err != nil {
			return err
		}
		defer func() { _ = pub.Close() }()
		deps.Events = pub
	}

	market := app.NewMarketplace(deps)
	n, err := market.Accounts.Count(ctx)
	if err != nil {
		return err
	}
	lg.Info("marketplace ready", zap.Int("accounts", n))

	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: adapthttp.New(market.Ready, metrics.Handler(reg), lg.Named("http")).Handler(),
	}
	errCh := make(chan error, 1)
	go func() {
		lg.Info("listening", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	lg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openFileStore(ctx context.Context, cfg config.StorageConfig, lg *zap.Logger) (domain.FileStore, error) {
	if cfg.Driver == config.StorageMinio {
		m, err := filestore.NewMinio(ctx, filestore.MinioConfig{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			UseSSL:    cfg.Minio.UseSSL,
			PublicURL: cfg.Minio.PublicURL,
		}, lg)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	d, err := filestore.NewDisk(cfg.UploadDir, cfg.PublicPrefix, lg)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
