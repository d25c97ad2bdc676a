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

	pg "get-a-pet/internal/adapters/storage/postgres"
	mdb "get-a-pet/internal/adapters/storage/mongodb"
	"get-a-pet/internal/adapters/uploads/cloudinary"
	"get-a-pet/internal/adapters/uploads/disk"
	"get-a-pet/internal/adapters/uploads/s3"
	"get-a-pet/internal/config"
	"get-a-pet/internal/platform/logger"
	"get-a-pet/internal/ports/uploads"
	"get-a-pet/internal/router"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// @title Get A Pet API
// @version 1.0
// @description API de adopción de mascotas: usuarios, anuncios, visitas y adopciones.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// .env es opcional; en prod las variables vienen del entorno.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.Log.App,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", map[string]any{"err": err})
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log logger.Logger) error {
	opts := router.Options{Config: cfg, Logger: log}

	switch cfg.Storage.Driver {
	case config.StorageMongo:
		client, db, err := mdb.Connect(ctx, cfg.Storage.MongoURI)
		if err != nil {
			return err
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}()
		opts.Mongo = db
	case config.StoragePostgres:
		db, err := pg.Open(cfg.Storage.PostgresDSN)
		if err != nil {
			return fmt.Errorf("postgres open: %w", err)
		}
		defer db.Close()
		opts.DB = db
	}
	if err := router.EnsureSchema(ctx, opts); err != nil {
		return err
	}
	log.Info("storage ready", map[string]any{"driver": cfg.Storage.Driver})

	store, err := newUploadStore(ctx, cfg.Uploads)
	if err != nil {
		return err
	}
	opts.Uploads = store

	if cfg.Redis.URI != "" {
		ropts, err := redis.ParseURL(cfg.Redis.URI)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URI: %w", err)
		}
		rdb := redis.NewClient(ropts)
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			// Sin Redis el servicio sigue, solo sin rate limit.
			log.Warn("redis unavailable, rate limit disabled", map[string]any{"err": err})
		} else {
			opts.Redis = rdb
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router.NewRouter(opts),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr})
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

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newUploadStore(ctx context.Context, cfg config.UploadsConfig) (uploads.Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case config.UploadsCloudinary:
		return cloudinary.New(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, "getapet")
	case config.UploadsS3:
		return s3.New(ctx, s3.Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
		})
	default:
		return disk.New(cfg.DiskDir), nil
	}
}
