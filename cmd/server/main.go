// Command server runs the query hub HTTP API.
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

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/mattn/go-sqlite3"

	"aihub/internal/api"
	"aihub/internal/app"
	"aihub/internal/config"
	internaldb "aihub/internal/db"
	"aihub/internal/domain"
	"aihub/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	writeDB, readDB, err := internaldb.OpenSQLitePair(cfg.MetaDBPath, 8)
	if err != nil {
		return err
	}
	defer writeDB.Close()
	defer readDB.Close()

	if err := internaldb.RunMigrations(writeDB); err != nil {
		return err
	}

	var fetcher domain.ObjectFetcher
	if cfg.HasS3Config() {
		s3f, err := storage.NewS3Fetcher(cfg)
		if err != nil {
			return err
		}
		fetcher = s3f
		logger.Info("dataset storage: s3", "bucket", *cfg.S3Bucket)
	} else {
		fetcher = storage.NewDirFetcher(cfg.DataDir)
		logger.Info("dataset storage: local directory", "dir", cfg.DataDir)
	}

	a := app.New(app.Deps{
		Cfg:     cfg,
		WriteDB: writeDB,
		ReadDB:  readDB,
		Fetcher: fetcher,
		Logger:  logger,
	})

	handler := api.NewHandler(a.Services.Query, a.Services.Dataset)
	router := api.NewRouter(handler, api.RouterConfig{
		JWTSecret:          []byte(cfg.JWTSecret),
		APIKey:             cfg.APIKey,
		APIKeyPrincipal:    cfg.APIKeyPrincipal,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http api listening", "addr", cfg.ListenAddr, "tls", cfg.TLSCertFile != "")
		if cfg.TLSCertFile != "" {
			errCh <- srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			errCh <- srv.ListenAndServe()
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
