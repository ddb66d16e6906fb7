// memberd is the membership registration service: document verification,
// member submission, payment resolution, and card generation over HTTP.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tnbsp/membership-workflow/internal/card"
	"github.com/tnbsp/membership-workflow/internal/common"
	"github.com/tnbsp/membership-workflow/internal/export"
	"github.com/tnbsp/membership-workflow/internal/extract"
	"github.com/tnbsp/membership-workflow/internal/filestore"
	"github.com/tnbsp/membership-workflow/internal/registration"
	"github.com/tnbsp/membership-workflow/internal/repository"
	"github.com/tnbsp/membership-workflow/internal/server"
	"github.com/tnbsp/membership-workflow/internal/session"
	"github.com/tnbsp/membership-workflow/internal/verify"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	files, err := filestore.NewLocalStore(filestore.LocalConfig{
		TempDir:   cfg.Storage.TempDir,
		DocsDir:   cfg.Storage.DocsDir,
		PhotosDir: cfg.Storage.PhotoDir,
		CardsDir:  cfg.Storage.CardsDir,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize file storage", "error", err)
		os.Exit(1)
	}

	members, health, closeDB, err := openRepository(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer closeDB()

	sessions, err := openSessionStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize session store", "error", err)
		os.Exit(1)
	}

	direct := extract.NewDirectExtractor(extract.DirectConfig{
		Pdftotext: cfg.OCR.Pdftotext,
		MaxPages:  cfg.OCR.MaxPages,
	}, logger)
	ocr := extract.NewOCRExtractor(extract.OCRConfig{
		Pdftoppm:  cfg.OCR.Pdftoppm,
		Tesseract: cfg.OCR.Tesseract,
		Lang:      cfg.OCR.Lang,
		DPI:       cfg.OCR.DPI,
		MaxPages:  cfg.OCR.MaxPages,
	}, logger)
	verifier := verify.New(direct, ocr, logger)

	regSvc := registration.NewService(verifier, sessions, files, members, cfg.Session.TTL, logger)
	cardSvc := card.NewService(files, cfg.Card.BaseURL, logger)
	exportSvc := export.NewService(members, logger)

	srv := server.New(cfg.Server.HTTPAddr, server.Deps{
		Registration: regSvc,
		Cards:        cardSvc,
		Export:       exportSvc,
		Health:       health,
		Logger:       logger,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
			os.Exit(1)
		}
	}
	logger.Info("memberd stopped")
}

// openRepository picks Postgres when DB_URL is set, otherwise the local
// SQLite file. Schema setup runs on startup in both cases.
func openRepository(ctx context.Context, cfg *common.Config, logger *slog.Logger) (repository.MemberRepository, func(context.Context) error, func(), error) {
	if cfg.Database.DSN != "" {
		pool, err := repository.Open(ctx, repository.Config{
			DSN:             cfg.Database.DSN,
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
			DialTimeout:     cfg.Database.DialTimeout,
		}, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := repository.MigratePostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		health := func(ctx context.Context) error {
			return repository.HealthCheck(ctx, pool, 2*time.Second, logger)
		}
		return repository.NewPostgresMemberRepository(pool, logger), health, pool.Close, nil
	}

	db, err := repository.OpenSQLite(cfg.Database.SQLitePath, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	health := func(ctx context.Context) error { return db.PingContext(ctx) }
	closer := func() { _ = db.Close() }
	return repository.NewSQLiteMemberRepository(db, logger), health, closer, nil
}

// openSessionStore uses Redis when REDIS_URL is set, otherwise an in-process
// store. The in-process store is only correct for a single instance.
func openSessionStore(ctx context.Context, cfg *common.Config, logger *slog.Logger) (session.Store, error) {
	if cfg.Redis.URL == "" {
		logger.Info("using in-memory session store")
		return session.NewInMemoryStore(), nil
	}
	opt, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, err
	}
	logger.Info("using redis session store")
	return session.NewRedisStore(client), nil
}
