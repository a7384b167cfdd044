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

	_ "inquiry-system/docs"
	"inquiry-system/internal/config"
	"inquiry-system/internal/domain/inquiry"
	"inquiry-system/internal/domain/user"
	"inquiry-system/internal/domain/vote"
	api "inquiry-system/internal/http"
	"inquiry-system/internal/metrics"
	"inquiry-system/internal/platform/database"
	jwtpkg "inquiry-system/internal/platform/jwt"
	"inquiry-system/internal/platform/otel"
	"inquiry-system/internal/repository/postgres"
	"inquiry-system/internal/worker"
)

// @title           Inquiry Support API
// @version         1.0
// @description     Inquiries with ternary or simple support voting and JWT auth
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	api.SetLogger(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited", "event", "server_failed", "module", "main", "error", err.Error())
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Setup(ctx, "inquiry-system", cfg.OTelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	metrics.Register()

	db, err := database.NewPostgres(ctx, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	userSvc := user.NewService(postgres.NewUserRepo(db))
	inquirySvc := inquiry.NewService(postgres.NewInquiryRepo(db), inquiry.NewTypeModes(cfg.SimpleTypes))
	voteSvc := vote.NewService(postgres.NewVoteRepo(db), inquirySvc, logger)

	jwtMgr := jwtpkg.NewManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)

	voteCh := make(chan worker.VoteEvent, 100)
	eventWorker := worker.NewEventWorker(voteCh, logger)
	go eventWorker.Run(ctx)

	router := api.NewRouter(userSvc, inquirySvc, voteSvc, jwtMgr, voteCh, db, api.VoteLimits{
		PerMinute: cfg.VoteRatePerMinute,
		Burst:     cfg.VoteRateBurst,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "event", "server_started", "module", "main", "port", cfg.Port)
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
	logger.Info("shutting down", "event", "server_stopping", "module", "main")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server stopped", "event", "server_stopped", "module", "main")
	return nil
}
