package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nurpe/faktura/internal/auth"
	"github.com/nurpe/faktura/internal/db"
	"github.com/nurpe/faktura/internal/excel"
	httphandler "github.com/nurpe/faktura/internal/http"
	"github.com/nurpe/faktura/internal/http/middleware"
	"github.com/nurpe/faktura/internal/logger"
	"github.com/nurpe/faktura/internal/pdf"
	"github.com/nurpe/faktura/internal/repository"
	"github.com/nurpe/faktura/internal/service"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log := a.cfg, a.log

	database, err := db.New(cfg, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if sqlDB, err := database.DB(); err == nil {
		defer sqlDB.Close()
	}

	contactRepo := repository.NewContactRepository(database)
	invoiceRepo := repository.NewInvoiceRepository(database)

	contactService := service.NewContactService(contactRepo, cfg, log)
	invoiceService := service.NewInvoiceService(
		invoiceRepo,
		contactRepo,
		pdf.NewGenerator(cfg.Invoices.Issuer),
		excel.NewGenerator(),
		cfg,
		log,
	)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(contactService, invoiceService, logger.WithComponent(log, "http"))
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, cfg.HTTP.AllowedOrigins)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("version", version).Msg("starting faktura")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
