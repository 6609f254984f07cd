package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salespro-go/internal/advisor"
	"salespro-go/internal/config"
	"salespro-go/internal/logger"
	"salespro-go/internal/processor"
	"salespro-go/internal/server"
	"salespro-go/internal/store"
)

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		logger.New().WithError(err).Fatal("failed to load config")
	}
	logger.Setup(cfg.Logging.Level, cfg.Environment)

	log := logger.New()
	log.WithField("service", "salespro-go").Info("starting service")

	adv, err := advisor.New(cfg.LLM)
	switch {
	case errors.Is(err, advisor.ErrNotConfigured):
		log.WithField("provider", cfg.LLM.Provider).Warn("llm provider has no api key, advice disabled")
	case err != nil:
		log.WithError(err).Fatal("failed to init llm provider")
	default:
		log.WithField("provider", adv.Name()).WithField("model", cfg.LLM.Model).Info("llm provider ready")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	uploads := store.New(cfg.Server.UploadTTL)
	go uploads.Run(ctx, time.Minute)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      server.New(cfg, uploads, processor.New(cfg, adv)).Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server terminated")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
