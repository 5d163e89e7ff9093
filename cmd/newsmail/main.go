package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/sungwon/newsmail/internal/api"
	"github.com/sungwon/newsmail/internal/auth"
	"github.com/sungwon/newsmail/internal/config"
	"github.com/sungwon/newsmail/internal/logger"
)

// newApp is replaced in tests to observe the wired app.
var newApp = buildApp

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run executes the command and returns the process exit code. Every path
// returns through here so deferred cleanup always runs.
func run(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("newsmail", flag.ContinueOnError)
	configDir := fs.String("config", "config", "directory containing config.yaml")
	once := fs.Bool("once", false, "dispatch today's news summaries and exit")
	genKey := fs.Bool("gen-api-key", false, "generate an API key and its bcrypt hash, then exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *genKey {
		if err := generateAPIKey(stdout); err != nil {
			fmt.Fprintf(os.Stderr, "failed to generate API key: %v\n", err)
			return 1
		}
		return 0
	}

	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}

	log := logger.NewFromConfig(logger.LoggingConfig{
		Level:     cfg.Logging.Level,
		Output:    cfg.Logging.Output,
		FilePath:  cfg.Logging.FilePath,
		MaxSizeMB: cfg.Logging.MaxSizeMB,
		MaxFiles:  cfg.Logging.MaxFiles,
	})
	log.Info().Str("provider", cfg.Provider.Type).Msg("starting newsmail")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize")
		return 1
	}
	defer a.close()

	if *once {
		if a.job == nil {
			log.Error().Msg("-once requires database.url to load today's news summaries")
			return 1
		}
		report := a.job.Run(ctx)
		json.NewEncoder(stdout).Encode(report)
		if !report.Success {
			return 1
		}
		return 0
	}

	if a.scheduler != nil {
		if err := a.scheduler.Start(ctx); err != nil {
			log.Error().Err(err).Msg("failed to start scheduler")
			return 1
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
		Handler:      api.NewRouter(a.apiDeps(cfg, log)),
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server error")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down newsmail")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	if a.scheduler != nil {
		if err := a.scheduler.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("scheduler shutdown error")
		}
	}

	log.Info().Msg("newsmail stopped")
	return 0
}

func generateAPIKey(w io.Writer) error {
	key, err := auth.GenerateAPIKey()
	if err != nil {
		return err
	}
	hash, err := auth.HashAPIKey(key)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "API key:      %s\napi_key_hash: %s\n", key, hash)
	return nil
}
