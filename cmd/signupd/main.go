// Package main provides the signupd binary, which serves the subscription
// signup form.
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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/pthm/signupform/apiclient"
	"github.com/pthm/signupform/internal/config"
	"github.com/pthm/signupform/internal/logging"
)

const (
	Version = "0.1.0"
	appName = "signupd"

	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Subscription signup form server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(serveCmd(), &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	})
	return cmd
}

func serveCmd() *cobra.Command {
	var configPath, apiURL, listen, logLevel string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the signup form",
		Long: `Serve the signup form over HTTP.

Settings are read from defaults, the --config JSON file, .env files,
SIGNUP_* environment variables, and flags, later sources winning.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.Source{
				File:     configPath,
				EnvFiles: []string{".env", ".env.local"},
				Overrides: map[string]string{
					config.APIURLKey:     apiURL,
					config.ListenAddrKey: listen,
					config.LogLevelKey:   logLevel,
				},
			})
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (JSON)")
	cmd.Flags().StringVar(&apiURL, "api-url", "", "Signup API endpoint")
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (default :8080)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	log, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	client, err := apiclient.New(cfg.APIURL, apiclient.WithLogger(log))
	if err != nil {
		return fmt.Errorf("api client: %w", err)
	}

	prom := prometheus.NewRegistry()
	prom.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	e, err := newServer(cfg, log, client, prom)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Str("api", client.URL()).Msg("listening")
		errc <- e.Start(cfg.ListenAddr)
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
		return err
	}
	return nil
}
