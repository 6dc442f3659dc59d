package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	handler "github.com/felipemarinho97/torrent-streams/api"
	"github.com/felipemarinho97/torrent-streams/config"
	"github.com/felipemarinho97/torrent-streams/consts"
	"github.com/felipemarinho97/torrent-streams/logging"
	"github.com/felipemarinho97/torrent-streams/schema"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:           consts.AppName,
		Short:         "Bulgarian tracker search turned into stream descriptors",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configFlag)
			if err != nil {
				return err
			}
			logging.InitLogger(loaded.LogLevel, loaded.LogFormat)
			*cfg = *loaded
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newServeCommand(cfg))
	rootCmd.AddCommand(newSearchCommand(cfg))
	return rootCmd
}

func newServeCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the streams API and the metrics endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			h := a.handler()
			indexerMux := http.NewServeMux()
			metricsMux := http.NewServeMux()

			indexerMux.HandleFunc("/", handler.HandlerIndex)
			indexerMux.HandleFunc("/streams", h.HandlerStreams)
			indexerMux.HandleFunc("/cache", h.HandlerCache)

			metricsMux.Handle("/metrics", promhttp.Handler())

			server := &http.Server{Addr: cfg.ListenAddr, Handler: logging.HTTPLoggingMiddleware(indexerMux)}
			metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux}

			go func() {
				logging.Info().Str("addr", cfg.MetricsAddr).Msg("Metrics listening")
				if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logging.Fatal().Err(err).Msg("Metrics server failed")
				}
			}()

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = metricsServer.Shutdown(shutdownCtx)
				if err := server.Shutdown(shutdownCtx); err != nil {
					logging.Error().Err(err).Msg("Failed to shut down server")
				}
			}()

			logging.Info().Str("addr", cfg.ListenAddr).Interface("build", consts.GetBuildInfo()).Msg("Server listening")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Fatal().Err(err).Msg("Server failed")
			}
			return nil
		},
	}
}

func newSearchCommand(cfg *config.Config) *cobra.Command {
	var q schema.Query
	var contentType string

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Query every enabled source once and print the streams as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			q.Type = schema.ParseContentType(contentType)

			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			streams := a.aggregator.Streams(cmd.Context(), q)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(handler.StreamsResponse{Streams: streams})
		},
	}

	cmd.Flags().StringVar(&q.Title, "title", "", "Title to search for")
	cmd.Flags().IntVar(&q.Year, "year", 0, "Release year, 0 for any")
	cmd.Flags().StringVar(&contentType, "type", string(schema.ContentMovie), "movie or series")
	cmd.Flags().IntVar(&q.Season, "season", 0, "Season number for series")
	cmd.Flags().IntVar(&q.Episode, "episode", 0, "Episode number for series")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}
