package main

import (
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/sells-group/lead-cli/internal/pipeline"
	"github.com/sells-group/lead-cli/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for scoring and suggestions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort > 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		metrics := server.NewMetrics(prometheus.DefaultRegisterer)
		env, err := initEnv(nil, pipeline.WithRecorder(metrics))
		if err != nil {
			return err
		}

		srv := server.New(cfg.Server, server.Deps{
			Pipeline: env.Pipeline,
			Selector: env.Selector,
			Metrics:  metrics,
			Gatherer: prometheus.DefaultGatherer,
		})
		return srv.Run(ctx, cfg.Server.Port)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP port (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}
