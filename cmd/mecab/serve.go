package main

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wippyai/mecab-bridge/bridge"
	"github.com/wippyai/mecab-bridge/mcpserver"
	"github.com/wippyai/mecab-bridge/metrics"
	"github.com/wippyai/mecab-bridge/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		col := metrics.New()
		b := bridge.New(append(col.BridgeOptions(), bridge.WithLogger(logger))...)
		defer b.Close()
		svc, err := newService(cfg, logger, b)
		if err != nil {
			return err
		}
		defer svc.Close()

		opts := []server.Option{server.WithLogger(logger.Named("http"))}
		if cfg.Server.Metrics {
			opts = append(opts, server.WithMetrics(col.Handler()))
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		err = server.New(svc, cfg.Server, opts...).ListenAndServe(ctx)
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol server on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()

		b := bridge.New(bridge.WithLogger(logger))
		defer b.Close()
		svc, err := newService(cfg, logger, b)
		if err != nil {
			return err
		}
		defer svc.Close()

		logger.Info("serving MCP on stdio")
		return mcpserver.New(svc, logger.Named("mcp")).ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, mcpCmd)
	serveCmd.Flags().String("addr", "", "listen address, overrides the config")
}

