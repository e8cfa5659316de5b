package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/mecab-bridge/hostmod"
	"github.com/wippyai/mecab-bridge/metrics"
)

var guestCmd = &cobra.Command{
	Use:   "guest <module.wasm> [args...]",
	Short: "Run a WASI command module against the mecab host module",
	Long: `Run a WASI preview1 command module. The module may import any function
of the "mecab" host module; use --list to print their signatures.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if list, _ := cmd.Flags().GetBool("list"); list {
			return nil
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()

		col := metrics.New()
		host := hostmod.New(
			hostmod.WithLogger(logger.Named("hostmod")),
			hostmod.WithBridgeOptions(col.BridgeOptions()...),
		)
		if list, _ := cmd.Flags().GetBool("list"); list {
			for _, sig := range host.Signatures() {
				fmt.Fprintln(cmd.OutOrStdout(), sig.String())
			}
			return nil
		}

		if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
			srv := &http.Server{Addr: addr, Handler: col.Handler(), ReadHeaderTimeout: 5 * time.Second}
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Warn("metrics listener failed", zap.Error(err))
				}
			}()
			defer srv.Close()
		}

		wasm, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		r, err := host.NewRuntime(ctx, hostmod.Config{
			MemoryLimitPages: cfg.Guest.MemoryLimitPages,
			WASI:             true,
		})
		if err != nil {
			return err
		}
		defer r.Close(ctx)

		code, err := host.Run(ctx, r, wasm, hostmod.RunConfig{
			Name:   filepath.Base(args[0]),
			Args:   args[1:],
			Stdin:  cmd.InOrStdin(),
			Stdout: cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
		})
		if err != nil {
			return err
		}
		if err := host.Close(); err != nil {
			return err
		}
		if code != 0 {
			return exitCode(code)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(guestCmd)
	guestCmd.Flags().Bool("list", false, "print the host functions and exit")
	guestCmd.Flags().String("metrics-addr", "", "serve prometheus metrics on this address while the guest runs")
	// guest arguments are passed through untouched
	guestCmd.Flags().SetInterspersed(false)
}
