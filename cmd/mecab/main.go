// Command mecab analyzes Japanese text with the bridge and serves it over
// HTTP, MCP and a WebAssembly host module.
package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/mecab-bridge/bridge"
	"github.com/wippyai/mecab-bridge/cache"
	"github.com/wippyai/mecab-bridge/config"
	"github.com/wippyai/mecab-bridge/hostmod"
	"github.com/wippyai/mecab-bridge/mecab"
	"github.com/wippyai/mecab-bridge/service"
)

var rootCmd = &cobra.Command{
	Use:           "mecab",
	Short:         "Japanese morphological analyzer",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "YAML config file (default $"+config.EnvPath+")")
	rootCmd.PersistentFlags().StringP("dicdir", "d", "", "system dictionary directory, overrides the config")
	rootCmd.PersistentFlags().StringP("userdic", "u", "", "comma separated user dictionaries, overrides the config")
}

// exitCode carries a guest's non-zero exit status out of Execute.
type exitCode uint32

func (c exitCode) Error() string {
	return fmt.Sprintf("exit status %d", uint32(c))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var code exitCode
		if stderrors.As(err, &code) {
			os.Exit(int(code))
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the config named by the persistent flags and installs its
// logger in every package that logs.
func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if v, _ := cmd.Flags().GetString("dicdir"); v != "" {
		cfg.Dictionary.Dir = v
	}
	if v, _ := cmd.Flags().GetString("userdic"); v != "" {
		cfg.Dictionary.UserDic = v
	}
	logger, err := cfg.Log.Build()
	if err != nil {
		return nil, nil, err
	}
	mecab.SetLogger(logger.Named("mecab"))
	bridge.SetLogger(logger.Named("bridge"))
	hostmod.SetLogger(logger.Named("hostmod"))
	return cfg, logger, nil
}

// newService builds the analysis service the config describes on b.
func newService(cfg *config.Config, logger *zap.Logger, b *bridge.Bridge) (*service.Service, error) {
	c, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, err
	}
	svc, err := service.New(b, cfg.Dictionary.Argv(),
		service.WithCache(c),
		service.WithLogger(logger.Named("service")),
		service.WithMaxNBest(cfg.Server.MaxNBest))
	if err != nil {
		c.Close()
		return nil, err
	}
	return svc, nil
}
