package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/wippyai/mecab-bridge/bridge"
	"github.com/wippyai/mecab-bridge/config"
)

var dictCmd = &cobra.Command{
	Use:   "dict",
	Short: "List the dictionaries of the configured model",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()
		cfg.Cache.Backend = config.CacheNone

		b := bridge.New(bridge.WithLogger(logger))
		defer b.Close()
		svc, err := newService(cfg, logger, b)
		if err != nil {
			return err
		}
		defer svc.Close()

		infos, err := svc.Dictionaries()
		if err != nil {
			return err
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("TYPE", "CHARSET", "SIZE", "LSIZE", "RSIZE", "VERSION", "FILENAME")
		for _, d := range infos {
			t.Row(d.Type, d.Charset,
				strconv.FormatUint(uint64(d.Size), 10),
				strconv.FormatUint(uint64(d.LSize), 10),
				strconv.FormatUint(uint64(d.RSize), 10),
				strconv.FormatUint(uint64(d.Version), 10),
				d.Filename)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return err
	},
}

func init() {
	rootCmd.AddCommand(dictCmd)
}
