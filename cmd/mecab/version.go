package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wippyai/mecab-bridge/mecab"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the engine version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mecab of %s\n", mecab.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
