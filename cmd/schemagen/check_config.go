package main

import (
	"github.com/spf13/cobra"
)

var checkConfigCmd = &cobra.Command{
	Use:   "check-config",
	Short: "Check sanity.config.ts for the i18n plugin setup",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		checkStudio()
	},
}
