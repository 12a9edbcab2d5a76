package cmd

import (
	"github.com/spf13/cobra"
)

var dqCmd = &cobra.Command{
	Use:   "dq",
	Short: "Data-quality detection and issue lifecycle",
}

func init() {
	rootCmd.AddCommand(dqCmd)
}
