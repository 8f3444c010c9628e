package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/todoroll"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of todoroll",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "todoroll version %s\n", strings.TrimSpace(todoroll.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
