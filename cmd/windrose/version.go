package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/windrose-ai/windrose"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of windrose",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("windrose version %s\n", windrose.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
