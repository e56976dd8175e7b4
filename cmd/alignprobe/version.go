package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const appVersion = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of alignprobe",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("alignprobe v%s\n", appVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
