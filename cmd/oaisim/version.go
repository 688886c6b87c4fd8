package main

import (
	"fmt"

	"github.com/spf13/cobra"

	oaisim "github.com/zimeon/oaipmh-simulator"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "oaisim %s\n", oaisim.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
