package main

import (
	"fmt"
	"strings"

	shapes "github.com/ruflab/simple-shapes-dataset"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of shapes",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "shapes version %s\n", strings.TrimSpace(shapes.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
