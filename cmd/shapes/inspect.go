package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the length of every configured domain",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ds, err := openDataset(cfg, logger, nil)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "dataset: %s (split %s)\n", ds.Path, ds.Split)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "DOMAIN\tBASE\tLEN")
		s := ds.Sampler()
		for _, desc := range ds.Domains() {
			src, _ := s.Source(desc.ID())
			fmt.Fprintf(w, "%s\t%s\t%d\n", desc.ID(), desc.Base, src.Len())
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "records: %d\n", ds.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
