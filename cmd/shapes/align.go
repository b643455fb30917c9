package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var alignCmd = &cobra.Command{
	Use:   "align",
	Short: "Partition the dataset into the configured groups",
	Long: `Draws the seeded permutation and prints the size of every group.
With --json the full assignment (indices included) is printed instead.
With --redis the assignment is shared with other workers through Redis.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		redisAddr, _ := cmd.Flags().GetString("redis")
		asJSON, _ := cmd.Flags().GetBool("json")

		ds, err := openDataset(cfg, logger, nil)
		if err != nil {
			return err
		}
		res, closeStore, err := alignDataset(cmd.Context(), ds, cfg, redisAddr)
		if err != nil {
			return err
		}
		defer closeStore()

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(res.Assignment())
		}

		fmt.Fprintf(out, "n: %d  seed: %d  max_size: %d  reused: %t\n", res.N(), res.Seed(), res.MaxSize(), res.Reused())
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "GROUP\tLEN")
		for _, g := range res.Groups() {
			fmt.Fprintf(w, "%s\t%d\n", g, len(res.Indices(g)))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(alignCmd)
	alignCmd.Flags().String("redis", "", "Redis address used to share the assignment")
	alignCmd.Flags().Bool("json", false, "print the assignment as JSON")
}
