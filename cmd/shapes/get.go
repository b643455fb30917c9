package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ruflab/simple-shapes-dataset/pkg/domain"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <index>",
	Short: "Print one record as JSON",
	Long: `Prints the record at index over every configured domain, or, with
--group, the record at that position of an aligned group.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid index %q: %w", args[0], err)
		}
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		group, _ := cmd.Flags().GetString("group")
		redisAddr, _ := cmd.Flags().GetString("redis")

		ds, err := openDataset(cfg, logger, nil)
		if err != nil {
			return err
		}

		var rec domain.Record
		if group == "" {
			rec, err = ds.Get(index)
		} else {
			res, closeStore, aerr := alignDataset(cmd.Context(), ds, cfg, redisAddr)
			if aerr != nil {
				return aerr
			}
			defer closeStore()
			g := domain.ParseGroupKey(group)
			s, ok := res.Sampler(g)
			if !ok {
				return fmt.Errorf("group %s is not configured", g)
			}
			rec, err = s.Get(index)
		}
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().StringP("group", "g", "", "read from this aligned group, e.g. v+t")
	getCmd.Flags().String("redis", "", "Redis address used to share the assignment")
}
