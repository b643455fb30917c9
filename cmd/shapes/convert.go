package main

import (
	"fmt"

	"github.com/ruflab/simple-shapes-dataset/pkg/adapters/npy"
	"github.com/ruflab/simple-shapes-dataset/pkg/adapters/sqlite"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert <in.npy> <out.sqlite>",
	Short: "Copy a numeric NPY table into a SQLite matrix store",
	Long: `Reads a 1-D or 2-D numeric NPY file and stores it in a SQLite database.
Sources read a .sqlite/.sqlite3/.db file wherever they accept an NPY table,
using the matrix named after the file stem unless --name is given.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, out := args[0], args[1]
		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = sqlite.MatrixName(out)
		}

		m, err := npy.LoadMatrix(in)
		if err != nil {
			return err
		}

		db, err := sqlite.Open(out)
		if err != nil {
			return err
		}
		defer db.Close()

		store, err := sqlite.NewMatrixStore(db)
		if err != nil {
			return err
		}
		if err := store.Put(cmd.Context(), name, m); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "stored %s: %d x %d\n", name, m.Rows(), m.Cols())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().String("name", "", "matrix name (default: output file stem)")
}
