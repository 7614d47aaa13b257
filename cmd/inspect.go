package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lmontes/melgen/markov"
	"github.com/lmontes/melgen/util"
)

var inspectLimit int

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().IntVar(&inspectLimit, "limit", 10, "number of states to print")
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <table.csv>",
	Short: "Inspects a persisted transition table",
	Long:  `Inspects a persisted transition table`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cobra.CheckErr(inspect(args[0]))
	},
}

func inspect(path string) error {
	t, err := markov.ReadCSV(path)
	if err != nil {
		return err
	}
	fmt.Printf("order: %v\n", t.Order())
	fmt.Printf("states: %v\n", t.NumStates())
	fmt.Printf("successors: %v\n", t.NumSuccessors())

	cols := t.ColKeys()
	shown := util.Min(inspectLimit, t.NumStates())
	for i, row := range t.RowKeys() {
		if i >= shown {
			fmt.Printf("... (%v more states)\n", t.NumStates()-shown)
			break
		}
		var positive int
		best := ""
		var bestP float64
		for _, col := range cols {
			p := t.Prob(row, col)
			if p > 0 {
				positive++
				if p > bestP {
					best, bestP = col, p
				}
			}
		}
		fmt.Printf("state: %v\n", row)
		fmt.Printf("  %v successors, most likely (p=%.3f): %v\n", positive, bestP, best)
	}
	return nil
}
