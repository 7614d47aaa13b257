package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lmontes/melgen/constants"
)

var (
	tableVoices []string
	tableOrder  int
	tableOut    string
)

func init() {
	rootCmd.AddCommand(tableCmd)
	tableCmd.Flags().StringSliceVar(&tableVoices, "voices", []string{"1"}, "staff/voice ids to model")
	tableCmd.Flags().IntVar(&tableOrder, "order", 1, "context length of the chain")
	tableCmd.Flags().StringVarP(&tableOut, "out", "o", "", "CSV output path")
}

var tableCmd = &cobra.Command{
	Use:   "table [score files...]",
	Short: "Builds and persists a transition table",
	Long:  `Builds the transition table from one or more scores and writes it as a labeled CSV grid.`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if tableOut == "" {
			tableOut = filepath.Join(constants.GetOutDir(), "table.csv")
		}
		scores, err := parseScores(args)
		cobra.CheckErr(err)
		_, err = buildTable(scores, tableVoices, tableOrder, tableOut)
		cobra.CheckErr(err)
	},
}
