package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "melgen",
	Short: "Markov-chain music generator",
	Long:  `Builds n-gram transition tables from symbolic scores and samples new compositions from them.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
