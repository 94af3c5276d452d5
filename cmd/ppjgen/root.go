package main

import (
	"github.com/spf13/cobra"
)

var rootFlags = struct {
	trace *string
}{}

var rootCmd = &cobra.Command{
	Use:   "ppjgen",
	Short: "Generate lexers and LR(1) parsing tables from PPJ definitions",
	Long: `ppjgen provides the following features:
- Tokenizes a text stream according to a lexical definition.
- Generates a canonical LR(1) parsing table from a grammar.
- Describes grammars and the reports of compiled grammars.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(*rootFlags.trace)
	},
}

func init() {
	rootFlags.trace = rootCmd.PersistentFlags().String("trace", "", "trace level of every package: Debug, Info, or Error")
}

func Execute() error {
	return rootCmd.Execute()
}
