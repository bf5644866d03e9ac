package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var version = "0.1.0"

func main() {
	var verbose int

	rootCmd := &cobra.Command{
		Use:          "codedom",
		Short:        "Parse, resolve and reprint C# source",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonlog.Configure(verbose, nil)
		},
	}
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase log verbosity (repeatable)")

	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newFmtCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newLSPCmd())
	rootCmd.AddCommand(newReplCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
