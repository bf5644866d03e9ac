package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dhamidi/codedom/csharp/codebase"
	"github.com/dhamidi/codedom/csharp/parser"
	"github.com/dhamidi/codedom/format"
	"github.com/spf13/cobra"
)

func newParseCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a .cs file and dump the tree",
		Long: `Parse a .cs file and write the tree to stdout.

Formats:
  source       the source text reproduced from the tree
  description  declarations only, without bodies
  line         one line per declaration with its qualified name
  json         the node tree with spans and diagnostics

Without a file argument the source is read from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, filename, err := readSource(args)
			if err != nil {
				return err
			}
			cfg, err := codebase.LoadConfig(".")
			if err != nil {
				return err
			}
			enc, err := format.NewEncoder(outputFormat, cmd.OutOrStdout(), cfg.FormatOptions()...)
			if err != nil {
				return err
			}
			cu, err := parser.Parse(source, parser.WithFile(filename))
			if err != nil {
				return fmt.Errorf("parse: %w", err)
			}
			if err := enc.Encode(cu); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			if outputFormat == "json" {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "source", "output format (source, description, line, json)")

	return cmd
}

// readSource reads the file named by args, or stdin when there is none.
func readSource(args []string) ([]byte, string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return data, "<stdin>", nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, "", fmt.Errorf("read file: %w", err)
	}
	return data, args[0], nil
}
