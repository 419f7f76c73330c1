package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens [file]",
	Short: "Print the token stream of a source file",
	Long: `Prints one token per line with its position, category and text.
Indentation markers and line breaks are listed too, which makes the
token stream the parser sees for indented blocks visible.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
}

func runTokens(cmd *cobra.Command, args []string) error {
	name, src, err := readSource(cmd, args)
	if err != nil {
		return err
	}

	toks, err := tokenize(name, src)
	if err != nil {
		return report(cmd.ErrOrStderr(), err, src)
	}

	out := cmd.OutOrStdout()
	for _, tok := range toks {
		fmt.Fprintln(out, tok.String())
	}
	return nil
}
