package cmd

import (
	"github.com/spf13/cobra"

	"github.com/itu-lang/itu/internal/lsp"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Run the language server on stdin/stdout",
	Long: `Runs a Language Server Protocol server over stdin and stdout. It
publishes lexer and parser diagnostics on open and change, and answers
hover, definition and completion requests from the parsed tree.

Logs go to stderr; use --verbose to trace requests.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		srv := lsp.NewServer(
			lsp.WithLogger(logger),
			lsp.WithIndentWidth(cfg.Lexer.IndentWidth),
		)
		return srv.Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(lspCmd)
}
