package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/itu-lang/itu/internal/config"
)

var (
	cfgFile string
	verbose bool

	cfg    = config.Default()
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// errReported marks failures whose diagnostics were already printed.
var errReported = errors.New("errors reported")

var rootCmd = &cobra.Command{
	Use:   "itu",
	Short: "itu - parser front-end for the itu expression language",
	Long: `itu tokenizes and parses itu source files and prints the resulting
syntax tree or a diagnostic pointing at the first error.

Commands:
  parse   - print the syntax tree of a file
  tokens  - print the token stream of a file
  repl    - parse expressions interactively
  lsp     - run the language server`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadFromEnv(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
		logger = cfg.Logger(cmd.ErrOrStderr(), verbose)
		logger.Debug("config loaded", slog.String("path", cfgFile), slog.Int("indent_width", cfg.Lexer.IndentWidth))
		return nil
	},
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errReported) {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $"+config.EnvVar+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
