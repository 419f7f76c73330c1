package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/itu-lang/itu/internal/ast"
	"github.com/itu-lang/itu/internal/config"
	"github.com/itu-lang/itu/internal/diag"
	"github.com/itu-lang/itu/internal/lexer"
	"github.com/itu-lang/itu/internal/parser"
)

var parseFormat string

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Print the syntax tree of a source file",
	Long: `Parses a source file and prints its syntax tree. Without a file (or
with "-") the source is read from stdin.

Examples:
  itu parse main.itu
  itu parse --format yaml main.itu
  echo "a := 1 + 2 * 3" | itu parse`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "", "output format (sexpr, yaml); default from config")
}

func runParse(cmd *cobra.Command, args []string) error {
	name, src, err := readSource(cmd, args)
	if err != nil {
		return err
	}

	stmts, err := parseSource(name, src)
	if err != nil {
		return report(cmd.ErrOrStderr(), err, src)
	}

	format := parseFormat
	if format == "" {
		format = cfg.Output.Format
	}
	return printTree(cmd.OutOrStdout(), stmts, format)
}

func printTree(w io.Writer, stmts []ast.Stmt, format string) error {
	switch format {
	case config.FormatSexpr:
		if len(stmts) > 0 {
			fmt.Fprintln(w, ast.FormatStmts(stmts))
		}
		return nil
	case config.FormatYAML:
		out, err := ast.Dump(stmts)
		if err != nil {
			return fmt.Errorf("failed to dump tree: %w", err)
		}
		_, err = w.Write(out)
		return err
	}
	return fmt.Errorf("unknown format %q (want %s or %s)", format, config.FormatSexpr, config.FormatYAML)
}

// readSource returns the display name and contents of the requested input.
func readSource(cmd *cobra.Command, args []string) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return "<stdin>", string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", err
	}
	return args[0], string(data), nil
}

func tokenize(name, src string) ([]lexer.Token, error) {
	lx := lexer.New(src, lexer.WithFilename(name), lexer.WithIndentWidth(cfg.Lexer.IndentWidth))
	toks := lx.Tokenize()
	if len(lx.Errors) > 0 {
		return nil, lexErrors(lx.Errors)
	}
	return toks, nil
}

func parseSource(name, src string) ([]ast.Stmt, error) {
	toks, err := tokenize(name, src)
	if err != nil {
		return nil, err
	}
	logger.Debug("tokenized", "file", name, "tokens", len(toks))

	return parser.Parse(toks, parser.WithFilename(name), parser.WithLogger(logger))
}

// lexErrors carries every lexer error of one input.
type lexErrors []lexer.LexerError

func (e lexErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%s (and %d more)", e[0].Error(), len(e)-1)
}

// report prints err as diagnostics against src and returns errReported.
// Errors without a diagnostic form are returned unchanged.
func report(w io.Writer, err error, src string) error {
	var diags []diag.Diagnostic

	var pe *parser.ParseError
	var lexErrs lexErrors
	switch {
	case errors.As(err, &pe):
		diags = append(diags, pe.ToDiagnostic())
	case errors.As(err, &lexErrs):
		for _, le := range lexErrs {
			diags = append(diags, le.ToDiagnostic())
		}
	default:
		return err
	}

	f := diag.NewFormatter(w, cfg.UseColor(isTerminal(w)))
	for _, d := range diags {
		f.Format(d, src)
	}
	return errReported
}
