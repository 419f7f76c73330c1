package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/itu-lang/itu/internal/config"
)

const (
	historyFile = ".itu_history"
	promptMain  = "itu> "
	promptCont  = "...  "
	replHelp    = `Enter a statement to see its syntax tree. A line ending in "->"
starts an indented body; finish it with an empty line.

  :sexpr  print trees as S-expressions
  :yaml   print trees as YAML
  :quit   leave the REPL`
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Parse statements interactively",
	Args:  cobra.NoArgs,
	RunE:  runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, _ []string) error {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	fmt.Fprintln(out, `itu REPL, type :help for commands`)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	defer func() {
		if histPath == "" {
			return
		}
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		} else {
			logger.Warn("failed to save history", "path", histPath, "err", err)
		}
	}()

	session := &replSession{format: cfg.Output.Format, out: out, errOut: errOut}

	for {
		src, ok := readEntry(ln)
		if !ok {
			fmt.Fprintln(out)
			return nil
		}
		if strings.TrimSpace(src) == "" {
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		if !session.handle(src) {
			return nil
		}
	}
}

// readEntry reads one REPL entry, which may span several lines. It reports
// false at end of input.
func readEntry(ln *liner.State) (string, bool) {
	var lines []string

	for {
		prompt := promptMain
		if len(lines) > 0 {
			prompt = promptCont
		}

		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if errors.Is(err, io.EOF) {
			return strings.Join(lines, "\n"), len(lines) > 0
		}
		if err != nil {
			logger.Debug("prompt failed", "err", err)
			return "", false
		}

		lines = append(lines, line)
		if !needsMore(lines) {
			return strings.Join(lines, "\n"), true
		}
	}
}

// needsMore reports whether an entry continues on the next line: its first
// line ends with an arrow and no empty line has been entered since.
func needsMore(lines []string) bool {
	if len(lines) == 0 {
		return false
	}
	last := lines[len(lines)-1]
	if len(lines) == 1 {
		return strings.HasSuffix(strings.TrimSpace(last), "->")
	}
	return strings.TrimSpace(last) != ""
}

type replSession struct {
	format string
	out    io.Writer
	errOut io.Writer
}

// handle runs one entry and reports whether the session goes on.
func (s *replSession) handle(src string) bool {
	switch strings.TrimSpace(src) {
	case ":quit", ":q":
		return false
	case ":help":
		fmt.Fprintln(s.out, replHelp)
		return true
	case ":sexpr":
		s.format = config.FormatSexpr
		return true
	case ":yaml":
		s.format = config.FormatYAML
		return true
	}
	if strings.HasPrefix(strings.TrimSpace(src), ":") {
		fmt.Fprintln(s.errOut, "unknown command, type :help")
		return true
	}

	stmts, err := parseSource("<repl>", src)
	if err != nil {
		if rerr := report(s.errOut, err, src); !errors.Is(rerr, errReported) {
			printError(s.errOut, rerr)
		}
		return true
	}
	if err := printTree(s.out, stmts, s.format); err != nil {
		printError(s.errOut, err)
	}
	return true
}
