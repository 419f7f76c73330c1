package diag_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/itu-lang/itu/internal/diag"
	"github.com/itu-lang/itu/internal/lexer"
)

func TestFromLexerError(t *testing.T) {
	err := lexer.LexerError{
		Kind:    lexer.ErrUnterminatedString,
		Message: "unterminated literal",
		Span: lexer.Span{
			Line:   1,
			Column: 3,
			Start:  2,
			End:    6,
		},
	}

	diagnostic := err.ToDiagnostic()

	if diagnostic.Stage != diag.StageLexer {
		t.Fatalf("expected stage %q, got %q", diag.StageLexer, diagnostic.Stage)
	}
	if diagnostic.Code != diag.CodeLexerUnterminatedString {
		t.Fatalf("expected code %q, got %q", diag.CodeLexerUnterminatedString, diagnostic.Code)
	}
	if diagnostic.Message != err.Message {
		t.Fatalf("expected message %q, got %q", err.Message, diagnostic.Message)
	}
	if diagnostic.Severity != diag.SeverityError {
		t.Fatalf("expected severity %q, got %q", diag.SeverityError, diagnostic.Severity)
	}

	wantSpan := diag.Span{
		Line:   err.Span.Line,
		Column: err.Span.Column,
		Start:  err.Span.Start,
		End:    err.Span.End,
	}
	if diagnostic.Span != wantSpan {
		t.Fatalf("expected span %+v, got %+v", wantSpan, diagnostic.Span)
	}
}

func TestFormatterPrintsCaretUnderColumn(t *testing.T) {
	src := "a := 1\nb := (\n)\n"
	d := diag.Diagnostic{
		Stage:    diag.StageParser,
		Severity: diag.SeverityError,
		Code:     diag.CodeParseEmptyClause,
		Message:  "empty clause '()'",
		Span:     diag.Span{Filename: "main.itu", Line: 3, Column: 1, Start: 14, End: 15},
	}

	var buf bytes.Buffer
	diag.NewFormatter(&buf, false).Format(d, src)

	want := strings.Join([]string{
		"error[PARSE_EMPTY_CLAUSE]: empty clause '()'",
		"  --> main.itu:3:1",
		"   |",
		" 3 | )",
		"   | ^",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatterKeepsTabsInCaretPrefix(t *testing.T) {
	src := "f := ->\n\tx y ]\n"
	d := diag.Diagnostic{
		Message: "unexpected symbol: ]",
		Span:    diag.Span{Line: 2, Column: 6, Start: 13, End: 14},
	}

	var buf bytes.Buffer
	diag.NewFormatter(&buf, false).Format(d, src)

	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 5 {
		t.Fatalf("expected at least 5 lines, got %q", buf.String())
	}
	if got, want := lines[4], "   | \t    ^"; got != want {
		t.Fatalf("caret line = %q, want %q", got, want)
	}
	if !strings.HasPrefix(lines[0], "error: ") {
		t.Fatalf("expected default error severity header, got %q", lines[0])
	}
}

func TestFormatterWithoutSpanPrintsHeaderAndHelp(t *testing.T) {
	d := diag.Diagnostic{Severity: diag.SeverityWarning, Message: "nothing to parse"}.
		WithNote("input was empty").
		WithHelp("pass a file or pipe source on stdin")

	var buf bytes.Buffer
	diag.NewFormatter(&buf, false).Format(d, "")

	want := "warning: nothing to parse\n" +
		"  = note: input was empty\n" +
		"  = help: pass a file or pipe source on stdin\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected output:\n%q\nwant:\n%q", got, want)
	}
}
