package parser

import (
	"fmt"

	"github.com/itu-lang/itu/internal/diag"
	"github.com/itu-lang/itu/internal/lexer"
)

// Cause classifies a parse failure.
type Cause int

const (
	// CauseUnexpectedToken covers unexpected and illegal tokens.
	CauseUnexpectedToken Cause = iota
	// CauseExpectedToken means a specific token was required; see Expected.
	CauseExpectedToken
	CauseExpectedExpression
	CauseExpectedType
	CauseExpectedParameter
	// CauseEmptyClause is an empty parenthesised clause `()`.
	CauseEmptyClause
)

func (c Cause) String() string {
	switch c {
	case CauseUnexpectedToken:
		return "unexpected token"
	case CauseExpectedToken:
		return "expected token"
	case CauseExpectedExpression:
		return "expected expression"
	case CauseExpectedType:
		return "expected type"
	case CauseExpectedParameter:
		return "expected parameter"
	case CauseEmptyClause:
		return "empty clause"
	}
	return fmt.Sprintf("Cause(%d)", int(c))
}

func (c Cause) diagnosticCode() diag.Code {
	switch c {
	case CauseExpectedToken:
		return diag.CodeParseExpectedToken
	case CauseExpectedExpression:
		return diag.CodeParseExpectedExpression
	case CauseExpectedType:
		return diag.CodeParseExpectedType
	case CauseExpectedParameter:
		return diag.CodeParseExpectedParameter
	case CauseEmptyClause:
		return diag.CodeParseEmptyClause
	default:
		return diag.CodeParseUnexpectedToken
	}
}

// ParseError is the single failure kind of the parser. The first ParseError
// aborts the whole parse, nested block parses included.
type ParseError struct {
	Cause    Cause
	Message  string
	Span     lexer.Span // zero when no position is known
	Expected string     // set for CauseExpectedToken

	// Nested is the original failure when the error was raised by the parser
	// of an indented block. Its span is the one the nested parser saw; it is
	// not remapped into the enclosing parse.
	Nested *ParseError
}

func (e *ParseError) Error() string {
	if e.HasPosition() {
		return fmt.Sprintf("%s: %s", e.Span, e.Message)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error {
	if e.Nested == nil {
		return nil
	}
	return e.Nested
}

// HasPosition reports whether the error points at a source location.
func (e *ParseError) HasPosition() bool {
	return e.Span.IsValid()
}

// ToDiagnostic converts the error into a shared diagnostic structure.
func (e *ParseError) ToDiagnostic() diag.Diagnostic {
	d := diag.Diagnostic{
		Stage:    diag.StageParser,
		Severity: diag.SeverityError,
		Code:     e.Cause.diagnosticCode(),
		Message:  e.Message,
		Span: diag.Span{
			Filename: e.Span.Filename,
			Line:     e.Span.Line,
			Column:   e.Span.Column,
			Start:    e.Span.Start,
			End:      e.Span.End,
		},
	}
	if e.Expected != "" {
		d = d.WithHelp(fmt.Sprintf("expected `%s` here", e.Expected))
	}
	if e.Nested != nil {
		d = d.WithNote("raised while parsing an indented block")
	}
	return d
}

func newError(cause Cause, tok lexer.Token, msg string) *ParseError {
	return &ParseError{Cause: cause, Message: msg, Span: tok.Span}
}

func errorf(cause Cause, tok lexer.Token, format string, args ...any) *ParseError {
	return newError(cause, tok, fmt.Sprintf(format, args...))
}

// expectedError reports that want was required where tok was found.
func expectedError(want string, tok lexer.Token) *ParseError {
	err := errorf(CauseExpectedToken, tok, "expected '%s', found %s", want, describe(tok))
	err.Expected = want
	return err
}

// unexpectedError reports tok as out of place, naming its category the way
// users see it.
func unexpectedError(tok lexer.Token) *ParseError {
	switch tok.Type {
	case lexer.SYMBOL:
		return errorf(CauseUnexpectedToken, tok, "unexpected symbol: %s", tok.Literal)
	case lexer.KEYWORD:
		return errorf(CauseUnexpectedToken, tok, "unexpected keyword: %s", tok.Literal)
	case lexer.ILLEGAL:
		return errorf(CauseUnexpectedToken, tok, "illegal token: %s", tok.Raw)
	default:
		return errorf(CauseUnexpectedToken, tok, "unexpected: %s", describe(tok))
	}
}

// wrapNested re-raises a failure from a block parser, keeping its message.
func wrapNested(inner *ParseError) *ParseError {
	return &ParseError{
		Cause:    inner.Cause,
		Message:  inner.Message,
		Span:     inner.Span,
		Expected: inner.Expected,
		Nested:   inner,
	}
}

func describe(tok lexer.Token) string {
	switch tok.Type {
	case lexer.EOF:
		return "end of input"
	case lexer.NEWLINE:
		return "line break"
	case lexer.INDENT:
		return "indentation"
	}
	return fmt.Sprintf("'%s'", tok.Literal)
}
