package parser_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/itu-lang/itu/internal/ast"
	"github.com/itu-lang/itu/internal/diag"
	"github.com/itu-lang/itu/internal/lexer"
	"github.com/itu-lang/itu/internal/parser"
)

func parseSource(t *testing.T, src string, opts ...parser.Option) []ast.Stmt {
	t.Helper()

	stmts, err := parser.ParseString(src, opts...)
	if err != nil {
		t.Fatalf("unexpected parse error for %q: %v", src, err)
	}
	return stmts
}

func parseError(t *testing.T, src string) *parser.ParseError {
	t.Helper()

	stmts, err := parser.ParseString(src)
	if err == nil {
		t.Fatalf("expected parse error for %q, got %s", src, ast.FormatStmts(stmts))
	}

	var pe *parser.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *parser.ParseError for %q, got %T: %v", src, err, err)
	}
	return pe
}

func assertFormat(t *testing.T, src, want string) {
	t.Helper()

	stmts := parseSource(t, src)
	if got := ast.FormatStmts(stmts); got != want {
		t.Fatalf("parse %q:\n got: %s\nwant: %s", src, got, want)
	}
}

func TestParseOperatorPrecedence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "(+ 1 (* 2 3))"},
		{"1 * 2 + 3", "(+ (* 1 2) 3)"},
		{"1 - 2 - 3", "(- (- 1 2) 3)"},
		{"8 / 4 / 2", "(/ (/ 8 4) 2)"},
		{"1 + 2 * 3 ^ 4 - 5", "(- (+ 1 (* 2 (^ 3 4))) 5)"},
		{"2 ^ 3 ^ 2", "(^ (^ 2 3) 2)"},
		{"a % 2 == 0", "(== (% a 2) 0)"},
		{"a < b == c", "(< a (== b c))"},
		{"a + 1 >= b * 2", "(>= (+ a 1) (* b 2))"},
		{"(1 + 2) * 3", "(* (+ 1 2) 3)"},
		{"1 +\n    2", "(+ 1 2)"},
	}

	for _, tt := range tests {
		assertFormat(t, tt.src, tt.want)
	}
}

func TestParseLiterals(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"42", "42"},
		{"0x10", "16"},
		{"0b101", "5"},
		{"1_000", "1000"},
		{"010", "10"},
		{"08", "8"},
		{"2.5", "2.5"},
		{"1e3", "1000"},
		{"true", "true"},
		{`"hi\n"`, `"hi\n"`},
		{"'c'", "'c'"},
		{"x", "x"},
	}

	for _, tt := range tests {
		assertFormat(t, tt.src, tt.want)
	}
}

func TestParseArrayTrailingCommaIsNoOp(t *testing.T) {
	with := parseSource(t, "{1, 2,}")
	without := parseSource(t, "{1, 2}")

	if len(with) != 1 || len(without) != 1 {
		t.Fatalf("expected single statements, got %d and %d", len(with), len(without))
	}
	if !ast.Equal(with[0], without[0]) {
		t.Fatalf("trailing comma changed the tree: %s vs %s", ast.Format(with[0]), ast.Format(without[0]))
	}
	if got := ast.Format(with[0]); got != "(array 1 2)" {
		t.Fatalf("unexpected array: %s", got)
	}
}

func TestParseArraysAndIndexes(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"{}", "(array)"},
		{"{\n    1,\n    2,\n}", "(array 1 2)"},
		{"{1, 2}[0]", "(index (array 1 2) 0)"},
		{"xs[0]", "(index xs 0)"},
		{"xs[0][i + 1]", "(index (index xs 0) (+ i 1))"},
		{"{{1}, {2}}", "(array (array 1) (array 2))"},
	}

	for _, tt := range tests {
		assertFormat(t, tt.src, tt.want)
	}
}

func TestParseTypedLambda(t *testing.T) {
	stmts := parseSource(t, "(a: i32): i128 -> a + 10")
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}

	stmt, ok := stmts[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected *ast.ExprStmt, got %T", stmts[0])
	}
	lambda, ok := stmt.Expr.(*ast.LambdaExpr)
	if !ok {
		t.Fatalf("expected *ast.LambdaExpr, got %T", stmt.Expr)
	}

	if ret, ok := lambda.ReturnType.(*ast.PrimitiveType); !ok || ret.Kind != ast.I128 {
		t.Fatalf("expected return type i128, got %s", ast.Format(lambda.ReturnType))
	}
	if len(lambda.Params) != 1 {
		t.Fatalf("expected 1 parameter, got %d", len(lambda.Params))
	}
	if param := lambda.Params[0]; param.Name.Name != "a" || ast.Format(param.Type) != "i32" {
		t.Fatalf("unexpected parameter %s", ast.Format(param))
	}

	want := ast.NewOperationExpr(ast.NewIdent("a", lexer.Span{}), ast.OpAdd, ast.NewNumberLit(10, lexer.Span{}), lexer.Span{})
	if !ast.Equal(lambda.Body, want) {
		t.Fatalf("unexpected body %s", ast.Format(lambda.Body))
	}
}

func TestParseLambdas(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"(a, b) -> a", "(lambda ((a any) (b any)) any a)"},
		{"(a: i32, b) -> a", "(lambda ((a i32) (b any)) any a)"},
		{"-> 1", "(lambda () any 1)"},
		{"(xs: [i32; 3]): mut -> xs", "(lambda ((xs [i32; 3])) (mut) xs)"},
		{"g := (x: i32): i32 -> f x", "(def g _ (lambda ((x i32)) i32 (call f x)))"},
		{"(a) -> (b) -> a + b", "(lambda ((a any)) any (lambda ((b any)) any (+ a b)))"},
	}

	for _, tt := range tests {
		assertFormat(t, tt.src, tt.want)
	}
}

func TestParseDefinitions(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"a := 123", "(def a _ 123)"},
		{"c: char", "(def c char _)"},
		{"n: i64 = 1", "(def n i64 1)"},
		{"m: mut", "(def m (mut) _)"},
		{"m: mut i32 = 0", "(def m (mut i32) 0)"},
		{"x: mut [i32; 3] = {1, 2, 3}", "(def x (mut [i32; 3]) (array 1 2 3))"},
		{"t: [[i32; 2]; 3]", "(def t [[i32; 2]; 3] _)"},
		{"p: Point", "(def p Point _)"},
		{"v: [; 2]", "(def v [any; 2] _)"},
		{"c: char\nd := 'x'", "(def c char _)\n(def d _ 'x')"},
	}

	for _, tt := range tests {
		assertFormat(t, tt.src, tt.want)
	}

	stmts := parseSource(t, "a := 123")
	def, ok := stmts[0].(*ast.DefinitionStmt)
	if !ok {
		t.Fatalf("expected *ast.DefinitionStmt, got %T", stmts[0])
	}
	if def.Type != nil {
		t.Fatalf("expected omitted type, got %s", ast.Format(def.Type))
	}
	if def.Name.Name != "a" {
		t.Fatalf("expected name a, got %s", def.Name.Name)
	}
}

func TestParseAssignments(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"x = y", "(= x y)"},
		{"x = x + 1", "(= x (+ x 1))"},
		{"xs[0] = 1", "(= (index xs 0) 1)"},
		{"xs[i][j] = xs[j][i]", "(= (index (index xs i) j) (index (index xs j) i))"},
	}

	for _, tt := range tests {
		assertFormat(t, tt.src, tt.want)
	}
}

func TestParseCalls(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"f x", "(call f x)"},
		{"f x, y", "(call f x y)"},
		{`print "hi", 'c', 1.5, true`, `(call print "hi" 'c' 1.5 true)`},
		{"f x + 1", "(call f (+ x 1))"},
		{"f g x", "(call f (call g x))"},
		{"f {1, 2}", "(call f (array 1 2))"},
		{"f (x) -> x", "(call f (lambda ((x any)) any x))"},
		{"map (x) -> x * 2, xs", "(call map (lambda ((x any)) any (* x 2)) xs)"},
		{"(f) 1", "(call f 1)"},
		{"f x\ng y", "(call f x)\n(call g y)"},
		{"1 + f x", "(+ 1 (call f x))"},
	}

	for _, tt := range tests {
		assertFormat(t, tt.src, tt.want)
	}
}

func TestParseMultipleStatements(t *testing.T) {
	const src = "a := 1\n\nb: i32 = a * 2\n// done\nb\n"

	assertFormat(t, src, "(def a _ 1)\n(def b i32 (* a 2))\nb")
}

func TestParseEmptyInput(t *testing.T) {
	for _, src := range []string{"", "\n\n", "// nothing\n"} {
		stmts := parseSource(t, src)
		if len(stmts) != 0 {
			t.Fatalf("expected no statements for %q, got %s", src, ast.FormatStmts(stmts))
		}
	}
}

func TestParseBlockBody(t *testing.T) {
	const src = "f := (a: i32): i32 ->\n    b := a * 2\n    b + 1\nf 1\n"

	assertFormat(t, src, "(def f _ (lambda ((a i32)) i32 (block (def b _ (* a 2)) (+ b 1))))\n(call f 1)")
}

func TestParseBlockStatementCountIgnoresBlankLines(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"plain", "f := ->\n    a := 1\n    b := 2\n    a + b\n"},
		{"blank inside", "f := ->\n    a := 1\n\n    b := 2\n\n\n    a + b\n"},
		{"blank before", "f := ->\n\n    a := 1\n    b := 2\n    a + b\n"},
		{"blank after", "f := ->\n    a := 1\n    b := 2\n    a + b\n\n\nf\n"},
		{"comment lines", "f := ->\n    a := 1\n// note\n    b := 2\n    a + b\n"},
		{"at end of input", "f := ->\n    a := 1\n    b := 2\n    a + b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts := parseSource(t, tt.src)

			def, ok := stmts[0].(*ast.DefinitionStmt)
			if !ok {
				t.Fatalf("expected *ast.DefinitionStmt, got %T", stmts[0])
			}
			lambda, ok := def.Value.(*ast.LambdaExpr)
			if !ok {
				t.Fatalf("expected *ast.LambdaExpr, got %T", def.Value)
			}
			block, ok := lambda.Body.(*ast.BlockExpr)
			if !ok {
				t.Fatalf("expected *ast.BlockExpr body, got %T", lambda.Body)
			}
			if len(block.Stmts) != 3 {
				t.Fatalf("expected 3 block statements, got %d: %s", len(block.Stmts), ast.Format(block))
			}
		})
	}
}

func TestParseNestedBlocks(t *testing.T) {
	const src = "outer := ->\n    inner := ->\n        1\n        2\n    inner\nouter\n"

	assertFormat(t, src, "(def outer _ (lambda () any (block (def inner _ (lambda () any (block 1 2))) inner)))\nouter")
}

func TestParseBlocksNestedThreeDeep(t *testing.T) {
	const src = "a := ->\n    b := ->\n        c := ->\n            1\n            2\n        c\n    b\na\n"

	assertFormat(t, src, "(def a _ (lambda () any (block (def b _ (lambda () any (block (def c _ (lambda () any (block 1 2))) c))) b)))\na")
}

func TestParseNestedBlockStatementCounts(t *testing.T) {
	const src = "a := ->\n    b := ->\n        c := ->\n            1\n            2\n            3\n        c\n    b\n"

	stmts := parseSource(t, src)
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}

	want := []int{2, 2, 3}
	body := stmts[0].(*ast.DefinitionStmt).Value
	for depth, n := range want {
		block := body.(*ast.LambdaExpr).Body.(*ast.BlockExpr)
		if len(block.Stmts) != n {
			t.Fatalf("block at depth %d: expected %d statements, got %d", depth+1, n, len(block.Stmts))
		}
		if def, ok := block.Stmts[0].(*ast.DefinitionStmt); ok {
			body = def.Value
		}
	}
}

func TestParseBlockWithGroupedLambda(t *testing.T) {
	const src = "(a: i32): i128 ->\n    (\n        (a: i32): i128 -> a + 10\n    )\n    "

	assertFormat(t, src, "(lambda ((a i32)) i128 (block (lambda ((a i32)) i128 (+ a 10))))")
}

func TestParseBlockHonoursIndentWidth(t *testing.T) {
	const src = "f := ->\n  1\n  2\n"

	stmts := parseSource(t, src, parser.WithIndentWidth(2))
	if got := ast.FormatStmts(stmts); got != "(def f _ (lambda () any (block 1 2)))" {
		t.Fatalf("unexpected tree: %s", got)
	}
}

func TestParseErrorsPointAtOffendingToken(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		cause  parser.Cause
		line   int
		column int
		msg    string
	}{
		{"empty clause", "x := ()", parser.CauseEmptyClause, 1, 7, "empty clause '()'"},
		{"unmatched bracket", "x := ]", parser.CauseUnexpectedToken, 1, 6, "unexpected symbol: ]"},
		{"array closed by bracket", "{1, 2]", parser.CauseExpectedToken, 1, 6, "expected '}'"},
		{"missing type", "a: 5", parser.CauseExpectedType, 1, 4, "expected type: 5"},
		{"unbalanced paren", "y := (a + 1", parser.CauseExpectedToken, 1, 6, "expected ')'"},
		{"bad parameter", "(1, 2) -> x", parser.CauseExpectedParameter, 1, 2, "expected parameter: 1"},
		{"missing arrow", "(a: i32): i32 a", parser.CauseExpectedToken, 1, 15, "expected '->'"},
		{"assignment line break", "x =\n1", parser.CauseExpectedExpression, 1, 4, "expected expression"},
		{"unclosed index", "xs[1 2", parser.CauseExpectedToken, 1, 6, "expected ']'"},
		{"unclosed array type", "a: [i32; 3", parser.CauseExpectedToken, 1, 11, "expected ']'"},
		{"type keyword as term", "i32", parser.CauseUnexpectedToken, 1, 1, "unexpected: 'i32'"},
		{"stray keyword", "mut", parser.CauseUnexpectedToken, 1, 1, "unexpected keyword: mut"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pe := parseError(t, tt.src)

			if pe.Cause != tt.cause {
				t.Fatalf("expected cause %v, got %v (%s)", tt.cause, pe.Cause, pe.Message)
			}
			if !pe.HasPosition() {
				t.Fatalf("expected error position, got none")
			}
			if pe.Span.Line != tt.line || pe.Span.Column != tt.column {
				t.Fatalf("expected error at %d:%d, got %s", tt.line, tt.column, pe.Span)
			}
			if !strings.Contains(pe.Message, tt.msg) {
				t.Fatalf("expected message containing %q, got %q", tt.msg, pe.Message)
			}
		})
	}
}

func TestParseErrorMissingOperand(t *testing.T) {
	pe := parseError(t, "1 +")
	if pe.Cause != parser.CauseExpectedExpression {
		t.Fatalf("expected CauseExpectedExpression, got %v", pe.Cause)
	}
	if !strings.Contains(pe.Message, "after '+'") {
		t.Fatalf("unexpected message %q", pe.Message)
	}
}

func TestParseErrorExpectedTokenNamesText(t *testing.T) {
	pe := parseError(t, "{1 2}")
	if pe.Expected != "}" {
		t.Fatalf("expected Expected to be %q, got %q", "}", pe.Expected)
	}

	d := pe.ToDiagnostic()
	if d.Code != diag.CodeParseExpectedToken || d.Stage != diag.StageParser {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if d.Span.Line != 1 || d.Span.Column != 4 {
		t.Fatalf("expected diagnostic at 1:4, got %s", d.Span)
	}
	if !strings.Contains(d.Help, "`}`") {
		t.Fatalf("expected help to name the token, got %q", d.Help)
	}
}

func TestParseErrorFromNestedBlock(t *testing.T) {
	const src = "f := ->\n    a := 1\n    b := )\n"

	_, err := parser.ParseString(src, parser.WithFilename("main.itu"))
	if err == nil {
		t.Fatalf("expected parse error")
	}

	var pe *parser.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *parser.ParseError, got %T", err)
	}
	if pe.Nested == nil {
		t.Fatalf("expected nested error to be preserved")
	}
	if errors.Unwrap(err) != error(pe.Nested) {
		t.Fatalf("expected Unwrap to return the nested error")
	}
	if pe.Message != pe.Nested.Message {
		t.Fatalf("expected message %q to be preserved, got %q", pe.Nested.Message, pe.Message)
	}
	if pe.Span.Line != 3 || pe.Span.Column != 10 {
		t.Fatalf("expected error at 3:10, got %s", pe.Span)
	}
	if !strings.HasPrefix(err.Error(), "main.itu:3:10: ") {
		t.Fatalf("expected filename in error, got %q", err.Error())
	}
	if len(pe.ToDiagnostic().Notes) != 1 {
		t.Fatalf("expected a note about the indented block")
	}
}

func TestParseStringReportsLexerErrors(t *testing.T) {
	_, err := parser.ParseString(`x := "open`)
	if err == nil {
		t.Fatalf("expected error")
	}

	var le lexer.LexerError
	if !errors.As(err, &le) {
		t.Fatalf("expected lexer.LexerError, got %T", err)
	}
	if le.Kind != lexer.ErrUnterminatedString {
		t.Fatalf("expected ErrUnterminatedString, got %v", le.Kind)
	}
}

func TestParseTokensWithoutSentinel(t *testing.T) {
	toks := []lexer.Token{
		{Type: lexer.IDENT, Literal: "a", Span: lexer.Span{Line: 1, Column: 1, Start: 0, End: 1}},
		{Type: lexer.OPERATOR, Literal: "+", Span: lexer.Span{Line: 1, Column: 3, Start: 2, End: 3}},
		{Type: lexer.INT, Literal: "1", Span: lexer.Span{Line: 1, Column: 5, Start: 4, End: 5}},
	}

	stmts, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ast.FormatStmts(stmts); got != "(+ a 1)" {
		t.Fatalf("unexpected tree: %s", got)
	}
}

func TestParseIllegalAndUnknownTokens(t *testing.T) {
	illegal := []lexer.Token{
		{Type: lexer.ILLEGAL, Literal: "@", Raw: "@", Span: lexer.Span{Line: 1, Column: 1}},
		{Type: lexer.EOF, Span: lexer.Span{Line: 1, Column: 2}},
	}
	_, err := parser.Parse(illegal)

	var pe *parser.ParseError
	if !errors.As(err, &pe) || pe.Cause != parser.CauseUnexpectedToken || pe.Message != "illegal token: @" {
		t.Fatalf("unexpected error for illegal token: %v", err)
	}

	unknown := []lexer.Token{
		{Type: lexer.INT, Literal: "1", Span: lexer.Span{Line: 1, Column: 1}},
		{Type: lexer.OPERATOR, Literal: "&&", Span: lexer.Span{Line: 1, Column: 3}},
		{Type: lexer.INT, Literal: "2", Span: lexer.Span{Line: 1, Column: 6}},
		{Type: lexer.EOF, Span: lexer.Span{Line: 1, Column: 7}},
	}
	_, err = parser.Parse(unknown)
	if !errors.As(err, &pe) || pe.Cause != parser.CauseUnexpectedToken || pe.Span.Column != 3 {
		t.Fatalf("unexpected error for unknown operator: %v", err)
	}
}

func TestParseLogsDisambiguation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	parseSource(t, "f := (x) ->\n    x\n", parser.WithLogger(logger))

	out := buf.String()
	if !strings.Contains(out, "untyped lambda") {
		t.Fatalf("expected lambda record, got:\n%s", out)
	}
	if !strings.Contains(out, "parsing block") {
		t.Fatalf("expected block record, got:\n%s", out)
	}
}
