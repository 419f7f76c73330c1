package lsp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"testing"
)

const testURI = "file:///work/main.itu"

const testSource = `a := 1
f := (x: i32): i32 ->
    y := x * a
    y + 1
f a
`

type session struct {
	t  *testing.T
	in bytes.Buffer
	id int
}

func (s *session) notify(method string, params any) {
	s.write(map[string]any{"jsonrpc": "2.0", "method": method, "params": params})
}

func (s *session) request(method string, params any) int {
	s.id++
	s.write(map[string]any{"jsonrpc": "2.0", "id": s.id, "method": method, "params": params})
	return s.id
}

func (s *session) write(msg map[string]any) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.t.Fatal(err)
	}
	fmt.Fprintf(&s.in, "Content-Length: %d\r\n\r\n", len(data))
	s.in.Write(data)
}

type reply struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	Result json.RawMessage `json:"result"`
	Error  *jsonrpcError   `json:"error"`
}

// run serves the queued messages and returns every frame the server wrote.
func (s *session) run() []reply {
	s.t.Helper()

	var out bytes.Buffer
	if err := NewServer().Run(context.Background(), &s.in, &out); err != nil {
		s.t.Fatalf("Run returned error: %v", err)
	}

	var replies []reply
	r := bufio.NewReader(&out)
	for {
		body, err := readMessage(r)
		if errors.Is(err, io.EOF) {
			return replies
		}
		if err != nil {
			s.t.Fatalf("malformed frame: %v", err)
		}
		var rep reply
		if err := json.Unmarshal(body, &rep); err != nil {
			s.t.Fatalf("malformed reply %s: %v", body, err)
		}
		replies = append(replies, rep)
	}
}

func (s *session) open(text string) {
	s.notify("textDocument/didOpen", map[string]any{
		"textDocument": map[string]any{"uri": testURI, "languageId": "itu", "version": 1, "text": text},
	})
}

func position(line, character int) map[string]any {
	return map[string]any{
		"textDocument": map[string]any{"uri": testURI},
		"position":     map[string]any{"line": line, "character": character},
	}
}

func findReply(t *testing.T, replies []reply, id int) reply {
	t.Helper()
	want := strconv.Itoa(id)
	for _, r := range replies {
		if string(r.ID) == want {
			return r
		}
	}
	t.Fatalf("no reply with id %d", id)
	return reply{}
}

func diagnosticsOf(t *testing.T, replies []reply) []PublishDiagnosticsParams {
	t.Helper()
	var out []PublishDiagnosticsParams
	for _, r := range replies {
		if r.Method != "textDocument/publishDiagnostics" {
			continue
		}
		var p PublishDiagnosticsParams
		if err := json.Unmarshal(r.Params, &p); err != nil {
			t.Fatal(err)
		}
		out = append(out, p)
	}
	return out
}

func TestInitializeAdvertisesCapabilities(t *testing.T) {
	s := &session{t: t}
	id := s.request("initialize", map[string]any{"processId": 1, "rootUri": "file:///work"})
	replies := s.run()

	var res InitializeResult
	if err := json.Unmarshal(findReply(t, replies, id).Result, &res); err != nil {
		t.Fatal(err)
	}
	if !res.Capabilities.HoverProvider || !res.Capabilities.DefinitionProvider {
		t.Fatalf("missing capabilities: %+v", res.Capabilities)
	}
	if res.Capabilities.TextDocumentSync != 1 {
		t.Fatalf("expected full sync, got %d", res.Capabilities.TextDocumentSync)
	}
	if res.ServerInfo.Name != "itu-lsp" {
		t.Fatalf("unexpected server info %+v", res.ServerInfo)
	}
}

func TestCleanDocumentPublishesNoDiagnostics(t *testing.T) {
	s := &session{t: t}
	s.open(testSource)

	diags := diagnosticsOf(t, s.run())
	if len(diags) != 1 {
		t.Fatalf("expected one publish, got %d", len(diags))
	}
	if diags[0].URI != testURI || len(diags[0].Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags[0])
	}
}

func TestParseErrorIsPublished(t *testing.T) {
	s := &session{t: t}
	s.open("a := (1 + 2\n")
	s.notify("textDocument/didChange", map[string]any{
		"textDocument":   map[string]any{"uri": testURI, "version": 2},
		"contentChanges": []any{map[string]any{"text": "a := (1 + 2)\n"}},
	})
	s.notify("textDocument/didClose", map[string]any{"textDocument": map[string]any{"uri": testURI}})

	diags := diagnosticsOf(t, s.run())
	if len(diags) != 3 {
		t.Fatalf("expected three publishes, got %d", len(diags))
	}

	first := diags[0].Diagnostics
	if len(first) != 1 {
		t.Fatalf("expected one diagnostic, got %+v", first)
	}
	d := first[0]
	if d.Code != "PARSE_EXPECTED_TOKEN" || d.Severity != 1 || d.Source != "itu" {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if d.Range.Start != (Position{Line: 0, Character: 5}) {
		t.Fatalf("expected diagnostic at the open paren, got %+v", d.Range)
	}

	if diags[1].Version != 2 || len(diags[1].Diagnostics) != 0 {
		t.Fatalf("fixed document must clear diagnostics: %+v", diags[1])
	}
	if len(diags[2].Diagnostics) != 0 {
		t.Fatalf("closing must clear diagnostics: %+v", diags[2])
	}
}

func TestLexerErrorIsPublished(t *testing.T) {
	s := &session{t: t}
	s.open("s := \"open\n")

	diags := diagnosticsOf(t, s.run())
	if len(diags) != 1 || len(diags[0].Diagnostics) != 1 {
		t.Fatalf("expected one lexer diagnostic, got %+v", diags)
	}
	if got := diags[0].Diagnostics[0].Code; got != "LEXER_UNTERMINATED_STRING" {
		t.Fatalf("unexpected code %q", got)
	}
}

func TestHover(t *testing.T) {
	s := &session{t: t}
	s.open(testSource)
	param := s.request("textDocument/hover", position(2, 9))
	fn := s.request("textDocument/hover", position(4, 0))
	def := s.request("textDocument/hover", position(0, 0))
	literal := s.request("textDocument/hover", position(0, 5))
	replies := s.run()

	tests := []struct {
		id   int
		want string
	}{
		{param, "x: i32 (parameter)"},
		{fn, "f := (x: i32): i32 -> ..."},
		{def, "a := 1"},
	}
	for _, tt := range tests {
		var h Hover
		if err := json.Unmarshal(findReply(t, replies, tt.id).Result, &h); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(h.Contents.Value, tt.want) {
			t.Errorf("hover %d: expected %q in %q", tt.id, tt.want, h.Contents.Value)
		}
	}

	if res := findReply(t, replies, literal).Result; string(res) != "null" {
		t.Fatalf("hover over a literal should be null, got %s", res)
	}
}

func TestDefinition(t *testing.T) {
	s := &session{t: t}
	s.open(testSource)
	outer := s.request("textDocument/definition", position(2, 13))
	local := s.request("textDocument/definition", position(3, 4))
	param := s.request("textDocument/definition", position(2, 9))
	replies := s.run()

	tests := []struct {
		id   int
		want Range
	}{
		{outer, spanRange(1, 1, 1)},
		{local, spanRange(3, 5, 1)},
		{param, spanRange(2, 7, 1)},
	}
	for _, tt := range tests {
		var loc Location
		if err := json.Unmarshal(findReply(t, replies, tt.id).Result, &loc); err != nil {
			t.Fatal(err)
		}
		if loc.URI != testURI || loc.Range != tt.want {
			t.Errorf("definition %d: expected %+v, got %+v", tt.id, tt.want, loc)
		}
	}
}

func TestCompletionIsScoped(t *testing.T) {
	s := &session{t: t}
	s.open(testSource)
	inside := s.request("textDocument/completion", position(3, 4))
	outside := s.request("textDocument/completion", position(4, 0))
	replies := s.run()

	labels := func(id int) map[string]int {
		var list CompletionList
		if err := json.Unmarshal(findReply(t, replies, id).Result, &list); err != nil {
			t.Fatal(err)
		}
		m := make(map[string]int)
		for _, item := range list.Items {
			m[item.Label] = item.Kind
		}
		return m
	}

	in := labels(inside)
	for _, name := range []string{"a", "f", "x", "y", "i32", "mut"} {
		if _, ok := in[name]; !ok {
			t.Errorf("expected %q inside the lambda body, got %v", name, in)
		}
	}
	if in["f"] != completionKindFunction {
		t.Errorf("f should complete as a function, got kind %d", in["f"])
	}

	out := labels(outside)
	for _, name := range []string{"x", "y"} {
		if _, ok := out[name]; ok {
			t.Errorf("%q must not be offered outside its scope", name)
		}
	}
	if _, ok := out["a"]; !ok {
		t.Errorf("expected top-level a outside the lambda")
	}
}

func TestUnknownMethodAndShutdown(t *testing.T) {
	s := &session{t: t}
	unknown := s.request("workspace/symbol", map[string]any{})
	shutdown := s.request("shutdown", nil)
	late := s.request("textDocument/hover", position(0, 0))
	s.notify("exit", nil)
	s.request("initialize", map[string]any{})
	replies := s.run()

	if r := findReply(t, replies, unknown); r.Error == nil || r.Error.Code != codeMethodNotFound {
		t.Fatalf("expected method not found, got %+v", r)
	}
	if r := findReply(t, replies, shutdown); r.Error != nil || string(r.Result) != "null" {
		t.Fatalf("unexpected shutdown reply %+v", r)
	}
	if r := findReply(t, replies, late); r.Error == nil || r.Error.Code != codeInvalidRequest {
		t.Fatalf("requests after shutdown must fail, got %+v", r)
	}
	if len(replies) != 3 {
		t.Fatalf("nothing may be served after exit, got %d replies", len(replies))
	}
}

func TestResolveShadowing(t *testing.T) {
	s := &session{t: t}
	s.open("a := 1\ng := (a) ->\n    a\na\n")
	inner := s.request("textDocument/definition", position(2, 4))
	outer := s.request("textDocument/definition", position(3, 0))
	replies := s.run()

	var loc Location
	if err := json.Unmarshal(findReply(t, replies, inner).Result, &loc); err != nil {
		t.Fatal(err)
	}
	if loc.Range != spanRange(2, 7, 1) {
		t.Fatalf("inner a should resolve to the parameter, got %+v", loc.Range)
	}

	if err := json.Unmarshal(findReply(t, replies, outer).Result, &loc); err != nil {
		t.Fatal(err)
	}
	if loc.Range != spanRange(1, 1, 1) {
		t.Fatalf("outer a should resolve to the top-level definition, got %+v", loc.Range)
	}
}

func TestPositionToOffset(t *testing.T) {
	content := "ab\nçd\n"
	tests := []struct {
		pos  Position
		want int
	}{
		{Position{0, 0}, 0},
		{Position{0, 1}, 1},
		{Position{0, 9}, 2},
		{Position{1, 1}, 4},
		{Position{2, 0}, 6},
		{Position{7, 0}, 6},
	}
	for _, tt := range tests {
		if got := positionToOffset(content, tt.pos); got != tt.want {
			t.Errorf("positionToOffset(%+v) = %d, want %d", tt.pos, got, tt.want)
		}
	}
}

func TestURIToPath(t *testing.T) {
	tests := map[string]string{
		"file:///work/main.itu":    "/work/main.itu",
		"file:///C:/work/main.itu": "C:/work/main.itu",
		"untitled:1":               "untitled:1",
	}
	for uri, want := range tests {
		if got := uriToPath(uri); got != want {
			t.Errorf("uriToPath(%q) = %q, want %q", uri, got, want)
		}
	}
}
