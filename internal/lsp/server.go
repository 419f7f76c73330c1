package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/itu-lang/itu/internal/ast"
	"github.com/itu-lang/itu/internal/diag"
	"github.com/itu-lang/itu/internal/lexer"
	"github.com/itu-lang/itu/internal/parser"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for protocol traces. Nothing is ever written to
// the protocol stream except framed messages.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.log = logger
		}
	}
}

// WithIndentWidth sets how many spaces the lexer counts as one indentation
// unit for every document.
func WithIndentWidth(width int) Option {
	return func(s *Server) {
		s.indentWidth = width
	}
}

// Server represents the LSP server.
type Server struct {
	// Documents tracks open files by URI
	Documents map[string]*Document
	mu        sync.RWMutex

	log         *slog.Logger
	indentWidth int

	out   io.Writer
	outMu sync.Mutex

	shutdown bool
}

// Document represents an open document.
type Document struct {
	URI     string
	Content string
	Version int

	// Stmts is nil while the document does not parse.
	Stmts    []ast.Stmt
	Bindings []Binding
	Errors   []diag.Diagnostic
}

// NewServer creates a new LSP server.
func NewServer(opts ...Option) *Server {
	s := &Server{
		Documents:   make(map[string]*Document),
		log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		indentWidth: lexer.DefaultIndentWidth,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run serves requests read from r and writes responses and notifications to
// w until the client sends exit, r is exhausted or ctx is cancelled.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	reader := bufio.NewReader(r)
	s.out = w

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		body, err := readMessage(reader)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		var msg jsonrpcMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			s.log.Warn("failed to parse JSON-RPC message", "err", err)
			continue
		}
		s.log.Debug("request", "method", msg.Method)

		if msg.Method == "exit" {
			return nil
		}

		if response := s.handleMessage(&msg); response != nil {
			if err := s.send(response); err != nil {
				return err
			}
		}
	}
}

// readMessage reads one Content-Length framed message body.
func readMessage(reader *bufio.Reader) ([]byte, error) {
	contentLength := -1
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) && line == "" {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("failed to read header: %w", err)
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}

		name, value, ok := strings.Cut(line, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid Content-Length header %q", line)
		}
		contentLength = n
	}

	if contentLength < 0 {
		return nil, errors.New("message without Content-Length header")
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(reader, body); err != nil {
		return nil, fmt.Errorf("failed to read message body: %w", err)
	}
	return body, nil
}

// jsonrpcMessage represents an incoming JSON-RPC 2.0 message.
type jsonrpcMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
}

func (m *jsonrpcMessage) isRequest() bool { return len(m.ID) > 0 }

// jsonrpcResponse is an outgoing response or notification. Exactly one of
// Result and Error is set on responses; notifications carry Method and Params.
type jsonrpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  any             `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *jsonrpcError   `json:"error,omitempty"`
}

type jsonrpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const (
	codeInvalidParams  = -32602
	codeMethodNotFound = -32601
	codeInvalidRequest = -32600
)

func result(msg *jsonrpcMessage, v any) *jsonrpcResponse {
	data, err := json.Marshal(v)
	if err != nil {
		return failure(msg, codeInvalidRequest, fmt.Sprintf("failed to marshal result: %v", err))
	}
	return &jsonrpcResponse{JSONRPC: "2.0", ID: msg.ID, Result: data}
}

func failure(msg *jsonrpcMessage, code int, message string) *jsonrpcResponse {
	return &jsonrpcResponse{
		JSONRPC: "2.0",
		ID:      msg.ID,
		Error:   &jsonrpcError{Code: code, Message: message},
	}
}

func invalidParams(msg *jsonrpcMessage, err error) *jsonrpcResponse {
	return failure(msg, codeInvalidParams, fmt.Sprintf("Invalid params: %v", err))
}

// handleMessage processes a JSON-RPC message and returns a response.
func (s *Server) handleMessage(msg *jsonrpcMessage) *jsonrpcResponse {
	if s.shutdown && msg.isRequest() {
		return failure(msg, codeInvalidRequest, "server is shutting down")
	}

	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "textDocument/didOpen":
		s.handleDidOpen(msg)
		return nil
	case "textDocument/didChange":
		s.handleDidChange(msg)
		return nil
	case "textDocument/didClose":
		s.handleDidClose(msg)
		return nil
	case "textDocument/completion":
		return s.handleCompletion(msg)
	case "textDocument/hover":
		return s.handleHover(msg)
	case "textDocument/definition":
		return s.handleDefinition(msg)
	case "shutdown":
		s.shutdown = true
		return result(msg, nil)
	default:
		if msg.isRequest() {
			return failure(msg, codeMethodNotFound, fmt.Sprintf("Method not found: %s", msg.Method))
		}
		return nil
	}
}

// send writes one framed message.
func (s *Server) send(msg *jsonrpcResponse) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	s.outMu.Lock()
	defer s.outMu.Unlock()

	if _, err := fmt.Fprintf(s.out, "Content-Length: %d\r\n\r\n", len(data)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := s.out.Write(data); err != nil {
		return fmt.Errorf("failed to write body: %w", err)
	}
	return nil
}

// InitializeParams represents the initialize request parameters.
type InitializeParams struct {
	ProcessID    int            `json:"processId,omitempty"`
	RootURI      string         `json:"rootUri,omitempty"`
	Capabilities map[string]any `json:"capabilities,omitempty"`
}

// InitializeResult represents the initialize response.
type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
	ServerInfo   ServerInfo         `json:"serverInfo"`
}

type ServerCapabilities struct {
	TextDocumentSync   int            `json:"textDocumentSync"`
	CompletionProvider map[string]any `json:"completionProvider,omitempty"`
	HoverProvider      bool           `json:"hoverProvider"`
	DefinitionProvider bool           `json:"definitionProvider"`
}

type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Version is reported to clients in serverInfo.
const Version = "0.1.0"

func (s *Server) handleInitialize(msg *jsonrpcMessage) *jsonrpcResponse {
	var params InitializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return invalidParams(msg, err)
		}
	}
	s.log.Info("initialize", "root", params.RootURI, "pid", params.ProcessID)

	return result(msg, InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync:   1, // full document sync
			CompletionProvider: map[string]any{},
			HoverProvider:      true,
			DefinitionProvider: true,
		},
		ServerInfo: ServerInfo{Name: "itu-lsp", Version: Version},
	})
}

// DidOpenTextDocumentParams represents didOpen notification parameters.
type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

type TextDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

func (s *Server) handleDidOpen(msg *jsonrpcMessage) {
	var params DidOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.log.Warn("failed to parse didOpen params", "err", err)
		return
	}

	doc := &Document{
		URI:     params.TextDocument.URI,
		Content: params.TextDocument.Text,
		Version: params.TextDocument.Version,
	}
	s.updateDocument(doc)

	s.mu.Lock()
	s.Documents[doc.URI] = doc
	s.mu.Unlock()

	s.publishDiagnostics(doc)
}

// DidChangeTextDocumentParams represents didChange notification parameters.
type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

type VersionedTextDocumentIdentifier struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
}

type TextDocumentContentChangeEvent struct {
	Text string `json:"text"`
}

func (s *Server) handleDidChange(msg *jsonrpcMessage) {
	var params DidChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.log.Warn("failed to parse didChange params", "err", err)
		return
	}
	if len(params.ContentChanges) == 0 {
		return
	}

	uri := params.TextDocument.URI
	s.mu.RLock()
	_, ok := s.Documents[uri]
	s.mu.RUnlock()
	if !ok {
		return
	}

	// Full sync: the last change holds the whole document.
	doc := &Document{
		URI:     uri,
		Content: params.ContentChanges[len(params.ContentChanges)-1].Text,
		Version: params.TextDocument.Version,
	}
	s.updateDocument(doc)

	s.mu.Lock()
	s.Documents[uri] = doc
	s.mu.Unlock()

	s.publishDiagnostics(doc)
}

func (s *Server) handleDidClose(msg *jsonrpcMessage) {
	var params struct {
		TextDocument TextDocumentIdentifier `json:"textDocument"`
	}
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.log.Warn("failed to parse didClose params", "err", err)
		return
	}

	s.mu.Lock()
	delete(s.Documents, params.TextDocument.URI)
	s.mu.Unlock()

	// Clear what the client still shows for the closed file.
	s.publishDiagnostics(&Document{URI: params.TextDocument.URI})
}

type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

// document returns the open document for uri.
func (s *Server) document(uri string) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.Documents[uri]
	return doc, ok
}

// updateDocument tokenizes and parses a document and indexes its bindings.
func (s *Server) updateDocument(doc *Document) {
	filename := uriToPath(doc.URI)

	lx := lexer.New(doc.Content, lexer.WithFilename(filename), lexer.WithIndentWidth(s.indentWidth))
	toks := lx.Tokenize()
	if len(lx.Errors) > 0 {
		for _, le := range lx.Errors {
			doc.Errors = append(doc.Errors, le.ToDiagnostic())
		}
		return
	}

	stmts, err := parser.Parse(toks, parser.WithFilename(filename), parser.WithLogger(s.log))
	if err != nil {
		var pe *parser.ParseError
		if errors.As(err, &pe) {
			doc.Errors = append(doc.Errors, pe.ToDiagnostic())
		} else {
			s.log.Error("parse failed without a diagnostic", "uri", doc.URI, "err", err)
		}
		return
	}

	doc.Stmts = stmts
	doc.Bindings = IndexBindings(stmts)
	s.log.Debug("document parsed", "uri", doc.URI, "version", doc.Version, "statements", len(stmts))
}

// publishDiagnostics sends diagnostics to the client.
func (s *Server) publishDiagnostics(doc *Document) {
	lspDiagnostics := make([]Diagnostic, 0, len(doc.Errors))
	for _, d := range doc.Errors {
		lspDiagnostics = append(lspDiagnostics, Diagnostic{
			Range:    spanRange(d.Span.Line, d.Span.Column, d.Span.End-d.Span.Start),
			Severity: diagnosticSeverity(d.Severity),
			Message:  d.Message,
			Code:     string(d.Code),
			Source:   "itu",
		})
	}

	err := s.send(&jsonrpcResponse{
		JSONRPC: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params: PublishDiagnosticsParams{
			URI:         doc.URI,
			Version:     doc.Version,
			Diagnostics: lspDiagnostics,
		},
	})
	if err != nil {
		s.log.Warn("failed to publish diagnostics", "uri", doc.URI, "err", err)
	}
}

type PublishDiagnosticsParams struct {
	URI         string       `json:"uri"`
	Version     int          `json:"version,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Diagnostic represents an LSP diagnostic.
type Diagnostic struct {
	Range    Range  `json:"range"`
	Severity int    `json:"severity"`
	Message  string `json:"message"`
	Code     string `json:"code,omitempty"`
	Source   string `json:"source,omitempty"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// spanRange converts a 1-based line and column plus a width in runes into a
// single-line LSP range. Zero widths cover one character.
func spanRange(line, column, width int) Range {
	if line < 1 {
		line = 1
	}
	if column < 1 {
		column = 1
	}
	width = max(width, 1)
	return Range{
		Start: Position{Line: line - 1, Character: column - 1},
		End:   Position{Line: line - 1, Character: column - 1 + width},
	}
}

func diagnosticSeverity(sev diag.Severity) int {
	switch sev {
	case diag.SeverityError:
		return 1 // Error
	case diag.SeverityWarning:
		return 2 // Warning
	case diag.SeverityNote:
		return 3 // Information
	default:
		return 1
	}
}

// uriToPath converts a file:// URI to a file path.
func uriToPath(uri string) string {
	if path, ok := strings.CutPrefix(uri, "file://"); ok {
		// Handle Windows paths
		if len(path) > 2 && path[0] == '/' && path[2] == ':' {
			path = path[1:]
		}
		return path
	}
	return uri
}
