package lsp

import (
	"context"
	"log/slog"

	"github.com/creachadair/jrpc2"
	"github.com/pkg/errors"

	"github.com/vito/gram/pkg/gram"
)

// NewHandler creates the JSON-RPC handler for the grammar language server.
func NewHandler(ctx context.Context) *langHandler {
	return &langHandler{
		files: make(map[DocumentURI]*File),
	}
}

type langHandler struct {
	files map[DocumentURI]*File
	srv   *jrpc2.Server
}

// File is an open grammar document and its current diagnostics.
type File struct {
	Text        string
	Version     int
	Diagnostics []Diagnostic
}

// SetServer stores the server so diagnostics can be pushed to the client.
func (h *langHandler) SetServer(srv *jrpc2.Server) {
	h.srv = srv
}

// Assign routes LSP methods to their handlers. Unknown methods return nil,
// which jrpc2 reports as "method not found" for calls and drops for
// notifications.
func (h *langHandler) Assign(ctx context.Context, method string) jrpc2.Handler {
	switch method {
	case "initialize":
		return h.handleInitialize
	case "initialized":
		return h.handleNop
	case "shutdown":
		return h.handleShutdown
	case "exit":
		return h.handleNop
	case "textDocument/didOpen":
		return h.handleTextDocumentDidOpen
	case "textDocument/didChange":
		return h.handleTextDocumentDidChange
	case "textDocument/didClose":
		return h.handleTextDocumentDidClose
	case "textDocument/didSave":
		return h.handleNop
	default:
		return nil
	}
}

func (h *langHandler) handleNop(ctx context.Context, req *jrpc2.Request) (any, error) {
	return nil, nil
}

// updateFile reloads the grammar and publishes fresh diagnostics.
func (h *langHandler) updateFile(ctx context.Context, uri DocumentURI, text string, version int) {
	f, ok := h.files[uri]
	if !ok {
		f = &File{}
		h.files[uri] = f
	}
	f.Text = text
	f.Version = version
	f.Diagnostics = f.Diagnostics[:0]

	if _, err := gram.Load(text); err != nil {
		f.Diagnostics = append(f.Diagnostics, errorToDiagnostic(err))
	}
	h.publishDiagnostics(ctx, uri, f)
}

func errorToDiagnostic(err error) Diagnostic {
	diag := Diagnostic{
		Severity: SeverityError,
		Source:   "gram",
		Message:  err.Error(),
	}
	var mge *gram.MalformedGrammarError
	if errors.As(err, &mge) {
		line := mge.Line - 1
		col := 0
		if mge.Column > 0 {
			col = mge.Column - 1
		}
		diag.Range = Range{
			Start: Position{Line: line, Character: col},
			End:   Position{Line: line, Character: col + 1},
		}
		diag.Message = mge.Msg
	}
	return diag
}

func (h *langHandler) publishDiagnostics(ctx context.Context, uri DocumentURI, f *File) {
	if h.srv == nil {
		return
	}
	err := h.srv.Notify(ctx, "textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: f.Diagnostics,
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to publish diagnostics", "uri", uri, "error", err)
	}
}
