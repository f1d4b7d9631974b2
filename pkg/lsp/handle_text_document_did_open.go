package lsp

import (
	"context"

	"github.com/creachadair/jrpc2"
)

func (h *langHandler) handleTextDocumentDidOpen(ctx context.Context, req *jrpc2.Request) (any, error) {
	var params DidOpenTextDocumentParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "bad didOpen params: %v", err)
	}
	doc := params.TextDocument
	h.updateFile(ctx, doc.URI, doc.Text, doc.Version)
	return nil, nil
}
