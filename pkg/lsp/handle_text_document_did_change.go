package lsp

import (
	"context"

	"github.com/creachadair/jrpc2"
)

func (h *langHandler) handleTextDocumentDidChange(ctx context.Context, req *jrpc2.Request) (any, error) {
	var params DidChangeTextDocumentParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "bad didChange params: %v", err)
	}
	if len(params.ContentChanges) == 0 {
		return nil, nil
	}
	// Full sync: the last change carries the whole document.
	text := params.ContentChanges[len(params.ContentChanges)-1].Text
	h.updateFile(ctx, params.TextDocument.URI, text, params.TextDocument.Version)
	return nil, nil
}
