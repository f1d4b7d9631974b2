package lsp

import (
	"context"

	"github.com/creachadair/jrpc2"
)

func (h *langHandler) handleTextDocumentDidClose(ctx context.Context, req *jrpc2.Request) (any, error) {
	var params DidCloseTextDocumentParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "bad didClose params: %v", err)
	}
	delete(h.files, params.TextDocument.URI)
	return nil, nil
}
