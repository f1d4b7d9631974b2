package lsp

import (
	"context"

	"github.com/creachadair/jrpc2"
)

func (h *langHandler) handleInitialize(ctx context.Context, req *jrpc2.Request) (any, error) {
	if req.HasParams() {
		var params InitializeParams
		if err := req.UnmarshalParams(&params); err != nil {
			return nil, jrpc2.Errorf(jrpc2.InvalidParams, "bad initialize params: %v", err)
		}
	}
	return InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: TDSKFull,
		},
	}, nil
}
