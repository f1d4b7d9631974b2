package lsp

import (
	"context"

	"github.com/creachadair/jrpc2"
)

func (h *langHandler) handleShutdown(ctx context.Context, req *jrpc2.Request) (any, error) {
	h.files = make(map[DocumentURI]*File)
	return nil, nil
}
