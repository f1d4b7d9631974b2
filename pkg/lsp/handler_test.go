package lsp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodGrammar = "%start S\nS[] -> 'hi'\n"

func TestUpdateFile(t *testing.T) {
	ctx := context.Background()
	h := NewHandler(ctx)

	t.Run("valid grammar has no diagnostics", func(t *testing.T) {
		h.updateFile(ctx, "file:///g.gram", goodGrammar, 1)

		f := h.files["file:///g.gram"]
		require.NotNil(t, f)
		assert.Empty(t, f.Diagnostics)
		assert.Equal(t, 1, f.Version)
	})

	t.Run("syntax error yields a positioned diagnostic", func(t *testing.T) {
		h.updateFile(ctx, "file:///g.gram", "%start S\nS[] -> 'hi\n", 2)

		f := h.files["file:///g.gram"]
		require.Len(t, f.Diagnostics, 1)
		d := f.Diagnostics[0]
		assert.Equal(t, SeverityError, d.Severity)
		assert.Equal(t, "gram", d.Source)
		assert.Contains(t, d.Message, "unterminated token literal")
		assert.Equal(t, 1, d.Range.Start.Line, "lines are zero-based in the protocol")
	})

	t.Run("fixing the file clears diagnostics", func(t *testing.T) {
		h.updateFile(ctx, "file:///g.gram", goodGrammar, 3)

		f := h.files["file:///g.gram"]
		assert.Empty(t, f.Diagnostics)
		assert.Equal(t, 3, f.Version)
	})
}

func TestErrorToDiagnosticFallback(t *testing.T) {
	// Errors without position information still surface as diagnostics
	// anchored at the top of the file.
	d := errorToDiagnostic(assert.AnError)
	assert.Equal(t, SeverityError, d.Severity)
	assert.Equal(t, assert.AnError.Error(), d.Message)
	assert.Equal(t, 0, d.Range.Start.Line)
}

func TestAssign(t *testing.T) {
	h := NewHandler(context.Background())

	for _, method := range []string{
		"initialize",
		"initialized",
		"shutdown",
		"exit",
		"textDocument/didOpen",
		"textDocument/didChange",
		"textDocument/didClose",
		"textDocument/didSave",
	} {
		assert.NotNil(t, h.Assign(context.Background(), method), method)
	}
	assert.Nil(t, h.Assign(context.Background(), "textDocument/hover"))
}
