// Package ai produces assistant responses. Two interchangeable generators
// exist: a canned-phrase simulator and a Gemini-backed live generator. The
// chat service only depends on the Generator contract and never learns
// which one produced a message.
package ai

import (
	"context"

	"github.com/ZakariaeAmrani1/chatBootDemo-sub000/internal/store"
)

// FilePayload is an uploaded file's raw bytes, inlined into the prompt by
// generators that support it.
type FilePayload struct {
	Name     string
	MimeType string
	Data     []byte
}

// Generator produces an assistant reply for the prompt. History holds the
// conversation so far, newest last; it may include the already-persisted
// prompt message, which generators must not replay as context.
type Generator interface {
	Generate(ctx context.Context, prompt string, history []store.Message, file *FilePayload) (string, error)
}
