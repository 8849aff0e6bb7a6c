package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/ZakariaeAmrani1/chatBootDemo-sub000/internal/store"
)

const (
	// historyWindow is the number of trailing messages forwarded as context.
	historyWindow = 10

	systemInstruction = "You are a helpful assistant in a chat application. " +
		"Answer the user's questions directly and concisely. When a file is " +
		"attached, base your answer on its contents."

	safetyReply     = "I'm sorry, I can't help with that request."
	recitationReply = "I'm sorry, I can't reproduce that content. Could you rephrase your question?"
	emptyReply      = "I'm sorry, I couldn't generate a response at this time. Please try again."
)

// Gemini generates responses through the generative language API. Every
// call carries a hard timeout enforced by context cancellation.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGemini(ctx context.Context, apiKey, model string, timeout time.Duration) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Gemini{client: client, model: model, timeout: timeout}, nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

func (g *Gemini) Generate(ctx context.Context, prompt string, history []store.Message, file *FilePayload) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	model := g.client.GenerativeModel(g.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction)},
	}

	session := model.StartChat()
	session.History = buildHistory(history)

	parts := []genai.Part{genai.Text(prompt)}
	if file != nil {
		parts = append(parts, genai.Blob{MIMEType: file.MimeType, Data: file.Data})
	}

	resp, err := session.SendMessage(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini SendMessage failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return emptyReply, nil
	}

	candidate := resp.Candidates[0]
	switch candidate.FinishReason {
	case genai.FinishReasonSafety:
		return safetyReply, nil
	case genai.FinishReasonRecitation:
		return recitationReply, nil
	}
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return emptyReply, nil
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	if text.Len() == 0 {
		return emptyReply, nil
	}
	return text.String(), nil
}

// buildHistory maps the trailing window of stored messages to genai turns.
// A trailing user message is dropped (it is the prompt being sent), and
// system messages are skipped since the API only knows user and model roles.
func buildHistory(history []store.Message) []*genai.Content {
	if n := len(history); n > 0 && history[n-1].Type == store.MessageTypeUser {
		history = history[:n-1]
	}
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	var turns []*genai.Content
	for _, msg := range history {
		role := ""
		switch msg.Type {
		case store.MessageTypeUser:
			role = "user"
		case store.MessageTypeAssistant:
			role = "model"
		default:
			continue
		}
		if msg.Content == "" {
			continue
		}
		turns = append(turns, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}
	return turns
}
