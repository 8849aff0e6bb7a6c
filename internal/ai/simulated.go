package ai

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/ZakariaeAmrani1/chatBootDemo-sub000/internal/store"
)

// Canned responses for the keyword branches.
const (
	GreetingReply = "Hello! How can I help you today?"
	HelpReply     = "I can answer questions, summarize documents you upload, and help you draft text. What would you like to do?"
	CodeReply     = "I'd be happy to help with code. Paste the snippet you're working on and tell me what it should do."
)

var fillerTemplates = []string{
	"That's an interesting point about %q. Could you tell me a bit more?",
	"Let me think about %q. Here's my take: it depends on the context you're working in.",
	"Regarding %q, there are a few angles worth considering. Which matters most to you?",
	"Good question. %q is something people approach in different ways - what's your goal?",
}

var greetingWords = map[string]bool{
	"hello": true,
	"hi":    true,
	"hey":   true,
}

// Simulated picks a response by keyword matching on the prompt and returns
// it after an artificial delay that emulates generation latency.
type Simulated struct {
	MinDelay time.Duration
	MaxDelay time.Duration
}

func NewSimulated() *Simulated {
	return &Simulated{
		MinDelay: 1500 * time.Millisecond,
		MaxDelay: 2 * time.Second,
	}
}

func (s *Simulated) delay() time.Duration {
	if s.MaxDelay <= s.MinDelay {
		return s.MinDelay
	}
	return s.MinDelay + time.Duration(rand.Int63n(int64(s.MaxDelay-s.MinDelay)))
}

func (s *Simulated) Generate(ctx context.Context, prompt string, history []store.Message, file *FilePayload) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(s.delay()):
	}

	if file != nil {
		return fmt.Sprintf("I received your file %q (%s). In this demo I can't analyze it, but it was attached successfully.", file.Name, file.MimeType), nil
	}

	lower := strings.ToLower(prompt)
	for _, word := range strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z')
	}) {
		if greetingWords[word] {
			return GreetingReply, nil
		}
	}
	if strings.Contains(lower, "help") {
		return HelpReply, nil
	}
	if strings.Contains(lower, "code") {
		return CodeReply, nil
	}

	template := fillerTemplates[rand.Intn(len(fillerTemplates))]
	return fmt.Sprintf(template, TitleSnippet(prompt)), nil
}

// TitleSnippet shortens a prompt for interpolation into filler sentences.
func TitleSnippet(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	runes := []rune(prompt)
	if len(runes) <= 40 {
		return prompt
	}
	return string(runes[:40]) + "..."
}
