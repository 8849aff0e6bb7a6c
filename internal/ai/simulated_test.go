package ai

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// instant returns a generator with the artificial latency zeroed out.
func instant() *Simulated {
	return &Simulated{}
}

func TestGenerateKeywordBranches(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{"hello", "hello", GreetingReply},
		{"greeting in sentence", "Hey, are you there?", GreetingReply},
		{"uppercase greeting", "HI THERE", GreetingReply},
		{"help", "I need some help with my resume", HelpReply},
		{"code", "can you review this code?", CodeReply},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := instant().Generate(context.Background(), tt.prompt, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateNoSubstringGreetingMatch(t *testing.T) {
	// "hi" inside another word must not trigger the greeting branch.
	got, err := instant().Generate(context.Background(), "tell me about whisky", nil, nil)
	require.NoError(t, err)
	assert.NotEqual(t, GreetingReply, got)
}

func TestGenerateFillerEchoesPrompt(t *testing.T) {
	got, err := instant().Generate(context.Background(), "quantum entanglement", nil, nil)
	require.NoError(t, err)
	assert.Contains(t, got, "quantum entanglement")
}

func TestGenerateFileAcknowledgment(t *testing.T) {
	file := &FilePayload{Name: "report.pdf", MimeType: "application/pdf", Data: []byte("x")}
	got, err := instant().Generate(context.Background(), "hello", nil, file)
	require.NoError(t, err)
	assert.Contains(t, got, "report.pdf")
	assert.Contains(t, got, "application/pdf")
}

func TestGenerateHonorsContextCancellation(t *testing.T) {
	s := &Simulated{MinDelay: time.Hour, MaxDelay: time.Hour}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := s.Generate(ctx, "hello", nil, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestGenerateDelayWithinBounds(t *testing.T) {
	s := &Simulated{MinDelay: 20 * time.Millisecond, MaxDelay: 60 * time.Millisecond}
	start := time.Now()
	_, err := s.Generate(context.Background(), "hello", nil, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestTitleSnippet(t *testing.T) {
	assert.Equal(t, "short", TitleSnippet("  short  "))

	long := strings.Repeat("x", 80)
	got := TitleSnippet(long)
	assert.Equal(t, strings.Repeat("x", 40)+"...", got)
}
