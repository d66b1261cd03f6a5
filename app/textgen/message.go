package textgen

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MaxRecentCheckIns caps the history sent with a re-engagement prompt.
const MaxRecentCheckIns = 5

// CheckInSummary is one line of check-in history.
type CheckInSummary struct {
	Date   time.Time
	Note   string
	Weight *float64
}

// ReengagementInput describes the client that went quiet.
type ReengagementInput struct {
	ClientName     string
	DaysInactive   int
	Notes          string
	RecentCheckIns []CheckInSummary
}

// MessageWriter drafts coach-to-client messages.
type MessageWriter struct {
	gen       Generator
	maxTokens int
}

func NewMessageWriter(gen Generator, maxTokens int) *MessageWriter {
	if maxTokens <= 0 {
		maxTokens = 200
	}
	return &MessageWriter{gen: gen, maxTokens: maxTokens}
}

// Reengagement drafts a short, warm message asking the client to check in again.
func (m *MessageWriter) Reengagement(ctx context.Context, in ReengagementInput) (string, error) {
	text, err := m.gen.Generate(ctx, Request{
		Purpose:   PurposeReengagement,
		Prompt:    ReengagementPrompt(in),
		MaxTokens: m.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("generate re-engagement message: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("generate re-engagement message: empty answer")
	}
	return text, nil
}

// ReengagementPrompt renders the prompt. History is expected newest first.
func ReengagementPrompt(in ReengagementInput) string {
	notes := strings.TrimSpace(in.Notes)
	if notes == "" {
		notes = "None"
	}

	var history strings.Builder
	if len(in.RecentCheckIns) > 0 {
		history.WriteString("Recent check-in history:\n")
		for i, c := range in.RecentCheckIns {
			if i == MaxRecentCheckIns {
				break
			}
			note := strings.TrimSpace(c.Note)
			if note == "" {
				note = "No notes"
			}
			fmt.Fprintf(&history, "- %s: %s", c.Date.Format("Jan 02"), note)
			if c.Weight != nil {
				fmt.Fprintf(&history, " (Weight: %s lbs)", strconv.FormatFloat(*c.Weight, 'f', -1, 64))
			}
			history.WriteString("\n")
		}
	}

	return fmt.Sprintf(`You are helping a fitness coach write a friendly, personalized re-engagement message to a client who hasn't checked in recently.

Client name: %s
Days since last check-in: %d
Coach's notes about this client: %s
%s
Write a short, warm message (2-3 sentences) that:
1. Acknowledges the gap without making the client feel guilty
2. Mentions something specific if possible, such as their goal or recent progress
3. Encourages them to check in
4. Sounds like a person wrote it

Output only the message.`, in.ClientName, in.DaysInactive, notes, history.String())
}
