package session

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/estatelens/estatelens/internal/model"
)

const (
	AssistantFallback = "Sorry, I couldn't understand."
	AssistantError    = "Error fetching response from AI."
)

// ErrEmptyPrompt is returned by Ask for blank input.
var ErrEmptyPrompt = errors.New("session: empty prompt")

type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Message is one line of the assistant transcript.
type Message struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

// Assistant is a side chat over the query endpoint. It has its own busy flag
// and never touches the controller's result.
type Assistant struct {
	api model.Querier

	mu       sync.Mutex
	busy     bool
	messages []Message
}

// NewAssistant returns an assistant that asks api.
func NewAssistant(api model.Querier) *Assistant {
	return &Assistant{api: api}
}

// Ask records the prompt, queries the backend and records the reply.
// The reply is the summary, a fallback when the summary is empty, or an
// error line when the call fails.
func (a *Assistant) Ask(ctx context.Context, prompt string) (Message, error) {
	if strings.TrimSpace(prompt) == "" {
		return Message{}, ErrEmptyPrompt
	}

	a.mu.Lock()
	if a.busy {
		a.mu.Unlock()
		return Message{}, ErrBusy
	}
	a.busy = true
	a.messages = append(a.messages, Message{Sender: SenderUser, Text: prompt})
	a.mu.Unlock()

	reply := Message{Sender: SenderAI}
	ans, err := a.api.Query(ctx, prompt)
	switch {
	case err != nil:
		log.Printf("session: assistant query: %v", err)
		reply.Text = AssistantError
	case ans.Summary == "":
		reply.Text = AssistantFallback
	default:
		reply.Text = ans.Summary
	}

	a.mu.Lock()
	a.messages = append(a.messages, reply)
	a.busy = false
	a.mu.Unlock()
	return reply, err
}

// Busy reports whether a prompt is in flight.
func (a *Assistant) Busy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.busy
}

// Transcript returns a copy of every message so far.
func (a *Assistant) Transcript() []Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Message(nil), a.messages...)
}
