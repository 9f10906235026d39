package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/estatelens/estatelens/internal/model"
)

func TestAssistant_Replies(t *testing.T) {
	replies := []struct {
		res model.QueryResult
		err error
	}{
		{model.QueryResult{Summary: "Wakad is up 8%."}, nil},
		{model.QueryResult{}, nil},
		{model.QueryResult{}, errors.New("timeout")},
	}
	fb := &fakeBackend{query: func(string) (model.QueryResult, error) {
		r := replies[0]
		replies = replies[1:]
		return r.res, r.err
	}}
	a := NewAssistant(fb)

	msg, err := a.Ask(context.Background(), "how is Wakad?")
	require.NoError(t, err)
	require.Equal(t, Message{Sender: SenderAI, Text: "Wakad is up 8%."}, msg)

	msg, err = a.Ask(context.Background(), "???")
	require.NoError(t, err)
	require.Equal(t, AssistantFallback, msg.Text)

	msg, err = a.Ask(context.Background(), "again")
	require.Error(t, err)
	require.Equal(t, AssistantError, msg.Text)
	require.False(t, a.Busy())

	transcript := a.Transcript()
	require.Len(t, transcript, 6)
	require.Equal(t, Message{Sender: SenderUser, Text: "how is Wakad?"}, transcript[0])
	require.Equal(t, SenderAI, transcript[5].Sender)
}

func TestAssistant_IgnoresBlankPrompt(t *testing.T) {
	fb := &fakeBackend{}
	a := NewAssistant(fb)

	_, err := a.Ask(context.Background(), "   ")
	require.ErrorIs(t, err, ErrEmptyPrompt)
	require.Empty(t, a.Transcript())
	require.Zero(t, fb.queries)
}

func TestAssistant_DoesNotTouchControllerResult(t *testing.T) {
	fb := &fakeBackend{query: func(string) (model.QueryResult, error) { return sampleResult("side"), nil }}
	c := NewController(fb)
	a := NewAssistant(fb)

	_, err := a.Ask(context.Background(), "hi")
	require.NoError(t, err)
	require.Nil(t, c.Snapshot().Result)
}
