package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalNotify(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, nil)

	require.NoError(t, term.Notify(context.Background(), Notification{Kind: Info, Message: "Creating flash cards..."}))
	require.NoError(t, term.Notify(context.Background(), Notification{Kind: Success, Message: "Created 3 flash cards!"}))
	require.NoError(t, term.Notify(context.Background(), Notification{Kind: "weird", Message: "fallback"}))

	out := buf.String()
	assert.Contains(t, out, "Creating flash cards...")
	assert.Contains(t, out, "Created 3 flash cards!")
	assert.Contains(t, out, "fallback")
	assert.Equal(t, 3, bytes.Count(buf.Bytes(), []byte("\n")))
}

func TestTerminalBadge(t *testing.T) {
	var buf bytes.Buffer
	NewTerminal(&buf, nil).CardCountChanged(context.Background(), 7)
	assert.Contains(t, buf.String(), "7")
	assert.Contains(t, buf.String(), "cards")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestTerminalWriteFailure(t *testing.T) {
	term := NewTerminal(failingWriter{}, nil)
	assert.Error(t, term.Notify(context.Background(), Notification{Kind: Error, Message: "x"}))
	// Badge failures are swallowed.
	term.CardCountChanged(context.Background(), 1)
}

func TestSend(t *testing.T) {
	rec := &Recorder{}
	Send(context.Background(), rec, nil, Success, "done")
	Send(context.Background(), nil, nil, Success, "ignored")
	Send(context.Background(), NewTerminal(failingWriter{}, nil), nil, Error, "swallowed")

	require.Len(t, rec.Notifications, 1)
	assert.Equal(t, Notification{Kind: Success, Message: "done"}, rec.Notifications[0])
}

func TestDiscard(t *testing.T) {
	d := Discard()
	assert.NoError(t, d.Notify(context.Background(), Notification{Kind: Info, Message: "x"}))
	d.CardCountChanged(context.Background(), 3)
}
