package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	subjects []string
	payloads [][]byte
	pubErr   error
	closed   bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.pubErr != nil {
		return f.pubErr
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func (f *fakeConn) FlushWithContext(context.Context) error { return nil }

func (f *fakeConn) Close() { f.closed = true }

func TestNATS_StatusChanged(t *testing.T) {
	conn := &fakeConn{}
	n := newNATS(conn, "", slog.Default())

	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	err := n.StatusChanged(context.Background(), Event{
		RunID:    "run-1",
		Document: "cip/cip-1.md",
		From:     "draft",
		To:       "last call",
		At:       at,
	})
	require.NoError(t, err)

	require.Len(t, conn.subjects, 1)
	assert.Equal(t, "cip.lifecycle.last_call", conn.subjects[0])

	var got Event
	require.NoError(t, json.Unmarshal(conn.payloads[0], &got))
	assert.Equal(t, "cip/cip-1.md", got.Document)
	assert.Equal(t, "last call", got.To)
	assert.True(t, at.Equal(got.At))

	require.NoError(t, n.Close())
	assert.True(t, conn.closed)
}

func TestNATS_PublishError(t *testing.T) {
	conn := &fakeConn{pubErr: errors.New("disconnected")}
	n := newNATS(conn, "custom", slog.Default())

	err := n.StatusChanged(context.Background(), Event{To: "final"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "custom.final")
}

func TestNop(t *testing.T) {
	var n Notifier = Nop{}
	assert.NoError(t, n.StatusChanged(context.Background(), Event{}))
	assert.NoError(t, n.Close())
}
