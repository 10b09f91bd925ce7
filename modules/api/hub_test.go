package api

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingConn struct {
	mu       sync.Mutex
	messages []string
	closed   bool
}

func (c *recordingConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, string(data))
	return nil
}

func (c *recordingConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *recordingConn) received() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.messages...)
}

func TestHub_PushReachesRecipientOnly(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	alice1, alice2, bob := &recordingConn{}, &recordingConn{}, &recordingConn{}
	require.True(t, hub.attach(&client{id: "a1", userID: "alice", conn: alice1}))
	require.True(t, hub.attach(&client{id: "a2", userID: "alice", conn: alice2}))
	require.True(t, hub.attach(&client{id: "b1", userID: "bob", conn: bob}))
	assert.Equal(t, 2, hub.Connections("alice"))

	hub.Push("alice", map[string]string{"type": "task_confirmation"})

	assert.Eventually(t, func() bool {
		return len(alice1.received()) == 1 && len(alice2.received()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, bob.received())
	assert.JSONEq(t, `{"type":"task_confirmation"}`, alice1.received()[0])

	hub.detach(&client{id: "a1", userID: "alice"})
	assert.Eventually(t, func() bool { return hub.Connections("alice") == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	hub.Wait()
	assert.True(t, bob.isClosed())
	assert.False(t, hub.attach(&client{id: "late", userID: "bob", conn: &recordingConn{}}))
}

func (c *recordingConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
