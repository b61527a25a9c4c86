package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_ImplementsEventPublisher(t *testing.T) {
	var _ EventPublisher = NewHub()
}

func TestHub_PublishDeliversToBook(t *testing.T) {
	hub := NewHub()
	client := newMockClient("c1", 5)
	hub.Register(client)

	hub.Publish(5, CategoryDeleted(map[string]any{"id": 3}))

	require.Eventually(t, func() bool {
		return len(client.GetMessages()) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestNoOpPublisher(t *testing.T) {
	var p EventPublisher = &NoOpPublisher{}
	// Must not panic
	p.Publish(1, TransactionCreated(nil))
	assert.NotNil(t, p)
}
