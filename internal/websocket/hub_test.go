package websocket

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient is a test double for Client that captures sent messages
type mockClient struct {
	id       string
	bookID   int32
	messages [][]byte
	mu       sync.Mutex
	closed   bool
}

func newMockClient(id string, bookID int32) *mockClient {
	return &mockClient{
		id:       id,
		bookID:   bookID,
		messages: make([][]byte, 0),
	}
}

func (m *mockClient) ID() string {
	return m.id
}

func (m *mockClient) BookID() int32 {
	return m.bookID
}

func (m *mockClient) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClientClosed
	}
	m.messages = append(m.messages, data)
	return nil
}

func (m *mockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockClient) GetMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.messages))
	copy(out, m.messages)
	return out
}

func TestHub_RegisterAndCount(t *testing.T) {
	hub := NewHub()

	c1 := newMockClient("c1", 1)
	c2 := newMockClient("c2", 1)
	c3 := newMockClient("c3", 2)

	hub.Register(c1)
	hub.Register(c2)
	hub.Register(c3)

	assert.Equal(t, 2, hub.ClientCount(1))
	assert.Equal(t, 1, hub.ClientCount(2))
	assert.Equal(t, 0, hub.ClientCount(3))
	assert.Equal(t, 3, hub.TotalClientCount())
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub()

	c1 := newMockClient("c1", 1)
	hub.Register(c1)
	require.Equal(t, 1, hub.ClientCount(1))

	hub.Unregister(c1)
	assert.Equal(t, 0, hub.ClientCount(1))
	assert.Equal(t, 0, hub.TotalClientCount())

	// Unregistering twice is a no-op
	hub.Unregister(c1)
	assert.Equal(t, 0, hub.TotalClientCount())
}

func TestHub_BroadcastScopedToBook(t *testing.T) {
	hub := NewHub()

	inBook := newMockClient("in", 1)
	otherBook := newMockClient("other", 2)
	hub.Register(inBook)
	hub.Register(otherBook)

	hub.Broadcast(1, TransactionCreated(map[string]any{"id": 42}))

	// Sends are async
	require.Eventually(t, func() bool {
		return len(inBook.GetMessages()) == 1
	}, time.Second, 10*time.Millisecond)

	assert.Empty(t, otherBook.GetMessages())
}

func TestHub_BroadcastToEmptyBook(t *testing.T) {
	hub := NewHub()

	// Must not panic or block
	hub.Broadcast(99, AccountUpdated(nil))
}

func TestHub_ConcurrentRegisterBroadcast(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			hub.Register(newMockClient(string(rune('a'+i)), int32(i%3)))
		}(i)
		go func(i int) {
			defer wg.Done()
			hub.Broadcast(int32(i%3), TagCreated(nil))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, hub.TotalClientCount())
}
