package nats

import (
	"context"
	"encoding/json"
	"sync"
)

// MockSubscriber is a mock implementation of Subscriber for testing.
type MockSubscriber struct {
	mu            sync.RWMutex
	handlers      map[string]map[int]Handler
	nextID        int
	subscribeErr  error
	subscriptions []string
	closed        bool
}

// NewMockSubscriber creates a new mock subscriber for testing.
func NewMockSubscriber() *MockSubscriber {
	return &MockSubscriber{
		handlers: make(map[string]map[int]Handler),
	}
}

// Subscribe records the subscription and returns any configured error.
func (m *MockSubscriber) Subscribe(ctx context.Context, address string, handler Handler) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.subscribeErr != nil {
		return nil, m.subscribeErr
	}

	m.nextID++
	id := m.nextID
	if m.handlers[address] == nil {
		m.handlers[address] = make(map[int]Handler)
	}
	m.handlers[address][id] = handler
	m.subscriptions = append(m.subscriptions, address)

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.handlers[address], id)
	}, nil
}

// Publish delivers data to every live subscription for address.
func (m *MockSubscriber) Publish(address string, data []byte) {
	m.mu.RLock()
	handlers := make([]Handler, 0, len(m.handlers[address]))
	for _, h := range m.handlers[address] {
		handlers = append(handlers, h)
	}
	m.mu.RUnlock()

	for _, h := range handlers {
		h(data)
	}
}

// PublishEvent marshals event and publishes it for its wallet.
func (m *MockSubscriber) PublishEvent(event *TransactionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	m.Publish(event.WalletAddress, data)
	return nil
}

// Active returns how many subscriptions for address are live.
func (m *MockSubscriber) Active(address string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers[address])
}

// Subscriptions returns every address subscribed to, in order.
func (m *MockSubscriber) Subscriptions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.subscriptions))
	copy(out, m.subscriptions)
	return out
}

// SetSubscribeError configures the mock to return an error on Subscribe.
func (m *MockSubscriber) SetSubscribeError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribeErr = err
}

// Close marks the subscriber as closed.
func (m *MockSubscriber) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// IsClosed returns whether the subscriber has been closed.
func (m *MockSubscriber) IsClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}
