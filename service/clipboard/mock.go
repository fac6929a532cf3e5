package clipboard

import "sync"

// Mock is a mock implementation of Clipboard for testing.
type Mock struct {
	mu     sync.Mutex
	copies []string
	err    error
}

// NewMock creates a new mock clipboard.
func NewMock() *Mock {
	return &Mock{}
}

// Copy records text, or returns the configured error.
func (m *Mock) Copy(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.copies = append(m.copies, text)
	return nil
}

// SetError makes every Copy fail with err.
func (m *Mock) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Copies returns the text copied so far.
func (m *Mock) Copies() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.copies))
	copy(out, m.copies)
	return out
}
