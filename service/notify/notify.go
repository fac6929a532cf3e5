// Package notify shows short acknowledgements to the user.
package notify

import (
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Notifier displays a transient message.
type Notifier interface {
	Notify(msg string)
}

// Terminal prints notifications to a writer in color.
type Terminal struct {
	mu    sync.Mutex
	w     io.Writer
	color *color.Color
}

// NewTerminal returns a notifier writing to w. A nil w writes to stdout.
func NewTerminal(w io.Writer) *Terminal {
	if w == nil {
		w = os.Stdout
	}
	return &Terminal{
		w:     w,
		color: color.New(color.FgGreen, color.Bold),
	}
}

// Notify implements Notifier.
func (t *Terminal) Notify(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.color.Fprintln(t.w, msg)
}

// Mock records notifications for testing.
type Mock struct {
	mu       sync.Mutex
	messages []string
}

// NewMock creates a new mock notifier.
func NewMock() *Mock {
	return &Mock{}
}

// Notify implements Notifier.
func (m *Mock) Notify(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
}

// Messages returns the notifications shown so far.
func (m *Mock) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.messages))
	copy(out, m.messages)
	return out
}
