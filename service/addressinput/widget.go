// Package addressinput implements the recipient address widget: a collapsed
// link that expands into a text field. Input is handed to the caller as typed;
// validation is the caller's job.
package addressinput

import (
	"fmt"
	"io"
	"sync"
)

// Mode is the widget's display state.
type Mode int

const (
	Collapsed Mode = iota
	Editing
)

func (m Mode) String() string {
	switch m {
	case Collapsed:
		return "collapsed"
	case Editing:
		return "editing"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Labels shown for each mode.
const (
	CollapsedLabel = "+ Add recipient address"
	EditingLabel   = "- Remove recipient address"
)

// Config wires the widget to its caller.
type Config struct {
	// OnChange receives every input while editing, verbatim.
	OnChange func(text string)

	// OnStatusChange, if set, is told about every mode change.
	OnStatusChange func(Mode)
}

// Widget is the address-entry toggle.
type Widget struct {
	cfg Config

	mu   sync.Mutex
	mode Mode
	text string
}

// New returns a collapsed widget.
func New(cfg Config) *Widget {
	return &Widget{cfg: cfg}
}

// Mode returns the current mode.
func (w *Widget) Mode() Mode {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mode
}

// Trigger toggles between Collapsed and Editing. It is the only way the mode
// changes.
func (w *Widget) Trigger() Mode {
	w.mu.Lock()
	if w.mode == Collapsed {
		w.mode = Editing
	} else {
		w.mode = Collapsed
	}
	mode := w.mode
	w.mu.Unlock()

	if w.cfg.OnStatusChange != nil {
		w.cfg.OnStatusChange(mode)
	}
	return mode
}

// Input passes text to OnChange while editing and reports whether it did.
// While collapsed there is no field to type into, so input is dropped.
func (w *Widget) Input(text string) bool {
	w.mu.Lock()
	if w.mode != Editing {
		w.mu.Unlock()
		return false
	}
	w.text = text
	w.mu.Unlock()

	if w.cfg.OnChange != nil {
		w.cfg.OnChange(text)
	}
	return true
}

// Render writes the widget to out.
func (w *Widget) Render(out io.Writer) error {
	w.mu.Lock()
	mode, text := w.mode, w.text
	w.mu.Unlock()

	var err error
	if mode == Editing {
		_, err = fmt.Fprintf(out, "%s\n> %s\n", EditingLabel, text)
	} else {
		_, err = fmt.Fprintln(out, CollapsedLabel)
	}
	return err
}
