// Package drawer implements the wallet drawer: a panel that shows the connected
// wallet's balance and stake, refreshes them when opened and copies the address
// to the clipboard.
package drawer

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/brojonat/walletdash/service/clipboard"
	"github.com/brojonat/walletdash/service/metrics"
	"github.com/brojonat/walletdash/service/notify"
	"github.com/brojonat/walletdash/service/scope"
	"github.com/brojonat/walletdash/service/state"
	"github.com/brojonat/walletdash/service/store"
	"github.com/brojonat/walletdash/service/view"
	"github.com/fatih/color"
)

// RefreshDelay is how long the refresh indicator stays on after a refresh.
// It does not track the fetches themselves.
const RefreshDelay = 1000 * time.Millisecond

// CopyMessage is shown after the address was copied.
const CopyMessage = "Copy successful!"

// ViewName labels this view in metrics.
const ViewName = "drawer"

// Status labels for the connection indicator.
const (
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
)

// Config configures a mounted drawer.
type Config struct {
	Clipboard clipboard.Clipboard
	Notifier  notify.Notifier

	// RefreshDelay overrides how long the refresh indicator stays on.
	// Zero means RefreshDelay.
	RefreshDelay time.Duration

	// Output receives every render. Nil discards output; Last still works.
	Output  io.Writer
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Drawer is a mounted wallet drawer.
type Drawer struct {
	store     *store.Store
	scope     *scope.Scope
	clipboard clipboard.Clipboard
	notifier  notify.Notifier
	output    io.Writer
	logger    *slog.Logger
	metrics   *metrics.Metrics

	visible    *state.Value[bool]
	refreshing *state.Value[bool]

	refreshDelay time.Duration

	mu          sync.Mutex
	stopRefresh func()
	refreshGen  uint64
	last        string

	binder *view.Binder
}

// Mount binds a closed drawer to st. Timers started by the drawer belong to sc
// and stop when the drawer is unmounted.
func Mount(sc *scope.Scope, st *store.Store, cfg Config) *Drawer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	delay := cfg.RefreshDelay
	if delay <= 0 {
		delay = RefreshDelay
	}
	d := &Drawer{
		store:      st,
		scope:      sc,
		clipboard:  cfg.Clipboard,
		notifier:   cfg.Notifier,
		output:     cfg.Output,
		logger:     logger,
		metrics:    cfg.Metrics,
		visible:    state.NewValue(false),
		refreshing: state.NewValue(false),

		refreshDelay: delay,
	}
	d.binder = view.Mount(sc, d.render,
		view.SourceFunc(st.SubscribeIdentity),
		st.Balance(), st.Stake(),
		d.visible, d.refreshing,
	)
	return d
}

// Visible reports whether the drawer is open.
func (d *Drawer) Visible() bool {
	return d.visible.Get()
}

// Refreshing reports whether the refresh indicator is on.
func (d *Drawer) Refreshing() bool {
	return d.refreshing.Get()
}

// Status is the connection label of the drawer header.
func (d *Drawer) Status() string {
	if d.store.Identity().Present() {
		return StatusConnected
	}
	return StatusDisconnected
}

// Toggle opens or closes the drawer. Opening with a connected wallet refreshes
// its balance and stake; closing issues no request.
func (d *Drawer) Toggle() {
	opening := !d.visible.Get()
	if opening {
		d.refreshAll()
	}
	d.visible.Set(opening)
}

// Close closes the drawer without issuing requests.
func (d *Drawer) Close() {
	d.visible.Set(false)
}

// Refresh refetches balance and stake and turns the refresh indicator on for
// the refresh delay. Refreshing again restarts the delay.
func (d *Drawer) Refresh() {
	if d.scope.Closed() {
		return
	}
	d.refreshAll()

	d.mu.Lock()
	if d.stopRefresh != nil {
		d.stopRefresh()
		d.stopRefresh = nil
	}
	d.refreshGen++
	gen := d.refreshGen
	d.mu.Unlock()

	// The flag goes on before the timer exists, so the timer always clears it.
	d.refreshing.Set(true)

	stop := d.scope.AfterFunc(d.refreshDelay, func() {
		d.mu.Lock()
		current := gen == d.refreshGen
		if current {
			d.stopRefresh = nil
		}
		d.mu.Unlock()
		if current {
			d.refreshing.Set(false)
		}
	})

	d.mu.Lock()
	if gen == d.refreshGen {
		d.stopRefresh = stop
	} else {
		stop()
	}
	d.mu.Unlock()
}

func (d *Drawer) refreshAll() {
	id := d.store.Identity()
	if !id.Present() {
		return
	}
	d.store.RefreshBalance(id)
	d.store.RefreshStake(id)
}

// CopyWallet copies the connected address to the clipboard and acknowledges it.
// A failed copy is logged and otherwise ignored.
func (d *Drawer) CopyWallet() {
	id := d.store.Identity()
	if !id.Present() || d.clipboard == nil {
		return
	}

	err := d.clipboard.Copy(id.String())
	if d.metrics != nil {
		d.metrics.RecordClipboardCopy(err)
	}
	if err != nil {
		d.logger.Warn("failed to copy wallet address", "address", id.String(), "error", err)
		return
	}
	if d.notifier != nil {
		d.notifier.Notify(CopyMessage)
	}
}

// Forget disconnects the wallet.
func (d *Drawer) Forget() {
	d.store.ForgetWallet()
}

// Last returns the output of the most recent render.
func (d *Drawer) Last() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// Renders returns how many times the drawer rendered.
func (d *Drawer) Renders() int {
	return d.binder.Renders()
}

// Unmount stops rendering and cancels the refresh timer.
func (d *Drawer) Unmount() {
	d.scope.Close()
}

// Panel snapshots what the drawer currently shows.
func (d *Drawer) Panel() Panel {
	return Panel{
		Identity:   d.store.Identity(),
		Visible:    d.visible.Get(),
		Refreshing: d.refreshing.Get(),
		Balance:    d.store.Balance().Get(),
		Stake:      d.store.Stake().Get(),
	}
}

func (d *Drawer) render() {
	p := d.Panel()

	var buf bytes.Buffer
	if err := p.Render(&buf); err != nil {
		d.logger.Error("failed to render drawer", "error", err)
		return
	}

	d.mu.Lock()
	d.last = buf.String()
	d.mu.Unlock()

	if d.metrics != nil {
		d.metrics.RecordRender(ViewName, p.State())
	}
	if d.output != nil {
		if _, err := d.output.Write(buf.Bytes()); err != nil {
			d.logger.Warn("failed to write drawer", "error", err)
		}
	}
}

func statusColor(status string) *color.Color {
	if status == StatusConnected {
		return color.New(color.FgGreen)
	}
	return color.New(color.FgRed)
}

func statusLine(id store.Identity) string {
	status := StatusDisconnected
	if id.Present() {
		status = StatusConnected
	}
	return fmt.Sprintf("Wallet: %s", statusColor(status).Sprint(status))
}
