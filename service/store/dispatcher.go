package store

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/brojonat/walletdash/service/metrics"
	"github.com/brojonat/walletdash/service/remotedata"
)

// FetchFunc loads the resource for id. It is the external fetch collaborator.
type FetchFunc[V any] func(ctx context.Context, id Identity) (V, error)

const (
	triggerIdentity = "identity"
	triggerRefresh  = "refresh"
)

// DispatcherOptions configures a Dispatcher. The zero value is usable.
type DispatcherOptions struct {
	// Timeout bounds each fetch. Zero means no timeout.
	Timeout time.Duration
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Dispatcher is the only writer of a Cell. It issues at most one outstanding
// fetch, triggered on identity edges or explicit refreshes, and makes sure the
// most recently issued fetch is the one whose outcome lands in the cell.
type Dispatcher[V any] struct {
	cell    *Cell[V]
	fetch   FetchFunc[V]
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics

	ctx       context.Context
	cancelAll context.CancelFunc

	mu       sync.Mutex
	current  Identity
	gen      uint64
	inflight context.CancelFunc
	closed   bool
	wg       sync.WaitGroup
}

// NewDispatcher returns a dispatcher that writes fetch results into cell.
func NewDispatcher[V any](cell *Cell[V], fetch FetchFunc[V], opts DispatcherOptions) *Dispatcher[V] {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher[V]{
		cell:      cell,
		fetch:     fetch,
		timeout:   opts.Timeout,
		logger:    logger.With("cell", cell.Name()),
		metrics:   opts.Metrics,
		ctx:       ctx,
		cancelAll: cancel,
	}
}

// Cell returns the cell this dispatcher writes.
func (d *Dispatcher[V]) Cell() *Cell[V] {
	return d.cell
}

// Current returns the identity the dispatcher last observed.
func (d *Dispatcher[V]) Current() Identity {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// SetIdentity reports the identity the cell should be bound to. A change to a
// different present identity issues exactly one fetch. A change to the absent
// identity clears the cell to NotAsked without a request. Repeating the
// current identity does nothing, so callers may invoke it on every render.
func (d *Dispatcher[V]) SetIdentity(id Identity) {
	d.mu.Lock()
	if d.closed || id == d.current {
		d.mu.Unlock()
		return
	}
	d.current = id

	if !id.Present() {
		gen := d.nextGenLocked()
		d.mu.Unlock()
		d.reset(gen)
		return
	}

	d.startLocked(id, triggerIdentity)
}

// Track records id as the current identity without fetching. If the cell holds
// data for another identity it is cleared, so it never shows a stale wallet.
func (d *Dispatcher[V]) Track(id Identity) {
	d.mu.Lock()
	if d.closed || id == d.current {
		d.mu.Unlock()
		return
	}
	d.current = id

	if d.cell.Identity() == id && id.Present() {
		d.mu.Unlock()
		return
	}
	gen := d.nextGenLocked()
	d.mu.Unlock()
	d.reset(gen)
}

// Refresh fetches the resource for id unconditionally, superseding any
// outstanding fetch. Refreshing the absent identity does nothing.
func (d *Dispatcher[V]) Refresh(id Identity) {
	if !id.Present() {
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.current = id
	d.startLocked(id, triggerRefresh)
}

// nextGenLocked opens a new generation and cancels the outstanding fetch, if any.
func (d *Dispatcher[V]) nextGenLocked() uint64 {
	d.gen++
	if d.inflight != nil {
		d.inflight()
		d.inflight = nil
	}
	return d.gen
}

func (d *Dispatcher[V]) reset(gen uint64) {
	if !remotedata.IsNotAsked(d.cell.Get()) || d.cell.Identity().Present() {
		if d.metrics != nil {
			d.metrics.RecordCellReset(d.cell.Name())
		}
		d.logger.Debug("cell reset")
	}
	d.cell.begin(gen, "", remotedata.NotAsked[V]())
}

// startLocked must be called with d.mu held; it releases it.
func (d *Dispatcher[V]) startLocked(id Identity, trigger string) {
	gen := d.nextGenLocked()

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if d.timeout > 0 {
		ctx, cancel = context.WithTimeout(d.ctx, d.timeout)
	} else {
		ctx, cancel = context.WithCancel(d.ctx)
	}
	d.inflight = cancel
	d.wg.Add(1)
	d.mu.Unlock()

	if !d.cell.begin(gen, id, remotedata.Loading[V]()) {
		// A newer generation overtook us before we could mark the cell.
		cancel()
		d.wg.Done()
		return
	}

	if d.metrics != nil {
		d.metrics.RecordFetchStarted(d.cell.Name(), trigger)
	}
	d.logger.Debug("fetch started", "identity", id.String(), "trigger", trigger, "generation", gen)

	go d.run(ctx, cancel, gen, id)
}

func (d *Dispatcher[V]) run(ctx context.Context, cancel context.CancelFunc, gen uint64, id Identity) {
	defer d.wg.Done()
	defer cancel()

	start := time.Now()
	value, err := d.fetch(ctx, id)
	if d.ctx.Err() != nil {
		// Closed while fetching; leave the cell as it is.
		return
	}

	var outcome remotedata.RemoteData[V]
	if err != nil {
		outcome = remotedata.Failure[V](err)
	} else {
		outcome = remotedata.Success(value)
	}

	label := outcome.Tag().String()
	if !d.cell.settle(gen, outcome) {
		label = "stale"
		d.logger.Debug("discarded stale fetch result", "identity", id.String(), "generation", gen)
	} else if err != nil {
		d.logger.Warn("fetch failed", "identity", id.String(), "error", err)
	} else {
		d.logger.Debug("fetch succeeded", "identity", id.String())
	}

	if d.metrics != nil {
		d.metrics.RecordFetchCompleted(d.cell.Name(), label, time.Since(start).Seconds())
	}
}

// Wait blocks until no fetch is outstanding.
func (d *Dispatcher[V]) Wait() {
	d.wg.Wait()
}

// Close cancels outstanding fetches, waits for them to return and stops
// accepting new work. The cell keeps its last state.
func (d *Dispatcher[V]) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	d.cancelAll()
	d.wg.Wait()
}
