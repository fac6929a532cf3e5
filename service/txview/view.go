// Package txview renders a wallet's transaction history. The page folds over
// the transaction cell of the store and lays records out in one of two column
// layouts.
package txview

import (
	"bytes"
	"io"
	"log/slog"
	"sync"

	"github.com/brojonat/walletdash/service/metrics"
	"github.com/brojonat/walletdash/service/remotedata"
	"github.com/brojonat/walletdash/service/scope"
	"github.com/brojonat/walletdash/service/state"
	"github.com/brojonat/walletdash/service/store"
	"github.com/brojonat/walletdash/service/view"
	"github.com/brojonat/walletdash/service/wallet"
)

// ViewName labels this view in metrics.
const ViewName = "transactions"

// Config configures a mounted history view.
type Config struct {
	BaseURL string
	View    ViewType
	Filter  string
	Query   *Query
	JSON    bool

	// Output receives every render. Nil discards output; Last still works.
	Output  io.Writer
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// View is a mounted transaction history.
type View struct {
	store  *store.Store
	cfg    Config
	logger *slog.Logger

	filter   *state.Value[string]
	viewType *state.Value[ViewType]

	mu   sync.Mutex
	last string

	binder *view.Binder
}

// Mount binds a history view to st. The transaction cell is pointed at the
// connected wallet now and on every identity change.
func Mount(sc *scope.Scope, st *store.Store, cfg Config) *View {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.View == "" {
		cfg.View = Desktop
	}
	if cfg.Filter == "" {
		cfg.Filter = FilterAll
	}

	v := &View{
		store:    st,
		cfg:      cfg,
		logger:   logger,
		filter:   state.NewValue(cfg.Filter),
		viewType: state.NewValue(cfg.View),
	}

	identity := view.SourceFunc(st.SubscribeIdentity)
	v.binder = view.Mount(sc, v.render, identity, st.Transactions(), v.filter, v.viewType)
	v.binder.Effect(identity, func() {
		st.GetTxByAddress(st.Identity())
	})
	return v
}

// Page returns the page as it would render now. Records fetched for another
// wallet than the connected one are never shown; until the cell catches up
// the page is NotAsked.
func (v *View) Page() Page {
	id := v.store.Identity()
	owner, data := v.store.Transactions().Snapshot()
	if owner != id {
		data = remotedata.NotAsked[[]wallet.TransactionRecord]()
	}
	return Page{
		Identity: id,
		Data:     data,
		View:     v.viewType.Get(),
		Layout: Layout{
			BaseURL: v.cfg.BaseURL,
			Filter:  v.filter.Get(),
		},
		Query: v.cfg.Query,
	}
}

func (v *View) render() {
	page := v.Page()

	var buf bytes.Buffer
	var err error
	if v.cfg.JSON {
		err = page.RenderJSON(&buf)
	} else {
		err = page.Render(&buf)
	}
	if err != nil {
		v.logger.Error("failed to render transactions", "error", err)
		return
	}

	v.mu.Lock()
	v.last = buf.String()
	v.mu.Unlock()

	if v.cfg.Metrics != nil {
		v.cfg.Metrics.RecordRender(ViewName, page.State())
	}
	if v.cfg.Output != nil {
		if _, err := v.cfg.Output.Write(buf.Bytes()); err != nil {
			v.logger.Warn("failed to write transactions", "error", err)
		}
	}
}

// Last returns the output of the most recent render.
func (v *View) Last() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.last
}

// SetFilter selects the type filter. Unknown values are rejected.
func (v *View) SetFilter(value string) error {
	filter, err := ParseFilter(value)
	if err != nil {
		return err
	}
	v.filter.Set(filter)
	return nil
}

// Filter returns the selected type filter.
func (v *View) Filter() string {
	return v.filter.Get()
}

// SetViewType switches the column layout.
func (v *View) SetViewType(t ViewType) {
	v.viewType.Set(t)
}

// Renders returns how many times the view rendered.
func (v *View) Renders() int {
	return v.binder.Renders()
}

// Unmount stops rendering and releases the view's subscriptions.
func (v *View) Unmount() {
	v.binder.Unmount()
}
