package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/brojonat/walletdash/service/addressinput"
	"github.com/brojonat/walletdash/service/clipboard"
	"github.com/brojonat/walletdash/service/drawer"
	"github.com/brojonat/walletdash/service/metrics"
	"github.com/brojonat/walletdash/service/notify"
	"github.com/brojonat/walletdash/service/scope"
	"github.com/brojonat/walletdash/service/solana"
	"github.com/brojonat/walletdash/service/store"
	"github.com/brojonat/walletdash/service/txview"
)

const dashboardHelp = `Commands:
  connect <address>   connect a wallet
  forget              disconnect the wallet
  toggle              open or close the wallet drawer
  open | close        open or close the wallet drawer
  refresh             refresh balance and stake
  reload              refetch the transaction history
  copy                copy the wallet address
  view <desktop|mobile>
  filter <type>       all, swap, doubleSwap, stake, unstake, add, refund
  recipient           show or hide the recipient address field
  type <text>         enter a recipient address
  show                print the current screen
  help
  quit
`

// syncWriter serialises writes from views that render on different goroutines.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

type dashboardConfig struct {
	BaseURL   string
	View      txview.ViewType
	Clipboard clipboard.Clipboard
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
}

// dashboard mounts the history view, the wallet drawer and the recipient field
// on one store and drives them from text commands.
type dashboard struct {
	store     *store.Store
	out       io.Writer
	logger    *slog.Logger
	scope     *scope.Scope
	txs       *txview.View
	drawer    *drawer.Drawer
	recipient *addressinput.Widget
}

func newDashboard(st *store.Store, out io.Writer, cfg dashboardConfig) *dashboard {
	w := &syncWriter{w: out}
	sc := scope.New(nil)
	validator := solana.Validator{}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	d := &dashboard{store: st, out: w, logger: logger, scope: sc}
	d.txs = txview.Mount(sc, st, txview.Config{
		BaseURL: cfg.BaseURL,
		View:    cfg.View,
		Output:  w,
		Logger:  cfg.Logger,
		Metrics: cfg.Metrics,
	})
	d.drawer = drawer.Mount(sc, st, drawer.Config{
		Clipboard: cfg.Clipboard,
		Notifier:  notify.NewTerminal(w),
		Output:    w,
		Logger:    cfg.Logger,
		Metrics:   cfg.Metrics,
	})
	d.recipient = addressinput.New(addressinput.Config{
		OnChange: func(text string) {
			if _, err := fmt.Fprintln(w, validator.Feedback(text)); err != nil {
				logger.Warn("failed to write recipient feedback", "error", err)
			}
		},
		OnStatusChange: func(addressinput.Mode) {
			if err := d.recipient.Render(w); err != nil {
				logger.Warn("failed to write recipient field", "error", err)
			}
		},
	})
	return d
}

// exec runs one command line and reports whether the session should end.
func (d *dashboard) exec(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := fields[0], fields[1:]
	arg := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), cmd))

	switch cmd {
	case "connect":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: connect <address>")
		}
		d.store.Connect(store.Identity(args[0]))
	case "forget":
		d.drawer.Forget()
	case "toggle":
		d.drawer.Toggle()
	case "open":
		if !d.drawer.Visible() {
			d.drawer.Toggle()
		}
	case "close":
		d.drawer.Close()
	case "refresh":
		d.drawer.Refresh()
	case "reload":
		d.store.RefreshTransactions()
	case "copy":
		d.drawer.CopyWallet()
	case "view":
		viewType, err := txview.ParseViewType(arg)
		if err != nil {
			return false, err
		}
		d.txs.SetViewType(viewType)
	case "filter":
		if err := d.txs.SetFilter(arg); err != nil {
			return false, err
		}
	case "recipient":
		d.recipient.Trigger()
	case "type":
		if !d.recipient.Input(arg) {
			return false, fmt.Errorf("recipient field is hidden, run 'recipient' first")
		}
	case "show":
		if err := d.show(); err != nil {
			return false, err
		}
	case "help":
		if _, err := fmt.Fprint(d.out, dashboardHelp); err != nil {
			return false, fmt.Errorf("failed to write help: %w", err)
		}
	case "quit", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q, run 'help'", cmd)
	}
	return false, nil
}

func (d *dashboard) show() error {
	var b strings.Builder
	if err := d.recipient.Render(&b); err != nil {
		return fmt.Errorf("failed to render recipient field: %w", err)
	}
	b.WriteString(d.drawer.Last())
	b.WriteString(d.txs.Last())
	if _, err := io.WriteString(d.out, b.String()); err != nil {
		d.logger.Warn("failed to write dashboard", "error", err)
		return fmt.Errorf("failed to write dashboard: %w", err)
	}
	return nil
}

// Close unmounts every view.
func (d *dashboard) Close() {
	d.scope.Close()
}
