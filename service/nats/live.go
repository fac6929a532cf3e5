package nats

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/brojonat/walletdash/service/metrics"
	"github.com/brojonat/walletdash/service/store"
)

// Live event outcomes, used as metric labels.
const (
	eventRefreshed = "refreshed"
	eventIgnored   = "ignored"
	eventInvalid   = "invalid"
)

// LiveRefresher refetches the transaction history whenever an event arrives
// for the connected wallet. It follows the store's identity: a new wallet gets
// a new subscription, a forgotten wallet gets none.
type LiveRefresher struct {
	store   *store.Store
	sub     Subscriber
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu          sync.Mutex
	ctx         context.Context
	current     store.Identity
	stop        func()
	unsubscribe func()
	closed      bool
}

// NewLiveRefresher creates a refresher. Call Start to begin following the store.
func NewLiveRefresher(st *store.Store, sub Subscriber, logger *slog.Logger, m *metrics.Metrics) *LiveRefresher {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &LiveRefresher{
		store:   st,
		sub:     sub,
		logger:  logger,
		metrics: m,
	}
}

// Start subscribes for the connected wallet, if any, and for every wallet
// connected later. ctx bounds the subscription calls.
func (l *LiveRefresher) Start(ctx context.Context) {
	l.mu.Lock()
	l.ctx = ctx
	l.mu.Unlock()

	unsubscribe := l.store.SubscribeIdentity(l.follow)

	l.mu.Lock()
	l.unsubscribe = unsubscribe
	l.mu.Unlock()

	l.follow()
}

// Current returns the wallet events are being received for.
func (l *LiveRefresher) Current() store.Identity {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

func (l *LiveRefresher) follow() {
	id := l.store.Identity()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || id == l.current {
		return
	}
	if l.stop != nil {
		l.stop()
		l.stop = nil
	}
	l.current = id
	if !id.Present() {
		l.logger.Debug("live refresh stopped")
		return
	}

	address := id.String()
	stop, err := l.sub.Subscribe(l.ctx, address, func(data []byte) {
		l.handle(address, data)
	})
	if err != nil {
		// Without events the history still refreshes on demand.
		l.logger.Warn("failed to subscribe to wallet events", "address", address, "error", err)
		return
	}
	l.stop = stop
	l.logger.Info("live refresh started", "address", address)
}

func (l *LiveRefresher) handle(address string, data []byte) {
	event, err := DecodeEvent(data)
	if err != nil {
		l.record(eventInvalid)
		l.logger.Warn("dropping malformed event", "address", address, "error", err)
		return
	}

	if l.store.Identity().String() != event.WalletAddress {
		l.record(eventIgnored)
		l.logger.Debug("ignoring event for another wallet", "wallet", event.WalletAddress)
		return
	}

	l.record(eventRefreshed)
	l.logger.Debug("new transaction, refreshing history",
		"wallet", event.WalletAddress,
		"signature", event.Signature,
	)
	l.store.RefreshTransactions()
}

func (l *LiveRefresher) record(status string) {
	if l.metrics != nil {
		l.metrics.RecordLiveEvent(status)
	}
}

// Close stops following the store and drops the current subscription.
func (l *LiveRefresher) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true
	if l.unsubscribe != nil {
		l.unsubscribe()
	}
	if l.stop != nil {
		l.stop()
		l.stop = nil
	}
	l.current = ""
}
