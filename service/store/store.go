package store

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/brojonat/walletdash/service/metrics"
	"github.com/brojonat/walletdash/service/state"
	"github.com/brojonat/walletdash/service/wallet"
)

// Cell names, also used as metrics labels.
const (
	CellTransactions = "transactions"
	CellBalance      = "balance"
	CellStake        = "stake"
)

// Source fetches the remote resources a wallet dashboard displays.
type Source interface {
	// Transactions returns the transaction history of address.
	Transactions(ctx context.Context, address string) ([]wallet.TransactionRecord, error)

	// Balance returns the coins held by address.
	Balance(ctx context.Context, address string) (*wallet.Balance, error)

	// Stake returns the pool positions held by address.
	Stake(ctx context.Context, address string) (*wallet.Stake, error)
}

// Options configures a Store.
type Options struct {
	FetchTimeout time.Duration
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
}

// Store is the dashboard state shared by views: the connected wallet and one
// cell per remote resource. Views read it and dispatch actions through it.
type Store struct {
	identity *state.Value[Identity]

	txs     *Dispatcher[[]wallet.TransactionRecord]
	balance *Dispatcher[*wallet.Balance]
	stake   *Dispatcher[*wallet.Stake]

	logger *slog.Logger
}

// New returns a store with no wallet connected and every cell NotAsked.
func New(src Source, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	dopts := DispatcherOptions{
		Timeout: opts.FetchTimeout,
		Logger:  logger,
		Metrics: opts.Metrics,
	}

	return &Store{
		identity: state.NewValue[Identity](""),
		txs: NewDispatcher(NewCell[[]wallet.TransactionRecord](CellTransactions),
			func(ctx context.Context, id Identity) ([]wallet.TransactionRecord, error) {
				return src.Transactions(ctx, id.String())
			}, dopts),
		balance: NewDispatcher(NewCell[*wallet.Balance](CellBalance),
			func(ctx context.Context, id Identity) (*wallet.Balance, error) {
				return src.Balance(ctx, id.String())
			}, dopts),
		stake: NewDispatcher(NewCell[*wallet.Stake](CellStake),
			func(ctx context.Context, id Identity) (*wallet.Stake, error) {
				return src.Stake(ctx, id.String())
			}, dopts),
		logger: logger,
	}
}

// Identity returns the connected wallet, or the absent identity.
func (s *Store) Identity() Identity {
	return s.identity.Get()
}

// SubscribeIdentity registers fn to run whenever the connected wallet changes.
func (s *Store) SubscribeIdentity(fn func()) func() {
	return s.identity.Subscribe(fn)
}

// Transactions returns the transaction history cell.
func (s *Store) Transactions() *Cell[[]wallet.TransactionRecord] { return s.txs.Cell() }

// Balance returns the balance cell.
func (s *Store) Balance() *Cell[*wallet.Balance] { return s.balance.Cell() }

// Stake returns the stake cell.
func (s *Store) Stake() *Cell[*wallet.Stake] { return s.stake.Cell() }

// Connect makes id the connected wallet. Balance and stake data belonging to
// another wallet is cleared; nothing is fetched until a view asks for it.
func (s *Store) Connect(id Identity) {
	if !id.Present() {
		s.ForgetWallet()
		return
	}
	s.balance.Track(id)
	s.stake.Track(id)
	if s.identity.Set(id) {
		s.logger.Info("wallet connected", "address", id.String())
	}
}

// ForgetWallet disconnects the wallet and clears every cell to NotAsked.
func (s *Store) ForgetWallet() {
	s.txs.SetIdentity("")
	s.balance.Track("")
	s.stake.Track("")
	if s.identity.Set("") {
		s.logger.Info("wallet forgotten")
	}
}

// GetTxByAddress binds the transaction cell to id, fetching on identity edges only.
func (s *Store) GetTxByAddress(id Identity) {
	s.txs.SetIdentity(id)
}

// RefreshTransactions refetches the transaction history of the connected wallet.
func (s *Store) RefreshTransactions() {
	s.txs.Refresh(s.Identity())
}

// RefreshBalance fetches the balance of id.
func (s *Store) RefreshBalance(id Identity) {
	s.balance.Refresh(id)
}

// RefreshStake fetches the stake of id.
func (s *Store) RefreshStake(id Identity) {
	s.stake.Refresh(id)
}

// Wait blocks until no fetch is outstanding on any cell.
func (s *Store) Wait() {
	s.txs.Wait()
	s.balance.Wait()
	s.stake.Wait()
}

// Close cancels all outstanding fetches.
func (s *Store) Close() {
	s.txs.Close()
	s.balance.Close()
	s.stake.Close()
}
