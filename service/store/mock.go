package store

import (
	"context"
	"sync"

	"github.com/brojonat/walletdash/service/wallet"
)

// MockSource is a mock implementation of Source for testing.
type MockSource struct {
	mu sync.Mutex

	transactions map[string][]wallet.TransactionRecord
	balances     map[string]*wallet.Balance
	stakes       map[string]*wallet.Stake
	err          error

	calls []MockCall
	gates map[string]chan struct{}
}

// MockCall records one Source call.
type MockCall struct {
	Method  string
	Address string
}

// NewMockSource creates a new mock source for testing.
func NewMockSource() *MockSource {
	return &MockSource{
		transactions: make(map[string][]wallet.TransactionRecord),
		balances:     make(map[string]*wallet.Balance),
		stakes:       make(map[string]*wallet.Stake),
		gates:        make(map[string]chan struct{}),
	}
}

// SetTransactions configures the history returned for address.
func (m *MockSource) SetTransactions(address string, records []wallet.TransactionRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[address] = records
}

// SetBalance configures the balance returned for address.
func (m *MockSource) SetBalance(address string, balance *wallet.Balance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[address] = balance
}

// SetStake configures the stake returned for address.
func (m *MockSource) SetStake(address string, stake *wallet.Stake) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stakes[address] = stake
}

// SetError makes every call return err.
func (m *MockSource) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Hold makes calls for address block until Release is called. Blocked calls
// ignore context cancellation, like a response already on the wire.
func (m *MockSource) Hold(address string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gates[address] = make(chan struct{})
}

// Release unblocks calls for address held by Hold.
func (m *MockSource) Release(address string) {
	m.mu.Lock()
	gate, ok := m.gates[address]
	delete(m.gates, address)
	m.mu.Unlock()

	if ok {
		close(gate)
	}
}

// Calls returns every recorded call.
func (m *MockSource) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]MockCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CallCount returns how many calls were made to method.
func (m *MockSource) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, c := range m.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (m *MockSource) enter(method, address string) error {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Method: method, Address: address})
	gate := m.gates[address]
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Transactions implements Source.
func (m *MockSource) Transactions(ctx context.Context, address string) ([]wallet.TransactionRecord, error) {
	if err := m.enter("Transactions", address); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transactions[address], nil
}

// Balance implements Source.
func (m *MockSource) Balance(ctx context.Context, address string) (*wallet.Balance, error) {
	if err := m.enter("Balance", address); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.balances[address]; ok {
		return b, nil
	}
	return &wallet.Balance{Address: address}, nil
}

// Stake implements Source.
func (m *MockSource) Stake(ctx context.Context, address string) (*wallet.Stake, error) {
	if err := m.enter("Stake", address); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stakes[address]; ok {
		return s, nil
	}
	return &wallet.Stake{Address: address}, nil
}
