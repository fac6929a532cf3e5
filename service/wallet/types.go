package wallet

import (
	"fmt"
	"strings"
	"time"
)

// EventType classifies a transaction in the history view.
type EventType string

const (
	EventSwap       EventType = "swap"
	EventStake      EventType = "stake"
	EventUnstake    EventType = "unstake"
	EventAdd        EventType = "add"
	EventRefund     EventType = "refund"
	EventDoubleSwap EventType = "doubleSwap"
)

// Label is the short classification shown in the filter column.
func (e EventType) Label() string {
	switch e {
	case EventSwap:
		return "SWAP"
	case EventStake:
		return "STAKE"
	case EventUnstake:
		return "WITHDRAW"
	case EventAdd:
		return "ADD"
	case EventRefund:
		return "REFUND"
	case EventDoubleSwap:
		return "DOUBLE SWAP"
	case "":
		return "UNKNOWN"
	default:
		return strings.ToUpper(string(e))
	}
}

// Coin is an amount of one asset, in base units with 8 decimals.
type Coin struct {
	Asset  string `json:"asset"`
	Amount int64  `json:"amount"`
}

// String formats the coin as "1.50000000 BNB".
func (c Coin) String() string {
	sign := ""
	amount := c.Amount
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%08d %s", sign, amount/1e8, amount%1e8, c.Asset)
}

// TransactionRecord is one entry of a wallet's transaction history.
// Records are immutable once fetched.
type TransactionRecord struct {
	Date   time.Time `json:"date"`
	Type   EventType `json:"type"`
	Status string    `json:"status"`
	Pool   string    `json:"pool,omitempty"`

	// InTxID is the external reference of the inbound transaction, nil when the
	// event has none (e.g. refunds generated by the protocol).
	InTxID *string `json:"in_tx_id,omitempty"`

	In  []Coin `json:"in,omitempty"`
	Out []Coin `json:"out,omitempty"`
}

// Info summarises the coins that moved, e.g. "1.00000000 BNB -> 100.00000000 RUNE".
func (r TransactionRecord) Info() string {
	in := joinCoins(r.In)
	out := joinCoins(r.Out)
	switch {
	case in != "" && out != "":
		return in + " -> " + out
	case in != "":
		return in
	default:
		return out
	}
}

func joinCoins(coins []Coin) string {
	parts := make([]string, 0, len(coins))
	for _, c := range coins {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, ", ")
}

// Balance is the set of coins a wallet holds.
type Balance struct {
	Address string `json:"address"`
	Coins   []Coin `json:"coins"`
}

// StakePosition is a wallet's share of one pool.
type StakePosition struct {
	Pool  string `json:"pool"`
	Units int64  `json:"units"`
}

// Stake is every pool position held by a wallet.
type Stake struct {
	Address   string          `json:"address"`
	Positions []StakePosition `json:"positions"`
}
