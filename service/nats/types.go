package nats

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	// StreamName is the JetStream stream the indexer publishes transactions to.
	StreamName = "TRANSACTIONS"

	// SubjectPrefix prefixes the wallet address in every event subject.
	SubjectPrefix = "txns."
)

// Subject returns the subject events for address are published on.
func Subject(address string) string {
	return SubjectPrefix + address
}

// TransactionEvent is a new transaction announced on "txns.{wallet_address}".
// Only WalletAddress is needed to trigger a refresh; the rest is logged.
type TransactionEvent struct {
	Signature     string `json:"signature"`
	WalletAddress string `json:"wallet_address"`

	Amount    int64  `json:"amount"`
	TokenType string `json:"token_type"`
	Memo      string `json:"memo,omitempty"`

	BlockTime          time.Time `json:"block_time"`
	ConfirmationStatus string    `json:"confirmation_status"`
	PublishedAt        time.Time `json:"published_at"`
}

// DecodeEvent parses an event payload.
func DecodeEvent(data []byte) (*TransactionEvent, error) {
	var event TransactionEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction event: %w", err)
	}
	if event.WalletAddress == "" {
		return nil, fmt.Errorf("transaction event %q has no wallet address", event.Signature)
	}
	return &event, nil
}
