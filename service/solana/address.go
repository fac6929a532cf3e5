// Package solana validates wallet addresses typed into the recipient widget.
package solana

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// ParseAddress decodes a base58 wallet address.
func ParseAddress(s string) (solana.PublicKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return solana.PublicKey{}, fmt.Errorf("address is empty")
	}
	pk, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid address %q: %w", s, err)
	}
	if pk.IsZero() {
		return solana.PublicKey{}, fmt.Errorf("invalid address %q: zero key", s)
	}
	return pk, nil
}

// Validator checks recipient addresses as they are typed.
type Validator struct{}

// Validate returns nil if text is a usable address.
func (Validator) Validate(text string) error {
	_, err := ParseAddress(text)
	return err
}

// Feedback is the status line shown under the recipient field.
func (v Validator) Feedback(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if err := v.Validate(text); err != nil {
		return "✗ " + err.Error()
	}
	return "✓ valid address"
}
