package drawer

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/brojonat/walletdash/service/remotedata"
	"github.com/brojonat/walletdash/service/store"
	"github.com/brojonat/walletdash/service/wallet"
)

// Panel is what the drawer renders from.
type Panel struct {
	Identity   store.Identity
	Visible    bool
	Refreshing bool
	Balance    remotedata.RemoteData[*wallet.Balance]
	Stake      remotedata.RemoteData[*wallet.Stake]
}

// State names what the drawer shows, for metrics.
func (p Panel) State() string {
	if !p.Visible {
		return "closed"
	}
	if !p.Identity.Present() {
		return "no_wallet"
	}
	return "open"
}

// Render writes the drawer to w. A closed drawer renders only its status line.
func (p Panel) Render(w io.Writer) error {
	var b strings.Builder
	b.WriteString(statusLine(p.Identity))
	if p.Refreshing {
		b.WriteString("  (refreshing)")
	}
	b.WriteString("\n")

	if p.Visible {
		if p.Identity.Present() {
			fmt.Fprintf(&b, "Address: %s\n", p.Identity)
			b.WriteString("Balance:\n")
			b.WriteString(balanceSection(p.Balance))
			b.WriteString("Stake:\n")
			b.WriteString(stakeSection(p.Stake))
		} else {
			b.WriteString("No wallet connected.\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func balanceSection(rd remotedata.RemoteData[*wallet.Balance]) string {
	return remotedata.Fold(rd,
		func() string { return "" },
		func() string { return "  loading...\n" },
		func(err error) string { return "  " + err.Error() + "\n" },
		func(balance *wallet.Balance) string {
			if balance == nil || len(balance.Coins) == 0 {
				return "  no coins\n"
			}
			var b strings.Builder
			for _, c := range balance.Coins {
				fmt.Fprintf(&b, "  %s\n", c)
			}
			return b.String()
		},
	)
}

func stakeSection(rd remotedata.RemoteData[*wallet.Stake]) string {
	return remotedata.Fold(rd,
		func() string { return "" },
		func() string { return "  loading...\n" },
		func(err error) string { return "  " + err.Error() + "\n" },
		func(stake *wallet.Stake) string {
			if stake == nil || len(stake.Positions) == 0 {
				return "  no stakes\n"
			}
			var b strings.Builder
			for _, pos := range stake.Positions {
				fmt.Fprintf(&b, "  %s: %d units\n", pos.Pool, pos.Units)
			}
			return b.String()
		},
	)
}

type panelJSON struct {
	Address    string       `json:"address"`
	Status     string       `json:"status"`
	Refreshing bool         `json:"refreshing"`
	Balance    *sectionJSON `json:"balance,omitempty"`
	Stake      *sectionJSON `json:"stake,omitempty"`
}

type sectionJSON struct {
	State string `json:"state"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

func section[V any](rd remotedata.RemoteData[V]) *sectionJSON {
	return remotedata.Fold(rd,
		func() *sectionJSON { return &sectionJSON{State: remotedata.TagNotAsked.String()} },
		func() *sectionJSON { return &sectionJSON{State: remotedata.TagLoading.String()} },
		func(err error) *sectionJSON {
			return &sectionJSON{State: remotedata.TagFailure.String(), Error: err.Error()}
		},
		func(v V) *sectionJSON { return &sectionJSON{State: remotedata.TagSuccess.String(), Data: v} },
	)
}

// RenderJSON writes the panel as one indented JSON document. Balance and stake
// are included only while the drawer is open with a wallet.
func (p Panel) RenderJSON(w io.Writer) error {
	out := panelJSON{
		Address:    p.Identity.String(),
		Status:     StatusDisconnected,
		Refreshing: p.Refreshing,
	}
	if p.Identity.Present() {
		out.Status = StatusConnected
		if p.Visible {
			out.Balance = section(p.Balance)
			out.Stake = section(p.Stake)
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode drawer: %w", err)
	}
	return nil
}
