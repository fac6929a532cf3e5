package txview

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/brojonat/walletdash/service/remotedata"
	"github.com/brojonat/walletdash/service/store"
	"github.com/brojonat/walletdash/service/wallet"
	"github.com/olekukonko/tablewriter"
)

// Messages shown in place of the table.
const (
	AddWalletPrompt = "Add a wallet to see your transaction history."
	LoadingMessage  = "Loading transactions..."
)

// Page is everything the history page renders from.
type Page struct {
	Identity store.Identity
	Data     remotedata.RemoteData[[]wallet.TransactionRecord]
	View     ViewType
	Layout   Layout
	Query    *Query
}

// Records returns the records the page would show: filtered by type and
// query, newest first. It is empty unless the data is a Success.
func (p Page) Records() []wallet.TransactionRecord {
	return remotedata.Fold(p.Data,
		func() []wallet.TransactionRecord { return nil },
		func() []wallet.TransactionRecord { return nil },
		func(error) []wallet.TransactionRecord { return nil },
		func(records []wallet.TransactionRecord) []wallet.TransactionRecord {
			kept := FilterByType(records, p.Layout.Filter)
			return SortByDate(p.Query.Filter(kept))
		},
	)
}

// State names the branch the page renders, for metrics and logs.
func (p Page) State() string {
	if !p.Identity.Present() {
		return "no_wallet"
	}
	return remotedata.Fold(p.Data,
		func() string { return remotedata.TagNotAsked.String() },
		func() string { return remotedata.TagLoading.String() },
		func(error) string { return remotedata.TagFailure.String() },
		func([]wallet.TransactionRecord) string { return remotedata.TagSuccess.String() },
	)
}

// Render writes the page to w.
func (p Page) Render(w io.Writer) error {
	if !p.Identity.Present() {
		_, err := fmt.Fprintln(w, AddWalletPrompt)
		return err
	}

	return remotedata.Fold(p.Data,
		func() error { return nil },
		func() error {
			_, err := fmt.Fprintln(w, LoadingMessage)
			return err
		},
		func(fetchErr error) error {
			_, err := fmt.Fprintln(w, fetchErr.Error())
			return err
		},
		func([]wallet.TransactionRecord) error {
			return p.renderTable(w, p.Records())
		},
	)
}

func (p Page) renderTable(w io.Writer, records []wallet.TransactionRecord) error {
	columns := Columns(p.View, p.Layout)

	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.Title
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	if p.View == Mobile {
		table.SetRowLine(true)
	}
	for _, r := range records {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = col.Render(r)
		}
		table.Append(row)
	}
	table.Render()

	_, err := fmt.Fprintf(w, "Total: %d\n", len(records))
	return err
}

// recordJSON is the machine-readable form of one table row.
type recordJSON struct {
	wallet.TransactionRecord
	Label     string `json:"label"`
	Info      string `json:"info"`
	DetailURL string `json:"detail_url,omitempty"`
}

type pageJSON struct {
	Address string       `json:"address,omitempty"`
	State   string       `json:"state"`
	Error   string       `json:"error,omitempty"`
	Total   int          `json:"total"`
	Records []recordJSON `json:"records"`
}

// RenderJSON writes the page as one indented JSON document.
func (p Page) RenderJSON(w io.Writer) error {
	out := pageJSON{
		Address: p.Identity.String(),
		State:   p.State(),
		Records: []recordJSON{},
	}
	if p.Identity.Present() {
		out.Error = remotedata.Fold(p.Data,
			func() string { return "" },
			func() string { return "" },
			func(err error) string { return err.Error() },
			func([]wallet.TransactionRecord) string { return "" },
		)
		for _, r := range p.Records() {
			out.Records = append(out.Records, recordJSON{
				TransactionRecord: r,
				Label:             r.Type.Label(),
				Info:              r.Info(),
				DetailURL:         Detail(p.Layout.BaseURL, r).URL,
			})
		}
	}
	out.Total = len(out.Records)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode page: %w", err)
	}
	return nil
}
