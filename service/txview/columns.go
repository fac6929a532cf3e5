package txview

import (
	"fmt"
	"strings"
	"time"

	"github.com/brojonat/walletdash/service/wallet"
)

// ViewType selects a column layout. Both layouts show the same data.
type ViewType string

const (
	Desktop ViewType = "desktop"
	Mobile  ViewType = "mobile"
)

// ParseViewType validates a view type name.
func ParseViewType(s string) (ViewType, error) {
	switch ViewType(strings.ToLower(s)) {
	case Desktop, "":
		return Desktop, nil
	case Mobile:
		return Mobile, nil
	default:
		return "", fmt.Errorf("unknown view type %q (expected desktop or mobile)", s)
	}
}

// DetailIcon is drawn in the detail cell, linked or not.
const DetailIcon = "↗"

// DetailCell is the outbound reference of a record. URL is empty when the
// record has no external id, in which case only the icon is shown.
type DetailCell struct {
	Icon string
	URL  string
}

// HasLink reports whether the cell links out.
func (d DetailCell) HasLink() bool {
	return d.URL != ""
}

// String renders the cell as text: the icon followed by the link target, or
// the bare icon.
func (d DetailCell) String() string {
	if d.HasLink() {
		return d.Icon + " " + d.URL
	}
	return d.Icon
}

// Detail builds the detail cell for r. The link is baseURL + the inbound tx id
// and exists only when that id is set.
func Detail(baseURL string, r wallet.TransactionRecord) DetailCell {
	cell := DetailCell{Icon: DetailIcon}
	if r.InTxID != nil && *r.InTxID != "" {
		cell.URL = baseURL + *r.InTxID
	}
	return cell
}

// Column is one column of the history table.
type Column struct {
	Key    string
	Title  string
	Render func(wallet.TransactionRecord) string
}

// Layout holds what the columns need besides the record itself.
type Layout struct {
	BaseURL  string
	Filter   string
	Location *time.Location
}

func (l Layout) location() *time.Location {
	if l.Location == nil {
		return time.Local
	}
	return l.Location
}

func (l Layout) filterTitle() string {
	filter := l.Filter
	if filter == "" {
		filter = FilterAll
	}
	return "type: " + filter
}

// Columns returns the columns for view.
func Columns(view ViewType, layout Layout) []Column {
	if view == Mobile {
		return mobileColumns(layout)
	}
	return desktopColumns(layout)
}

func desktopColumns(layout Layout) []Column {
	return []Column{
		{
			Key:   "filter",
			Title: layout.filterTitle(),
			Render: func(r wallet.TransactionRecord) string {
				return r.Type.Label()
			},
		},
		{
			Key:   "history",
			Title: "history",
			Render: func(r wallet.TransactionRecord) string {
				return r.Info()
			},
		},
		{
			Key:   "date",
			Title: "date",
			Render: func(r wallet.TransactionRecord) string {
				return r.Date.In(layout.location()).Format("January 02, 2006 3:04:05 PM")
			},
		},
		{
			Key:   "detail",
			Title: "detail",
			Render: func(r wallet.TransactionRecord) string {
				return Detail(layout.BaseURL, r).String()
			},
		},
	}
}

func mobileColumns(layout Layout) []Column {
	return []Column{
		{
			Key:   "history",
			Title: "history (" + layout.filterTitle() + ")",
			Render: func(r wallet.TransactionRecord) string {
				lines := []string{
					r.Type.Label(),
					r.Date.In(layout.location()).Format("01/02/2006 15:04:05") + "  " + Detail(layout.BaseURL, r).String(),
				}
				if info := r.Info(); info != "" {
					lines = append(lines, info)
				}
				return strings.Join(lines, "\n")
			},
		},
	}
}
