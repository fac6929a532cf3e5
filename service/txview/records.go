package txview

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/brojonat/walletdash/service/wallet"
	"github.com/itchyny/gojq"
)

// SortByDate returns a copy of records ordered by date, newest first. Records
// with equal dates keep their input order.
func SortByDate(records []wallet.TransactionRecord) []wallet.TransactionRecord {
	sorted := make([]wallet.TransactionRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	return sorted
}

// FilterAll is the filter value that keeps every record.
const FilterAll = "all"

// FilterOptions are the entries of the filter dropdown, in display order.
var FilterOptions = []string{
	FilterAll,
	string(wallet.EventSwap),
	string(wallet.EventDoubleSwap),
	string(wallet.EventStake),
	string(wallet.EventUnstake),
	string(wallet.EventAdd),
	string(wallet.EventRefund),
}

// ParseFilter validates a filter dropdown value. Matching is case-insensitive;
// the empty string means FilterAll.
func ParseFilter(value string) (string, error) {
	if value == "" {
		return FilterAll, nil
	}
	for _, opt := range FilterOptions {
		if strings.EqualFold(opt, value) {
			return opt, nil
		}
	}
	return "", fmt.Errorf("unknown filter %q (expected one of %s)", value, strings.Join(FilterOptions, ", "))
}

// FilterByType keeps the records whose type matches filter.
func FilterByType(records []wallet.TransactionRecord, filter string) []wallet.TransactionRecord {
	if filter == "" || filter == FilterAll {
		return records
	}
	kept := make([]wallet.TransactionRecord, 0, len(records))
	for _, r := range records {
		if string(r.Type) == filter {
			kept = append(kept, r)
		}
	}
	return kept
}

// Query is a compiled jq expression evaluated against each record's JSON form.
type Query struct {
	expr string
	code *gojq.Code
}

// CompileQuery parses and compiles a jq expression, e.g. `.in_tx_id != null`.
func CompileQuery(expr string) (*Query, error) {
	parsed, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse jq filter %q: %w", expr, err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq filter %q: %w", expr, err)
	}
	return &Query{expr: expr, code: code}, nil
}

// String returns the source expression.
func (q *Query) String() string {
	return q.expr
}

// Match reports whether the first result of the query is truthy for r.
// Evaluation errors count as no match.
func (q *Query) Match(r wallet.TransactionRecord) bool {
	data, err := json.Marshal(r)
	if err != nil {
		return false
	}
	var input interface{}
	if err := json.Unmarshal(data, &input); err != nil {
		return false
	}

	iter := q.code.Run(input)
	v, ok := iter.Next()
	if !ok {
		return false
	}
	if _, isErr := v.(error); isErr {
		return false
	}
	return isTruthy(v)
}

// Filter keeps the records the query matches. A nil query keeps everything.
func (q *Query) Filter(records []wallet.TransactionRecord) []wallet.TransactionRecord {
	if q == nil {
		return records
	}
	kept := make([]wallet.TransactionRecord, 0, len(records))
	for _, r := range records {
		if q.Match(r) {
			kept = append(kept, r)
		}
	}
	return kept
}

// isTruthy checks if a jq result value is truthy.
func isTruthy(v interface{}) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	// Everything else (numbers, strings, objects, arrays) is truthy
	return true
}
