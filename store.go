package smartrade

import (
	"sort"
	"time"
)

// TriFilter narrows a query on a boolean or tri-state property.
type TriFilter int

const (
	// FilterAny leaves the property unconstrained.
	FilterAny TriFilter = iota
	// FilterYes keeps rows where the property holds.
	FilterYes
	// FilterNo keeps rows where the property does not hold. For tri-state
	// properties like Grouped this includes the unset state.
	FilterNo
	// FilterUnset keeps rows where a tri-state property was never set,
	// e.g. transactions that no assembly run has touched.
	FilterUnset
)

func (f TriFilter) match(b bool) bool {
	switch f {
	case FilterYes:
		return b
	case FilterNo:
		return !b
	}
	return true
}

// TxFilter selects and orders transactions in a TransactionStore query.
// Zero-valued fields leave their dimension unconstrained.
type TxFilter struct {
	Account string
	Ticker  string
	Actions []Action
	// From/To bound the transaction timestamp, inclusive.
	From, To time.Time
	// Dates keeps only transactions at exactly one of these timestamps;
	// ExcludeDates drops them instead.
	Dates        []time.Time
	ExcludeDates []time.Time
	// Validity of nil matches any; otherwise exact.
	Validity  *Validity
	Effective TriFilter
	Original  TriFilter
	// Grouped is tri-state on the stored row: FilterNo matches rows that
	// are ungrouped or not yet assembled.
	Grouped    TriFilter
	Descending bool
}

// Matches reports whether tx passes every constraint of the filter.
func (f TxFilter) Matches(tx *Transaction) bool {
	if f.Account != "" && tx.Account != f.Account {
		return false
	}
	if f.Ticker != "" && tx.Symbol.Underlying != f.Ticker {
		return false
	}
	if len(f.Actions) > 0 && !containsAction(f.Actions, tx.Action) {
		return false
	}
	if !f.From.IsZero() && tx.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && tx.Date.After(f.To) {
		return false
	}
	if len(f.Dates) > 0 && !containsDate(f.Dates, tx.Date) {
		return false
	}
	if containsDate(f.ExcludeDates, tx.Date) {
		return false
	}
	if f.Validity != nil && tx.Validity != *f.Validity {
		return false
	}
	if !f.Effective.match(tx.IsEffective()) {
		return false
	}
	if !f.Original.match(tx.IsOriginal()) {
		return false
	}
	switch f.Grouped {
	case FilterYes:
		if tx.Grouped == nil || !*tx.Grouped {
			return false
		}
	case FilterNo:
		if tx.Grouped != nil && *tx.Grouped {
			return false
		}
	case FilterUnset:
		if tx.Grouped != nil {
			return false
		}
	}
	return true
}

func containsAction(actions []Action, a Action) bool {
	for _, x := range actions {
		if x == a {
			return true
		}
	}
	return false
}

func containsDate(dates []time.Time, d time.Time) bool {
	for _, x := range dates {
		if x.Equal(d) {
			return true
		}
	}
	return false
}

// SortTransactions orders txs by date, then action name, expiration, strike
// and instrument type name, matching the order assembly relies on.
func SortTransactions(txs []*Transaction, descending bool) {
	sort.SliceStable(txs, func(i, j int) bool {
		c := compareTx(txs[i], txs[j])
		if descending {
			return c > 0
		}
		return c < 0
	})
}

func compareTx(a, b *Transaction) int {
	if !a.Date.Equal(b.Date) {
		if a.Date.Before(b.Date) {
			return -1
		}
		return 1
	}
	if c := compareString(a.Action.String(), b.Action.String()); c != 0 {
		return c
	}
	ae, be := a.Symbol.Expiration, b.Symbol.Expiration
	if ae != be {
		if ae.Before(be) {
			return -1
		}
		return 1
	}
	if a.Symbol.Strike != b.Symbol.Strike {
		if a.Symbol.Strike < b.Symbol.Strike {
			return -1
		}
		return 1
	}
	return compareString(a.Symbol.Type.String(), b.Symbol.Type.String())
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// TransactionStore persists transactions, originals and synthetics alike.
// Query returns independent copies ordered per the filter.
type TransactionStore interface {
	Query(f TxFilter) ([]*Transaction, error)
	Insert(txs ...*Transaction) error
	// UpdateLineage applies lineage patches to stored rows by ID.
	UpdateLineage(patches []LineagePatch) error
}

// GroupStore persists assembled transaction groups.
type GroupStore interface {
	Insert(groups ...*TransactionGroup) error
	// Query returns the groups of an account, optionally narrowed to one
	// underlying when ticker is non-empty.
	Query(account, ticker string) ([]*TransactionGroup, error)
	// DeleteIncomplete removes the incomplete groups of a ticker so an
	// assembly run can replace them. It returns how many were removed.
	DeleteIncomplete(account, ticker string) (int, error)
}
