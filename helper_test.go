package smartrade

import (
	"math"
	"testing"
	"time"
)

const testAccount = "1234"

// tx builds a valid transaction for tests. day is "2006-01-02" or
// "2006-01-02 15:04:05"; symbol is any supported encoding, empty for cash
// movements.
func tx(t *testing.T, day string, action Action, symbol string, qty, price, fee, amount float64) *Transaction {
	t.Helper()
	layout := "2006-01-02"
	if len(day) > len(layout) {
		layout = "2006-01-02 15:04:05"
	}
	at, err := time.ParseInLocation(layout, day, time.UTC)
	if err != nil {
		t.Fatalf("tx: bad day %q: %v", day, err)
	}
	var sym Symbol
	if symbol != "" {
		if sym, err = ParseSymbol(symbol); err != nil {
			t.Fatalf("tx: bad symbol %q: %v", symbol, err)
		}
	}
	tr := NewTransaction(testAccount, at, action, sym, qty, price, fee, amount)
	if tr.Validity != Valid {
		t.Fatalf("tx: %v does not validate", tr)
	}
	return tr
}

func almost(t *testing.T, what string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("%s = %v, want %v", what, got, want)
	}
}

// newTestStores returns an empty in-memory transaction and group store.
func newTestStores() (*MemStore, GroupStore) {
	s := NewMemStore()
	return s, s.Groups()
}

func mustInsert(t *testing.T, s *MemStore, txs ...*Transaction) {
	t.Helper()
	if err := s.Insert(txs...); err != nil {
		t.Fatalf("insert: %v", err)
	}
}
