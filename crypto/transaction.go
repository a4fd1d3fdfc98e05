// Package crypto tracks cryptocurrency trades and computes realized profit
// under the lot matching methods accepted for tax reporting.
package crypto

import (
	"fmt"
	"time"
)

// tolerance below which crypto quantities count as zero. Coin amounts carry
// many more decimals than share counts.
const tolerance = 1e-8

// Action is the kind of a crypto transaction. Signs follow the cash flow of
// a sale.
type Action int

const (
	Buy      Action = -1
	Transfer Action = 0
	Sell     Action = 1
)

func (a Action) String() string {
	switch a {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	case Transfer:
		return "TRANSFER"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Transaction is one crypto trade or transfer. Quantity is signed: positive
// acquires coin, negative disposes of it. Amount is the signed USD cash
// flow including fees.
type Transaction struct {
	Date     time.Time
	Symbol   string
	Action   Action
	Quantity float64
	Price    float64
	Fee      float64
	Amount   float64
}

// Slice consumes qty coins from the lot, scaling fee and amount down pro
// rata. When qty takes (nearly) the whole lot, the lot is zeroed and Slice
// reports false.
func (t *Transaction) Slice(qty float64) bool {
	if t.Quantity-qty <= tolerance {
		t.Quantity = 0
		t.Amount = 0
		return false
	}
	ratio := 1 - qty/t.Quantity
	t.Fee *= ratio
	t.Amount *= ratio
	t.Quantity -= qty
	return true
}

func (t *Transaction) String() string {
	return fmt.Sprintf("%s %s %s qty=%v price=%.4f fee=%.2f amount=%v",
		t.Date.Format("2006-01-02 15:04:05"), t.Action, t.Symbol,
		t.Quantity, t.Price, t.Fee, t.Amount)
}
