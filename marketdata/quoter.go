package marketdata

import (
	"fmt"
	"time"

	"github.com/hzheng/smartrade/date"
)

// lookback limits how far back a stale quote may come from.
const lookback = 30 // days

// Quotes serves latest prices out of per-symbol price histories, fetching
// from a Provider on first use. When today's price is not out yet, the most
// recent earlier close is used.
type Quotes struct {
	provider Provider
	history  map[string]*date.History[float64]
}

// NewQuotes builds the quote cache over a provider.
func NewQuotes(provider Provider) *Quotes {
	return &Quotes{provider: provider, history: make(map[string]*date.History[float64])}
}

// Quote returns the price of a compact symbol as of the last trading day.
// It implements smartrade.Quoter.
func (q *Quotes) Quote(symbol string) (float64, error) {
	day := TradingDay(date.Today())
	h, ok := q.history[symbol]
	if !ok {
		prices, err := q.provider.DailyCloses(symbol, day.Add(-lookback), day)
		if err != nil {
			return 0, err
		}
		h = &prices
		q.history[symbol] = h
	}
	if price, ok := h.ValueAsOf(day); ok {
		return price, nil
	}
	return 0, fmt.Errorf("no price for %s on or before %s", symbol, day)
}

// PriceOn returns the price of a symbol as of a specific day, falling back
// to the closest earlier close.
func (q *Quotes) PriceOn(symbol string, day date.Date) (float64, error) {
	day = TradingDay(day)
	prices, err := q.provider.DailyCloses(symbol, day.Add(-lookback), day)
	if err != nil {
		return 0, err
	}
	if price, ok := prices.ValueAsOf(day); ok {
		return price, nil
	}
	return 0, fmt.Errorf("no price for %s on or before %s", symbol, day)
}

// TradingDay clamps a day to the nearest trading day at or before it,
// moving weekends back to Friday.
func TradingDay(d date.Date) date.Date {
	switch d.Weekday() {
	case time.Saturday:
		return d.Add(-1)
	case time.Sunday:
		return d.Add(-2)
	}
	return d
}
