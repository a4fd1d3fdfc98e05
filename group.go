package smartrade

import (
	"fmt"
	"log"
	"math"
	"strings"
	"time"
)

// Chain pairs one opening transaction with the closing transactions matched
// against it.
type Chain struct {
	Open   *Transaction
	Closes []*Transaction
}

// Residual is the quantity of the open position not yet closed.
func (c *Chain) Residual() float64 {
	opened := c.Open.Quantity
	for _, tx := range c.Closes {
		opened -= tx.Quantity
	}
	return opened
}

// TransactionGroup is a round trip: a set of related opening transactions
// and the closes matched to them, with the accounting derived from them.
type TransactionGroup struct {
	Account    string
	Underlying string
	Chains     []*Chain

	// Derived by Inventory.
	Positions map[string]float64
	Total     float64
	Cost      float64
	Profit    float64
	Duration  int
	// ROI is nil while the group still holds open positions.
	ROI *float64
}

// NewTransactionGroup starts a group from its opening transactions.
func NewTransactionGroup(opens []*Transaction) *TransactionGroup {
	g := &TransactionGroup{}
	for _, tx := range opens {
		g.Account = tx.Account
		g.Underlying = tx.Symbol.Underlying
		g.Chains = append(g.Chains, &Chain{Open: tx})
	}
	return g
}

// Completed reports whether every chain in the group is fully closed.
func (g *TransactionGroup) Completed() bool { return len(g.Positions) == 0 }

// followedBy matches closes against the group's unfilled chains, slicing
// them to fit. It returns the closes still unconsumed and whether anything
// matched.
func (g *TransactionGroup) followedBy(closes []*Transaction, lin *Lineage) ([]*Transaction, bool) {
	matched := false
	consumed := make(map[*Transaction]bool)
	for _, chain := range g.Chains {
		opened := chain.Residual()
		for _, tx := range closes {
			if opened <= Tolerance {
				break
			}
			if consumed[tx] || tx.Quantity <= Tolerance || !chain.Open.ClosedBy(tx) {
				continue
			}
			piece := tx.Slice(math.Min(opened, tx.Quantity), lin)
			if piece == nil {
				continue
			}
			if piece == tx {
				consumed[tx] = true
			}
			chain.Closes = append(chain.Closes, piece)
			opened -= piece.Quantity
			matched = true
		}
	}
	if !matched {
		return closes, false
	}
	remaining := closes[:0:0]
	for _, tx := range closes {
		if !consumed[tx] && tx.Quantity > Tolerance {
			remaining = append(remaining, tx)
		}
	}
	return remaining, true
}

// Inventory walks the chains and derives the group's open positions, cash
// total, cost basis, profit, duration and (once closed) annualized ROI.
// Open positions are valued through quoter; a nil quoter values them at 0.
func (g *TransactionGroup) Inventory(quoter Quoter) error {
	var total float64
	positions := make(map[string]float64)
	var first, last time.Time
	for _, chain := range g.Chains {
		open := chain.Open
		g.Account = open.Account
		g.Underlying = open.Symbol.Underlying
		total += open.Amount
		first, last = spanDates(first, last, open.Date)
		opened := open.Quantity
		for _, tx := range chain.Closes {
			opened -= tx.Quantity
			total += tx.Amount
			first, last = spanDates(first, last, tx.Date)
		}
		if opened < -Tolerance {
			return fmt.Errorf("chain %v overclosed by %v", open.Symbol, -opened)
		}
		if opened > Tolerance {
			key := open.Symbol.Compact()
			sign := 1.0
			if open.Action != BTO && open.Action != Split {
				sign = -1
			}
			positions[key] += opened * sign
			if almostEqual(positions[key], 0) {
				delete(positions, key)
			}
		}
	}
	g.Total = total
	g.Positions = positions
	cost, err := g.costBasis()
	if err != nil {
		return err
	}
	g.Cost = cost
	g.Profit = total + g.marketValue(quoter)
	if len(positions) > 0 {
		last = time.Now()
	}
	days := daysBetween(first, last) + 1
	g.Duration = days
	g.ROI = nil
	if len(positions) > 0 {
		return nil
	}
	roi := g.Profit / cost
	if g.Profit > 0 {
		// Annualize: week-compounded under a year, continuous above.
		if days < 365 {
			roi = math.Pow(1+roi, 52/math.Ceil(float64(days)/7)) - 1
		} else {
			roi = math.Exp(math.Log(1+roi)*365/float64(days)) - 1
		}
	}
	g.ROI = &roi
	return nil
}

func (g *TransactionGroup) marketValue(quoter Quoter) float64 {
	if quoter == nil {
		return 0
	}
	var val float64
	for symbol, qty := range g.Positions {
		price, err := quoter.Quote(symbol)
		if err != nil {
			log.Printf("no quote for %s: %v", symbol, err)
			continue
		}
		mult := 1.0
		if strings.ContainsRune(symbol, '_') {
			mult = 100
		}
		val += price * qty * mult
	}
	return val
}

// costBasis estimates the capital at risk from the shape of the opening
// legs. Stock and long options cost what was paid; naked short options are
// margined at the strike; spreads at the width between the lowest strikes
// of each side.
func (g *TransactionGroup) costBasis() (float64, error) {
	var boughtCalls, soldCalls, boughtPuts, soldPuts []float64
	first := g.Chains[0].Open
	for _, chain := range g.Chains {
		sym := chain.Open.Symbol
		if !sym.IsOption() {
			continue
		}
		bought := chain.Open.Action == BTO
		switch {
		case sym.Type != Put && bought:
			boughtCalls = append(boughtCalls, sym.Strike)
		case sym.Type != Put:
			soldCalls = append(soldCalls, sym.Strike)
		case bought:
			boughtPuts = append(boughtPuts, sym.Strike)
		default:
			soldPuts = append(soldPuts, sym.Strike)
		}
	}
	qty := first.Quantity
	var cost float64
	switch {
	case len(boughtCalls)+len(soldCalls)+len(boughtPuts)+len(soldPuts) == 0:
		cost = math.Abs(first.Amount)
	case len(boughtPuts) == 0 && len(soldPuts) == 0:
		switch {
		case len(soldCalls) == 0:
			cost = -first.Amount
		case len(boughtCalls) == 0:
			cost = minStrike(soldCalls) * 100 * qty
		default:
			cost = (minStrike(boughtCalls) - minStrike(soldCalls)) * 100 * qty
		}
	case len(boughtCalls) == 0 && len(soldCalls) == 0:
		switch {
		case len(soldPuts) == 0:
			cost = -first.Amount
		case len(boughtPuts) == 0:
			cost = minStrike(soldPuts) * 100 * qty
		default:
			cost = (minStrike(soldPuts) - minStrike(boughtPuts)) * 100 * qty
		}
	default:
		// both sides present: value the put wing
		cost = (minStrike(soldPuts) - minStrike(boughtPuts)) * 100 * qty
	}
	if cost <= 0 {
		return 0, fmt.Errorf("group %s/%s: non-positive cost basis %v", g.Account, g.Underlying, cost)
	}
	return cost, nil
}

func minStrike(strikes []float64) float64 {
	if len(strikes) == 0 {
		return 0
	}
	m := strikes[0]
	for _, s := range strikes[1:] {
		m = math.Min(m, s)
	}
	return m
}

// ComputeTotal sums cash totals and profits over groups and accumulates the
// net open positions per underlying, dropping those that cancel out.
func ComputeTotal(groups []*TransactionGroup) (total, profit float64, positions map[string]map[string]float64) {
	positions = make(map[string]map[string]float64)
	for _, g := range groups {
		total += g.Total
		profit += g.Profit
		byUI := positions[g.Underlying]
		if byUI == nil {
			byUI = make(map[string]float64)
			positions[g.Underlying] = byUI
		}
		for symbol, qty := range g.Positions {
			if next := byUI[symbol] + qty; almostEqual(next, 0) {
				delete(byUI, symbol)
			} else {
				byUI[symbol] = next
			}
		}
		if len(byUI) == 0 {
			delete(positions, g.Underlying)
		}
	}
	return total, profit, positions
}

func spanDates(first, last, d time.Time) (time.Time, time.Time) {
	if first.IsZero() || d.Before(first) {
		first = d
	}
	if last.IsZero() || d.After(last) {
		last = d
	}
	return first, last
}

func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}
