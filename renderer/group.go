package renderer

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/hzheng/smartrade"
)

// GroupTable prints one row per group with its accounting figures.
func GroupTable(w io.Writer, groups []*smartrade.TransactionGroup) {
	t := table(w, []string{"Ticker", "Opened", "Days", "Cost", "Profit", "ROI", "Positions"})
	for _, g := range groups {
		opened := ""
		if len(g.Chains) > 0 {
			opened = g.Chains[0].Open.Date.Format("2006-01-02")
		}
		t.Append([]string{
			g.Underlying,
			opened,
			strconv.Itoa(g.Duration),
			USD(g.Cost),
			USD(g.Profit),
			Percent(g.ROI),
			positionsCell(g.Positions),
		})
	}
	t.Render()
}

// GroupDetails writes a markdown account of one group, chain by chain.
func GroupDetails(w io.Writer, g *smartrade.TransactionGroup) {
	status := "open"
	if g.Completed() {
		status = "completed"
	}
	fmt.Fprintf(w, "## %s (%s)\n\n", g.Underlying, status)
	fmt.Fprintf(w, "- cost: %s\n- profit: %s\n- duration: %d day(s)\n", USD(g.Cost), USD(g.Profit), g.Duration)
	if g.ROI != nil {
		fmt.Fprintf(w, "- annualized ROI: %s\n", Percent(g.ROI))
	}
	fmt.Fprintln(w)
	for _, chain := range g.Chains {
		open := chain.Open
		fmt.Fprintf(w, "- **%s** %s %v x%v for %s\n",
			open.Action, open.Date.Format("2006-01-02"), open.Symbol, open.Quantity, USD(open.Amount))
		for _, tx := range chain.Closes {
			fmt.Fprintf(w, "  - %s %s x%v for %s\n",
				tx.Action, tx.Date.Format("2006-01-02"), tx.Quantity, USD(tx.Amount))
		}
	}
	fmt.Fprintln(w)
}

// PositionsTable prints net open positions grouped by underlying.
func PositionsTable(w io.Writer, positions map[string]map[string]float64) {
	t := table(w, []string{"Ticker", "Symbol", "Qty"})
	tickers := make([]string, 0, len(positions))
	for ui := range positions {
		tickers = append(tickers, ui)
	}
	sort.Strings(tickers)
	for _, ui := range tickers {
		symbols := make([]string, 0, len(positions[ui]))
		for s := range positions[ui] {
			symbols = append(symbols, s)
		}
		sort.Strings(symbols)
		for _, s := range symbols {
			t.Append([]string{ui, s, Quantity(positions[ui][s])})
		}
	}
	t.Render()
}

func positionsCell(positions map[string]float64) string {
	if len(positions) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(positions))
	for s, qty := range positions {
		parts = append(parts, fmt.Sprintf("%s:%v", s, qty))
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}
