package renderer

import (
	"fmt"
	"io"
	"time"

	"github.com/hzheng/smartrade/crypto"
)

// Summary is an account overview over one period.
type Summary struct {
	Account     string
	Start, End  time.Time
	Cash        float64
	Investment  float64
	Interest    float64
	Dividend    float64
	Trading     float64
	Profit      float64
	MarketValue float64
}

// WriteSummary writes the account overview as markdown.
func WriteSummary(w io.Writer, s *Summary) {
	fmt.Fprintf(w, "# Account %s\n\n", s.Account)
	fmt.Fprintf(w, "%s to %s\n\n", s.Start.Format("2006-01-02"), s.End.Format("2006-01-02"))
	fmt.Fprintf(w, "- cash: **%s**\n", USD(s.Cash))
	fmt.Fprintf(w, "- invested: %s\n", USD(s.Investment))
	fmt.Fprintf(w, "- interest: %s\n", USD(s.Interest))
	fmt.Fprintf(w, "- dividends: %s\n", USD(s.Dividend))
	fmt.Fprintf(w, "- spent on trading: %s\n", USD(s.Trading))
	fmt.Fprintf(w, "- trading profit: **%s** (of which %s still in the market)\n",
		USD(s.Profit), USD(s.MarketValue))
}

// CryptoPnLTable prints per-method profit figures for one asset.
func CryptoPnLTable(w io.Writer, symbol string, results map[string]crypto.PnL) {
	fmt.Fprintf(w, "%s\n", symbol)
	t := table(w, []string{"Method", "Realized", "Cost", "Proceeds", "Open Cost", "Position"})
	for _, method := range []string{"FIFO", "LIFO", "HIFO", "LAST"} {
		pnl, ok := results[method]
		if !ok {
			continue
		}
		t.Append([]string{
			method,
			USD(pnl.Realized),
			USD(pnl.CostBasis),
			USD(pnl.Proceeds),
			USD(pnl.OpenCost),
			Quantity(pnl.Position),
		})
	}
	t.Render()
}
