package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/hzheng/smartrade/renderer"
)

type tickersCmd struct {
	rangeExpr string
	costs     bool
}

func (*tickersCmd) Name() string     { return "tickers" }
func (*tickersCmd) Synopsis() string { return "list traded tickers" }
func (*tickersCmd) Usage() string {
	return `tickers [-r <range>] [-costs]

  Lists every underlying traded in the period, optionally with its net
  cash flow.
`
}

func (c *tickersCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.rangeExpr, "r", "", "relative range, e.g. m0 for this month")
	f.BoolVar(&c.costs, "costs", false, "show net cash flow per ticker")
}

func (c *tickersCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		return fail("tickers: %v", err)
	}
	store, err := openStore(cfg)
	if err != nil {
		return fail("tickers: %v", err)
	}
	from, to, err := parseRange(c.rangeExpr)
	if err != nil {
		return fail("tickers: %v", err)
	}
	inspector := newInspector(cfg, store)
	tickers, err := inspector.DistinctTickers(from, to)
	if err != nil {
		return fail("tickers: %v", err)
	}
	for _, ticker := range tickers {
		if !c.costs {
			fmt.Println(ticker)
			continue
		}
		cost, err := inspector.TickerCosts(ticker, from, to)
		if err != nil {
			return fail("tickers: %v", err)
		}
		fmt.Printf("%-8s %s\n", ticker, renderer.USD(cost))
	}
	return subcommands.ExitSuccess
}
