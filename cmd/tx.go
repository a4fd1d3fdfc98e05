package cmd

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/hzheng/smartrade"
	"github.com/hzheng/smartrade/renderer"
)

type txCmd struct {
	ticker    string
	rangeExpr string
	ascending bool
	invalid   bool
	all       bool
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list transactions" }
func (*txCmd) Usage() string {
	return `tx [-t <ticker>] [-r <range>] [-asc] [-invalid] [-all]

  Lists stored transactions, newest first. By default only valid effective
  transactions are shown; -invalid shows the rejected ones instead, -all
  shows everything including merged and sliced history.
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "t", "", "only this underlying")
	f.StringVar(&c.rangeExpr, "r", "", "relative range, e.g. m0 for this month, y-1 for last year")
	f.BoolVar(&c.ascending, "asc", false, "oldest first")
	f.BoolVar(&c.invalid, "invalid", false, "show invalid transactions")
	f.BoolVar(&c.all, "all", false, "include merged and sliced history")
}

func (c *txCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		return fail("tx: %v", err)
	}
	store, err := openStore(cfg)
	if err != nil {
		return fail("tx: %v", err)
	}
	from, to, err := parseRange(c.rangeExpr)
	if err != nil {
		return fail("tx: %v", err)
	}
	validity := smartrade.Valid
	filter := smartrade.TxFilter{
		Ticker:    strings.ToUpper(c.ticker),
		From:      from,
		To:        to,
		Validity:  &validity,
		Effective: smartrade.FilterYes,
	}
	if c.invalid {
		validity = smartrade.Invalid
		filter.Effective = smartrade.FilterAny
	}
	if c.all {
		filter.Validity = nil
		filter.Effective = smartrade.FilterAny
	}
	inspector := newInspector(cfg, store)
	txs, err := inspector.TransactionList(filter, c.ascending)
	if err != nil {
		return fail("tx: %v", err)
	}
	renderer.TransactionTable(os.Stdout, txs)
	return subcommands.ExitSuccess
}
