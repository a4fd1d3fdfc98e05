package cmd

import (
	"context"
	"flag"
	"strings"

	"github.com/google/subcommands"

	"github.com/hzheng/smartrade/renderer"
)

type summaryCmd struct {
	rangeExpr string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "account overview" }
func (*summaryCmd) Usage() string {
	return `summary [-r <range>]

  Shows the account's cash, investment, income and trading profit over the
  period.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.rangeExpr, "r", "", "relative range, e.g. y0 for this year")
}

func (c *summaryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		return fail("summary: %v", err)
	}
	store, err := openStore(cfg)
	if err != nil {
		return fail("summary: %v", err)
	}
	from, to, err := parseRange(c.rangeExpr)
	if err != nil {
		return fail("summary: %v", err)
	}
	inspector := newInspector(cfg, store)
	s := &renderer.Summary{Account: cfg.Account}
	if s.Start, s.End, err = inspector.TransactionPeriod(); err != nil {
		return fail("summary: %v", err)
	}
	if !from.IsZero() {
		s.Start, s.End = from, to
	}
	if s.Cash, err = inspector.TotalCash(from, to); err != nil {
		return fail("summary: %v", err)
	}
	if s.Investment, err = inspector.TotalInvestment(from, to); err != nil {
		return fail("summary: %v", err)
	}
	if s.Interest, err = inspector.TotalInterest(from, to); err != nil {
		return fail("summary: %v", err)
	}
	if s.Dividend, err = inspector.TotalDividend(from, to); err != nil {
		return fail("summary: %v", err)
	}
	if s.Trading, err = inspector.TotalTrading(from, to); err != nil {
		return fail("summary: %v", err)
	}
	if s.Profit, s.MarketValue, err = inspector.TotalProfit(from, to); err != nil {
		return fail("summary: %v", err)
	}
	var b strings.Builder
	renderer.WriteSummary(&b, s)
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
