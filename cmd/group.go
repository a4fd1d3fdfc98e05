package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/google/subcommands"

	"github.com/hzheng/smartrade"
)

type groupCmd struct {
	dryRun bool
}

func (*groupCmd) Name() string     { return "group" }
func (*groupCmd) Synopsis() string { return "assemble transactions into groups" }
func (*groupCmd) Usage() string {
	return `group [-n] [ticker...]

  Matches closing transactions against open positions and stores the
  resulting groups. Without tickers, every traded ticker is assembled.
`
}

func (c *groupCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.dryRun, "n", false, "assemble without saving")
}

func (c *groupCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		return fail("group: %v", err)
	}
	store, err := openStore(cfg)
	if err != nil {
		return fail("group: %v", err)
	}
	tickers := f.Args()
	if len(tickers) == 0 {
		inspector := newInspector(cfg, store)
		if tickers, err = inspector.DistinctTickers(time.Time{}, time.Time{}); err != nil {
			return fail("group: %v", err)
		}
	}
	assembler := smartrade.NewAssembler(store, store.Groups(), newQuoter(cfg))
	for _, ticker := range tickers {
		ticker = strings.ToUpper(ticker)
		groups, err := assembler.GroupTransactions(cfg.Account, ticker, !c.dryRun)
		if err != nil {
			return fail("group %s: %v", ticker, err)
		}
		completed := 0
		for _, g := range groups {
			if g.Completed() {
				completed++
			}
		}
		fmt.Printf("%s: %d group(s), %d completed\n", ticker, len(groups), completed)
	}
	if !c.dryRun {
		if err := store.Flush(); err != nil {
			return fail("group: %v", err)
		}
	}
	return subcommands.ExitSuccess
}
