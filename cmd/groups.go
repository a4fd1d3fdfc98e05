package cmd

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"

	"github.com/hzheng/smartrade/renderer"
)

type groupsCmd struct {
	verbose bool
	open    bool
}

func (*groupsCmd) Name() string     { return "groups" }
func (*groupsCmd) Synopsis() string { return "show assembled transaction groups" }
func (*groupsCmd) Usage() string {
	return `groups [-v] [-open] [ticker...]

  Shows the stored transaction groups with their profit, cost and ROI.
  -v prints every chain of every group; -open keeps only groups that still
  hold positions.
`
}

func (c *groupsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.verbose, "v", false, "show group chains")
	f.BoolVar(&c.open, "open", false, "only groups with open positions")
}

func (c *groupsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		return fail("groups: %v", err)
	}
	store, err := openStore(cfg)
	if err != nil {
		return fail("groups: %v", err)
	}
	inspector := newInspector(cfg, store)
	tickers := f.Args()
	if len(tickers) == 0 {
		if tickers, err = inspector.DistinctTickers(time.Time{}, time.Time{}); err != nil {
			return fail("groups: %v", err)
		}
	}
	var b strings.Builder
	for _, ticker := range tickers {
		groups, err := inspector.TickerGroups(strings.ToUpper(ticker))
		if err != nil {
			return fail("groups %s: %v", ticker, err)
		}
		shown := groups[:0:0]
		for _, g := range groups {
			if !c.open || !g.Completed() {
				shown = append(shown, g)
			}
		}
		if len(shown) == 0 {
			continue
		}
		if c.verbose {
			for _, g := range shown {
				renderer.GroupDetails(&b, g)
			}
			continue
		}
		renderer.GroupTable(os.Stdout, shown)
	}
	if c.verbose {
		printMarkdown(b.String())
	}
	return subcommands.ExitSuccess
}
