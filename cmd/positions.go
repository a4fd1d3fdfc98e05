package cmd

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"

	"github.com/hzheng/smartrade/renderer"
)

type positionsCmd struct {
	rangeExpr string
}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "show open positions" }
func (*positionsCmd) Usage() string {
	return `positions [-r <range>]

  Shows the net open positions accumulated over every group.
`
}

func (c *positionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.rangeExpr, "r", "", "relative range, e.g. y0 for this year")
}

func (c *positionsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		return fail("positions: %v", err)
	}
	store, err := openStore(cfg)
	if err != nil {
		return fail("positions: %v", err)
	}
	from, to, err := parseRange(c.rangeExpr)
	if err != nil {
		return fail("positions: %v", err)
	}
	inspector := newInspector(cfg, store)
	positions, err := inspector.TotalPositions(from, to)
	if err != nil {
		return fail("positions: %v", err)
	}
	renderer.PositionsTable(os.Stdout, positions)
	return subcommands.ExitSuccess
}
