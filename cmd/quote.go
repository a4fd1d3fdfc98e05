package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"github.com/hzheng/smartrade/renderer"
)

type quoteCmd struct{}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "quote symbols" }
func (*quoteCmd) Usage() string {
	return `quote <symbol>...

  Prints the latest price of stock or option symbols in compact form,
  e.g. AAPL or AAPL_220128P140.
`
}

func (c *quoteCmd) SetFlags(f *flag.FlagSet) {}

func (c *quoteCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return fail("quote: at least one symbol is required")
	}
	cfg, err := loadConfig()
	if err != nil {
		return fail("quote: %v", err)
	}
	quoter := newQuoter(cfg)
	if quoter == nil {
		return fail("quote: no polygon_api_key configured")
	}
	for _, symbol := range f.Args() {
		symbol = strings.ToUpper(symbol)
		price, err := quoter.Quote(symbol)
		if err != nil {
			return fail("quote %s: %v", symbol, err)
		}
		fmt.Printf("%-24s %s\n", symbol, renderer.USD(price))
	}
	return subcommands.ExitSuccess
}
