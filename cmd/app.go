// Package cmd implements the CLI application to manage trading accounts.
package cmd

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/hzheng/smartrade"
	"github.com/hzheng/smartrade/date"
	"github.com/hzheng/smartrade/marketdata"
)

// Commands lists every subcommand; a main package registers them and lets
// the commander execute the selected one.
var Commands = []subcommands.Command{
	&loadCmd{},
	&groupCmd{},
	&txCmd{},
	&tickersCmd{},
	&summaryCmd{},
	&groupsCmd{},
	&positionsCmd{},
	&quoteCmd{},
	&pnlCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to
// use global variables.

var configPath = flag.String("config", "", "Path to the config file. Defaults to ~/.smartrade/config.yaml")
var accountFlag = flag.String("account", "", "Account number, overriding the config")

func loadConfig() (*smartrade.Config, error) {
	c, err := smartrade.LoadConfig(*configPath)
	if err != nil {
		return nil, err
	}
	if *accountFlag != "" {
		c.Account = smartrade.AccountSuffix(*accountFlag)
	}
	return c, nil
}

func openStore(c *smartrade.Config) (*smartrade.FileStore, error) {
	return smartrade.OpenFileStore(c.DataDir)
}

// newQuoter builds the market data quoter, or nil when no API key is
// configured; open positions are then valued at zero.
func newQuoter(c *smartrade.Config) smartrade.Quoter {
	if c.PolygonAPIKey == "" {
		return nil
	}
	return marketdata.NewQuotes(marketdata.NewPolygon(c.PolygonAPIKey, c.CacheDir))
}

func newInspector(c *smartrade.Config, store *smartrade.FileStore) *smartrade.Inspector {
	return smartrade.NewInspector(store, store.Groups(), c.Account, newQuoter(c))
}

// printMarkdown renders markdown to the terminal, falling back to the raw
// text when rendering fails.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

func fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return subcommands.ExitFailure
}

// parseRange resolves a relative range expression like "m0" or "y-1" into
// timestamp bounds; an empty expression leaves them open.
func parseRange(expr string) (from, to time.Time, err error) {
	if expr == "" {
		return from, to, nil
	}
	r, err := date.ParseRelativeRange(expr)
	if err != nil {
		return from, to, err
	}
	from = r.From.Time()
	to = r.To.Time().Add(24*time.Hour - time.Second)
	return from, to, nil
}
