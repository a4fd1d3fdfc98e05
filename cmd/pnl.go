package cmd

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"

	"github.com/hzheng/smartrade/crypto"
	"github.com/hzheng/smartrade/renderer"
)

type pnlCmd struct {
	cash      float64
	transfers bool
}

func (*pnlCmd) Name() string     { return "pnl" }
func (*pnlCmd) Synopsis() string { return "crypto profit and loss" }
func (*pnlCmd) Usage() string {
	return `pnl [-cash <usd>] [-transfers] <coinbase.csv> [symbol...]

  Replays a Coinbase account statement and reports realized profit under
  each lot matching method, per asset.
`
}

func (c *pnlCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.cash, "cash", 0, "USD balance before the first statement row")
	f.BoolVar(&c.transfers, "transfers", false, "count transferred-in coin as zero-cost lots")
}

func (c *pnlCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return fail("pnl: a statement file is required")
	}
	transactions, symbols, err := crypto.LoadCoinbase(f.Arg(0), c.cash, nil)
	if err != nil {
		return fail("pnl: %v", err)
	}
	wanted := f.Args()[1:]
	if len(wanted) == 0 {
		for _, s := range symbols {
			if s != "USD" {
				wanted = append(wanted, s)
			}
		}
	}
	for _, symbol := range wanted {
		var txs []*crypto.Transaction
		for _, tx := range transactions {
			if tx.Symbol == symbol {
				txs = append(txs, tx)
			}
		}
		results := make(map[string]crypto.PnL)
		for _, method := range []crypto.Method{crypto.FIFO, crypto.LIFO, crypto.HIFO} {
			pnl, err := crypto.ComputePnL(txs, method, c.transfers)
			if err != nil {
				return fail("pnl %s (%s): %v", symbol, method, err)
			}
			results[method.String()] = pnl
		}
		results["LAST"] = crypto.PnLFromLast(txs, c.transfers)
		renderer.CryptoPnLTable(os.Stdout, symbol, results)
	}
	return subcommands.ExitSuccess
}
