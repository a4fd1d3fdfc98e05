package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/hzheng/smartrade/loader"
)

type loadCmd struct{}

func (*loadCmd) Name() string     { return "load" }
func (*loadCmd) Synopsis() string { return "load a broker transaction export" }
func (*loadCmd) Usage() string {
	return `load <file.csv>...

  Parses Schwab transaction export files and stores their transactions.
`
}

func (c *loadCmd) SetFlags(f *flag.FlagSet) {}

func (c *loadCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return fail("load: at least one export file is required")
	}
	cfg, err := loadConfig()
	if err != nil {
		return fail("load: %v", err)
	}
	store, err := openStore(cfg)
	if err != nil {
		return fail("load: %v", err)
	}
	for _, path := range f.Args() {
		res, err := loader.LoadFile(path, cfg.Account)
		if err != nil {
			return fail("load %q: %v", path, err)
		}
		if err := store.Insert(res.Valid...); err != nil {
			return fail("load %q: %v", path, err)
		}
		if err := store.Insert(res.Invalid...); err != nil {
			return fail("load %q: %v", path, err)
		}
		fmt.Printf("%s: %d valid, %d invalid, %d skipped\n",
			path, len(res.Valid), len(res.Invalid), res.Skipped)
	}
	if err := store.Flush(); err != nil {
		return fail("load: %v", err)
	}
	return subcommands.ExitSuccess
}
