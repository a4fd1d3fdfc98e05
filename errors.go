package smartrade

import (
	"fmt"
	"strings"
)

// UnmatchedCloseError reports closing transactions that no open position
// could absorb. It means the transaction history is incomplete or the feed
// is corrupt, so assembly stops rather than guess.
type UnmatchedCloseError struct {
	Account string
	Ticker  string
	Closes  []*Transaction
}

func (e *UnmatchedCloseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s/%s: %d closing transaction(s) match no open position:",
		e.Account, e.Ticker, len(e.Closes))
	for _, tx := range e.Closes {
		fmt.Fprintf(&b, "\n  %v", tx)
	}
	return b.String()
}
