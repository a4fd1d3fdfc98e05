package smartrade

import (
	"fmt"
	"log"
	"time"
)

// MergeTransactions folds adjacent mergeable transactions in a sorted list.
// Broker feeds report one fill as several rows when it executes in parts;
// after sorting, those rows are neighbors.
func MergeTransactions(txs []*Transaction, lin *Lineage) []*Transaction {
	if len(txs) == 0 {
		return nil
	}
	res := []*Transaction{txs[0]}
	for _, tx := range txs[1:] {
		prev := res[len(res)-1]
		if merged := prev.Merge(tx, lin); merged != nil {
			res[len(res)-1] = merged
		} else {
			res = append(res, tx)
		}
	}
	return res
}

// Combine buckets consecutive transactions that share account, underlying
// and calendar day. Legs of a multi-leg position are placed together, so a
// bucket is the unit of matching.
func Combine(txs []*Transaction) [][]*Transaction {
	var res [][]*Transaction
	for _, tx := range txs {
		if n := len(res); n > 0 && tx.SameGroup(res[n-1][0]) {
			res[n-1] = append(res[n-1], tx)
			continue
		}
		res = append(res, []*Transaction{tx})
	}
	return res
}

// Assemble matches closing transactions against opening ones and returns
// the resulting groups. Opens are bucketed into one group each; closes are
// offered to groups most-recent-open first, sliced to fit, and residuals
// re-offered until consumed. A close that no group absorbs is a fatal
// *UnmatchedCloseError.
func Assemble(leading, following []*Transaction, lin *Lineage, quoter Quoter) ([]*TransactionGroup, error) {
	var groups []*TransactionGroup
	for _, bucket := range Combine(MergeTransactions(leading, lin)) {
		groups = append(groups, NewTransactionGroup(bucket))
	}
	// LIFO: offer closes to the most recent opens first.
	for i, j := 0, len(groups)-1; i < j; i, j = i+1, j-1 {
		groups[i], groups[j] = groups[j], groups[i]
	}

	queue := Combine(MergeTransactions(following, lin))
	for len(queue) > 0 {
		bucket := queue[0]
		queue = queue[1:]
		var closes, opens []*Transaction
		for _, tx := range bucket {
			switch {
			case tx.Action.IsClose() && tx.Quantity > Tolerance:
				closes = append(closes, tx)
			case tx.Action.IsOpen():
				opens = append(opens, tx)
			}
		}
		if len(closes) == 0 {
			continue
		}
		matched := false
		for _, g := range groups {
			remaining, ok := g.followedBy(closes, lin)
			if !ok {
				continue
			}
			// opens that ride along with a close, e.g. a roll, extend the
			// matched group
			for _, tx := range opens {
				g.Chains = append(g.Chains, &Chain{Open: tx})
			}
			if len(remaining) > 0 {
				queue = append([][]*Transaction{remaining}, queue...)
			}
			matched = true
			break
		}
		if !matched {
			return nil, &UnmatchedCloseError{
				Account: closes[0].Account,
				Ticker:  closes[0].Symbol.Underlying,
				Closes:  closes,
			}
		}
	}

	for _, g := range groups {
		if err := g.Inventory(quoter); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

// closeActions are the actions whose dates mark a bucket as following.
var closeActions = []Action{STC, BTC, SplitFrom, Expired, Assigned, Exercise}

var followingActions = []Action{STC, BTC, Expired, Assigned, Exercise, STO, BTO, Split, SplitFrom, SplitTo}

var leadingActions = []Action{STO, BTO, Split}

// Assembler runs assembly over stored transactions and persists the result.
type Assembler struct {
	txs    TransactionStore
	groups GroupStore
	quoter Quoter
}

// NewAssembler wires an assembler to its stores. quoter may be nil, valuing
// open positions at zero.
func NewAssembler(txs TransactionStore, groups GroupStore, quoter Quoter) *Assembler {
	return &Assembler{txs: txs, groups: groups, quoter: quoter}
}

// GroupTransactions assembles the ungrouped transactions of one ticker into
// groups. With save set, incomplete groups from earlier runs are replaced
// and all lineage is written back, making a re-run over the same history a
// no-op for completed groups.
func (a *Assembler) GroupTransactions(account, ticker string, save bool) ([]*TransactionGroup, error) {
	validity := Valid
	base := TxFilter{
		Account:   account,
		Ticker:    ticker,
		Validity:  &validity,
		Effective: FilterYes,
		Grouped:   FilterNo,
	}

	closeFilter := base
	closeFilter.Actions = closeActions
	closeTxs, err := a.txs.Query(closeFilter)
	if err != nil {
		return nil, err
	}
	dates := followingDates(closeTxs)

	leadingFilter := base
	leadingFilter.Actions = leadingActions
	leadingFilter.ExcludeDates = dates
	leading, err := a.txs.Query(leadingFilter)
	if err != nil {
		return nil, err
	}

	followingFilter := base
	followingFilter.Actions = followingActions
	followingFilter.Dates = dates
	following, err := a.txs.Query(followingFilter)
	if err != nil {
		return nil, err
	}

	lin := NewLineage()
	groups, err := Assemble(leading, following, lin, a.quoter)
	if err != nil {
		return nil, err
	}
	if !save {
		return groups, nil
	}

	deleted, err := a.groups.DeleteIncomplete(account, ticker)
	if err != nil {
		return nil, err
	}
	if deleted > 0 {
		log.Printf("replaced %d incomplete group(s) of %s", deleted, ticker)
	}
	for _, g := range groups {
		for _, chain := range g.Chains {
			lin.setGrouped(chain.Open, g.Completed())
			for _, tx := range chain.Closes {
				lin.setGrouped(tx, g.Completed())
			}
		}
	}
	created := lin.Created()
	for _, tx := range created {
		if !tx.IsVirtual() {
			return nil, fmt.Errorf("minted transaction %v is not virtual", tx)
		}
	}
	if err := a.txs.Insert(created...); err != nil {
		return nil, err
	}
	if err := a.txs.UpdateLineage(lin.Updated()); err != nil {
		return nil, err
	}
	if err := a.groups.Insert(groups...); err != nil {
		return nil, err
	}
	return groups, nil
}

// followingDates collects the timestamps of closing transactions, widened
// by one second each way to absorb feed clock jitter.
func followingDates(closes []*Transaction) []time.Time {
	seen := make(map[time.Time]bool)
	var dates []time.Time
	add := func(d time.Time) {
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	for _, tx := range closes {
		add(tx.Date.Add(-time.Second))
		add(tx.Date)
		add(tx.Date.Add(time.Second))
	}
	return dates
}
