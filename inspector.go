package smartrade

import (
	"sort"
	"time"
)

// Inspector answers accounting questions over the stored transactions and
// groups of one account. All money figures sum effective valid transactions
// only, so merged-away and sliced-away history is never double counted.
type Inspector struct {
	txs     TransactionStore
	groups  GroupStore
	account string
	quoter  Quoter
}

// NewInspector wires an inspector to its stores. quoter may be nil, valuing
// open positions at zero.
func NewInspector(txs TransactionStore, groups GroupStore, account string, quoter Quoter) *Inspector {
	return &Inspector{txs: txs, groups: groups, account: account, quoter: quoter}
}

// investmentActions move outside money in and out of the account.
var investmentActions = []Action{Transfer, Journal}

var tradingActions = []Action{BTO, STO, STC, BTC, Expired, Assigned, Exercise}

// TransactionPeriod returns the dates of the first and last valid
// transactions. An empty account yields now for both.
func (i *Inspector) TransactionPeriod() (time.Time, time.Time, error) {
	validity := Valid
	txs, err := i.txs.Query(TxFilter{Account: i.account, Validity: &validity})
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if len(txs) == 0 {
		now := time.Now()
		return now, now, nil
	}
	return txs[0].Date, txs[len(txs)-1].Date, nil
}

// TotalCash is the net cash movement over the period: every effective valid
// transaction amount summed.
func (i *Inspector) TotalCash(from, to time.Time) (float64, error) {
	return i.totalAmount(nil, "", from, to)
}

// TotalInvestment sums outside money moved in and out.
func (i *Inspector) TotalInvestment(from, to time.Time) (float64, error) {
	return i.totalAmount(investmentActions, "", from, to)
}

// TotalInterest sums interest received.
func (i *Inspector) TotalInterest(from, to time.Time) (float64, error) {
	return i.totalAmount([]Action{Interest}, "", from, to)
}

// TotalDividend sums dividends received.
func (i *Inspector) TotalDividend(from, to time.Time) (float64, error) {
	return i.totalAmount([]Action{Dividend}, "", from, to)
}

// TotalTrading is the net cash spent on trading: buys positive, sells
// negative.
func (i *Inspector) TotalTrading(from, to time.Time) (float64, error) {
	total, err := i.totalAmount(tradingActions, "", from, to)
	return -total, err
}

// TickerCosts is the net cash flow of one underlying over the period.
func (i *Inspector) TickerCosts(ticker string, from, to time.Time) (float64, error) {
	return i.totalAmount(nil, ticker, from, to)
}

func (i *Inspector) totalAmount(actions []Action, ticker string, from, to time.Time) (float64, error) {
	validity := Valid
	txs, err := i.txs.Query(TxFilter{
		Account:   i.account,
		Ticker:    ticker,
		Actions:   actions,
		From:      from,
		To:        to,
		Validity:  &validity,
		Effective: FilterYes,
	})
	if err != nil {
		return 0, err
	}
	var total float64
	for _, tx := range txs {
		total += tx.Amount
	}
	return total, nil
}

// DistinctTickers lists the underlyings traded in the period, sorted.
func (i *Inspector) DistinctTickers(from, to time.Time) ([]string, error) {
	validity := Valid
	txs, err := i.txs.Query(TxFilter{Account: i.account, From: from, To: to, Validity: &validity})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var tickers []string
	for _, tx := range txs {
		ui := tx.Symbol.Underlying
		if ui == "" || seen[ui] {
			continue
		}
		seen[ui] = true
		tickers = append(tickers, ui)
	}
	sort.Strings(tickers)
	return tickers, nil
}

// TransactionList queries transactions with full filter control, newest
// first unless ascending is set.
func (i *Inspector) TransactionList(f TxFilter, ascending bool) ([]*Transaction, error) {
	f.Account = i.account
	f.Descending = !ascending
	return i.txs.Query(f)
}

// TickerGroups loads the stored groups of one underlying with fresh market
// valuations.
func (i *Inspector) TickerGroups(ticker string) ([]*TransactionGroup, error) {
	groups, err := i.groups.Query(i.account, ticker)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		if err := g.Inventory(i.quoter); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

// TotalProfit sums profit over all tickers' groups, returning the total
// profit and the market value of what is still open.
func (i *Inspector) TotalProfit(from, to time.Time) (profit, marketValue float64, err error) {
	tickers, err := i.DistinctTickers(from, to)
	if err != nil {
		return 0, 0, err
	}
	for _, ticker := range tickers {
		groups, err := i.TickerGroups(ticker)
		if err != nil {
			return 0, 0, err
		}
		total, p, _ := ComputeTotal(groups)
		profit += p
		marketValue += p - total
	}
	return profit, marketValue, nil
}

// TotalPositions accumulates the open positions of every ticker, keyed by
// underlying then by compact symbol.
func (i *Inspector) TotalPositions(from, to time.Time) (map[string]map[string]float64, error) {
	tickers, err := i.DistinctTickers(from, to)
	if err != nil {
		return nil, err
	}
	positions := make(map[string]map[string]float64)
	for _, ticker := range tickers {
		groups, err := i.TickerGroups(ticker)
		if err != nil {
			return nil, err
		}
		_, _, byUI := ComputeTotal(groups)
		for ui, pos := range byUI {
			positions[ui] = pos
		}
	}
	return positions, nil
}
