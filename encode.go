package smartrade

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// This file persists transactions and groups as JSONL, one record per line,
// human-readable and git-friendly.

const txDateLayout = "2006-01-02T15:04:05Z07:00"

// encodeSymbol persists a symbol in its compact form. Wildcard option
// symbols have no compact encoding and keep the broker form instead.
func encodeSymbol(s Symbol) string {
	if s.Type == OptionAuto {
		return s.String()
	}
	return s.Compact()
}

// jtransaction is the persisted form of a Transaction.
type jtransaction struct {
	ID          string  `json:"id"`
	Account     string  `json:"account"`
	Date        string  `json:"date"`
	Action      string  `json:"action"`
	Symbol      string  `json:"symbol,omitempty"`
	Quantity    float64 `json:"quantity,omitempty"`
	Price       float64 `json:"price,omitempty"`
	Fee         float64 `json:"fee,omitempty"`
	Amount      float64 `json:"amount"`
	Valid       int     `json:"valid"`
	Description string  `json:"description,omitempty"`
	MergeParent string  `json:"merge_parent,omitempty"`
	SliceParent string  `json:"slice_parent,omitempty"`
	Grouped     *bool   `json:"grouped,omitempty"`
}

func toJTransaction(t *Transaction) jtransaction {
	return jtransaction{
		ID:          t.ID,
		Account:     t.Account,
		Date:        t.Date.UTC().Format(txDateLayout),
		Action:      t.Action.String(),
		Symbol:      encodeSymbol(t.Symbol),
		Quantity:    t.Quantity,
		Price:       t.Price,
		Fee:         t.Fee,
		Amount:      t.Amount,
		Valid:       int(t.Validity),
		Description: t.Description,
		MergeParent: t.MergeParent,
		SliceParent: t.SliceParent,
		Grouped:     t.Grouped,
	}
}

func (j jtransaction) transaction() (*Transaction, error) {
	at, err := time.Parse(txDateLayout, j.Date)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: bad date %q: %w", j.ID, j.Date, err)
	}
	var symbol Symbol
	if j.Symbol != "" {
		if symbol, err = ParseSymbol(j.Symbol); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", j.ID, err)
		}
	}
	var action Action
	if err := action.UnmarshalText([]byte(j.Action)); err != nil {
		return nil, fmt.Errorf("transaction %s: %w", j.ID, err)
	}
	return &Transaction{
		ID:          j.ID,
		Account:     j.Account,
		Date:        at,
		Action:      action,
		Symbol:      symbol,
		Quantity:    j.Quantity,
		Price:       j.Price,
		Fee:         j.Fee,
		Amount:      j.Amount,
		Validity:    Validity(j.Valid),
		Description: j.Description,
		MergeParent: j.MergeParent,
		SliceParent: j.SliceParent,
		Grouped:     j.Grouped,
	}, nil
}

// EncodeTransactions writes transactions to w in JSONL form.
func EncodeTransactions(w io.Writer, txs []*Transaction) error {
	for _, tx := range txs {
		data, err := json.Marshal(toJTransaction(tx))
		if err != nil {
			return fmt.Errorf("persist error: cannot marshal transaction %s: %w", tx.ID, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("persist error: cannot write transaction: %w", err)
		}
	}
	return nil
}

// DecodeTransactions reads JSONL transactions from r. filename is for error
// messages only.
func DecodeTransactions(filename string, r io.Reader) ([]*Transaction, error) {
	var res []*Transaction
	scanner := bufio.NewScanner(r)
	i := 0
	for scanner.Scan() {
		i++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var j jtransaction
		if err := json.Unmarshal(line, &j); err != nil {
			return nil, fmt.Errorf("parse error %s:%d: %w", filename, i, err)
		}
		tx, err := j.transaction()
		if err != nil {
			return nil, fmt.Errorf("parse error %s:%d: %w", filename, i, err)
		}
		res = append(res, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parse error %s: %w", filename, err)
	}
	return res, nil
}

// jchainTx is one link of a persisted chain. Closes that trade the same
// symbol as their open omit it and inherit on decode.
type jchainTx struct {
	ID       string  `json:"id"`
	Date     string  `json:"date"`
	Action   string  `json:"action"`
	Symbol   string  `json:"symbol,omitempty"`
	Quantity float64 `json:"quantity,omitempty"`
	Price    float64 `json:"price,omitempty"`
	Fee      float64 `json:"fee,omitempty"`
	Amount   float64 `json:"amount"`
}

// jgroup is the persisted form of a TransactionGroup. The first element of
// each chain is the opening transaction. Derived figures are not persisted;
// they are recomputed on decode.
type jgroup struct {
	Account string       `json:"account"`
	UI      string       `json:"ui"`
	Chains  [][]jchainTx `json:"chains"`
}

func toJGroup(g *TransactionGroup) jgroup {
	jg := jgroup{Account: g.Account, UI: g.Underlying}
	for _, chain := range g.Chains {
		row := []jchainTx{toJChainTx(chain.Open, Symbol{})}
		for _, tx := range chain.Closes {
			row = append(row, toJChainTx(tx, chain.Open.Symbol))
		}
		jg.Chains = append(jg.Chains, row)
	}
	return jg
}

func toJChainTx(t *Transaction, inherited Symbol) jchainTx {
	j := jchainTx{
		ID:       t.ID,
		Date:     t.Date.UTC().Format(txDateLayout),
		Action:   t.Action.String(),
		Quantity: t.Quantity,
		Price:    t.Price,
		Fee:      t.Fee,
		Amount:   t.Amount,
	}
	if t.Symbol != inherited {
		j.Symbol = encodeSymbol(t.Symbol)
	}
	return j
}

func (j jchainTx) transaction(account string, inherited Symbol) (*Transaction, error) {
	at, err := time.Parse(txDateLayout, j.Date)
	if err != nil {
		return nil, fmt.Errorf("chain transaction %s: bad date %q: %w", j.ID, j.Date, err)
	}
	symbol := inherited
	if j.Symbol != "" {
		if symbol, err = ParseSymbol(j.Symbol); err != nil {
			return nil, fmt.Errorf("chain transaction %s: %w", j.ID, err)
		}
	}
	var action Action
	if err := action.UnmarshalText([]byte(j.Action)); err != nil {
		return nil, fmt.Errorf("chain transaction %s: %w", j.ID, err)
	}
	return &Transaction{
		ID:       j.ID,
		Account:  account,
		Date:     at,
		Action:   action,
		Symbol:   symbol,
		Quantity: j.Quantity,
		Price:    j.Price,
		Fee:      j.Fee,
		Amount:   j.Amount,
		Validity: Valid,
	}, nil
}

func (j jgroup) group() (*TransactionGroup, error) {
	g := &TransactionGroup{Account: j.Account, Underlying: j.UI}
	for _, row := range j.Chains {
		if len(row) == 0 {
			return nil, fmt.Errorf("group %s/%s: empty chain", j.Account, j.UI)
		}
		open, err := row[0].transaction(j.Account, Symbol{})
		if err != nil {
			return nil, err
		}
		chain := &Chain{Open: open}
		for _, jt := range row[1:] {
			tx, err := jt.transaction(j.Account, open.Symbol)
			if err != nil {
				return nil, err
			}
			chain.Closes = append(chain.Closes, tx)
		}
		g.Chains = append(g.Chains, chain)
	}
	// Rebuild positions, cost and profit. Open positions are valued at zero
	// here; callers re-run Inventory with a quoter when they need market
	// values.
	if err := g.Inventory(nil); err != nil {
		return nil, err
	}
	return g, nil
}

// EncodeGroups writes groups to w in JSONL form.
func EncodeGroups(w io.Writer, groups []*TransactionGroup) error {
	for _, g := range groups {
		data, err := json.Marshal(toJGroup(g))
		if err != nil {
			return fmt.Errorf("persist error: cannot marshal group %s/%s: %w", g.Account, g.Underlying, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("persist error: cannot write group: %w", err)
		}
	}
	return nil
}

// DecodeGroups reads JSONL groups from r, recomputing their accounting.
func DecodeGroups(filename string, r io.Reader) ([]*TransactionGroup, error) {
	var res []*TransactionGroup
	scanner := bufio.NewScanner(r)
	i := 0
	for scanner.Scan() {
		i++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var j jgroup
		if err := json.Unmarshal(line, &j); err != nil {
			return nil, fmt.Errorf("parse error %s:%d: %w", filename, i, err)
		}
		g, err := j.group()
		if err != nil {
			return nil, fmt.Errorf("parse error %s:%d: %w", filename, i, err)
		}
		res = append(res, g)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parse error %s: %w", filename, err)
	}
	return res, nil
}
