package renderer

import (
	"io"

	"github.com/hzheng/smartrade"
)

// TransactionTable prints transactions as a table, one row each.
func TransactionTable(w io.Writer, txs []*smartrade.Transaction) {
	t := table(w, []string{"Date", "Action", "Symbol", "Qty", "Price", "Fee", "Amount", "State"})
	for _, tx := range txs {
		state := tx.Validity.String()
		if tx.IsVirtual() {
			state += " virtual"
		}
		t.Append([]string{
			tx.Date.Format("2006-01-02"),
			tx.Action.String(),
			tx.Symbol.Compact(),
			Quantity(tx.Quantity),
			USD(tx.Price),
			USD(tx.Fee),
			USD(tx.Amount),
			state,
		})
	}
	t.Render()
}
