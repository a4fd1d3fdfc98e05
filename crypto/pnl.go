package crypto

import (
	"container/heap"
	"fmt"
)

// Method is the lot matching order used to pair sales with purchases.
type Method int

const (
	// FIFO sells the oldest lots first.
	FIFO Method = iota
	// LIFO sells the newest lots first.
	LIFO
	// HIFO sells the most expensive lots first, minimizing realized gain.
	HIFO
)

func (m Method) String() string {
	switch m {
	case FIFO:
		return "FIFO"
	case LIFO:
		return "LIFO"
	case HIFO:
		return "HIFO"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// PnL summarizes the performance of one asset's transaction history.
type PnL struct {
	// Realized profit and loss of the sales so far.
	Realized float64
	// CostBasis is the (negative) cost consumed by those sales.
	CostBasis float64
	// Proceeds is the cash brought in by the sales.
	Proceeds float64
	// OpenCost is the (negative) cost of the lots still held.
	OpenCost float64
	// Position is the quantity still held.
	Position float64
}

// lotHeap orders lots most expensive first.
type lotHeap []*Transaction

func (h lotHeap) Len() int           { return len(h) }
func (h lotHeap) Less(i, j int) bool { return h[i].Price > h[j].Price }
func (h lotHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *lotHeap) Push(x any)        { *h = append(*h, x.(*Transaction)) }
func (h *lotHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// ComputePnL replays the transaction history, matching every sale against
// the held lots in the order the method prescribes. Transfers are ignored
// unless includeTransfers is set, in which case transferred-in coin counts
// as a zero-cost lot.
func ComputePnL(transactions []*Transaction, method Method, includeTransfers bool) (PnL, error) {
	var lots []*Transaction
	hlots := &lotHeap{}
	var res PnL
	for _, orig := range transactions {
		if !includeTransfers && orig.Action == Transfer {
			continue
		}
		tx := *orig
		if tx.Quantity > 0 {
			if method == HIFO {
				heap.Push(hlots, &tx)
			} else {
				lots = append(lots, &tx)
			}
			continue
		}
		if tx.Action != Sell {
			return PnL{}, fmt.Errorf("transaction disposes of coin but is not a sale: %v", &tx)
		}
		sellQty := -tx.Quantity
		res.Proceeds += tx.Amount
		res.Realized += tx.Amount
		for done := false; !done; {
			var lot *Transaction
			switch {
			case method == HIFO && hlots.Len() > 0:
				lot = (*hlots)[0]
			case method == FIFO && len(lots) > 0:
				lot = lots[0]
			case method == LIFO && len(lots) > 0:
				lot = lots[len(lots)-1]
			default:
				return PnL{}, fmt.Errorf("sale of %v %s exceeds held lots", sellQty, tx.Symbol)
			}
			lotAmount, lotQty := lot.Amount, lot.Quantity
			if lot.Slice(sellQty) {
				done = true
			} else {
				switch method {
				case FIFO:
					lots = lots[1:]
				case LIFO:
					lots = lots[:len(lots)-1]
				case HIFO:
					heap.Pop(hlots)
				}
				sellQty -= lotQty
				done = sellQty < tolerance && sellQty > -tolerance
			}
			res.Realized += lotAmount - lot.Amount
		}
	}
	remaining := lots
	if method == HIFO {
		remaining = *hlots
	}
	var openCost float64
	for _, lot := range remaining {
		openCost += lot.Amount
		res.Position += lot.Quantity
	}
	res.OpenCost = openCost
	res.CostBasis = totalCost(transactions, includeTransfers) - openCost
	return res, nil
}

// PnLFromLast estimates performance by pricing the open position at the
// most recent purchases, the quick check brokers show: everything bought
// before the position's worth of latest buys counts as sold.
func PnLFromLast(transactions []*Transaction, includeTransfers bool) PnL {
	var txs []*Transaction
	for _, tx := range transactions {
		if includeTransfers || tx.Action != Transfer {
			txs = append(txs, tx)
		}
	}
	var res PnL
	var amount, cost float64
	for _, tx := range txs {
		amount += tx.Amount
		res.Position += tx.Quantity
		if tx.Action == Buy {
			cost += tx.Amount
		} else {
			res.Proceeds += tx.Amount
		}
	}
	if res.Position == 0 {
		res.Realized = amount
		res.CostBasis = cost
		return res
	}
	var pos, buy float64
	for i := len(txs) - 1; i >= 0; i-- {
		tx := txs[i]
		if tx.Quantity <= 0 {
			continue
		}
		need := res.Position - pos
		if tx.Quantity <= need-tolerance {
			pos += tx.Quantity
			buy += tx.Amount
			continue
		}
		buy += tx.Amount * (need / tx.Quantity)
		break
	}
	res.Realized = amount - buy
	res.CostBasis = cost - buy
	res.OpenCost = buy
	return res
}

func totalCost(transactions []*Transaction, includeTransfers bool) float64 {
	var cost float64
	for _, tx := range transactions {
		if tx.Quantity > 0 && (includeTransfers || tx.Action != Transfer) {
			cost += tx.Amount
		}
	}
	return cost
}
