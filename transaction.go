package smartrade

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math"
	"time"
)

// Tolerance is the quantity/money comparison threshold. Quantities below it
// are treated as zero, and amount checks allow a relative error of it.
const Tolerance = 1e-6

// Validity marks how a loaded row should be treated.
type Validity int

const (
	// Ignored rows are kept for the record but excluded from all queries.
	Ignored Validity = -1
	// Invalid rows failed parsing or the amount cross-check.
	Invalid Validity = 0
	// Valid rows participate in grouping and accounting.
	Valid Validity = 1
)

func (v Validity) String() string {
	switch v {
	case Ignored:
		return "ignored"
	case Invalid:
		return "invalid"
	case Valid:
		return "valid"
	default:
		return fmt.Sprintf("Validity(%d)", int(v))
	}
}

// Transaction is one normalized brokerage record.
//
// Besides the broker fields, a transaction carries lineage: MergeParent and
// SliceParent link the synthetic transactions minted by merging same-fill
// rows and by slicing partial closes back to the stored rows they came from.
// A transaction whose MergeParent is its own ID is a synthetic merge result;
// one whose SliceParent is its own ID has been consumed whole by slicing and
// only remains as history.
type Transaction struct {
	ID          string
	Account     string
	Date        time.Time
	Action      Action
	Symbol      Symbol
	Quantity    float64
	Price       float64
	Fee         float64
	Amount      float64
	Validity    Validity
	Description string

	MergeParent string
	SliceParent string
	// Grouped is nil until the transaction has been through assembly, then
	// reports whether its group was completed.
	Grouped *bool
}

// NewTransaction builds a transaction from normalized fields, minting its
// identity and validating the amount against quantity, price and fee.
func NewTransaction(account string, at time.Time, action Action, symbol Symbol, quantity, price, fee, amount float64) *Transaction {
	t := &Transaction{
		ID:       newID(),
		Account:  account,
		Date:     at,
		Action:   action,
		Symbol:   symbol,
		Quantity: quantity,
		Price:    price,
		Fee:      fee,
		Amount:   amount,
	}
	if t.Verify() {
		t.Validity = Valid
	}
	return t
}

// Verify cross-checks the amount: quantity x multiplier x price, signed by
// the cash direction, minus fees must equal the reported amount within
// Tolerance. Actions without a meaningful price always pass.
func (t *Transaction) Verify() bool {
	if t.Action == ActionInvalid {
		return false
	}
	if !t.Action.Priced() {
		return true
	}
	computed := t.Quantity*t.Symbol.Multiplier()*t.Price*t.Action.CashSign() - t.Fee
	return math.Abs(computed-t.Amount) <= Tolerance*(1+math.Abs(computed))
}

// IsMerged reports whether this stored row has been folded into a synthetic
// merge transaction. A row whose merge parent equals its slice parent was
// sliced off a merge result, not merged away itself.
func (t *Transaction) IsMerged() bool {
	return t.MergeParent != "" && t.MergeParent != t.ID && t.MergeParent != t.SliceParent
}

// IsSliced reports whether this transaction was sliced off another one.
func (t *Transaction) IsSliced() bool {
	return t.SliceParent != "" && t.SliceParent != t.ID
}

// IsVirtual reports whether this transaction was minted by merging or
// slicing rather than loaded from a broker feed.
func (t *Transaction) IsVirtual() bool {
	return t.MergeParent == t.ID || t.IsSliced()
}

// IsOriginal reports whether this transaction came straight from a feed.
func (t *Transaction) IsOriginal() bool { return !t.IsVirtual() }

// IsEffective reports whether this transaction currently counts: neither
// merged away nor consumed whole by slicing.
func (t *Transaction) IsEffective() bool {
	return !t.IsMerged() && t.SliceParent != t.ID
}

// SameGroup reports whether two transactions belong to the same assembly
// bucket: same account and underlying, on the same calendar day.
func (t *Transaction) SameGroup(o *Transaction) bool {
	ty, tm, td := t.Date.Date()
	oy, om, od := o.Date.Date()
	return t.Account == o.Account &&
		t.Symbol.Underlying == o.Symbol.Underlying &&
		ty == oy && tm == om && td == od
}

// ClosedBy reports whether c closes the position opened by t. A close never
// binds an open dated after it. Expirations, assignments, exercises and
// split removals close either direction; STC only closes long opens and BTC
// only closes STO.
func (t *Transaction) ClosedBy(c *Transaction) bool {
	if !t.Action.IsOpen() || !c.Action.IsClose() {
		return false
	}
	if c.Date.Before(t.Date) {
		return false
	}
	switch c.Action {
	case STC:
		if t.Action != BTO && t.Action != Split {
			return false
		}
	case BTC:
		if t.Action != STO {
			return false
		}
	}
	return t.Symbol.Matches(c.Symbol)
}

// Merge folds o into t when both are parts of the same fill reported as
// separate rows: same account, symbol, action and timestamp. The first merge
// mints a synthetic transaction carrying the sum; later merges accumulate
// into it. Returns nil when the two cannot merge.
func (t *Transaction) Merge(o *Transaction, lin *Lineage) *Transaction {
	if t.Account != o.Account || t.Action != o.Action ||
		!t.Date.Equal(o.Date) || t.Symbol != o.Symbol {
		return nil
	}
	merged := t
	if t.MergeParent != t.ID {
		merged = t.Clone()
		merged.ID = newID()
		merged.MergeParent = merged.ID
		merged.Grouped = nil
		lin.create(merged)
		lin.setMergeParent(t, merged.ID)
	}
	lin.setMergeParent(o, merged.ID)
	merged.Quantity += o.Quantity
	merged.Fee += o.Fee
	merged.Amount += o.Amount
	if shares := merged.Quantity * merged.Symbol.Multiplier(); merged.Action.Priced() && shares > Tolerance {
		merged.Price = (merged.Amount + merged.Fee) / (shares * merged.Action.CashSign())
	}
	return merged
}

// Slice splits qty off t and returns the piece; the remainder stays in t.
// Fees and amount are apportioned pro rata, the remainder by subtraction so
// the parts always sum back exactly. A nil return means qty is negligible;
// when qty consumes t entirely (within Tolerance), t itself is returned and
// nothing is split.
func (t *Transaction) Slice(qty float64, lin *Lineage) *Transaction {
	if qty <= Tolerance {
		return nil
	}
	if qty >= t.Quantity-Tolerance {
		return t
	}
	root := t.SliceParent
	if root == "" {
		root = t.ID
	}
	ratio := qty / t.Quantity
	piece := t.Clone()
	piece.ID = newID()
	piece.SliceParent = root
	piece.Quantity = qty
	piece.Fee = t.Fee * ratio
	piece.Amount = t.Amount * ratio
	piece.Grouped = nil
	lin.create(piece)

	if !lin.isCreated(t.ID) {
		// the stored row is consumed whole; the remainder lives on under a
		// fresh identity
		lin.patch(t.ID).SliceParent = t.ID
		t.ID = newID()
		t.SliceParent = root
		t.Grouped = nil
		lin.create(t)
	}
	t.Quantity -= qty
	t.Fee -= piece.Fee
	t.Amount -= piece.Amount
	return piece
}

// Clone returns an independent copy.
func (t *Transaction) Clone() *Transaction {
	c := *t
	if t.Grouped != nil {
		g := *t.Grouped
		c.Grouped = &g
	}
	return &c
}

func (t *Transaction) String() string {
	return fmt.Sprintf("%s %s %s %v x%v @%v fee=%v amount=%v",
		t.Date.Format("2006-01-02 15:04:05"), t.Account, t.Action, t.Symbol,
		t.Quantity, t.Price, t.Fee, t.Amount)
}

func newID() string {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) <= Tolerance }
