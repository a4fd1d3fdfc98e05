package smartrade

import (
	"testing"
	"time"
)

func TestVerify(t *testing.T) {
	testCases := []struct {
		name   string
		action Action
		symbol string
		qty    float64
		price  float64
		fee    float64
		amount float64
		want   bool
	}{
		{"sto option", STO, "AAPL_220204P170", 1, 8.54, 0.60, 853.40, true},
		{"bto option", BTO, "AAPL_220204P135", 1, 5.47, 0.65, -547.65, true},
		{"btc option", BTC, "AAPL_220204P170", 1, 0.05, 0.65, -5.65, true},
		{"bto stock", BTO, "AAPL", 10, 150.25, 0, -1502.50, true},
		{"amount off", STO, "AAPL_220204P170", 1, 8.54, 0.60, 853.50, false},
		{"expired zero", Expired, "AAPL_220204P170", 1, 0, 0, 0, true},
		{"dividend unpriced", Dividend, "AAPL", 0, 0, 0, 22.10, true},
		{"interest unpriced", Interest, "", 0, 0, 0, 0.07, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var sym Symbol
			if tc.symbol != "" {
				var err error
				if sym, err = ParseSymbol(tc.symbol); err != nil {
					t.Fatal(err)
				}
			}
			tr := NewTransaction(testAccount, time.Now(), tc.action, sym, tc.qty, tc.price, tc.fee, tc.amount)
			if got := tr.Verify(); got != tc.want {
				t.Errorf("Verify() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestLineagePredicates(t *testing.T) {
	original := &Transaction{ID: "a"}
	if !original.IsOriginal() || !original.IsEffective() || original.IsVirtual() {
		t.Error("bare transaction should be original and effective")
	}

	merged := &Transaction{ID: "m", MergeParent: "m"}
	if !merged.IsVirtual() || merged.IsMerged() || !merged.IsEffective() {
		t.Error("merge result should be virtual and effective, not merged away")
	}

	constituent := &Transaction{ID: "a", MergeParent: "m"}
	if !constituent.IsMerged() || constituent.IsEffective() || constituent.IsVirtual() {
		t.Error("merged constituent should be ineffective but original")
	}

	piece := &Transaction{ID: "p", SliceParent: "a"}
	if !piece.IsSliced() || !piece.IsVirtual() || !piece.IsEffective() {
		t.Error("slice piece should be virtual and effective")
	}

	husk := &Transaction{ID: "a", SliceParent: "a"}
	if husk.IsEffective() || husk.IsVirtual() {
		t.Error("consumed row should be ineffective but not virtual")
	}

	// a piece sliced off a merge result carries both parents
	slicedMerge := &Transaction{ID: "p", MergeParent: "m", SliceParent: "m"}
	if slicedMerge.IsMerged() || !slicedMerge.IsEffective() || !slicedMerge.IsVirtual() {
		t.Error("slice of a merge result should stay effective")
	}
}

func TestMerge(t *testing.T) {
	lin := NewLineage()
	a := tx(t, "2021-12-20 09:31:00", STO, "AAPL_220204P170", 1, 8.54, 0.60, 853.40)
	b := tx(t, "2021-12-20 09:31:00", STO, "AAPL_220204P170", 2, 8.54, 1.20, 1706.80)

	m := a.Merge(b, lin)
	if m == nil {
		t.Fatal("Merge returned nil")
	}
	almost(t, "Quantity", m.Quantity, 3)
	almost(t, "Fee", m.Fee, 1.80)
	almost(t, "Amount", m.Amount, 2560.20)
	almost(t, "Price", m.Price, 8.54)
	if !m.Verify() {
		t.Error("merge result should verify")
	}
	if m.MergeParent != m.ID {
		t.Error("merge result should be its own merge parent")
	}
	if a.MergeParent != m.ID || b.MergeParent != m.ID {
		t.Error("constituents should point at the merge result")
	}

	created := lin.Created()
	if len(created) != 1 || created[0] != m {
		t.Errorf("Created() = %v, want just the merge result", created)
	}
	updated := lin.Updated()
	if len(updated) != 2 {
		t.Fatalf("Updated() has %d patches, want 2", len(updated))
	}
	for _, p := range updated {
		if p.MergeParent != m.ID {
			t.Errorf("patch %s merge parent = %q, want %q", p.ID, p.MergeParent, m.ID)
		}
	}

	// a third fill accumulates into the same synthetic transaction
	c := tx(t, "2021-12-20 09:31:00", STO, "AAPL_220204P170", 1, 8.54, 0.60, 853.40)
	if got := m.Merge(c, lin); got != m {
		t.Fatal("second merge should reuse the synthetic transaction")
	}
	almost(t, "Quantity", m.Quantity, 4)
	almost(t, "Amount", m.Amount, 3413.60)
	if len(lin.Created()) != 1 {
		t.Error("second merge should not mint another transaction")
	}
}

func TestMergeRejectsMismatch(t *testing.T) {
	lin := NewLineage()
	a := tx(t, "2021-12-20 09:31:00", STO, "AAPL_220204P170", 1, 8.54, 0.60, 853.40)
	for _, o := range []*Transaction{
		tx(t, "2021-12-20 09:31:00", STO, "AAPL_220204P135", 1, 5.47, 0.60, 546.40),  // other strike
		tx(t, "2021-12-20 09:32:00", STO, "AAPL_220204P170", 1, 8.54, 0.60, 853.40),  // other time
		tx(t, "2021-12-20 09:31:00", BTC, "AAPL_220204P170", 1, 8.54, 0.60, -854.60), // other action
	} {
		if a.Merge(o, lin) != nil {
			t.Errorf("Merge with %v should fail", o)
		}
	}
}

func TestSlice(t *testing.T) {
	lin := NewLineage()
	orig := tx(t, "2021-12-21", STO, "AAPL_220204P170", 3, 8.54, 1.80, 2560.20)
	origID := orig.ID

	piece := orig.Slice(2, lin)
	if piece == nil || piece == orig {
		t.Fatal("Slice should mint a separate piece")
	}
	almost(t, "piece.Quantity", piece.Quantity, 2)
	almost(t, "piece.Fee", piece.Fee, 1.20)
	almost(t, "piece.Amount", piece.Amount, 1706.80)
	almost(t, "remainder.Quantity", orig.Quantity, 1)
	almost(t, "remainder.Fee", orig.Fee, 0.60)
	almost(t, "remainder.Amount", orig.Amount, 853.40)
	if !piece.Verify() || !orig.Verify() {
		t.Error("both parts should verify")
	}

	if piece.SliceParent != origID {
		t.Errorf("piece slice parent = %q, want %q", piece.SliceParent, origID)
	}
	if orig.ID == origID || orig.SliceParent != origID {
		t.Error("the remainder of a stored row should be reminted off the original")
	}
	p, ok := lin.patches[origID]
	if !ok || p.SliceParent != origID {
		t.Error("the stored row should be patched as consumed")
	}
	created := lin.Created()
	if len(created) != 2 || created[0] != piece || created[1] != orig {
		t.Errorf("Created() = %v, want piece then remainder", created)
	}
}

func TestSliceBounds(t *testing.T) {
	lin := NewLineage()
	orig := tx(t, "2021-12-21", STO, "AAPL_220204P170", 3, 8.54, 1.80, 2560.20)
	if got := orig.Slice(0, lin); got != nil {
		t.Errorf("Slice(0) = %v, want nil", got)
	}
	if got := orig.Slice(3, lin); got != orig {
		t.Error("slicing the whole quantity should return the receiver")
	}
	almost(t, "Quantity", orig.Quantity, 3)
	if len(lin.Created()) != 0 || len(lin.Updated()) != 0 {
		t.Error("boundary slices should record nothing")
	}
}

func TestSliceCreatedInPlace(t *testing.T) {
	// a transaction minted this run keeps its identity when sliced again
	lin := NewLineage()
	orig := tx(t, "2021-12-21", STO, "AAPL_220204P170", 3, 8.54, 1.80, 2560.20)
	origID := orig.ID
	piece := orig.Slice(2, lin)

	sub := piece.Slice(1, lin)
	if sub == nil || sub == piece {
		t.Fatal("Slice should mint a separate piece")
	}
	if sub.SliceParent != origID || piece.SliceParent != origID {
		t.Error("pieces should trace back to the stored row")
	}
	almost(t, "sub.Quantity", sub.Quantity, 1)
	almost(t, "piece.Quantity", piece.Quantity, 1)
	almost(t, "sub.Amount+piece.Amount", sub.Amount+piece.Amount, 1706.80)
	if len(lin.Created()) != 3 {
		t.Errorf("Created() has %d transactions, want 3", len(lin.Created()))
	}
	if len(lin.Updated()) != 1 {
		t.Error("re-slicing a minted piece should not add patches")
	}
}

func TestClosedBy(t *testing.T) {
	bto := tx(t, "2021-12-20", BTO, "AAPL_220204P135", 1, 5.47, 0.65, -547.65)
	sto := tx(t, "2021-12-20", STO, "AAPL_220204P170", 1, 8.54, 0.60, 853.40)
	stc := tx(t, "2021-12-22", STC, "AAPL_220204P135", 1, 6.00, 0.65, 599.35)
	btc := tx(t, "2021-12-22", BTC, "AAPL_220204P170", 1, 0.05, 0.65, -5.65)
	expired := tx(t, "2022-02-04", Expired, "AAPL_220204P170", 1, 0, 0, 0)
	assigned := tx(t, "2022-02-04", Assigned, "AAPL 02/04/2022 135.00", 1, 0, 0, 0)

	if !bto.ClosedBy(stc) || !sto.ClosedBy(btc) {
		t.Error("matching open/close pairs should close")
	}
	if bto.ClosedBy(btc) || sto.ClosedBy(stc) {
		t.Error("close side must match the open side")
	}
	if sto.ClosedBy(expired) != true {
		t.Error("expiration closes a short")
	}
	if !bto.ClosedBy(assigned) {
		t.Error("type-less assignment symbol should match the open")
	}
	if bto.ClosedBy(expired) {
		t.Error("different strikes should not close")
	}

	later := tx(t, "2022-01-05", BTO, "AAPL_220204P135", 1, 7.00, 0.65, -700.65)
	if later.ClosedBy(stc) {
		t.Error("a close must not bind an open dated after it")
	}

	split := tx(t, "2021-12-20", Split, "AAPL", 30, 0, 0, 0)
	splitFrom := tx(t, "2021-12-20", SplitFrom, "AAPL", 10, 0, 0, 0)
	buy := tx(t, "2021-12-01", BTO, "AAPL", 10, 50, 0, -500)
	if !buy.ClosedBy(splitFrom) {
		t.Error("a split removal closes the pre-split shares")
	}
	sell := tx(t, "2022-01-10", STC, "AAPL", 30, 60, 0, 1800)
	if !split.ClosedBy(sell) {
		t.Error("selling closes the post-split shares")
	}
	if sell.ClosedBy(splitFrom) {
		t.Error("a close is not an open")
	}
}

func TestSameGroup(t *testing.T) {
	a := tx(t, "2021-12-20 09:31:00", STO, "AAPL_220204P170", 1, 8.54, 0.60, 853.40)
	b := tx(t, "2021-12-20 15:59:00", BTO, "AAPL_220204P135", 1, 5.47, 0.65, -547.65)
	c := tx(t, "2021-12-21 09:31:00", STO, "AAPL_220204P170", 1, 8.54, 0.60, 853.40)
	d := tx(t, "2021-12-20 09:31:00", STO, "SPY_211231C470", 1, 1.00, 0.60, 99.40)

	if !a.SameGroup(b) {
		t.Error("same day and underlying should group")
	}
	if a.SameGroup(c) {
		t.Error("different days should not group")
	}
	if a.SameGroup(d) {
		t.Error("different underlyings should not group")
	}
}

func TestClone(t *testing.T) {
	g := true
	a := tx(t, "2021-12-20", STO, "AAPL_220204P170", 1, 8.54, 0.60, 853.40)
	a.Grouped = &g
	c := a.Clone()
	*c.Grouped = false
	if !*a.Grouped {
		t.Error("Clone should not share the Grouped pointer")
	}
}
