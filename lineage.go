package smartrade

// LineagePatch records the lineage fields to write back to one stored
// transaction. Empty string fields and a nil Grouped leave the stored value
// untouched.
type LineagePatch struct {
	ID          string
	MergeParent string
	SliceParent string
	Grouped     *bool
}

// Lineage collects the bookkeeping of one assembly run: synthetic
// transactions to insert and lineage patches to apply to stored rows.
// Merging and slicing record into it; the assembler flushes it to the store.
type Lineage struct {
	created map[string]*Transaction
	order   []string
	patches map[string]*LineagePatch
}

// NewLineage returns an empty bookkeeping context.
func NewLineage() *Lineage {
	return &Lineage{
		created: make(map[string]*Transaction),
		patches: make(map[string]*LineagePatch),
	}
}

// Created lists the synthetic transactions minted during the run, in
// creation order.
func (l *Lineage) Created() []*Transaction {
	res := make([]*Transaction, 0, len(l.order))
	for _, id := range l.order {
		res = append(res, l.created[id])
	}
	return res
}

// Updated lists the patches to apply to stored transactions.
func (l *Lineage) Updated() []LineagePatch {
	res := make([]LineagePatch, 0, len(l.patches))
	for _, p := range l.patches {
		res = append(res, *p)
	}
	return res
}

func (l *Lineage) create(t *Transaction) {
	l.created[t.ID] = t
	l.order = append(l.order, t.ID)
}

func (l *Lineage) isCreated(id string) bool {
	_, ok := l.created[id]
	return ok
}

func (l *Lineage) patch(id string) *LineagePatch {
	if p, ok := l.patches[id]; ok {
		return p
	}
	p := &LineagePatch{ID: id}
	l.patches[id] = p
	return p
}

func (l *Lineage) setMergeParent(t *Transaction, parent string) {
	t.MergeParent = parent
	if !l.isCreated(t.ID) {
		l.patch(t.ID).MergeParent = parent
	}
}

// setGrouped marks a chain transaction with its group's completion state,
// patching the stored row unless the transaction was minted this run.
func (l *Lineage) setGrouped(t *Transaction, completed bool) {
	g := completed
	t.Grouped = &g
	if !l.isCreated(t.ID) {
		l.patch(t.ID).Grouped = &g
	}
}
