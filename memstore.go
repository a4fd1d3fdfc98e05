package smartrade

import (
	"fmt"
	"sync"
)

// MemStore is an in-memory TransactionStore and GroupStore, used for tests
// and as the working set behind the file-backed store.
type MemStore struct {
	mu     sync.RWMutex
	txs    map[string]*Transaction
	groups []*TransactionGroup
}

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{txs: make(map[string]*Transaction)}
}

// Query returns clones of the matching transactions in sorted order, so
// callers can mutate them freely.
func (s *MemStore) Query(f TxFilter) ([]*Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []*Transaction
	for _, tx := range s.txs {
		if f.Matches(tx) {
			res = append(res, tx.Clone())
		}
	}
	SortTransactions(res, f.Descending)
	return res, nil
}

// Insert stores clones of txs, keyed by ID.
func (s *MemStore) Insert(txs ...*Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range txs {
		if tx.ID == "" {
			return fmt.Errorf("transaction without ID: %v", tx)
		}
		if _, ok := s.txs[tx.ID]; ok {
			return fmt.Errorf("duplicate transaction ID %s", tx.ID)
		}
		s.txs[tx.ID] = tx.Clone()
	}
	return nil
}

// UpdateLineage applies patches to stored rows. Patching an unknown ID is
// an error: lineage must only ever point at stored history.
func (s *MemStore) UpdateLineage(patches []LineagePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range patches {
		tx, ok := s.txs[p.ID]
		if !ok {
			return fmt.Errorf("lineage patch for unknown transaction %s", p.ID)
		}
		if p.MergeParent != "" {
			tx.MergeParent = p.MergeParent
		}
		if p.SliceParent != "" {
			tx.SliceParent = p.SliceParent
		}
		if p.Grouped != nil {
			g := *p.Grouped
			tx.Grouped = &g
		}
	}
	return nil
}

// InsertGroups stores groups.
func (s *MemStore) InsertGroups(groups ...*TransactionGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = append(s.groups, groups...)
	return nil
}

// QueryGroups returns the groups of an account, narrowed to ticker when it
// is non-empty.
func (s *MemStore) QueryGroups(account, ticker string) ([]*TransactionGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []*TransactionGroup
	for _, g := range s.groups {
		if account != "" && g.Account != account {
			continue
		}
		if ticker != "" && g.Underlying != ticker {
			continue
		}
		res = append(res, g)
	}
	return res, nil
}

// DeleteIncompleteGroups drops the incomplete groups of a ticker.
func (s *MemStore) DeleteIncompleteGroups(account, ticker string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.groups[:0]
	deleted := 0
	for _, g := range s.groups {
		if g.Account == account && (ticker == "" || g.Underlying == ticker) && !g.Completed() {
			deleted++
			continue
		}
		kept = append(kept, g)
	}
	s.groups = kept
	return deleted, nil
}

// groupStoreView adapts MemStore's group methods to the GroupStore
// interface without colliding with the TransactionStore method set.
type groupStoreView struct{ *MemStore }

// Groups exposes the store through the GroupStore interface.
func (s *MemStore) Groups() GroupStore { return groupStoreView{s} }

func (v groupStoreView) Insert(groups ...*TransactionGroup) error {
	return v.InsertGroups(groups...)
}

func (v groupStoreView) Query(account, ticker string) ([]*TransactionGroup, error) {
	return v.QueryGroups(account, ticker)
}

func (v groupStoreView) DeleteIncomplete(account, ticker string) (int, error) {
	return v.DeleteIncompleteGroups(account, ticker)
}
