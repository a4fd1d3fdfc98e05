package smartrade

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	transactionsFilename = "transactions.jsonl"
	groupsFilename       = "groups.jsonl"
)

// FileStore keeps transactions and groups as JSONL files in a folder,
// loaded whole into memory on open and rewritten by Flush. The folder is
// meant to live in a private git repository.
type FileStore struct {
	dir   string
	mem   *MemStore
	dirty bool
}

// OpenFileStore loads the store folder, creating it when absent.
func OpenFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("load error: cannot create store folder %q: %w", dir, err)
	}
	s := &FileStore{dir: dir, mem: NewMemStore()}

	txFile := filepath.Join(dir, transactionsFilename)
	if f, err := os.Open(txFile); err == nil {
		defer f.Close()
		txs, err := DecodeTransactions(txFile, f)
		if err != nil {
			return nil, err
		}
		if err := s.mem.Insert(txs...); err != nil {
			return nil, fmt.Errorf("load error: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("load error: cannot open %q: %w", txFile, err)
	}

	groupFile := filepath.Join(dir, groupsFilename)
	if f, err := os.Open(groupFile); err == nil {
		defer f.Close()
		groups, err := DecodeGroups(groupFile, f)
		if err != nil {
			return nil, err
		}
		if err := s.mem.InsertGroups(groups...); err != nil {
			return nil, fmt.Errorf("load error: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("load error: cannot open %q: %w", groupFile, err)
	}
	return s, nil
}

// Query implements TransactionStore.
func (s *FileStore) Query(f TxFilter) ([]*Transaction, error) { return s.mem.Query(f) }

// Insert implements TransactionStore.
func (s *FileStore) Insert(txs ...*Transaction) error {
	if err := s.mem.Insert(txs...); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

// UpdateLineage implements TransactionStore.
func (s *FileStore) UpdateLineage(patches []LineagePatch) error {
	if err := s.mem.UpdateLineage(patches); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

// Groups exposes the store through the GroupStore interface.
func (s *FileStore) Groups() GroupStore { return fileGroupView{s} }

type fileGroupView struct{ *FileStore }

func (v fileGroupView) Insert(groups ...*TransactionGroup) error {
	if err := v.mem.InsertGroups(groups...); err != nil {
		return err
	}
	v.FileStore.dirty = true
	return nil
}

func (v fileGroupView) Query(account, ticker string) ([]*TransactionGroup, error) {
	return v.mem.QueryGroups(account, ticker)
}

func (v fileGroupView) DeleteIncomplete(account, ticker string) (int, error) {
	n, err := v.mem.DeleteIncompleteGroups(account, ticker)
	if n > 0 {
		v.FileStore.dirty = true
	}
	return n, err
}

// Flush rewrites the store files when anything changed since open.
func (s *FileStore) Flush() error {
	if !s.dirty {
		return nil
	}
	txs, err := s.mem.Query(TxFilter{})
	if err != nil {
		return err
	}
	txFile := filepath.Join(s.dir, transactionsFilename)
	f, err := os.Create(txFile)
	if err != nil {
		return fmt.Errorf("persist error: cannot create %q: %w", txFile, err)
	}
	defer f.Close()
	if err := EncodeTransactions(f, txs); err != nil {
		return err
	}

	groups, err := s.mem.QueryGroups("", "")
	if err != nil {
		return err
	}
	groupFile := filepath.Join(s.dir, groupsFilename)
	g, err := os.Create(groupFile)
	if err != nil {
		return fmt.Errorf("persist error: cannot create %q: %w", groupFile, err)
	}
	defer g.Close()
	if err := EncodeGroups(g, groups); err != nil {
		return err
	}
	s.dirty = false
	return nil
}
