package store

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// kv is the LevelDB handle under a Library. LevelDB does its own locking.
type kv struct {
	db *leveldb.DB
}

// openKV opens the database at path, or an in-memory one when path is empty.
func openKV(path string) (*kv, error) {
	var (
		db  *leveldb.DB
		err error
	)
	if path == "" {
		db, err = leveldb.Open(storage.NewMemStorage(), nil)
	} else {
		db, err = leveldb.OpenFile(path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("open program store %q: %w", path, err)
	}
	return &kv{db: db}, nil
}

// get returns ok=false for a missing key.
func (s *kv) get(key []byte) (value []byte, ok bool, err error) {
	value, err = s.db.Get(key, nil)
	switch {
	case errors.Is(err, leveldb.ErrNotFound):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *kv) write(b *leveldb.Batch) error {
	return s.db.Write(b, nil)
}

// scan calls fn for every key with prefix, in key order. The slices are
// only valid during the call.
func (s *kv) scan(prefix []byte, fn func(key, value []byte)) error {
	it := s.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer it.Release()
	for it.Next() {
		fn(it.Key(), it.Value())
	}
	return it.Error()
}

func (s *kv) close() error {
	return s.db.Close()
}
