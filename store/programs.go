// Package store keeps a library of Intcode programs in LevelDB, addressed
// by name or by content hash.
package store

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/colorfulnotion/intcode/common"
	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/vmerrors"
	"github.com/syndtr/goleveldb/leveldb"
)

// Key layout:
//
//	p<32 byte hash> -> normalized program text
//	n<name>         -> 32 byte hash
var (
	programPrefix = []byte("p")
	namePrefix    = []byte("n")
)

func programKey(h common.Hash) []byte {
	return append(append([]byte(nil), programPrefix...), h.Bytes()...)
}

func nameKey(name string) []byte {
	return append(append([]byte(nil), namePrefix...), name...)
}

// Entry is one named program.
type Entry struct {
	Name  string
	Hash  common.Hash
	Words int
}

// Library is the program store.
type Library struct {
	db *kv
}

// Open opens the library at path, or an in-memory library when path is
// empty.
func Open(path string) (*Library, error) {
	db, err := openKV(path)
	if err != nil {
		return nil, err
	}
	return &Library{db: db}, nil
}

func (l *Library) Close() error {
	return l.db.close()
}

// Put parses text, stores its normalized form under its hash and points
// name at it. Re-adding a name moves it to the new program.
func (l *Library) Put(name, text string) (common.Hash, error) {
	if name == "" || common.IsHexHash(name) || strings.ContainsAny(name, " \t\n") {
		return common.Hash{}, fmt.Errorf("name %q: %w", name, vmerrors.ErrInvalidName)
	}
	program, err := intcode.ParseProgram(text)
	if err != nil {
		return common.Hash{}, err
	}
	h := common.ProgramHash(program)

	batch := new(leveldb.Batch)
	batch.Put(programKey(h), []byte(intcode.NewMemory(program).Dump()))
	batch.Put(nameKey(name), h.Bytes())
	if err := l.db.write(batch); err != nil {
		return common.Hash{}, fmt.Errorf("put %s: %w", name, err)
	}
	log.Debug(log.StoreMonitoring, "stored program", "name", name, "hash", h.String_short(), "words", len(program))
	return h, nil
}

// Resolve maps a name or a 0x-prefixed hash to the program hash.
func (l *Library) Resolve(ref string) (common.Hash, error) {
	if common.IsHexHash(ref) {
		h := common.HexToHash(ref)
		_, ok, err := l.db.get(programKey(h))
		if err != nil {
			return common.Hash{}, err
		}
		if !ok {
			return common.Hash{}, fmt.Errorf("%s: %w", ref, vmerrors.ErrProgramNotFound)
		}
		return h, nil
	}
	data, ok, err := l.db.get(nameKey(ref))
	if err != nil {
		return common.Hash{}, err
	}
	if !ok {
		return common.Hash{}, fmt.Errorf("%s: %w", ref, vmerrors.ErrProgramNotFound)
	}
	return common.BytesToHash(data), nil
}

// Get returns the normalized text of the program ref names.
func (l *Library) Get(ref string) (string, error) {
	h, err := l.Resolve(ref)
	if err != nil {
		return "", err
	}
	data, ok, err := l.db.get(programKey(h))
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%s (%s): %w", ref, h.String_short(), vmerrors.ErrProgramNotFound)
	}
	return string(data), nil
}

// Program is Get followed by parsing.
func (l *Library) Program(ref string) ([]int64, error) {
	text, err := l.Get(ref)
	if err != nil {
		return nil, err
	}
	return intcode.ParseProgram(text)
}

// List returns the named programs sorted by name.
func (l *Library) List() ([]Entry, error) {
	var entries []Entry
	err := l.db.scan(namePrefix, func(key, value []byte) {
		entries = append(entries, Entry{
			Name: string(key[len(namePrefix):]),
			Hash: common.BytesToHash(value),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	for i := range entries {
		if data, ok, err := l.db.get(programKey(entries[i].Hash)); err == nil && ok {
			entries[i].Words = bytes.Count(data, []byte(",")) + 1
		}
	}
	return entries, nil
}

// Delete removes name. The program itself is removed once no name refers
// to it.
func (l *Library) Delete(name string) error {
	h, err := l.Resolve(name)
	if err != nil {
		return err
	}
	if common.IsHexHash(name) {
		return fmt.Errorf("delete by hash %s: %w", name, vmerrors.ErrInvalidName)
	}

	entries, err := l.List()
	if err != nil {
		return err
	}
	shared := false
	for _, e := range entries {
		if e.Name != name && e.Hash == h {
			shared = true
			break
		}
	}

	batch := new(leveldb.Batch)
	batch.Delete(nameKey(name))
	if !shared {
		batch.Delete(programKey(h))
	}
	if err := l.db.write(batch); err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	log.Debug(log.StoreMonitoring, "deleted program", "name", name, "dropped", !shared)
	return nil
}
