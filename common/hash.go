package common

import (
	"encoding/binary"
	"fmt"

	ethereumCommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/blake2b"
)

// Hash identifies a program by the BLAKE2b-256 digest of its words.
type Hash ethereumCommon.Hash

// ProgramHash hashes the parsed words as fixed-width little-endian values,
// so spacing and leading zeros in the source text do not change it.
func ProgramHash(program []int64) Hash {
	buf := make([]byte, 8*len(program))
	for i, w := range program {
		binary.LittleEndian.PutUint64(buf[8*i:], uint64(w))
	}
	return Hash(blake2b.Sum256(buf))
}

func (h Hash) Bytes() []byte  { return h[:] }
func (h Hash) Hex() string    { return ethereumCommon.Hash(h).Hex() }
func (h Hash) String() string { return h.Hex() }

// String_short is the first and last two bytes, for log lines and listings.
func (h Hash) String_short() string {
	return fmt.Sprintf("%x..%x", h[:2], h[30:])
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

// BytesToHash keeps the last 32 bytes of b, left-padding shorter input.
func BytesToHash(b []byte) Hash {
	return Hash(ethereumCommon.BytesToHash(b))
}

func HexToHash(s string) Hash {
	return Hash(ethereumCommon.HexToHash(s))
}

// IsHexHash reports whether s is a 0x-prefixed 32 byte hex string.
func IsHexHash(s string) bool {
	b, err := hexutil.Decode(s)
	return err == nil && len(b) == ethereumCommon.HashLength
}
