package core

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// ID is a deterministic 64-bit identifier derived from content hashing.
// It is used for record deduplication and cache keying.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b
// hashing. Identical content always produces the same ID.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}
