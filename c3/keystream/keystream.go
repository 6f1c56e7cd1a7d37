// Package keystream implements the per-byte data transform used to simulate
// encrypted storage.
//
// A keystream word is derived once per 16-byte chunk from the chunk's
// capability address and the data key; each byte of the chunk is masked with
// one bit of that word, selected by the byte's offset in the chunk. Masking
// is XOR, so the same call encrypts and decrypts.
package keystream

import (
	"github.com/joshuapare/c3kit/c3/address"
	"github.com/joshuapare/c3kit/internal/format"
)

const wordMask = uint64(1)<<63 - 1

// Chunk returns the 16-byte aligned CA that ca falls in.
func Chunk(ca address.CA) address.CA {
	return address.CA(format.ChunkBase(uint64(ca)))
}

// Word returns (((chunk * chunk) XOR dataKey) + 1) mod 2^63 for the chunk of
// ca. The square wraps mod 2^64 before the XOR.
func Word(ca address.CA, dataKey uint32) uint64 {
	c := uint64(Chunk(ca))
	return ((c * c) ^ uint64(dataKey) + 1) & wordMask
}

// Mask returns the mask byte for ca: bit (ca mod 16) of the chunk word.
func Mask(ca address.CA, dataKey uint32) byte {
	return byte((Word(ca, dataKey) >> (uint64(ca) & format.ChunkMask)) & 1)
}

// Apply masks a single byte.
func Apply(ca address.CA, dataKey uint32, b byte) byte {
	return b ^ Mask(ca, dataKey)
}

// Stream masks bytes under one data key, caching the word of the last chunk
// it touched. Callers walking an access byte by byte pay one Word per chunk.
//
// NOT thread-safe.
type Stream struct {
	dataKey uint32
	chunk   address.CA
	word    uint64
	valid   bool
}

// NewStream returns a Stream for dataKey.
func NewStream(dataKey uint32) *Stream {
	return &Stream{dataKey: dataKey}
}

// Word returns Word(ca, dataKey), from the cache when ca is in the same chunk
// as the previous call.
func (s *Stream) Word(ca address.CA) uint64 {
	if c := Chunk(ca); !s.valid || c != s.chunk {
		s.chunk, s.word, s.valid = c, Word(ca, s.dataKey), true
	}
	return s.word
}

// Apply masks b at ca and returns the masked byte with the chunk word.
func (s *Stream) Apply(ca address.CA, b byte) (byte, uint64) {
	w := s.Word(ca)
	return b ^ byte((w>>(uint64(ca)&format.ChunkMask))&1), w
}
