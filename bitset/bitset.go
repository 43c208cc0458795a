package bitset

import (
	"fmt"
	"math/bits"
)

func NewBitSet(len uint64) BitSet {
	words := (len + 63) / 64
	bits := make([]uint64, words)
	return bits
}

type BitSet []uint64

func (b BitSet) Len() uint64 {
	return uint64(len(b)) * 64
}

func (b BitSet) IsSet(index uint64) bool {
	wordPosition := index / 64
	bitPosition := index % 64
	mask := uint64(1) << bitPosition

	return (b[wordPosition] & mask) != 0
}

func (b BitSet) Set(index uint64) {
	wordPosition := index / 64
	bitPosition := index % 64
	mask := uint64(1) << bitPosition

	b[wordPosition] |= mask
}

func (b BitSet) Unset(index uint64) {
	wordPosition := index / 64
	bitPosition := index % 64
	mask := uint64(1) << bitPosition

	b[wordPosition] = b[wordPosition] &^ mask

}

func (b BitSet) SetFrom(o BitSet) {
	if len(b) != len(o) {
		panic(fmt.Sprintf("bitsets must be same size: got %d vs %d", len(b), len(o)))
	}
	copy(b, o)
}

// NextSet returns the index of the first set bit at or after index.
// The second return value is false when no set bit exists in that range.
func (b BitSet) NextSet(index uint64) (uint64, bool) {
	wordPosition := index / 64
	if wordPosition >= uint64(len(b)) {
		return 0, false
	}

	// Mask off bits below the starting position in the first word.
	word := b[wordPosition] & (^uint64(0) << (index % 64))
	for {
		if word != 0 {
			return wordPosition*64 + uint64(bits.TrailingZeros64(word)), true
		}
		wordPosition++
		if wordPosition >= uint64(len(b)) {
			return 0, false
		}
		word = b[wordPosition]
	}
}

// PrevSet returns the index of the last set bit at or before index.
// The second return value is false when no set bit exists in that range.
func (b BitSet) PrevSet(index uint64) (uint64, bool) {
	wordPosition := index / 64
	if wordPosition >= uint64(len(b)) {
		wordPosition = uint64(len(b)) - 1
		index = wordPosition*64 + 63
	}

	// Mask off bits above the starting position in the first word.
	bitPosition := index % 64
	word := b[wordPosition]
	if bitPosition < 63 {
		word &= (uint64(1) << (bitPosition + 1)) - 1
	}
	for {
		if word != 0 {
			return wordPosition*64 + uint64(63-bits.LeadingZeros64(word)), true
		}
		if wordPosition == 0 {
			return 0, false
		}
		wordPosition--
		word = b[wordPosition]
	}
}
