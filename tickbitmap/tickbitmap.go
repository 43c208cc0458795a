// Package tickbitmap tracks which ticks of a pool carry liquidity and finds
// the next initialized tick in either direction.
//
// Ticks are compressed by the pool's tick spacing and offset to a
// non-negative index before landing in the underlying bitset, so lookups are
// a single word scan instead of a walk over a tick map.
package tickbitmap

import (
	"github.com/defistate/defistate-amm-go/bitset"
	"github.com/defistate/defistate-amm-go/calculator/tickmath"
)

// Bitmap indexes initialized ticks for one tick spacing.
type Bitmap struct {
	spacing int64
	// minCompressed is the compressed index of the lowest representable
	// tick; it offsets compressed ticks into the bitset's [0, n) range.
	minCompressed int64
	bits          bitset.BitSet
}

// New builds an empty bitmap covering every multiple of spacing within the
// valid tick range. spacing must be positive.
func New(spacing int64) *Bitmap {
	minCompressed := floorDiv(tickmath.MinTick, spacing)
	maxCompressed := floorDiv(tickmath.MaxTick, spacing)
	return &Bitmap{
		spacing:       spacing,
		minCompressed: minCompressed,
		bits:          bitset.NewBitSet(uint64(maxCompressed - minCompressed + 1)),
	}
}

// Spacing returns the tick spacing the bitmap was built for.
func (m *Bitmap) Spacing() int64 { return m.spacing }

// index maps a tick to its offset position in the underlying bitset.
func (m *Bitmap) index(tick int64) uint64 {
	return uint64(floorDiv(tick, m.spacing) - m.minCompressed)
}

// Flip toggles the initialized state of tick. The tick must be a multiple
// of the spacing; alignment is validated by the caller.
func (m *Bitmap) Flip(tick int64) {
	idx := m.index(tick)
	if m.bits.IsSet(idx) {
		m.bits.Unset(idx)
	} else {
		m.bits.Set(idx)
	}
}

// IsInitialized reports whether tick is marked initialized.
func (m *Bitmap) IsInitialized(tick int64) bool {
	return m.bits.IsSet(m.index(tick))
}

// NextInitialized returns the nearest initialized tick at or below tick when
// lte is true, or strictly above tick otherwise. The second return value is
// false when no initialized tick exists in that direction.
func (m *Bitmap) NextInitialized(tick int64, lte bool) (int64, bool) {
	compressed := floorDiv(tick, m.spacing)

	if lte {
		start := compressed - m.minCompressed
		if start < 0 {
			return 0, false
		}
		idx, ok := m.bits.PrevSet(uint64(start))
		if !ok {
			return 0, false
		}
		return (int64(idx) + m.minCompressed) * m.spacing, true
	}

	start := compressed + 1 - m.minCompressed
	if start < 0 {
		start = 0
	}
	idx, ok := m.bits.NextSet(uint64(start))
	if !ok {
		return 0, false
	}
	return (int64(idx) + m.minCompressed) * m.spacing, true
}

// Clone returns an independent copy of the bitmap.
func (m *Bitmap) Clone() *Bitmap {
	bits := bitset.NewBitSet(m.bits.Len())
	bits.SetFrom(m.bits)
	return &Bitmap{
		spacing:       m.spacing,
		minCompressed: m.minCompressed,
		bits:          bits,
	}
}

// floorDiv divides rounding toward negative infinity, so negative ticks
// compress to the word covering them rather than the one above.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
