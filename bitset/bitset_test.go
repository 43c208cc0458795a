package bitset

import (
	"testing"
)

func TestBitSet_SetAndIsSet(t *testing.T) {
	// Create a BitSet to hold 100 bits.
	numBits := uint64(100)
	bs := NewBitSet(numBits)

	// Set a few specific bits.
	bs.Set(0)
	bs.Set(63)
	bs.Set(64)
	bs.Set(99)

	// Check that these bits are set.
	if !bs.IsSet(0) {
		t.Error("expected bit 0 to be set")
	}
	if !bs.IsSet(63) {
		t.Error("expected bit 63 to be set")
	}
	if !bs.IsSet(64) {
		t.Error("expected bit 64 to be set")
	}
	if !bs.IsSet(99) {
		t.Error("expected bit 99 to be set")
	}

	// Check that a bit we didn't set is not set.
	if bs.IsSet(1) {
		t.Error("expected bit 1 to be not set")
	}
}

func TestBitSet_Unset(t *testing.T) {
	// Create a BitSet to hold 100 bits.
	numBits := uint64(100)
	bs := NewBitSet(numBits)

	// Set several bits.
	bs.Set(10)
	bs.Set(20)
	bs.Set(30)

	// Confirm they are set.
	if !bs.IsSet(10) || !bs.IsSet(20) || !bs.IsSet(30) {
		t.Error("expected bits 10, 20, and 30 to be set")
	}

	// Now unset bit 20.
	bs.Unset(20)

	// Verify that bit 20 is now cleared, while others remain set.
	if bs.IsSet(20) {
		t.Error("expected bit 20 to be unset")
	}
	if !bs.IsSet(10) || !bs.IsSet(30) {
		t.Error("expected bits 10 and 30 to remain set")
	}
}

func TestBitSet_SetFrom(t *testing.T) {
	// Case 1: Successful copy
	src := BitSet{0b1010, 0b1111}
	dst := BitSet{0, 0}

	dst.SetFrom(src)

	for i := range src {
		if dst[i] != src[i] {
			t.Errorf("BitSet.SetFrom failed: dst[%d]=%b, want %b", i, dst[i], src[i])
		}
	}

	// Case 2: Mismatched size should panic
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("BitSet.SetFrom did not panic on mismatched lengths")
		}
	}()

	shortDst := BitSet{0}
	shortDst.SetFrom(src) // should panic
}

func TestBitSet_NextSet(t *testing.T) {
	bs := NewBitSet(200)
	bs.Set(3)
	bs.Set(64)
	bs.Set(150)

	// From zero, the first set bit is 3.
	if got, ok := bs.NextSet(0); !ok || got != 3 {
		t.Errorf("NextSet(0) = (%d, %v), want (3, true)", got, ok)
	}

	// Starting exactly on a set bit returns that bit.
	if got, ok := bs.NextSet(64); !ok || got != 64 {
		t.Errorf("NextSet(64) = (%d, %v), want (64, true)", got, ok)
	}

	// Starting just past a set bit skips to the next word's bit.
	if got, ok := bs.NextSet(65); !ok || got != 150 {
		t.Errorf("NextSet(65) = (%d, %v), want (150, true)", got, ok)
	}

	// No set bit remains after the last one.
	if _, ok := bs.NextSet(151); ok {
		t.Error("NextSet(151) found a bit, want none")
	}

	// Out-of-range start finds nothing.
	if _, ok := bs.NextSet(100000); ok {
		t.Error("NextSet past the end found a bit, want none")
	}
}

func TestBitSet_PrevSet(t *testing.T) {
	bs := NewBitSet(200)
	bs.Set(3)
	bs.Set(64)
	bs.Set(150)

	// From the end, the last set bit is 150.
	if got, ok := bs.PrevSet(199); !ok || got != 150 {
		t.Errorf("PrevSet(199) = (%d, %v), want (150, true)", got, ok)
	}

	// Starting exactly on a set bit returns that bit.
	if got, ok := bs.PrevSet(64); !ok || got != 64 {
		t.Errorf("PrevSet(64) = (%d, %v), want (64, true)", got, ok)
	}

	// Starting just below a set bit scans down across words.
	if got, ok := bs.PrevSet(63); !ok || got != 3 {
		t.Errorf("PrevSet(63) = (%d, %v), want (3, true)", got, ok)
	}

	// Nothing below the first set bit.
	if _, ok := bs.PrevSet(2); ok {
		t.Error("PrevSet(2) found a bit, want none")
	}
}

func TestBitSet_NextSet_Empty(t *testing.T) {
	bs := NewBitSet(128)
	if _, ok := bs.NextSet(0); ok {
		t.Error("NextSet on empty bitset found a bit")
	}
	if _, ok := bs.PrevSet(127); ok {
		t.Error("PrevSet on empty bitset found a bit")
	}
}
