package pool

import (
	"fmt"
	"math/big"

	"github.com/defistate/defistate-amm-go/calculator/liquiditymath"
	"github.com/defistate/defistate-amm-go/tickbitmap"
)

// Tick carries the liquidity bookkeeping for one initialized tick.
type Tick struct {
	Index          int64    `json:"index"`
	LiquidityGross *big.Int `json:"liquidityGross"`
	LiquidityNet   *big.Int `json:"liquidityNet"`
	// Fee growth on the far side of this tick relative to the current
	// price, maintained by crossing. Meaningful only relative to the
	// globals, never read in isolation.
	FeeGrowthOutside0X128 *big.Int `json:"feeGrowthOutside0X128"`
	FeeGrowthOutside1X128 *big.Int `json:"feeGrowthOutside1X128"`
}

func (t *Tick) clone() *Tick {
	return &Tick{
		Index:                 t.Index,
		LiquidityGross:        new(big.Int).Set(t.LiquidityGross),
		LiquidityNet:          new(big.Int).Set(t.LiquidityNet),
		FeeGrowthOutside0X128: new(big.Int).Set(t.FeeGrowthOutside0X128),
		FeeGrowthOutside1X128: new(big.Int).Set(t.FeeGrowthOutside1X128),
	}
}

// tickRegistry holds all initialized ticks of a pool together with the
// bitmap used to find the next one during swaps.
type tickRegistry struct {
	spacing int64
	ticks   map[int64]*Tick
	bitmap  *tickbitmap.Bitmap
}

func newTickRegistry(spacing int64) *tickRegistry {
	return &tickRegistry{
		spacing: spacing,
		ticks:   make(map[int64]*Tick),
		bitmap:  tickbitmap.New(spacing),
	}
}

func (r *tickRegistry) get(tick int64) (*Tick, bool) {
	t, ok := r.ticks[tick]
	return t, ok
}

// update applies a liquidity delta to a tick, initializing it lazily. A tick
// at or below the current price is seeded with the global fee growth so that
// growth-outside stays consistent with its definition. Returns whether the
// tick flipped between initialized and uninitialized.
func (r *tickRegistry) update(
	tick, currentTick int64,
	delta *big.Int,
	upper bool,
	feeGrowthGlobal0X128, feeGrowthGlobal1X128 *big.Int,
) (flipped bool, err error) {
	info, ok := r.ticks[tick]
	if !ok {
		info = &Tick{
			Index:                 tick,
			LiquidityGross:        new(big.Int),
			LiquidityNet:          new(big.Int),
			FeeGrowthOutside0X128: new(big.Int),
			FeeGrowthOutside1X128: new(big.Int),
		}
		if tick <= currentTick {
			info.FeeGrowthOutside0X128.Set(feeGrowthGlobal0X128)
			info.FeeGrowthOutside1X128.Set(feeGrowthGlobal1X128)
		}
		r.ticks[tick] = info
	}

	grossBefore := info.LiquidityGross.Sign() != 0
	if err := liquiditymath.AddDelta(info.LiquidityGross, info.LiquidityGross, delta); err != nil {
		return false, fmt.Errorf("tick %d: %w", tick, err)
	}
	grossAfter := info.LiquidityGross.Sign() != 0

	// Net liquidity is added when the price crosses up through the lower
	// tick and subtracted at the upper tick.
	if upper {
		info.LiquidityNet.Sub(info.LiquidityNet, delta)
	} else {
		info.LiquidityNet.Add(info.LiquidityNet, delta)
	}

	flipped = grossBefore != grossAfter
	if flipped {
		r.bitmap.Flip(tick)
	}
	if !grossAfter {
		delete(r.ticks, tick)
	}
	return flipped, nil
}

// cross flips the growth-outside snapshots of a tick as the price moves
// through it and returns the tick's net liquidity.
func (r *tickRegistry) cross(tick int64, feeGrowthGlobal0X128, feeGrowthGlobal1X128 *big.Int) *big.Int {
	info, ok := r.ticks[tick]
	if !ok {
		return new(big.Int)
	}
	info.FeeGrowthOutside0X128.Sub(feeGrowthGlobal0X128, info.FeeGrowthOutside0X128)
	info.FeeGrowthOutside1X128.Sub(feeGrowthGlobal1X128, info.FeeGrowthOutside1X128)
	return info.LiquidityNet
}

// feeGrowthInside computes the fee growth accrued strictly between two ticks
// by subtracting the growth below the lower and above the upper tick from
// the globals. Uninitialized bound ticks contribute zero outside growth.
func (r *tickRegistry) feeGrowthInside(
	lower, upper, currentTick int64,
	feeGrowthGlobal0X128, feeGrowthGlobal1X128 *big.Int,
) (inside0, inside1 *big.Int) {
	var lowerOut0, lowerOut1, upperOut0, upperOut1 *big.Int
	zero := new(big.Int)
	if t, ok := r.ticks[lower]; ok {
		lowerOut0, lowerOut1 = t.FeeGrowthOutside0X128, t.FeeGrowthOutside1X128
	} else {
		lowerOut0, lowerOut1 = zero, zero
	}
	if t, ok := r.ticks[upper]; ok {
		upperOut0, upperOut1 = t.FeeGrowthOutside0X128, t.FeeGrowthOutside1X128
	} else {
		upperOut0, upperOut1 = zero, zero
	}

	below0, below1 := new(big.Int), new(big.Int)
	if currentTick >= lower {
		below0.Set(lowerOut0)
		below1.Set(lowerOut1)
	} else {
		below0.Sub(feeGrowthGlobal0X128, lowerOut0)
		below1.Sub(feeGrowthGlobal1X128, lowerOut1)
	}

	above0, above1 := new(big.Int), new(big.Int)
	if currentTick < upper {
		above0.Set(upperOut0)
		above1.Set(upperOut1)
	} else {
		above0.Sub(feeGrowthGlobal0X128, upperOut0)
		above1.Sub(feeGrowthGlobal1X128, upperOut1)
	}

	inside0 = new(big.Int).Sub(feeGrowthGlobal0X128, below0)
	inside0.Sub(inside0, above0)
	inside1 = new(big.Int).Sub(feeGrowthGlobal1X128, below1)
	inside1.Sub(inside1, above1)
	return inside0, inside1
}

func (r *tickRegistry) clone() *tickRegistry {
	ticks := make(map[int64]*Tick, len(r.ticks))
	for idx, t := range r.ticks {
		ticks[idx] = t.clone()
	}
	return &tickRegistry{
		spacing: r.spacing,
		ticks:   ticks,
		bitmap:  r.bitmap.Clone(),
	}
}
