package pool

import (
	"fmt"
	"math/big"

	"github.com/defistate/defistate-amm-go/calculator/swapmath"
	"github.com/defistate/defistate-amm-go/calculator/tickmath"
)

// SwapResult reports the outcome of a swap or a dry-run quote.
type SwapResult struct {
	// AmountIn is the input consumed, fee included. AmountOut is what the
	// trader receives. Both are non-negative.
	AmountIn  *big.Int
	AmountOut *big.Int
	// AmountRemaining is the unconsumed part of the specified amount,
	// non-zero only for partial fills.
	AmountRemaining *big.Int

	SqrtPriceX96 *big.Int
	Tick         int64
	Liquidity    *big.Int

	TicksCrossed int
	Steps        int

	// Partial is set when the swap stopped before consuming the full
	// amount. LimitReached narrows the cause to the price limit.
	Partial      bool
	LimitReached bool
}

// crossing records a tick passed during the loop together with the input
// token's fee growth at the moment of crossing, so commit can flip the
// outside snapshot with the value that was current at that point.
type crossing struct {
	tick             int64
	feeGrowthAtCross *big.Int
}

// Swap trades against the pool. A positive amountSpecified is an exact
// input (fee deducted from it); a negative one is an exact output.
// sqrtPriceLimitX96 bounds how far the price may move, nil meaning the full
// representable range. With commit false the loop runs on copies and the
// pool is left untouched, which is how quotes and route scoring work.
//
// Stopping at the price limit or the edge of the tick range is not an
// error: the result reports a partial fill and the caller decides whether
// that violates its own minimum-output bound.
func (p *Pool) Swap(zeroForOne bool, amountSpecified, sqrtPriceLimitX96 *big.Int, commit bool) (*SwapResult, error) {
	if amountSpecified == nil || amountSpecified.Sign() == 0 {
		return nil, ErrZeroAmount
	}

	limit, err := p.resolvePriceLimit(zeroForOne, sqrtPriceLimitX96)
	if err != nil {
		return nil, err
	}

	exactIn := amountSpecified.Sign() > 0

	// Loop state lives on copies; the pool mutates only on commit.
	sqrtPrice := new(big.Int).Set(p.SqrtPriceX96)
	tick := p.CurrentTick
	liquidity := new(big.Int).Set(p.Liquidity)
	amountRemaining := new(big.Int).Set(amountSpecified)
	feeGrowthGlobal := new(big.Int)
	if zeroForOne {
		feeGrowthGlobal.Set(p.FeeGrowthGlobal0X128)
	} else {
		feeGrowthGlobal.Set(p.FeeGrowthGlobal1X128)
	}

	totalIn := new(big.Int)
	totalOut := new(big.Int)
	var crossings []crossing

	stepNext := new(big.Int)
	stepIn := new(big.Int)
	stepOut := new(big.Int)
	stepFee := new(big.Int)
	nextPrice := new(big.Int)

	steps := 0
	ticksCrossed := 0

	for amountRemaining.Sign() != 0 && sqrtPrice.Cmp(limit) != 0 {
		nextTick, initialized := p.ticks.bitmap.NextInitialized(tick, zeroForOne)
		if !initialized {
			if zeroForOne {
				nextTick = tickmath.MinTick
			} else {
				nextTick = tickmath.MaxTick
			}
		}
		if err := tickmath.SqrtPriceAtTickInto(nextPrice, nextTick); err != nil {
			return nil, err
		}

		// The step target is the nearer of the tick boundary and the limit.
		target := nextPrice
		if zeroForOne && nextPrice.Cmp(limit) < 0 {
			target = limit
		} else if !zeroForOne && nextPrice.Cmp(limit) > 0 {
			target = limit
		}

		if liquidity.Sign() == 0 {
			// Nothing to trade against in this interval: the price slides
			// to the target without amounts or fees.
			sqrtPrice.Set(target)
		} else {
			if err := swapmath.ComputeSwapStep(stepNext, stepIn, stepOut, stepFee, sqrtPrice, target, liquidity, amountRemaining, p.FeeTier); err != nil {
				return nil, err
			}
			steps++

			if exactIn {
				amountRemaining.Sub(amountRemaining, stepIn)
				amountRemaining.Sub(amountRemaining, stepFee)
			} else {
				amountRemaining.Add(amountRemaining, stepOut)
			}
			totalIn.Add(totalIn, stepIn)
			totalIn.Add(totalIn, stepFee)
			totalOut.Add(totalOut, stepOut)

			if stepFee.Sign() > 0 {
				growth := new(big.Int).Lsh(stepFee, 128)
				growth.Div(growth, liquidity)
				feeGrowthGlobal.Add(feeGrowthGlobal, growth)
			}
			sqrtPrice.Set(stepNext)
		}

		if sqrtPrice.Cmp(nextPrice) == 0 {
			// Reached a tick boundary.
			if initialized {
				crossings = append(crossings, crossing{tick: nextTick, feeGrowthAtCross: new(big.Int).Set(feeGrowthGlobal)})
				ticksCrossed++
				if info, ok := p.ticks.get(nextTick); ok {
					if zeroForOne {
						liquidity.Sub(liquidity, info.LiquidityNet)
					} else {
						liquidity.Add(liquidity, info.LiquidityNet)
					}
				}
			}
			if zeroForOne {
				tick = nextTick - 1
			} else {
				tick = nextTick
			}
			// Nothing lies beyond the outermost ticks.
			if nextTick == tickmath.MinTick || nextTick == tickmath.MaxTick {
				break
			}
		} else {
			// Stopped inside the interval; recompute the tick from the price.
			tick, err = tickmath.TickAtSqrtPrice(sqrtPrice)
			if err != nil {
				return nil, err
			}
		}
	}

	result := &SwapResult{
		AmountIn:        totalIn,
		AmountOut:       totalOut,
		AmountRemaining: new(big.Int).Abs(amountRemaining),
		SqrtPriceX96:    new(big.Int).Set(sqrtPrice),
		Tick:            tick,
		Liquidity:       new(big.Int).Set(liquidity),
		TicksCrossed:    ticksCrossed,
		Steps:           steps,
		Partial:         amountRemaining.Sign() != 0,
		LimitReached:    sqrtPrice.Cmp(limit) == 0,
	}

	if commit {
		p.commitSwap(zeroForOne, sqrtPrice, tick, liquidity, feeGrowthGlobal, crossings)
	}
	return result, nil
}

// commitSwap applies the loop's outcome to the pool. Crossed ticks flip
// their outside snapshots with the input-side fee growth recorded at the
// moment of crossing; the other side's global was constant for the swap.
func (p *Pool) commitSwap(zeroForOne bool, sqrtPrice *big.Int, tick int64, liquidity, feeGrowthGlobal *big.Int, crossings []crossing) {
	for _, c := range crossings {
		if zeroForOne {
			p.ticks.cross(c.tick, c.feeGrowthAtCross, p.FeeGrowthGlobal1X128)
		} else {
			p.ticks.cross(c.tick, p.FeeGrowthGlobal0X128, c.feeGrowthAtCross)
		}
	}
	p.SqrtPriceX96.Set(sqrtPrice)
	p.CurrentTick = tick
	p.Liquidity.Set(liquidity)
	if zeroForOne {
		p.FeeGrowthGlobal0X128.Set(feeGrowthGlobal)
	} else {
		p.FeeGrowthGlobal1X128.Set(feeGrowthGlobal)
	}
}

// resolvePriceLimit validates or defaults the swap's price bound.
func (p *Pool) resolvePriceLimit(zeroForOne bool, sqrtPriceLimitX96 *big.Int) (*big.Int, error) {
	if zeroForOne {
		if sqrtPriceLimitX96 == nil {
			return new(big.Int).Add(tickmath.MinSqrtRatio, big.NewInt(1)), nil
		}
		if sqrtPriceLimitX96.Cmp(p.SqrtPriceX96) >= 0 || sqrtPriceLimitX96.Cmp(tickmath.MinSqrtRatio) <= 0 {
			return nil, fmt.Errorf("%w: limit %s, current %s, selling token0", ErrInvalidPriceLimit, sqrtPriceLimitX96, p.SqrtPriceX96)
		}
		return new(big.Int).Set(sqrtPriceLimitX96), nil
	}
	if sqrtPriceLimitX96 == nil {
		return new(big.Int).Sub(tickmath.MaxSqrtRatio, big.NewInt(1)), nil
	}
	if sqrtPriceLimitX96.Cmp(p.SqrtPriceX96) <= 0 || sqrtPriceLimitX96.Cmp(tickmath.MaxSqrtRatio) >= 0 {
		return nil, fmt.Errorf("%w: limit %s, current %s, selling token1", ErrInvalidPriceLimit, sqrtPriceLimitX96, p.SqrtPriceX96)
	}
	return new(big.Int).Set(sqrtPriceLimitX96), nil
}
