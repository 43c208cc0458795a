// Package swapmath computes a single swap step: how far the price moves
// within one tick interval, the amounts exchanged, and the fee charged.
package swapmath

import (
	"math/big"
	"sync"

	"github.com/defistate/defistate-amm-go/calculator/sqrtpricemath"
)

var (
	// feeDenominator expresses fees in pips, 1e6 == 100%.
	feeDenominator = big.NewInt(1_000_000)
	one            = big.NewInt(1)
)

// stepCalc holds reusable big.Int objects for a single ComputeSwapStep call.
// Instances are managed by a sync.Pool for concurrent use.
type stepCalc struct {
	sqrtRatioNextX96 *big.Int
	amountIn         *big.Int
	amountOut        *big.Int
	feeAmount        *big.Int

	amountRemainingLessFee *big.Int
	amountRemainingAbs     *big.Int
	tempValue              *big.Int
	product                *big.Int
	rem                    *big.Int
}

var stepPool = sync.Pool{
	New: func() any {
		return &stepCalc{
			sqrtRatioNextX96:       new(big.Int),
			amountIn:               new(big.Int),
			amountOut:              new(big.Int),
			feeAmount:              new(big.Int),
			amountRemainingLessFee: new(big.Int),
			amountRemainingAbs:     new(big.Int),
			tempValue:              new(big.Int),
			product:                new(big.Int),
			rem:                    new(big.Int),
		}
	},
}

// ComputeSwapStep advances the price from sqrtRatioCurrentX96 toward
// sqrtRatioTargetX96, bounded by amountRemaining. A non-negative
// amountRemaining means exact input (fee deducted from it first); a negative
// one means exact output. Results are written into the four destination
// integers so callers can reuse buffers across loop iterations.
func ComputeSwapStep(
	sqrtRatioNextX96 *big.Int,
	amountIn *big.Int,
	amountOut *big.Int,
	feeAmount *big.Int,

	sqrtRatioCurrentX96 *big.Int,
	sqrtRatioTargetX96 *big.Int,
	liquidity *big.Int,
	amountRemaining *big.Int,
	feePips uint64,
) error {
	s := stepPool.Get().(*stepCalc)
	defer stepPool.Put(s)

	if err := s.computeSwapStep(sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, amountRemaining, feePips); err != nil {
		return err
	}

	// Copy out of the pooled struct so it can be safely reused.
	sqrtRatioNextX96.Set(s.sqrtRatioNextX96)
	amountIn.Set(s.amountIn)
	amountOut.Set(s.amountOut)
	feeAmount.Set(s.feeAmount)
	return nil
}

func (s *stepCalc) computeSwapStep(
	sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, amountRemaining *big.Int, feePips uint64,
) error {
	zeroForOne := sqrtRatioCurrentX96.Cmp(sqrtRatioTargetX96) >= 0
	exactIn := amountRemaining.Sign() >= 0

	s.amountIn.SetInt64(0)
	s.amountOut.SetInt64(0)
	s.feeAmount.SetInt64(0)
	fee := s.tempValue.SetUint64(feePips)

	if exactIn {
		s.tempValue.Sub(feeDenominator, fee)
		s.mulDiv(s.amountRemainingLessFee, amountRemaining, s.tempValue, feeDenominator)

		if zeroForOne {
			if err := sqrtpricemath.Amount0Delta(s.amountIn, sqrtRatioTargetX96, sqrtRatioCurrentX96, liquidity, true); err != nil {
				return err
			}
		} else {
			sqrtpricemath.Amount1Delta(s.amountIn, sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, true)
		}

		if s.amountRemainingLessFee.Cmp(s.amountIn) >= 0 {
			s.sqrtRatioNextX96.Set(sqrtRatioTargetX96)
		} else {
			if err := sqrtpricemath.NextSqrtPriceFromInput(s.sqrtRatioNextX96, sqrtRatioCurrentX96, liquidity, s.amountRemainingLessFee, zeroForOne); err != nil {
				return err
			}
		}
	} else {
		s.amountRemainingAbs.Neg(amountRemaining)

		if zeroForOne {
			sqrtpricemath.Amount1Delta(s.amountOut, sqrtRatioTargetX96, sqrtRatioCurrentX96, liquidity, false)
		} else {
			if err := sqrtpricemath.Amount0Delta(s.amountOut, sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, false); err != nil {
				return err
			}
		}

		if s.amountRemainingAbs.Cmp(s.amountOut) >= 0 {
			s.sqrtRatioNextX96.Set(sqrtRatioTargetX96)
		} else {
			if err := sqrtpricemath.NextSqrtPriceFromOutput(s.sqrtRatioNextX96, sqrtRatioCurrentX96, liquidity, s.amountRemainingAbs, zeroForOne); err != nil {
				return err
			}
		}
	}

	reachedTarget := sqrtRatioTargetX96.Cmp(s.sqrtRatioNextX96) == 0

	// Recompute amounts from the price actually reached. The pre-computed
	// value above is only reusable when the step stopped exactly on target.
	if zeroForOne {
		if !(reachedTarget && exactIn) {
			if err := sqrtpricemath.Amount0Delta(s.amountIn, s.sqrtRatioNextX96, sqrtRatioCurrentX96, liquidity, true); err != nil {
				return err
			}
		}
		if !(reachedTarget && !exactIn) {
			sqrtpricemath.Amount1Delta(s.amountOut, s.sqrtRatioNextX96, sqrtRatioCurrentX96, liquidity, false)
		}
	} else {
		if !(reachedTarget && exactIn) {
			sqrtpricemath.Amount1Delta(s.amountIn, sqrtRatioCurrentX96, s.sqrtRatioNextX96, liquidity, true)
		}
		if !(reachedTarget && !exactIn) {
			if err := sqrtpricemath.Amount0Delta(s.amountOut, sqrtRatioCurrentX96, s.sqrtRatioNextX96, liquidity, false); err != nil {
				return err
			}
		}
	}

	// Exact-output never pays out more than was asked for.
	if !exactIn && s.amountOut.Cmp(s.amountRemainingAbs) > 0 {
		s.amountOut.Set(s.amountRemainingAbs)
	}

	if exactIn && s.sqrtRatioNextX96.Cmp(sqrtRatioTargetX96) != 0 {
		// Input exhausted before the target: whatever the price movement
		// did not consume is taken as fee.
		s.feeAmount.Sub(amountRemaining, s.amountIn)
	} else {
		fee = s.tempValue.SetUint64(feePips)
		s.amountRemainingLessFee.Sub(feeDenominator, fee)
		s.mulDivRoundingUp(s.feeAmount, s.amountIn, fee, s.amountRemainingLessFee)
	}

	return nil
}

func (s *stepCalc) mulDiv(dest, a, b, c *big.Int) {
	s.product.Mul(a, b)
	dest.Div(s.product, c)
}

func (s *stepCalc) mulDivRoundingUp(dest, a, b, c *big.Int) {
	s.product.Mul(a, b)
	dest.Div(s.product, c)
	if s.rem.Rem(s.product, c).Sign() > 0 {
		dest.Add(dest, one)
	}
}
