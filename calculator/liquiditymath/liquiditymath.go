// Package liquiditymath handles liquidity deltas and the conversion between
// token amounts and liquidity over a price range.
package liquiditymath

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/defistate/defistate-amm-go/calculator/sqrtpricemath"
)

var (
	maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

	ErrLiquidityOverflow  = errors.New("liquidity overflow")
	ErrLiquidityUnderflow = errors.New("liquidity underflow")
	ErrInvalidPriceRange  = errors.New("invalid price range")
)

// AddDelta adds a signed liquidity delta to an unsigned liquidity value.
// The result must stay within uint128 bounds.
func AddDelta(dest *big.Int, x *big.Int, y *big.Int) error {
	dest.Add(x, y)
	if dest.Sign() < 0 {
		return fmt.Errorf("%w: %s + %s", ErrLiquidityUnderflow, x, y)
	}
	if dest.Cmp(maxUint128) > 0 {
		return fmt.Errorf("%w: %s + %s", ErrLiquidityOverflow, x, y)
	}
	return nil
}

// LiquidityForAmount0 returns the largest liquidity fundable with amount0
// across [sqrtRatioAX96, sqrtRatioBX96].
func LiquidityForAmount0(sqrtRatioAX96, sqrtRatioBX96, amount0 *big.Int) (*big.Int, error) {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}
	if sqrtRatioAX96.Sign() <= 0 || sqrtRatioAX96.Cmp(sqrtRatioBX96) == 0 {
		return nil, fmt.Errorf("%w: [%s, %s]", ErrInvalidPriceRange, sqrtRatioAX96, sqrtRatioBX96)
	}

	// L = amount0 * (sqrtA * sqrtB / Q96) / (sqrtB - sqrtA)
	intermediate := new(big.Int).Mul(sqrtRatioAX96, sqrtRatioBX96)
	intermediate.Div(intermediate, sqrtpricemath.Q96)
	liquidity := new(big.Int).Mul(amount0, intermediate)
	return liquidity.Div(liquidity, new(big.Int).Sub(sqrtRatioBX96, sqrtRatioAX96)), nil
}

// LiquidityForAmount1 returns the largest liquidity fundable with amount1
// across [sqrtRatioAX96, sqrtRatioBX96].
func LiquidityForAmount1(sqrtRatioAX96, sqrtRatioBX96, amount1 *big.Int) (*big.Int, error) {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}
	if sqrtRatioAX96.Sign() <= 0 || sqrtRatioAX96.Cmp(sqrtRatioBX96) == 0 {
		return nil, fmt.Errorf("%w: [%s, %s]", ErrInvalidPriceRange, sqrtRatioAX96, sqrtRatioBX96)
	}

	// L = amount1 * Q96 / (sqrtB - sqrtA)
	liquidity := new(big.Int).Mul(amount1, sqrtpricemath.Q96)
	return liquidity.Div(liquidity, new(big.Int).Sub(sqrtRatioBX96, sqrtRatioAX96)), nil
}

// LiquidityForAmounts returns the largest liquidity fundable with both
// amounts given the current price. Outside the range only one token funds
// the position; inside, the binding constraint is the smaller of the two.
func LiquidityForAmounts(sqrtRatioX96, sqrtRatioAX96, sqrtRatioBX96, amount0, amount1 *big.Int) (*big.Int, error) {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}

	switch {
	case sqrtRatioX96.Cmp(sqrtRatioAX96) <= 0:
		return LiquidityForAmount0(sqrtRatioAX96, sqrtRatioBX96, amount0)
	case sqrtRatioX96.Cmp(sqrtRatioBX96) < 0:
		liquidity0, err := LiquidityForAmount0(sqrtRatioX96, sqrtRatioBX96, amount0)
		if err != nil {
			return nil, err
		}
		liquidity1, err := LiquidityForAmount1(sqrtRatioAX96, sqrtRatioX96, amount1)
		if err != nil {
			return nil, err
		}
		if liquidity0.Cmp(liquidity1) < 0 {
			return liquidity0, nil
		}
		return liquidity1, nil
	default:
		return LiquidityForAmount1(sqrtRatioAX96, sqrtRatioBX96, amount1)
	}
}

// AmountsForLiquidity returns the token amounts represented by liquidity
// across [sqrtRatioAX96, sqrtRatioBX96] at the current price, rounding down.
func AmountsForLiquidity(sqrtRatioX96, sqrtRatioAX96, sqrtRatioBX96, liquidity *big.Int) (amount0, amount1 *big.Int, err error) {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}

	amount0 = new(big.Int)
	amount1 = new(big.Int)

	switch {
	case sqrtRatioX96.Cmp(sqrtRatioAX96) <= 0:
		err = sqrtpricemath.Amount0Delta(amount0, sqrtRatioAX96, sqrtRatioBX96, liquidity, false)
	case sqrtRatioX96.Cmp(sqrtRatioBX96) < 0:
		if err = sqrtpricemath.Amount0Delta(amount0, sqrtRatioX96, sqrtRatioBX96, liquidity, false); err != nil {
			return nil, nil, err
		}
		sqrtpricemath.Amount1Delta(amount1, sqrtRatioAX96, sqrtRatioX96, liquidity, false)
	default:
		sqrtpricemath.Amount1Delta(amount1, sqrtRatioAX96, sqrtRatioBX96, liquidity, false)
	}
	if err != nil {
		return nil, nil, err
	}
	return amount0, amount1, nil
}
