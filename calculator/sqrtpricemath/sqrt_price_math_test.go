package sqrtpricemath

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRandInt(bits int) *big.Int {
	max := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		panic(err)
	}
	return n
}

func encodePriceSqrt(reserve1, reserve0 int64) *big.Int {
	num := new(big.Int).Mul(big.NewInt(reserve1), new(big.Int).Lsh(big.NewInt(1), 192))
	ratio := new(big.Int).Div(num, big.NewInt(reserve0))
	return new(big.Int).Sqrt(ratio)
}

func TestAmount0Delta_RoundingBounds(t *testing.T) {
	for i := 0; i < 1000; i++ {
		sqrtP := newRandInt(160)
		sqrtQ := newRandInt(160)
		liquidity := newRandInt(128)

		if sqrtP.Sign() == 0 {
			sqrtP.SetInt64(1)
		}
		if sqrtQ.Sign() == 0 {
			sqrtQ.SetInt64(1)
		}

		amount0Down := new(big.Int)
		err := Amount0Delta(amount0Down, sqrtP, sqrtQ, liquidity, false)
		require.NoError(t, err)

		amount0Up := new(big.Int)
		err = Amount0Delta(amount0Up, sqrtP, sqrtQ, liquidity, true)
		require.NoError(t, err)

		// Rounding up and down straddle the true value by at most 1.
		assert.True(t, amount0Down.Cmp(amount0Up) <= 0)
		diff := new(big.Int).Sub(amount0Up, amount0Down)
		assert.True(t, diff.Cmp(big.NewInt(2)) < 0)
	}
}

func TestAmount1Delta_RoundingBounds(t *testing.T) {
	for i := 0; i < 1000; i++ {
		sqrtP := newRandInt(160)
		sqrtQ := newRandInt(160)
		liquidity := newRandInt(128)

		if sqrtP.Sign() == 0 {
			sqrtP.SetInt64(1)
		}
		if sqrtQ.Sign() == 0 {
			sqrtQ.SetInt64(1)
		}

		amount1Down := new(big.Int)
		Amount1Delta(amount1Down, sqrtP, sqrtQ, liquidity, false)

		amount1Up := new(big.Int)
		Amount1Delta(amount1Up, sqrtP, sqrtQ, liquidity, true)

		assert.True(t, amount1Down.Cmp(amount1Up) <= 0)
		diff := new(big.Int).Sub(amount1Up, amount1Down)
		assert.True(t, diff.Cmp(big.NewInt(2)) < 0)
	}
}

func TestAmount0Delta_KnownValue(t *testing.T) {
	// 1e18 liquidity between prices 1 and 1.21 owes just over 1/11 token0.
	liquidity := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	amount0 := new(big.Int)
	err := Amount0Delta(amount0, encodePriceSqrt(1, 1), encodePriceSqrt(121, 100), liquidity, true)
	require.NoError(t, err)

	expected, _ := new(big.Int).SetString("90909090909090910", 10)
	assert.Zero(t, expected.Cmp(amount0), "got %s", amount0)

	amount0Down := new(big.Int)
	err = Amount0Delta(amount0Down, encodePriceSqrt(1, 1), encodePriceSqrt(121, 100), liquidity, false)
	require.NoError(t, err)
	assert.Zero(t, new(big.Int).Sub(amount0, big.NewInt(1)).Cmp(amount0Down))
}

func TestNextSqrtPriceFromInput(t *testing.T) {
	t.Run("rejects zero price", func(t *testing.T) {
		err := NextSqrtPriceFromInput(new(big.Int), big.NewInt(0), big.NewInt(1), big.NewInt(1), true)
		assert.ErrorIs(t, err, ErrSqrtPriceZero)
	})

	t.Run("rejects zero liquidity", func(t *testing.T) {
		err := NextSqrtPriceFromInput(new(big.Int), big.NewInt(1), big.NewInt(0), big.NewInt(1), true)
		assert.ErrorIs(t, err, ErrLiquidityZero)
	})

	t.Run("zero amount keeps price", func(t *testing.T) {
		sqrtP := encodePriceSqrt(1, 1)
		dest := new(big.Int)
		err := NextSqrtPriceFromInput(dest, sqrtP, big.NewInt(1e18), big.NewInt(0), true)
		require.NoError(t, err)
		assert.Zero(t, sqrtP.Cmp(dest))
	})

	t.Run("direction invariants", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			sqrtP := newRandInt(160)
			liquidity := newRandInt(128)
			amountIn := newRandInt(256)
			zeroForOne := i%2 == 0

			if sqrtP.Sign() == 0 {
				sqrtP.SetInt64(1)
			}
			if liquidity.Sign() == 0 {
				liquidity.SetInt64(1)
			}

			sqrtQ := new(big.Int)
			err := NextSqrtPriceFromInput(sqrtQ, sqrtP, liquidity, amountIn, zeroForOne)
			if err != nil {
				continue
			}

			if zeroForOne {
				// Selling token0 moves the price down, and the charged
				// amount never exceeds what was offered.
				assert.True(t, sqrtQ.Cmp(sqrtP) <= 0)
				delta := new(big.Int)
				if err := Amount0Delta(delta, sqrtQ, sqrtP, liquidity, true); err == nil {
					assert.True(t, amountIn.Cmp(delta) >= 0)
				}
			} else {
				assert.True(t, sqrtQ.Cmp(sqrtP) >= 0)
				delta := new(big.Int)
				Amount1Delta(delta, sqrtP, sqrtQ, liquidity, true)
				assert.True(t, amountIn.Cmp(delta) >= 0)
			}
		}
	})
}

func TestNextSqrtPriceFromOutput(t *testing.T) {
	t.Run("output exceeding reserves fails", func(t *testing.T) {
		sqrtP := encodePriceSqrt(1, 1)
		err := NextSqrtPriceFromOutput(new(big.Int), sqrtP, big.NewInt(1024), big.NewInt(1e18), true)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPriceOverflow)
	})

	t.Run("direction invariants", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			sqrtP := newRandInt(160)
			liquidity := newRandInt(128)
			amountOut := newRandInt(100)
			zeroForOne := i%2 == 0

			if sqrtP.Sign() == 0 {
				sqrtP.SetInt64(1)
			}
			if liquidity.Sign() == 0 {
				liquidity.SetInt64(1)
			}

			sqrtQ := new(big.Int)
			err := NextSqrtPriceFromOutput(sqrtQ, sqrtP, liquidity, amountOut, zeroForOne)
			if err != nil {
				continue
			}

			// Withdrawing token1 (zeroForOne) moves the price down;
			// withdrawing token0 moves it up.
			if zeroForOne {
				assert.True(t, sqrtQ.Cmp(sqrtP) <= 0)
			} else {
				assert.True(t, sqrtQ.Cmp(sqrtP) >= 0)
			}
		}
	})
}
