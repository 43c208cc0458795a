package liquiditymath

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePriceSqrt(reserve1, reserve0 int64) *big.Int {
	num := new(big.Int).Mul(big.NewInt(reserve1), new(big.Int).Lsh(big.NewInt(1), 192))
	ratio := new(big.Int).Div(num, big.NewInt(reserve0))
	return new(big.Int).Sqrt(ratio)
}

func TestAddDelta(t *testing.T) {
	dest := new(big.Int)

	require.NoError(t, AddDelta(dest, big.NewInt(1), big.NewInt(0)))
	assert.Equal(t, int64(1), dest.Int64())

	require.NoError(t, AddDelta(dest, big.NewInt(1), big.NewInt(-1)))
	assert.Zero(t, dest.Sign())

	require.NoError(t, AddDelta(dest, big.NewInt(1), big.NewInt(1)))
	assert.Equal(t, int64(2), dest.Int64())

	t.Run("overflow", func(t *testing.T) {
		max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
		err := AddDelta(dest, max, big.NewInt(1))
		assert.ErrorIs(t, err, ErrLiquidityOverflow)
	})

	t.Run("underflow", func(t *testing.T) {
		err := AddDelta(dest, big.NewInt(3), big.NewInt(-4))
		assert.ErrorIs(t, err, ErrLiquidityUnderflow)
	})
}

func TestLiquidityForAmounts(t *testing.T) {
	sqrtA := encodePriceSqrt(100, 110)
	sqrtB := encodePriceSqrt(110, 100)

	t.Run("price inside uses the binding amount", func(t *testing.T) {
		price := encodePriceSqrt(1, 1)
		liquidity, err := LiquidityForAmounts(price, sqrtA, sqrtB, big.NewInt(100), big.NewInt(200))
		require.NoError(t, err)
		assert.Equal(t, int64(2148), liquidity.Int64())
	})

	t.Run("price below uses amount0", func(t *testing.T) {
		price := encodePriceSqrt(99, 110)
		liquidity, err := LiquidityForAmounts(price, sqrtA, sqrtB, big.NewInt(100), big.NewInt(200))
		require.NoError(t, err)
		assert.Equal(t, int64(1048), liquidity.Int64())
	})

	t.Run("price above uses amount1", func(t *testing.T) {
		price := encodePriceSqrt(111, 100)
		liquidity, err := LiquidityForAmounts(price, sqrtA, sqrtB, big.NewInt(100), big.NewInt(200))
		require.NoError(t, err)
		assert.Equal(t, int64(2097), liquidity.Int64())
	})

	t.Run("empty range rejected", func(t *testing.T) {
		_, err := LiquidityForAmount0(sqrtA, sqrtA, big.NewInt(100))
		assert.ErrorIs(t, err, ErrInvalidPriceRange)
	})
}

// Converting amounts to liquidity and back never returns more than was
// deposited.
func TestRoundTrip_AmountsLiquidityAmounts(t *testing.T) {
	sqrtA := encodePriceSqrt(100, 110)
	sqrtB := encodePriceSqrt(110, 100)
	prices := []*big.Int{
		encodePriceSqrt(99, 110),
		encodePriceSqrt(1, 1),
		encodePriceSqrt(111, 100),
	}

	amount0In := big.NewInt(1_000_000)
	amount1In := big.NewInt(2_000_000)

	for _, price := range prices {
		liquidity, err := LiquidityForAmounts(price, sqrtA, sqrtB, amount0In, amount1In)
		require.NoError(t, err)

		amount0Out, amount1Out, err := AmountsForLiquidity(price, sqrtA, sqrtB, liquidity)
		require.NoError(t, err)

		assert.True(t, amount0Out.Cmp(amount0In) <= 0, "price %s amount0 %s", price, amount0Out)
		assert.True(t, amount1Out.Cmp(amount1In) <= 0, "price %s amount1 %s", price, amount1Out)
	}
}
