package swapmath

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

func expandTo18Decimals(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

// Known step from the reference test vectors: exact input of one token
// with a 0.06% fee stops short of the 1:1.01 price target.
func TestComputeSwapStep_ExactInCapped(t *testing.T) {
	price := encodePriceSqrt(1, 1)
	priceTarget := encodePriceSqrt(101, 100)
	liquidity := expandTo18Decimals(2)
	amount := expandTo18Decimals(1)
	feePips := uint64(600)

	sqrtQ, amountIn, amountOut, feeAmount := new(big.Int), new(big.Int), new(big.Int), new(big.Int)
	err := ComputeSwapStep(sqrtQ, amountIn, amountOut, feeAmount, price, priceTarget, liquidity, amount, feePips)
	require.NoError(t, err)

	expectIn, _ := new(big.Int).SetString("9975124224178055", 10)
	expectFee, _ := new(big.Int).SetString("5988667735148", 10)
	expectOut, _ := new(big.Int).SetString("9925619580021728", 10)

	assert.Zero(t, expectIn.Cmp(amountIn), "amountIn %s", amountIn)
	assert.Zero(t, expectFee.Cmp(feeAmount), "feeAmount %s", feeAmount)
	assert.Zero(t, expectOut.Cmp(amountOut), "amountOut %s", amountOut)
	assert.True(t, new(big.Int).Add(amountIn, feeAmount).Cmp(amount) < 0)
	assert.Zero(t, sqrtQ.Cmp(priceTarget), "price should stop at target")
}

// Input larger than the interval can absorb: the step reaches the target
// and the leftover stays unspent.
func TestComputeSwapStep_ExactOutCapped(t *testing.T) {
	price := encodePriceSqrt(1, 1)
	priceTarget := encodePriceSqrt(101, 100)
	liquidity := expandTo18Decimals(2)
	amount := new(big.Int).Neg(expandTo18Decimals(1))
	feePips := uint64(600)

	sqrtQ, amountIn, amountOut, feeAmount := new(big.Int), new(big.Int), new(big.Int), new(big.Int)
	err := ComputeSwapStep(sqrtQ, amountIn, amountOut, feeAmount, price, priceTarget, liquidity, amount, feePips)
	require.NoError(t, err)

	expectIn, _ := new(big.Int).SetString("9975124224178055", 10)
	expectFee, _ := new(big.Int).SetString("5988667735148", 10)
	expectOut, _ := new(big.Int).SetString("9925619580021728", 10)

	assert.Zero(t, expectIn.Cmp(amountIn), "amountIn %s", amountIn)
	assert.Zero(t, expectFee.Cmp(feeAmount), "feeAmount %s", feeAmount)
	assert.Zero(t, expectOut.Cmp(amountOut), "amountOut %s", amountOut)
	assert.True(t, amountOut.Cmp(new(big.Int).Neg(amount)) < 0)
	assert.Zero(t, sqrtQ.Cmp(priceTarget), "price should stop at target")
}

func TestComputeSwapStep_Invariants(t *testing.T) {
	for i := 0; i < 1000; i++ {
		sqrtPriceRaw := newRandInt(160)
		sqrtPriceTargetRaw := newRandInt(160)
		liquidity := newRandInt(128)
		amountRemaining := newRandInt(256)
		if i%2 == 1 {
			amountRemaining.Neg(amountRemaining)
		}
		feePips := newRandInt(20).Uint64()

		if sqrtPriceRaw.Sign() == 0 {
			sqrtPriceRaw.SetInt64(1)
		}
		if sqrtPriceTargetRaw.Sign() == 0 {
			sqrtPriceTargetRaw.SetInt64(1)
		}
		if feePips == 0 {
			feePips = 1
		}
		if feePips >= 1_000_000 {
			feePips = 999_999
		}

		sqrtQ, amountIn, amountOut, feeAmount := new(big.Int), new(big.Int), new(big.Int), new(big.Int)
		err := ComputeSwapStep(
			sqrtQ, amountIn, amountOut, feeAmount,
			sqrtPriceRaw,
			sqrtPriceTargetRaw,
			liquidity,
			amountRemaining,
			feePips,
		)
		if err != nil {
			continue
		}

		sumIn := new(big.Int).Add(amountIn, feeAmount)
		assert.True(t, sumIn.BitLen() <= 256)

		if amountRemaining.Sign() < 0 {
			assert.True(t, amountOut.Cmp(new(big.Int).Neg(amountRemaining)) <= 0)
		} else {
			assert.True(t, sumIn.Cmp(amountRemaining) <= 0)
		}

		if sqrtPriceRaw.Cmp(sqrtPriceTargetRaw) == 0 {
			assert.Zero(t, amountIn.Sign())
			assert.Zero(t, amountOut.Sign())
			assert.Zero(t, feeAmount.Sign())
			assert.Zero(t, sqrtQ.Cmp(sqrtPriceTargetRaw))
		}

		// Stopping short of the target means the budget was fully consumed.
		if sqrtQ.Cmp(sqrtPriceTargetRaw) != 0 {
			if amountRemaining.Sign() < 0 {
				assert.Zero(t, amountOut.Cmp(new(big.Int).Neg(amountRemaining)))
			} else {
				assert.Zero(t, sumIn.Cmp(amountRemaining))
			}
		}

		// The next price never overshoots the target.
		if sqrtPriceTargetRaw.Cmp(sqrtPriceRaw) <= 0 {
			assert.True(t, sqrtQ.Cmp(sqrtPriceRaw) <= 0)
			assert.True(t, sqrtQ.Cmp(sqrtPriceTargetRaw) >= 0)
		} else {
			assert.True(t, sqrtQ.Cmp(sqrtPriceRaw) >= 0)
			assert.True(t, sqrtQ.Cmp(sqrtPriceTargetRaw) <= 0)
		}
	}
}
