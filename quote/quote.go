// Package quote converts Q64.96 sqrt prices into decimal prices for
// display and reporting. Pool math never goes through this package;
// every conversion here is lossy by construction.
package quote

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// pricePrecision is the number of decimal places kept on conversions.
const pricePrecision = 18

// q192 is 2^192, the denominator of a squared Q64.96 value.
var q192 = new(big.Int).Lsh(big.NewInt(1), 192)

// SpotPrice returns the price of token0 denominated in token1 for a
// pool at the given sqrt price, in raw token units.
func SpotPrice(sqrtPriceX96 *big.Int) decimal.Decimal {
	ratio := new(big.Int).Mul(sqrtPriceX96, sqrtPriceX96)
	return decimal.NewFromBigInt(ratio, 0).DivRound(decimal.NewFromBigInt(q192, 0), pricePrecision)
}

// AdjustedSpotPrice returns the token0 price in token1 scaled for token
// decimals, so the result reads in whole-token terms.
func AdjustedSpotPrice(sqrtPriceX96 *big.Int, decimals0, decimals1 int32) decimal.Decimal {
	return SpotPrice(sqrtPriceX96).Shift(decimals0 - decimals1)
}

// Invert flips a price to the opposite denomination. The inverse of a
// zero price is zero.
func Invert(price decimal.Decimal) decimal.Decimal {
	if price.IsZero() {
		return decimal.Zero
	}
	return decimal.NewFromInt(1).DivRound(price, pricePrecision)
}
