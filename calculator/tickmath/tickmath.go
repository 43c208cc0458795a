// Package tickmath converts between tick indices and Q64.96 sqrt prices.
//
// A tick i corresponds to the price 1.0001^i; the pool tracks sqrt(price)
// scaled by 2^96. The closed-form ladder below multiplies pre-computed
// Q128.128 constants sqrt(1.0001^2^k) for each set bit of |tick|, which is
// both exact to within one ulp and allocation-free on the hot path.
package tickmath

import (
	"errors"
	"math/big"
	"sync"

	"github.com/holiman/uint256"
)

const (
	// MinTick is the lowest tick index a pool can reach.
	MinTick = int64(-887272)
	// MaxTick is the highest tick index a pool can reach.
	MaxTick = int64(887272)
)

var (
	// MinSqrtRatio is the sqrt price at MinTick, the inclusive lower price bound.
	MinSqrtRatio = big.NewInt(4295128739)
	// MaxSqrtRatio is the sqrt price at MaxTick, the exclusive upper price bound.
	MaxSqrtRatio, _ = new(big.Int).SetString("1461446703485210103287273052203988822378723970342", 10)

	ErrTickOutOfBounds      = errors.New("tick out of bounds")
	ErrSqrtPriceOutOfBounds = errors.New("sqrt price out of bounds")

	one        = uint256.NewInt(1)
	maxUint256 = uint256.MustFromBig(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)))

	// sqrt(1.0001^2^k) in UQ128.128 for k = 0..19, with the identity at
	// index 1 and the low-32-bit rounding mask at index 21.
	ratioConstants = [22]*uint256.Int{
		uint256.MustFromHex("0xfffcb933bd6fad37aa2d162d1a594001"),
		uint256.MustFromHex("0x100000000000000000000000000000000"),
		uint256.MustFromHex("0xfff97272373d413259a46990580e213a"),
		uint256.MustFromHex("0xfff2e50f5f656932ef12357cf3c7fdcc"),
		uint256.MustFromHex("0xffe5caca7e10e4e61c3624eaa0941cd0"),
		uint256.MustFromHex("0xffcb9843d60f6159c9db58835c926644"),
		uint256.MustFromHex("0xff973b41fa98c081472e6896dfb254c0"),
		uint256.MustFromHex("0xff2ea16466c96a3843ec78b326b52861"),
		uint256.MustFromHex("0xfe5dee046a99a2a811c461f1969c3053"),
		uint256.MustFromHex("0xfcbe86c7900a88aedcffc83b479aa3a4"),
		uint256.MustFromHex("0xf987a7253ac413176f2b074cf7815e54"),
		uint256.MustFromHex("0xf3392b0822b70005940c7a398e4b70f3"),
		uint256.MustFromHex("0xe7159475a2c29b7443b29c7fa6e889d9"),
		uint256.MustFromHex("0xd097f3bdfd2022b8845ad8f792aa5825"),
		uint256.MustFromHex("0xa9f746462d870fdf8a65dc1f90e061e5"),
		uint256.MustFromHex("0x70d869a156d2a1b890bb3df62baf32f7"),
		uint256.MustFromHex("0x31be135f97d08fd981231505542fcfa6"),
		uint256.MustFromHex("0x9aa508b5b7a84e1c677de54f3e99bc9"),
		uint256.MustFromHex("0x5d6af8dedb81196699c329225ee604"),
		uint256.MustFromHex("0x2216e584f5fa1ea926041bedfe98"),
		uint256.MustFromHex("0x48a170391f7dc42444e8fa2"),
		uint256.MustFromHex("0xffffffff"),
	}
)

// scratch holds reusable integers so the ladder allocates nothing per call.
type scratch struct {
	ratio *uint256.Int
	rem   *uint256.Int
	temp  *big.Int
}

var scratchPool = sync.Pool{
	New: func() any {
		return &scratch{
			ratio: new(uint256.Int),
			rem:   new(uint256.Int),
			temp:  new(big.Int),
		}
	},
}

// SqrtPriceAtTickInto writes sqrt(1.0001^tick) * 2^96 into dest.
// This is the allocation-free form used inside swap loops.
func SqrtPriceAtTickInto(dest *big.Int, tick int64) error {
	if tick < MinTick || tick > MaxTick {
		return ErrTickOutOfBounds
	}

	s := scratchPool.Get().(*scratch)
	defer scratchPool.Put(s)

	absTick := tick
	if tick < 0 {
		absTick = -tick
	}

	if (absTick & 0x1) != 0 {
		s.ratio.Set(ratioConstants[0])
	} else {
		s.ratio.Set(ratioConstants[1])
	}
	for i := 2; i < 21; i++ {
		if (absTick & (1 << (i - 1))) != 0 {
			s.ratio.Mul(s.ratio, ratioConstants[i]).Rsh(s.ratio, 128)
		}
	}

	// Positive ticks use the reciprocal of the negative-tick product.
	if tick > 0 {
		s.ratio.Div(maxUint256, s.ratio)
	}

	// Shift from Q128.128 down to Q64.96, rounding up so the round trip
	// through TickAtSqrtPrice lands back on the same tick.
	s.rem.And(s.ratio, ratioConstants[21])
	s.ratio.Rsh(s.ratio, 32)
	if s.rem.Sign() > 0 {
		s.ratio.Add(s.ratio, one)
	}

	s.ratio.IntoBig(&dest)
	return nil
}

// SqrtPriceAtTick returns sqrt(1.0001^tick) * 2^96 as a fresh big.Int.
func SqrtPriceAtTick(tick int64) (*big.Int, error) {
	dest := new(big.Int)
	if err := SqrtPriceAtTickInto(dest, tick); err != nil {
		return nil, err
	}
	return dest, nil
}

// TickAtSqrtPrice returns the greatest tick whose sqrt price is at most
// sqrtPriceX96. The input must lie in [MinSqrtRatio, MaxSqrtRatio).
func TickAtSqrtPrice(sqrtPriceX96 *big.Int) (int64, error) {
	if sqrtPriceX96.Cmp(MinSqrtRatio) < 0 || sqrtPriceX96.Cmp(MaxSqrtRatio) >= 0 {
		return 0, ErrSqrtPriceOutOfBounds
	}

	// SqrtPriceAtTick is strictly increasing, so a plain binary search over
	// the tick range finds the answer in at most 21 ladder evaluations.
	low := MinTick
	high := MaxTick
	var tick int64

	s := scratchPool.Get().(*scratch)
	defer scratchPool.Put(s)
	probe := s.temp

	for low <= high {
		mid := (low + high) / 2
		if err := SqrtPriceAtTickInto(probe, mid); err != nil {
			return 0, err
		}
		if probe.Cmp(sqrtPriceX96) <= 0 {
			tick = mid
			low = mid + 1
		} else {
			high = mid - 1
		}
	}
	return tick, nil
}

// SqrtPriceFromPrice converts a token1/token0 price in X96 fixed point to
// the Q64.96 sqrt price, rejecting values outside the representable range.
func SqrtPriceFromPrice(priceX96 *big.Int) (*big.Int, error) {
	if priceX96.Sign() <= 0 {
		return nil, ErrSqrtPriceOutOfBounds
	}
	// sqrt(p * 2^96) * 2^48 == sqrt(p * 2^192) == sqrt(p) * 2^96.
	sqrtP := new(big.Int).Lsh(priceX96, 96)
	sqrtP.Sqrt(sqrtP)
	if sqrtP.Cmp(MinSqrtRatio) < 0 || sqrtP.Cmp(MaxSqrtRatio) >= 0 {
		return nil, ErrSqrtPriceOutOfBounds
	}
	return sqrtP, nil
}

// PriceFromSqrtPrice converts a Q64.96 sqrt price back to the token1/token0
// price in X96 fixed point, rounding down.
func PriceFromSqrtPrice(sqrtPriceX96 *big.Int) *big.Int {
	price := new(big.Int).Mul(sqrtPriceX96, sqrtPriceX96)
	return price.Rsh(price, 96)
}
