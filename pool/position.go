package pool

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Position is one owner's liquidity over a tick range, with the fee
// checkpoint that makes owed fees computable without per-swap iteration.
type Position struct {
	Owner     common.Address
	TickLower int64
	TickUpper int64
	Liquidity *big.Int
	// Fee growth inside the range at the last checkpoint, in X128.
	FeeGrowthInside0LastX128 *big.Int
	FeeGrowthInside1LastX128 *big.Int
	// Fees settled but not yet collected.
	TokensOwed0 *big.Int
	TokensOwed1 *big.Int
}

// NewPosition returns an empty position for a range.
func NewPosition(owner common.Address, tickLower, tickUpper int64) *Position {
	return &Position{
		Owner:                    owner,
		TickLower:                tickLower,
		TickUpper:                tickUpper,
		Liquidity:                new(big.Int),
		FeeGrowthInside0LastX128: new(big.Int),
		FeeGrowthInside1LastX128: new(big.Int),
		TokensOwed0:              new(big.Int),
		TokensOwed1:              new(big.Int),
	}
}

// settle moves fees accrued since the last checkpoint into TokensOwed and
// advances the checkpoint. Growth deltas that come out negative, which can
// happen when a bound tick was initialized after the checkpoint, owe
// nothing rather than going backwards.
func (p *Position) settle(feeGrowthInside0X128, feeGrowthInside1X128 *big.Int) {
	if p.Liquidity.Sign() > 0 {
		delta := new(big.Int).Sub(feeGrowthInside0X128, p.FeeGrowthInside0LastX128)
		if delta.Sign() > 0 {
			delta.Mul(delta, p.Liquidity)
			delta.Rsh(delta, 128)
			p.TokensOwed0.Add(p.TokensOwed0, delta)
		}
		delta = new(big.Int).Sub(feeGrowthInside1X128, p.FeeGrowthInside1LastX128)
		if delta.Sign() > 0 {
			delta.Mul(delta, p.Liquidity)
			delta.Rsh(delta, 128)
			p.TokensOwed1.Add(p.TokensOwed1, delta)
		}
	}
	p.FeeGrowthInside0LastX128.Set(feeGrowthInside0X128)
	p.FeeGrowthInside1LastX128.Set(feeGrowthInside1X128)
}

// Collect drains up to amount0Max/amount1Max from the owed balances and
// returns what was taken. Nil maxima drain everything.
func (p *Position) Collect(amount0Max, amount1Max *big.Int) (amount0, amount1 *big.Int) {
	amount0 = new(big.Int).Set(p.TokensOwed0)
	if amount0Max != nil && amount0.Cmp(amount0Max) > 0 {
		amount0.Set(amount0Max)
	}
	amount1 = new(big.Int).Set(p.TokensOwed1)
	if amount1Max != nil && amount1.Cmp(amount1Max) > 0 {
		amount1.Set(amount1Max)
	}
	p.TokensOwed0.Sub(p.TokensOwed0, amount0)
	p.TokensOwed1.Sub(p.TokensOwed1, amount1)
	return amount0, amount1
}

// Clone returns an independent copy of the position.
func (p *Position) Clone() *Position {
	return &Position{
		Owner:                    p.Owner,
		TickLower:                p.TickLower,
		TickUpper:                p.TickUpper,
		Liquidity:                new(big.Int).Set(p.Liquidity),
		FeeGrowthInside0LastX128: new(big.Int).Set(p.FeeGrowthInside0LastX128),
		FeeGrowthInside1LastX128: new(big.Int).Set(p.FeeGrowthInside1LastX128),
		TokensOwed0:              new(big.Int).Set(p.TokensOwed0),
		TokensOwed1:              new(big.Int).Set(p.TokensOwed1),
	}
}
