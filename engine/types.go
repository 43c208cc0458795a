package engine

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/defistate/defistate-amm-go/router"
)

// PoolView is the serializable snapshot of one pool's state.
type PoolView struct {
	ID          uint64         `json:"id"`
	Token0      common.Address `json:"token0"`
	Token1      common.Address `json:"token1"`
	FeeTier     uint64         `json:"feeTier"`
	TickSpacing int64          `json:"tickSpacing"`

	SqrtPriceX96 *big.Int `json:"sqrtPriceX96"`
	Tick         int64    `json:"tick"`
	Liquidity    *big.Int `json:"liquidity"`

	FeeGrowthGlobal0X128 *big.Int `json:"feeGrowthGlobal0X128"`
	FeeGrowthGlobal1X128 *big.Int `json:"feeGrowthGlobal1X128"`
}

// PositionView is the serializable snapshot of one position.
type PositionView struct {
	ID        uint64         `json:"id"`
	PoolID    uint64         `json:"poolId"`
	Owner     common.Address `json:"owner"`
	TickLower int64          `json:"tickLower"`
	TickUpper int64          `json:"tickUpper"`
	Liquidity *big.Int       `json:"liquidity"`

	TokensOwed0 *big.Int `json:"tokensOwed0"`
	TokensOwed1 *big.Int `json:"tokensOwed1"`
}

// PriceView reports a pool's price in both raw and human form.
type PriceView struct {
	PoolID       uint64   `json:"poolId"`
	SqrtPriceX96 *big.Int `json:"sqrtPriceX96"`
	Tick         int64    `json:"tick"`

	// Price of token0 denominated in token1 and its inverse.
	Price0To1 decimal.Decimal `json:"price0to1"`
	Price1To0 decimal.Decimal `json:"price1to0"`
}

// SwapReceipt summarizes a committed swap across one or more pools.
type SwapReceipt struct {
	Route     []router.Hop `json:"route"`
	AmountIn  *big.Int     `json:"amountIn"`
	AmountOut *big.Int     `json:"amountOut"`

	// AmountInUnspent is non-zero when a price limit cut the fill short.
	AmountInUnspent *big.Int `json:"amountInUnspent,omitempty"`
	LimitReached    bool     `json:"limitReached,omitempty"`

	TicksCrossed int `json:"ticksCrossed"`
	Steps        int `json:"steps"`
}

// LiquidityReceipt summarizes an add or remove liquidity call.
type LiquidityReceipt struct {
	PositionID uint64   `json:"positionId"`
	PoolID     uint64   `json:"poolId"`
	Liquidity  *big.Int `json:"liquidity"`
	Amount0    *big.Int `json:"amount0"`
	Amount1    *big.Int `json:"amount1"`
}

// CollectReceipt reports fees paid out by a collect call.
type CollectReceipt struct {
	PositionID uint64   `json:"positionId"`
	PoolID     uint64   `json:"poolId"`
	Amount0    *big.Int `json:"amount0"`
	Amount1    *big.Int `json:"amount1"`
}
