package storage

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defistate/defistate-amm-go/pool"
)

var (
	tokenA = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	tokenB = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	alice  = common.HexToAddress("0x0000000000000000000000000000000000001001")

	sqrtPriceOne = new(big.Int).Lsh(big.NewInt(1), 96)
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	return store
}

// seededPool builds a pool with one active position so the snapshot
// carries tick state.
func seededPool(t *testing.T) (*pool.Pool, *pool.Position) {
	t.Helper()
	p, err := pool.New(tokenA, tokenB, 3000, sqrtPriceOne)
	require.NoError(t, err)
	pos := pool.NewPosition(alice, -60, 60)
	_, _, err = p.ModifyPosition(pos, big.NewInt(1_000_000))
	require.NoError(t, err)
	return p, pos
}

func TestStore_PoolRoundTrip(t *testing.T) {
	store := newTestStore(t)
	p, _ := seededPool(t)

	// Move the price so the snapshot is not all defaults.
	_, err := p.Swap(true, big.NewInt(1000), nil, true)
	require.NoError(t, err)

	require.NoError(t, store.SavePool(1, p.State()))

	state, err := store.LoadPool(1)
	require.NoError(t, err)
	restored, err := pool.FromState(state)
	require.NoError(t, err)

	assert.Equal(t, p.Token0, restored.Token0)
	assert.Equal(t, p.Token1, restored.Token1)
	assert.Equal(t, p.FeeTier, restored.FeeTier)
	assert.Equal(t, p.SqrtPriceX96, restored.SqrtPriceX96)
	assert.Equal(t, p.CurrentTick, restored.CurrentTick)
	assert.Equal(t, p.Liquidity, restored.Liquidity)
	assert.Equal(t, p.FeeGrowthGlobal0X128, restored.FeeGrowthGlobal0X128)

	// The tick registry survives: both boundary ticks are back.
	for _, tick := range []int64{-60, 60} {
		info, ok := restored.TickInfo(tick)
		require.True(t, ok, "tick %d missing", tick)
		assert.Equal(t, big.NewInt(1_000_000), info.LiquidityGross)
	}

	// The restored pool keeps trading identically to the original.
	want, err := p.Swap(true, big.NewInt(500), nil, false)
	require.NoError(t, err)
	got, err := restored.Swap(true, big.NewInt(500), nil, false)
	require.NoError(t, err)
	assert.Equal(t, want.AmountOut, got.AmountOut)
	assert.Equal(t, want.SqrtPriceX96, got.SqrtPriceX96)
}

func TestStore_PoolUpsert(t *testing.T) {
	store := newTestStore(t)
	p, _ := seededPool(t)

	require.NoError(t, store.SavePool(1, p.State()))
	_, err := p.Swap(true, big.NewInt(1000), nil, true)
	require.NoError(t, err)
	require.NoError(t, store.SavePool(1, p.State()))

	state, err := store.LoadPool(1)
	require.NoError(t, err)
	assert.Equal(t, p.SqrtPriceX96, state.SqrtPriceX96)
}

func TestStore_LoadPools(t *testing.T) {
	store := newTestStore(t)
	p, _ := seededPool(t)

	require.NoError(t, store.SavePool(3, p.State()))
	require.NoError(t, store.SavePool(7, p.State()))

	states, err := store.LoadPools()
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Contains(t, states, uint64(3))
	assert.Contains(t, states, uint64(7))
}

func TestStore_PoolNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.LoadPool(42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_PositionRoundTrip(t *testing.T) {
	store := newTestStore(t)
	_, pos := seededPool(t)
	pos.TokensOwed0 = big.NewInt(123)

	require.NoError(t, store.SavePosition(5, 1, pos))

	poolID, got, err := store.LoadPosition(5)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), poolID)
	assert.Equal(t, pos.Owner, got.Owner)
	assert.Equal(t, pos.TickLower, got.TickLower)
	assert.Equal(t, pos.TickUpper, got.TickUpper)
	assert.Equal(t, pos.Liquidity, got.Liquidity)
	assert.Equal(t, big.NewInt(123), got.TokensOwed0)

	byOwner, err := store.LoadPositionsByOwner(alice.Hex())
	require.NoError(t, err)
	require.Len(t, byOwner, 1)
	assert.Contains(t, byOwner, uint64(5))

	require.NoError(t, store.DeletePosition(5))
	_, _, err = store.LoadPosition(5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_DeletePoolCascades(t *testing.T) {
	store := newTestStore(t)
	p, pos := seededPool(t)

	require.NoError(t, store.SavePool(1, p.State()))
	require.NoError(t, store.SavePosition(5, 1, pos))

	require.NoError(t, store.DeletePool(1))
	_, err := store.LoadPool(1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = store.LoadPosition(5)
	assert.ErrorIs(t, err, ErrNotFound)
}
