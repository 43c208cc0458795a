// Package engine exposes the AMM's operations: pool creation, liquidity
// management, swaps with routing, and read views. It owns no token
// balances; movements go through the configured TokenTransfer with the
// vault address as the pools' escrow account.
package engine

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/defistate/defistate-amm-go/pool"
	"github.com/defistate/defistate-amm-go/quote"
	"github.com/defistate/defistate-amm-go/router"
)

var (
	ErrSameToken        = errors.New("token pair must be distinct")
	ErrPoolNotFound     = errors.New("pool not found")
	ErrDuplicatePool    = errors.New("pool already exists")
	ErrPositionNotFound = errors.New("position not found")
	ErrDeadlineExceeded = errors.New("deadline exceeded")
	ErrSlippage         = errors.New("amount outside slippage bounds")
)

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// defaultVault escrows pool reserves when the config does not name one.
var defaultVault = common.HexToAddress("0x00000000000000000000000000000000000dEfa0")

// Config wires the engine's capabilities.
type Config struct {
	Transfer TokenTransfer
	Logger   Logger
	Registry prometheus.Registerer

	// Optional; defaulted in validate.
	Clock Clock
	Auth  Authorizer
	Vault common.Address
}

// validate checks required dependencies and fills in defaults.
func (c *Config) validate() error {
	if c.Transfer == nil {
		return errors.New("config: Transfer cannot be nil")
	}
	if c.Logger == nil {
		return errors.New("config: Logger cannot be nil")
	}
	if c.Registry == nil {
		return errors.New("config: Registry cannot be nil")
	}
	if c.Clock == nil {
		c.Clock = SystemClock()
	}
	if c.Auth == nil {
		c.Auth = OwnerOnlyAuthorizer()
	}
	if (c.Vault == common.Address{}) {
		c.Vault = defaultVault
	}
	return nil
}

type poolKey struct {
	token0  common.Address
	token1  common.Address
	feeTier uint64
}

type positionRecord struct {
	id     uint64
	poolID uint64
	pos    *pool.Position
}

// Engine holds all pools and positions and serves the operation surface.
// It is not safe for concurrent use; callers serialize access.
type Engine struct {
	transfer TokenTransfer
	clock    Clock
	auth     Authorizer
	logger   Logger
	metrics  *Metrics
	vault    common.Address

	pools      map[uint64]*pool.Pool
	poolIDs    map[poolKey]uint64
	nextPoolID uint64

	positions      map[uint64]*positionRecord
	ownerPositions map[common.Address][]uint64
	nextPositionID uint64

	graph  *router.Graph
	router *router.Router
}

// New constructs an engine from a configuration.
func New(cfg *Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		transfer:       cfg.Transfer,
		clock:          cfg.Clock,
		auth:           cfg.Auth,
		logger:         cfg.Logger,
		metrics:        NewMetrics(cfg.Registry),
		vault:          cfg.Vault,
		pools:          make(map[uint64]*pool.Pool),
		poolIDs:        make(map[poolKey]uint64),
		positions:      make(map[uint64]*positionRecord),
		ownerPositions: make(map[common.Address][]uint64),
		graph:          router.NewGraph(),
	}
	e.router = router.New(e.graph, e, cfg.Logger)
	return e, nil
}

// PoolByID implements router.PoolSource.
func (e *Engine) PoolByID(id uint64) (*pool.Pool, bool) {
	p, ok := e.pools[id]
	return p, ok
}

// orderTokens returns the pair in canonical order.
func orderTokens(tokenA, tokenB common.Address) (common.Address, common.Address) {
	if tokenA.Cmp(tokenB) < 0 {
		return tokenA, tokenB
	}
	return tokenB, tokenA
}

// CreatePool registers a new pool for a token pair and fee tier at an
// initial price. sqrtPriceX96 is quoted for the canonically ordered pair.
func (e *Engine) CreatePool(tokenA, tokenB common.Address, feeTier uint64, sqrtPriceX96 *big.Int) (PoolView, error) {
	if tokenA == tokenB {
		return PoolView{}, fmt.Errorf("%w: %s", ErrSameToken, tokenA)
	}
	token0, token1 := orderTokens(tokenA, tokenB)
	key := poolKey{token0: token0, token1: token1, feeTier: feeTier}
	if id, ok := e.poolIDs[key]; ok {
		return PoolView{}, fmt.Errorf("%w: pool %d for %s/%s at %d pips", ErrDuplicatePool, id, token0, token1, feeTier)
	}

	p, err := pool.New(token0, token1, feeTier, sqrtPriceX96)
	if err != nil {
		return PoolView{}, err
	}

	e.nextPoolID++
	id := e.nextPoolID
	e.pools[id] = p
	e.poolIDs[key] = id
	e.graph.AddPool(token0, token1, id)
	e.metrics.poolsCreated.Inc()
	e.logger.Info("pool created", "id", id, "token0", token0, "token1", token1, "feeTier", feeTier)
	return e.poolView(id, p), nil
}

func (e *Engine) lookupPool(tokenA, tokenB common.Address, feeTier uint64) (uint64, *pool.Pool, error) {
	token0, token1 := orderTokens(tokenA, tokenB)
	id, ok := e.poolIDs[poolKey{token0: token0, token1: token1, feeTier: feeTier}]
	if !ok {
		return 0, nil, fmt.Errorf("%w: %s/%s at %d pips", ErrPoolNotFound, token0, token1, feeTier)
	}
	return id, e.pools[id], nil
}

func (e *Engine) lookupPosition(id uint64) (*positionRecord, *pool.Pool, error) {
	rec, ok := e.positions[id]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %d", ErrPositionNotFound, id)
	}
	return rec, e.pools[rec.poolID], nil
}

// checkDeadline rejects operations past their deadline. A zero deadline
// means no bound.
func (e *Engine) checkDeadline(deadline time.Time) error {
	if deadline.IsZero() {
		return nil
	}
	if now := e.clock.Now(); now.After(deadline) {
		return fmt.Errorf("%w: deadline %s, now %s", ErrDeadlineExceeded, deadline.UTC().Format(time.RFC3339), now.UTC().Format(time.RFC3339))
	}
	return nil
}

func (e *Engine) poolView(id uint64, p *pool.Pool) PoolView {
	return PoolView{
		ID:                   id,
		Token0:               p.Token0,
		Token1:               p.Token1,
		FeeTier:              p.FeeTier,
		TickSpacing:          p.TickSpacing,
		SqrtPriceX96:         new(big.Int).Set(p.SqrtPriceX96),
		Tick:                 p.CurrentTick,
		Liquidity:            new(big.Int).Set(p.Liquidity),
		FeeGrowthGlobal0X128: new(big.Int).Set(p.FeeGrowthGlobal0X128),
		FeeGrowthGlobal1X128: new(big.Int).Set(p.FeeGrowthGlobal1X128),
	}
}

func (e *Engine) positionView(rec *positionRecord) PositionView {
	return PositionView{
		ID:          rec.id,
		PoolID:      rec.poolID,
		Owner:       rec.pos.Owner,
		TickLower:   rec.pos.TickLower,
		TickUpper:   rec.pos.TickUpper,
		Liquidity:   new(big.Int).Set(rec.pos.Liquidity),
		TokensOwed0: new(big.Int).Set(rec.pos.TokensOwed0),
		TokensOwed1: new(big.Int).Set(rec.pos.TokensOwed1),
	}
}

// GetPool returns the state of one pool.
func (e *Engine) GetPool(tokenA, tokenB common.Address, feeTier uint64) (PoolView, error) {
	id, p, err := e.lookupPool(tokenA, tokenB, feeTier)
	if err != nil {
		return PoolView{}, err
	}
	return e.poolView(id, p), nil
}

// Pools returns views of every pool, ordered by ID.
func (e *Engine) Pools() []PoolView {
	views := make([]PoolView, 0, len(e.pools))
	for id := uint64(1); id <= e.nextPoolID; id++ {
		if p, ok := e.pools[id]; ok {
			views = append(views, e.poolView(id, p))
		}
	}
	return views
}

// GetPoolPrice reports a pool's current price in raw and human form.
func (e *Engine) GetPoolPrice(tokenA, tokenB common.Address, feeTier uint64) (PriceView, error) {
	id, p, err := e.lookupPool(tokenA, tokenB, feeTier)
	if err != nil {
		return PriceView{}, err
	}
	price0to1 := quote.SpotPrice(p.SqrtPriceX96)
	return PriceView{
		PoolID:       id,
		SqrtPriceX96: new(big.Int).Set(p.SqrtPriceX96),
		Tick:         p.CurrentTick,
		Price0To1:    price0to1,
		Price1To0:    quote.Invert(price0to1),
	}, nil
}

// GetPosition returns one position's state.
func (e *Engine) GetPosition(id uint64) (PositionView, error) {
	rec, p, err := e.lookupPosition(id)
	if err != nil {
		return PositionView{}, err
	}
	// Refresh owed fees so the view is current.
	if err := p.SettlePosition(rec.pos); err != nil {
		return PositionView{}, err
	}
	return e.positionView(rec), nil
}

// GetPositionsByOwner returns all positions held by an owner, ordered by ID.
func (e *Engine) GetPositionsByOwner(owner common.Address) []PositionView {
	ids := e.ownerPositions[owner]
	views := make([]PositionView, 0, len(ids))
	for _, id := range ids {
		if rec, ok := e.positions[id]; ok {
			views = append(views, e.positionView(rec))
		}
	}
	return views
}

// GetOptimalSwapPath quotes the best route for an exact input without
// executing it.
func (e *Engine) GetOptimalSwapPath(tokenIn, tokenOut common.Address, amountIn *big.Int) (*router.Route, error) {
	return e.router.BestRoute(tokenIn, tokenOut, amountIn)
}
