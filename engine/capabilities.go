package engine

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

var ErrInsufficientBalance = errors.New("insufficient balance")

// TokenTransfer moves token balances between accounts. The engine never
// holds balances itself; everything it escrows sits under the vault
// address configured at construction.
type TokenTransfer interface {
	Transfer(token, from, to common.Address, amount *big.Int) error
	BalanceOf(token, account common.Address) *big.Int
}

// Clock supplies the time used for deadline checks.
type Clock interface {
	Now() time.Time
}

// Authorizer decides whether a caller may act on an owner's positions.
type Authorizer interface {
	Authorize(caller, owner common.Address) error
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

// ownerOnly permits callers to act only on their own positions.
type ownerOnly struct{}

var ErrNotAuthorized = errors.New("caller not authorized")

func (ownerOnly) Authorize(caller, owner common.Address) error {
	if caller != owner {
		return fmt.Errorf("%w: caller %s, owner %s", ErrNotAuthorized, caller, owner)
	}
	return nil
}

// OwnerOnlyAuthorizer returns the default authorization policy.
func OwnerOnlyAuthorizer() Authorizer { return ownerOnly{} }

// MemoryLedger is an in-memory TokenTransfer for tests and the console.
type MemoryLedger struct {
	balances map[common.Address]map[common.Address]*big.Int
}

// NewMemoryLedger returns an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[common.Address]map[common.Address]*big.Int)}
}

// Mint credits an account out of thin air.
func (l *MemoryLedger) Mint(token, account common.Address, amount *big.Int) {
	l.balance(token, account).Add(l.balance(token, account), amount)
}

func (l *MemoryLedger) balance(token, account common.Address) *big.Int {
	accounts, ok := l.balances[token]
	if !ok {
		accounts = make(map[common.Address]*big.Int)
		l.balances[token] = accounts
	}
	b, ok := accounts[account]
	if !ok {
		b = new(big.Int)
		accounts[account] = b
	}
	return b
}

func (l *MemoryLedger) Transfer(token, from, to common.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	src := l.balance(token, from)
	if src.Cmp(amount) < 0 {
		return fmt.Errorf("%w: token %s, account %s has %s, needs %s", ErrInsufficientBalance, token, from, src, amount)
	}
	src.Sub(src, amount)
	dst := l.balance(token, to)
	dst.Add(dst, amount)
	return nil
}

func (l *MemoryLedger) BalanceOf(token, account common.Address) *big.Int {
	return new(big.Int).Set(l.balance(token, account))
}
