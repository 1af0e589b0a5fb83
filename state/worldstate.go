package state

import (
	"fmt"

	"github.com/eth2030/coreintp/crypto"
	"github.com/eth2030/coreintp/word"
)

// WorldState is the abstraction over all account balances, code, and
// persistent storage. The interpreter core does not call any of these
// (the opcodes that would -- SLOAD, SSTORE, BALANCE, CALL, ... -- are
// out of scope) but the contract is specified so that a future opcode
// set, and the in-memory reference implementation below, share one
// collaborator shape.
type WorldState interface {
	AccountExists(a Address) bool
	GetStorage(a Address, k word.Word) word.Word
	SetStorage(a Address, k, v word.Word) (StorageStatus, error)
	GetBalance(a Address) word.U256
	GetCodeSize(a Address) int
	GetCodeHash(a Address) word.Word
	CopyCode(a Address, buf []byte) int
	SelfDestruct(a, beneficiary Address) bool
}

// ErrNoSuchAccount is returned by SetStorage when the target account
// does not exist. The source this machine is grounded on aborts the
// process in this situation; this implementation returns an explicit
// error instead (see DESIGN.md's Open Question log).
var ErrNoSuchAccount = fmt.Errorf("state: no such account")

// MemoryWorldState is a simple in-process WorldState backed by a map of
// Account, suitable for tests and for embedding the interpreter without
// a real state database.
type MemoryWorldState struct {
	accounts map[Address]*Account
}

// NewMemoryWorldState returns an empty MemoryWorldState.
func NewMemoryWorldState() *MemoryWorldState {
	return &MemoryWorldState{accounts: make(map[Address]*Account)}
}

// Insert adds or replaces the account at its own address.
func (m *MemoryWorldState) Insert(acc Account) {
	a := acc
	if a.Storage == nil {
		a.Storage = make(Storage)
	}
	m.accounts[a.Address] = &a
}

// Get returns the account at a, if any.
func (m *MemoryWorldState) Get(a Address) (Account, bool) {
	acc, ok := m.accounts[a]
	if !ok {
		return Account{}, false
	}
	return *acc, true
}

func (m *MemoryWorldState) AccountExists(a Address) bool {
	_, ok := m.accounts[a]
	return ok
}

func (m *MemoryWorldState) GetStorage(a Address, k word.Word) word.Word {
	acc, ok := m.accounts[a]
	if !ok {
		return word.Zero
	}
	return acc.Storage.Get(k)
}

// SetStorage classifies and applies a storage write. See Storage's
// classifyWrite for the rule; it depends only on the current stored
// value, so a key may cycle Added -> Unchanged -> Modified -> Deleted
// -> Added again across repeated writes.
func (m *MemoryWorldState) SetStorage(a Address, k, v word.Word) (StorageStatus, error) {
	acc, ok := m.accounts[a]
	if !ok {
		return 0, ErrNoSuchAccount
	}
	prev := acc.Storage.Get(k)
	status := classifyWrite(prev, v)
	if v.IsZero() {
		delete(acc.Storage, k)
	} else {
		acc.Storage[k] = v
	}
	return status, nil
}

func (m *MemoryWorldState) GetBalance(a Address) word.U256 {
	acc, ok := m.accounts[a]
	if !ok {
		return word.U256{}
	}
	return acc.Balance
}

func (m *MemoryWorldState) GetCodeSize(a Address) int {
	acc, ok := m.accounts[a]
	if !ok {
		return 0
	}
	return len(acc.Code)
}

func (m *MemoryWorldState) GetCodeHash(a Address) word.Word {
	acc, ok := m.accounts[a]
	if !ok || len(acc.Code) == 0 {
		return word.Zero
	}
	return word.FromBigEndian(crypto.Keccak256(acc.Code))
}

func (m *MemoryWorldState) CopyCode(a Address, buf []byte) int {
	acc, ok := m.accounts[a]
	if !ok {
		return 0
	}
	return copy(buf, acc.Code)
}

func (m *MemoryWorldState) SelfDestruct(a, beneficiary Address) bool {
	acc, ok := m.accounts[a]
	if !ok {
		return false
	}
	if ben, benOk := m.accounts[beneficiary]; benOk {
		ben.Balance = word.FromWord(ben.Balance.Word().Add(acc.Balance.Word()))
	}
	delete(m.accounts, a)
	return true
}
