// Package ledger provides the in-memory balance and allowance store used by the
// token and by the reference AMM.
package ledger

import (
	"bytes"
	"fmt"
	"slices"
	"sync"

	"github.com/holiman/uint256"
	"github.com/leapstack-labs/karmatoken/pkg/core"
)

type allowanceKey struct {
	owner   core.Address
	spender core.Address
}

type entryKind int

const (
	entryBalance entryKind = iota
	entryAllowance
)

// journalEntry records the value a slot held before a mutation. prev is nil when
// the slot was empty.
type journalEntry struct {
	kind entryKind
	addr core.Address
	key  allowanceKey
	prev *uint256.Int
}

type revision struct {
	id           int
	journalIndex int
}

// Memory is a core.Ledger backed by maps. Mutations are journaled while at least
// one snapshot is outstanding.
type Memory struct {
	mu         sync.RWMutex
	balances   map[core.Address]*uint256.Int
	allowances map[allowanceKey]*uint256.Int

	journal   []journalEntry
	revisions []revision
	nextRevID int
}

var _ core.Ledger = (*Memory)(nil)

// NewMemory creates an empty ledger.
func NewMemory() *Memory {
	return &Memory{
		balances:   make(map[core.Address]*uint256.Int),
		allowances: make(map[allowanceKey]*uint256.Int),
	}
}

// BalanceOf returns a copy of addr's balance.
func (m *Memory) BalanceOf(addr core.Address) *uint256.Int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.balances[addr]; ok {
		return v.Clone()
	}
	return core.Zero()
}

// AddBalance credits addr. Overflow is impossible for a fixed-supply token, so
// it wraps like the underlying arithmetic.
func (m *Memory) AddBalance(addr core.Address, amount *uint256.Int) {
	if amount == nil || amount.IsZero() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	next := core.Zero()
	if cur, ok := m.balances[addr]; ok {
		next.Set(cur)
	}
	next.Add(next, amount)
	m.setBalance(addr, next)
}

// SubBalance debits addr.
func (m *Memory) SubBalance(addr core.Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.balances[addr]
	if !ok || cur.Lt(amount) {
		return core.ErrInsufficientBalance
	}
	m.setBalance(addr, new(uint256.Int).Sub(cur, amount))
	return nil
}

// Allowance returns a copy of the amount spender may move on owner's behalf.
func (m *Memory) Allowance(owner, spender core.Address) *uint256.Int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.allowances[allowanceKey{owner, spender}]; ok {
		return v.Clone()
	}
	return core.Zero()
}

// SetAllowance overwrites the allowance.
func (m *Memory) SetAllowance(owner, spender core.Address, amount *uint256.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := allowanceKey{owner, spender}
	if len(m.revisions) > 0 {
		m.journal = append(m.journal, journalEntry{kind: entryAllowance, key: key, prev: m.allowances[key]})
	}
	if amount == nil || amount.IsZero() {
		delete(m.allowances, key)
		return
	}
	m.allowances[key] = amount.Clone()
}

// setBalance stores v, journaling the previous value. Caller holds mu.
func (m *Memory) setBalance(addr core.Address, v *uint256.Int) {
	if len(m.revisions) > 0 {
		m.journal = append(m.journal, journalEntry{kind: entryBalance, addr: addr, prev: m.balances[addr]})
	}
	if v.IsZero() {
		delete(m.balances, addr)
		return
	}
	m.balances[addr] = v
}

// Snapshot opens a revision and returns its id.
func (m *Memory) Snapshot() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextRevID
	m.nextRevID++
	m.revisions = append(m.revisions, revision{id: id, journalIndex: len(m.journal)})
	return id
}

// RevertToSnapshot undoes every mutation made since the snapshot was taken and
// closes it together with any revision opened after it.
func (m *Memory) RevertToSnapshot(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.revisionIndex(id)
	start := m.revisions[idx].journalIndex
	for i := len(m.journal) - 1; i >= start; i-- {
		e := m.journal[i]
		switch e.kind {
		case entryBalance:
			if e.prev == nil {
				delete(m.balances, e.addr)
			} else {
				m.balances[e.addr] = e.prev
			}
		case entryAllowance:
			if e.prev == nil {
				delete(m.allowances, e.key)
			} else {
				m.allowances[e.key] = e.prev
			}
		}
	}
	m.journal = m.journal[:start]
	m.revisions = m.revisions[:idx]
}

// DiscardSnapshot keeps the mutations made since the snapshot and closes it.
// The journal is dropped once no revision is outstanding.
func (m *Memory) DiscardSnapshot(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.revisionIndex(id)
	m.revisions = m.revisions[:idx]
	if len(m.revisions) == 0 {
		m.journal = m.journal[:0]
	}
}

func (m *Memory) revisionIndex(id int) int {
	for i := len(m.revisions) - 1; i >= 0; i-- {
		if m.revisions[i].id == id {
			return i
		}
	}
	panic(fmt.Errorf("ledger: revision id %d cannot be reverted", id))
}

// ForEachBalance visits non-zero balances in address order.
func (m *Memory) ForEachBalance(fn func(addr core.Address, amount *uint256.Int)) {
	m.mu.RLock()
	addrs := make([]core.Address, 0, len(m.balances))
	for a := range m.balances {
		addrs = append(addrs, a)
	}
	m.mu.RUnlock()

	slices.SortFunc(addrs, func(a, b core.Address) int { return bytes.Compare(a[:], b[:]) })
	for _, a := range addrs {
		fn(a, m.BalanceOf(a))
	}
}

// ForEachAllowance visits non-zero allowances in (owner, spender) order.
func (m *Memory) ForEachAllowance(fn func(owner, spender core.Address, amount *uint256.Int)) {
	m.mu.RLock()
	keys := make([]allowanceKey, 0, len(m.allowances))
	for k := range m.allowances {
		keys = append(keys, k)
	}
	m.mu.RUnlock()

	slices.SortFunc(keys, func(a, b allowanceKey) int {
		if c := bytes.Compare(a.owner[:], b.owner[:]); c != 0 {
			return c
		}
		return bytes.Compare(a.spender[:], b.spender[:])
	})
	for _, k := range keys {
		fn(k.owner, k.spender, m.Allowance(k.owner, k.spender))
	}
}
