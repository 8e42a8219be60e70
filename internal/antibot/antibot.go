// Package antibot is the reference anti-bot validator: a blocklist plus a
// per-address cooldown measured in committed transfers.
package antibot

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"github.com/holiman/uint256"
	"github.com/leapstack-labs/karmatoken/pkg/core"
)

// Validator implements core.AntiBot and core.TransferObserver.
type Validator struct {
	mu       sync.Mutex
	logger   *slog.Logger
	cooldown uint64
	blocked  map[core.Address]struct{}
	exempt   map[core.Address]struct{}
	lastSeen map[core.Address]uint64
	seq      uint64

	revisions []revision
	nextRevID int
}

// revision is a copy of the mutable history taken by Snapshot.
type revision struct {
	id       int
	seq      uint64
	blocked  map[core.Address]struct{}
	lastSeen map[core.Address]uint64
}

var (
	_ core.AntiBot          = (*Validator)(nil)
	_ core.TransferObserver = (*Validator)(nil)
	_ core.Revertible       = (*Validator)(nil)
)

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger used for denials.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) { v.logger = logger }
}

// WithCooldown makes an address wait n committed transfers before it may
// appear in another one. Zero disables the cooldown.
func WithCooldown(n uint64) Option {
	return func(v *Validator) { v.cooldown = n }
}

// WithExempt skips the cooldown for the given addresses, typically the AMM
// pair and the router. Blocklisting still applies.
func WithExempt(addrs ...core.Address) Option {
	return func(v *Validator) {
		for _, a := range addrs {
			v.exempt[a] = struct{}{}
		}
	}
}

// WithBlocked seeds the blocklist.
func WithBlocked(addrs ...core.Address) Option {
	return func(v *Validator) {
		for _, a := range addrs {
			v.blocked[a] = struct{}{}
		}
	}
}

// New creates a validator.
func New(opts ...Option) *Validator {
	v := &Validator{
		blocked:  make(map[core.Address]struct{}),
		exempt:   make(map[core.Address]struct{}),
		lastSeen: make(map[core.Address]uint64),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = slog.New(slog.DiscardHandler)
	}
	return v
}

// Block adds addr to the blocklist.
func (v *Validator) Block(addr core.Address) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.blocked[addr] = struct{}{}
}

// Unblock removes addr from the blocklist.
func (v *Validator) Unblock(addr core.Address) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.blocked, addr)
}

// Blocked reports whether addr is blocklisted.
func (v *Validator) Blocked(addr core.Address) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.blocked[addr]
	return ok
}

// Allow denies blocklisted endpoints and endpoints still cooling down. It does
// not record anything; Observe does.
func (v *Validator) Allow(ctx context.Context, from, to core.Address, _ *uint256.Int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, addr := range []core.Address{from, to} {
		if _, ok := v.blocked[addr]; ok {
			v.logger.Debug("transfer denied", "reason", "blocked", "address", addr.Hex())
			return false, nil
		}
		if v.coolingDown(addr) {
			v.logger.Debug("transfer denied", "reason", "cooldown", "address", addr.Hex())
			return false, nil
		}
	}
	return true, nil
}

// Observe records a committed transfer.
func (v *Validator) Observe(_ context.Context, from, to core.Address, _ *uint256.Int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seq++
	for _, addr := range []core.Address{from, to} {
		if _, ok := v.exempt[addr]; !ok {
			v.lastSeen[addr] = v.seq
		}
	}
}

// coolingDown reports whether addr took part in one of the last cooldown
// transfers. Caller holds mu.
func (v *Validator) coolingDown(addr core.Address) bool {
	if v.cooldown == 0 {
		return false
	}
	if _, ok := v.exempt[addr]; ok {
		return false
	}
	last, ok := v.lastSeen[addr]
	if !ok {
		return false
	}
	return v.seq-last < v.cooldown
}

// Snapshot records the blocklist and cooldown history so a reverted
// transaction does not leave its transfers on the record.
func (v *Validator) Snapshot() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	id := v.nextRevID
	v.nextRevID++
	v.revisions = append(v.revisions, revision{
		id:       id,
		seq:      v.seq,
		blocked:  maps.Clone(v.blocked),
		lastSeen: maps.Clone(v.lastSeen),
	})
	return id
}

// RevertToSnapshot restores the history captured by Snapshot(id).
func (v *Validator) RevertToSnapshot(id int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	idx := v.revisionIndex(id)
	rev := v.revisions[idx]
	v.seq = rev.seq
	v.blocked = rev.blocked
	v.lastSeen = rev.lastSeen
	v.revisions = v.revisions[:idx]
}

// DiscardSnapshot keeps everything recorded since Snapshot(id).
func (v *Validator) DiscardSnapshot(id int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.revisions = v.revisions[:v.revisionIndex(id)]
}

func (v *Validator) revisionIndex(id int) int {
	for i := len(v.revisions) - 1; i >= 0; i-- {
		if v.revisions[i].id == id {
			return i
		}
	}
	panic(fmt.Errorf("antibot: revision id %d cannot be reverted", id))
}
