package amm

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/leapstack-labs/karmatoken/pkg/core"
	"golang.org/x/crypto/sha3"
)

// pairInitCodeHash stands in for the pair bytecode hash in CREATE2 derivation.
var pairInitCodeHash = keccak([]byte("karmatoken/amm.Pair"))

// Factory creates and indexes pairs.
type Factory struct {
	chain   *Chain
	pairs   []*Pair
	byToken map[[2]core.Address]*Pair

	revisions [][2]int // (revision id, len(pairs))
	nextRevID int
}

func newFactory(c *Chain) *Factory {
	return &Factory{chain: c, byToken: make(map[[2]core.Address]*Pair)}
}

// SortTokens orders a token pair the way pairs store them.
func SortTokens(a, b core.Address) (core.Address, core.Address, error) {
	if a == b {
		return core.Address{}, core.Address{}, ErrIdenticalAddresses
	}
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	if core.IsZero(a) {
		return core.Address{}, core.Address{}, ErrZeroAddress
	}
	return a, b, nil
}

// PairFor derives the CREATE2 address of the (a, b) pair.
func PairFor(a, b core.Address) (core.Address, error) {
	t0, t1, err := SortTokens(a, b)
	if err != nil {
		return core.Address{}, err
	}
	salt := keccak(t0[:], t1[:])
	return common.BytesToAddress(keccak([]byte{0xff}, FactoryAddress[:], salt, pairInitCodeHash)[12:]), nil
}

// GetPair returns the pair of (a, b), or nil.
func (f *Factory) GetPair(a, b core.Address) *Pair {
	t0, t1, err := SortTokens(a, b)
	if err != nil {
		return nil
	}
	return f.byToken[[2]core.Address{t0, t1}]
}

// CreatePair deploys the (a, b) pair.
func (f *Factory) CreatePair(a, b core.Address) (*Pair, error) {
	t0, t1, err := SortTokens(a, b)
	if err != nil {
		return nil, err
	}
	key := [2]core.Address{t0, t1}
	if _, ok := f.byToken[key]; ok {
		return nil, ErrPairExists
	}
	addr, err := PairFor(t0, t1)
	if err != nil {
		return nil, err
	}
	p := newPair(f.chain, addr, t0, t1)
	f.pairs = append(f.pairs, p)
	f.byToken[key] = p
	f.chain.logger.Debug("pair created", "pair", addr.Hex(), "token0", t0.Hex(), "token1", t1.Hex())
	return p, nil
}

// Pairs returns every pair in creation order.
func (f *Factory) Pairs() []*Pair {
	out := make([]*Pair, len(f.pairs))
	copy(out, f.pairs)
	return out
}

// Snapshot implements core.Revertible.
func (f *Factory) Snapshot() int {
	id := f.nextRevID
	f.nextRevID++
	f.revisions = append(f.revisions, [2]int{id, len(f.pairs)})
	return id
}

// RevertToSnapshot drops pairs created after the snapshot.
func (f *Factory) RevertToSnapshot(id int) {
	idx := f.revisionIndex(id)
	keep := f.revisions[idx][1]
	for _, p := range f.pairs[keep:] {
		delete(f.byToken, [2]core.Address{p.token0, p.token1})
	}
	f.pairs = f.pairs[:keep]
	f.revisions = f.revisions[:idx]
}

// DiscardSnapshot implements core.Revertible.
func (f *Factory) DiscardSnapshot(id int) {
	f.revisions = f.revisions[:f.revisionIndex(id)]
}

func (f *Factory) revisionIndex(id int) int {
	for i := len(f.revisions) - 1; i >= 0; i-- {
		if f.revisions[i][0] == id {
			return i
		}
	}
	panic(fmt.Errorf("amm: factory revision id %d cannot be reverted", id))
}

func keccak(parts ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}
