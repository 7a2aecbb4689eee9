// Package peer maintains the node's view of its connections: the handle a
// peer exposes to the network and the set of known peers keyed by their
// public key.
package peer

import (
	"sync"

	"github.com/minichain/minichain/foundation/blockchain/database"
	"github.com/minichain/minichain/foundation/blockchain/signature"
)

// Handle represents the behavior every node exposes to its peers. Calls
// are value based request/response, peers never share mutable state.
type Handle interface {
	Address() signature.PublicKey
	LatestHash() database.BlockHash
	GetBlock(blockHash database.BlockHash) (database.Block, error)
	OnBlockAnnounce(blockHash database.BlockHash, from Handle)
	OnTxShare(tx database.Tx)
}

// =============================================================================

// Set represents the known peers of a node. Peers are keyed by their
// public key, not by reference identity.
type Set struct {
	mu  sync.RWMutex
	set map[signature.PublicKey]Handle
}

// NewSet constructs a set to manage the node's peers.
func NewSet() *Set {
	return &Set{
		set: make(map[signature.PublicKey]Handle),
	}
}

// Add adds a peer to the set, reporting whether it was new.
func (ps *Set) Add(handle Handle) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	addr := handle.Address()
	if _, exists := ps.set[addr]; exists {
		return false
	}

	ps.set[addr] = handle
	return true
}

// Remove removes the peer with the specified address from the set.
func (ps *Set) Remove(addr signature.PublicKey) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	delete(ps.set, addr)
}

// Contains reports whether the specified address is a known peer.
func (ps *Set) Contains(addr signature.PublicKey) bool {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	_, exists := ps.set[addr]
	return exists
}

// Copy returns the handles of the known peers.
func (ps *Set) Copy() []Handle {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	handles := make([]Handle, 0, len(ps.set))
	for _, handle := range ps.set {
		handles = append(handles, handle)
	}

	return handles
}

// Count returns the number of known peers.
func (ps *Set) Count() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return len(ps.set)
}
