package state

import (
	"github.com/minichain/minichain/foundation/blockchain/database"
	"github.com/minichain/minichain/foundation/blockchain/signature"
)

// Address returns the public key identifying this node on the network.
func (s *State) Address() signature.PublicKey {
	return s.address
}

// GenesisHash returns the sentinel previous hash the chain is rooted at.
func (s *State) GenesisHash() database.BlockHash {
	return database.BlockHash(s.genesis.PrevBlockHash)
}

// LatestHash returns the hash of the tip of the adopted chain, or the
// genesis sentinel when no block has been adopted.
func (s *State) LatestHash() database.BlockHash {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.latestHashLocked()
}

// GetBlock returns the adopted block with the specified hash, or
// ErrBlockNotFound. This is the lookup peers use to fetch ancestry.
func (s *State) GetBlock(blockHash database.BlockHash) (database.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, exists := s.hashIndex[blockHash]
	if !exists {
		return database.Block{}, ErrBlockNotFound
	}

	return s.chain[idx], nil
}

// Chain returns a copy of the adopted chain, oldest block first.
func (s *State) Chain() []database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chain := make([]database.Block, len(s.chain))
	copy(chain, s.chain)

	return chain
}

// Mempool returns a copy of the pending transactions in arrival order.
func (s *State) Mempool() []database.Tx {
	return s.mempool.Copy()
}

// UnspentOutputs returns a copy of the currently unspent outputs in the
// node's view of the chain.
func (s *State) UnspentOutputs() []database.Tx {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.ledger.Unspent()
}

// OwnedOutputs returns the ids of the unspent outputs held by this node's
// key, oldest first.
func (s *State) OwnedOutputs() []database.TxID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := make([]database.TxID, len(s.balance))
	copy(owned, s.balance)

	return owned
}

// Balance returns the number of coins this node owns in its view of the
// chain. Coins with a pending spend in the mempool still count until the
// spending transaction is adopted.
func (s *State) Balance() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.balance)
}
