package state

import (
	"github.com/minichain/minichain/foundation/blockchain/database"
)

// MineBlock assembles a new block from the mempool plus one coinbase
// rewarding this node, appends it to the adopted chain, and announces the
// new tip to every peer. Mining is free: a block is always produced, the
// coinbase alone suffices.
//
// The mined block bypasses the validation path peer blocks go through,
// the miner trusts its own construction.
func (s *State) MineBlock() database.BlockHash {
	s.mu.Lock()

	trans := s.mempool.Drain(s.genesis.BlockCapacity - 1)
	trans = append(trans, database.NewCoinbaseTx(s.address))

	block := database.NewBlock(s.latestHashLocked(), trans)
	blockHash := block.Hash()

	s.chain = append(s.chain, block)
	s.hashIndex[blockHash] = len(s.chain) - 1

	for _, tx := range trans {
		s.ledger.Apply(tx)
	}
	s.recomputeBalance()

	s.mu.Unlock()

	s.evHandler("state: MineBlock: mined: blk[%s]: trans[%d]", blockHash, len(trans))

	for _, handle := range s.knownPeers.Copy() {
		handle.OnBlockAnnounce(blockHash, s)
	}

	return blockHash
}
