package state

import (
	"github.com/minichain/minichain/foundation/blockchain/database"
	"github.com/minichain/minichain/foundation/blockchain/peer"
)

// OnBlockAnnounce is called by a peer to inform this node of a block it
// has learned of or mined. Unknown ancestry is fetched from the announcing
// peer, the resulting candidate chain is validated transaction by
// transaction, and the node reorganizes onto it when it is strictly longer
// than the adopted chain. On adoption the new tip is re-announced to every
// peer; ancestors are not announced, peers fetch those on demand.
//
// Announcements that cannot be completed are discarded silently: a peer
// that cannot produce a block, or produces one whose hash disagrees with
// the id used to request it, aborts the whole announcement.
func (s *State) OnBlockAnnounce(blockHash database.BlockHash, from peer.Handle) {
	if s.isKnown(blockHash) {
		return
	}

	s.evHandler("state: OnBlockAnnounce: started: blk[%s]", blockHash)

	suffix := s.fetchAncestry(blockHash, from)
	if suffix == nil {
		return
	}

	newTip, adopted := s.adoptLongerChain(suffix)
	if !adopted {
		s.evHandler("state: OnBlockAnnounce: discarded: blk[%s]: not strictly longer", blockHash)
		return
	}

	s.evHandler("state: OnBlockAnnounce: adopted: tip[%s]", newTip)

	// Announce outside the lock: a peer reacting to the announcement will
	// call back into this node.
	for _, handle := range s.knownPeers.Copy() {
		handle.OnBlockAnnounce(newTip, s)
	}
}

// fetchAncestry retrieves the announced block and walks backward through
// its ancestors until a locally known hash (or the genesis sentinel) is
// reached. The returned candidate suffix is ordered oldest first. Every
// fetched block is re-hashed against the id used to request it; a mismatch
// or a failed fetch discards the announcement and returns nil.
//
// The node lock is not held across peer calls, only the per step known
// hash checks take a read lock.
func (s *State) fetchAncestry(blockHash database.BlockHash, from peer.Handle) []database.Block {
	var suffix []database.Block

	for cursor := blockHash; !s.isKnown(cursor); {
		block, err := from.GetBlock(cursor)
		if err != nil {
			s.evHandler("state: fetchAncestry: abort: blk[%s]: peer cannot produce block", cursor)
			return nil
		}
		if block.Hash() != cursor {
			s.evHandler("state: fetchAncestry: abort: blk[%s]: hash mismatch from peer[%s]", cursor, from.Address())
			return nil
		}

		suffix = append(suffix, block)
		cursor = block.PrevHash
	}

	// The walk collected tip first, the engine validates oldest first.
	for i, j := 0, len(suffix)-1; i < j; i, j = i+1, j-1 {
		suffix[i], suffix[j] = suffix[j], suffix[i]
	}

	return suffix
}

// adoptLongerChain anchors the candidate suffix against the adopted chain,
// replays the chain up to the fork point into a trial ledger, validates
// and applies the candidate blocks in order, and commits the trial state
// when the resulting chain is strictly longer. Equal length competing
// chains are never adopted, the first seen chain wins ties.
func (s *State) adoptLongerChain(suffix []database.Block) (database.BlockHash, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Another announcement may have adopted part of the suffix while the
	// ancestry fetch was running.
	for len(suffix) > 0 && s.isKnownLocked(suffix[0].Hash()) {
		suffix = suffix[1:]
	}
	if len(suffix) == 0 {
		return "", false
	}

	// Locate the fork point. The anchor vanishing means the chain moved
	// under us, discard and wait for a fresh announcement.
	forkPoint := 0
	if anchor := suffix[0].PrevHash; anchor != database.BlockHash(s.genesis.PrevBlockHash) {
		idx, exists := s.hashIndex[anchor]
		if !exists {
			return "", false
		}
		forkPoint = idx + 1
	}

	// Rollback by re-deriving forward: replay the adopted chain up to the
	// fork point into a fresh trial ledger. The adopted state is never
	// mutated until the fork choice commits.
	trialChain := make([]database.Block, forkPoint, forkPoint+len(suffix))
	copy(trialChain, s.chain[:forkPoint])

	trialLedger := database.NewLedger()
	for _, block := range trialChain {
		for _, tx := range block.Trans {
			trialLedger.Apply(tx)
		}
	}

	// Validate and roll forward, truncating at the first invalid block.
	for _, block := range suffix {
		if !s.validBlock(block, trialLedger) {
			s.evHandler("state: adoptLongerChain: truncate: blk[%s] failed validation", block.Hash())
			break
		}
		for _, tx := range block.Trans {
			trialLedger.Apply(tx)
		}
		trialChain = append(trialChain, block)
	}

	if len(trialChain) <= len(s.chain) {
		return "", false
	}

	abandoned := s.chain[forkPoint:]

	s.chain = trialChain
	s.ledger = trialLedger
	s.hashIndex = make(map[database.BlockHash]int, len(trialChain))
	for i, block := range trialChain {
		s.hashIndex[block.Hash()] = i
	}

	s.recomputeBalance()
	s.mempool.Reconcile(s.ledger)

	// Transactions from the abandoned branch whose inputs the rollback
	// restored go back to the pool. Admit re-checks conflicts and proofs,
	// anything re-included on the new branch fails its unspent lookup.
	for _, block := range abandoned {
		for _, tx := range block.Trans {
			if tx.IsCoinbase() {
				continue
			}
			if s.mempool.Admit(tx, s.ledger) {
				s.evHandler("state: adoptLongerChain: re-admitted: tx[%s]", tx)
			}
		}
	}

	return s.latestHashLocked(), true
}

// validBlock applies the consensus checks for a candidate block against
// the trial ledger as it stands immediately before the block: capacity,
// exactly one coinbase, no two transactions spending the same input, every
// input resolving to an unspent output, and every proof verifying against
// the owning key.
func (s *State) validBlock(block database.Block, trialLedger *database.Ledger) bool {
	if len(block.Trans) > s.genesis.BlockCapacity {
		return false
	}

	var coinbases int
	spent := make(map[database.TxID]struct{})

	for _, tx := range block.Trans {
		if tx.IsCoinbase() {
			coinbases++
			continue
		}

		if _, exists := spent[tx.Input]; exists {
			return false
		}
		spent[tx.Input] = struct{}{}

		if !trialLedger.ContainsUnspent(tx.Input) {
			return false
		}

		source, exists := trialLedger.Lookup(tx.Input)
		if !exists {
			return false
		}
		if !tx.VerifyProof(source.Output) {
			return false
		}
	}

	return coinbases == 1
}
