// Package state is the core API for a node and implements all the business
// rules and processing: chain synchronization, fork choice, mempool
// admission, and mining.
package state

import (
	"crypto/ecdsa"
	"errors"
	"sync"

	"github.com/minichain/minichain/foundation/blockchain/database"
	"github.com/minichain/minichain/foundation/blockchain/genesis"
	"github.com/minichain/minichain/foundation/blockchain/mempool"
	"github.com/minichain/minichain/foundation/blockchain/peer"
	"github.com/minichain/minichain/foundation/blockchain/signature"
)

// ErrBlockNotFound is returned when a requested block is not part of the
// adopted chain.
var ErrBlockNotFound = errors.New("block not found")

// ErrSelfConnection is returned when a node is asked to connect to itself.
// This is a usage error, not an expected network condition.
var ErrSelfConnection = errors.New("node cannot connect to itself")

// ErrInsufficientFunds is returned when a transfer is requested and the
// node holds no spendable output.
var ErrInsufficientFunds = errors.New("no unspent output available to spend")

// =============================================================================

// EventHandler defines a function that is called when events occur in the
// processing of blocks and transactions.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to start a node.
type Config struct {
	PrivateKey *ecdsa.PrivateKey
	Genesis    genesis.Genesis
	EvHandler  EventHandler
}

// State manages the node's view of the chain: the adopted blocks, the
// ledger of unspent outputs, the mempool, and the known peers. The chain,
// ledger, mempool, and balance form a single consistency boundary guarded
// by one mutex so that announcements, mining, and admission never
// interleave.
type State struct {
	mu         sync.RWMutex
	privateKey *ecdsa.PrivateKey
	address    signature.PublicKey
	genesis    genesis.Genesis
	evHandler  EventHandler

	chain     []database.Block
	hashIndex map[database.BlockHash]int
	ledger    *database.Ledger
	mempool   *mempool.Mempool
	balance   []database.TxID

	knownPeers *peer.Set
}

// New constructs a new node. A fresh key pair is generated when the
// configuration does not provide one.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	privateKey := cfg.PrivateKey
	if privateKey == nil {
		var err error
		privateKey, _, err = signature.GenerateKeys()
		if err != nil {
			return nil, err
		}
	}

	gen := cfg.Genesis
	if gen.BlockCapacity == 0 {
		gen = genesis.Default()
	}

	state := State{
		privateKey: privateKey,
		address:    signature.PublicKeyOf(privateKey),
		genesis:    gen,
		evHandler:  ev,

		hashIndex: make(map[database.BlockHash]int),
		ledger:    database.NewLedger(),
		mempool:   mempool.New(),

		knownPeers: peer.NewSet(),
	}

	return &state, nil
}

// =============================================================================

// recomputeBalance re-derives the owned unspent outputs from the ledger in
// chain order, oldest coin first. Must be called with the write lock held.
func (s *State) recomputeBalance() {
	var balance []database.TxID
	for _, block := range s.chain {
		for _, tx := range block.Trans {
			if tx.Output != s.address {
				continue
			}
			if txID := tx.ID(); s.ledger.ContainsUnspent(txID) {
				balance = append(balance, txID)
			}
		}
	}

	s.balance = balance
}

// latestHashLocked returns the tip hash. Must be called with at least the
// read lock held.
func (s *State) latestHashLocked() database.BlockHash {
	if len(s.chain) == 0 {
		return database.BlockHash(s.genesis.PrevBlockHash)
	}

	return s.chain[len(s.chain)-1].Hash()
}

// isKnownLocked reports whether the hash is the genesis sentinel or an
// adopted block. Must be called with at least the read lock held.
func (s *State) isKnownLocked(blockHash database.BlockHash) bool {
	if blockHash == database.BlockHash(s.genesis.PrevBlockHash) {
		return true
	}

	_, exists := s.hashIndex[blockHash]
	return exists
}

// isKnown is the locking variant of isKnownLocked for use on paths that
// must not hold the node lock across peer calls.
func (s *State) isKnown(blockHash database.BlockHash) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.isKnownLocked(blockHash)
}
