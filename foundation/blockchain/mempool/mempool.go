// Package mempool maintains the pool of transactions known to a node but
// not yet included in any adopted block.
package mempool

import (
	"sync"

	"github.com/minichain/minichain/foundation/blockchain/database"
)

// Mempool represents the pending transaction pool in arrival order. No two
// entries may spend the same input and every entry must resolve to a
// currently unspent output at admission time.
type Mempool struct {
	mu     sync.RWMutex
	pool   []database.Tx
	inputs map[database.TxID]struct{}
}

// New constructs a new mempool.
func New() *Mempool {
	return &Mempool{
		inputs: make(map[database.TxID]struct{}),
	}
}

// Admit validates the transaction against the pool and the specified ledger
// and appends it on success. It reports false, without mutation, when the
// transaction is a coinbase, when another entry already spends the same
// input, when the input does not resolve to an unspent output, or when the
// proof fails against the owning key.
func (mp *Mempool) Admit(tx database.Tx, ledger *database.Ledger) bool {
	if tx.IsCoinbase() {
		return false
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	if _, exists := mp.inputs[tx.Input]; exists {
		return false
	}

	if !ledger.ContainsUnspent(tx.Input) {
		return false
	}

	source, exists := ledger.Lookup(tx.Input)
	if !exists {
		return false
	}

	if !tx.VerifyProof(source.Output) {
		return false
	}

	mp.pool = append(mp.pool, tx)
	mp.inputs[tx.Input] = struct{}{}

	return true
}

// Drain removes and returns up to howMany transactions, oldest first.
func (mp *Mempool) Drain(howMany int) []database.Tx {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if howMany > len(mp.pool) {
		howMany = len(mp.pool)
	}
	if howMany <= 0 {
		return nil
	}

	drained := make([]database.Tx, howMany)
	copy(drained, mp.pool[:howMany])
	mp.pool = append([]database.Tx{}, mp.pool[howMany:]...)

	for _, tx := range drained {
		delete(mp.inputs, tx.Input)
	}

	return drained
}

// Reconcile drops every entry whose input is no longer unspent in the
// specified ledger. Used after a reorg moves the chain under the pool.
func (mp *Mempool) Reconcile(ledger *database.Ledger) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	kept := mp.pool[:0]
	for _, tx := range mp.pool {
		if ledger.ContainsUnspent(tx.Input) {
			kept = append(kept, tx)
			continue
		}
		delete(mp.inputs, tx.Input)
	}
	mp.pool = kept
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = nil
	mp.inputs = make(map[database.TxID]struct{})
}

// HasInput reports whether any entry in the pool spends the specified
// output.
func (mp *Mempool) HasInput(txID database.TxID) bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	_, exists := mp.inputs[txID]
	return exists
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Copy returns a copy of the pool in arrival order.
func (mp *Mempool) Copy() []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	pool := make([]database.Tx, len(mp.pool))
	copy(pool, mp.pool)

	return pool
}
