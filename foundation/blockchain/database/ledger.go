// Package database maintains the transaction and block value types and the
// in memory ledger of unspent outputs for a single node.
package database

import (
	"sync"

	"github.com/minichain/minichain/foundation/blockchain/signature"
)

// Ledger manages the set of currently unspent outputs plus a total index
// of every transaction ever adopted on the chain. The total index is what
// resolves an input reference even after the output it names is spent.
//
// The ledger performs no validation, it is bookkeeping driven by the
// state engine. Preconditions such as the input being currently unspent
// are enforced by the caller.
type Ledger struct {
	mu      sync.RWMutex
	unspent map[TxID]Tx
	index   map[TxID]Tx
}

// NewLedger constructs an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		unspent: make(map[TxID]Tx),
		index:   make(map[TxID]Tx),
	}
}

// Apply records the transaction: the input it names (if any) leaves the
// unspent set and the transaction itself becomes a new unspent output.
func (lg *Ledger) Apply(tx Tx) {
	lg.mu.Lock()
	defer lg.mu.Unlock()

	if !tx.IsCoinbase() {
		delete(lg.unspent, tx.Input)
	}

	txID := tx.ID()
	lg.unspent[txID] = tx
	lg.index[txID] = tx
}

// Rollback is the inverse of Apply: the transaction leaves the unspent set
// and the index, and the output it consumed (if any) is restored as
// unspent, resolved through the total index.
func (lg *Ledger) Rollback(tx Tx) {
	lg.mu.Lock()
	defer lg.mu.Unlock()

	delete(lg.unspent, tx.ID())
	delete(lg.index, tx.ID())

	if tx.IsCoinbase() {
		return
	}
	if prev, exists := lg.index[tx.Input]; exists {
		lg.unspent[tx.Input] = prev
	}
}

// ContainsUnspent reports whether the transaction id is currently an
// unspent output.
func (lg *Ledger) ContainsUnspent(txID TxID) bool {
	lg.mu.RLock()
	defer lg.mu.RUnlock()

	_, exists := lg.unspent[txID]
	return exists
}

// Lookup resolves a transaction id through the total index, whether the
// output is currently spent or not.
func (lg *Ledger) Lookup(txID TxID) (Tx, bool) {
	lg.mu.RLock()
	defer lg.mu.RUnlock()

	tx, exists := lg.index[txID]
	return tx, exists
}

// Unspent returns a copy of the current unspent outputs.
func (lg *Ledger) Unspent() []Tx {
	lg.mu.RLock()
	defer lg.mu.RUnlock()

	txs := make([]Tx, 0, len(lg.unspent))
	for _, tx := range lg.unspent {
		txs = append(txs, tx)
	}

	return txs
}

// UnspentOwnedBy returns the ids of the unspent outputs held by the
// specified key.
func (lg *Ledger) UnspentOwnedBy(owner signature.PublicKey) []TxID {
	lg.mu.RLock()
	defer lg.mu.RUnlock()

	var ids []TxID
	for txID, tx := range lg.unspent {
		if tx.Output == owner {
			ids = append(ids, txID)
		}
	}

	return ids
}

// Count returns the current number of unspent outputs.
func (lg *Ledger) Count() int {
	lg.mu.RLock()
	defer lg.mu.RUnlock()

	return len(lg.unspent)
}
