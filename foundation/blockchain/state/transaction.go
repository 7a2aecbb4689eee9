package state

import (
	"fmt"

	"github.com/minichain/minichain/foundation/blockchain/database"
	"github.com/minichain/minichain/foundation/blockchain/signature"
)

// SubmitTransaction attempts to admit the transaction into the mempool and
// reports the result. On success the transaction is shared with every
// peer. A rejected transaction is not a fault, admission is a boolean
// contract.
func (s *State) SubmitTransaction(tx database.Tx) bool {
	s.mu.Lock()
	admitted := s.mempool.Admit(tx, s.ledger)
	s.mu.Unlock()

	if !admitted {
		return false
	}

	s.evHandler("state: SubmitTransaction: admitted: tx[%s]", tx)

	// Peers that already hold the transaction reject the duplicate input,
	// which terminates the flood.
	for _, handle := range s.knownPeers.Copy() {
		handle.OnTxShare(tx)
	}

	return true
}

// OnTxShare is called by a peer to share a transaction it admitted.
func (s *State) OnTxShare(tx database.Tx) {
	s.SubmitTransaction(tx)
}

// CreateTransaction signs a transfer of one owned unspent output to the
// target key and submits it to the mempool. Outputs already referenced by
// a pending mempool entry are not respent until the pool clears. The
// oldest spendable coin is chosen.
func (s *State) CreateTransaction(target signature.PublicKey) (database.Tx, error) {
	s.mu.RLock()
	var coin database.TxID
	for _, txID := range s.balance {
		if !s.mempool.HasInput(txID) {
			coin = txID
			break
		}
	}
	s.mu.RUnlock()

	if coin == "" {
		return database.Tx{}, ErrInsufficientFunds
	}

	tx, err := database.NewTx(coin, target, s.privateKey)
	if err != nil {
		return database.Tx{}, err
	}

	if !s.SubmitTransaction(tx) {
		return database.Tx{}, fmt.Errorf("transaction %s rejected by mempool", tx)
	}

	return tx, nil
}

// TruncateMempool clears all pending transactions, allowing outputs with
// in-flight spends to be spent again.
func (s *State) TruncateMempool() {
	s.mempool.Truncate()
}
