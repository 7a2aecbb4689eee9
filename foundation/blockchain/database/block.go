package database

import (
	"github.com/minichain/minichain/foundation/blockchain/signature"
)

// BlockHash uniquely identifies a block by a digest of its content.
type BlockHash string

// Block represents an ordered group of transactions linked to the block
// that precedes it on the chain.
type Block struct {
	PrevHash BlockHash `json:"prev_hash"` // Hash of the previous block, or the genesis sentinel.
	Trans    []Tx      `json:"trans"`     // Ordered transactions, exactly one of which is the coinbase.
}

// NewBlock constructs a block on top of the specified previous hash.
func NewBlock(prevHash BlockHash, trans []Tx) Block {
	return Block{
		PrevHash: prevHash,
		Trans:    trans,
	}
}

// Hash returns the unique hash for the block: a digest over the previous
// hash and the ordered transaction ids. Reordering the transactions
// changes the hash.
func (b Block) Hash() BlockHash {
	parts := make([][]byte, 0, len(b.Trans)+1)
	parts = append(parts, []byte(b.PrevHash))
	for _, tx := range b.Trans {
		parts = append(parts, []byte(tx.ID()))
	}

	return BlockHash(signature.Hash(parts...))
}
