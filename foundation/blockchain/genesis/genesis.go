// Package genesis maintains the starting parameters of the chain.
package genesis

import (
	"github.com/minichain/minichain/foundation/blockchain/signature"
)

// DefaultBlockCapacity is the block capacity used when the caller does
// not provide one.
const DefaultBlockCapacity = 10

// Genesis represents the parameters every node on the network must agree
// on before exchanging blocks.
type Genesis struct {
	BlockCapacity int    `json:"block_capacity"`  // The maximum number of transactions in a block, one slot reserved for the coinbase.
	PrevBlockHash string `json:"prev_block_hash"` // The sentinel previous hash of the first real block.
}

// Default constructs the genesis parameters used across the network.
func Default() Genesis {
	return Genesis{
		BlockCapacity: DefaultBlockCapacity,
		PrevBlockHash: signature.ZeroHash,
	}
}
