package database

import (
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/minichain/minichain/foundation/blockchain/signature"
)

// coinbaseProofLength is the number of random bytes placed in the proof
// field of a coinbase transaction. The value is unverifiable on purpose.
const coinbaseProofLength = 48

// TxID uniquely identifies a transaction by a digest of its content.
type TxID string

// =============================================================================

// Tx represents a transfer of a single coin on the chain. A transaction
// with no input is a coinbase, it mints a new coin for the output key.
type Tx struct {
	Input  TxID                `json:"input"`  // The id of the unspent output being consumed. Empty for a coinbase.
	Output signature.PublicKey `json:"output"` // The public key receiving the coin.
	Proof  signature.Signature `json:"proof"`  // Signature authorizing the spend of the input.
}

// NewTx constructs a transaction moving the specified unspent output to the
// target key, signed by the owner's private key.
func NewTx(input TxID, output signature.PublicKey, privateKey *ecdsa.PrivateKey) (Tx, error) {
	if input == "" {
		return Tx{}, fmt.Errorf("transaction requires an input, use NewCoinbaseTx to mint")
	}

	tx := Tx{
		Input:  input,
		Output: output,
	}

	proof, err := signature.Sign(tx.signingPayload(), privateKey)
	if err != nil {
		return Tx{}, err
	}
	tx.Proof = proof

	return tx, nil
}

// NewCoinbaseTx constructs a transaction minting a new coin for the owner.
// The proof carries random bytes and never verifies; coinbase transactions
// are exempt from proof verification by construction.
func NewCoinbaseTx(owner signature.PublicKey) Tx {
	// crypto/rand.Read never fails on supported platforms.
	proof := make([]byte, coinbaseProofLength)
	_, _ = rand.Read(proof)

	return Tx{
		Output: owner,
		Proof:  signature.Signature(hexutil.Encode(proof)),
	}
}

// ID returns the unique identifier for this transaction.
func (tx Tx) ID() TxID {
	return TxID(signature.Hash([]byte(tx.Input), []byte(tx.Output), []byte(tx.Proof)))
}

// IsCoinbase reports whether this transaction mints a new coin.
func (tx Tx) IsCoinbase() bool {
	return tx.Input == ""
}

// VerifyProof reports whether the proof authorizes spending the input
// owned by the specified key.
func (tx Tx) VerifyProof(owner signature.PublicKey) bool {
	return signature.Verify(tx.signingPayload(), tx.Proof, owner)
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	if tx.IsCoinbase() {
		return fmt.Sprintf("coinbase:%s", shortHash(string(tx.Output)))
	}

	return fmt.Sprintf("%s->%s", shortHash(string(tx.Input)), shortHash(string(tx.Output)))
}

// signingPayload is the message covered by the proof: the destination key
// followed by the consumed output id.
func (tx Tx) signingPayload() []byte {
	return []byte(string(tx.Output) + string(tx.Input))
}

// shortHash trims a hex string down to a loggable prefix.
func shortHash(s string) string {
	if len(s) <= 12 {
		return s
	}

	return s[:12]
}
