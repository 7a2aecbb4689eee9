// Package signature provides the cryptographic support for the blockchain:
// key generation, message signing and verification, and content hashing.
package signature

import (
	"crypto/ecdsa"
	"crypto/sha256"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ZeroHash represents a hash code of zeros. It is the sentinel previous
// hash that precedes the first real block of every chain.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// PublicKey is the hex encoded public key of an account. It doubles as the
// account's address on the network.
type PublicKey string

// Signature is the hex encoded signature over a message.
type Signature string

// =============================================================================

// GenerateKeys constructs a new private key and the public key derived
// from it.
func GenerateKeys() (*ecdsa.PrivateKey, PublicKey, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, "", err
	}

	return privateKey, PublicKeyOf(privateKey), nil
}

// PublicKeyOf extracts the public key for the specified private key.
func PublicKeyOf(privateKey *ecdsa.PrivateKey) PublicKey {
	return PublicKey(hexutil.Encode(crypto.FromECDSAPub(&privateKey.PublicKey)))
}

// Sign uses the specified private key to sign the message.
func Sign(msg []byte, privateKey *ecdsa.PrivateKey) (Signature, error) {
	sig, err := crypto.Sign(stamp(msg), privateKey)
	if err != nil {
		return "", err
	}

	return Signature(hexutil.Encode(sig)), nil
}

// Verify reports whether the signature was produced over the message by the
// holder of the specified public key. Malformed signatures or keys report
// false, they never raise an error.
func Verify(msg []byte, sig Signature, publicKey PublicKey) bool {
	sigBytes, err := hexutil.Decode(string(sig))
	if err != nil {
		return false
	}
	if len(sigBytes) != crypto.SignatureLength {
		return false
	}

	pubBytes, err := hexutil.Decode(string(publicKey))
	if err != nil {
		return false
	}

	// The recovery id is not part of the verification.
	rs := sigBytes[:crypto.RecoveryIDOffset]

	return crypto.VerifySignature(pubBytes, stamp(msg), rs)
}

// Hash returns a unique hex encoded digest for the ordered set of parts.
// Both transaction and block identifiers are derived with this function.
func Hash(parts ...[]byte) string {
	h := sha256.New()
	for _, part := range parts {
		h.Write(part)
	}

	return hexutil.Encode(h.Sum(nil))
}

// =============================================================================

// stamp returns a hash of 32 bytes that represents the message with the
// chain stamp embedded into the final hash. Signatures produced for this
// chain are never valid on another network.
func stamp(msg []byte) []byte {
	stamp := []byte("\x19Minichain Signed Message:\n32")

	return crypto.Keccak256(stamp, crypto.Keccak256(msg))
}
