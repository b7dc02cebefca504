package txn

import (
	"crypto/ed25519"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"
)

// ed25519Scheme is the authentication-key scheme suffix for single-key
// ed25519 accounts.
const ed25519Scheme = 0x00

// Signer holds an ed25519 key pair and the account address derived from it.
type Signer struct {
	priv    ed25519.PrivateKey
	pub     ed25519.PublicKey
	address AccountAddress
}

// NewSigner builds a signer from a 32-byte hex seed, with or without a 0x
// prefix.
func NewSigner(hexKey string) (*Signer, error) {
	clean := strings.TrimSpace(hexKey)
	if clean == "" {
		return nil, errors.New("private key is required")
	}
	if !strings.HasPrefix(clean, "0x") {
		clean = "0x" + clean
	}
	seed, err := hexutil.Decode(clean)
	if err != nil {
		return nil, err
	}
	if len(seed) != ed25519.SeedSize {
		return nil, errors.New("private key must be 32 bytes")
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return &Signer{priv: priv, pub: pub, address: deriveAddress(pub)}, nil
}

// deriveAddress computes sha3-256(pubkey || scheme), the single-key ed25519
// authentication key, which doubles as the account address.
func deriveAddress(pub ed25519.PublicKey) AccountAddress {
	h := sha3.New256()
	h.Write(pub)
	h.Write([]byte{ed25519Scheme})
	var addr AccountAddress
	copy(addr[:], h.Sum(nil))
	return addr
}

func (s *Signer) Address() AccountAddress {
	return s.address
}

func (s *Signer) PublicKey() []byte {
	out := make([]byte, len(s.pub))
	copy(out, s.pub)
	return out
}

// Sign produces the signed transaction for a raw transaction whose sender
// must match the signer's account.
func (s *Signer) Sign(raw RawTransaction) (SignedTransaction, error) {
	if raw.Sender != s.address {
		return SignedTransaction{}, errors.New("transaction sender does not match signer address")
	}
	msg, err := raw.SigningMessage()
	if err != nil {
		return SignedTransaction{}, err
	}
	sig := ed25519.Sign(s.priv, msg)
	return SignedTransaction{Raw: raw, PublicKey: s.PublicKey(), Signature: sig}, nil
}
