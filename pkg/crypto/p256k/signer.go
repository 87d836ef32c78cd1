// Package p256k implements the signer.I interface for secp256k1/BIP-340
// Schnorr signatures used to authenticate nostr events, backed by
// github.com/btcsuite/btcd/btcec/v2.
package p256k

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"relaymere.dev/pkg/encoders/hex"
	"relaymere.dev/pkg/interfaces/signer"
)

// Signer is an implementation of signer.I backed by btcec.
type Signer struct {
	secretKey *btcec.PrivateKey
	publicKey *btcec.PublicKey
	skb, pkb  []byte
}

var _ signer.I = &Signer{}

// Generate creates a fresh random keypair.
func (s *Signer) Generate() (err error) {
	sk, err := btcec.NewPrivateKey()
	if err != nil {
		return err
	}
	s.secretKey = sk
	s.skb = sk.Serialize()
	s.publicKey = sk.PubKey()
	s.pkb = schnorr.SerializePubKey(s.publicKey)
	return nil
}

// InitSec initializes the Signer from a raw 32-byte secret key.
func (s *Signer) InitSec(sec []byte) (err error) {
	if len(sec) != 32 {
		return fmt.Errorf("p256k: secret key must be 32 bytes, got %d", len(sec))
	}
	s.skb = sec
	s.secretKey, s.publicKey = btcec.PrivKeyFromBytes(sec)
	s.pkb = schnorr.SerializePubKey(s.publicKey)
	return nil
}

// InitPub initializes a verify-only Signer from a raw 32-byte x-only
// public key.
func (s *Signer) InitPub(pub []byte) (err error) {
	pk, err := schnorr.ParsePubKey(pub)
	if err != nil {
		return err
	}
	s.publicKey = pk
	s.pkb = pub
	return nil
}

// Sec returns the raw secret key bytes, or nil for a verify-only Signer.
func (s *Signer) Sec() []byte {
	if s == nil {
		return nil
	}
	return s.skb
}

// Pub returns the raw 32-byte x-only public key.
func (s *Signer) Pub() []byte {
	if s == nil {
		return nil
	}
	return s.pkb
}

// Sign produces a BIP-340 Schnorr signature over msg. Requires an
// initialized secret key.
func (s *Signer) Sign(msg []byte) (sig []byte, err error) {
	if s.secretKey == nil {
		return nil, fmt.Errorf("p256k: signer has no secret key")
	}
	si, err := schnorr.Sign(s.secretKey, msg)
	if err != nil {
		return nil, err
	}
	return si.Serialize(), nil
}

// Verify checks a BIP-340 Schnorr signature over msg. Requires an
// initialized public key.
func (s *Signer) Verify(msg, sig []byte) (valid bool, err error) {
	if s.publicKey == nil {
		return false, fmt.Errorf("p256k: signer has no public key")
	}
	si, err := schnorr.ParseSignature(sig)
	if err != nil {
		return false, err
	}
	return si.Verify(msg, s.publicKey), nil
}

// NewSecFromHex builds a signing Signer from a hex-encoded secret key.
func NewSecFromHex(skh string) (s *Signer, err error) {
	sk, err := hex.DecBytes([]byte(skh))
	if err != nil {
		return nil, err
	}
	s = &Signer{}
	if err = s.InitSec(sk); err != nil {
		return nil, err
	}
	return s, nil
}

// NewPubFromHex builds a verify-only Signer from a hex-encoded pubkey.
func NewPubFromHex(pkh string) (s *Signer, err error) {
	pk, err := hex.DecBytes([]byte(pkh))
	if err != nil {
		return nil, err
	}
	s = &Signer{}
	if err = s.InitPub(pk); err != nil {
		return nil, err
	}
	return s, nil
}
