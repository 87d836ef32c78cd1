package event

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"relaymere.dev/pkg/crypto/p256k"
	"relaymere.dev/pkg/encoders/ident"
)

// Verify checks that ev.Id is the correct canonical hash of ev and that
// Sig is a valid Schnorr signature over Id by Pubkey. Both checks must
// hold; a client-supplied id that doesn't match its own canonical hash
// is rejected rather than silently corrected, since accepting it would
// let a tampered id bypass the hash check entirely.
func (ev *E) Verify() (valid bool, err error) {
	computed := ComputeId(ev)
	if !bytes.Equal(computed[:], ev.Id[:]) {
		return false, nil
	}
	pub, err := schnorr.ParsePubKey(ev.Pubkey[:])
	if err != nil {
		return false, fmt.Errorf("event: invalid pubkey: %w", err)
	}
	sig, err := schnorr.ParseSignature(ev.Sig[:])
	if err != nil {
		return false, fmt.Errorf("event: invalid signature encoding: %w", err)
	}
	return sig.Verify(ev.Id[:], pub), nil
}

// Sign populates Pubkey, Id and Sig from the signer's key material. The
// caller must set CreatedAt before calling Sign.
func (ev *E) Sign(signer *p256k.Signer) (err error) {
	ev.Pubkey, err = ident.NewPubkey(signer.Pub())
	if err != nil {
		return err
	}
	ev.Id = ComputeId(ev)
	sigBytes, err := signer.Sign(ev.Id[:])
	if err != nil {
		return err
	}
	ev.Sig, err = ident.NewSignature(sigBytes)
	return err
}
