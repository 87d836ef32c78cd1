// Package ident holds the fixed-width byte identifiers exchanged in the
// wire protocol: Pubkey, EventId, Signature and Seckey. Each is an opaque
// byte array with a lowercase-hex text form; decoding rejects any
// non-hex byte or a string of the wrong length.
package ident

import (
	"encoding/json"
	"fmt"

	"relaymere.dev/pkg/encoders/hex"
)

var _ fmt.GoStringer = Seckey{}
var _ fmt.Formatter = Seckey{}

// Pubkey is the x-only secp256k1 public key identifying an event's author.
type Pubkey [32]byte

// EventId is the SHA-256 of an event's canonical serialization.
type EventId [32]byte

// Signature is a 64-byte Schnorr signature over an EventId.
type Signature [64]byte

// Seckey is a 32-byte secp256k1 secret key. It never appears in its raw
// form in logs or String(); callers that truly need the bytes use Bytes().
type Seckey [32]byte

func NewPubkey(b []byte) (p Pubkey, err error) { err = fill(p[:], b); return }
func NewEventId(b []byte) (e EventId, err error) { err = fill(e[:], b); return }
func NewSignature(b []byte) (s Signature, err error) { err = fill(s[:], b); return }
func NewSeckey(b []byte) (s Seckey, err error) { err = fill(s[:], b); return }

func fill(dst, src []byte) error {
	if len(src) != len(dst) {
		return fmt.Errorf("ident: expected %d bytes, got %d", len(dst), len(src))
	}
	copy(dst, src)
	return nil
}

func (p Pubkey) Bytes() []byte { b := p; return b[:] }
func (e EventId) Bytes() []byte { b := e; return b[:] }
func (s Signature) Bytes() []byte { b := s; return b[:] }
func (s Seckey) Bytes() []byte { b := s; return b[:] }

func (p Pubkey) String() string { return hex.Enc(p[:]) }
func (e EventId) String() string { return hex.Enc(e[:]) }
func (s Signature) String() string { return hex.Enc(s[:]) }

// String is deliberately NOT implemented for Seckey to avoid accidental
// leakage into %v/%s formatting or debug prints. Use Bytes() explicitly.

func ParsePubkey(s string) (p Pubkey, err error) {
	b, err := hex.DecBytes([]byte(s))
	if err != nil {
		return p, err
	}
	return NewPubkey(b)
}

func ParseEventId(s string) (e EventId, err error) {
	b, err := hex.DecBytes([]byte(s))
	if err != nil {
		return e, err
	}
	return NewEventId(b)
}

func ParseSignature(s string) (sig Signature, err error) {
	b, err := hex.DecBytes([]byte(s))
	if err != nil {
		return sig, err
	}
	return NewSignature(b)
}

func ParseSeckey(s string) (sk Seckey, err error) {
	b, err := hex.DecBytes([]byte(s))
	if err != nil {
		return sk, err
	}
	return NewSeckey(b)
}

func (p Pubkey) MarshalJSON() ([]byte, error)  { return json.Marshal(p.String()) }
func (e EventId) MarshalJSON() ([]byte, error) { return json.Marshal(e.String()) }
func (s Signature) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (p *Pubkey) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParsePubkey(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func (e *EventId) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseEventId(s)
	if err != nil {
		return err
	}
	*e = v
	return nil
}

func (s *Signature) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	v, err := ParseSignature(str)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// GoString prevents %#v from printing raw secret bytes for Seckey.
func (s Seckey) GoString() string { return "ident.Seckey{REDACTED}" }

// Format implements fmt.Formatter so every verb (%v, %s, %x, ...) redacts
// the key instead of falling back to the default array-of-bytes printer.
func (s Seckey) Format(f fmt.State, _ rune) { _, _ = f.Write([]byte("ident.Seckey{REDACTED}")) }
