// Package hex wraps github.com/templexxx/xhex, a SIMD-accelerated drop-in
// for encoding/hex, behind the small surface the rest of the relay needs.
package hex

import (
	"fmt"

	"github.com/templexxx/xhex"
)

// Enc returns the lowercase hex encoding of b.
func Enc(b []byte) string {
	return xhex.EncodeToString(b)
}

// Dec decodes a hex string into exactly len(dst) bytes, erroring on bad
// characters or a length mismatch.
func Dec(dst []byte, src []byte) (err error) {
	n := xhex.DecodedLen(len(src))
	if n != len(dst) {
		return fmt.Errorf("hex: decoded length %d does not match destination length %d", n, len(dst))
	}
	if _, err = xhex.Decode(dst, src); err != nil {
		return fmt.Errorf("hex: %w", err)
	}
	return nil
}

// DecBytes decodes src into a freshly allocated slice.
func DecBytes(src []byte) (dst []byte, err error) {
	dst = make([]byte, xhex.DecodedLen(len(src)))
	if _, err = xhex.Decode(dst, src); err != nil {
		return nil, fmt.Errorf("hex: %w", err)
	}
	return dst, nil
}
