package bits

import (
	"fmt"
	"math/big"
)

// DecimalToLE parses a base-10, non-negative ASCII integer (a VCD
// timestamp) and returns its minimum-length little-endian byte encoding.
// Zero encodes as a single zero byte, matching the num crate's
// BigUint::to_bytes_le behavior the original parser relies on.
func DecimalToLE(decimal string) ([]byte, error) {
	n, ok := new(big.Int).SetString(decimal, 10)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("not a valid non-negative decimal integer: %q", decimal)
	}
	return BigIntToLE(n), nil
}

// BigIntToLE returns the minimum-length little-endian encoding of n.
func BigIntToLE(n *big.Int) []byte {
	be := n.Bytes()
	le := make([]byte, len(be))
	for i, b := range be {
		le[len(be)-1-i] = b
	}
	if len(le) == 0 {
		le = []byte{0}
	}
	return le
}

// LEToBigInt decodes a minimum-length little-endian byte sequence (as
// stored in the shared timestamp buffer or a numeric column) into an
// arbitrary-precision unsigned integer.
func LEToBigInt(le []byte) *big.Int {
	be := make([]byte, len(le))
	for i, b := range le {
		be[len(le)-1-i] = b
	}
	return new(big.Int).SetBytes(be)
}
