package encryption

import (
	"strings"

	"github.com/aleph-im/aleph-go/lib"
)

// Curve names the envelope construction used for an account
type Curve string

const (
	CurveSECP256K1 Curve = "secp256k1" // ECIES over secp256k1, the default
	CurveSECP256R1 Curve = "secp256r1" // ECIES style over P-256, only by explicit choice
	CurveED25519   Curve = "ed25519"   // secretbox keyed by raw key bytes
)

// CurveFromChain() selects the curve for an account type: SOL uses ed25519, everything else secp256k1
func CurveFromChain(chain lib.ChainType) Curve {
	if chain == lib.ChainSOL {
		return CurveED25519
	}
	return CurveSECP256K1
}

// ParseCurve() parses a curve name
func ParseCurve(s string) (Curve, lib.ErrorI) {
	switch c := Curve(strings.ToLower(strings.TrimSpace(s))); c {
	case CurveSECP256K1, CurveSECP256R1, CurveED25519:
		return c, nil
	default:
		return "", ErrUnknownCurve(s)
	}
}

// String() returns the curve name
func (c Curve) String() string { return string(c) }
