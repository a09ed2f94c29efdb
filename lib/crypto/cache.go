package crypto

import (
	"github.com/dgraph-io/ristretto/v2"
)

/* This file implements a process wide cache of verified (public key, message, signature) tuples */

var (
	DisableCache      = false
	SignatureCache, _ = ristretto.NewCache[string, struct{}](&ristretto.Config[string, struct{}]{
		NumCounters: 200_000, // 10x number of items
		MaxCost:     20_000,  // total cost (1 per verified tuple)
		BufferItems: 64,      // recommended default
	})
)

// VerifiedTuple is a (public key, message, signature) combination that passed verification
type VerifiedTuple struct {
	PublicKey PublicKeyI
	Message   []byte
	Signature []byte
}

// Key() returns a unique string key for the cache
func (vt *VerifiedTuple) Key() string {
	pk := vt.PublicKey.Bytes()
	// length prefix the public key so different splits never collide
	b := make([]byte, 0, 1+len(pk)+len(vt.Message)+len(vt.Signature)+1)
	b = append(b, byte(len(pk)))
	b = append(b, pk...)
	b = append(b, byte(len(vt.Signature)))
	b = append(b, vt.Signature...)
	b = append(b, vt.Message...)
	return string(b)
}

// CheckCache() is a convenience function that checks the signature cache for a combination
// and returns a callback for the caller to easily add the signature to the cache
func CheckCache(pk PublicKeyI, msg, sig []byte) (found bool, addToCache func()) {
	if DisableCache || SignatureCache == nil {
		return false, func() {}
	}
	tuple := VerifiedTuple{PublicKey: pk, Message: msg, Signature: sig}
	key := tuple.Key()
	addToCache = func() { SignatureCache.Set(key, struct{}{}, 1) }
	_, found = SignatureCache.Get(key)
	return
}
