package signer

import (
	"context"
	"sort"

	"github.com/aleph-im/aleph-go/lib"
)

/* This file implements the signing dispatcher: it routes a message to the scheme of the signing account and writes the signature back */

// ChainSigner produces the final signature string of a chain for a verification buffer
type ChainSigner interface {
	Chain() lib.ChainType
	Sign(ctx context.Context, account *lib.Account, buffer []byte) (string, error)
}

// ChainVerifier checks a signed message against its sender
type ChainVerifier interface {
	Verify(msg *lib.Message) (bool, error)
}

// SignStatus is the outcome of a dispatch
type SignStatus int

const (
	SignSkipped SignStatus = iota // no scheme for the account's chain, the message is left unsigned
	SignSigned                    // the signature was written back
	SignFailed                    // the scheme returned an error
)

// String() returns the metrics label of the status
func (s SignStatus) String() string {
	switch s {
	case SignSigned:
		return "signed"
	case SignFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// Dispatcher holds the chain schemes, read-only once built
type Dispatcher struct {
	registry map[lib.ChainType]ChainSigner
	log      lib.LoggerI
	metrics  *lib.Metrics
}

// NewDispatcher() creates a dispatcher with every default scheme registered
// legacy NULS is opt-in, see WithLegacyNULS()
func NewDispatcher(log lib.LoggerI, metrics *lib.Metrics) *Dispatcher {
	if log == nil {
		log = lib.NewNullLogger()
	}
	d := &Dispatcher{registry: make(map[lib.ChainType]ChainSigner), log: log, metrics: metrics}
	d.Register(NULS2Signer{})
	d.Register(ETHSigner{})
	d.Register(DOTSigner{})
	d.Register(CosmosSigner{})
	d.Register(SOLSigner{})
	d.Register(AVAXSigner{})
	return d
}

// Register() adds or replaces the scheme for s.Chain()
func (d *Dispatcher) Register(s ChainSigner) *Dispatcher {
	d.registry[s.Chain()] = s
	return d
}

// WithLegacyNULS() registers the pre NULS2 scheme
func (d *Dispatcher) WithLegacyNULS() *Dispatcher { return d.Register(NULSSigner{}) }

// Chains() lists the registered chains in order
func (d *Dispatcher) Chains() (chains []lib.ChainType) {
	for c := range d.registry {
		chains = append(chains, c)
	}
	sort.Slice(chains, func(i, j int) bool { return chains[i] < chains[j] })
	return
}

// Sign() fills msg.Chain from the account when empty, then signs msg's verification buffer with the
// account's scheme; an account on a chain with no scheme leaves the message unsigned and is not an error
func (d *Dispatcher) Sign(ctx context.Context, account *lib.Account, msg *lib.Message) (SignStatus, error) {
	if account == nil {
		return SignFailed, ErrNoKeyMaterial(msg.Chain)
	}
	if msg.Chain == "" {
		msg.Chain = account.Chain
	}
	s, ok := d.registry[account.Chain]
	if !ok {
		d.log.Warnf("No signing scheme for chain %s, message from %s left unsigned", account.Chain, account.Address)
		d.metrics.UpdateSignature(account.Chain, SignSkipped.String())
		return SignSkipped, nil
	}
	sig, err := s.Sign(ctx, account, msg.VerificationBuffer())
	if err != nil {
		d.log.Errorf("Signing with %s account %s failed: %s", account.Chain, account.Address, err.Error())
		d.metrics.UpdateSignature(account.Chain, SignFailed.String())
		return SignFailed, err
	}
	msg.Signature = sig
	d.log.Debugf("Signed %s message %s with %s account %s", msg.Type, msg.ItemHash, account.Chain, account.Address)
	d.metrics.UpdateSignature(account.Chain, SignSigned.String())
	return SignSigned, nil
}

// Verify() checks msg.Signature against msg.Sender with the scheme of msg.Chain
func (d *Dispatcher) Verify(msg *lib.Message) (bool, error) {
	s, ok := d.registry[msg.Chain]
	if !ok {
		return false, ErrUnverifiableChain(msg.Chain)
	}
	v, ok := s.(ChainVerifier)
	if !ok {
		return false, ErrUnverifiableChain(msg.Chain)
	}
	if !msg.IsSigned() {
		return false, nil
	}
	return v.Verify(msg)
}

// signWith() hands input to the account's external signer, or calls local with the account's private key
func signWith(ctx context.Context, account *lib.Account, input []byte, local func(privateKey []byte) (string, error)) (string, error) {
	if h, ok := account.Signer(); ok {
		sig, err := h.Sign(ctx, account, input)
		if err != nil {
			return "", ErrExternalSigner(err)
		}
		return sig, nil
	}
	pk, ok := account.PrivateKey()
	if !ok {
		return "", ErrNoKeyMaterial(account.Chain)
	}
	sig, err := local(pk)
	if err != nil {
		return "", ErrSign(account.Chain, err)
	}
	return sig, nil
}
