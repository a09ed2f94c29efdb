package encryption

import (
	"encoding/hex"

	"github.com/aleph-im/aleph-go/lib"
)

/* This file implements the encryption front-end: curve selection, hex transport encoding, logging and telemetry */

const (
	opEncrypt = "encrypt"
	opDecrypt = "decrypt"
)

// options are the per call settings
type options struct {
	asHex bool
	curve Curve
	r1    R1Options
}

// Option configures a single Encrypt, EncryptForSelf or Decrypt call
type Option func(*options)

// AsHex() toggles hex encoding of the envelope (default true)
func AsHex(b bool) Option { return func(o *options) { o.asHex = b } }

// WithCurve() overrides the curve
func WithCurve(c Curve) Option { return func(o *options) { o.curve = c } }

// WithR1Options() pins the secp256r1 ephemeral key and iv
func WithR1Options(r1 R1Options) Option { return func(o *options) { o.r1 = r1 } }

// newOptions() applies opts over the defaults
func newOptions(defaultCurve Curve, opts []Option) *options {
	o := &options{asHex: true, curve: defaultCurve}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// envelope() builds the construction for the selected curve
func (o *options) envelope() (Envelope, lib.ErrorI) {
	if o.curve == CurveSECP256R1 {
		return SECP256R1Envelope{Options: o.r1}, nil
	}
	return NewEnvelope(o.curve)
}

// Encryptor is the entry point for payload encryption
type Encryptor struct {
	log     lib.LoggerI
	metrics *lib.Metrics
}

// NewEncryptor() creates an encryptor; metrics may be nil
func NewEncryptor(log lib.LoggerI, metrics *lib.Metrics) *Encryptor {
	if log == nil {
		log = lib.NewNullLogger()
	}
	return &Encryptor{log: log, metrics: metrics}
}

// defaultEncryptor backs the package level functions
var defaultEncryptor = NewEncryptor(nil, nil)

// Encrypt() seals content for targetKey, the curve defaults to secp256k1
func Encrypt(targetKey, content []byte, opts ...Option) ([]byte, error) {
	return defaultEncryptor.Encrypt(targetKey, content, opts...)
}

// EncryptForSelf() seals content so that the account can decrypt it
func EncryptForSelf(account *lib.Account, content []byte, opts ...Option) ([]byte, error) {
	return defaultEncryptor.EncryptForSelf(account, content, opts...)
}

// Decrypt() opens content with the account's local key, the curve defaults to the account's
func Decrypt(account *lib.Account, content []byte, opts ...Option) ([]byte, error) {
	return defaultEncryptor.Decrypt(account, content, opts...)
}

// Encrypt() seals content for targetKey, the curve defaults to secp256k1
func (e *Encryptor) Encrypt(targetKey, content []byte, opts ...Option) ([]byte, error) {
	return e.encrypt(targetKey, content, newOptions(CurveSECP256K1, opts))
}

// EncryptForSelf() seals content with the account's own key, the curve defaults to the account's
func (e *Encryptor) EncryptForSelf(account *lib.Account, content []byte, opts ...Option) ([]byte, error) {
	if account == nil {
		return nil, ErrNoLocalKey()
	}
	o := newOptions(CurveFromChain(account.Chain), opts)
	env, err := o.envelope()
	if err != nil {
		return nil, err
	}
	target, er := env.SelfKey(account)
	if er != nil {
		return nil, er
	}
	return e.encrypt(target, content, o)
}

// Decrypt() opens content with the account's local key
func (e *Encryptor) Decrypt(account *lib.Account, content []byte, opts ...Option) ([]byte, error) {
	if account == nil {
		return nil, ErrNoLocalKey()
	}
	o := newOptions(CurveFromChain(account.Chain), opts)
	env, err := o.envelope()
	if err != nil {
		return nil, err
	}
	e.metrics.UpdateEncryption(o.curve.String(), opDecrypt)
	if o.asHex {
		raw, er := lib.StringToBytes(string(content))
		if er != nil {
			e.metrics.UpdateDecryptFailure(o.curve.String())
			return nil, ErrMalformedEnvelope(er.Error())
		}
		content = raw
	}
	plaintext, er := env.Decrypt(account, content)
	if er != nil {
		e.metrics.UpdateDecryptFailure(o.curve.String())
		e.log.Debugf("Decrypt with %s failed: %s", o.curve, er.Error())
		return nil, er
	}
	return plaintext, nil
}

// encrypt() seals and optionally hex encodes
func (e *Encryptor) encrypt(targetKey, content []byte, o *options) ([]byte, error) {
	env, err := o.envelope()
	if err != nil {
		return nil, err
	}
	e.metrics.UpdateEncryption(o.curve.String(), opEncrypt)
	out, er := env.Encrypt(targetKey, content)
	if er != nil {
		e.log.Debugf("Encrypt with %s failed: %s", o.curve, er.Error())
		return nil, er
	}
	if o.asHex {
		encoded := make([]byte, hex.EncodedLen(len(out)))
		hex.Encode(encoded, out)
		return encoded, nil
	}
	return out, nil
}
