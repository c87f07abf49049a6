package jwtx

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"sync"
)

var ErrNoKey = errors.New("jwtx: key not found")

// KeySet holds all public verification keys in memory. It's thread-safe so
// it can be shared between the verifier and readiness checks.
type KeySet struct {
	mu  sync.RWMutex
	pub map[string]*rsa.PublicKey // by kid
}

// NewKeySet returns an empty KeySet.
func NewKeySet() *KeySet {
	return &KeySet{
		pub: make(map[string]*rsa.PublicKey),
	}
}

// AddSigner registers a Signer's public key into the KeySet.
func (k *KeySet) AddSigner(s Signer) error {
	pub := s.PublicKey()
	if pub == nil {
		return errors.New("jwtx: signer has no public key")
	}
	k.Add(s.KID(), pub)
	return nil
}

// Add registers a public key under the given kid.
func (k *KeySet) Add(kid string, pub *rsa.PublicKey) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.pub[kid] = pub
}

// AddPublicKeyPEM parses a PEM-encoded RSA public key (PKIX or PKCS1) and
// registers it under the given kid.
func (k *KeySet) AddPublicKeyPEM(kid string, pemKey []byte) error {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return errors.New("jwtx: invalid PEM for RSA public key")
	}

	var pub *rsa.PublicKey

	switch block.Type {
	case "RSA PUBLIC KEY":
		p, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return fmt.Errorf("jwtx: parse PKCS1 public key: %w", err)
		}
		pub = p
	case "PUBLIC KEY":
		p, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return fmt.Errorf("jwtx: parse PKIX public key: %w", err)
		}
		rk, ok := p.(*rsa.PublicKey)
		if !ok {
			return errors.New("jwtx: not an RSA public key")
		}
		pub = rk
	default:
		return fmt.Errorf("jwtx: unsupported PEM type %q", block.Type)
	}

	k.Add(kid, pub)
	return nil
}

// Get returns the public key for the given kid.
func (k *KeySet) Get(kid string) (*rsa.PublicKey, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if pk, ok := k.pub[kid]; ok {
		return pk, nil
	}
	return nil, ErrNoKey
}

// IsReady returns true if the KeySet has at least one key loaded.
func (k *KeySet) IsReady() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.pub) > 0
}
