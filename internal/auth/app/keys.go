package app

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"log/slog"
	"os"

	"github.com/sableforge/gatekeeper/pkg/jwtx"
)

// InitAuthKeys loads the RSA signing key and builds the signer/verifier
// pair. With no key file configured a fresh key is generated in memory;
// tokens then die with the process, which is fine for development and fatal
// for nothing.
func InitAuthKeys(cfg Config, logger *slog.Logger) (jwtx.Signer, *jwtx.KeySet, jwtx.Verifier, error) {
	pemBytes, err := loadOrGenerateKeyPEM(cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	signer, err := jwtx.NewSignerRS256(cfg.KeyID, pemBytes)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load signing key: %w", err)
	}
	if err := signer.Validate(); err != nil {
		return nil, nil, nil, err
	}

	keys := jwtx.NewKeySet()
	if err := keys.AddSigner(signer); err != nil {
		return nil, nil, nil, err
	}

	verifier := jwtx.NewVerifierRS256(keys, cfg.Issuer, cfg.Audience)
	return signer, keys, verifier, nil
}

func loadOrGenerateKeyPEM(cfg Config, logger *slog.Logger) ([]byte, error) {
	if cfg.PrivateKeyFile != "" {
		pemBytes, err := os.ReadFile(cfg.PrivateKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read private key file: %w", err)
		}
		logger.Info("signing key loaded", "file", cfg.PrivateKeyFile, "kid", cfg.KeyID)
		return pemBytes, nil
	}

	bits := cfg.RSABits
	if bits < 2048 {
		bits = 2048
	}
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("generate ephemeral key: %w", err)
	}

	logger.Warn("no AUTH_PRIVATE_KEY_FILE set, generated ephemeral signing key",
		"bits", bits, "kid", cfg.KeyID)

	return pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}), nil
}
