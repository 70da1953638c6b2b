// Package crypto wraps stdlib crypto/ed25519 for the PSPF/2025 engine:
// deterministic (seeded) or random keypairs, signing over canonical
// metadata, and verification. Grounded on the teacher's
// pkg/psp/format_2025/crypto.go signing/key-loading logic.
package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha512"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// KeypairFromSeed derives a deterministic Ed25519 keypair from an
// arbitrary caller-supplied seed string via SHA-512 (first 32 bytes).
// Same seed always yields the same keypair.
func KeypairFromSeed(seed string) (ed25519.PublicKey, ed25519.PrivateKey) {
	digest := sha512.Sum512([]byte(seed))
	priv := ed25519.NewKeyFromSeed(digest[:32])
	pub := priv.Public().(ed25519.PublicKey)
	return pub, priv
}

// KeypairRandom generates a random Ed25519 keypair using a
// cryptographically secure RNG.
func KeypairRandom() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("pspf: generate keypair: %w", err)
	}
	return pub, priv, nil
}

// Sign signs msg (the canonical, uncompressed metadata bytes) with priv.
func Sign(priv ed25519.PrivateKey, msg []byte) [64]byte {
	sig := ed25519.Sign(priv, msg)
	var out [64]byte
	copy(out[:], sig)
	return out
}

// Verify reports whether sig is a valid Ed25519 signature of msg under
// pub.
func Verify(pub ed25519.PublicKey, msg []byte, sig [64]byte) bool {
	return ed25519.Verify(pub, msg, sig[:])
}

// LoadPrivateKey parses a private key supplied externally, accepting PEM
// (PKCS8 or raw Ed25519 PrivateKey block) or a raw 32-byte seed, mirroring
// the teacher's loadKeysFromFiles fallback chain.
func LoadPrivateKey(data []byte) (ed25519.PrivateKey, error) {
	if block, _ := pem.Decode(data); block != nil {
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err == nil {
			if priv, ok := key.(ed25519.PrivateKey); ok {
				return priv, nil
			}
		}
		if len(block.Bytes) == ed25519.SeedSize {
			return ed25519.NewKeyFromSeed(block.Bytes), nil
		}
		return nil, fmt.Errorf("pspf: unsupported PEM private key contents")
	}

	if len(data) == ed25519.SeedSize {
		return ed25519.NewKeyFromSeed(data), nil
	}
	if len(data) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(data), nil
	}
	return nil, fmt.Errorf("pspf: private key must be PEM, a %d-byte seed, or a %d-byte raw key", ed25519.SeedSize, ed25519.PrivateKeySize)
}

// EncodePrivateKeyPEM encodes priv as a PEM PKCS8 block.
func EncodePrivateKeyPEM(priv ed25519.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// EncodePublicKeyPEM encodes pub as a PEM PKIX block.
func EncodePublicKeyPEM(pub ed25519.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}
