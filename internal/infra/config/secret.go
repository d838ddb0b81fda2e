package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// PassphraseEnv holds the passphrase used to open sealed secrets.
const PassphraseEnv = "AITOOLS_CONFIG_KEY"

// SealedPrefix marks a config value produced by Seal.
const SealedPrefix = "enc:"

const saltSize = 16

// ErrMalformedSecret reports a sealed value that cannot be decoded.
var ErrMalformedSecret = errors.New("malformed sealed secret")

// IsSealed reports whether v was produced by Seal.
func IsSealed(v string) bool { return strings.HasPrefix(v, SealedPrefix) }

// Seal encrypts plaintext with AES-256-GCM under a key derived from
// passphrase. The result is SealedPrefix followed by base64(salt|nonce|ct).
func Seal(plaintext, passphrase string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	aead, err := keyedAEAD(passphrase, salt)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	blob := append(salt, nonce...)
	blob = aead.Seal(blob, nonce, []byte(plaintext), nil)
	return SealedPrefix + base64.RawURLEncoding.EncodeToString(blob), nil
}

// Open reverses Seal.
func Open(sealed, passphrase string) (string, error) {
	if !IsSealed(sealed) {
		return "", fmt.Errorf("%w: missing %q prefix", ErrMalformedSecret, SealedPrefix)
	}
	blob, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(sealed, SealedPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedSecret, err)
	}
	if len(blob) < saltSize {
		return "", fmt.Errorf("%w: too short", ErrMalformedSecret)
	}
	aead, err := keyedAEAD(passphrase, blob[:saltSize])
	if err != nil {
		return "", err
	}
	rest := blob[saltSize:]
	if len(rest) < aead.NonceSize()+aead.Overhead() {
		return "", fmt.Errorf("%w: too short", ErrMalformedSecret)
	}
	nonce, ct := rest[:aead.NonceSize()], rest[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("open secret: wrong passphrase or corrupted value: %w", err)
	}
	return string(plain), nil
}

// openSecrets replaces every sealed provider API key with its plaintext.
func openSecrets(cfg *Config, passphrase string) error {
	for i := range cfg.LLM.Providers {
		p := &cfg.LLM.Providers[i]
		if !IsSealed(p.APIKey) {
			continue
		}
		plain, err := Open(p.APIKey, passphrase)
		if err != nil {
			return fmt.Errorf("provider %s api_key: %w", p.Name, err)
		}
		p.APIKey = plain
	}
	return nil
}

// keyedAEAD derives a 32-byte Argon2id key and wraps it in GCM.
func keyedAEAD(passphrase string, salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(argon2.IDKey([]byte(passphrase), salt, 1, 64*1024, 4, 32))
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}
