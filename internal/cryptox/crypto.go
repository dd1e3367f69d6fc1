// Package cryptox seals small JSON payloads (the persisted auth session) with
// AES-GCM under a key derived from a per-device secret.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dmitrijs2005/clouddemo/internal/common"
	"github.com/dmitrijs2005/clouddemo/internal/filex"
	"golang.org/x/crypto/argon2"
)

const (
	KeySize    = 32
	SecretSize = 32
	SaltSize   = 16
)

var ErrSealedDataTooShort = errors.New("sealed data too short")

// DeriveKey stretches secret with argon2id into an AES-256 key.
func DeriveKey(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, KeySize)
}

// SealJSON marshals v and encrypts it with AES-GCM. The random nonce is
// prepended to the ciphertext so the result can be stored as one blob.
func SealJSON(v any, key []byte) ([]byte, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(aead.NonceSize())
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// OpenJSON reverses SealJSON and unmarshals the plaintext into v.
func OpenJSON(sealed, key []byte, v any) error {
	aead, err := newGCM(key)
	if err != nil {
		return err
	}

	if len(sealed) < aead.NonceSize() {
		return ErrSealedDataTooShort
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(plaintext)

	return json.Unmarshal(plaintext, v)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// LoadOrCreateSecret reads the device secret at path, creating it (0600,
// parent dirs included) with fresh random bytes when it does not exist yet.
func LoadOrCreateSecret(path string) ([]byte, error) {
	secret, err := os.ReadFile(path)
	if err == nil {
		if len(secret) != SecretSize {
			return nil, fmt.Errorf("secret file %s: unexpected size %d", path, len(secret))
		}
		return secret, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read secret file: %w", err)
	}

	if err := filex.EnsureParentDir(path); err != nil {
		return nil, err
	}

	secret = common.GenerateRandByteArray(SecretSize)
	if err := os.WriteFile(path, secret, 0o600); err != nil {
		return nil, fmt.Errorf("write secret file: %w", err)
	}
	return secret, nil
}
