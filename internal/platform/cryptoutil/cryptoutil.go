// Package cryptoutil seals connected-service credentials before they are
// written to storage. secretbox with a random nonce per seal; the 32-byte
// key comes from configuration and never leaves the process.
package cryptoutil

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

type Box struct {
	key [32]byte
}

// NewBox derives the sealing key from an operator-supplied secret. Deriving
// through sha256 means the secret does not have to be exactly 32 bytes.
func NewBox(secret string) (*Box, error) {
	if secret == "" {
		return nil, fmt.Errorf("missing credential encryption secret")
	}
	b := &Box{key: sha256.Sum256([]byte(secret))}
	return b, nil
}

func (b *Box) Seal(plaintext []byte) ([]byte, error) {
	if b == nil {
		return nil, fmt.Errorf("box not initialized")
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("read nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plaintext, &nonce, &b.key), nil
}

func (b *Box) Open(ciphertext []byte) ([]byte, error) {
	if b == nil {
		return nil, fmt.Errorf("box not initialized")
	}
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], ciphertext[:nonceSize])
	plain, ok := secretbox.Open(nil, ciphertext[nonceSize:], &nonce, &b.key)
	if !ok {
		return nil, fmt.Errorf("ciphertext authentication failed")
	}
	return plain, nil
}
