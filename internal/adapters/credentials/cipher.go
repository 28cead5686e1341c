package credentials

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"

	"golang.org/x/crypto/scrypt"

	"github.com/eleven-am/flowrun/internal/domain"
)

const (
	keyLength = 32
	scryptN   = 1 << 15
	scryptR   = 8
	scryptP   = 1
)

var errCiphertextTooShort = errors.New("ciphertext shorter than nonce")

// AESCipher seals secrets with AES-256-GCM under a key derived from the
// configured passphrase. Ciphertext layout is nonce || sealed.
type AESCipher struct {
	aead cipher.AEAD
}

func NewAESCipher(config domain.CredentialConfig) (*AESCipher, error) {
	if config.EncryptionKey == "" {
		return nil, domain.NewConfigError("credentials.encryption_key", domain.ErrInvalidInput)
	}

	key, err := scrypt.Key([]byte(config.EncryptionKey), []byte(config.Salt), scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return nil, domain.NewConfigError("credentials.encryption_key", err)
	}
	defer wipe(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, domain.NewConfigError("credentials.encryption_key", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, domain.NewConfigError("credentials.encryption_key", err)
	}

	return &AESCipher{aead: aead}, nil
}

func (c *AESCipher) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return c.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (c *AESCipher) Decrypt(ciphertext []byte) ([]byte, error) {
	size := c.aead.NonceSize()
	if len(ciphertext) < size {
		return nil, errCiphertextTooShort
	}
	return c.aead.Open(nil, ciphertext[:size], ciphertext[size:], nil)
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
