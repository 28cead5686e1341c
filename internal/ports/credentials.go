package ports

import (
	"context"

	"github.com/eleven-am/flowrun/internal/domain"
)

type SecretCipher interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

type CredentialResolverPort interface {
	Resolve(ctx context.Context, credentialID, ownerID string) (*domain.DecryptedCredential, error)
}

// CredentialAccessor is the per-invocation view handlers receive. Everything it
// hands out is released when the invocation ends.
type CredentialAccessor interface {
	Acquire(ctx context.Context, credentialID string) (*domain.DecryptedCredential, error)
}
