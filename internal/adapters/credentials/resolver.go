package credentials

import (
	"context"
	"errors"
	"time"

	"github.com/eleven-am/flowrun/internal/domain"
	"github.com/eleven-am/flowrun/internal/ports"
	"github.com/eleven-am/flowrun/internal/xjson"
)

// Resolver looks credentials up, checks ownership and decrypts them. It never
// caches plaintext; each Resolve hands out a fresh DecryptedCredential.
type Resolver struct {
	store  ports.CredentialStore
	cipher ports.SecretCipher
	logger *ports.StructuredLogger
}

func NewResolver(store ports.CredentialStore, cipher ports.SecretCipher, logger *ports.StructuredLogger) *Resolver {
	if logger == nil {
		logger = ports.NewStructuredLogger(nil, "credential-resolver", "")
	}
	return &Resolver{store: store, cipher: cipher, logger: logger}
}

func (r *Resolver) Resolve(ctx context.Context, credentialID, ownerID string) (*domain.DecryptedCredential, error) {
	cred, err := r.store.GetCredential(ctx, credentialID)
	if err != nil {
		r.audit(credentialID, ownerID, false, "lookup_failed")
		if domain.IsNotFound(err) {
			return nil, domain.NewCredentialError(domain.CredentialErrNotFound, credentialID, nil)
		}
		return nil, domain.NewStorageError("credential lookup", err, domain.WithOperation("resolve_credential"))
	}

	if cred.OwnerID != ownerID {
		r.audit(credentialID, ownerID, false, "owner_mismatch")
		return nil, domain.NewCredentialError(domain.CredentialErrForbidden, credentialID, nil)
	}

	if r.cipher == nil {
		r.audit(credentialID, ownerID, false, "no_cipher")
		return nil, domain.NewCredentialError(domain.CredentialErrDecrypt, credentialID, errNoCipher)
	}

	plaintext, err := r.cipher.Decrypt(cred.EncryptedData)
	if err != nil {
		r.audit(credentialID, ownerID, false, "decrypt_failed")
		return nil, domain.NewCredentialError(domain.CredentialErrDecrypt, credentialID, err)
	}

	r.audit(credentialID, ownerID, true, "")
	return domain.NewDecryptedCredential(cred.ID, cred.Type, plaintext), nil
}

func (r *Resolver) audit(credentialID, ownerID string, success bool, reason string) {
	details := map[string]interface{}{}
	if reason != "" {
		details["reason"] = reason
	}
	r.logger.LogSecurity("credential_access", ownerID, "resolve", credentialID, success, details)
}

var errNoCipher = errors.New("no cipher configured")

// Seal builds the stored form of a credential from its plaintext fields.
func Seal(cipher ports.SecretCipher, id, name string, credType domain.CredentialType, ownerID string, data map[string]interface{}) (*domain.Credential, error) {
	if cipher == nil {
		return nil, domain.NewConfigurationError("credential cipher not configured", errNoCipher)
	}
	if id == "" || ownerID == "" {
		return nil, domain.NewValidationError("credential id and owner are required", domain.ErrInvalidInput)
	}

	plaintext, err := xjson.Marshal(data)
	if err != nil {
		return nil, domain.NewValidationError("credential data", err)
	}
	defer wipe(plaintext)

	sealed, err := cipher.Encrypt(plaintext)
	if err != nil {
		return nil, domain.NewDomainErrorWithCategory(domain.CategoryUnknown, "encrypt credential", err)
	}

	now := time.Now()
	return &domain.Credential{
		ID:            id,
		Name:          name,
		Type:          credType,
		OwnerID:       ownerID,
		EncryptedData: sealed,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}
