package domain

import (
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

type CredentialType string

const (
	CredentialTypeDatabase CredentialType = "database"
	CredentialTypeAPI      CredentialType = "api"
	CredentialTypeEmail    CredentialType = "email"
	CredentialTypeFTP      CredentialType = "ftp"
	CredentialTypeSSH      CredentialType = "ssh"
	CredentialTypeWebhook  CredentialType = "webhook"
)

// Credential is the stored, encrypted form. EncryptedData is opaque to everything
// except the cipher.
type Credential struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Type          CredentialType `json:"type"`
	OwnerID       string         `json:"userId"`
	EncryptedData []byte         `json:"encryptedData"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// DecryptedCredential holds plaintext secret material for the lifetime of one
// handler invocation. Release wipes it.
type DecryptedCredential struct {
	ID   string
	Type CredentialType

	mu       sync.Mutex
	raw      []byte
	released bool
}

func NewDecryptedCredential(id string, credType CredentialType, plaintext []byte) *DecryptedCredential {
	return &DecryptedCredential{
		ID:   id,
		Type: credType,
		raw:  plaintext,
	}
}

// Data decodes the secret fields. The returned map is a copy owned by the caller.
func (c *DecryptedCredential) Data() (map[string]interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return nil, NewCredentialError(CredentialErrDecrypt, c.ID, ErrClosed)
	}

	var data map[string]interface{}
	if err := json.Unmarshal(c.raw, &data); err != nil {
		return nil, NewCredentialError(CredentialErrDecrypt, c.ID, err)
	}
	return data, nil
}

func (c *DecryptedCredential) String(key string) string {
	data, err := c.Data()
	if err != nil {
		return ""
	}
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

func (c *DecryptedCredential) Released() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.released
}

func (c *DecryptedCredential) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.raw {
		c.raw[i] = 0
	}
	c.raw = nil
	c.released = true
}
