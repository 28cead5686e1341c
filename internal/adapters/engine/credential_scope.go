package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/eleven-am/flowrun/internal/domain"
	"github.com/eleven-am/flowrun/internal/ports"
)

var errNoCredentialResolver = errors.New("no credential resolver configured")

// credentialScope hands credentials to a single handler invocation and
// releases every one of them when the invocation ends.
type credentialScope struct {
	resolver ports.CredentialResolverPort
	ownerID  string

	mu       sync.Mutex
	acquired []*domain.DecryptedCredential
	closed   bool
}

func newCredentialScope(resolver ports.CredentialResolverPort, ownerID string) *credentialScope {
	return &credentialScope{resolver: resolver, ownerID: ownerID}
}

func (s *credentialScope) Acquire(ctx context.Context, credentialID string) (*domain.DecryptedCredential, error) {
	if s.resolver == nil {
		return nil, domain.NewCredentialError(domain.CredentialErrNotFound, credentialID, errNoCredentialResolver)
	}

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, domain.NewCredentialError(domain.CredentialErrForbidden, credentialID, domain.ErrClosed)
	}

	cred, err := s.resolver.Resolve(ctx, credentialID, s.ownerID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		cred.Release()
		return nil, domain.NewCredentialError(domain.CredentialErrForbidden, credentialID, domain.ErrClosed)
	}
	s.acquired = append(s.acquired, cred)
	return cred, nil
}

// Release zeroes every credential handed out so far and closes the scope.
func (s *credentialScope) Release() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	released := len(s.acquired)
	for _, cred := range s.acquired {
		cred.Release()
	}
	s.acquired = nil
	s.closed = true
	return released
}
