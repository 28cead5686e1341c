package nodes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleven-am/flowrun/internal/adapters/circuit_breaker"
	"github.com/eleven-am/flowrun/internal/domain"
	"github.com/eleven-am/flowrun/internal/ports"
)

type staticCredentials map[string]*domain.DecryptedCredential

func (s staticCredentials) Acquire(ctx context.Context, id string) (*domain.DecryptedCredential, error) {
	cred, ok := s[id]
	if !ok {
		return nil, domain.NewCredentialError(domain.CredentialErrNotFound, id, domain.ErrNotFound)
	}
	return cred, nil
}

func TestHTTPRequestNode_JSONRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "flowrun-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "yes", r.Header.Get("X-Custom"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"flow"}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":7}`))
	}))
	defer server.Close()

	node := NewHTTPRequestNode(domain.HTTPConfig{UserAgent: "flowrun-test"}, nil)
	result, err := run(t, node, nil, map[string]interface{}{
		"method":  "post",
		"url":     server.URL,
		"headers": map[string]interface{}{"X-Custom": "yes"},
		"query":   map[string]interface{}{"page": "2"},
		"body":    map[string]interface{}{"name": "flow"},
	})
	require.NoError(t, err)

	out := result.Outputs["main"].(map[string]interface{})
	assert.Equal(t, http.StatusCreated, out["statusCode"])
	assert.Equal(t, map[string]interface{}{"id": float64(7)}, out["body"])
}

func TestHTTPRequestNode_StatusNotAccepted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	node := NewHTTPRequestNode(domain.HTTPConfig{}, nil)
	_, err := run(t, node, nil, map[string]interface{}{"url": server.URL})
	require.Error(t, err)
	assert.Equal(t, domain.CategoryNetwork, domain.GetErrorCategory(err))
	assert.True(t, domain.IsRetryableError(err))

	result, err := run(t, node, nil, map[string]interface{}{"url": server.URL, "successCodes": "2xx,502"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, result.Outputs["main"].(map[string]interface{})["statusCode"])
}

func TestHTTPRequestNode_Auth(t *testing.T) {
	var seen http.Header
	var user, pass string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		user, pass, _ = r.BasicAuth()
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	node := NewHTTPRequestNode(domain.HTTPConfig{}, nil)

	t.Run("bearer from parameters", func(t *testing.T) {
		_, err := run(t, node, nil, map[string]interface{}{"url": server.URL, "authType": "bearer", "bearerToken": "abc"})
		require.NoError(t, err)
		assert.Equal(t, "Bearer abc", seen.Get("Authorization"))
	})

	t.Run("api key default header", func(t *testing.T) {
		_, err := run(t, node, nil, map[string]interface{}{"url": server.URL, "authType": "apikey", "apiKeyValue": "k1"})
		require.NoError(t, err)
		assert.Equal(t, "k1", seen.Get("X-API-Key"))
	})

	t.Run("basic from credential", func(t *testing.T) {
		creds := staticCredentials{
			"cred-1": domain.NewDecryptedCredential("cred-1", domain.CredentialTypeAPI, []byte(`{"username":"u","password":"p"}`)),
		}
		result, err := node.Execute(context.Background(), &ports.NodeInput{
			NodeID:       "n1",
			Parameters:   map[string]interface{}{"url": server.URL},
			CredentialID: "cred-1",
			Credentials:  creds,
		})
		require.NoError(t, err)
		assert.Equal(t, "u", user)
		assert.Equal(t, "p", pass)
		assert.Equal(t, "ok", result.Outputs["main"].(map[string]interface{})["body"])
	})

	t.Run("missing credential", func(t *testing.T) {
		_, err := node.Execute(context.Background(), &ports.NodeInput{
			NodeID:       "n1",
			Parameters:   map[string]interface{}{"url": server.URL},
			CredentialID: "nope",
			Credentials:  staticCredentials{},
		})
		var credErr *domain.CredentialError
		require.ErrorAs(t, err, &credErr)
		assert.Equal(t, domain.CredentialErrNotFound, credErr.Kind)
	})

	t.Run("unknown auth type", func(t *testing.T) {
		_, err := run(t, node, nil, map[string]interface{}{"url": server.URL, "authType": "digest"})
		assert.Equal(t, domain.CategoryValidation, domain.GetErrorCategory(err))
	})
}

func TestHTTPRequestNode_Validation(t *testing.T) {
	node := NewHTTPRequestNode(domain.HTTPConfig{}, nil)

	_, err := run(t, node, nil, nil)
	assert.Equal(t, domain.CategoryValidation, domain.GetErrorCategory(err))

	_, err = run(t, node, nil, map[string]interface{}{"url": "not a url"})
	assert.Equal(t, domain.CategoryValidation, domain.GetErrorCategory(err))
}

func TestHTTPRequestNode_LimitsResponseSize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("0123456789"))
	}))
	defer server.Close()

	node := NewHTTPRequestNode(domain.HTTPConfig{MaxResponseBytes: 4}, nil)
	result, err := run(t, node, nil, map[string]interface{}{"url": server.URL, "responseType": "text"})
	require.NoError(t, err)
	assert.Equal(t, "0123", result.Outputs["main"].(map[string]interface{})["body"])
}

func TestHTTPRequestNode_RateLimitPerHost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	node := NewHTTPRequestNode(domain.HTTPConfig{RequestsPerSecond: 20, Burst: 1}, nil)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := run(t, node, nil, map[string]interface{}{"url": server.URL})
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	assert.Len(t, node.limiters, 1)
}

func TestHTTPRequestNode_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	node := NewHTTPRequestNode(domain.HTTPConfig{}, nil)
	_, err := run(t, node, nil, map[string]interface{}{"url": server.URL, "timeout": 30})
	require.Error(t, err)
	assert.Equal(t, domain.CategoryNetwork, domain.GetErrorCategory(err))
}

func TestStatusAccepted(t *testing.T) {
	assert.True(t, statusAccepted(204, ""))
	assert.False(t, statusAccepted(301, ""))
	assert.True(t, statusAccepted(404, "4xx"))
	assert.True(t, statusAccepted(200, " 200 , 201"))
	assert.False(t, statusAccepted(500, "2xx"))
}

func TestHTTPRequestNode_CircuitBreakerOpensPerHost(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	node := NewHTTPRequestNode(domain.HTTPConfig{
		Breaker: domain.BreakerConfig{FailureThreshold: 2, Cooldown: time.Hour},
	}, nil)
	params := map[string]interface{}{"url": server.URL}

	for i := 0; i < 2; i++ {
		_, err := run(t, node, nil, params)
		require.Error(t, err)
		assert.True(t, domain.IsRetryableError(err))
	}

	_, err := run(t, node, nil, params)
	require.Error(t, err)
	assert.ErrorIs(t, err, circuit_breaker.ErrCircuitOpen)
	assert.False(t, domain.IsRetryableError(err))
	assert.Equal(t, 2, hits)

	metrics := node.BreakerMetrics()
	require.Len(t, metrics, 1)
	for _, m := range metrics {
		assert.Equal(t, circuit_breaker.StateOpen, m.State)
		assert.Equal(t, int64(1), m.RequestsRejected)
	}
}
