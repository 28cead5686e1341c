package nodes

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/eleven-am/flowrun/internal/adapters/circuit_breaker"
	"github.com/eleven-am/flowrun/internal/adapters/node_registry"
	"github.com/eleven-am/flowrun/internal/domain"
	"github.com/eleven-am/flowrun/internal/ports"
	"github.com/eleven-am/flowrun/internal/xjson"
)

const (
	AuthNone   = "none"
	AuthBearer = "bearer"
	AuthBasic  = "basic"
	AuthAPIKey = "apikey"

	defaultSuccessCodes = "200,201,202,204"
)

type HTTPRequestParams struct {
	Method       string            `json:"method"`
	URL          string            `json:"url"`
	Headers      map[string]string `json:"headers"`
	Query        map[string]string `json:"query"`
	Body         interface{}       `json:"body"`
	BodyType     string            `json:"bodyType"`
	TimeoutMs    int64             `json:"timeout"`
	AuthType     string            `json:"authType"`
	BearerToken  string            `json:"bearerToken"`
	Username     string            `json:"username"`
	Password     string            `json:"password"`
	APIKeyName   string            `json:"apiKeyName"`
	APIKeyValue  string            `json:"apiKeyValue"`
	ResponseType string            `json:"responseType"`
	SuccessCodes string            `json:"successCodes"`
}

// HTTPRequestNode performs one HTTP call per invocation. Requests to the same
// host share a token bucket and a circuit breaker.
type HTTPRequestNode struct {
	config   domain.HTTPConfig
	client   *http.Client
	logger   *slog.Logger
	breakers *circuit_breaker.Set

	mu       sync.Mutex
	limiters map[string]*rate.Limiter

	typed *node_registry.TypedNode[HTTPRequestParams]
}

func NewHTTPRequestNode(config domain.HTTPConfig, logger *slog.Logger) *HTTPRequestNode {
	if logger == nil {
		logger = slog.Default()
	}

	n := &HTTPRequestNode{
		config:   config,
		client:   &http.Client{Timeout: config.Timeout},
		logger:   logger.With("component", "http-request-node"),
		breakers: circuit_breaker.NewSet(config.Breaker, logger),
		limiters: make(map[string]*rate.Limiter),
	}
	n.typed = node_registry.NewTypedNode(TypeHTTPRequest, n.execute)
	return n
}

func (n *HTTPRequestNode) GetName() string {
	return TypeHTTPRequest
}

// BreakerMetrics reports the circuit state of every host contacted so far.
func (n *HTTPRequestNode) BreakerMetrics() map[string]circuit_breaker.Metrics {
	return n.breakers.Metrics()
}

func (n *HTTPRequestNode) Execute(ctx context.Context, input *ports.NodeInput) (*ports.NodeResult, error) {
	return n.typed.Execute(ctx, input)
}

func (n *HTTPRequestNode) execute(ctx context.Context, params HTTPRequestParams, input *ports.NodeInput) (*ports.NodeResult, error) {
	if params.URL == "" {
		return nil, domain.NewValidationError("httpRequest requires a url", domain.ErrInvalidInput, domain.WithNodeID(input.NodeID))
	}

	target, err := url.Parse(params.URL)
	if err != nil || target.Host == "" {
		return nil, domain.NewValidationError("httpRequest url is invalid", err, domain.WithNodeID(input.NodeID))
	}
	if len(params.Query) > 0 {
		q := target.Query()
		for k, v := range params.Query {
			q.Set(k, v)
		}
		target.RawQuery = q.Encode()
	}

	if params.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(params.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	if err := n.limiter(target.Host).Wait(ctx); err != nil {
		return nil, domain.NewNetworkError("rate limit wait", err, domain.WithNodeID(input.NodeID))
	}

	body, contentType, err := encodeBody(params)
	if err != nil {
		return nil, domain.NewValidationError("httpRequest body", err, domain.WithNodeID(input.NodeID))
	}

	method := strings.ToUpper(params.Method)
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, domain.NewValidationError("httpRequest build", err, domain.WithNodeID(input.NodeID))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if n.config.UserAgent != "" {
		req.Header.Set("User-Agent", n.config.UserAgent)
	}
	for k, v := range params.Headers {
		req.Header.Set(k, v)
	}

	if err := n.applyAuth(ctx, req, &params, input); err != nil {
		return nil, err
	}

	breaker := n.breakers.Get(target.Host)
	if err := breaker.Allow(); err != nil {
		return nil, domain.NewNetworkError("httpRequest "+target.Host, err,
			domain.WithNodeID(input.NodeID),
			domain.WithDetail("host", target.Host),
			domain.WithRetryable(false))
	}

	start := time.Now()
	resp, err := n.client.Do(req)
	if err != nil {
		breaker.Record(false)
		return nil, domain.NewNetworkError("httpRequest "+method+" "+target.Host, err, domain.WithNodeID(input.NodeID))
	}
	defer resp.Body.Close()
	breaker.Record(resp.StatusCode < 500)

	reader := io.Reader(resp.Body)
	if n.config.MaxResponseBytes > 0 {
		reader = io.LimitReader(resp.Body, n.config.MaxResponseBytes)
	}
	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, domain.NewNetworkError("httpRequest read body", err, domain.WithNodeID(input.NodeID))
	}

	n.logger.Debug("http request completed",
		"node_id", input.NodeID,
		"method", method,
		"host", target.Host,
		"status_code", resp.StatusCode,
		"duration", time.Since(start))

	headers := make(map[string]interface{}, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}

	output := map[string]interface{}{
		"statusCode": resp.StatusCode,
		"headers":    headers,
		"body":       decodeBody(raw, params.ResponseType, resp.Header.Get("Content-Type")),
	}

	if !statusAccepted(resp.StatusCode, params.SuccessCodes) {
		return nil, domain.NewNetworkError(
			fmt.Sprintf("httpRequest returned status %d", resp.StatusCode), nil,
			domain.WithNodeID(input.NodeID),
			domain.WithDetail("status_code", resp.StatusCode),
			domain.WithRetryable(resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests))
	}

	return ports.MainOutput(output), nil
}

// applyAuth fills missing auth parameters from the node's credential.
func (n *HTTPRequestNode) applyAuth(ctx context.Context, req *http.Request, params *HTTPRequestParams, input *ports.NodeInput) error {
	if input.CredentialID != "" && input.Credentials != nil {
		cred, err := input.Credentials.Acquire(ctx, input.CredentialID)
		if err != nil {
			return err
		}
		data, err := cred.Data()
		if err != nil {
			return err
		}
		fillFromCredential(params, data)
	}

	switch strings.ToLower(params.AuthType) {
	case "", AuthNone:
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+params.BearerToken)
	case AuthBasic:
		req.SetBasicAuth(params.Username, params.Password)
	case AuthAPIKey:
		name := params.APIKeyName
		if name == "" {
			name = "X-API-Key"
		}
		req.Header.Set(name, params.APIKeyValue)
	default:
		return domain.NewValidationError("unknown authType "+params.AuthType, domain.ErrInvalidInput, domain.WithNodeID(input.NodeID))
	}
	return nil
}

func fillFromCredential(params *HTTPRequestParams, data map[string]interface{}) {
	str := func(keys ...string) string {
		for _, k := range keys {
			if v, ok := data[k].(string); ok && v != "" {
				return v
			}
		}
		return ""
	}

	if params.BearerToken == "" {
		params.BearerToken = str("bearerToken", "token", "accessToken")
	}
	if params.Username == "" {
		params.Username = str("username", "user")
	}
	if params.Password == "" {
		params.Password = str("password")
	}
	if params.APIKeyName == "" {
		params.APIKeyName = str("apiKeyName", "headerName")
	}
	if params.APIKeyValue == "" {
		params.APIKeyValue = str("apiKeyValue", "apiKey")
	}

	if params.AuthType == "" || params.AuthType == AuthNone {
		switch {
		case params.BearerToken != "":
			params.AuthType = AuthBearer
		case params.Username != "":
			params.AuthType = AuthBasic
		case params.APIKeyValue != "":
			params.AuthType = AuthAPIKey
		}
	}
}

func (n *HTTPRequestNode) limiter(host string) *rate.Limiter {
	n.mu.Lock()
	defer n.mu.Unlock()

	if l, ok := n.limiters[host]; ok {
		return l
	}

	limit := rate.Inf
	burst := n.config.Burst
	if n.config.RequestsPerSecond > 0 {
		limit = rate.Limit(n.config.RequestsPerSecond)
	}
	if burst <= 0 {
		burst = 1
	}

	l := rate.NewLimiter(limit, burst)
	n.limiters[host] = l
	return l
}

func encodeBody(params HTTPRequestParams) (io.Reader, string, error) {
	if params.Body == nil {
		return nil, "", nil
	}

	switch strings.ToLower(params.BodyType) {
	case "", "json":
		if s, ok := params.Body.(string); ok {
			return strings.NewReader(s), "application/json", nil
		}
		data, err := xjson.Marshal(params.Body)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	case "form":
		obj, ok := params.Body.(map[string]interface{})
		if !ok {
			return nil, "", fmt.Errorf("form body must be an object")
		}
		values := url.Values{}
		for k, v := range obj {
			values.Set(k, fmt.Sprint(v))
		}
		return strings.NewReader(values.Encode()), "application/x-www-form-urlencoded", nil
	default:
		return strings.NewReader(fmt.Sprint(params.Body)), "text/plain", nil
	}
}

func decodeBody(raw []byte, responseType, contentType string) interface{} {
	if len(raw) == 0 {
		return nil
	}

	wantJSON := responseType == "json" || (responseType == "" && strings.Contains(contentType, "json"))
	if wantJSON {
		var decoded interface{}
		if err := xjson.Unmarshal(raw, &decoded); err == nil {
			return decoded
		}
	}
	return string(raw)
}

func statusAccepted(code int, successCodes string) bool {
	if successCodes == "" {
		successCodes = defaultSuccessCodes
	}
	for _, part := range strings.Split(successCodes, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.HasSuffix(part, "xx") && len(part) == 3 {
			if code/100 == int(part[0]-'0') {
				return true
			}
			continue
		}
		if n, err := strconv.Atoi(part); err == nil && n == code {
			return true
		}
	}
	return false
}
