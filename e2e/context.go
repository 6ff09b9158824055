package e2e

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"privid/internal/engine"
	jwttoken "privid/internal/jwt_token"
	"privid/internal/platform/health"
	httptransport "privid/internal/transport/http"
	id "privid/pkg/domain"
)

const adminActor = "admin"

// TestContext holds state between test steps. Each scenario gets a fresh
// in-memory engine behind an httptest server.
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte

	server     *httptest.Server
	tokens     *jwttoken.JWTService
	principals map[string]id.Principal
	actor      string
	saved      map[string]string
}

// NewTestContext creates a context with no server; call Reset before use.
func NewTestContext() *TestContext {
	return &TestContext{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		tokens:     jwttoken.NewJWTService("e2e-signing-key", "privid-e2e", time.Hour),
	}
}

// Reset discards all scenario state and starts a fresh server whose admin is
// the "admin" actor.
func (tc *TestContext) Reset() error {
	tc.Close()
	tc.principals = map[string]id.Principal{}
	tc.saved = map[string]string{}
	tc.actor = ""
	tc.LastResponse = nil
	tc.LastResponseBody = nil

	e, err := engine.NewInMemory(tc.Principal(adminActor))
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}
	tc.server = httptest.NewServer(httptransport.NewRouter(httptransport.Deps{
		Engine: e,
		Tokens: jwttoken.NewJWTServiceAdapter(tc.tokens),
		Health: health.New("e2e"),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}))
	tc.BaseURL = tc.server.URL
	return nil
}

// Close stops the scenario's server.
func (tc *TestContext) Close() {
	if tc.server != nil {
		tc.server.Close()
		tc.server = nil
	}
}

// Principal returns the stable address for a named actor, minting a random
// one on first use.
func (tc *TestContext) Principal(name string) id.Principal {
	if p, ok := tc.principals[name]; ok {
		return p
	}
	var raw [common.AddressLength]byte
	_, _ = rand.Read(raw[:])
	raw[0] |= 0x01
	p := id.Principal(common.BytesToAddress(raw[:]))
	tc.principals[name] = p
	return p
}

// ActAs makes subsequent requests carry a bearer token for name. An empty
// name sends requests without authorization.
func (tc *TestContext) ActAs(name string) {
	tc.actor = name
}

func (tc *TestContext) Save(key, value string) {
	tc.saved[key] = value
}

func (tc *TestContext) Saved(key string) (string, error) {
	v, ok := tc.saved[key]
	if !ok {
		return "", fmt.Errorf("nothing saved under %q", key)
	}
	return v, nil
}

// POST makes a POST request and stores the response
func (tc *TestContext) POST(path string, body interface{}) error {
	return tc.do(http.MethodPost, path, body)
}

// PUT makes a PUT request and stores the response
func (tc *TestContext) PUT(path string, body interface{}) error {
	return tc.do(http.MethodPut, path, body)
}

// GET makes a GET request and stores the response
func (tc *TestContext) GET(path string) error {
	return tc.do(http.MethodGet, path, nil)
}

func (tc *TestContext) do(method, path string, body interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, tc.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if tc.actor != "" {
		token, err := tc.tokens.GenerateAccessToken(context.Background(), tc.Principal(tc.actor))
		if err != nil {
			return fmt.Errorf("failed to mint token for %s: %w", tc.actor, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	return nil
}

// GetResponseField extracts a field from the JSON response
func (tc *TestContext) GetResponseField(field string) (interface{}, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	value, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("field %s not found in response", field)
	}

	return value, nil
}

// ResponseContains checks if the response body contains a field or text
func (tc *TestContext) ResponseContains(text string) bool {
	if strings.Contains(string(tc.LastResponseBody), text) {
		return true
	}

	var data map[string]interface{}
	if err := json.Unmarshal(tc.LastResponseBody, &data); err == nil {
		if _, ok := data[text]; ok {
			return true
		}
	}

	return false
}

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.LastResponseBody
}
