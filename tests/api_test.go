package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

// TestConfig holds test configuration
type TestConfig struct {
	BaseURL string
}

var testConfig = TestConfig{
	BaseURL: getEnvOrDefault("TEST_BASE_URL", "http://localhost:8080"),
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// APIClient is a test HTTP client
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// NewAPIClient creates a new API client
func NewAPIClient() *APIClient {
	return &APIClient{
		baseURL: testConfig.BaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetToken sets the auth token
func (c *APIClient) SetToken(token string) {
	c.token = token
}

// APIResponse represents a standard API envelope plus the HTTP status it
// arrived with. Errors carry a message and, for validation failures, the
// offending field names.
type APIResponse struct {
	HTTPStatus int             `json:"-"`
	Status     string          `json:"status"`
	Data       json.RawMessage `json:"data,omitempty"`
	Message    string          `json:"message,omitempty"`
	Fields     []string        `json:"fields,omitempty"`
}

// Request makes an HTTP request
func (c *APIClient) Request(method, path string, body interface{}) (*APIResponse, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w, body: %s", err, string(respBody))
	}
	apiResp.HTTPStatus = resp.StatusCode

	return &apiResp, nil
}

// GET makes a GET request
func (c *APIClient) GET(path string) (*APIResponse, error) {
	return c.Request(http.MethodGet, path, nil)
}

// POST makes a POST request
func (c *APIClient) POST(path string, body interface{}) (*APIResponse, error) {
	return c.Request(http.MethodPost, path, body)
}

// PUT makes a PUT request
func (c *APIClient) PUT(path string, body interface{}) (*APIResponse, error) {
	return c.Request(http.MethodPut, path, body)
}

// DELETE makes a DELETE request
func (c *APIClient) DELETE(path string) (*APIResponse, error) {
	return c.Request(http.MethodDelete, path, nil)
}

// ParseData parses response data into target struct
func (r *APIResponse) ParseData(v interface{}) error {
	if r.Data == nil {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}

// IsSuccess checks if response is successful
func (r *APIResponse) IsSuccess() bool {
	return r.Status == "success"
}

// AssertSuccess asserts response is successful
func AssertSuccess(t *testing.T, resp *APIResponse, msgAndArgs ...interface{}) {
	t.Helper()
	if !resp.IsSuccess() {
		msg := fmt.Sprintf("expected success, got http=%d, message=%s, fields=%s",
			resp.HTTPStatus, resp.Message, strings.Join(resp.Fields, ","))
		if len(msgAndArgs) > 0 {
			msg = fmt.Sprintf("%s: %v", msg, msgAndArgs)
		}
		t.Fatal(msg)
	}
}

// AssertError asserts response failed with a specific HTTP status
func AssertError(t *testing.T, resp *APIResponse, expectedStatus int, msgAndArgs ...interface{}) {
	t.Helper()
	if resp.IsSuccess() || resp.HTTPStatus != expectedStatus {
		msg := fmt.Sprintf("expected error http=%d, got http=%d, status=%s, message=%s",
			expectedStatus, resp.HTTPStatus, resp.Status, resp.Message)
		if len(msgAndArgs) > 0 {
			msg = fmt.Sprintf("%s: %v", msg, msgAndArgs)
		}
		t.Fatal(msg)
	}
}

// AssertInvalidField asserts a validation error naming the field
func AssertInvalidField(t *testing.T, resp *APIResponse, field string) {
	t.Helper()
	AssertError(t, resp, http.StatusBadRequest)
	for _, f := range resp.Fields {
		if f == field {
			return
		}
	}
	t.Fatalf("expected fields to contain %q, got %v", field, resp.Fields)
}

// TestMain runs before all tests
func TestMain(m *testing.M) {
	// Check if server is running
	client := NewAPIClient()
	resp, err := client.GET("/health")
	if err != nil {
		fmt.Printf("Warning: Server not reachable at %s: %v\n", testConfig.BaseURL, err)
		fmt.Println("Please start the server before running tests:")
		fmt.Println("  go run cmd/server/main.go")
		os.Exit(1)
	}
	_ = resp

	fmt.Printf("Running tests against %s\n", testConfig.BaseURL)
	os.Exit(m.Run())
}

// generateUserId generates a unique user Id for testing
func generateUserId(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, time.Now().UnixNano())
}

// generateClientMsgId generates a unique client message Id
func generateClientMsgId() string {
	return fmt.Sprintf("cli-%d", time.Now().UnixNano())
}
