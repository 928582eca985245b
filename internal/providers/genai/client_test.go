package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newTestClient(t *testing.T, fn roundTripFunc) *Client {
	t.Helper()
	client, err := NewClient(Options{
		APIKey:     "test-key",
		BaseURL:    "https://api.example.com/v1beta",
		Model:      "veo-test",
		HTTPClient: &http.Client{Transport: fn},
	})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	return client
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(Options{APIKey: "  "}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("NewClient error = %v, want ErrMissingAPIKey", err)
	}
}

func TestGenerateVideosPayload(t *testing.T) {
	var captured map[string]any
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/v1beta/models/veo-test:predictLongRunning" {
			t.Fatalf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Fatalf("api key header = %q, want test-key", got)
		}
		if r.URL.Query().Has("key") {
			t.Fatalf("key must not be sent in the query: %s", r.URL.RawQuery)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return jsonResponse(http.StatusOK, `{"name":"models/veo-test/operations/op-1"}`), nil
	})

	op, err := client.GenerateVideos(context.Background(), VideoRequest{
		Prompt:         "sunrise over a coffee stall",
		NumberOfVideos: 1,
		Resolution:     "720p",
		AspectRatio:    "16:9",
	})
	if err != nil {
		t.Fatalf("GenerateVideos error: %v", err)
	}
	if op.Name != "models/veo-test/operations/op-1" {
		t.Fatalf("operation name = %q", op.Name)
	}
	params, _ := captured["parameters"].(map[string]any)
	if params["aspectRatio"] != "16:9" || params["resolution"] != "720p" || params["sampleCount"] != float64(1) {
		t.Fatalf("unexpected parameters: %#v", params)
	}
	instances, _ := captured["instances"].([]any)
	if len(instances) != 1 {
		t.Fatalf("instances = %d, want 1", len(instances))
	}
}

func TestGetOperationDone(t *testing.T) {
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/v1beta/models/veo-test/operations/op-1" {
			t.Fatalf("path = %q", r.URL.Path)
		}
		return jsonResponse(http.StatusOK, `{
			"name": "models/veo-test/operations/op-1",
			"done": true,
			"response": {"generateVideoResponse": {"generatedSamples": [{"video": {"uri": "https://files.example.com/v.mp4?alt=media"}}]}}
		}`), nil
	})

	op, err := client.GetOperation(context.Background(), "models/veo-test/operations/op-1")
	if err != nil {
		t.Fatalf("GetOperation error: %v", err)
	}
	if !op.Done {
		t.Fatal("expected operation to be done")
	}
	uris := op.VideoURIs()
	if len(uris) != 1 || uris[0] != "https://files.example.com/v.mp4?alt=media" {
		t.Fatalf("VideoURIs = %#v", uris)
	}
	if op.Err() != nil {
		t.Fatalf("unexpected operation error: %v", op.Err())
	}
}

func TestGetOperationNotFoundIsCredentialFailure(t *testing.T) {
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusNotFound, `{"error":{"code":404,"message":"Requested entity was not found.","status":"NOT_FOUND"}}`), nil
	})

	_, err := client.GetOperation(context.Background(), "models/veo-test/operations/op-1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if !apiErr.CredentialFailure() {
		t.Fatalf("expected credential failure for %v", apiErr)
	}
}

func TestAPIErrorCredentialFailure(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want bool
	}{
		{name: "unauthorized", err: &APIError{StatusCode: http.StatusUnauthorized}, want: true},
		{name: "forbidden", err: &APIError{StatusCode: http.StatusForbidden, Status: "PERMISSION_DENIED"}, want: true},
		{name: "invalid key reason", err: &APIError{StatusCode: http.StatusBadRequest, Status: "INVALID_ARGUMENT", Reasons: []string{"API_KEY_INVALID"}}, want: true},
		{name: "operation not found code", err: &APIError{Code: 5}, want: true},
		{name: "bad request", err: &APIError{StatusCode: http.StatusBadRequest, Status: "INVALID_ARGUMENT"}, want: false},
		{name: "server error", err: &APIError{StatusCode: http.StatusInternalServerError, Status: "INTERNAL"}, want: false},
		{name: "operation internal code", err: &APIError{Code: 13}, want: false},
		{name: "nil", err: nil, want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.CredentialFailure(); got != tc.want {
				t.Fatalf("CredentialFailure() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDownloadAddsKeyOnce(t *testing.T) {
	var seen []string
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		seen = append(seen, r.URL.Query()["key"]...)
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"video/mp4"}},
			Body:       io.NopCloser(bytes.NewReader([]byte("mp4-bytes"))),
		}, nil
	})

	asset, err := client.Download(context.Background(), "https://files.example.com/v.mp4?alt=media")
	if err != nil {
		t.Fatalf("Download error: %v", err)
	}
	if string(asset.Data) != "mp4-bytes" || asset.Format != "video/mp4" {
		t.Fatalf("unexpected asset: %q %q", asset.Data, asset.Format)
	}
	if _, err := client.Download(context.Background(), "https://files.example.com/v.mp4?alt=media&key=other"); err != nil {
		t.Fatalf("Download error: %v", err)
	}
	if len(seen) != 2 || seen[0] != "test-key" || seen[1] != "other" {
		t.Fatalf("key params = %#v", seen)
	}
}

func TestOperationErr(t *testing.T) {
	op := &Operation{Done: true, Error: &errorStatus{Code: 7, Message: "caller lacks permission"}}
	var apiErr *APIError
	if !errors.As(op.Err(), &apiErr) {
		t.Fatalf("Err() = %v, want *APIError", op.Err())
	}
	if !apiErr.CredentialFailure() {
		t.Fatal("expected permission denied operation error to be a credential failure")
	}
}

func TestTransportErrorsDoNotCarryKey(t *testing.T) {
	client, err := NewClient(Options{
		APIKey:  "SECRET-KEY-123",
		BaseURL: "https://api.example.com/v1beta",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("connection reset")
		})},
	})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	_, opErr := client.GetOperation(context.Background(), "models/veo/operations/1")
	_, dlErr := client.Download(context.Background(), "https://files.example.com/a:download?alt=media&key=SECRET-KEY-123")
	for name, err := range map[string]error{"GetOperation": opErr, "Download": dlErr} {
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if strings.Contains(err.Error(), "SECRET-KEY-123") {
			t.Fatalf("%s error leaks the key: %v", name, err)
		}
		if !strings.Contains(err.Error(), "connection reset") {
			t.Fatalf("%s error lost its cause: %v", name, err)
		}
	}
}

func TestDownloadSizeLimit(t *testing.T) {
	tests := []struct {
		name          string
		contentLength int64
	}{
		{name: "declared length", contentLength: 16},
		{name: "unknown length", contentLength: -1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client, err := NewClient(Options{
				APIKey:           "test-key",
				MaxDownloadBytes: 8,
				HTTPClient: &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
					return &http.Response{
						StatusCode:    http.StatusOK,
						ContentLength: tc.contentLength,
						Header:        http.Header{"Content-Type": []string{"video/mp4"}},
						Body:          io.NopCloser(bytes.NewReader(make([]byte, 16))),
					}, nil
				})},
			})
			if err != nil {
				t.Fatalf("NewClient error: %v", err)
			}
			if _, err := client.Download(context.Background(), "https://files.example.com/v.mp4"); !errors.Is(err, ErrTooLarge) {
				t.Fatalf("Download error = %v, want ErrTooLarge", err)
			}
		})
	}
}
