package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"promostudio/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("genai: api key is required")

// ErrTooLarge is returned when a downloaded file exceeds Options.MaxDownloadBytes.
var ErrTooLarge = errors.New("genai: download exceeds size limit")

// DefaultMaxDownloadBytes caps downloads when Options.MaxDownloadBytes is unset.
const DefaultMaxDownloadBytes int64 = 256 << 20

const apiKeyHeader = "x-goog-api-key"

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *infra.Logger
	// MaxDownloadBytes bounds the size of a downloaded video.
	MaxDownloadBytes int64
}

// Client talks to the Veo long-running video endpoints of the Gemini API.
// A client is bound to one API key; callers build a new one whenever the
// selected key may have changed.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	maxDownload int64
	httpClient  *http.Client
	logger      *infra.Logger
}

// VideoRequest represents the information required to generate a video.
type VideoRequest struct {
	Prompt         string
	NumberOfVideos int
	Resolution     string
	AspectRatio    string
	RequestID      string
}

// Operation is the long-running operation resource returned by the API.
type Operation struct {
	Name     string             `json:"name"`
	Done     bool               `json:"done"`
	Error    *errorStatus       `json:"error,omitempty"`
	Response *operationResponse `json:"response,omitempty"`
}

type operationResponse struct {
	GenerateVideoResponse struct {
		GeneratedSamples []struct {
			Video struct {
				URI string `json:"uri"`
			} `json:"video"`
		} `json:"generatedSamples"`
	} `json:"generateVideoResponse"`
}

// Err returns the failure of a finished operation, if any.
func (o *Operation) Err() error {
	if o == nil || o.Error == nil {
		return nil
	}
	return o.Error.toAPIError(0)
}

// VideoURIs lists the download URIs of the generated samples.
func (o *Operation) VideoURIs() []string {
	if o == nil || o.Response == nil {
		return nil
	}
	var uris []string
	for _, sample := range o.Response.GenerateVideoResponse.GeneratedSamples {
		if uri := strings.TrimSpace(sample.Video.URI); uri != "" {
			uris = append(uris, uri)
		}
	}
	return uris
}

// VideoAsset is the downloaded binary of a generated video.
type VideoAsset struct {
	URL    string
	Format string
	Data   []byte
}

type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters predictParameters `json:"parameters"`
}

type predictInstance struct {
	Prompt string `json:"prompt"`
}

type predictParameters struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
	Resolution  string `json:"resolution,omitempty"`
	SampleCount int    `json:"sampleCount,omitempty"`
}

// NewClient constructs a Gemini client with sane defaults. Callers may provide
// a nil HTTP client; a reusable one with sensible timeouts will be created.
func NewClient(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "veo-3.1-fast-generate-preview"
	}

	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}

	maxDownload := opts.MaxDownloadBytes
	if maxDownload <= 0 {
		maxDownload = DefaultMaxDownloadBytes
	}

	return &Client{
		apiKey:      apiKey,
		baseURL:     baseURL,
		model:       model,
		maxDownload: maxDownload,
		httpClient:  client,
		logger:      logger,
	}, nil
}

// GenerateVideos starts a video generation and returns the pending operation.
func (c *Client) GenerateVideos(ctx context.Context, req VideoRequest) (*Operation, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, errors.New("genai: prompt is required")
	}
	payload := predictRequest{
		Instances: []predictInstance{{Prompt: prompt}},
		Parameters: predictParameters{
			AspectRatio: req.AspectRatio,
			Resolution:  req.Resolution,
			SampleCount: clampQuantity(req.NumberOfVideos),
		},
	}

	var op Operation
	path := fmt.Sprintf("/models/%s:predictLongRunning", url.PathEscape(c.model))
	if err := c.invoke(ctx, http.MethodPost, path, payload, &op); err != nil {
		return nil, err
	}
	if strings.TrimSpace(op.Name) == "" {
		return nil, errors.New("genai: operation name missing from response")
	}

	c.logger.Debug().
		Str("request_id", req.RequestID).
		Str("model", c.model).
		Str("operation", op.Name).
		Msg("genai: video generation submitted")

	return &op, nil
}

// GetOperation refreshes the status of a long-running operation by name.
func (c *Client) GetOperation(ctx context.Context, name string) (*Operation, error) {
	name = strings.Trim(strings.TrimSpace(name), "/")
	if name == "" {
		return nil, errors.New("genai: operation name is required")
	}
	var op Operation
	if err := c.invoke(ctx, http.MethodGet, "/"+name, nil, &op); err != nil {
		return nil, err
	}
	if op.Name == "" {
		op.Name = name
	}
	return &op, nil
}

// Download fetches a generated file. The key query parameter is added when
// the URI does not already carry one.
func (c *Client) Download(ctx context.Context, uri string) (*VideoAsset, error) {
	target := strings.TrimSpace(uri)
	if target == "" {
		return nil, errors.New("genai: download uri is required")
	}
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = c.baseURL + "/" + strings.TrimLeft(target, "/")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}
	q := req.URL.Query()
	if q.Get("key") == "" {
		q.Set("key", c.apiKey)
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", redactURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, decodeAPIError(resp)
	}
	if resp.ContentLength > c.maxDownload {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength)
	}

	blob, err := io.ReadAll(io.LimitReader(resp.Body, c.maxDownload+1))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", redactURL(err))
	}
	if int64(len(blob)) > c.maxDownload {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, c.maxDownload)
	}
	format := resp.Header.Get("Content-Type")
	if format == "" || format == "application/octet-stream" {
		format = "video/mp4"
	}
	return &VideoAsset{URL: uri, Format: format, Data: blob}, nil
}

func (c *Client) invoke(ctx context.Context, method, path string, payload any, out any) error {
	endpoint := c.baseURL + path
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", redactURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}

// redactURL strips the query from the URL carried by transport errors so the
// key parameter never reaches logs.
func redactURL(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	parsed, perr := url.Parse(urlErr.URL)
	if perr != nil {
		return &url.Error{Op: urlErr.Op, URL: "[redacted]", Err: urlErr.Err}
	}
	if parsed.RawQuery != "" {
		parsed.RawQuery = "REDACTED"
	}
	parsed.User = nil
	return &url.Error{Op: urlErr.Op, URL: parsed.String(), Err: urlErr.Err}
}

func decodeAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var apiErr errorResponse
	if err := json.Unmarshal(data, &apiErr); err == nil && (apiErr.Error.Message != "" || apiErr.Error.Status != "") {
		return apiErr.Error.toAPIError(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
}

func clampQuantity(quantity int) int {
	if quantity <= 0 {
		return 1
	}
	if quantity > 4 {
		return 4
	}
	return quantity
}
