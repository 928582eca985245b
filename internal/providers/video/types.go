package video

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// Fixed output configuration for promo videos.
const (
	DefaultNumberOfVideos = 1
	DefaultResolution     = "720p"
	DefaultAspectRatio    = "16:9"
)

// KeySelector is the credential collaborator of a generation flow.
type KeySelector interface {
	// HasSelectedKey reports whether a usable key is already selected.
	HasSelectedKey(ctx context.Context) (bool, error)
	// OpenSelectKey runs the interactive selection and returns once it
	// completes. It makes no promise that a key was actually chosen.
	OpenSelectKey(ctx context.Context) error
	// APIKey returns the key currently in effect, possibly empty.
	APIKey(ctx context.Context) (string, error)
}

// Submission describes one generation request.
type Submission struct {
	Prompt         string
	NumberOfVideos int
	Resolution     string
	AspectRatio    string
	RequestID      string
}

// Operation is the handle of a long-running generation.
type Operation struct {
	Name     string
	Done     bool
	VideoURI string
}

// Asset is a downloaded video.
type Asset struct {
	Format string
	Data   []byte
}

// Service is the generation backend.
type Service interface {
	Submit(ctx context.Context, sub Submission) (Operation, error)
	Poll(ctx context.Context, op Operation) (Operation, error)
	Fetch(ctx context.Context, uri string) (*Asset, error)
}

// Factory builds a Service bound to an API key.
type Factory func(apiKey string) (Service, error)

// credentialFailure is implemented by errors that the service boundary has
// classified as a rejected or unauthorised key.
type credentialFailure interface {
	CredentialFailure() bool
}

// ErrCredential marks errors that were classified as credential failures.
var ErrCredential = errors.New("video: credential rejected")

// IsCredentialError reports whether err was classified as a credential
// failure by the service that produced it.
func IsCredentialError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCredential) {
		return true
	}
	var cf credentialFailure
	if errors.As(err, &cf) {
		return cf.CredentialFailure()
	}
	return false
}

// AuthorizedURI appends the key query parameter to a result URI.
func AuthorizedURI(uri, apiKey string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(uri))
	if err != nil {
		return "", err
	}
	q := parsed.Query()
	q.Set("key", apiKey)
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}
