package video

import (
	"context"
	"errors"
	"fmt"

	"promostudio/internal/providers/genai"
)

// ErrNoResult is returned when an operation finished without a video.
var ErrNoResult = errors.New("video: operation completed without a result")

// VEO is the Service backed by the Gemini API Veo models.
type VEO struct {
	client *genai.Client
}

func NewVEO(client *genai.Client) *VEO {
	return &VEO{client: client}
}

// NewVEOFactory returns a Factory that builds a fresh Gemini client for every
// key it is given. opts.APIKey is ignored.
func NewVEOFactory(opts genai.Options) Factory {
	return func(apiKey string) (Service, error) {
		opts := opts
		opts.APIKey = apiKey
		client, err := genai.NewClient(opts)
		if err != nil {
			if errors.Is(err, genai.ErrMissingAPIKey) {
				return nil, fmt.Errorf("%w: %v", ErrCredential, err)
			}
			return nil, err
		}
		return NewVEO(client), nil
	}
}

func (v *VEO) Submit(ctx context.Context, sub Submission) (Operation, error) {
	op, err := v.client.GenerateVideos(ctx, genai.VideoRequest{
		Prompt:         sub.Prompt,
		NumberOfVideos: sub.NumberOfVideos,
		Resolution:     sub.Resolution,
		AspectRatio:    sub.AspectRatio,
		RequestID:      sub.RequestID,
	})
	if err != nil {
		return Operation{}, fmt.Errorf("submit video: %w", err)
	}
	return toOperation(op)
}

func (v *VEO) Poll(ctx context.Context, op Operation) (Operation, error) {
	latest, err := v.client.GetOperation(ctx, op.Name)
	if err != nil {
		return Operation{}, fmt.Errorf("poll operation: %w", err)
	}
	return toOperation(latest)
}

func (v *VEO) Fetch(ctx context.Context, uri string) (*Asset, error) {
	asset, err := v.client.Download(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("fetch video: %w", err)
	}
	return &Asset{Format: asset.Format, Data: asset.Data}, nil
}

func toOperation(op *genai.Operation) (Operation, error) {
	if err := op.Err(); err != nil {
		return Operation{}, fmt.Errorf("operation %s failed: %w", op.Name, err)
	}
	out := Operation{Name: op.Name, Done: op.Done}
	if uris := op.VideoURIs(); len(uris) > 0 {
		out.VideoURI = uris[0]
	}
	return out, nil
}

var _ Service = (*VEO)(nil)
