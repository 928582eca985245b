package video

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
)

const syntheticScheme = "synthetic://"

// Synthetic is a keyless Service for local development. Operations finish
// after a fixed number of polls and resolve to a small placeholder payload.
type Synthetic struct {
	mu          sync.Mutex
	pollsToDone int
	polls       map[string]int
	prompts     map[string]string
}

func NewSynthetic(pollsToDone int) *Synthetic {
	if pollsToDone < 0 {
		pollsToDone = 0
	}
	return &Synthetic{
		pollsToDone: pollsToDone,
		polls:       make(map[string]int),
		prompts:     make(map[string]string),
	}
}

// Factory returns a Factory that hands out the same synthetic backend for any key.
func (s *Synthetic) Factory() Factory {
	return func(string) (Service, error) {
		return s, nil
	}
}

func (s *Synthetic) Submit(ctx context.Context, sub Submission) (Operation, error) {
	if err := ctx.Err(); err != nil {
		return Operation{}, err
	}
	seed := deterministicSeed(sub.RequestID, sub.Prompt, sub.Resolution, sub.AspectRatio)
	name := "synthetic/operations/" + seed
	s.mu.Lock()
	s.polls[name] = 0
	s.prompts[name] = sub.Prompt
	s.mu.Unlock()
	return Operation{Name: name}, nil
}

func (s *Synthetic) Poll(ctx context.Context, op Operation) (Operation, error) {
	if err := ctx.Err(); err != nil {
		return Operation{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	count, ok := s.polls[op.Name]
	if !ok {
		return Operation{}, fmt.Errorf("%w: operation %s not found", ErrCredential, op.Name)
	}
	count++
	s.polls[op.Name] = count
	if count < s.pollsToDone {
		return Operation{Name: op.Name}, nil
	}
	seed := strings.TrimPrefix(op.Name, "synthetic/operations/")
	return Operation{Name: op.Name, Done: true, VideoURI: syntheticScheme + seed + ".mp4"}, nil
}

func (s *Synthetic) Fetch(ctx context.Context, uri string) (*Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(uri, syntheticScheme) {
		return nil, fmt.Errorf("synthetic: unsupported uri %q", uri)
	}
	seed := strings.TrimPrefix(uri, syntheticScheme)
	if idx := strings.IndexAny(seed, ".?"); idx >= 0 {
		seed = seed[:idx]
	}
	s.mu.Lock()
	prompt := s.prompts["synthetic/operations/"+seed]
	s.mu.Unlock()
	return &Asset{Format: "video/mp4", Data: renderSyntheticVideo(seed, prompt)}, nil
}

func renderSyntheticVideo(seed, prompt string) []byte {
	lines := []string{
		"Synthetic promo video placeholder",
		fmt.Sprintf("Seed: %s", seed),
		fmt.Sprintf("Prompt: %s", strings.TrimSpace(prompt)),
		"",
		"Set VIDEO_BACKEND=veo and select an API key to render real videos.",
	}
	return []byte(strings.Join(lines, "\n"))
}

func deterministicSeed(parts ...any) string {
	hasher := sha256.New()
	for _, part := range parts {
		hasher.Write([]byte(fmt.Sprintf("%v", part)))
		hasher.Write([]byte{'|'})
	}
	return hex.EncodeToString(hasher.Sum(nil))[:16]
}

var _ Service = (*Synthetic)(nil)
