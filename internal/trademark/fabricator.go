// Package trademark fabricates availability results for the marketing site's
// trademark search. Nothing here consults a registry.
package trademark

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"promostudio/internal/domain"
	"promostudio/internal/infra"
)

// Status is the registry state shown for a result.
type Status string

const (
	StatusAvailable  Status = "Available"
	StatusObjected   Status = "Objected"
	StatusRegistered Status = "Registered"
)

// RegisteredThreshold is the draw above which the exact match is shown as
// registered.
const RegisteredThreshold = 0.4

// DefaultDelay mimics a registry round trip.
const DefaultDelay = 1500 * time.Millisecond

// SearchResult is one row of the result list.
type SearchResult struct {
	Name            string `json:"name"`
	Class           int    `json:"class"`
	Status          Status `json:"status"`
	ApplicationDate string `json:"application_date,omitempty"`
	Proprietor      string `json:"proprietor,omitempty"`
	Similarity      *int   `json:"similarity,omitempty"`
}

type variant struct {
	format     string
	status     Status
	similarity int
	proprietor string
	applied    string
}

var exactMatchHolder = variant{
	status:     StatusRegistered,
	similarity: 100,
	proprietor: "Sarvada Brands Pvt. Ltd.",
	applied:    "2019-06-14",
}

var variants = []variant{
	{format: "THE %s", status: StatusObjected, similarity: 65, proprietor: "Brandwise Ventures LLP", applied: "2022-11-03"},
	{format: "%sIFY", status: StatusRegistered, similarity: 40, proprietor: "Nimbus Retail Pvt. Ltd.", applied: "2017-02-21"},
}

// Options configures a Fabricator.
type Options struct {
	Delay  time.Duration
	Draw   func() float64
	Wait   func(ctx context.Context, d time.Duration) error
	Logger *infra.Logger
}

// Fabricator produces mock search results.
type Fabricator struct {
	delay  time.Duration
	draw   func() float64
	wait   func(ctx context.Context, d time.Duration) error
	logger *infra.Logger
}

func NewFabricator(opts Options) *Fabricator {
	f := &Fabricator{
		delay:  opts.Delay,
		draw:   opts.Draw,
		wait:   opts.Wait,
		logger: opts.Logger,
	}
	if f.delay < 0 {
		f.delay = 0
	}
	if f.draw == nil {
		f.draw = rand.Float64
	}
	if f.wait == nil {
		f.wait = sleep
	}
	if f.logger == nil {
		f.logger = infra.DiscardLogger()
	}
	return f
}

// Search validates the query, waits the artificial delay and returns three
// results sharing class: the exact match and two near-duplicate variants.
func (f *Fabricator) Search(ctx context.Context, query string, class int) ([]SearchResult, error) {
	name := f.normalize(query)
	if name == "" {
		return nil, domain.ErrEmptyQuery
	}
	if !ValidClass(class) {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidClass, class)
	}
	if err := f.wait(ctx, f.delay); err != nil {
		return nil, err
	}

	draw := f.draw()
	results := make([]SearchResult, 0, 1+len(variants))
	results = append(results, exactMatch(name, class, draw))
	for _, v := range variants {
		results = append(results, v.result(fmt.Sprintf(v.format, name), class))
	}

	f.logger.Debug().
		Str("query", name).
		Int("class", class).
		Str("exact_status", string(results[0].Status)).
		Msg("trademark: fabricated results")

	return results, nil
}

func (f *Fabricator) normalize(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}
	// Casers keep state, so each call gets its own.
	return cases.Upper(language.Und).String(strings.Join(fields, " "))
}

func exactMatch(name string, class int, draw float64) SearchResult {
	if draw > RegisteredThreshold {
		return exactMatchHolder.result(name, class)
	}
	return SearchResult{Name: name, Class: class, Status: StatusAvailable}
}

func (v variant) result(name string, class int) SearchResult {
	similarity := v.similarity
	return SearchResult{
		Name:            name,
		Class:           class,
		Status:          v.status,
		ApplicationDate: v.applied,
		Proprietor:      v.proprietor,
		Similarity:      &similarity,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
