package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"promostudio/internal/infra"
	"promostudio/internal/sqlinline"
)

const (
	ProviderGemini = "gemini"
)

// Store persists provider API keys in the integration_tokens table.
type Store struct {
	sql infra.SQLExecutor
	now func() time.Time
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql, now: time.Now}
}

func (s *Store) GeminiAPIKey(ctx context.Context) (string, error) {
	return s.Token(ctx, ProviderGemini)
}

func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(token), nil
}

// SetGeminiAPIKey stores the operator key used when a promo session selected
// none. The source (e.g. "cli") is kept in the token properties.
func (s *Store) SetGeminiAPIKey(ctx context.Context, key, source string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("gemini api key is required")
	}
	props := map[string]any{"selected_at": s.now().UTC().Format(time.RFC3339)}
	if source = strings.TrimSpace(source); source != "" {
		props["source"] = source
	}
	return s.upsert(ctx, ProviderGemini, key, props)
}

func (s *Store) ClearGeminiAPIKey(ctx context.Context) error {
	_, err := s.sql.Exec(ctx, sqlinline.QDeleteIntegrationToken, ProviderGemini)
	return err
}

func (s *Store) upsert(ctx context.Context, provider, token string, props map[string]any) error {
	payload := props
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw)
	return err
}
