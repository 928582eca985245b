package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetectLocale(t *testing.T) {
	tests := []struct {
		name     string
		header   map[string]string
		fallback string
		country  string
		want     string
	}{
		{name: "x-locale overrides country", header: map[string]string{"X-Locale": "ID"}, country: "US", want: "id"},
		{name: "x-locale with underscore", header: map[string]string{"X-Locale": "id_ID"}, want: "id"},
		{name: "accept-language english", header: map[string]string{"Accept-Language": "en-US,en;q=0.9"}, want: "en"},
		{name: "accept-language indonesian", header: map[string]string{"Accept-Language": "id-ID,en;q=0.8"}, want: "id"},
		{name: "unsupported language", header: map[string]string{"Accept-Language": "fr-FR"}, want: "en"},
		{name: "country id", country: "ID", want: "id"},
		{name: "other country", country: "US", fallback: "id", want: "en"},
		{name: "configured fallback", fallback: "id", want: "id"},
		{name: "default", want: "en"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.header {
				req.Header.Set(k, v)
			}
			if got := detectLocale(req, tc.fallback, tc.country); got != tc.want {
				t.Fatalf("detectLocale() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResolveCountry(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		lookup CountryLookup
		want   string
	}{
		{
			name:   "edge header wins",
			header: map[string]string{"X-Country-Code": "us", "CF-IPCountry": "id"},
			want:   "US",
		},
		{
			name:   "unknown edge country ignored",
			header: map[string]string{"CF-IPCountry": "XX", "X-Locale": "en-AU"},
			want:   "AU",
		},
		{
			name:   "accept-language region",
			header: map[string]string{"Accept-Language": "en-GB,en;q=0.9"},
			want:   "GB",
		},
		{
			name:   "bare indonesian implies ID",
			header: map[string]string{"Accept-Language": "id;q=0.8"},
			want:   "ID",
		},
		{
			name: "ip lookup",
			lookup: func(ip string) (string, error) {
				if ip != "203.0.113.4" {
					return "", errors.New("unexpected ip " + ip)
				}
				return "my", nil
			},
			want: "MY",
		},
		{
			name:   "lookup error",
			lookup: func(string) (string, error) { return "", errors.New("boom") },
			want:   "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "203.0.113.4:80"
			for k, v := range tc.header {
				req.Header.Set(k, v)
			}
			if got := ResolveCountry(req, tc.lookup); got != tc.want {
				t.Fatalf("ResolveCountry() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestI18NStoresLocaleAndCountry(t *testing.T) {
	var locale, country string
	h := I18N("en", func(string) (string, error) { return "id", nil })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale = LocaleFromContext(r.Context())
		country = CountryFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7:4000"
	h.ServeHTTP(httptest.NewRecorder(), req)

	if locale != "id" || country != "ID" {
		t.Fatalf("got locale %q country %q, want id/ID", locale, country)
	}
}

func TestLocaleFromContextDefault(t *testing.T) {
	if got := LocaleFromContext(context.Background()); got != "en" {
		t.Fatalf("LocaleFromContext() = %q, want en", got)
	}
	if got := CountryFromContext(context.Background()); got != "" {
		t.Fatalf("CountryFromContext() = %q, want empty", got)
	}
}
