package semantic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/reachout/internal/domain"
	"github.com/kailas-cloud/reachout/internal/domain/network"
	"github.com/kailas-cloud/reachout/internal/domain/profile"
	"github.com/kailas-cloud/reachout/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterSemanticMetrics()
	os.Exit(m.Run())
}

var (
	source = profile.Condensed{Name: "Alice", Skills: []string{"Go"}}
	target = profile.Condensed{Name: "Bob", Schools: []string{"MIT"}}
)

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := NewClient(Config{BaseURL: url + "/", APIKey: "secret", Timeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestCompare(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/compare" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "reachout/") {
			t.Errorf("unexpected user agent: %q", r.Header.Get("User-Agent"))
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("unexpected auth header: %q", r.Header.Get("Authorization"))
		}
		var req compareRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.SourceProfile.Name != "Alice" || req.TargetProfile.Schools[0] != "MIT" {
			t.Errorf("unexpected payload: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(network.SemanticMatch{
			Similarity:    0.72,
			SharedContext: []string{"Go"},
			Reasoning:     "Both write Go",
			TalkingPoints: []string{"Ask about Go"},
		})
	}))
	defer srv.Close()

	m, err := newTestClient(t, srv.URL).Compare(context.Background(), source, target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Similarity != 0.72 || m.Reasoning != "Both write Go" || len(m.TalkingPoints) != 1 {
		t.Errorf("unexpected match: %+v", m)
	}
}

func TestCompare_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			want: domain.ErrSemanticProviderError,
		},
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			want: domain.ErrSemanticProviderError,
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("<html>"))
			},
			want: domain.ErrMalformedResponse,
		},
		{
			name: "out of range",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"similarity": 1.7}`))
			},
			want: domain.ErrMalformedResponse,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := newTestClient(t, srv.URL).Compare(context.Background(), source, target)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCompare_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := newTestClient(t, srv.URL).Compare(ctx, source, target)
	if !errors.Is(err, domain.ErrSemanticTimeout) {
		t.Errorf("expected ErrSemanticTimeout, got %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := newTestClient(t, srv.URL).HealthCheck(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewClient_MissingBaseURL(t *testing.T) {
	if _, err := NewClient(Config{}); !errors.Is(err, ErrMissingBaseURL) {
		t.Errorf("expected ErrMissingBaseURL, got %v", err)
	}
}
