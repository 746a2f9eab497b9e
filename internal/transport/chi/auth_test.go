package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	for _, keys := range [][]string{nil, {"", ""}} {
		handler := BearerAuthMiddleware(keys)(okHandler())

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("POST", "/v1/strategies", http.NoBody))

		if rr.Code != http.StatusOK {
			t.Errorf("keys %q: got %d, want %d", keys, rr.Code, http.StatusOK)
		}
	}
}

func TestAuthMiddleware(t *testing.T) {
	handler := BearerAuthMiddleware([]string{"key1", "key2"})(okHandler())

	tests := []struct {
		name   string
		method string
		path   string
		header string
		want   int
	}{
		{"missing header", "POST", "/v1/strategies", "", http.StatusUnauthorized},
		{"basic scheme", "POST", "/v1/strategies", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"empty token", "POST", "/v1/strategies", "Bearer ", http.StatusUnauthorized},
		{"wrong key", "POST", "/v1/strategies/batch", "Bearer wrong-key", http.StatusUnauthorized},
		{"first key", "POST", "/v1/strategies", "Bearer key1", http.StatusOK},
		{"second key", "POST", "/v1/strategies/compare", "Bearer key2", http.StatusOK},
		{"lowercase scheme", "POST", "/v1/activities", "bearer key1", http.StatusOK},
		{"health exempt", "GET", "/health", "", http.StatusOK},
		{"metrics exempt", "GET", "/metrics", "", http.StatusOK},
		{"exempt path is GET only", "POST", "/health", "", http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, http.NoBody)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tc.want {
				t.Fatalf("got %d, want %d", rr.Code, tc.want)
			}
			if tc.want != http.StatusUnauthorized {
				return
			}
			if rr.Header().Get("WWW-Authenticate") == "" {
				t.Error("expected WWW-Authenticate challenge")
			}
			var errResp ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if errResp.Code != ErrorCodeUnauthorized {
				t.Errorf("error code: got %s, want %s", errResp.Code, ErrorCodeUnauthorized)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header    string
		wantToken string
		wantOK    bool
	}{
		{"Bearer abc", "abc", true},
		{"BEARER  abc ", "abc", true},
		{"Token abc", "", false},
		{"Bearer", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		token, problem := bearerToken(tc.header)
		if (problem == "") != tc.wantOK || token != tc.wantToken {
			t.Errorf("bearerToken(%q) = %q, %q", tc.header, token, problem)
		}
	}
}
