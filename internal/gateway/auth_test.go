package gateway

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// statusStub stands in for the authenticated status endpoint.
func statusStub() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
}

func withBearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withBasic(user, pass string) func(*http.Request) {
	return func(r *http.Request) { r.SetBasicAuth(user, pass) }
}

func TestAuthMiddleware(t *testing.T) {
	t.Parallel()

	bearerOnly := AuthConfig{BearerToken: "crmd-status-token"}
	basicOnly := AuthConfig{BasicUser: "ops", BasicPass: "s3cret"}
	both := AuthConfig{BearerToken: "crmd-status-token", BasicUser: "ops", BasicPass: "s3cret"}

	tests := []struct {
		name      string
		cfg       AuthConfig
		authorize func(*http.Request)
		want      int
	}{
		{"valid bearer", bearerOnly, withBearer("crmd-status-token"), http.StatusOK},
		{"wrong bearer", bearerOnly, withBearer("guessed"), http.StatusUnauthorized},
		{"no credentials", bearerOnly, func(*http.Request) {}, http.StatusUnauthorized},
		{"valid basic", basicOnly, withBasic("ops", "s3cret"), http.StatusOK},
		{"wrong basic password", basicOnly, withBasic("ops", "wrong"), http.StatusUnauthorized},
		{"basic against bearer-only config", bearerOnly, withBasic("ops", "s3cret"), http.StatusUnauthorized},
		{"bearer when both configured", both, withBearer("crmd-status-token"), http.StatusOK},
		{"basic when both configured", both, withBasic("ops", "s3cret"), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/status", nil)
			tt.authorize(req)
			rr := httptest.NewRecorder()

			authMiddleware(tt.cfg)(statusStub()).ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestAuthConfig_IsConfigured(t *testing.T) {
	t.Parallel()

	if (AuthConfig{}).IsConfigured() {
		t.Error("empty config must not enable auth")
	}
	if !(AuthConfig{BearerToken: "tok"}).IsConfigured() {
		t.Error("bearer token alone should enable auth")
	}
	if !(AuthConfig{BasicUser: "ops", BasicPass: "pw"}).IsConfigured() {
		t.Error("complete basic credentials should enable auth")
	}
	if (AuthConfig{BasicUser: "ops"}).IsConfigured() {
		t.Error("user without password must not count as configured")
	}
	if (AuthConfig{BasicPass: "pw"}).IsConfigured() {
		t.Error("password without user must not count as configured")
	}
}
