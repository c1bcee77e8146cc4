package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestTriggerAuthFailsClosedWithoutConfiguredSecret(t *testing.T) {
	called := false
	handler := TriggerAuthMiddleware("")(okHandler(&called))

	req := httptest.NewRequest(http.MethodPost, "/internal/delivery/run", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when secret unset, got %d", rec.Code)
	}
	if called {
		t.Fatal("handler must not run when misconfigured")
	}
}

func TestTriggerAuthRejectsBadToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"missing token", ""},
		{"wrong token", "Bearer wrong"},
		{"bare token without scheme mismatch", "Bearer "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := TriggerAuthMiddleware("s3cret")(okHandler(&called))

			req := httptest.NewRequest(http.MethodPost, "/internal/delivery/run", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", tt.token)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if called {
				t.Fatal("handler must not run on auth failure")
			}
		})
	}
}

func TestTriggerAuthAcceptsMatchingToken(t *testing.T) {
	called := false
	handler := TriggerAuthMiddleware("s3cret")(okHandler(&called))

	req := httptest.NewRequest(http.MethodPost, "/internal/delivery/run", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || !called {
		t.Fatalf("expected handler to run, got %d (called=%v)", rec.Code, called)
	}
}

func TestIdentityMiddleware(t *testing.T) {
	var seenUser string
	handler := IdentityMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser = UserID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/lessons/l1/completion", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity header, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/lessons/l1/completion", nil)
	req.Header.Set("X-User-Id", "clerk_123")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with identity header, got %d", rec.Code)
	}
	if seenUser != "clerk_123" {
		t.Fatalf("expected user id in context, got %q", seenUser)
	}
}
