package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Praveen5612/skill-survey-bot/internal/directory"
)

func claimsEcho(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ClaimsFromContext(r.Context()); !ok {
			t.Error("handler reached without claims")
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	a := NewAuth("secret-1")
	tok, err := a.SignToken("u1", "asha@example.com", directory.RoleUser, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	h := a.WithAuth(RequireAuth(claimsEcho(t)))
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestWrongSecretRejected(t *testing.T) {
	tok, err := NewAuth("secret-1").SignToken("u1", "a@x.com", directory.RoleUser, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	h := NewAuth("secret-2").WithAuth(RequireAuth(http.NotFoundHandler()))
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	a := NewAuth("secret-1")
	tok, err := a.SignToken("u1", "a@x.com", directory.RoleUser, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	h := a.WithAuth(RequireAuth(http.NotFoundHandler()))
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	a := NewAuth("secret-1")
	handler := a.WithAuth(RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	cases := []struct {
		role directory.Role
		want int
	}{
		{directory.RoleAdmin, http.StatusOK},
		{directory.RoleUser, http.StatusForbidden},
	}
	for _, tc := range cases {
		tok, err := a.SignToken("u1", "a@x.com", tc.role, time.Hour)
		if err != nil {
			t.Fatal(err)
		}
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("role %s: status = %d, want %d", tc.role, rec.Code, tc.want)
		}
	}

	// No token at all.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: status = %d", rec.Code)
	}
}
