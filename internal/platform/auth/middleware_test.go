package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubVerifier struct {
	verifyFn func(tokenStr string) (*Identity, error)
}

func (s *stubVerifier) Verify(tokenStr string) (*Identity, error) {
	return s.verifyFn(tokenStr)
}

func TestRequireAuthMissingHeader(t *testing.T) {
	authenticator := NewAuthenticator(&stubVerifier{verifyFn: func(string) (*Identity, error) {
		t.Fatal("verifier should not be called")
		return nil, nil
	}})

	handler := authenticator.RequireAuth()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("next handler should not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthExpiredToken(t *testing.T) {
	authenticator := NewAuthenticator(&stubVerifier{verifyFn: func(string) (*Identity, error) {
		return nil, ErrTokenExpired
	}})

	handler := authenticator.RequireAuth()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("next handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthRoleEnforcement(t *testing.T) {
	authenticator := NewAuthenticator(&stubVerifier{verifyFn: func(string) (*Identity, error) {
		return &Identity{UserID: "usr_1", Roles: []string{RoleUser}}, nil
	}})

	handler := authenticator.RequireAuth(RoleAdmin)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("next handler should not run")
	}))

	req := httptest.NewRequest(http.MethodDelete, "/admin/orders/ord_1", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestRequireAuthInjectsIdentity(t *testing.T) {
	authenticator := NewAuthenticator(&stubVerifier{verifyFn: func(tokenStr string) (*Identity, error) {
		if tokenStr != "good-token" {
			return nil, errors.New("unexpected token")
		}
		return &Identity{UserID: "usr_1", Email: "a@b.c", Roles: []string{RoleAdmin}}, nil
	}})

	var seen *Identity
	handler := authenticator.RequireAuth(RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if seen == nil || seen.UserID != "usr_1" {
		t.Errorf("identity was not propagated: %+v", seen)
	}
}
