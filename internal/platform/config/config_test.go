package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	env := map[string]string{
		"API_FIRESTORE_PROJECT_ID": "manira-dev",
		"API_AUTH_JWT_SECRET":      "dev-signing-key",
	}

	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Gateway.Currency != "INR" {
		t.Errorf("expected default currency INR, got %s", cfg.Gateway.Currency)
	}
	if cfg.Auth.TokenTTL != defaultTokenTTL {
		t.Errorf("unexpected default token ttl: %s", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.BcryptCost != defaultBcryptCost {
		t.Errorf("unexpected default bcrypt cost: %d", cfg.Auth.BcryptCost)
	}
	if cfg.Events.ProjectID != "manira-dev" {
		t.Errorf("expected events project to default to firestore project, got %s", cfg.Events.ProjectID)
	}
	if cfg.Events.OrderTopic != defaultEventsOrderTopic {
		t.Errorf("unexpected default order topic: %s", cfg.Events.OrderTopic)
	}
	if cfg.Idempotency.Header != defaultIdempotencyHeader {
		t.Errorf("expected default idempotency header, got %s", cfg.Idempotency.Header)
	}
	if cfg.Idempotency.TTL != defaultIdempotencyTTL {
		t.Errorf("unexpected default idempotency ttl: %s", cfg.Idempotency.TTL)
	}
	if cfg.RateLimits.DefaultPerMinute != 120 {
		t.Errorf("unexpected default rate limit: %d", cfg.RateLimits.DefaultPerMinute)
	}
	if !cfg.Features.EnablePromotions {
		t.Error("expected promotions enabled by default")
	}
}

func TestLoadWithOverridesAndSecrets(t *testing.T) {
	env := map[string]string{
		"API_SERVER_PORT":           "9090",
		"API_SERVER_READ_TIMEOUT":   "20s",
		"API_FIRESTORE_PROJECT_ID":  "manira-prod",
		"API_GATEWAY_KEY_ID":        "rzp_live_key",
		"API_GATEWAY_SECRET":        "secret://gateway/secret",
		"API_GATEWAY_CURRENCY":      "inr",
		"API_AUTH_JWT_SECRET":       "secret://auth/jwt",
		"API_AUTH_TOKEN_TTL":        "12h",
		"API_EVENTS_ENABLED":        "true",
		"API_EVENTS_ORDER_TOPIC":    "orders-prod",
		"API_IDEMPOTENCY_HEADER":    "X-Request-Key",
		"API_IDEMPOTENCY_TTL":       "48h",
		"API_FEATURE_PROMOTIONS":    "false",
		"API_RATELIMIT_AUTH_PER_MIN": "300",
	}

	resolver := SecretResolverFunc(func(_ context.Context, ref string) (string, error) {
		switch ref {
		case "secret://gateway/secret":
			return "resolved-gateway-secret", nil
		case "secret://auth/jwt":
			return "resolved-jwt-secret", nil
		}
		return "", errors.New("unexpected ref " + ref)
	})

	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""), WithSecretResolver(resolver))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("unexpected port: %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 20*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Gateway.Secret != "resolved-gateway-secret" {
		t.Errorf("gateway secret was not resolved: %s", cfg.Gateway.Secret)
	}
	if cfg.Gateway.Currency != "INR" {
		t.Errorf("currency should be upper-cased, got %s", cfg.Gateway.Currency)
	}
	if cfg.Auth.JWTSecret != "resolved-jwt-secret" {
		t.Errorf("jwt secret was not resolved: %s", cfg.Auth.JWTSecret)
	}
	if cfg.Auth.TokenTTL != 12*time.Hour {
		t.Errorf("unexpected token ttl: %s", cfg.Auth.TokenTTL)
	}
	if !cfg.Events.Enabled || cfg.Events.OrderTopic != "orders-prod" {
		t.Errorf("unexpected events config: %+v", cfg.Events)
	}
	if cfg.Idempotency.Header != "X-Request-Key" || cfg.Idempotency.TTL != 48*time.Hour {
		t.Errorf("unexpected idempotency config: %+v", cfg.Idempotency)
	}
	if cfg.Features.EnablePromotions {
		t.Error("expected promotions disabled")
	}
	if cfg.RateLimits.AuthenticatedPerMinute != 300 {
		t.Errorf("unexpected auth rate limit: %d", cfg.RateLimits.AuthenticatedPerMinute)
	}
}

func TestLoadValidationFailure(t *testing.T) {
	_, err := Load(context.Background(), WithEnvMap(map[string]string{}), WithoutSystemEnv(), WithEnvFile(""))
	if err == nil {
		t.Fatal("expected validation error")
	}

	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	fields := validation.Fields()
	want := map[string]bool{"Firestore.ProjectID": false, "Auth.JWTSecret": false}
	for _, field := range fields {
		if _, ok := want[field]; ok {
			want[field] = true
		}
	}
	for field, seen := range want {
		if !seen {
			t.Errorf("expected %s in validation fields, got %v", field, fields)
		}
	}
}

func TestLoadSecretResolutionFailure(t *testing.T) {
	env := map[string]string{
		"API_FIRESTORE_PROJECT_ID": "manira-dev",
		"API_AUTH_JWT_SECRET":      "sm://auth/jwt",
	}

	resolver := SecretResolverFunc(func(_ context.Context, ref string) (string, error) {
		return "", errors.New("backend unavailable")
	})

	_, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""), WithSecretResolver(resolver))
	if err == nil {
		t.Fatal("expected secret error")
	}

	var secretErr *SecretError
	if !errors.As(err, &secretErr) {
		t.Fatalf("expected *SecretError, got %T", err)
	}
	if secretErr.Ref != "secret://auth/jwt" {
		t.Errorf("expected normalized secret ref, got %s", secretErr.Ref)
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	contents := "# local overrides\nAPI_SERVER_PORT=7070\nexport API_FIRESTORE_PROJECT_ID=\"manira-local\"\nAPI_AUTH_JWT_SECRET='local-secret'\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(context.Background(), WithoutSystemEnv(), WithEnvFile(path))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "7070" {
		t.Errorf("unexpected port: %s", cfg.Server.Port)
	}
	if cfg.Firestore.ProjectID != "manira-local" {
		t.Errorf("unexpected project: %s", cfg.Firestore.ProjectID)
	}
	if cfg.Auth.JWTSecret != "local-secret" {
		t.Errorf("unexpected jwt secret: %s", cfg.Auth.JWTSecret)
	}
}
