package secrets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type stubSecretManager struct {
	accessFn func(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error)
	calls    int
}

func (s *stubSecretManager) AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, _ ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	s.calls++
	return s.accessFn(ctx, req)
}

func (s *stubSecretManager) Close() error { return nil }

func payload(value string) *secretmanagerpb.AccessSecretVersionResponse {
	return &secretmanagerpb.AccessSecretVersionResponse{
		Payload: &secretmanagerpb.SecretPayload{Data: []byte(value)},
	}
}

func TestResolveSecretRemote(t *testing.T) {
	stub := &stubSecretManager{
		accessFn: func(_ context.Context, req *secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error) {
			if req.Name != "projects/manira-dev/secrets/gateway-secret/versions/latest" {
				return nil, status.Error(codes.NotFound, "unexpected resource "+req.Name)
			}
			return payload("live-value"), nil
		},
	}

	fetcher, err := NewFetcher(context.Background(), WithProject("manira-dev"), WithSecretManagerClient(stub), WithFallbackFile(""))
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}

	value, err := fetcher.ResolveSecret(context.Background(), "secret://gateway-secret")
	if err != nil {
		t.Fatalf("ResolveSecret: %v", err)
	}
	if value != "live-value" {
		t.Errorf("unexpected value: %s", value)
	}

	// Second resolve hits the cache.
	if _, err := fetcher.ResolveSecret(context.Background(), "secret://gateway-secret"); err != nil {
		t.Fatalf("cached ResolveSecret: %v", err)
	}
	if stub.calls != 1 {
		t.Errorf("expected one remote call, got %d", stub.calls)
	}
}

func TestResolveSecretFallsBackOnPermissionDenied(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".secrets.local")
	if err := os.WriteFile(path, []byte("secret://gateway-secret=local-value\n"), 0o600); err != nil {
		t.Fatalf("write fallback file: %v", err)
	}

	stub := &stubSecretManager{
		accessFn: func(context.Context, *secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error) {
			return nil, status.Error(codes.PermissionDenied, "denied")
		},
	}

	fetcher, err := NewFetcher(context.Background(), WithProject("manira-dev"), WithSecretManagerClient(stub), WithFallbackFile(path))
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}

	value, err := fetcher.ResolveSecret(context.Background(), "secret://gateway-secret")
	if err != nil {
		t.Fatalf("ResolveSecret: %v", err)
	}
	if value != "local-value" {
		t.Errorf("unexpected fallback value: %s", value)
	}
}

func TestResolveSecretHardFailure(t *testing.T) {
	stub := &stubSecretManager{
		accessFn: func(context.Context, *secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error) {
			return nil, status.Error(codes.NotFound, "missing")
		},
	}

	fetcher, err := NewFetcher(context.Background(), WithProject("manira-dev"), WithSecretManagerClient(stub), WithFallbackFile(""))
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}

	if _, err := fetcher.ResolveSecret(context.Background(), "secret://missing-secret"); err == nil {
		t.Fatal("expected error for missing secret")
	}
}

func TestResolveSecretRejectsBadReferences(t *testing.T) {
	fetcher, err := NewFetcher(context.Background(), WithSecretManagerClient(&stubSecretManager{
		accessFn: func(context.Context, *secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error) {
			return nil, errors.New("should not be called")
		},
	}), WithFallbackFile(""))
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}

	for _, ref := range []string{"", "http://nope", "secret://"} {
		if _, err := fetcher.ResolveSecret(context.Background(), ref); err == nil {
			t.Errorf("expected error for reference %q", ref)
		}
	}
}

func TestInvalidateClearsCache(t *testing.T) {
	values := []string{"first", "second"}
	stub := &stubSecretManager{
		accessFn: func(context.Context, *secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error) {
			return payload(values[0]), nil
		},
	}

	fetcher, err := NewFetcher(context.Background(), WithProject("manira-dev"), WithSecretManagerClient(stub), WithFallbackFile(""))
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}

	if _, err := fetcher.ResolveSecret(context.Background(), "secret://rotating"); err != nil {
		t.Fatalf("ResolveSecret: %v", err)
	}

	values[0] = "second"
	fetcher.Invalidate("secret://rotating")

	value, err := fetcher.ResolveSecret(context.Background(), "secret://rotating")
	if err != nil {
		t.Fatalf("ResolveSecret after invalidate: %v", err)
	}
	if value != "second" {
		t.Errorf("expected rotated value, got %s", value)
	}
	if stub.calls != 2 {
		t.Errorf("expected two remote calls, got %d", stub.calls)
	}
}
