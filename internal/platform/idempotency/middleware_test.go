package idempotency

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func fixedClock(t time.Time) clockFunc {
	return func() time.Time { return t }
}

func TestMiddlewarePassesThroughWithoutKey(t *testing.T) {
	store := NewMemoryStore()
	calls := 0
	handler := Middleware(store)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders/ord_1/payment/create-intent", nil))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
	}
	if calls != 2 {
		t.Errorf("expected handler to run twice without key, ran %d times", calls)
	}
}

func TestMiddlewareReplaysCompletedResponse(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	calls := 0
	handler := Middleware(store, WithClock(fixedClock(now)))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"intent_id":"intent_%d"}`, calls)
	}))

	makeRequest := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/orders/ord_1/payment/create-intent", strings.NewReader(`{}`))
		req.Header.Set("Idempotency-Key", "key-1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	first := makeRequest()
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", first.Code)
	}
	if first.Header().Get(replayHeaderName) != "" {
		t.Error("first response should not be marked as replay")
	}

	second := makeRequest()
	if second.Code != http.StatusCreated {
		t.Fatalf("expected replayed 201, got %d", second.Code)
	}
	if second.Header().Get(replayHeaderName) != "true" {
		t.Error("second response should be marked as replay")
	}
	if first.Body.String() != second.Body.String() {
		t.Errorf("replayed body differs: %q vs %q", first.Body.String(), second.Body.String())
	}
	if calls != 1 {
		t.Errorf("handler should run once, ran %d times", calls)
	}
}

func TestMiddlewareRejectsReusedKeyWithDifferentBody(t *testing.T) {
	store := NewMemoryStore()
	handler := Middleware(store)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	first := httptest.NewRequest(http.MethodPost, "/orders/ord_1/payment/create-intent", strings.NewReader(`{"a":1}`))
	first.Header.Set("Idempotency-Key", "key-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	second := httptest.NewRequest(http.MethodPost, "/orders/ord_1/payment/create-intent", strings.NewReader(`{"a":2}`))
	second.Header.Set("Idempotency-Key", "key-1")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for fingerprint mismatch, got %d", rec.Code)
	}
}

func TestMiddlewareIgnoresUnguardedMethods(t *testing.T) {
	store := NewMemoryStore()
	calls := 0
	handler := Middleware(store, WithMethods(http.MethodPost))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Idempotency-Key", "key-1")
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	}
	if calls != 2 {
		t.Errorf("GET requests must not be deduplicated, handler ran %d times", calls)
	}
}

func TestMemoryStoreExpiredReservationIsReclaimed(t *testing.T) {
	store := NewMemoryStore()
	start := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	reservation, err := store.Reserve(context.Background(), "key|usr_1", "fp", start, time.Minute)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if reservation.State != ReservationStateNew {
		t.Fatalf("expected new reservation, got %v", reservation.State)
	}

	later := start.Add(2 * time.Minute)
	reservation, err = store.Reserve(context.Background(), "key|usr_1", "fp2", later, time.Minute)
	if err != nil {
		t.Fatalf("Reserve after expiry: %v", err)
	}
	if reservation.State != ReservationStateNew {
		t.Errorf("expired reservation should be reclaimed, got %v", reservation.State)
	}
}
