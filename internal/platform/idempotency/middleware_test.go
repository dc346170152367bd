package idempotency

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

var fixedTime = time.Date(2025, time.March, 4, 9, 0, 0, 0, time.UTC)

const inquiryBody = `{"name":"Samira","email":"samira@example.com","message":"Walnut table?"}`

func newInquiryRequest(body, key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/inquiries", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(HeaderName, key)
	}
	return req
}

func fixedClock() time.Time { return fixedTime }

func TestMiddleware_PassesThroughWithoutKey(t *testing.T) {
	var calls int
	handler := Middleware(NewMemoryStore(), WithClock(fixedClock))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, newInquiryRequest(inquiryBody, ""))
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rr.Code)
		}
	}
	if calls != 2 {
		t.Fatalf("expected handler to run for each request, got %d", calls)
	}
}

func TestMiddleware_ReplaysStoredResponse(t *testing.T) {
	var calls int
	handler := Middleware(NewMemoryStore(), WithClock(fixedClock))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"inq_1"}`))
	}))

	rr1 := httptest.NewRecorder()
	handler.ServeHTTP(rr1, newInquiryRequest(inquiryBody, "abc-123"))
	if rr1.Code != http.StatusCreated {
		t.Fatalf("unexpected first status: %d", rr1.Code)
	}

	rr2 := httptest.NewRecorder()
	handler.ServeHTTP(rr2, newInquiryRequest(inquiryBody, "abc-123"))

	if calls != 1 {
		t.Fatalf("expected handler to run once, got %d", calls)
	}
	if rr2.Code != http.StatusCreated {
		t.Fatalf("expected replayed 201, got %d", rr2.Code)
	}
	if rr2.Header().Get(ReplayHeaderName) != "true" {
		t.Fatal("expected replay header")
	}
	if got := rr2.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("expected json content type, got %q", got)
	}
	if rr2.Body.String() != rr1.Body.String() {
		t.Fatalf("expected body %s, got %s", rr1.Body.String(), rr2.Body.String())
	}
}

func TestMiddleware_ScopesKeysPerCaller(t *testing.T) {
	var calls int
	scope := func(r *http.Request) string { return r.Header.Get("X-Test-Client") }
	handler := Middleware(NewMemoryStore(), WithClock(fixedClock), WithScope(scope))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	for _, client := range []string{"198.51.100.7", "203.0.113.9"} {
		req := newInquiryRequest(inquiryBody, "shared")
		req.Header.Set("X-Test-Client", client)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls != 2 {
		t.Fatalf("expected separate reservations per client, got %d calls", calls)
	}
}

func TestMiddleware_ConflictingFingerprint(t *testing.T) {
	handler := Middleware(NewMemoryStore(), WithClock(fixedClock))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), newInquiryRequest(inquiryBody, "same-key"))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newInquiryRequest(`{"name":"Other"}`, "same-key"))
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
	assertErrorCode(t, rr.Body.Bytes(), "conflict")
}

func TestMiddleware_PendingReservation(t *testing.T) {
	store := NewMemoryStore()
	req := newInquiryRequest(inquiryBody, "pending-key")
	fingerprint := requestFingerprint(req, []byte(inquiryBody))
	if _, err := store.Reserve(context.Background(), scoped("pending-key", ""), fingerprint, fixedTime, time.Hour); err != nil {
		t.Fatalf("seed reservation: %v", err)
	}

	handler := Middleware(store, WithClock(fixedClock))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not run while the key is pending")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestMiddleware_FailureReleasesKey(t *testing.T) {
	var calls int
	handler := Middleware(NewMemoryStore(), WithClock(fixedClock))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))

	rr1 := httptest.NewRecorder()
	handler.ServeHTTP(rr1, newInquiryRequest(inquiryBody, "retry-key"))
	rr2 := httptest.NewRecorder()
	handler.ServeHTTP(rr2, newInquiryRequest(inquiryBody, "retry-key"))

	if rr1.Code != http.StatusTooManyRequests || rr2.Code != http.StatusCreated {
		t.Fatalf("expected 429 then 201, got %d then %d", rr1.Code, rr2.Code)
	}
	if calls != 2 {
		t.Fatalf("expected the retry to reach the handler, got %d calls", calls)
	}
}

func TestMiddleware_ReserveErrorIsUnavailable(t *testing.T) {
	handler := Middleware(failingStore{}, WithClock(fixedClock))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not run when the store is down")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newInquiryRequest(inquiryBody, "k"))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestMemoryStore_CleanupExpired(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	if _, err := store.Reserve(ctx, "a", "fp", fixedTime, time.Minute); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if _, err := store.Reserve(ctx, "b", "fp", fixedTime, time.Hour); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	removed, err := store.CleanupExpired(ctx, fixedTime.Add(10*time.Minute), 0)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}

	res, err := store.Reserve(ctx, "a", "other", fixedTime.Add(10*time.Minute), time.Minute)
	if err != nil || res.State != ReservationStateNew {
		t.Fatalf("expected expired key to be reusable, got %v %v", res.State, err)
	}
}

type failingStore struct{}

func (failingStore) Reserve(context.Context, string, string, time.Time, time.Duration) (Reservation, error) {
	return Reservation{}, errors.New("firestore unavailable")
}

func (failingStore) SaveResponse(context.Context, string, string, Response, time.Time, time.Duration) error {
	return nil
}

func (failingStore) Release(context.Context, string, string) error { return nil }

func (failingStore) CleanupExpired(context.Context, time.Time, int) (int, error) { return 0, nil }

func assertErrorCode(t *testing.T, payload []byte, expected string) {
	t.Helper()

	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	if body.Error != expected {
		t.Fatalf("expected error code %s, got %s", expected, body.Error)
	}
}
