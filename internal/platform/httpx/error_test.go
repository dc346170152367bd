package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/woodcraft-atelier/api/internal/platform/requestctx"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestWriteErrorValidationFields(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), rec, ValidationError("", map[string]string{"email": "must be a valid email"}))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	body := decode(t, rec)
	details, ok := body["details"].(map[string]any)
	if !ok {
		t.Fatalf("expected details object, got %v", body["details"])
	}
	fields := details["fields"].(map[string]any)
	if fields["email"] != "must be a valid email" {
		t.Fatalf("unexpected fields %v", fields)
	}
}

func TestWriteErrorUnavailableSetsRetryAfter(t *testing.T) {
	rec := httptest.NewRecorder()
	ctx := requestctx.WithTrace(context.Background(), requestctx.TraceInfo{TraceID: "trace-1"})
	WriteError(ctx, rec, Unavailable("", 2))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("expected Retry-After 2, got %q", got)
	}
	body := decode(t, rec)
	if body["trace_id"] != "trace-1" {
		t.Fatalf("expected trace id, got %v", body["trace_id"])
	}
	if body["details"].(map[string]any)["retryable"] != true {
		t.Fatalf("expected retryable detail")
	}
}

func TestSanitizeStripsNewlines(t *testing.T) {
	e := NewError("bad\ncode", " line1\r\nline2 ", 0)
	if e.Code != "bad code" || e.Message != "line1  line2" {
		t.Fatalf("unexpected sanitised error %+v", e)
	}
	if e.Status != http.StatusInternalServerError {
		t.Fatalf("expected default status 500, got %d", e.Status)
	}
}
