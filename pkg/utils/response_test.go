package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRespondEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondEnvelope(rec, http.StatusCreated, map[string]int{"hearts": 0}, true)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if got := rec.Body.String(); got != "{\"response\":{\"hearts\":0},\"success\":true}\n" {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestRespondEnvelopeNull(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondEnvelope(rec, http.StatusOK, nil, true)

	if got := rec.Body.String(); got != "{\"response\":null,\"success\":true}\n" {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestSendSSEEvent(t *testing.T) {
	rec := httptest.NewRecorder()
	SetupSSEHeaders(rec)
	if err := SendSSEEvent(rec, rec, "thought.created", map[string]string{"message": "hi"}); err != nil {
		t.Fatalf("SendSSEEvent err: %v", err)
	}
	if err := SendSSEComment(rec, rec, "ping"); err != nil {
		t.Fatalf("SendSSEComment err: %v", err)
	}

	want := "event: thought.created\ndata: {\"message\":\"hi\"}\n\n: ping\n\n"
	if rec.Body.String() != want {
		t.Fatalf("unexpected stream %q", rec.Body.String())
	}
	if !rec.Flushed {
		t.Fatal("expected flush")
	}
	if rec.Header().Get("Content-Type") != "text/event-stream" {
		t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
}
