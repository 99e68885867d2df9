package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestRequestHashDeterministic(t *testing.T) {
	hash1 := RequestHash([]byte("payload"))
	hash2 := RequestHash([]byte("payload"))
	hash3 := RequestHash([]byte("other"))

	if hash1 != hash2 {
		t.Fatal("expected deterministic hash")
	}
	if hash1 == hash3 {
		t.Fatal("expected different hash for different payload")
	}
}

type memoryIdempotency struct {
	mu    sync.Mutex
	saved map[string]IdempotentResponse
}

func (m *memoryIdempotency) Lookup(_ context.Context, ownerID, endpoint, key string) (IdempotentResponse, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	resp, ok := m.saved[ownerID+"|"+endpoint+"|"+key]
	return resp, ok, nil
}

func (m *memoryIdempotency) Save(_ context.Context, ownerID, endpoint, key string, resp IdempotentResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[ownerID+"|"+endpoint+"|"+key] = resp
	return nil
}

func TestIdempotencyReplaysAndConflicts(t *testing.T) {
	backend := &memoryIdempotency{saved: map[string]IdempotentResponse{}}
	calls := 0
	handler := Idempotency(backend, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"call": calls, "echo": string(body)})
	}))

	send := func(key, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/calculations", strings.NewReader(body))
		req = req.WithContext(WithUser(req.Context(), UserContext{UserID: "u1"}))
		if key != "" {
			req.Header.Set("Idempotency-Key", key)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	first := send("k1", `{"a":1}`)
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", first.Code)
	}

	replay := send("k1", `{"a":1}`)
	if replay.Code != http.StatusCreated || replay.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("expected replayed 201, got %d", replay.Code)
	}
	if replay.Body.String() != first.Body.String() {
		t.Fatalf("replayed body differs: %s vs %s", replay.Body.String(), first.Body.String())
	}
	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}

	conflict := send("k1", `{"a":2}`)
	if conflict.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", conflict.Code)
	}

	send("", `{"a":1}`)
	send("", `{"a":1}`)
	if calls != 3 {
		t.Fatalf("requests without a key must always run, ran %d times", calls)
	}
}

func TestIdempotencySkipsFailures(t *testing.T) {
	backend := &memoryIdempotency{saved: map[string]IdempotentResponse{}}
	handler := Idempotency(backend, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false}`))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/calculations", strings.NewReader(`{}`))
	req = req.WithContext(WithUser(req.Context(), UserContext{UserID: "u1"}))
	req.Header.Set("Idempotency-Key", "k2")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 to pass through, got %d", rec.Code)
	}
	if len(backend.saved) != 0 {
		t.Fatal("failed responses must not be stored")
	}
}

func TestIdempotencyRejectsLongKey(t *testing.T) {
	handler := Idempotency(&memoryIdempotency{saved: map[string]IdempotentResponse{}}, nil)(noContent())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/calculations", strings.NewReader(`{}`))
	req = req.WithContext(WithUser(req.Context(), UserContext{UserID: "u1"}))
	req.Header.Set("Idempotency-Key", strings.Repeat("k", 300))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
