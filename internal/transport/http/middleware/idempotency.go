package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"calcfolha/internal/transport/http/api"
)

var ErrIdempotencyConflict = errors.New("idempotency key conflicts with existing request")

const maxIdempotencyKeyLength = 255

// IdempotentResponse is a stored reply to a keyed request.
type IdempotentResponse struct {
	RequestHash string
	Status      int
	Body        json.RawMessage
}

type IdempotencyBackend interface {
	Lookup(ctx context.Context, ownerID, endpoint, key string) (IdempotentResponse, bool, error)
	Save(ctx context.Context, ownerID, endpoint, key string, resp IdempotentResponse) error
}

type IdempotencyStore struct {
	db *pgxpool.Pool
}

func NewIdempotencyStore(db *pgxpool.Pool) *IdempotencyStore {
	return &IdempotencyStore{db: db}
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func (s *IdempotencyStore) Lookup(ctx context.Context, ownerID, endpoint, key string) (IdempotentResponse, bool, error) {
	var out IdempotentResponse
	err := s.db.QueryRow(ctx, `
    SELECT request_hash, response_status, response_body
    FROM idempotency_keys
    WHERE owner_id = $1 AND endpoint = $2 AND idempotency_key = $3
  `, ownerID, endpoint, key).Scan(&out.RequestHash, &out.Status, &out.Body)
	if errors.Is(err, pgx.ErrNoRows) {
		return IdempotentResponse{}, false, nil
	}
	if err != nil {
		return IdempotentResponse{}, false, err
	}
	return out, true, nil
}

// Save keeps the first response for a key; a concurrent save with another payload conflicts.
func (s *IdempotencyStore) Save(ctx context.Context, ownerID, endpoint, key string, resp IdempotentResponse) error {
	tag, err := s.db.Exec(ctx, `
    INSERT INTO idempotency_keys (owner_id, endpoint, idempotency_key, request_hash, response_status, response_body)
    VALUES ($1, $2, $3, $4, $5, $6)
    ON CONFLICT (owner_id, idempotency_key, endpoint) DO NOTHING
  `, ownerID, endpoint, key, resp.RequestHash, resp.Status, []byte(resp.Body))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		existing, ok, err := s.Lookup(ctx, ownerID, endpoint, key)
		if err != nil {
			return err
		}
		if ok && existing.RequestHash != resp.RequestHash {
			return ErrIdempotencyConflict
		}
	}
	return nil
}

// Purge drops keys stored before cutoff.
func (s *IdempotencyStore) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM idempotency_keys WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type bufferedResponse struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (b *bufferedResponse) WriteHeader(code int) {
	b.status = code
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

// Idempotency replays the stored response for a repeated POST carrying the same
// Idempotency-Key and body. The same key with a different body is a 409.
func Idempotency(backend IdempotencyBackend, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
			if backend == nil || r.Method != http.MethodPost || key == "" {
				next.ServeHTTP(w, r)
				return
			}
			reqID := GetRequestID(r.Context())
			user, ok := GetUser(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > maxIdempotencyKeyLength {
				api.Fail(w, http.StatusBadRequest, "invalid_idempotency_key", "idempotency key too long", reqID)
				return
			}

			raw, err := io.ReadAll(r.Body)
			if err != nil {
				api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(raw))

			endpoint := r.URL.Path
			if owner := r.URL.Query().Get("owner"); owner != "" {
				endpoint += "?owner=" + owner
			}
			hash := RequestHash(raw)

			stored, found, err := backend.Lookup(r.Context(), user.UserID, endpoint, key)
			if err != nil {
				logger.Error("idempotency lookup failed", zap.Error(err), zap.String("requestId", reqID))
				api.Fail(w, http.StatusInternalServerError, "idempotency_error", "idempotency check failed", reqID)
				return
			}
			if found {
				if stored.RequestHash != hash {
					api.Fail(w, http.StatusConflict, "idempotency_conflict", ErrIdempotencyConflict.Error(), reqID)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Idempotent-Replayed", "true")
				w.WriteHeader(stored.Status)
				_, _ = w.Write(stored.Body)
				return
			}

			buffered := &bufferedResponse{ResponseWriter: w}
			next.ServeHTTP(buffered, r)
			if buffered.status == 0 {
				buffered.status = http.StatusOK
			}

			if buffered.status >= 200 && buffered.status < 300 && json.Valid(buffered.body.Bytes()) {
				resp := IdempotentResponse{RequestHash: hash, Status: buffered.status, Body: buffered.body.Bytes()}
				if err := backend.Save(r.Context(), user.UserID, endpoint, key, resp); err != nil {
					logger.Warn("idempotency save failed", zap.Error(err), zap.String("requestId", reqID))
				}
			}
			w.WriteHeader(buffered.status)
			_, _ = w.Write(buffered.body.Bytes())
		})
	}
}
