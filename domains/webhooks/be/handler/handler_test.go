package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	candidates "github.com/hireline/talenttrack/domains/candidates/be/service"
	ivrepo "github.com/hireline/talenttrack/domains/interviews/be/repo"
	interviews "github.com/hireline/talenttrack/domains/interviews/be/service"
	"github.com/hireline/talenttrack/domains/webhooks/be/handler"
	"github.com/hireline/talenttrack/domains/webhooks/be/service"
	"github.com/hireline/talenttrack/platform/go/idempotency"
)

const secret = "shared-webhook-secret"

type stubCandidates struct {
	byID map[uuid.UUID]candidates.Candidate
}

func (s stubCandidates) Get(ctx context.Context, id uuid.UUID) (candidates.Candidate, error) {
	c, ok := s.byID[id]
	if !ok {
		return candidates.Candidate{}, candidates.ErrNotFound
	}
	return c, nil
}

func newServer(t *testing.T) (*httptest.Server, interviews.Interview) {
	t.Helper()

	cand := candidates.Candidate{ID: uuid.New(), Name: "Ada", Email: "ada@example.com", TenantID: uuid.New()}
	dir := stubCandidates{byID: map[uuid.UUID]candidates.Candidate{cand.ID: cand}}
	ivSvc := interviews.New(ivrepo.NewMemoryRepository(), dir)

	iv, err := ivSvc.Create(context.Background(), interviews.CreateInput{
		CandidateID: cand.ID,
		ScheduledAt: time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	svc := service.New(secret, time.Hour, idempotency.NewMemoryStore(), ivSvc, zap.NewNop())

	r := chi.NewRouter()
	handler.New(svc, zap.NewNop()).Routes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, iv
}

func post(t *testing.T, srv *httptest.Server, payload map[string]any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+"/webhooks/calendar", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestCalendarWebhookHTTP(t *testing.T) {
	srv, iv := newServer(t)

	base := func() map[string]any {
		return map[string]any{
			"eventId":        "evt_123",
			"type":           "cancelled",
			"interviewId":    iv.ID.String(),
			"idempotencyKey": "idem-abc",
			"signature":      secret,
		}
	}

	t.Run("processes and then deduplicates", func(t *testing.T) {
		resp := post(t, srv, base())
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var first service.Result
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&first))
		require.True(t, first.Processed)
		require.Equal(t, interviews.StatusCancelled, first.Interview.Status)

		resp = post(t, srv, base())
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var second service.Result
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&second))
		require.True(t, second.Idempotent)
		require.False(t, second.Processed)
	})

	t.Run("wrong signature is unauthorized", func(t *testing.T) {
		payload := base()
		payload["signature"] = "forged"
		payload["idempotencyKey"] = "idem-sig"
		resp := post(t, srv, payload)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown event type is unprocessable", func(t *testing.T) {
		payload := base()
		payload["type"] = "rescheduled"
		payload["idempotencyKey"] = "idem-type"
		resp := post(t, srv, payload)
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("unknown interview is not found", func(t *testing.T) {
		payload := base()
		payload["interviewId"] = uuid.NewString()
		payload["idempotencyKey"] = "idem-missing"
		resp := post(t, srv, payload)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("bad timestamp is rejected", func(t *testing.T) {
		payload := base()
		payload["type"] = "updated"
		payload["scheduledAt"] = "tomorrow"
		payload["idempotencyKey"] = "idem-ts"
		resp := post(t, srv, payload)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
