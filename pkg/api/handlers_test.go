package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev/bravebird/trial-resetter/pkg/models"
)

type fakeStore struct {
	results   []models.CheckResult
	err       error
	lastLimit int
}

func (f *fakeStore) ListCheckResults(ctx context.Context, limit int) ([]models.CheckResult, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.results) {
		return f.results[:limit], nil
	}
	return f.results, nil
}

func (f *fakeStore) GetCheckResult(ctx context.Context, id string) (*models.CheckResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.results {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) LatestCheckResult(ctx context.Context) (*models.CheckResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) == 0 {
		return nil, nil
	}
	return &f.results[0], nil
}

func serve(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	status := NewStatus()
	require.NoError(t, status.Record(context.Background(), models.CheckResult{ID: "a", Outcome: models.OutcomeReset}))
	require.NoError(t, status.Record(context.Background(), models.CheckResult{ID: "b", Outcome: models.OutcomeFailed}))

	rec := serve(t, NewRouter(NewHandlers(nil, status)), "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 2, body["checks"])
	assert.EqualValues(t, 1, body["resets"])
	assert.EqualValues(t, 1, body["failed"])
}

func TestListChecks(t *testing.T) {
	store := &fakeStore{results: []models.CheckResult{{ID: "new"}, {ID: "old"}}}
	router := NewRouter(NewHandlers(store, NewStatus()))

	t.Run("default limit", func(t *testing.T) {
		rec := serve(t, router, "/api/checks")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, defaultListLimit, store.lastLimit)

		var got []models.CheckResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Len(t, got, 2)
	})

	t.Run("capped limit", func(t *testing.T) {
		rec := serve(t, router, "/api/checks?limit=100000")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, maxListLimit, store.lastLimit)
	})

	t.Run("bad limit", func(t *testing.T) {
		rec := serve(t, router, "/api/checks?limit=-1")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListChecksWithoutDatabase(t *testing.T) {
	rec := serve(t, NewRouter(NewHandlers(nil, NewStatus())), "/api/checks")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestListChecksStoreError(t *testing.T) {
	store := &fakeStore{err: errors.New("db down")}
	rec := serve(t, NewRouter(NewHandlers(store, NewStatus())), "/api/checks")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetLatestCheck(t *testing.T) {
	t.Run("from memory", func(t *testing.T) {
		status := NewStatus()
		require.NoError(t, status.Record(context.Background(), models.CheckResult{ID: "mem", SecondsRemaining: 5}))

		rec := serve(t, NewRouter(NewHandlers(nil, status)), "/api/checks/latest")
		require.Equal(t, http.StatusOK, rec.Code)

		var got models.CheckResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "mem", got.ID)
		assert.Equal(t, 5, got.SecondsRemaining)
	})

	t.Run("from store", func(t *testing.T) {
		store := &fakeStore{results: []models.CheckResult{{ID: "db"}}}
		rec := serve(t, NewRouter(NewHandlers(store, NewStatus())), "/api/checks/latest")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"id":"db"`)
	})

	t.Run("none", func(t *testing.T) {
		rec := serve(t, NewRouter(NewHandlers(nil, NewStatus())), "/api/checks/latest")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGetCheck(t *testing.T) {
	store := &fakeStore{results: []models.CheckResult{{ID: "abc", Outcome: models.OutcomeWaiting}}}
	router := NewRouter(NewHandlers(store, NewStatus()))

	rec := serve(t, router, "/api/checks/abc")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"outcome":"waiting"`)

	rec = serve(t, router, "/api/checks/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStreamChecks(t *testing.T) {
	status := NewStatus()
	h := NewHandlers(nil, status)
	h.pollInterval = 10 * time.Millisecond

	srv := httptest.NewServer(NewRouter(h))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/checks/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, status.Record(context.Background(), models.CheckResult{ID: "first", Outcome: models.OutcomeReset}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg struct {
		Type    string             `json:"type"`
		Payload models.CheckResult `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&msg))

	assert.Equal(t, "check_result", msg.Type)
	assert.Equal(t, "first", msg.Payload.ID)
	assert.Equal(t, models.OutcomeReset, msg.Payload.Outcome)
}
