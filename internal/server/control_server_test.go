package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"Mansoor88-6/activity-agent/internal/health"
	"Mansoor88-6/activity-agent/internal/models"
)

type fakeRequester struct {
	err      error
	requests map[models.ActivityKind]models.CollectionRequest
}

func (f *fakeRequester) Request(ctx context.Context, kind models.ActivityKind, req models.CollectionRequest) error {
	if f.err != nil {
		return f.err
	}
	if f.requests == nil {
		f.requests = map[models.ActivityKind]models.CollectionRequest{}
	}
	f.requests[kind] = req
	return nil
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestServer(requester Requester, ping error) (*ControlServer, *health.Monitor) {
	monitor := health.NewMonitor(pingFunc(func(context.Context) error { return ping }), zap.NewNop())
	return NewControlServer(requester, monitor, zap.NewNop()), monitor
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCollectAllKinds(t *testing.T) {
	requester := &fakeRequester{}
	srv, _ := newTestServer(requester, nil)

	rec := do(t, srv, http.MethodPost, "/api/v1/collect",
		`{"timerId":"t-1","start":"2024-03-01T09:00:00Z","end":"2024-03-01T09:10:00Z"}`)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, requester.requests, len(models.AllKinds))
	for _, kind := range models.AllKinds {
		assert.Equal(t, "t-1", requester.requests[kind].TimerID)
	}
}

func TestCollectSelectedKinds(t *testing.T) {
	requester := &fakeRequester{}
	srv, _ := newTestServer(requester, nil)

	rec := do(t, srv, http.MethodPost, "/api/v1/collect",
		`{"timerId":"t-1","start":"2024-03-01T09:00:00Z","end":"2024-03-01T09:10:00Z","kinds":["afk","url-edge"]}`)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Len(t, requester.requests, 2)
	assert.Contains(t, requester.requests, models.KindEdge)
}

func TestCollectRejectsBadInput(t *testing.T) {
	srv, _ := newTestServer(&fakeRequester{}, nil)

	cases := map[string]string{
		"malformed":    `{`,
		"no timer":     `{"start":"2024-03-01T09:00:00Z","end":"2024-03-01T09:10:00Z"}`,
		"bad start":    `{"timerId":"t","start":"yesterday","end":"2024-03-01T09:10:00Z"}`,
		"reversed":     `{"timerId":"t","start":"2024-03-01T10:00:00Z","end":"2024-03-01T09:10:00Z"}`,
		"unknown kind": `{"timerId":"t","start":"2024-03-01T09:00:00Z","end":"2024-03-01T09:10:00Z","kinds":["keyboard"]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/api/v1/collect", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCollectBusClosed(t *testing.T) {
	srv, _ := newTestServer(&fakeRequester{err: errors.New("closed")}, nil)

	rec := do(t, srv, http.MethodPost, "/api/v1/collect",
		`{"timerId":"t","start":"2024-03-01T09:00:00Z","end":"2024-03-01T09:10:00Z"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthLifecycle(t *testing.T) {
	srv, _ := newTestServer(&fakeRequester{}, nil)

	rec := do(t, srv, http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "disabled", resp.State)
	assert.False(t, resp.Enabled)

	rec = do(t, srv, http.MethodPost, "/api/v1/health/enabled", `{"enabled":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "connected", resp.State)
	assert.True(t, resp.Alive)
	assert.Equal(t, models.IconConnected, resp.Icon)
	assert.Equal(t, "connected", resp.Message)

	do(t, srv, http.MethodPost, "/api/v1/health/enabled", `{"enabled":false}`)
	rec = do(t, srv, http.MethodGet, "/api/v1/health", "")
	resp = HealthResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "disabled", resp.State)
	assert.False(t, resp.Enabled)
	assert.True(t, resp.Alive)
	assert.Empty(t, resp.Icon)
	assert.Equal(t, "disabled", resp.Message)
}

func TestHealthDisconnected(t *testing.T) {
	srv, _ := newTestServer(&fakeRequester{}, errors.New("refused"))

	rec := do(t, srv, http.MethodPost, "/api/v1/health/enabled", `{"enabled":true}`)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "disconnected", resp.State)
	assert.Equal(t, models.HealthStatusDanger, resp.Status)
}

func TestSetEnabledRequiresField(t *testing.T) {
	srv, _ := newTestServer(&fakeRequester{}, nil)
	rec := do(t, srv, http.MethodPost, "/api/v1/health/enabled", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouting(t *testing.T) {
	srv, _ := newTestServer(&fakeRequester{}, nil)

	assert.Equal(t, http.StatusMethodNotAllowed, do(t, srv, http.MethodGet, "/api/v1/collect", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, srv, http.MethodPost, "/api/v1/health", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/nope", "").Code)

	rec := do(t, srv, http.MethodOptions, "/api/v1/collect", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
