package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forecast-assistant/internal/chat"
	"forecast-assistant/internal/common/config"
	"forecast-assistant/internal/common/logger"
	"forecast-assistant/internal/models"
	"forecast-assistant/internal/report"
	"forecast-assistant/internal/session"
)

type backendFunc func(ctx context.Context, messages []chat.Message) (string, error)

func (f backendFunc) Complete(ctx context.Context, messages []chat.Message) (string, error) {
	return f(ctx, messages)
}

type keyRecorder struct {
	key string
}

func (k *keyRecorder) SetAPIKey(key string) { k.key = key }

func newTestServer(t *testing.T, backend chat.Backend) (*Server, *keyRecorder) {
	t.Helper()
	cfg := &config.Config{
		Server:    config.ServerConfig{Address: ":0", ShutdownTimeout: 1000},
		Report:    config.ReportConfig{Timeout: 60000, CacheTTL: 900},
		Simulator: config.SimulatorConfig{TickInterval: 2500, ResetDelay: 3000},
		Sessions:  config.SessionConfig{IdleTTL: 1800, SweepInterval: 60},
	}
	log := logger.NewTestLogger(t)

	sessions := session.NewManager(backend, cfg, log)
	t.Cleanup(sessions.Close)

	reports := report.NewService(backend, nil, &cfg.Report, log)
	sink := &keyRecorder{}
	return NewServer(sessions, reports, sink, cfg, log), sink
}

func postJSON(t *testing.T, srv http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, srv http.Handler) string {
	t.Helper()
	rec := postJSON(t, srv, "/api/sessions", map[string]string{})
	require.Equal(t, http.StatusCreated, rec.Code)
	var body struct {
		SessionID string `json:"sessionId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.SessionID)
	return body.SessionID
}

func okBackend(reply string) chat.Backend {
	return backendFunc(func(ctx context.Context, messages []chat.Message) (string, error) {
		return reply, nil
	})
}

func TestGenerateReport(t *testing.T) {
	srv, _ := newTestServer(t, okBackend("# Report\n\nFindings."))

	rec := postJSON(t, srv, "/api/generate-report", map[string]string{
		"conversationHistory": "user: hi",
		"analysisContext":     "step-1 completed",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "# Report\n\nFindings.", body["reportMarkdown"])
}

func TestGenerateReport_InvalidPayload(t *testing.T) {
	srv, _ := newTestServer(t, okBackend("unused"))

	cases := []struct {
		name string
		body interface{}
	}{
		{"missing analysisContext", map[string]string{"conversationHistory": "hi"}},
		{"missing conversationHistory", map[string]string{"analysisContext": "log"}},
		{"non-string field", map[string]interface{}{"conversationHistory": 42, "analysisContext": "log"}},
		{"null field", map[string]interface{}{"conversationHistory": nil, "analysisContext": "log"}},
		{"empty object", map[string]string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, srv, "/api/generate-report", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestGenerateReport_BackendFailure(t *testing.T) {
	srv, _ := newTestServer(t, backendFunc(func(ctx context.Context, messages []chat.Message) (string, error) {
		return "", assert.AnError
	}))

	rec := postJSON(t, srv, "/api/generate-report", map[string]string{
		"conversationHistory": "hi",
		"analysisContext":     "log",
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSaveAPIKey(t *testing.T) {
	srv, sink := newTestServer(t, okBackend("unused"))

	rec := postJSON(t, srv, "/api/save-api-key", map[string]string{"apiKey": "sk-new"})

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["message"])
	assert.Equal(t, "sk-new", sink.key)
}

func TestSaveAPIKey_Missing(t *testing.T) {
	srv, _ := newTestServer(t, okBackend("unused"))

	rec := postJSON(t, srv, "/api/save-api-key", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, okBackend("Hi there.\n\n**What's next?**\n- Upload data"))
	id := createSession(t, srv)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/state", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		State models.AppState `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.State.BusinessUnits)
	assert.NotEmpty(t, body.State.Messages)
	assert.True(t, body.State.IsOnboarding)
}

func TestSessionState_Unknown(t *testing.T) {
	srv, _ := newTestServer(t, okBackend("unused"))

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/missing/state", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionChat(t *testing.T) {
	srv, _ := newTestServer(t, okBackend("Sure.\n\n**What's next?**\n- Run a forecast"))
	id := createSession(t, srv)

	rec := postJSON(t, srv, "/api/sessions/"+id+"/chat", map[string]string{"message": "hello"})

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		State    models.AppState `json:"state"`
		Degraded bool            `json:"degraded"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Degraded)
	last := body.State.Messages[len(body.State.Messages)-1]
	assert.Equal(t, "Sure.", last.Content)
	assert.Equal(t, []string{"Run a forecast"}, last.Suggestions)
}

func TestSessionChat_DegradedTurn(t *testing.T) {
	srv, _ := newTestServer(t, backendFunc(func(ctx context.Context, messages []chat.Message) (string, error) {
		return "", assert.AnError
	}))
	id := createSession(t, srv)

	rec := postJSON(t, srv, "/api/sessions/"+id+"/chat", map[string]string{"message": "hello"})

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		State    models.AppState `json:"state"`
		Degraded bool            `json:"degraded"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Degraded)
	last := body.State.Messages[len(body.State.Messages)-1]
	assert.Equal(t, chat.FallbackMessage, last.Content)
}

func TestSessionAction_SetSelectedBU(t *testing.T) {
	srv, _ := newTestServer(t, okBackend("unused"))
	id := createSession(t, srv)

	rec := postJSON(t, srv, "/api/sessions/"+id+"/actions", map[string]interface{}{
		"type":    "SET_SELECTED_BU",
		"payload": map[string]string{"buId": "bu-mass"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		State models.AppState `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.State.SelectedBU)
	assert.Equal(t, "bu-mass", body.State.SelectedBU.ID)
	assert.Empty(t, body.State.Workflow)
	assert.False(t, body.State.IsProcessing)
}

func TestSessionAction_UnknownTypeIsNoOp(t *testing.T) {
	srv, _ := newTestServer(t, okBackend("unused"))
	id := createSession(t, srv)

	rec := postJSON(t, srv, "/api/sessions/"+id+"/actions", map[string]interface{}{
		"type": "SOMETHING_ELSE",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionAction_UploadRejectsUnsupportedExtension(t *testing.T) {
	srv, _ := newTestServer(t, okBackend("unused"))
	id := createSession(t, srv)

	rec := postJSON(t, srv, "/api/sessions/"+id+"/actions", map[string]interface{}{
		"type":    "UPLOAD_DATA",
		"payload": map[string]string{"lobId": "lob-ecom-phone", "filename": "report.pdf"},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionAction_UploadData(t *testing.T) {
	srv, _ := newTestServer(t, okBackend("unused"))
	id := createSession(t, srv)

	rec := postJSON(t, srv, "/api/sessions/"+id+"/actions", map[string]interface{}{
		"type":    "UPLOAD_DATA",
		"payload": map[string]string{"lobId": "lob-ecom-phone", "filename": "sales.csv"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		State models.AppState `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	_, lob := body.State.FindLOB("lob-ecom-phone")
	require.NotNil(t, lob)
	assert.True(t, lob.HasData)
	assert.Greater(t, lob.RecordCount, 0)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, okBackend("unused"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
