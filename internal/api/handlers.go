// internal/api/handlers.go
package api

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"

	chi "github.com/go-chi/chi/v5"

	stderrors "forecast-assistant/internal/common/errors"
	"forecast-assistant/internal/common/metrics"
	"forecast-assistant/internal/models"
	"forecast-assistant/internal/report"
	"forecast-assistant/internal/store"
)

var allowedUploadExts = map[string]bool{
	".csv":  true,
	".xlsx": true,
	".xls":  true,
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleGenerateReport turns a chat transcript and workflow log into a
// markdown report. Both fields must be present as strings.
func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		metrics.ReportRequests.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, "conversationHistory and analysisContext are required.")
		return
	}

	var req report.Request
	if !decodeStringField(raw, "conversationHistory", &req.ConversationHistory) ||
		!decodeStringField(raw, "analysisContext", &req.AnalysisContext) {
		metrics.ReportRequests.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, "conversationHistory and analysisContext are required.")
		return
	}

	markdown, err := s.reports.Generate(r.Context(), req)
	if err != nil {
		metrics.ReportRequests.WithLabelValues("error").Inc()
		s.logger.WithError(err).Error("report generation failed", nil)
		writeError(w, http.StatusInternalServerError, "Failed to generate report.")
		return
	}

	metrics.ReportRequests.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, map[string]string{"reportMarkdown": markdown})
}

func decodeStringField(raw map[string]json.RawMessage, key string, dst *string) bool {
	v, ok := raw[key]
	if !ok || string(v) == "null" {
		return false
	}
	return json.Unmarshal(v, dst) == nil
}

// handleSaveAPIKey swaps the LLM credential for subsequent calls. The key is
// held in memory only.
func (s *Server) handleSaveAPIKey(w http.ResponseWriter, r *http.Request) {
	var body struct {
		APIKey string `json:"apiKey"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.APIKey) == "" {
		writeError(w, http.StatusBadRequest, "apiKey is required.")
		return
	}

	if s.keySink != nil {
		s.keySink.SetAPIKey(body.APIKey)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "API key saved."})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"sessionId": sess.ID,
		"state":     sess.Store.State(),
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.Remove(chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"state": sess.Store.State()})
}

// handleSessionChat runs one conversation turn. A degraded turn (model
// unreachable, fallback shown) is still a 200: the state carries the outcome.
func (s *Server) handleSessionChat(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found.")
		return
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required.")
		return
	}

	state, err := sess.Orchestrator.Submit(r.Context(), body.Message)
	degraded := err != nil
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"state":    state,
		"degraded": degraded,
	})
}

type actionRequest struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// handleSessionAction dispatches a single state action. Unknown action types
// and unknown entity ids leave the state untouched and still return it.
func (s *Server) handleSessionAction(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found.")
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Type == "" {
		writeError(w, http.StatusBadRequest, "type is required.")
		return
	}

	action, actErr := buildAction(req, sess.Store.State())
	if actErr != nil {
		if stdErr, ok := actErr.(*stderrors.StandardError); ok && stdErr.Code == stderrors.ErrCodeUnsupportedFileType {
			writeError(w, http.StatusBadRequest, "Only .csv, .xlsx and .xls files are supported.")
			return
		}
		writeError(w, http.StatusBadRequest, actErr.Error())
		return
	}

	state := sess.Store.State()
	if action != nil {
		state = sess.Store.Dispatch(action)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"state": state})
}

// buildAction maps a wire action onto a store action. A nil action with nil
// error means a deliberate no-op.
func buildAction(req actionRequest, state models.AppState) (store.Action, error) {
	decode := func(dst interface{}) error {
		if len(req.Payload) == 0 {
			return nil
		}
		return json.Unmarshal(req.Payload, dst)
	}

	switch req.Type {
	case "SET_SELECTED_BU":
		var p struct {
			BUID string `json:"buId"`
		}
		if err := decode(&p); err != nil {
			return nil, stderrors.NewInvalidPayloadError(err.Error())
		}
		bu := state.FindBU(p.BUID)
		if bu == nil {
			return nil, nil
		}
		return store.SetSelectedBU{BU: bu}, nil

	case "SET_SELECTED_LOB":
		var p struct {
			LOBID string `json:"lobId"`
		}
		if err := decode(&p); err != nil {
			return nil, stderrors.NewInvalidPayloadError(err.Error())
		}
		_, lob := state.FindLOB(p.LOBID)
		if lob == nil {
			return nil, nil
		}
		return store.SetSelectedLOB{LOB: lob}, nil

	case "UPLOAD_DATA":
		var p struct {
			LOBID    string `json:"lobId"`
			Filename string `json:"filename"`
		}
		if err := decode(&p); err != nil {
			return nil, stderrors.NewInvalidPayloadError(err.Error())
		}
		ext := strings.ToLower(filepath.Ext(p.Filename))
		if !allowedUploadExts[ext] {
			return nil, stderrors.NewUnsupportedFileTypeError(p.Filename)
		}
		return store.UploadData{LOBID: p.LOBID, Filename: p.Filename}, nil

	case "TOGGLE_VISUALIZATION":
		var p struct {
			MessageID string `json:"messageId"`
		}
		if err := decode(&p); err != nil {
			return nil, stderrors.NewInvalidPayloadError(err.Error())
		}
		return store.ToggleVisualization{MessageID: p.MessageID}, nil

	case "ADD_BU":
		var p struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := decode(&p); err != nil {
			return nil, stderrors.NewInvalidPayloadError(err.Error())
		}
		if strings.TrimSpace(p.Name) == "" {
			return nil, stderrors.NewInvalidPayloadError("name is required")
		}
		return store.AddBU{Name: p.Name, Description: p.Description}, nil

	case "ADD_LOB":
		var p struct {
			BUID        string `json:"buId"`
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := decode(&p); err != nil {
			return nil, stderrors.NewInvalidPayloadError(err.Error())
		}
		if strings.TrimSpace(p.Name) == "" {
			return nil, stderrors.NewInvalidPayloadError("name is required")
		}
		return store.AddLOB{BUID: p.BUID, Name: p.Name, Description: p.Description}, nil

	case "RESET_WORKFLOW":
		return store.ResetWorkflow{}, nil

	case "SET_AGENT_MONITOR_OPEN":
		var p struct {
			Open bool `json:"open"`
		}
		if err := decode(&p); err != nil {
			return nil, stderrors.NewInvalidPayloadError(err.Error())
		}
		return store.SetAgentMonitorOpen{Open: p.Open}, nil

	case "SET_DATA_PANEL":
		var p models.DataPanel
		if err := decode(&p); err != nil {
			return nil, stderrors.NewInvalidPayloadError(err.Error())
		}
		return store.SetDataPanel{Panel: p}, nil

	case "END_ONBOARDING":
		return store.EndOnboarding{}, nil

	case "QUEUE_USER_PROMPT":
		var p struct {
			Prompt string `json:"prompt"`
		}
		if err := decode(&p); err != nil {
			return nil, stderrors.NewInvalidPayloadError(err.Error())
		}
		return store.QueueUserPrompt{Prompt: p.Prompt}, nil

	case "CLEAR_QUEUED_PROMPT":
		return store.ClearQueuedPrompt{}, nil

	default:
		return nil, nil
	}
}
