package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/account-engine/internal/account"
	"github.com/sells-group/account-engine/internal/model"
	"github.com/sells-group/account-engine/internal/store"
)

// maxBody caps request bodies; transcripts are the largest payload.
const maxBody = 4 << 20

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	accts, err := s.svc.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": accts})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	acct, err := s.svc.Create(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"account": acct})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	acct, err := s.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"account": acct})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	var in model.Insights
	if !decode(w, r, &in) {
		return
	}
	out, err := s.svc.Ingest(r.Context(), chi.URLParam(r, "id"), in)
	writeOutcome(w, r, out, err)
}

func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Actions model.ActionList `json:"actions"`
	}
	if !decode(w, r, &req) {
		return
	}
	out, err := s.svc.Execute(r.Context(), chi.URLParam(r, "id"), req.Actions)
	writeOutcome(w, r, out, err)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decode(w, r, &req) {
		return
	}
	out, err := s.svc.Command(r.Context(), chi.URLParam(r, "id"), req.Text)
	writeOutcome(w, r, out, err)
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	var t model.Transcript
	if !decode(w, r, &t) {
		return
	}
	if t.Text == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("text is required"))
		return
	}
	out, err := s.svc.AnalyzeTranscript(r.Context(), chi.URLParam(r, "id"), t)
	writeOutcome(w, r, out, err)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return false
	}
	return true
}

func writeOutcome(w http.ResponseWriter, r *http.Request, out *account.Outcome, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, account.ErrInvalidName):
		status = http.StatusBadRequest
	case errors.Is(err, account.ErrNoAnalyzer):
		status = http.StatusNotImplemented
	}
	if status == http.StatusInternalServerError {
		zap.L().Error("api: request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeJSON(w, status, errorBody(err.Error()))
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
