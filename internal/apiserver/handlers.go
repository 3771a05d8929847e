package apiserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/moolen/fitaura/internal/agent"
	"github.com/moolen/fitaura/internal/orchestrator"
	"github.com/moolen/fitaura/internal/store"
)

const maxBodyBytes = 1 << 20

// ChatRequest is the body of POST /v1/chat.
type ChatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// ChatResponse is the body returned by POST /v1/chat.
type ChatResponse struct {
	RunID       string                   `json:"run_id"`
	Answer      string                   `json:"answer"`
	AgentsUsed  []string                 `json:"agents_used"`
	InDomain    bool                     `json:"in_domain"`
	Termination orchestrator.Termination `json:"termination"`
}

// ProfileResponse is returned by the profile endpoints.
type ProfileResponse struct {
	UserID  string        `json:"user_id"`
	Profile agent.Profile `json:"profile"`
}

// HistoryResponse is returned by GET /v1/history/{userID}.
type HistoryResponse struct {
	UserID string       `json:"user_id"`
	Turns  []store.Turn `json:"turns"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "invalid JSON body: "+err.Error())
		return
	}

	res, err := s.deps.Runner.Run(r.Context(), req.UserID, req.Message)
	if err != nil {
		s.writeRunError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		RunID:       res.RunID,
		Answer:      res.FinalText,
		AgentsUsed:  res.AgentNames(),
		InDomain:    res.InDomain,
		Termination: res.Termination,
	})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	profile, err := s.deps.Profiles.Get(r.Context(), userID)
	if err != nil {
		s.writeRunError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ProfileResponse{UserID: userID, Profile: profile.Clone()})
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")

	var profile agent.Profile
	if err := decodeBody(w, r, &profile); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "profile must be a JSON object: "+err.Error())
		return
	}
	if profile == nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "profile must be a JSON object")
		return
	}

	if err := s.deps.Profiles.Put(r.Context(), userID, profile); err != nil {
		s.writeRunError(w, r, err)
		return
	}
	s.logger.WithContext(r.Context()).Debug("Profile updated for %s (%d attributes)", userID, len(profile))
	writeJSON(w, http.StatusOK, ProfileResponse{UserID: userID, Profile: profile})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, CodeInvalidRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	turns, err := s.deps.History.History(r.Context(), userID, store.NormalizeLimit(limit))
	if err != nil {
		s.writeRunError(w, r, err)
		return
	}
	if turns == nil {
		turns = []store.Turn{}
	}
	writeJSON(w, http.StatusOK, HistoryResponse{UserID: userID, Turns: turns})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
