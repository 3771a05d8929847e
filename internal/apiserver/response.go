package apiserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/moolen/fitaura/internal/agent"
	"github.com/moolen/fitaura/internal/orchestrator"
	"github.com/moolen/fitaura/internal/reasoning"
	"github.com/moolen/fitaura/internal/store"
)

// Error codes in the {"error", "message"} body.
const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeBadDecision          = "BAD_SUPERVISOR_DECISION"
	CodeReasoningUnavailable = "REASONING_UNAVAILABLE"
	CodeTimeout              = "TIMEOUT"
	CodeInternal             = "INTERNAL_ERROR"
)

// encodeJSON writes data without HTML escaping so advice text stays readable.
func encodeJSON(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	return encoder.Encode(data)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = encodeJSON(w, data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error":   code,
		"message": message,
	})
}

// classifyError maps a run or store error to a status and code.
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, orchestrator.ErrEmptyMessage), errors.Is(err, store.ErrInvalidUserID):
		return http.StatusBadRequest, CodeInvalidRequest
	case agent.IsMalformedDecision(err):
		return http.StatusBadGateway, CodeBadDecision
	case errors.Is(err, reasoning.ErrUnavailable):
		return http.StatusServiceUnavailable, CodeReasoningUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, CodeTimeout
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func (s *Server) writeRunError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classifyError(err)
	if status >= http.StatusInternalServerError {
		s.logger.WithContext(r.Context()).Error("%s %s failed: %v", r.Method, r.URL.Path, err)
	}
	writeError(w, status, code, err.Error())
}
