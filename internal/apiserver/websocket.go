package apiserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/moolen/fitaura/internal/logging"
	"github.com/moolen/fitaura/internal/orchestrator"
)

// Stream message types sent on /ws/process-query.
const (
	StreamAgent = "agent"
	StreamFinal = "final"
	StreamError = "error"
)

const streamWriteTimeout = 10 * time.Second

// StreamRequest is one query sent by the client.
type StreamRequest struct {
	Query  string `json:"query"`
	UserID string `json:"user_id"`
}

// StreamMessage is one frame sent to the client: an "agent" frame per
// completed specialist, then exactly one "final" or "error" frame.
type StreamMessage struct {
	Type        string                   `json:"type"`
	RunID       string                   `json:"run_id,omitempty"`
	Agent       string                   `json:"agent,omitempty"`
	Text        string                   `json:"text,omitempty"`
	Answer      string                   `json:"answer,omitempty"`
	AgentsUsed  []string                 `json:"agents_used,omitempty"`
	Termination orchestrator.Termination `json:"termination,omitempty"`
	Code        string                   `json:"code,omitempty"`
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.origins.allows(origin)
		},
	}
}

// streamRead is one frame read from the client: a request or the reason it
// could not be decoded.
type streamRead struct {
	req StreamRequest
	err error
}

// handleProcessQuery serves queries on one connection until the client
// closes it. Runs on a connection are processed one at a time and are
// cancelled when the client goes away.
func (s *Server) handleProcessQuery(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.logger.Debug("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxBodyBytes)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	logger := s.logger.WithContext(ctx)
	logger.Debug("WebSocket client connected from %s", r.RemoteAddr)

	reads := make(chan streamRead)
	go readRequests(ctx, cancel, conn, reads, logger)

	for {
		var in streamRead
		select {
		case <-ctx.Done():
			return
		case read, ok := <-reads:
			if !ok {
				return
			}
			in = read
		}

		if in.err != nil {
			if werr := writeFrame(conn, StreamMessage{Type: StreamError, Code: CodeInvalidRequest, Text: "invalid request: " + in.err.Error()}); werr != nil {
				return
			}
			continue
		}

		if err := s.streamRun(ctx, conn, in.req); err != nil {
			logger.Debug("WebSocket write failed, closing: %v", err)
			return
		}
	}
}

// readRequests decodes client frames into out. A failed read means the
// connection is gone: it cancels ctx so an in-flight run stops too.
func readRequests(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, out chan<- streamRead, logger *logging.Logger) {
	defer close(out)
	defer cancel()

	for {
		_, rd, err := conn.NextReader()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("WebSocket client disconnected")
			} else {
				logger.Debug("WebSocket read failed: %v", err)
			}
			return
		}

		var in streamRead
		in.err = json.NewDecoder(rd).Decode(&in.req)
		select {
		case out <- in:
		case <-ctx.Done():
			return
		}
	}
}

// streamRun executes one run and forwards its progress. It returns an error
// only when the connection can no longer be written.
func (s *Server) streamRun(ctx context.Context, conn *websocket.Conn, req StreamRequest) error {
	var writeErr error
	progress := orchestrator.ObserverFunc(func(_ context.Context, ev orchestrator.Event) {
		if writeErr != nil || ev.Type != orchestrator.EventAgentCompleted {
			return
		}
		writeErr = writeFrame(conn, StreamMessage{
			Type:  StreamAgent,
			RunID: ev.RunID,
			Agent: ev.Agent.String(),
			Text:  ev.Text,
		})
	})

	res, err := s.deps.Runner.Run(ctx, req.UserID, req.Query, orchestrator.WithObserver(progress))
	if writeErr != nil {
		return writeErr
	}
	if err != nil {
		_, code := classifyError(err)
		return writeFrame(conn, StreamMessage{Type: StreamError, Code: code, Text: err.Error()})
	}

	return writeFrame(conn, StreamMessage{
		Type:        StreamFinal,
		RunID:       res.RunID,
		Answer:      res.FinalText,
		AgentsUsed:  res.AgentNames(),
		Termination: res.Termination,
	})
}

func writeFrame(conn *websocket.Conn, msg StreamMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	return conn.WriteJSON(msg)
}
