package webserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/psidex/arat/internal/enrollment"
	"github.com/psidex/arat/internal/lib"
	"github.com/psidex/arat/internal/metrics"
)

// session serves one dashboard over a websocket. Every message from the client is a
// limitRequest and is answered with exactly one graph or error message. Requests
// are handled one at a time, in order.
func (s *Server) session(w http.ResponseWriter, r *http.Request) {
	c, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", "error", err)
		return
	}
	defer c.Close()

	ws := lib.NewThreadSafeWebSocket(c)
	logger := s.logger.With("session", uuid.NewString())

	metrics.WebsocketSessions.Inc()
	defer metrics.WebsocketSessions.Dec()

	logger.Debug("Websocket session started", "remote", r.RemoteAddr)
	defer logger.Debug("Websocket session ended")

	for {
		msgType, msg, err := ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("Websocket read ended", "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var reply any
		limit, err := s.parseLimitRequest(msg)
		if err != nil {
			reply = newErrorMessage(err)
		} else if g, err := s.loader.Load(r.Context(), limit); err != nil {
			logger.Error("Failed to load graph", "limit", limit, "error", err)
			reply = newErrorMessage(err)
		} else {
			reply = newGraphMessage(limit, g)
		}

		if err := ws.WriteJSON(reply); err != nil {
			logger.Warn("Websocket write failed", "error", err)
			return
		}
	}
}

// parseLimitRequest decodes a client message. A missing or zero limit means the
// default and anything out of range is clamped, like the query parameter.
func (s *Server) parseLimitRequest(msg []byte) (int, error) {
	var req limitRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return 0, fmt.Errorf("%w: %s", enrollment.ErrInvalidLimit, err)
		}
		return 0, fmt.Errorf("malformed request: %w", err)
	}
	if req.Limit == 0 {
		return s.bounds.Default, nil
	}
	return s.bounds.Clamp(req.Limit), nil
}
