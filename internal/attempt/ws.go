package attempt

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	httperrors "github.com/quizdeck/quizdeck/pkg/http/errors"
	ws "github.com/quizdeck/quizdeck/pkg/http/ws"
)

// HubNotifier publishes progress updates onto the WebSocket hub so the
// progress bar tracks answer mutations without polling.
type HubNotifier struct {
	hub    *ws.Hub
	logger zerolog.Logger
}

var _ Notifier = (*HubNotifier)(nil)

// NewHubNotifier wraps a hub as a Manager notifier.
func NewHubNotifier(hub *ws.Hub, logger zerolog.Logger) *HubNotifier {
	return &HubNotifier{hub: hub, logger: logger}
}

// PublishProgress fans the update out to the attempt's subscribers.
func (n *HubNotifier) PublishProgress(attemptID string, p ProgressUpdate) {
	payload, err := json.Marshal(p)
	if err != nil {
		n.logger.Warn().Err(err).Msg("progress payload encode failed")
		return
	}
	n.hub.Broadcast(attemptID, ws.Message{Type: ws.TypeProgressUpdate, Payload: payload})
}

// WSHandler upgrades connections for the attempt progress feed.
type WSHandler struct {
	hub      *ws.Hub
	manager  *Manager
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewWSHandler creates the feed handler.
func NewWSHandler(hub *ws.Hub, manager *Manager, logger zerolog.Logger) *WSHandler {
	return &WSHandler{
		hub:     hub,
		manager: manager,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// TODO: restrict to the configured UI origin before exposing publicly
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger.With().Str("component", "attempt_ws").Logger(),
	}
}

// HandleFeed serves GET /ws/attempts/{id}. The first frame after subscribing
// carries the current progress so a reconnecting tab renders immediately.
func (h *WSHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	attemptID := r.PathValue("id")
	progress, err := h.manager.Progress(attemptID)
	if err != nil {
		if errors.Is(err, ErrAttemptNotFound) {
			httperrors.RespondNotFound(w, httperrors.ErrCodeAttemptNotFound, "Attempt not found")
			return
		}
		httperrors.RespondInternalError(w, "Failed to resolve attempt")
		return
	}

	rawConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Str("attempt_id", attemptID).Msg("websocket upgrade failed")
		return
	}

	conn := ws.NewConnection(rawConn, h.logger)
	h.hub.Subscribe(attemptID, conn)
	go conn.WritePump()

	if payload, err := json.Marshal(progress); err == nil {
		_ = conn.Send(ws.Message{Type: ws.TypeProgressUpdate, Payload: payload})
	}

	conn.ReadPump(func(msg ws.Message) error {
		if msg.Type == ws.TypePing {
			return conn.Send(ws.Message{Type: ws.TypePong})
		}
		return nil
	})
	h.hub.Unsubscribe(attemptID, conn)
}
