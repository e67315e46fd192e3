// Package ws is the room event channel: one websocket per client, the full
// join / send / paginate contract, and admission control ahead of mediation.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	model "github.com/commonground-app/backend/internal/model/chat"
	chatservice "github.com/commonground-app/backend/internal/service/chat"
	"github.com/commonground-app/backend/internal/service/mediation"
)

const (
	readWait    = 60 * time.Second
	writeWait   = 10 * time.Second
	pingPeriod  = 54 * time.Second
	joinWait    = 10 * time.Second
	sendTimeout = 15 * time.Second

	// recent turns handed to mediation as conversation context
	analysisContext = 10
)

type inboundEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Handler upgrades room connections and runs the event loop for each.
type Handler struct {
	chatSvc  *chatservice.Service
	engine   *mediation.Engine
	hub      *Hub
	limits   Limits
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHandler builds the channel handler. A nil limits map uses the
// defaults; a nil logger is replaced with a no-op one.
func NewHandler(chatSvc *chatservice.Service, engine *mediation.Engine, hub *Hub, limits Limits, log *zap.Logger) *Handler {
	if limits == nil {
		limits = DefaultLimits()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		chatSvc: chatSvc,
		engine:  engine,
		hub:     hub,
		limits:  limits,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: log,
	}
}

// RegisterRoutes mounts the channel endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/rooms/{roomID}/ws", h.handleSocket)
}

func (h *Handler) handleSocket(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	if roomID == "" {
		http.Error(w, "roomID is required", http.StatusBadRequest)
		return
	}

	room, err := h.chatSvc.GetRoom(r.Context(), roomID)
	if err != nil {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.String("room", roomID), zap.Error(err))
		return
	}
	defer conn.Close()

	pool := newLimiterPool(h.limits)

	c, ok := h.awaitJoin(conn, pool, room)
	if !ok {
		return
	}

	h.log.Info("participant joined room",
		zap.String("room", room.ID),
		zap.String("identity", c.identity))

	done := make(chan struct{})
	go h.writePump(conn, c, done)

	h.hub.add(room.ID, c)
	defer func() {
		h.hub.remove(room.ID, c)
		<-done
	}()

	h.sendHistory(r.Context(), room.ID, c)
	h.readLoop(conn, pool, room, c)
}

// awaitJoin runs the handshake: the first frame must be a join naming a
// room participant. Failures are answered on the raw connection since no
// writer exists yet.
func (h *Handler) awaitJoin(conn *websocket.Conn, pool *limiterPool, room model.Room) (*client, bool) {
	conn.SetReadDeadline(time.Now().Add(joinWait))

	var env inboundEnvelope
	if err := conn.ReadJSON(&env); err != nil {
		return nil, false
	}
	if env.Event != model.EventJoin {
		h.rejectJoin(conn, model.CodeInvalidPayload, "first event must be join")
		return nil, false
	}
	if !pool.Allow(model.EventJoin) {
		h.rejectJoin(conn, model.CodeRateLimited, "join rate exceeded")
		return nil, false
	}

	var payload model.JoinPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil || payload.Identity == "" {
		h.rejectJoin(conn, model.CodeInvalidPayload, "join requires an identity")
		return nil, false
	}
	if !room.HasParticipant(payload.Identity) {
		h.rejectJoin(conn, model.CodeUnauthorized, "not a participant of this room")
		return nil, false
	}

	return newClient(payload.Identity), true
}

func (h *Handler) rejectJoin(conn *websocket.Conn, code, message string) {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(socketError(code, message)); err != nil {
		h.log.Debug("join rejection write failed", zap.Error(err))
	}
}

func (h *Handler) sendHistory(ctx context.Context, roomID string, c *client) {
	messages, hasMore, err := h.chatSvc.History(ctx, roomID)
	if err != nil {
		h.log.Warn("history load failed", zap.String("room", roomID), zap.Error(err))
		c.deliver(socketError(model.CodeSendFailed, "history unavailable"))
		return
	}
	c.deliver(Envelope{
		Event: model.EventMessageHistory,
		Data:  model.HistoryPayload{Messages: messages, HasMore: hasMore},
	})
}

func (h *Handler) readLoop(conn *websocket.Conn, pool *limiterPool, room model.Room, c *client) {
	conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readWait))
		return nil
	})

	for {
		var env inboundEnvelope
		if err := conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.log.Warn("websocket read error", zap.String("room", room.ID), zap.Error(err))
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(readWait))

		switch env.Event {
		case model.EventSendMessage:
			h.handleSend(pool, room, c, env.Data)
		case model.EventLoadOlder:
			h.handleLoadOlder(room, c, env.Data)
		case model.EventJoin:
			// already joined; a repeat is harmless
		default:
			c.deliver(socketError(model.CodeInvalidPayload, "unsupported event: "+env.Event))
		}
	}
}

// handleSend runs a message through admission control and mediation, then
// persists and fans it out. The work runs on a detached context: once a
// message is accepted its persistence does not depend on the sender staying
// connected.
func (h *Handler) handleSend(pool *limiterPool, room model.Room, c *client, raw json.RawMessage) {
	if !pool.Allow(model.EventSendMessage) {
		c.deliver(socketError(model.CodeRateLimited, "send rate exceeded"))
		return
	}

	var payload model.SendMessagePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.deliver(socketError(model.CodeInvalidPayload, "invalid send payload"))
		return
	}
	tempID := payload.ClientTempID()

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	recent, err := h.chatSvc.Recent(ctx, room.ID, analysisContext)
	if err != nil {
		h.log.Warn("recent history load failed", zap.String("room", room.ID), zap.Error(err))
		recent = nil
	}

	msg := model.Message{
		TempID: tempID,
		RoomID: room.ID,
		Sender: c.identity,
		Text:   payload.Text,
	}

	decision := h.engine.Mediate(ctx, mediation.Request{
		Room:    room,
		Message: msg,
		Recent:  recent,
	})

	if action, ok := decision.Action.(mediation.Intervene); ok {
		intervention := action.Intervention
		c.deliver(Envelope{
			Event: model.EventMessageError,
			Data: model.MessageErrorPayload{
				OptimisticID: tempID,
				TempID:       tempID,
				Error:        "message held: consider a rephrase",
				Code:         model.CodeSendFailed,
				Intervention: &intervention,
			},
		})
		return
	}

	saved, err := h.chatSvc.Append(ctx, msg)
	if err != nil {
		h.deliverAppendFailure(c, tempID, err)
		return
	}

	c.deliver(Envelope{
		Event: model.EventMessageSent,
		Data:  model.MessageSentPayload{TempID: tempID, Message: saved},
	})
	c.deliver(Envelope{
		Event: model.EventReconciled,
		Data: model.ReconciledPayload{
			OptimisticID: tempID,
			MessageID:    saved.ID,
			Timestamp:    saved.Timestamp.UnixMilli(),
		},
	})
	h.hub.broadcast(room.ID, Envelope{
		Event: model.EventNewMessage,
		Data:  model.NewMessagePayload{Message: saved},
	}, c)

	if action, ok := decision.Action.(mediation.Comment); ok {
		h.hub.sendTo(room.ID, c.identity, Envelope{
			Event: model.EventMediatorNote,
			Data:  model.MediatorNotePayload{MessageID: saved.ID, Note: action.Note},
		})
	}
}

func (h *Handler) deliverAppendFailure(c *client, tempID string, err error) {
	switch {
	case errors.Is(err, chatservice.ErrNotMember):
		c.deliver(Envelope{
			Event: model.EventMessageError,
			Data: model.MessageErrorPayload{
				OptimisticID: tempID,
				TempID:       tempID,
				Error:        err.Error(),
				Code:         model.CodeUnauthorized,
			},
		})
	case errors.Is(err, chatservice.ErrEmptyMessage), errors.Is(err, chatservice.ErrRoomNotFound):
		c.deliver(Envelope{
			Event: model.EventMessageError,
			Data: model.MessageErrorPayload{
				OptimisticID: tempID,
				TempID:       tempID,
				Error:        err.Error(),
				Code:         model.CodeSendFailed,
			},
		})
	default:
		h.log.Error("message persistence failed", zap.Error(err))
		c.deliver(Envelope{
			Event: model.EventSaveFailed,
			Data: model.SaveFailedPayload{
				MessageID: tempID,
				Error:     "message could not be saved",
				Code:      model.CodePersistFailed,
			},
		})
	}
}

func (h *Handler) handleLoadOlder(room model.Room, c *client, raw json.RawMessage) {
	var payload model.LoadOlderPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.BeforeTimestamp <= 0 {
		c.deliver(socketError(model.CodeInvalidPayload, "invalid pagination payload"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	messages, hasMore, err := h.chatSvc.Older(ctx, room.ID, time.UnixMilli(payload.BeforeTimestamp), payload.Limit)
	if err != nil {
		h.log.Warn("pagination failed", zap.String("room", room.ID), zap.Error(err))
		c.deliver(socketError(model.CodeSendFailed, "pagination unavailable"))
		return
	}

	c.deliver(Envelope{
		Event: model.EventOlderMessages,
		Data:  model.HistoryPayload{Messages: messages, HasMore: hasMore},
	})
}

// writePump is the single writer for the connection: it drains the client's
// queue and keeps the connection alive with pings. It exits when the hub
// closes the send channel or a write fails.
func (h *Handler) writePump(conn *websocket.Conn, c *client, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case env, ok := <-c.send:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(env); err != nil {
				h.log.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func socketError(code, message string) Envelope {
	return Envelope{
		Event: model.EventSocketError,
		Data:  model.SocketErrorPayload{Code: code, Message: message},
	}
}
