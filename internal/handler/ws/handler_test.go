package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/commonground-app/backend/internal/model/chat"
	chatservice "github.com/commonground-app/backend/internal/service/chat"
	"github.com/commonground-app/backend/internal/service/mediation"
	"github.com/commonground-app/backend/internal/store/graph"
	"github.com/commonground-app/backend/internal/store/profile"
)

type testServer struct {
	srv     *httptest.Server
	chatSvc *chatservice.Service
	room    model.Room
}

func newTestServer(t *testing.T, pageSize int, limits Limits) *testServer {
	t.Helper()

	chatSvc := chatservice.NewService(chatservice.NewMemoryStore(), pageSize)
	room, err := chatSvc.CreateRoom(context.Background(), "parent-a", "parent-b")
	require.NoError(t, err)

	engine := mediation.NewEngine(nil, profile.NewMemoryStore(), graph.NewMemoryStore(), nil)
	handler := NewHandler(chatSvc, engine, NewHub(), limits, nil)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testServer{srv: srv, chatSvc: chatSvc, room: room}
}

func openLimits() Limits {
	return Limits{
		model.EventJoin:        {RPS: 100, Burst: 100},
		model.EventSendMessage: {RPS: 100, Burst: 100},
	}
}

func (ts *testServer) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.srv.URL, "http") + "/rooms/" + ts.room.ID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (ts *testServer) join(t *testing.T, identity string) *websocket.Conn {
	t.Helper()
	conn := ts.dial(t)
	require.NoError(t, conn.WriteJSON(Envelope{
		Event: model.EventJoin,
		Data:  model.JoinPayload{Identity: identity},
	}))

	event, _ := readFrame(t, conn)
	require.Equal(t, model.EventMessageHistory, event)
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env inboundEnvelope
	require.NoError(t, conn.ReadJSON(&env))
	return env.Event, env.Data
}

func sendText(t *testing.T, conn *websocket.Conn, tempID, text string) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(Envelope{
		Event: model.EventSendMessage,
		Data:  model.SendMessagePayload{Text: text, TempID: tempID},
	}))
}

func TestSendAckReconcileAndBroadcast(t *testing.T) {
	ts := newTestServer(t, 50, openLimits())
	sender := ts.join(t, "parent-a")
	receiver := ts.join(t, "parent-b")

	sendText(t, sender, "tmp-1", "Can we meet at 3pm instead?")

	event, data := readFrame(t, sender)
	require.Equal(t, model.EventMessageSent, event)
	var sent model.MessageSentPayload
	require.NoError(t, json.Unmarshal(data, &sent))
	assert.Equal(t, "tmp-1", sent.TempID)
	require.NotEmpty(t, sent.Message.ID)
	assert.Equal(t, model.StatusSent, sent.Message.Status)

	event, data = readFrame(t, sender)
	require.Equal(t, model.EventReconciled, event)
	var rec model.ReconciledPayload
	require.NoError(t, json.Unmarshal(data, &rec))
	assert.Equal(t, "tmp-1", rec.OptimisticID)
	assert.Equal(t, sent.Message.ID, rec.MessageID)
	assert.Greater(t, rec.Timestamp, int64(0))

	event, data = readFrame(t, receiver)
	require.Equal(t, model.EventNewMessage, event)
	var push model.NewMessagePayload
	require.NoError(t, json.Unmarshal(data, &push))
	assert.Equal(t, sent.Message.ID, push.Message.ID)
	assert.Equal(t, "Can we meet at 3pm instead?", push.Message.Text)
}

func TestInterventionBlocksDelivery(t *testing.T) {
	ts := newTestServer(t, 50, openLimits())
	sender := ts.join(t, "parent-a")
	receiver := ts.join(t, "parent-b")

	sendText(t, sender, "tmp-1", "You're such an idiot")

	event, data := readFrame(t, sender)
	require.Equal(t, model.EventMessageError, event)
	var errPayload model.MessageErrorPayload
	require.NoError(t, json.Unmarshal(data, &errPayload))
	assert.Equal(t, "tmp-1", errPayload.OptimisticID)
	assert.Equal(t, model.CodeSendFailed, errPayload.Code)
	require.NotNil(t, errPayload.Intervention)
	assert.NotEmpty(t, errPayload.Intervention.Validation)
	assert.NotEmpty(t, errPayload.Intervention.Rewrite1)
	assert.NotEmpty(t, errPayload.Intervention.Rewrite2)

	// Nothing was persisted or pushed to the other participant.
	messages, _, err := ts.chatSvc.History(context.Background(), ts.room.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)

	receiver.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	var env inboundEnvelope
	assert.Error(t, receiver.ReadJSON(&env), "blocked message must not reach the recipient")
}

func TestMediatorNoteAccompaniesDeliveredMessage(t *testing.T) {
	ts := newTestServer(t, 50, openLimits())
	sender := ts.join(t, "parent-a")
	receiver := ts.join(t, "parent-b")

	sendText(t, sender, "tmp-1", "We missed the appointment because of you")

	event, _ := readFrame(t, sender)
	require.Equal(t, model.EventMessageSent, event)
	event, _ = readFrame(t, sender)
	require.Equal(t, model.EventReconciled, event)

	event, data := readFrame(t, sender)
	require.Equal(t, model.EventMediatorNote, event)
	var note model.MediatorNotePayload
	require.NoError(t, json.Unmarshal(data, &note))
	assert.NotEmpty(t, note.Note)
	assert.NotEmpty(t, note.MessageID)

	// The message itself still passes through to the other side.
	event, _ = readFrame(t, receiver)
	assert.Equal(t, model.EventNewMessage, event)
}

func TestJoinMustBeFirstEvent(t *testing.T) {
	ts := newTestServer(t, 50, openLimits())
	conn := ts.dial(t)

	require.NoError(t, conn.WriteJSON(Envelope{
		Event: model.EventSendMessage,
		Data:  model.SendMessagePayload{Text: "hi", TempID: "tmp-1"},
	}))

	event, data := readFrame(t, conn)
	require.Equal(t, model.EventSocketError, event)
	var sockErr model.SocketErrorPayload
	require.NoError(t, json.Unmarshal(data, &sockErr))
	assert.Equal(t, model.CodeInvalidPayload, sockErr.Code)
}

func TestJoinRejectsNonParticipant(t *testing.T) {
	ts := newTestServer(t, 50, openLimits())
	conn := ts.dial(t)

	require.NoError(t, conn.WriteJSON(Envelope{
		Event: model.EventJoin,
		Data:  model.JoinPayload{Identity: "stranger"},
	}))

	event, data := readFrame(t, conn)
	require.Equal(t, model.EventSocketError, event)
	var sockErr model.SocketErrorPayload
	require.NoError(t, json.Unmarshal(data, &sockErr))
	assert.Equal(t, model.CodeUnauthorized, sockErr.Code)
}

func TestSendRateLimited(t *testing.T) {
	limits := Limits{
		model.EventJoin:        {RPS: 100, Burst: 100},
		model.EventSendMessage: {RPS: 1, Burst: 1},
	}
	ts := newTestServer(t, 50, limits)
	sender := ts.join(t, "parent-a")

	sendText(t, sender, "tmp-1", "First message ok")
	sendText(t, sender, "tmp-2", "Second message too fast")

	event, _ := readFrame(t, sender)
	require.Equal(t, model.EventMessageSent, event)
	event, _ = readFrame(t, sender)
	require.Equal(t, model.EventReconciled, event)

	event, data := readFrame(t, sender)
	require.Equal(t, model.EventSocketError, event)
	var sockErr model.SocketErrorPayload
	require.NoError(t, json.Unmarshal(data, &sockErr))
	assert.Equal(t, model.CodeRateLimited, sockErr.Code)
}

func TestLoadOlderMessages(t *testing.T) {
	ts := newTestServer(t, 2, openLimits())

	for _, text := range []string{"first", "second", "third"} {
		_, err := ts.chatSvc.Append(context.Background(), model.Message{
			RoomID: ts.room.ID,
			Sender: "parent-a",
			Text:   text,
		})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	conn := ts.dial(t)
	require.NoError(t, conn.WriteJSON(Envelope{
		Event: model.EventJoin,
		Data:  model.JoinPayload{Identity: "parent-b"},
	}))

	event, data := readFrame(t, conn)
	require.Equal(t, model.EventMessageHistory, event)
	var history model.HistoryPayload
	require.NoError(t, json.Unmarshal(data, &history))
	require.Len(t, history.Messages, 2)
	assert.True(t, history.HasMore)
	assert.Equal(t, "second", history.Messages[0].Text)

	require.NoError(t, conn.WriteJSON(Envelope{
		Event: model.EventLoadOlder,
		Data: model.LoadOlderPayload{
			BeforeTimestamp: history.Messages[0].Timestamp.UnixMilli(),
			Limit:           2,
		},
	}))

	event, data = readFrame(t, conn)
	require.Equal(t, model.EventOlderMessages, event)
	var page model.HistoryPayload
	require.NoError(t, json.Unmarshal(data, &page))
	require.Len(t, page.Messages, 1)
	assert.Equal(t, "first", page.Messages[0].Text)
	assert.False(t, page.HasMore)
}
