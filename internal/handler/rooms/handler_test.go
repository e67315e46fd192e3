package rooms

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	model "github.com/commonground-app/backend/internal/model/chat"
	chatservice "github.com/commonground-app/backend/internal/service/chat"
	"github.com/commonground-app/backend/internal/store/graph"
)

func newTestRouter(t *testing.T) (chi.Router, *chatservice.Service, *graph.MemoryStore) {
	t.Helper()
	chatSvc := chatservice.NewService(chatservice.NewMemoryStore(), 50)
	graphStore := graph.NewMemoryStore()
	r := chi.NewRouter()
	New(chatSvc, graphStore).RegisterRoutes(r)
	return r, chatSvc, graphStore
}

func TestCreateRoom(t *testing.T) {
	r, _, _ := newTestRouter(t)

	body, err := json.Marshal(map[string]string{
		"participantA": "parent-a",
		"participantB": "parent-b",
	})
	if err != nil {
		t.Fatalf("Marshal err: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/rooms", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("unexpected status: %d", rr.Code)
	}

	var room model.Room
	if err := json.NewDecoder(rr.Body).Decode(&room); err != nil {
		t.Fatalf("decode room err: %v", err)
	}
	if room.ID == "" {
		t.Fatal("expected a room id")
	}
	if room.Participants != [2]string{"parent-a", "parent-b"} {
		t.Fatalf("unexpected participants: %v", room.Participants)
	}
}

func TestCreateRoomRejectsSingleParticipant(t *testing.T) {
	r, _, _ := newTestRouter(t)

	body := []byte(`{"participantA":"parent-a","participantB":"parent-a"}`)
	req := httptest.NewRequest(http.MethodPost, "/rooms", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestGetRoomNotFound(t *testing.T) {
	r, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/rooms/missing", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestRoomHealthSumsBothDirections(t *testing.T) {
	r, chatSvc, graphStore := newTestRouter(t)

	room, err := chatSvc.CreateRoom(context.Background(), "parent-a", "parent-b")
	if err != nil {
		t.Fatalf("CreateRoom err: %v", err)
	}
	if err := graphStore.RecordMessage(context.Background(), "parent-a", "parent-b", room.ID); err != nil {
		t.Fatalf("RecordMessage err: %v", err)
	}
	if err := graphStore.RecordMessage(context.Background(), "parent-b", "parent-a", room.ID); err != nil {
		t.Fatalf("RecordMessage err: %v", err)
	}
	if err := graphStore.RecordIntervention(context.Background(), "parent-a", "parent-b", room.ID, "CHARACTER_ATTACK"); err != nil {
		t.Fatalf("RecordIntervention err: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/rooms/"+room.ID+"/health", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}

	var health graph.Health
	if err := json.NewDecoder(rr.Body).Decode(&health); err != nil {
		t.Fatalf("decode health err: %v", err)
	}
	if health.Messages != 2 {
		t.Fatalf("expected 2 messages, got %d", health.Messages)
	}
	if health.Interventions != 1 {
		t.Fatalf("expected 1 intervention, got %d", health.Interventions)
	}
}
