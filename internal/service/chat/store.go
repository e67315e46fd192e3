package chat

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	model "github.com/commonground-app/backend/internal/model/chat"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrNotMember       = errors.New("sender is not a member of the room")
	ErrEmptyMessage    = errors.New("message text is required")
	ErrTwoParticipants = errors.New("a room needs exactly two participants")
)

// Store is the persistence contract the room service writes through. The
// relational engine behind it is an external collaborator; MemoryStore covers
// development and tests.
type Store interface {
	CreateRoom(ctx context.Context, room model.Room) error
	GetRoom(ctx context.Context, roomID string) (model.Room, error)
	AppendMessage(ctx context.Context, msg model.Message) error
	// ListRecent returns up to limit newest messages in ascending order and
	// whether older messages exist.
	ListRecent(ctx context.Context, roomID string, limit int) ([]model.Message, bool, error)
	// ListBefore returns up to limit messages strictly older than before, in
	// ascending order, and whether yet older messages exist.
	ListBefore(ctx context.Context, roomID string, before time.Time, limit int) ([]model.Message, bool, error)
}

// MemoryStore keeps rooms and messages in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	rooms    map[string]model.Room
	messages map[string][]model.Message
}

// NewMemoryStore bootstraps the in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms:    make(map[string]model.Room),
		messages: make(map[string][]model.Message),
	}
}

func (s *MemoryStore) CreateRoom(_ context.Context, room model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = room
	if _, ok := s.messages[room.ID]; !ok {
		s.messages[room.ID] = make([]model.Message, 0, 32)
	}
	return nil
}

func (s *MemoryStore) GetRoom(_ context.Context, roomID string) (model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return model.Room{}, ErrRoomNotFound
	}
	return room, nil
}

func (s *MemoryStore) AppendMessage(_ context.Context, msg model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[msg.RoomID]; !ok {
		return ErrRoomNotFound
	}
	s.messages[msg.RoomID] = append(s.messages[msg.RoomID], msg)
	// Canonical order is persistence timestamp; keep the slice sorted so
	// pagination slices stay cheap.
	sort.SliceStable(s.messages[msg.RoomID], func(i, j int) bool {
		return s.messages[msg.RoomID][i].Timestamp.Before(s.messages[msg.RoomID][j].Timestamp)
	})
	return nil
}

func (s *MemoryStore) ListRecent(_ context.Context, roomID string, limit int) ([]model.Message, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all, ok := s.messages[roomID]
	if !ok {
		return nil, false, ErrRoomNotFound
	}
	if limit <= 0 || limit > len(all) {
		limit = len(all)
	}
	page := make([]model.Message, limit)
	copy(page, all[len(all)-limit:])
	return page, len(all) > limit, nil
}

func (s *MemoryStore) ListBefore(_ context.Context, roomID string, before time.Time, limit int) ([]model.Message, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all, ok := s.messages[roomID]
	if !ok {
		return nil, false, ErrRoomNotFound
	}

	end := sort.Search(len(all), func(i int) bool {
		return !all[i].Timestamp.Before(before)
	})
	start := end - limit
	if limit <= 0 || start < 0 {
		start = 0
	}
	page := make([]model.Message, end-start)
	copy(page, all[start:end])
	return page, start > 0, nil
}
