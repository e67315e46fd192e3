// Package chat owns the server-authoritative side of a room: membership,
// canonical message order, and pagination.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	model "github.com/commonground-app/backend/internal/model/chat"
)

// Service wraps a Store with the room service rules: server-assigned ids and
// timestamps, membership checks, bounded pages.
type Service struct {
	store    Store
	pageSize int
}

// NewService builds the room service. pageSize bounds history and pagination
// responses; values below 1 fall back to 50.
func NewService(store Store, pageSize int) *Service {
	if pageSize < 1 {
		pageSize = 50
	}
	return &Service{store: store, pageSize: pageSize}
}

// CreateRoom provisions a two-party room.
func (s *Service) CreateRoom(ctx context.Context, participantA, participantB string) (model.Room, error) {
	participantA = strings.TrimSpace(participantA)
	participantB = strings.TrimSpace(participantB)
	if participantA == "" || participantB == "" || participantA == participantB {
		return model.Room{}, ErrTwoParticipants
	}

	room := model.Room{
		ID:           uuid.NewString(),
		Participants: [2]string{participantA, participantB},
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateRoom(ctx, room); err != nil {
		return model.Room{}, fmt.Errorf("create room: %w", err)
	}
	return room, nil
}

// GetRoom retrieves a room by identifier.
func (s *Service) GetRoom(ctx context.Context, roomID string) (model.Room, error) {
	return s.store.GetRoom(ctx, roomID)
}

// Authorize reports whether sender may post into the room.
func (s *Service) Authorize(ctx context.Context, roomID, sender string) (model.Room, error) {
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return model.Room{}, err
	}
	if !room.HasParticipant(sender) {
		return model.Room{}, ErrNotMember
	}
	return room, nil
}

// Append persists an accepted message under a fresh permanent id and the
// canonical server timestamp. The client temp id rides along as the
// correlation key.
func (s *Service) Append(ctx context.Context, msg model.Message) (model.Message, error) {
	if strings.TrimSpace(msg.Text) == "" {
		return model.Message{}, ErrEmptyMessage
	}
	if _, err := s.Authorize(ctx, msg.RoomID, msg.Sender); err != nil {
		return model.Message{}, err
	}

	msg.ID = uuid.NewString()
	msg.Status = model.StatusSent
	msg.Error = ""
	msg.Timestamp = time.Now().UTC()

	if err := s.store.AppendMessage(ctx, msg); err != nil {
		return model.Message{}, fmt.Errorf("append message: %w", err)
	}
	return msg, nil
}

// History returns the newest page of a room's messages in ascending order.
func (s *Service) History(ctx context.Context, roomID string) ([]model.Message, bool, error) {
	return s.store.ListRecent(ctx, roomID, s.pageSize)
}

// Older returns a page of messages strictly before the given time.
func (s *Service) Older(ctx context.Context, roomID string, before time.Time, limit int) ([]model.Message, bool, error) {
	if limit < 1 || limit > s.pageSize {
		limit = s.pageSize
	}
	return s.store.ListBefore(ctx, roomID, before, limit)
}

// Recent returns up to limit latest messages for analysis context.
func (s *Service) Recent(ctx context.Context, roomID string, limit int) ([]model.Message, error) {
	msgs, _, err := s.store.ListRecent(ctx, roomID, limit)
	return msgs, err
}
