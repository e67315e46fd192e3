// Package rooms exposes the room lifecycle over HTTP: provisioning,
// lookup, and the pairwise communication-health readout.
package rooms

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	chatservice "github.com/commonground-app/backend/internal/service/chat"
	"github.com/commonground-app/backend/internal/store/graph"
	"github.com/commonground-app/backend/pkg/utils"
)

type Handler struct {
	chatSvc    *chatservice.Service
	graphStore graph.Store
}

func New(chatSvc *chatservice.Service, graphStore graph.Store) *Handler {
	return &Handler{chatSvc: chatSvc, graphStore: graphStore}
}

// RegisterRoutes mounts the room endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/rooms", h.handleCreateRoom)
	r.Get("/rooms/{roomID}", h.handleGetRoom)
	r.Get("/rooms/{roomID}/health", h.handleRoomHealth)
}

func (h *Handler) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ParticipantA string `json:"participantA"`
		ParticipantB string `json:"participantB"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	room, err := h.chatSvc.CreateRoom(r.Context(), payload.ParticipantA, payload.ParticipantB)
	if err != nil {
		if errors.Is(err, chatservice.ErrTwoParticipants) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "room creation failed")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, room)
}

func (h *Handler) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.chatSvc.GetRoom(r.Context(), chi.URLParam(r, "roomID"))
	if err != nil {
		if errors.Is(err, chatservice.ErrRoomNotFound) {
			utils.RespondError(w, http.StatusNotFound, "room not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "room lookup failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, room)
}

// handleRoomHealth sums the graph metrics over both directions of the
// pair, since the store records them per sender.
func (h *Handler) handleRoomHealth(w http.ResponseWriter, r *http.Request) {
	room, err := h.chatSvc.GetRoom(r.Context(), chi.URLParam(r, "roomID"))
	if err != nil {
		if errors.Is(err, chatservice.ErrRoomNotFound) {
			utils.RespondError(w, http.StatusNotFound, "room not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "room lookup failed")
		return
	}

	if h.graphStore == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "graph store unavailable")
		return
	}

	a, b := room.Participants[0], room.Participants[1]
	forward, err := h.graphStore.PairHealth(r.Context(), a, b)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "health lookup failed")
		return
	}
	reverse, err := h.graphStore.PairHealth(r.Context(), b, a)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "health lookup failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, graph.Health{
		Messages:      forward.Messages + reverse.Messages,
		Interventions: forward.Interventions + reverse.Interventions,
	})
}
