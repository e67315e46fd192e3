package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/commonground-app/backend/internal/handler/rooms"
	"github.com/commonground-app/backend/internal/handler/ws"
	middlewarePkg "github.com/commonground-app/backend/internal/middleware"
	chatService "github.com/commonground-app/backend/internal/service/chat"
	"github.com/commonground-app/backend/internal/service/mediation"
	"github.com/commonground-app/backend/internal/store/graph"
	"github.com/commonground-app/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(chatSvc *chatService.Service, engine *mediation.Engine, graphStore graph.Store, limits ws.Limits, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	roomsHandler := rooms.New(chatSvc, graphStore)
	wsHandler := ws.NewHandler(chatSvc, engine, ws.NewHub(), limits, log)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		roomsHandler.RegisterRoutes(api)
		wsHandler.RegisterRoutes(api)
	})

	return r
}
