package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"wordimposter/internal/config"
	"wordimposter/internal/hub"
	"wordimposter/internal/ws"
)

func SetupRoutes(h *hub.Hub, cfg config.Config, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, cfg.AllowedOrigins, log))

	// Static client assets.
	r.Handle("/*", http.FileServer(http.Dir(cfg.PublicDir)))

	return r
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
