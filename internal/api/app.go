package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"

	"github.com/pixelgrove/metaverse/internal/config"
	"github.com/pixelgrove/metaverse/internal/database"
	"github.com/pixelgrove/metaverse/internal/registry"
	"github.com/pixelgrove/metaverse/internal/server"
	"github.com/pixelgrove/metaverse/internal/stats"
)

type MetaverseApp struct {
	log            *log.Logger
	mux            *http.Server
	gs             *server.GameServer
	registry       *registry.Registry
	eventLog       database.EventLogRepository
	stats          stats.StatsProvider
	allowedOrigins []string
}

func NewMetaverseApp(mux *http.ServeMux, logger *log.Logger, gs *server.GameServer, reg *registry.Registry, eventLog database.EventLogRepository, su stats.StatsProvider, cfg *config.Config) *MetaverseApp {
	s := &MetaverseApp{
		log:            logger,
		gs:             gs,
		registry:       reg,
		eventLog:       eventLog,
		stats:          su,
		allowedOrigins: cfg.AllowedOrigins,
	}

	mux.HandleFunc("GET /healthz", s.healthCheck)
	mux.HandleFunc("GET /api/rooms", s.listRooms)
	mux.HandleFunc("POST /api/rooms", s.createRoom)
	mux.HandleFunc("GET /api/rooms/messages", s.getRoomMessages)
	mux.HandleFunc("GET /api/logs/chat", s.getChatLogs)
	mux.HandleFunc("GET /ws", s.serveWs)

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *MetaverseApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *MetaverseApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
