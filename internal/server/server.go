package server

import (
	"munchkin-tracker/internal/config"
	"munchkin-tracker/internal/realtime"
	"munchkin-tracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Server is the presentation-facing boundary: it forwards intents to the
// services and exposes read snapshots. No game rule lives here.
type Server struct {
	sessionSvc *service.SessionService
	rosterSvc  *service.RosterService
	historySvc *service.HistoryService
	statsSvc   *service.StatsService
	hub        *realtime.Hub
	cfg        *config.Config
	logger     zerolog.Logger
}

func NewServer(
	sessionSvc *service.SessionService,
	rosterSvc *service.RosterService,
	historySvc *service.HistoryService,
	statsSvc *service.StatsService,
	hub *realtime.Hub,
	cfg *config.Config,
	logger zerolog.Logger,
) *Server {
	return &Server{
		sessionSvc: sessionSvc,
		rosterSvc:  rosterSvc,
		historySvc: historySvc,
		statsSvc:   statsSvc,
		hub:        hub,
		cfg:        cfg,
		logger:     logger,
	}
}

func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api/v1")
	{
		api.POST("/auth/login", s.login)

		api.GET("/roster", s.listRoster)
		api.POST("/roster", s.addRosterName)
		api.DELETE("/roster/:name", s.removeRosterName)

		api.GET("/session", s.sessionSnapshot)
		api.GET("/session/qr", s.sessionQR)
		api.POST("/session/join", s.join)
		api.POST("/session/leave", s.leave)
		api.POST("/session/start", s.start)
		api.POST("/session/level", s.level)
		api.POST("/session/round", s.addRound)
		api.POST("/session/target", s.setTarget)
		api.POST("/session/end", s.end)

		api.GET("/history", s.listHistory)
		api.POST("/history/archive", s.importArchive)
		api.DELETE("/history/:id", s.deleteHistory)

		api.GET("/stats", s.statsOverview)
	}

	r.GET("/ws", func(c *gin.Context) {
		s.hub.Serve(c.Writer, c.Request)
	})

	return r
}
