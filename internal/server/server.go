package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"traderelay/config"
	"traderelay/internal/service"
	"traderelay/utils"
)

type Server struct {
	engine  *gin.Engine
	service *service.Service
	config  *config.Config
	logger  *utils.Logger
}

func NewServer(svc *service.Service, cfg *config.Config, logger *utils.Logger) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.Default())

	s := &Server{
		engine:  engine,
		service: svc,
		config:  cfg,
		logger:  logger,
	}

	engine.GET("/health", s.Health)
	engine.POST("/tv-webhook", s.HandleAlert)

	admin := engine.Group("/admin", s.AdminMiddleware())
	admin.POST("/create-user", s.CreateUser)
	admin.POST("/set-paid-until", s.SetPaidUntil)
	admin.POST("/disable-user", s.DisableUser)
	admin.GET("/user", s.GetUser)

	return s
}

func (s *Server) Run() error {
	s.logger.Infof("HTTP server listening on %s", s.config.HTTPAddr)
	return s.engine.Run(s.config.HTTPAddr)
}

// Engine exposes the router for httptest.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) Health(c *gin.Context) {
	stats, err := s.service.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "stats unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "users": stats.Users, "proposals": stats.Proposals})
}
