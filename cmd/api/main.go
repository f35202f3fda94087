// main.go
package main

import (
	"log"

	"github.com/drewmudry/slideshorts/internal/platform"
	"github.com/drewmudry/slideshorts/videos"
	"github.com/drewmudry/slideshorts/worker"
	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
)

type Server struct {
	Config    platform.Config
	Processor *worker.Processor
	Router    *gin.Engine
	Logger    hclog.Logger
}

func NewServer() (*Server, error) {
	cfg, err := platform.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger := platform.NewLogger("api", cfg.LogLevel)

	if err := cfg.EnsureStoreDir(); err != nil {
		return nil, err
	}

	var publisher worker.Publisher
	if cfg.RedisURL != "" {
		rdb, err := platform.NewRedisClient(cfg.RedisURL, logger.Named("redis"))
		if err != nil {
			return nil, err
		}
		publisher = worker.NewRedisPublisher(rdb)
	}

	router := gin.Default()

	// CORS for the frontend
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", cfg.FrontendURL)
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	server := &Server{
		Config:    cfg,
		Processor: platform.NewProcessor(cfg, logger, publisher),
		Router:    router,
		Logger:    logger,
	}
	server.setupRoutes()

	return server, nil
}

func (s *Server) setupRoutes() {
	handler := videos.NewHandler(s.Processor, s.Config.StoreDir)
	videos.RegisterRoutes(s.Router, handler)
}

func (s *Server) Run() error {
	s.Logger.Info("server starting", "port", s.Config.Port, "store_dir", s.Config.StoreDir)
	return s.Router.Run(":" + s.Config.Port)
}

func main() {
	server, err := NewServer()
	if err != nil {
		log.Fatal("Failed to create server:", err)
	}

	if err := server.Run(); err != nil {
		log.Fatal("Failed to run server:", err)
	}
}
