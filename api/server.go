package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"humboard/config"
	"humboard/service"

	"github.com/gin-gonic/gin"
)

// Server wraps the HTTP surface over the platform services
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
}

// NewServer builds the router and wires every priced action to its service
func NewServer(cfg *config.Config, users service.UserService, questions service.QuestionService, answers service.AnswerService, votes service.VoteService, adoptions service.AdoptionService) *Server {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger())

	h := &handler{
		users:     users,
		questions: questions,
		answers:   answers,
		votes:     votes,
		adoptions: adoptions,
	}

	router.GET("/", h.root)
	router.GET("/healthz", h.health)

	router.GET("/users", h.listUsers)
	router.POST("/users", h.registerUser)
	router.GET("/users/:id/transactions", h.userTransactions)

	router.GET("/questions/:id", h.getQuestion)
	router.POST("/questions", h.askQuestion)
	router.POST("/questions/:id/adopt", h.adoptAnswer)
	router.POST("/questions/:id/view", h.viewQuestion)

	router.POST("/answers", h.postAnswer)
	router.POST("/answers/:id/votes", h.castVote)

	return &Server{
		router: router,
		httpServer: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start begins serving; blocks until the server stops
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the gin engine for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}
