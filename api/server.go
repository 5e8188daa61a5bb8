// Package api exposes the research pipeline over HTTP: REST endpoints for
// starting and inspecting runs, and a websocket stream for live progress.
package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"niche-research/models"
	"niche-research/progress"
	"niche-research/services"
	"niche-research/storage"
	"niche-research/utils"
)

// Server wires the orchestrator and run store behind a gin router.
type Server struct {
	engine   *gin.Engine
	orch     *services.Orchestrator
	reader   storage.RunReader
	hub      *progress.Hub
	insights *services.InsightService
	logger   *utils.Logger
}

// NewServer builds the router. Call Run to start serving.
func NewServer(
	orch *services.Orchestrator,
	reader storage.RunReader,
	hub *progress.Hub,
	insights *services.InsightService,
	logger *utils.Logger,
) *Server {
	s := &Server{
		orch:     orch,
		reader:   reader,
		hub:      hub,
		insights: insights,
		logger:   logger,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/api/health", s.health)

	research := r.Group("/api/research")
	{
		research.POST("/start", s.startRun)
		research.GET("/runs", s.listRuns)
		research.GET("/runs/:id", s.getRun)
		research.GET("/runs/:id/products", s.runProducts)
		research.GET("/top-niches", s.topNiches)
	}

	r.GET("/ws/research/:id", s.streamProgress)

	s.engine = r
	return s
}

// Run blocks serving HTTP on addr.
func (s *Server) Run(addr string) error {
	s.logger.Info("[api] Listening on %s", addr)
	return s.engine.Run(addr)
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type startRequest struct {
	Niche string `json:"niche"`
}

func (s *Server) startRun(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.Niche = strings.TrimSpace(req.Niche)
	if req.Niche == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "niche is required"})
		return
	}

	run, err := s.orch.StartRun(c.Request.Context(), req.Niche)
	if err != nil {
		s.logger.Error("[api] start run failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start run"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"run_id": run.ID,
		"niche":  run.Niche,
		"status": run.Status,
	})
}

func (s *Server) listRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	runs, err := s.reader.ListRuns(limit)
	if err != nil {
		s.logger.Error("[api] list runs failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if runs == nil {
		runs = []*models.ResearchRun{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

func (s *Server) getRun(c *gin.Context) {
	id := c.Param("id")

	run, err := s.reader.GetRun(id)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	if err != nil {
		s.logger.Error("[api] get run %s failed: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	listings, err := s.reader.ListingsForRun(id)
	if err != nil {
		s.logger.Error("[api] listings for run %s failed: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if listings == nil {
		listings = []*models.ScoredListing{}
	}

	c.JSON(http.StatusOK, gin.H{"run": run, "products": listings})
}

func (s *Server) runProducts(c *gin.Context) {
	id := c.Param("id")

	if _, err := s.reader.GetRun(id); errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	} else if err != nil {
		s.logger.Error("[api] get run %s failed: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	listings, err := s.reader.ListingsForRun(id)
	if err != nil {
		s.logger.Error("[api] listings for run %s failed: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if listings == nil {
		listings = []*models.ScoredListing{}
	}
	c.JSON(http.StatusOK, gin.H{"products": listings, "count": len(listings)})
}

func (s *Server) topNiches(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	runs, err := s.reader.ListRuns(0)
	if err != nil {
		s.logger.Error("[api] list runs failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	top := s.insights.TopNiches(runs, limit)
	if top == nil {
		top = []services.NicheCount{}
	}
	c.JSON(http.StatusOK, gin.H{"niches": top})
}
