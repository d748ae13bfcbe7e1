package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/knwl-ai/knwld/internal/jobs"
	"github.com/knwl-ai/knwld/internal/service"
)

// handleNodeCount handles GET /node_count.
func (s *Server) handleNodeCount(c *gin.Context) {
	count, err := s.svc.NodeCount(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, CountResponse{Namespace: s.svc.Namespace(), Count: count})
}

// handleEdgeCount handles GET /edge_count.
func (s *Server) handleEdgeCount(c *gin.Context) {
	count, err := s.svc.EdgeCount(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, CountResponse{Namespace: s.svc.Namespace(), Count: count})
}

// handleNamespace handles GET /namespace.
func (s *Server) handleNamespace(c *gin.Context) {
	c.JSON(http.StatusOK, NamespaceResponse{Namespace: s.svc.Namespace()})
}

// handleGetNode handles GET /node/:id.
func (s *Server) handleGetNode(c *gin.Context) {
	node, err := s.svc.GetNodeByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

// handleDeleteNode handles DELETE /node/:id.
func (s *Server) handleDeleteNode(c *gin.Context) {
	result, err := s.svc.DeleteNodeByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleIngest handles POST /ingest. The ingestion runs in the
// background; the response carries the job id to poll.
func (s *Server) handleIngest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}

	jobID, err := s.svc.AddJob(c.Request.Context(), jobs.TypeIngest, service.JobRequest{
		Text:        req.Text,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, JobResponse{JobID: jobID, Message: "Ingestion job started successfully"})
}

// handleAddFact handles POST /fact.
func (s *Server) handleAddFact(c *gin.Context) {
	var req FactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}

	jobID, err := s.svc.AddJob(c.Request.Context(), jobs.TypeFact, service.JobRequest{
		Name:    req.Name,
		Content: req.Content,
		Type:    req.Type,
		ID:      req.ID,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, JobResponse{JobID: jobID, Message: "Fact job started successfully"})
}

// handleJobStatus handles GET /job/:id.
func (s *Server) handleJobStatus(c *gin.Context) {
	status, err := s.svc.GetJobStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// handleAsk handles POST /ask.
func (s *Server) handleAsk(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}

	answer, err := s.svc.AskQuestion(c.Request.Context(), req.Question, req.Strategy)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

// handleAugment handles POST /augment.
func (s *Server) handleAugment(c *gin.Context) {
	var req AugmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}

	context, err := s.svc.Augment(c.Request.Context(), req.Text, req.Strategy)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, context)
}

// handleInfo handles GET / and GET /info. The body is a bare JSON
// string banner, which some clients read to identify the API.
func (s *Server) handleInfo(c *gin.Context) {
	c.JSON(http.StatusOK, "Knwl API v"+s.version)
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: s.version})
}

// handleStats handles GET /stats.
func (s *Server) handleStats(c *gin.Context) {
	if s.stats == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "stats collection disabled"})
		return
	}
	c.JSON(http.StatusOK, s.stats.Snapshot())
}

// writeError maps service errors to HTTP status codes.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case service.IsValidation(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	default:
		s.logger.Error("request error", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}
