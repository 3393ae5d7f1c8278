package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sipsyai/agentflow/internal/adapters/repository/memory"
	"github.com/sipsyai/agentflow/internal/app/dto"
	"github.com/sipsyai/agentflow/internal/app/usecases"
	"github.com/sipsyai/agentflow/internal/core/flow"
	"github.com/sipsyai/agentflow/internal/core/graph"
	"github.com/sipsyai/agentflow/pkg/validation"
)

func newRouter(executor *usecases.FlowExecutor, flows usecases.FlowRepository, content *memory.ContentStore, logger *slog.Logger) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "AgentFlow server is running. See /healthz, /metrics, /debug/vars, /debug/pprof/")
	})
	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/metrics", gin.WrapF(promMetricsHandler))
	// expvar and pprof register on the default mux.
	router.Any("/debug/*any", gin.WrapH(http.DefaultServeMux))

	api := router.Group("/api")
	h := &apiHandlers{executor: executor, flows: flows, content: content}

	api.POST("/flows", h.saveFlow)
	api.GET("/flows", h.listFlows)
	api.GET("/flows/:id", h.getFlow)
	api.DELETE("/flows/:id", h.deleteFlow)
	api.GET("/flows/:id/graph", h.flowGraph)
	api.POST("/flows/:id/execute", h.executeFlow)

	api.GET("/executions", h.listExecutions)
	api.GET("/executions/:id", h.executionStatus)
	api.POST("/executions/:id/cancel", h.cancelExecution)

	api.POST("/graph/layout", h.layoutGraph)
	api.POST("/graph/chain", h.graphToChain)
	api.POST("/graph/connections/validate", h.validateConnection)

	api.POST("/agents", h.putAgent)
	api.POST("/skills", h.putSkill)

	return router
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
		)
	}
}

type apiHandlers struct {
	executor *usecases.FlowExecutor
	flows    usecases.FlowRepository
	content  *memory.ContentStore
}

func (h *apiHandlers) saveFlow(c *gin.Context) {
	var f flow.Flow
	if err := c.ShouldBindJSON(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.flows.Save(c.Request.Context(), &f); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *apiHandlers) listFlows(c *gin.Context) {
	list, err := h.flows.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"flows": list})
}

func (h *apiHandlers) getFlow(c *gin.Context) {
	f, err := h.flows.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *apiHandlers) deleteFlow(c *gin.Context) {
	if err := h.flows.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// flowGraph returns the editor representation of a stored flow.
func (h *apiHandlers) flowGraph(c *gin.Context) {
	f, err := h.flows.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	nodes, edges := graph.ToGraph(f)
	c.JSON(http.StatusOK, gin.H{"nodes": nodes, "edges": edges})
}

type executeBody struct {
	Input       map[string]any `json:"input"`
	TriggeredBy string         `json:"triggeredBy"`
	TriggerData map[string]any `json:"triggerData"`
}

// executeFlow runs a flow. With ?stream=true the response is an SSE
// stream of status events followed by one result or error event.
func (h *apiHandlers) executeFlow(c *gin.Context) {
	var body executeBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req := &dto.ExecutionRequest{
		FlowID:      c.Param("id"),
		Input:       body.Input,
		TriggeredBy: body.TriggeredBy,
		TriggerData: body.TriggerData,
	}

	if c.Query("stream") == "true" {
		events, err := h.executor.ExecuteStream(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Stream(func(w io.Writer) bool {
			ev, ok := <-events
			if !ok {
				return false
			}
			c.SSEvent(string(ev.Type), ev)
			return true
		})
		return
	}

	result, err := h.executor.Execute(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *apiHandlers) listExecutions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"running": h.executor.Running()})
}

func (h *apiHandlers) executionStatus(c *gin.Context) {
	status, err := h.executor.Status(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *apiHandlers) cancelExecution(c *gin.Context) {
	if err := h.executor.Cancel(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": c.Param("id")})
}

type graphBody struct {
	Nodes []graph.Node `json:"nodes"`
	Edges []graph.Edge `json:"edges"`
}

func (h *apiHandlers) layoutGraph(c *gin.Context) {
	var body graphBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"nodes": graph.AutoLayout(body.Nodes, body.Edges)})
}

func (h *apiHandlers) graphToChain(c *gin.Context) {
	var body graphBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"nodes": graph.ToChain(body.Nodes, body.Edges)})
}

type connectionBody struct {
	Edge  graph.Edge   `json:"edge"`
	Nodes []graph.Node `json:"nodes"`
	Edges []graph.Edge `json:"edges"`
}

func (h *apiHandlers) validateConnection(c *gin.Context) {
	var body connectionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, validation.ValidateConnection(body.Edge, body.Nodes, body.Edges))
}

func (h *apiHandlers) putAgent(c *gin.Context) {
	var a usecases.Agent
	if err := c.ShouldBindJSON(&a); err != nil || a.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "agent with id required"})
		return
	}
	h.content.PutAgent(a)
	c.JSON(http.StatusOK, a)
}

func (h *apiHandlers) putSkill(c *gin.Context) {
	var s usecases.Skill
	if err := c.ShouldBindJSON(&s); err != nil || s.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "skill with id required"})
		return
	}
	h.content.PutSkill(s)
	c.JSON(http.StatusOK, s)
}

// respondError maps domain errors onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	var nf *dto.NotFoundError
	switch {
	case errors.Is(err, flow.ErrFlowNotFound), errors.Is(err, dto.ErrExecutionNotFound), errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, dto.ErrMissingFlowID), errors.Is(err, flow.ErrNoEntryPoint):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("internal error: %v", err)})
	}
}
