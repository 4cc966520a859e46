// Package httpapi exposes the tone service over JSON/HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mikey/email-tone-analyzer/internal/core"
	"github.com/mikey/email-tone-analyzer/internal/rewrite"
	"go.uber.org/zap"
)

const (
	msgInvalidJSON      = "Invalid JSON in request body."
	msgMissingText      = "Missing 'text' field in the request."
	msgMissingTone      = "Missing 'tone' field in the request."
	msgNotConfigured    = "Remote model API key not configured."
	msgAnalyzeFailed    = "Failed to analyze tone."
	msgRewriteFailed    = "Failed to rewrite email."
	msgSampleLoadFailed = "Failed to analyze sample emails."
)

// Service is the part of the tone service the API serves
type Service interface {
	Analyze(ctx context.Context, text string) (*core.ToneAnalysis, error)
	PlanRewrite(ctx context.Context, text, targetTone string) (*core.RewriteDirective, error)
	Rewrite(ctx context.Context, text, targetTone string) (*core.RewriteResult, error)
	AnalyzerName() string
	RewriterName() string
}

// Handler serves the tone API endpoints
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.GET("/healthz", h.Health)

	api := router.Group("/api")
	{
		api.POST("/analyze", h.Analyze)
		api.POST("/rewrite", h.Rewrite)
		api.POST("/rewrite/plan", h.PlanRewrite)
		api.GET("/models", h.Models)
		api.GET("/samples", h.Samples)
	}
}

type analyzeRequest struct {
	Text string `json:"text"`
}

type rewriteRequest struct {
	Text string `json:"text"`
	Tone string `json:"tone"`
}

type rewriteResponse struct {
	RewrittenText string `json:"rewrittenText"`
}

type errorResponse struct {
	Error          string   `json:"error"`
	SupportedTones []string `json:"supportedTones,omitempty"`
}

// Analyze handles POST /api/analyze
func (h *Handler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidJSON})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: msgMissingText})
		return
	}

	analysis, err := h.service.Analyze(c.Request.Context(), req.Text)
	if err != nil {
		h.writeError(c, err, msgAnalyzeFailed)
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// Rewrite handles POST /api/rewrite
func (h *Handler) Rewrite(c *gin.Context) {
	req, ok := h.bindRewrite(c)
	if !ok {
		return
	}

	result, err := h.service.Rewrite(c.Request.Context(), req.Text, req.Tone)
	if err != nil {
		h.writeError(c, err, msgRewriteFailed)
		return
	}

	c.JSON(http.StatusOK, rewriteResponse{RewrittenText: result.RewrittenText})
}

// PlanRewrite handles POST /api/rewrite/plan
func (h *Handler) PlanRewrite(c *gin.Context) {
	req, ok := h.bindRewrite(c)
	if !ok {
		return
	}

	directive, err := h.service.PlanRewrite(c.Request.Context(), req.Text, req.Tone)
	if err != nil {
		h.writeError(c, err, msgAnalyzeFailed)
		return
	}

	c.JSON(http.StatusOK, directive)
}

func (h *Handler) bindRewrite(c *gin.Context) (rewriteRequest, bool) {
	var req rewriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidJSON})
		return req, false
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: msgMissingText})
		return req, false
	}
	if strings.TrimSpace(req.Tone) == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: msgMissingTone})
		return req, false
	}
	return req, true
}

// Models handles GET /api/models
func (h *Handler) Models(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"models": core.ModelPerformance()})
}

// Samples handles GET /api/samples. With analyze=true every sample carries a fresh analysis.
func (h *Handler) Samples(c *gin.Context) {
	samples := core.SampleEmails()

	analyze, _ := strconv.ParseBool(c.DefaultQuery("analyze", "false"))
	if analyze {
		for i := range samples {
			analysis, err := h.service.Analyze(c.Request.Context(), samples[i].Content)
			if err != nil {
				h.writeError(c, err, msgSampleLoadFailed)
				return
			}
			samples[i].Analysis = analysis
		}
	}

	c.JSON(http.StatusOK, gin.H{"samples": samples})
}

// Health handles GET /healthz
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"analyzer":       h.service.AnalyzerName(),
		"rewriter":       h.service.RewriterName(),
		"supportedTones": rewrite.SupportedTones(),
	})
}

// writeError maps the error taxonomy onto status codes. Upstream and
// internal failures are reported generically; the cause is only logged.
func (h *Handler) writeError(c *gin.Context, err error, failure string) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, core.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse{Error: invalidInputMessage(err)})
	case errors.Is(err, core.ErrUnsupportedTone):
		c.JSON(http.StatusBadRequest, errorResponse{
			Error:          "Unsupported tone.",
			SupportedTones: rewrite.SupportedTones(),
		})
	case errors.Is(err, core.ErrConfiguration):
		c.JSON(http.StatusInternalServerError, errorResponse{Error: msgNotConfigured})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, errorResponse{Error: failure})
	default:
		h.logger.Error("Request failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("kind", core.ErrorKind(err)),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: failure})
	}
}

func invalidInputMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}
	return fmt.Sprintf("Invalid request: %s.", strings.TrimSuffix(msg, "."))
}
