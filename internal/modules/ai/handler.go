package ai

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/korozcolt/archive-master-app-sub004/internal/middleware"
	"github.com/korozcolt/archive-master-app-sub004/internal/pkg/pagination"
	"github.com/korozcolt/archive-master-app-sub004/internal/pkg/response"
)

var outputMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, rateMW gin.HandlerFunc) {
	g := rg.Group("/ai", authMW)

	runs := g.Group("/runs")
	runs.POST("", rateMW, h.createRun)
	runs.GET("", h.listRuns)
	runs.GET("/:id", h.getRun)
	runs.POST("/:id/retry", rateMW, h.retryRun)

	g.GET("/outputs/run/:id", h.getOutput)
	g.POST("/test", rateMW, h.testProvider)
}

// POST /ai/runs
func (h *Handler) createRun(c *gin.Context) {
	var dto createRunDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	run, err := h.svc.CreateRun(c.Request.Context(),
		middleware.CurrentTenantID(c), middleware.CurrentUserID(c),
		dto.DocumentVersionID, dto.Task)
	if err != nil {
		switch {
		case errors.Is(err, errUnknownTask):
			response.BadRequest(c, err.Error())
		case errors.Is(err, errVersionNotFound):
			response.NotFoundMsg(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Accepted(c, run)
}

// GET /ai/runs?status=&task=&document_id=&page=&size=
func (h *Handler) listRuns(c *gin.Context) {
	runs, meta, err := h.svc.ListRuns(c.Request.Context(),
		middleware.CurrentTenantID(c),
		c.Query("status"), c.Query("task"), c.Query("document_id"),
		pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, runs, meta)
}

// GET /ai/runs/:id
func (h *Handler) getRun(c *gin.Context) {
	run, err := h.svc.GetRun(c.Request.Context(), middleware.CurrentTenantID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, errRunNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, run)
}

// POST /ai/runs/:id/retry
func (h *Handler) retryRun(c *gin.Context) {
	run, err := h.svc.RetryRun(c.Request.Context(),
		middleware.CurrentTenantID(c), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, errRunNotFound):
			response.NotFound(c)
		case errors.Is(err, errRunNotRetryable):
			response.Conflict(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Accepted(c, run)
}

// GET /ai/outputs/run/:id?format=html
func (h *Handler) getOutput(c *gin.Context) {
	out, err := h.svc.OutputByRun(c.Request.Context(), middleware.CurrentTenantID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, errRunNotFound) || errors.Is(err, errOutputNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}

	if c.Query("format") == "html" {
		var buf bytes.Buffer
		if err := outputMarkdown.Convert([]byte(out.SummaryMarkdown), &buf); err != nil {
			response.InternalError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
		return
	}
	response.OK(c, out)
}

// POST /ai/test
func (h *Handler) testProvider(c *gin.Context) {
	var dto testProviderDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if dto.SampleText == "" {
		dto.SampleText = "The quick brown fox jumps over the lazy dog."
	}

	result, err := h.svc.TestProvider(c.Request.Context(), middleware.CurrentTenantID(c), dto.SampleText)
	if err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary_markdown": result.SummaryMarkdown,
		"tokens_in":        result.TokensIn,
		"tokens_out":       result.TokensOut,
		"cost_cents":       result.CostCents,
	})
}
