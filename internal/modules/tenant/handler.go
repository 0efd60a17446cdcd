package tenant

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/korozcolt/archive-master-app-sub004/internal/middleware"
	"github.com/korozcolt/archive-master-app-sub004/internal/pkg/response"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/tenants", authMW)
	g.GET("/:id", h.get)
	g.GET("/:id/ai-settings", h.getAiSettings)
	g.PUT("/:id/ai-settings", h.putAiSettings)
}

// requireOwnTenant rejects requests for any tenant other than the caller's.
func requireOwnTenant(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if id != middleware.CurrentTenantID(c) {
		response.Forbidden(c)
		return "", false
	}
	return id, true
}

// GET /tenants/:id
func (h *Handler) get(c *gin.Context) {
	id, ok := requireOwnTenant(c)
	if !ok {
		return
	}
	t, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, errTenantNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, t)
}

// GET /tenants/:id/ai-settings
func (h *Handler) getAiSettings(c *gin.Context) {
	id, ok := requireOwnTenant(c)
	if !ok {
		return
	}
	view, err := h.svc.AiSettings(c.Request.Context(), id)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, view)
}

// PUT /tenants/:id/ai-settings
func (h *Handler) putAiSettings(c *gin.Context) {
	id, ok := requireOwnTenant(c)
	if !ok {
		return
	}
	var in aiSettingsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	view, err := h.svc.UpsertAiSettings(c.Request.Context(), id, in)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, view)
}
