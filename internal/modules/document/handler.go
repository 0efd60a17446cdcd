package document

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/korozcolt/archive-master-app-sub004/internal/middleware"
	"github.com/korozcolt/archive-master-app-sub004/internal/pkg/pagination"
	"github.com/korozcolt/archive-master-app-sub004/internal/pkg/response"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/documents", authMW)
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.POST("/:id/versions", h.addVersion)
	g.GET("/:id/versions", h.listVersions)
}

// POST /documents
func (h *Handler) create(c *gin.Context) {
	var in createDocumentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	doc, err := h.svc.Create(c.Request.Context(), middleware.CurrentTenantID(c), in)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, doc)
}

// GET /documents
func (h *Handler) list(c *gin.Context) {
	docs, meta, err := h.svc.List(c.Request.Context(), middleware.CurrentTenantID(c), pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, docs, meta)
}

// GET /documents/:id
func (h *Handler) get(c *gin.Context) {
	doc, err := h.svc.Get(c.Request.Context(), middleware.CurrentTenantID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, errDocumentNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, doc)
}

type addVersionDTO struct {
	Content  string                 `json:"content" binding:"required"`
	Metadata map[string]interface{} `json:"metadata"`
}

// POST /documents/:id/versions
// JSON bodies carry content directly; multipart bodies carry a PDF under
// "file" plus an optional extracted-text "content" field.
func (h *Handler) addVersion(c *gin.Context) {
	tenantID := middleware.CurrentTenantID(c)
	documentID := c.Param("id")

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, err := c.FormFile("file")
		if err != nil {
			response.BadRequest(c, "file is required")
			return
		}
		version, err := h.svc.AddVersionFromPDF(c.Request.Context(), tenantID, documentID, c.PostForm("content"), file)
		if err != nil {
			if errors.Is(err, errDocumentNotFound) {
				response.NotFound(c)
				return
			}
			response.UnprocessableEntity(c, err.Error())
			return
		}
		response.Created(c, version)
		return
	}

	var dto addVersionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	version, err := h.svc.AddVersion(c.Request.Context(), tenantID, documentID, dto.Content, dto.Metadata)
	if err != nil {
		if errors.Is(err, errDocumentNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, version)
}

// GET /documents/:id/versions
func (h *Handler) listVersions(c *gin.Context) {
	versions, err := h.svc.Versions(c.Request.Context(), middleware.CurrentTenantID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, errDocumentNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, versions)
}
