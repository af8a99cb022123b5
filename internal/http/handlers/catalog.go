package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/VAshish07243/Chai-Shots/internal/http/response"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/apierr"
	"github.com/VAshish07243/Chai-Shots/internal/services"
)

const catalogCacheControl = "public, max-age=300"

type CatalogHandler struct {
	svc services.CatalogService
}

func NewCatalogHandler(svc services.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// GET /catalog/programs?language=&topic=&cursor=&limit=
func (h *CatalogHandler) ListPrograms(c *gin.Context) {
	q := services.CatalogQuery{
		Language: strings.TrimSpace(c.Query("language")),
		Topic:    strings.TrimSpace(c.Query("topic")),
	}
	if raw := strings.TrimSpace(c.Query("cursor")); raw != "" {
		cursor, err := uuid.Parse(raw)
		if err != nil {
			response.RespondErr(c, apierr.Validation("invalid cursor"))
			return
		}
		q.Cursor = &cursor
	}
	// A limit that is not a number falls back to the default page size.
	if n, err := strconv.Atoi(c.Query("limit")); err == nil {
		q.Limit = n
	}
	page, err := h.svc.ListPrograms(c.Request.Context(), q)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.Header("Cache-Control", catalogCacheControl)
	response.RespondOK(c, page)
}

// GET /catalog/programs/:id
func (h *CatalogHandler) GetProgram(c *gin.Context) {
	id, ok := pathID(c, "id", "program")
	if !ok {
		return
	}
	p, err := h.svc.GetProgram(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.Header("Cache-Control", catalogCacheControl)
	response.RespondOK(c, p)
}

// GET /catalog/lessons/:id
func (h *CatalogHandler) GetLesson(c *gin.Context) {
	id, ok := pathID(c, "id", "lesson")
	if !ok {
		return
	}
	l, err := h.svc.GetLesson(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.Header("Cache-Control", catalogCacheControl)
	response.RespondOK(c, l)
}
