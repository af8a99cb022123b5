package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/VAshish07243/Chai-Shots/internal/http/response"
	"github.com/VAshish07243/Chai-Shots/internal/services"
)

type LessonHandler struct {
	svc services.LessonService
}

func NewLessonHandler(svc services.LessonService) *LessonHandler {
	return &LessonHandler{svc: svc}
}

// GET /api/cms/lessons/:id
func (h *LessonHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "lesson")
	if !ok {
		return
	}
	lesson, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, lesson)
}

// POST /api/cms/terms/:termId/lessons
func (h *LessonHandler) Create(c *gin.Context) {
	termID, ok := pathID(c, "termId", "term")
	if !ok {
		return
	}
	var req services.CreateLessonInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	lesson, err := h.svc.Create(c.Request.Context(), termID, req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, lesson)
}

// PUT /api/cms/lessons/:id
func (h *LessonHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id", "lesson")
	if !ok {
		return
	}
	var req services.UpdateLessonInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	lesson, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, lesson)
}

// POST /api/cms/lessons/:id/publish
func (h *LessonHandler) Publish(c *gin.Context) {
	id, ok := pathID(c, "id", "lesson")
	if !ok {
		return
	}
	lesson, err := h.svc.Publish(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, lesson)
}

// POST /api/cms/lessons/:id/schedule
// body: { "publishAt": "2026-01-01T10:00:00Z" }
func (h *LessonHandler) Schedule(c *gin.Context) {
	id, ok := pathID(c, "id", "lesson")
	if !ok {
		return
	}
	var req struct {
		PublishAt *time.Time `json:"publishAt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	lesson, err := h.svc.Schedule(c.Request.Context(), id, req.PublishAt)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, lesson)
}

// POST /api/cms/lessons/:id/archive
func (h *LessonHandler) Archive(c *gin.Context) {
	id, ok := pathID(c, "id", "lesson")
	if !ok {
		return
	}
	lesson, err := h.svc.Archive(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, lesson)
}

// POST /api/cms/lessons/:id/assets
func (h *LessonHandler) AddAsset(c *gin.Context) {
	id, ok := pathID(c, "id", "lesson")
	if !ok {
		return
	}
	var req services.AssetInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	asset, err := h.svc.AddAsset(c.Request.Context(), id, req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, asset)
}

// DELETE /api/cms/lessons/:id/assets/:assetId
func (h *LessonHandler) DeleteAsset(c *gin.Context) {
	id, ok := pathID(c, "id", "lesson")
	if !ok {
		return
	}
	assetID, ok := pathID(c, "assetId", "asset")
	if !ok {
		return
	}
	if err := h.svc.DeleteAsset(c.Request.Context(), id, assetID); err != nil {
		response.RespondErr(c, err)
		return
	}
	deleted(c)
}
