package handlers

import (
	"github.com/gin-gonic/gin"

	contentrepo "github.com/VAshish07243/Chai-Shots/internal/data/repos/content"
	"github.com/VAshish07243/Chai-Shots/internal/domain/content"
	"github.com/VAshish07243/Chai-Shots/internal/http/response"
	"github.com/VAshish07243/Chai-Shots/internal/services"
)

type ProgramHandler struct {
	programs services.ProgramService
	terms    services.TermService
}

func NewProgramHandler(programs services.ProgramService, terms services.TermService) *ProgramHandler {
	return &ProgramHandler{programs: programs, terms: terms}
}

// GET /api/cms/programs?status=&language=&topic=
func (h *ProgramHandler) List(c *gin.Context) {
	rows, err := h.programs.List(c.Request.Context(), contentrepo.ProgramFilter{
		Status:   content.ProgramStatus(c.Query("status")),
		Language: c.Query("language"),
		Topic:    c.Query("topic"),
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, rows)
}

// GET /api/cms/programs/:id
func (h *ProgramHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "program")
	if !ok {
		return
	}
	p, err := h.programs.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, p)
}

// POST /api/cms/programs
func (h *ProgramHandler) Create(c *gin.Context) {
	var req services.CreateProgramInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	p, err := h.programs.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, p)
}

// PUT /api/cms/programs/:id
func (h *ProgramHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id", "program")
	if !ok {
		return
	}
	var req services.UpdateProgramInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	p, err := h.programs.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, p)
}

// POST /api/cms/programs/:id/assets
func (h *ProgramHandler) AddAsset(c *gin.Context) {
	id, ok := pathID(c, "id", "program")
	if !ok {
		return
	}
	var req services.AssetInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	asset, err := h.programs.AddAsset(c.Request.Context(), id, req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, asset)
}

// DELETE /api/cms/programs/:id/assets/:assetId
func (h *ProgramHandler) DeleteAsset(c *gin.Context) {
	id, ok := pathID(c, "id", "program")
	if !ok {
		return
	}
	assetID, ok := pathID(c, "assetId", "asset")
	if !ok {
		return
	}
	if err := h.programs.DeleteAsset(c.Request.Context(), id, assetID); err != nil {
		response.RespondErr(c, err)
		return
	}
	deleted(c)
}

// POST /api/cms/programs/:id/terms
func (h *ProgramHandler) CreateTerm(c *gin.Context) {
	id, ok := pathID(c, "id", "program")
	if !ok {
		return
	}
	var req services.CreateTermInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	term, err := h.terms.Create(c.Request.Context(), id, req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, term)
}
