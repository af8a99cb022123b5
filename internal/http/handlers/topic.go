package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/VAshish07243/Chai-Shots/internal/http/response"
	"github.com/VAshish07243/Chai-Shots/internal/services"
)

type TopicHandler struct {
	svc services.TopicService
}

func NewTopicHandler(svc services.TopicService) *TopicHandler {
	return &TopicHandler{svc: svc}
}

// GET /api/cms/topics
func (h *TopicHandler) List(c *gin.Context) {
	topics, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, topics)
}

// POST /api/cms/topics
// body: { "name": "..." }
func (h *TopicHandler) Create(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	topic, err := h.svc.Create(c.Request.Context(), req.Name)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, topic)
}
