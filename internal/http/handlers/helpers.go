package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/VAshish07243/Chai-Shots/internal/http/response"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/apierr"
)

// pathID parses the named route parameter, writing a 400 when it is not a UUID.
func pathID(c *gin.Context, param, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, apierr.Validation("invalid %s id", what))
		return uuid.Nil, false
	}
	return id, true
}

func deleted(c *gin.Context) {
	response.RespondOK(c, gin.H{"success": true})
}
