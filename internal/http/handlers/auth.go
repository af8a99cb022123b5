package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/VAshish07243/Chai-Shots/internal/domain/user"
	"github.com/VAshish07243/Chai-Shots/internal/http/response"
	"github.com/VAshish07243/Chai-Shots/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type userView struct {
	ID    string    `json:"id"`
	Email string    `json:"email"`
	Role  user.Role `json:"role"`
}

func viewUser(u *user.User) userView {
	return userView{ID: u.ID.String(), Email: u.Email, Role: u.Role}
}

// POST /api/auth/login
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	token, u, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"token": token, "user": viewUser(u)})
}

// GET /api/auth/me
func (ah *AuthHandler) Me(c *gin.Context) {
	u, err := ah.authService.Me(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, viewUser(u))
}
