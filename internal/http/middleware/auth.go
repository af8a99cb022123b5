package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/VAshish07243/Chai-Shots/internal/domain/user"
	"github.com/VAshish07243/Chai-Shots/internal/http/response"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/apierr"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/ctxutil"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/logger"
)

// TokenParser is the part of services.AuthService the middleware needs.
type TokenParser interface {
	ParseToken(ctx context.Context, tokenString string) (*ctxutil.RequestData, error)
}

type AuthMiddleware struct {
	log    *logger.Logger
	tokens TokenParser
}

func NewAuthMiddleware(log *logger.Logger, tokens TokenParser) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), tokens: tokens}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearer(c)
		if tokenString == "" {
			response.RespondError(c, http.StatusUnauthorized, apierr.CodeUnauthorized, errors.New("No token provided"))
			return
		}
		rd, err := am.tokens.ParseToken(c.Request.Context(), tokenString)
		if err != nil || rd == nil || rd.UserID == uuid.Nil {
			am.log.Debug("rejected bearer token", "path", c.FullPath(), "error", err)
			response.RespondError(c, http.StatusUnauthorized, apierr.CodeUnauthorized, errors.New("Invalid token"))
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func (am *AuthMiddleware) RequireRole(roles ...user.Role) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[string(r)] = struct{}{}
	}
	return func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		if rd == nil {
			response.RespondError(c, http.StatusUnauthorized, apierr.CodeUnauthorized, errors.New("No token provided"))
			return
		}
		if _, ok := allowed[rd.Role]; !ok {
			response.RespondError(c, http.StatusForbidden, apierr.CodeForbidden, errors.New("Insufficient permissions"))
			return
		}
		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
