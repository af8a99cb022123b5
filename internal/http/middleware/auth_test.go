package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/VAshish07243/Chai-Shots/internal/domain/user"
	"github.com/VAshish07243/Chai-Shots/internal/http/response"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/ctxutil"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/logger"
)

type fakeTokens map[string]*ctxutil.RequestData

func (f fakeTokens) ParseToken(_ context.Context, token string) (*ctxutil.RequestData, error) {
	rd, ok := f[token]
	if !ok {
		return nil, errors.New("bad token")
	}
	return rd, nil
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	am := NewAuthMiddleware(logger.NewNop(), fakeTokens{
		"admin":  {UserID: uuid.New(), Role: "admin"},
		"viewer": {UserID: uuid.New(), Role: "viewer"},
	})
	r := gin.New()
	r.GET("/write", am.RequireAuth(), am.RequireRole(user.RoleAdmin, user.RoleEditor), func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"role": rd.Role})
	})
	return r
}

func call(r http.Handler, header string) (*httptest.ResponseRecorder, response.ErrorEnvelope) {
	req := httptest.NewRequest(http.MethodGet, "/write", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var env response.ErrorEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func TestRequireAuthAndRole(t *testing.T) {
	r := newAuthRouter()

	cases := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"missing token", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"not bearer", "Basic abc", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"invalid token", "Bearer nope", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"wrong role", "Bearer viewer", http.StatusForbidden, "FORBIDDEN"},
		{"allowed", "bearer admin", http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, env := call(r, tc.header)
			require.Equal(t, tc.status, rec.Code)
			require.Equal(t, tc.code, env.Error.Code)
		})
	}
}
