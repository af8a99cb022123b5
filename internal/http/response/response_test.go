package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/VAshish07243/Chai-Shots/internal/pkg/apierr"
)

func respond(t *testing.T, err error) (*httptest.ResponseRecorder, ErrorEnvelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	RespondErr(c, err)
	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestRespondErrUsesAPIErrorStatus(t *testing.T) {
	rec, env := respond(t, apierr.New(http.StatusBadRequest, apierr.CodeMissingRequiredAssets, errors.New("thumbnails missing")))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, apierr.CodeMissingRequiredAssets, env.Error.Code)
	require.Equal(t, "thumbnails missing", env.Error.Message)
}

func TestRespondErrHidesInternalCause(t *testing.T) {
	rec, env := respond(t, errors.New("pq: connection refused"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, apierr.CodeInternal, env.Error.Code)
	require.NotContains(t, env.Error.Message, "connection refused")
}

func TestRespondErrNotFound(t *testing.T) {
	rec, env := respond(t, apierr.NotFound("lesson"))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Lesson not found", env.Error.Message)
}
