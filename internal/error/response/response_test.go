package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guardian-http-service/internal/error/code"
)

func performRequest(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/t", handler)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSuccessEnvelope(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Success(c, gin.H{"accepted": true})
	})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, code.ErrSuccess, resp.Code)
	assert.Equal(t, "成功", resp.Message)
	assert.NotNil(t, resp.Data)
}

func TestFailMapsHTTPStatus(t *testing.T) {
	tests := []struct {
		name       string
		errorCode  int
		httpStatus int
	}{
		{"store unavailable is 503", code.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{"guard not found is 404", code.ErrGuardNotFound, http.StatusNotFound},
		{"shift conflict is 409", code.ErrShiftAlreadyExist, http.StatusConflict},
		{"token invalid is 401", code.ErrTokenInvalid, http.StatusUnauthorized},
		{"unknown code falls back to 500", 999999, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(func(c *gin.Context) {
				Fail(c, tt.errorCode, nil)
			})
			assert.Equal(t, tt.httpStatus, w.Code)
			assert.Equal(t, tt.errorCode, decode(t, w).Code)
		})
	}
}

func TestFailWithMessageOverridesText(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		FailWithMessage(c, code.ErrGuardNotConfigured, "自定义提示", nil)
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.Equal(t, code.ErrGuardNotConfigured, resp.Code)
	assert.Equal(t, "自定义提示", resp.Message)
}
