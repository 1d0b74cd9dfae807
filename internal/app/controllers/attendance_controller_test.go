package controllers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindClockRequest(t *testing.T, body string) (*ClockRequest, error) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/api/attendance/clock", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var req ClockRequest
	err := c.ShouldBindJSON(&req)
	return &req, err
}

func TestClockRequestBindingZeroCoordinate(t *testing.T) {
	// 0是赤道/本初子午线上的合法坐标，不能当作缺字段拒掉
	req, err := bindClockRequest(t, `{"latitude":0,"longitude":6.6}`)
	require.NoError(t, err)
	require.NotNil(t, req.Latitude)
	require.NotNil(t, req.Longitude)
	assert.Equal(t, 0.0, *req.Latitude)
	assert.Equal(t, 6.6, *req.Longitude)

	// 两个坐标都为0同样合法
	req, err = bindClockRequest(t, `{"latitude":0,"longitude":0}`)
	require.NoError(t, err)
	assert.Equal(t, 0.0, *req.Latitude)
	assert.Equal(t, 0.0, *req.Longitude)
}

func TestClockRequestBindingMissingField(t *testing.T) {
	// 真正缺字段仍然绑定失败
	_, err := bindClockRequest(t, `{"latitude":31.230416}`)
	assert.Error(t, err)

	_, err = bindClockRequest(t, `{}`)
	assert.Error(t, err)
}

func TestCanReadGuardEvents(t *testing.T) {
	tests := []struct {
		name        string
		role        string
		requesterID uint
		targetID    uint
		want        bool
	}{
		{"guard reads own events", "guard", 7, 7, true},
		{"guard reads another guard", "guard", 7, 8, false},
		{"admin reads any guard", "admin", 1, 7, true},
		{"missing role denied", "", 7, 8, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, canReadGuardEvents(tt.role, tt.requesterID, tt.targetID))
		})
	}
}
