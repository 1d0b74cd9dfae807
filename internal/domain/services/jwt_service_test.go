package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(secret string) *JWTService {
	return &JWTService{
		secretKey: secret,
		issuer:    "guardian-http-service",
	}
}

func TestGenerateAndExtractGuardToken(t *testing.T) {
	svc := newTestJWTService("test-secret")

	locationID := uint(3)
	token, err := svc.GenerateToken(7, "guard", &locationID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "guard", claims.Role)
	require.NotNil(t, claims.LocationID)
	assert.Equal(t, uint(3), *claims.LocationID)
	assert.Equal(t, "guardian-http-service", claims.Issuer)
}

func TestGenerateAdminTokenWithoutLocation(t *testing.T) {
	svc := newTestJWTService("test-secret")

	// 管理员令牌不携带驻点声明
	token, err := svc.GenerateToken(1, "admin", nil)
	require.NoError(t, err)

	claims, err := svc.ExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
	assert.Nil(t, claims.LocationID)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc := newTestJWTService("test-secret")
	other := newTestJWTService("another-secret")

	token, err := svc.GenerateToken(7, "guard", nil)
	require.NoError(t, err)

	_, err = other.ExtractClaims(token)
	assert.Error(t, err)
}

func TestValidateTokenTampered(t *testing.T) {
	svc := newTestJWTService("test-secret")

	token, err := svc.GenerateToken(7, "guard", nil)
	require.NoError(t, err)

	// 篡改载荷后签名不再匹配
	tampered := token[:len(token)-4] + "xxxx"
	_, err = svc.ValidateToken(tampered)
	assert.Error(t, err)

	_, err = svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
