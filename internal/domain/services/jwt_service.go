package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"guardian-http-service/internal/domain/models"
	"guardian-http-service/internal/infrastructure/config"
)

// InterfaceJWTService 定义JWT服务接口
type InterfaceJWTService interface {
	GenerateToken(userID uint, role string, locationID *uint) (string, error)
	ValidateToken(tokenString string) (*jwt.Token, error)
	ExtractClaims(tokenString string) (*JWTClaims, error)
	Login(username, password string) (*LoginResult, error)
}

// LoginResult 表示登录结果
type LoginResult struct {
	Token     string      `json:"token"`
	UserID    uint        `json:"user_id"`
	Role      string      `json:"role"`
	Username  string      `json:"username"`
	Phone     string      `json:"phone,omitempty"`
	CreatedAt interface{} `json:"created_at"`
}

// JWTService 提供JWT相关服务
type JWTService struct {
	secretKey string
	issuer    string
	DB        *gorm.DB
}

// JWTClaims 定义JWT令牌的声明结构
type JWTClaims struct {
	UserID     uint   `json:"user_id"`
	Role       string `json:"role"`
	LocationID *uint  `json:"location_id,omitempty"` // 驻点ID，用于标识保安所属驻点
	jwt.RegisteredClaims
}

// NewJWTService 创建一个新的JWT服务
func NewJWTService(cfg *config.Config, db *gorm.DB) InterfaceJWTService {
	return &JWTService{
		secretKey: cfg.JWTSecretKey,
		issuer:    "guardian-http-service",
		DB:        db,
	}
}

// GenerateToken 生成JWT令牌
func (s *JWTService) GenerateToken(userID uint, role string, locationID *uint) (string, error) {
	// 令牌有效期为24小时
	expirationTime := time.Now().Add(24 * time.Hour)

	claims := &JWTClaims{
		UserID:     userID,
		Role:       role,
		LocationID: locationID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

// ValidateToken 验证JWT令牌
func (s *JWTService) ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// 验证签名算法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	})
}

// ExtractClaims 从令牌中提取声明
func (s *JWTService) ExtractClaims(tokenString string) (*JWTClaims, error) {
	token, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		// 将map claims转换为JWTClaims结构
		jwtClaims := &JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer: claims["iss"].(string),
			},
		}

		// 提取用户ID
		if userID, ok := claims["user_id"].(float64); ok {
			jwtClaims.UserID = uint(userID)
		}

		// 提取角色
		if role, ok := claims["role"].(string); ok {
			jwtClaims.Role = role
		}

		// 提取驻点ID（如果存在）
		if locationID, ok := claims["location_id"].(float64); ok {
			locID := uint(locationID)
			jwtClaims.LocationID = &locID
		}

		return jwtClaims, nil
	}

	return nil, errors.New("invalid token claims")
}

// Login 处理用户登录请求
func (s *JWTService) Login(username, password string) (*LoginResult, error) {
	// 尝试查找管理员用户
	var admin models.Admin
	if err := s.DB.Where("username = ?", username).First(&admin).Error; err == nil {
		// 比较密码
		if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err == nil {
			// 生成管理员令牌
			token, err := s.GenerateToken(admin.ID, "admin", nil)
			if err != nil {
				return nil, err
			}

			return &LoginResult{
				Token:     token,
				UserID:    admin.ID,
				Role:      "admin",
				Username:  admin.Username,
				CreatedAt: admin.CreatedAt,
			}, nil
		}
	}

	// 尝试查找保安，支持用户名或手机号登录
	var guard models.Guard
	if err := s.DB.Where("username = ? OR phone = ?", username, username).First(&guard).Error; err == nil {
		// 获取密码字段
		var dbPassword string

		// 使用原始查询获取所需字段
		row := s.DB.Table("guards").
			Select("password").
			Where("id = ?", guard.ID).
			Row()

		if err := row.Scan(&dbPassword); err != nil {
			return nil, err
		}

		// 比较密码
		if err := bcrypt.CompareHashAndPassword([]byte(dbPassword), []byte(password)); err == nil {
			// 生成保安令牌
			token, err := s.GenerateToken(guard.ID, "guard", guard.LocationID)
			if err != nil {
				return nil, err
			}

			return &LoginResult{
				Token:     token,
				UserID:    guard.ID,
				Role:      "guard",
				Username:  guard.Username,
				Phone:     guard.Phone,
				CreatedAt: guard.CreatedAt,
			}, nil
		}
	}

	// 用户名或密码无效
	return nil, errors.New("invalid username or password")
}
