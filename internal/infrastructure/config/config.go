package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	config     *Config
	configOnce sync.Once
)

// Config stores all configuration of the application
type Config struct {
	// Environment type
	EnvType string

	// Database
	DBHost          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBPort          string
	DBMigrationMode string // 数据库迁移模式: "auto"(默认), "alter"(修改), "drop"(删除重建)

	// Server
	ServerPort string

	// Redis
	RedisHost string
	RedisPort string
	RedisDB   int

	// 考勤引擎配置
	CheckInIntervalMinutes int     // 值守签到间隔（分钟），默认60，必须为正数
	PresenceSweepSeconds   int     // 在岗状态全量重算周期（秒），默认5
	GeofenceDefaultRadius  float64 // 电子围栏默认半径（米），位置未设置半径时使用该值

	// MQTT配置
	MQTTBrokerURL  string // MQTT服务器地址，如 tcp://broker.example.com:1883
	MQTTClientID   string // MQTT客户端ID
	MQTTUsername   string // MQTT用户名
	MQTTPassword   string // MQTT密码
	MQTTQoS        int    // 服务质量 (0, 1, 2)
	MQTTRetained   bool   // 是否保留消息
	MQTTSSLEnabled bool   // 是否启用SSL/TLS
	MQTTCACertPath string // CA证书路径，用于SSL/TLS验证

	// JWT Authentication
	JWTSecretKey string

	// Admin
	DefaultAdminPassword string
}

// LoadConfig loads config from environment variables based on ENV_TYPE
func LoadConfig() *Config {
	// Get environment type (default to LOCAL if not set)
	envType := getEnv("ENV_TYPE", "LOCAL")
	prefix := ""

	// Set prefix based on environment type
	if strings.ToUpper(envType) == "LOCAL" {
		prefix = "LOCAL_"
	} else if strings.ToUpper(envType) == "SERVER" {
		prefix = "SERVER_"
	} else {
		fmt.Printf("Warning: Unknown ENV_TYPE '%s', defaulting to LOCAL environment\n", envType)
		prefix = "LOCAL_"
		envType = "LOCAL"
	}

	fmt.Printf("Loading configuration for environment: %s\n", envType)

	cfg := &Config{
		// Environment type
		EnvType: envType,

		// Database config - use environment-specific variables if available
		DBHost:          getEnv(prefix+"DB_HOST", getEnv("DB_HOST", "localhost")),
		DBUser:          getEnv(prefix+"DB_USER", getEnv("DB_USER", "root")),
		DBPassword:      getEnv(prefix+"DB_PASSWORD", getEnv("DB_PASSWORD", "")),
		DBName:          getEnv(prefix+"DB_NAME", getEnv("DB_NAME", "guardian_db")),
		DBPort:          getEnv(prefix+"DB_PORT", getEnv("DB_PORT", "3306")),
		DBMigrationMode: getEnv(prefix+"DB_MIGRATION_MODE", getEnv("DB_MIGRATION_MODE", "auto")),

		// Server config
		ServerPort: getEnv(prefix+"SERVER_PORT", getEnv("SERVER_PORT", "8080")),

		// Redis config
		RedisHost: getEnv(prefix+"REDIS_HOST", getEnv("REDIS_HOST", "localhost")),
		RedisPort: getEnv(prefix+"REDIS_PORT", getEnv("REDIS_PORT", "6379")),
		RedisDB:   getEnvAsInt("REDIS_DB", 0),

		// 考勤引擎配置
		CheckInIntervalMinutes: getEnvAsInt("CHECKIN_INTERVAL_MINUTES", 60),
		PresenceSweepSeconds:   getEnvAsInt("PRESENCE_SWEEP_SECONDS", 5),
		GeofenceDefaultRadius:  getEnvAsFloat("GEOFENCE_DEFAULT_RADIUS", 30),

		// MQTT配置
		MQTTBrokerURL:  getEnv("MQTT_BROKER_URL", "tcp://localhost:1883"),
		MQTTClientID:   getEnv("MQTT_CLIENT_ID", "guardian_server"),
		MQTTUsername:   getEnv("MQTT_USERNAME", ""),
		MQTTPassword:   getEnv("MQTT_PASSWORD", ""),
		MQTTQoS:        getEnvAsInt("MQTT_QOS", 1),
		MQTTRetained:   getEnvAsBool("MQTT_RETAINED", false),
		MQTTSSLEnabled: getEnvAsBool("MQTT_SSL_ENABLED", false),
		MQTTCACertPath: getEnv("MQTT_CA_CERT_PATH", ""),

		// JWT Config
		JWTSecretKey: getEnv("JWT_SECRET_KEY", "guardian-secret-key-change-in-production"),

		// Admin Config
		DefaultAdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", "admin123"),
	}

	// 签到间隔必须为正数，非法值回退到默认60分钟
	if cfg.CheckInIntervalMinutes <= 0 {
		fmt.Printf("Warning: invalid CHECKIN_INTERVAL_MINUTES %d, defaulting to 60\n", cfg.CheckInIntervalMinutes)
		cfg.CheckInIntervalMinutes = 60
	}
	if cfg.PresenceSweepSeconds <= 0 {
		cfg.PresenceSweepSeconds = 5
	}
	if cfg.GeofenceDefaultRadius <= 0 {
		cfg.GeofenceDefaultRadius = 30
	}

	return cfg
}

// GetConfig returns the application configuration as a singleton
func GetConfig() *Config {
	configOnce.Do(func() {
		config = LoadConfig()
	})
	return config
}

// GetDSN returns the database connection string
func (c *Config) GetDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?charset=utf8mb4&parseTime=True&loc=Local&allowNativePasswords=true&multiStatements=true"
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// CheckInInterval 返回值守签到间隔时长
func (c *Config) CheckInInterval() time.Duration {
	return time.Duration(c.CheckInIntervalMinutes) * time.Minute
}

// PresenceSweepInterval 返回在岗状态重算周期
func (c *Config) PresenceSweepInterval() time.Duration {
	return time.Duration(c.PresenceSweepSeconds) * time.Second
}

// Helper function to get environment variable with default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variable as integer with default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variable as boolean with default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variable as float with default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}
