package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"guardian-http-service/internal/domain/models"
	"guardian-http-service/internal/infrastructure/config"
)

// 缓存键
const (
	presenceSnapshotKey = "guardian:presence:snapshot"
	presenceVersionKey  = "guardian:presence:version"
	panicVersionKey     = "guardian:panic:version"
)

// InterfaceRedisService defines the Redis service interface
type InterfaceRedisService interface {
	Set(key string, value interface{}, expiration time.Duration) error
	Get(key string, dest interface{}) error
	Delete(key string) error
	CachePresenceSnapshot(snapshot *models.PresenceSnapshot, expiration time.Duration) error
	GetPresenceSnapshot() (*models.PresenceSnapshot, error)
	NextPresenceVersion() (int64, error)
	NextPanicVersion() (int64, error)
}

// RedisService handles Redis operations
type RedisService struct {
	Client *redis.Client
	Ctx    context.Context
}

// NewRedisService creates a new Redis service
func NewRedisService(cfg *config.Config) InterfaceRedisService {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: "", // No password set
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()

	return &RedisService{
		Client: client,
		Ctx:    ctx,
	}
}

// Set sets a key-value pair in Redis with expiration
func (s *RedisService) Set(key string, value interface{}, expiration time.Duration) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return s.Client.Set(s.Ctx, key, jsonValue, expiration).Err()
}

// Get gets a value from Redis by key
func (s *RedisService) Get(key string, dest interface{}) error {
	val, err := s.Client.Get(s.Ctx, key).Result()
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(val), dest)
}

// Delete deletes a key from Redis
func (s *RedisService) Delete(key string) error {
	return s.Client.Del(s.Ctx, key).Err()
}

// CachePresenceSnapshot caches the latest presence snapshot with expiration
func (s *RedisService) CachePresenceSnapshot(snapshot *models.PresenceSnapshot, expiration time.Duration) error {
	return s.Set(presenceSnapshotKey, snapshot, expiration)
}

// GetPresenceSnapshot gets the cached presence snapshot
func (s *RedisService) GetPresenceSnapshot() (*models.PresenceSnapshot, error) {
	var snapshot models.PresenceSnapshot
	if err := s.Get(presenceSnapshotKey, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// NextPresenceVersion 递增并返回在岗快照版本号（单调递增）
func (s *RedisService) NextPresenceVersion() (int64, error) {
	return s.Client.Incr(s.Ctx, presenceVersionKey).Result()
}

// NextPanicVersion 递增并返回警报状态版本号。版本号用作观察方的
// 单调拉取令牌：只接受版本更高的全量读取，避免回放过期状态.
func (s *RedisService) NextPanicVersion() (int64, error) {
	return s.Client.Incr(s.Ctx, panicVersionKey).Result()
}
