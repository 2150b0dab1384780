package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bossshopp/internal/config"

	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "bs"
	pingTimeout      = 3 * time.Second
)

// store 进程内唯一的 redis 连接；client 为 nil 表示缓存关闭
type store struct {
	mu     sync.RWMutex
	client *redis.Client
	prefix string
}

var current = &store{prefix: defaultKeyPrefix}

func (s *store) snapshot() (*redis.Client, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client, s.prefix
}

func (s *store) swap(client *redis.Client, prefix string) *redis.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.client
	s.client = client
	s.prefix = prefix
	return old
}

// InitRedis 初始化 Redis；未启用或连不上时缓存关闭，调用方按无缓存运行
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		closeClient(current.swap(nil, defaultKeyPrefix))
		return nil
	}
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		closeClient(current.swap(nil, prefix))
		return fmt.Errorf("redis ping %s:%d: %w", host, port, err)
	}
	closeClient(current.swap(client, prefix))
	return nil
}

func closeClient(client *redis.Client) {
	if client != nil {
		_ = client.Close()
	}
}

// Ping 检查连通性，缓存关闭时直接返回
func Ping(ctx context.Context) error {
	client, _ := current.snapshot()
	if client == nil {
		return nil
	}
	return client.Ping(ctx).Err()
}

// Close 关闭连接并关闭缓存
func Close() error {
	client := current.swap(nil, defaultKeyPrefix)
	if client == nil {
		return nil
	}
	return client.Close()
}

// Enabled 缓存是否可用
func Enabled() bool {
	client, _ := current.snapshot()
	return client != nil
}

// Client 原始客户端（限流脚本使用），缓存关闭时为 nil
func Client() *redis.Client {
	client, _ := current.snapshot()
	return client
}

// GetJSON 读取 JSON 缓存，返回是否命中
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	client, prefix := current.snapshot()
	if client == nil {
		return false, nil
	}
	raw, err := client.Get(ctx, joinKey(prefix, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 写入 JSON 缓存
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	client, prefix := current.snapshot()
	if client == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return client.Set(ctx, joinKey(prefix, key), payload, ttl).Err()
}

// Del 删除缓存
func Del(ctx context.Context, keys ...string) error {
	client, prefix := current.snapshot()
	if client == nil || len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, key := range keys {
		full[i] = joinKey(prefix, key)
	}
	return client.Del(ctx, full...).Err()
}

// BuildKey 带前缀的完整 key
func BuildKey(key string) string {
	_, prefix := current.snapshot()
	return joinKey(prefix, key)
}

func joinKey(prefix, key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return prefix
	}
	return prefix + ":" + key
}
