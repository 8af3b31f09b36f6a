package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisConfig describes the Redis connection used by RedisStore.
type RedisConfig struct {
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	Key      string `json:"key"`
	// MaxEntries trims the list after every write. Zero keeps 10000.
	MaxEntries int64 `json:"max_entries"`
}

// RedisStore keeps entries as JSON in a capped Redis list.
type RedisStore struct {
	client *redis.Client
	key    string
	max    int64
}

// NewRedisStore connects to Redis.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	if cfg.Address == "" {
		return nil, errors.New("Redis address 不能为空")
	}
	key := cfg.Key
	if key == "" {
		key = "suiai:submissions"
	}
	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("连接 Redis 失败: %w", err)
	}
	return &RedisStore{client: client, key: key, max: maxEntries}, nil
}

// Record implements Sink.
func (s *RedisStore) Record(ctx context.Context, entry Entry) error {
	payload, err := json.Marshal(Prepare(entry))
	if err != nil {
		return fmt.Errorf("序列化提交记录失败: %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, s.key, payload)
	pipe.LTrim(ctx, s.key, 0, s.max-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("Redis 写入提交记录失败: %w", err)
	}
	return nil
}

// Recent implements Store.
func (s *RedisStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	values, err := s.client.LRange(ctx, s.key, 0, int64(limit-1)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("Redis 读取提交记录失败: %w", err)
	}
	entries := make([]Entry, 0, len(values))
	for _, raw := range values {
		var entry Entry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return nil, fmt.Errorf("解析提交记录失败: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Close implements Sink.
func (s *RedisStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
