package token

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "calcstash:token:"

// RedisStore はRedisをバックエンドとするトークンストア。
// 複数インスタンス構成でログイン状態を共有する場合に使用する。
// 有効期限はRedisのTTLに委ね、期限切れレコードはRedis側で自動消滅する。
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisStore はRedisStoreを生成する。
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		now:    time.Now,
	}
}

// Create はレコードをTTL付きで保存する。
// すでに期限切れのレコードは保存せずエラーを返す。
func (s *RedisStore) Create(ctx context.Context, rec *Record) error {
	ttl := rec.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("token record is already expired")
	}

	blob, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal token record: %w", err)
	}

	if err := s.client.Set(ctx, redisKeyPrefix+rec.Token, blob, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store token record: %w", err)
	}
	return nil
}

// Find は指定トークンのレコードを取得する。
// キーが存在しない場合（TTL切れ含む）はnilを返す。
func (s *RedisStore) Find(ctx context.Context, token string) (*Record, error) {
	blob, err := s.client.Get(ctx, redisKeyPrefix+token).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load token record: %w", err)
	}

	rec := &Record{}
	if err := json.Unmarshal(blob, rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token record: %w", err)
	}
	if rec.Expired(s.now()) {
		return nil, nil
	}

	return rec, nil
}

// Delete は指定トークンのレコードを削除する。冪等。
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to delete token record: %w", err)
	}
	return nil
}

// compile-time interface check
var _ Store = (*RedisStore)(nil)
