package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"friendlink/internal/clock"
	"friendlink/internal/constants"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// Denylist 已注销 token 的 jti 集合
type Denylist interface {
	Add(ctx context.Context, jti string, ttl time.Duration) error
	Contains(ctx context.Context, jti string) (bool, error)
}

// RedisDenylist 基于 Redis 的黑名单，键随 token 一起过期
type RedisDenylist struct {
	client *redis.Client
}

// NewRedisDenylist 创建 Redis 黑名单
func NewRedisDenylist(client *redis.Client) *RedisDenylist {
	return &RedisDenylist{client: client}
}

func (d *RedisDenylist) Add(ctx context.Context, jti string, ttl time.Duration) error {
	key := fmt.Sprintf(constants.RedisKeyTokenDenylist, jti)
	if err := d.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return errors.Wrap(err, "写入 token 黑名单失败")
	}
	return nil
}

func (d *RedisDenylist) Contains(ctx context.Context, jti string) (bool, error) {
	key := fmt.Sprintf(constants.RedisKeyTokenDenylist, jti)
	n, err := d.client.Exists(ctx, key).Result()
	if err != nil {
		return false, errors.Wrap(err, "查询 token 黑名单失败")
	}
	return n > 0, nil
}

// MemoryDenylist 进程内黑名单，Redis 不可用时使用
type MemoryDenylist struct {
	mu      sync.Mutex
	clock   clock.Clock
	entries map[string]time.Time
}

// NewMemoryDenylist 创建进程内黑名单
func NewMemoryDenylist(clk clock.Clock) *MemoryDenylist {
	return &MemoryDenylist{clock: clk, entries: make(map[string]time.Time)}
}

func (d *MemoryDenylist) Add(_ context.Context, jti string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clock.Now()
	// 顺带清理已过期条目
	for k, exp := range d.entries {
		if !exp.After(now) {
			delete(d.entries, k)
		}
	}
	d.entries[jti] = now.Add(ttl)
	return nil
}

func (d *MemoryDenylist) Contains(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	exp, ok := d.entries[jti]
	if !ok {
		return false, nil
	}
	return exp.After(d.clock.Now()), nil
}
