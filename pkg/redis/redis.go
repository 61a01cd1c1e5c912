package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"pfe-hub/backend/config"
)

// Client Redis 客户端封装
// 当前承担两类职责：Token 黑名单、按答辩ID串行化写操作的互斥锁
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── Token 黑名单 ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken 将 JWT ID 加入黑名单，TTL 与 Token 剩余有效期一致
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // Token 已过期，无需加入黑名单
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted 检查 JWT ID 是否在黑名单中
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── 答辩级互斥锁 ──
//
// 同一场答辩的所有写操作（改期/取消/评审团变更/成绩提交）以 defense_id 为粒度
// 串行化，避免交错写入破坏完整性校验。锁采用 SetNX 租约，由调用方负责释放；
// TTL 兜底防止持有者崩溃后锁无法释放。

const defenseLockPrefix = "defense:lock:"

// AcquireDefenseLock 尝试获取指定答辩的互斥锁，返回是否获取成功
func (c *Client) AcquireDefenseLock(ctx context.Context, defenseID string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, defenseLockPrefix+defenseID, "1", ttl).Result()
}

// ReleaseDefenseLock 释放指定答辩的互斥锁
func (c *Client) ReleaseDefenseLock(ctx context.Context, defenseID string) error {
	return c.rdb.Del(ctx, defenseLockPrefix+defenseID).Err()
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
