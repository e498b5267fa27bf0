package redisclient

import (
	"context"
	"time"

	"friendlink/internal/config"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const pingTimeout = 5 * time.Second

// Connect 按配置建立 Redis 连接。
// 未启用或 ping 失败时返回 nil 客户端，调用方回退到进程内实现。
func Connect(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		logrus.Info("Redis 未启用")
		return nil, nil
	}

	addr := cfg.RedisAddr()
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		logrus.WithFields(logrus.Fields{
			"addr":  addr,
			"error": err,
		}).Warn("Redis连接失败，系统将在无Redis的情况下继续运行")
		client.Close()
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"addr": addr,
		"db":   cfg.Redis.DB,
	}).Info("Redis连接成功")
	return client, nil
}

// Close 关闭客户端，nil 安全
func Close(client *redis.Client) error {
	if client == nil {
		return nil
	}
	return client.Close()
}
