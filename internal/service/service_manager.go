package service

import (
	"context"
	"time"

	"friendlink/internal/auth"
	"friendlink/internal/clock"
	"friendlink/internal/config"
	"friendlink/internal/database"
	"friendlink/internal/friend"
	"friendlink/internal/redisclient"
	"friendlink/internal/user"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Manager 统一服务管理器
type Manager struct {
	db    *gorm.DB
	redis *redis.Client

	clock          clock.Clock
	tokens         *auth.TokenIssuer
	accountService *user.AccountService
	ledger         *friend.Ledger
	queries        *friend.Queries
}

// NewManager 按配置创建存储与各服务
func NewManager(ctx context.Context, cfg *config.Config, clk clock.Clock, opts ...user.Option) (*Manager, error) {
	m := &Manager{clock: clk}

	var (
		userStore   user.Store
		friendStore friend.Store
	)
	switch cfg.Database.Driver {
	case config.DriverMemory:
		logrus.Warn("使用内存存储，数据不会持久化")
		userStore = user.NewMemoryStore()
		friendStore = friend.NewMemoryStore()
	default:
		db, err := database.InitDB(cfg)
		if err != nil {
			return nil, err
		}
		m.db = db
		userStore = user.NewGormStore(db)
		friendStore = friend.NewGormStore(db)
	}

	// Redis 不可用时回退到进程内黑名单
	var denylist auth.Denylist
	if client, err := redisclient.Connect(ctx, cfg); err == nil && client != nil {
		m.redis = client
		denylist = auth.NewRedisDenylist(client)
	} else {
		denylist = auth.NewMemoryDenylist(clk)
	}

	m.tokens = auth.NewTokenIssuer(auth.Options{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		AccessTTL:  time.Duration(cfg.JWT.AccessExpire) * time.Minute,
		RefreshTTL: time.Duration(cfg.JWT.RefreshExpire) * time.Hour,
	}, clk, denylist)

	m.accountService = user.NewAccountService(userStore, m.tokens, clk, opts...)
	m.ledger = friend.NewLedger(friendStore, userStore, clk, friend.RateLimit{
		Max:    cfg.Friend.RateLimit,
		Window: time.Duration(cfg.Friend.WindowSeconds) * time.Second,
	})
	m.queries = friend.NewQueries(friendStore)

	logrus.WithFields(logrus.Fields{
		"driver": cfg.Database.Driver,
		"redis":  m.redis != nil,
	}).Info("服务管理器初始化完成")
	return m, nil
}

// GetAccountService 获取账户服务
func (m *Manager) GetAccountService() *user.AccountService {
	return m.accountService
}

// GetTokenIssuer 获取令牌签发器
func (m *Manager) GetTokenIssuer() *auth.TokenIssuer {
	return m.tokens
}

// GetLedger 获取好友请求服务
func (m *Manager) GetLedger() *friend.Ledger {
	return m.ledger
}

// GetQueries 获取好友查询服务
func (m *Manager) GetQueries() *friend.Queries {
	return m.queries
}

// Ping 检查存储连通性
func (m *Manager) Ping(ctx context.Context) error {
	if m.db == nil {
		return nil
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Shutdown 关闭所有连接
func (m *Manager) Shutdown() {
	logrus.Info("正在关闭服务管理器...")

	if err := redisclient.Close(m.redis); err != nil {
		logrus.WithError(err).Warn("关闭 Redis 失败")
	}
	if err := database.Close(m.db); err != nil {
		logrus.WithError(err).Warn("关闭数据库失败")
	}

	logrus.Info("服务管理器已关闭")
}
