package database

import (
	"time"

	"friendlink/internal/config"
	"friendlink/internal/logger"
	"friendlink/internal/model"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// InitDB 初始化数据库连接并迁移表结构
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.Database.MySQL.DSN), &gorm.Config{
		Logger: logger.Gorm(),
		// 唯一索引冲突翻译为 gorm.ErrDuplicatedKey
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "打开数据库连接失败")
	}

	// 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "获取数据库连接失败")
	}
	sqlDB.SetMaxIdleConns(cfg.Database.MySQL.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MySQL.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 自动迁移数据库结构
	if err := model.SetupDatabase(db); err != nil {
		return nil, errors.Wrap(err, "迁移数据库失败")
	}

	logrus.WithFields(logrus.Fields{
		"function": "InitDB",
		"maxOpen":  cfg.Database.MySQL.MaxOpenConns,
	}).Info("数据库初始化成功")
	return db, nil
}

// Close 关闭底层连接池
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
