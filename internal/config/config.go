package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// 数据库驱动
const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// Config 应用配置
type Config struct {
	Server struct {
		Port            int    `yaml:"port"`
		ShutdownTimeout int    `yaml:"shutdown_timeout"` // 秒
		TLSEnabled      bool   `yaml:"tls_enabled"`
		CertFile        string `yaml:"cert_file"`
		KeyFile         string `yaml:"key_file"`
	} `yaml:"server"`

	Database struct {
		Driver string `yaml:"driver"` // mysql | memory
		MySQL  struct {
			DSN          string `yaml:"dsn"` // Data Source Name
			MaxIdleConns int    `yaml:"max_idle_conns"`
			MaxOpenConns int    `yaml:"max_open_conns"`
		} `yaml:"mysql"`
	} `yaml:"database"`

	JWT struct {
		Secret        string `yaml:"secret"`
		Issuer        string `yaml:"issuer"`
		AccessExpire  int    `yaml:"access_expire"`  // 分钟
		RefreshExpire int    `yaml:"refresh_expire"` // 小时
	} `yaml:"jwt"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Friend struct {
		RateLimit     int `yaml:"rate_limit"`     // 窗口内最多发送次数
		WindowSeconds int `yaml:"window_seconds"` // 滑动窗口
	} `yaml:"friend"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // text | json
	} `yaml:"log"`

	CORS struct {
		AllowOrigins []string `yaml:"allow_origins"`
	} `yaml:"cors"`
}

// GlobalConfig 全局配置
var GlobalConfig = Default()

// Default 返回默认配置
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Init 从 FRIENDLINK_CONFIG 或 config.yaml 加载全局配置
func Init() error {
	path := os.Getenv("FRIENDLINK_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	GlobalConfig = cfg
	return nil
}

// Load 读取配置文件，文件不存在时使用默认配置
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logrus.WithField("path", path).Info("配置文件不存在，使用默认配置")
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	logrus.WithFields(logrus.Fields{
		"driver": cfg.Database.Driver,
		"port":   cfg.Server.Port,
		"redis":  cfg.Redis.Enabled,
	}).Info("配置加载成功")
	return cfg, nil
}

func (c *Config) applyEnv() {
	if dsn := os.Getenv("FRIENDLINK_DB_DSN"); dsn != "" {
		c.Database.MySQL.DSN = dsn
		if c.Database.Driver == "" {
			c.Database.Driver = DriverMySQL
		}
	}
	if secret := os.Getenv("FRIENDLINK_JWT_SECRET"); secret != "" {
		c.JWT.Secret = secret
	}
	if addr := os.Getenv("FRIENDLINK_REDIS_ADDR"); addr != "" {
		host, port, ok := strings.Cut(addr, ":")
		c.Redis.Host = host
		if ok {
			if p, err := strconv.Atoi(port); err == nil {
				c.Redis.Port = p
			}
		}
		c.Redis.Enabled = true
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 5
	}

	if c.Database.Driver == "" {
		c.Database.Driver = DriverMySQL
	}
	if c.Database.MySQL.DSN == "" {
		c.Database.MySQL.DSN = "root:123456@tcp(127.0.0.1:3306)/friendlink?charset=utf8mb4&parseTime=True&loc=UTC"
	}
	if c.Database.MySQL.MaxIdleConns <= 0 {
		c.Database.MySQL.MaxIdleConns = 10
	}
	if c.Database.MySQL.MaxOpenConns <= 0 {
		c.Database.MySQL.MaxOpenConns = 100
	}

	// 确保 JWT Secret 有值
	if c.JWT.Secret == "" {
		c.JWT.Secret = "default_secret_key_for_development"
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "friendlink"
	}
	if c.JWT.AccessExpire <= 0 {
		c.JWT.AccessExpire = 60
	}
	if c.JWT.RefreshExpire <= 0 {
		c.JWT.RefreshExpire = 24
	}

	if c.Redis.Host == "" {
		c.Redis.Host = "127.0.0.1"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}

	if c.Friend.RateLimit <= 0 {
		c.Friend.RateLimit = 3
	}
	if c.Friend.WindowSeconds <= 0 {
		c.Friend.WindowSeconds = 60
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if len(c.CORS.AllowOrigins) == 0 {
		c.CORS.AllowOrigins = []string{"http://localhost:3000"}
	}
}

// RedisAddr 返回 host:port
func (c *Config) RedisAddr() string {
	return c.Redis.Host + ":" + strconv.Itoa(c.Redis.Port)
}
