package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var ErrConfigFileNotFound = errors.New("could not find config file")

type Config struct {
	Server ServerConfig `koanf:"server"`
	MySQL  MySQLConfig  `koanf:"mysql"`
	Redis  RedisConfig  `koanf:"redis"`
	Kafka  KafkaConfig  `koanf:"kafka"`
	JWT    JWTConfig    `koanf:"jwt"`
	Circle CircleConfig `koanf:"circle"`
	Log    LogConfig    `koanf:"log"`
}

type ServerConfig struct {
	Addr string `koanf:"addr"`
}

type MySQLConfig struct {
	DSN string `koanf:"dsn"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type KafkaConfig struct {
	Brokers []string `koanf:"brokers"`
	Topic   string   `koanf:"topic"`
	GroupID string   `koanf:"group_id"`
}

type JWTConfig struct {
	AccessSecret  string `koanf:"access_secret"`
	RefreshSecret string `koanf:"refresh_secret"`
}

// CircleConfig 圈子解析相关参数
type CircleConfig struct {
	ScopeTTLSeconds int `koanf:"scope_ttl_seconds"` // 每个 viewer 的 scope 缓存时间
	MaxCommunities  int `koanf:"max_communities"`   // 单层扩展社区上限，0=不限
	MaxUsers        int `koanf:"max_users"`         // 单层扩展用户上限，0=不限
}

type LogConfig struct {
	Level string `koanf:"level"`
}

// Load 读取 toml 配置，缺省值在这里补齐
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Circle.ScopeTTLSeconds <= 0 {
		cfg.Circle.ScopeTTLSeconds = 60
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "membership-events"
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = "scope-invalidator"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	return &cfg, nil
}
