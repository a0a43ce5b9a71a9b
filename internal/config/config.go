package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

type Config struct {
	App      AppConfig      `toml:"app"`
	Log      LogConfig      `toml:"log"`
	QA       QAConfig       `toml:"qa"`
	Store    StoreConfig    `toml:"store"`
	Redis    RedisConfig    `toml:"redis"`
	MySQL    MySQLConfig    `toml:"mysql"`
	RabbitMQ RabbitMQConfig `toml:"rabbitmq"`
	Cache    CacheConfig    `toml:"cache"`
}

type AppConfig struct {
	Name    string `toml:"name"`
	Env     string `toml:"env"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	GinMode string `toml:"gin_mode"`
}

type LogConfig struct {
	File string `toml:"file"`
}

// QAConfig points at the question-answering backend. Mode selects the wire
// contract: "combined" posts file+question to /upload-ask, "split" uploads
// once to /upload-pdf and then asks via /ask.
type QAConfig struct {
	BaseURL        string `toml:"base_url"`
	Mode           string `toml:"mode"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// StoreConfig selects the persistence backend: redis, mysql, or memory.
type StoreConfig struct {
	Driver    string `toml:"driver"`
	KeyPrefix string `toml:"key_prefix"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type MySQLConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	DB       string `toml:"db"`
	Params   string `toml:"params"`
}

// RabbitMQConfig enables the async snapshot persistence pipeline when URL is
// set; with an empty URL the services write to the store directly.
type RabbitMQConfig struct {
	URL           string `toml:"url"`
	SnapshotQueue string `toml:"snapshot_queue"`
}

type CacheConfig struct {
	AnswerTTLSeconds int `toml:"answer_ttl_seconds"`
}

func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.MySQL.User,
		c.MySQL.Password,
		c.MySQL.Host,
		c.MySQL.Port,
		c.MySQL.DB,
		c.MySQL.Params,
	)
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:    "docuchat",
			Env:     "dev",
			Host:    "0.0.0.0",
			Port:    8080,
			GinMode: "debug",
		},
		Log: LogConfig{
			File: "",
		},
		QA: QAConfig{
			BaseURL:        "http://127.0.0.1:8000",
			Mode:           "combined",
			TimeoutSeconds: 90,
		},
		Store: StoreConfig{
			Driver:    "redis",
			KeyPrefix: "docuchat",
		},
		Redis: RedisConfig{
			Addr:     "127.0.0.1:6379",
			Password: "",
			DB:       0,
		},
		MySQL: MySQLConfig{
			Host:     "127.0.0.1",
			Port:     3306,
			User:     "root",
			Password: "",
			DB:       "docuchat",
			Params:   "parseTime=true&loc=Local&charset=utf8mb4",
		},
		RabbitMQ: RabbitMQConfig{
			URL:           "",
			SnapshotQueue: "docuchat.snapshot.persist",
		},
		Cache: CacheConfig{
			AnswerTTLSeconds: 300,
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)

	cfg.Log.File = getEnv("LOG_FILE", cfg.Log.File)

	cfg.QA.BaseURL = getEnv("QA_BASE_URL", cfg.QA.BaseURL)
	cfg.QA.Mode = getEnv("QA_MODE", cfg.QA.Mode)
	cfg.QA.TimeoutSeconds = getEnvAsInt("QA_TIMEOUT_SECONDS", cfg.QA.TimeoutSeconds)

	cfg.Store.Driver = getEnv("STORE_DRIVER", cfg.Store.Driver)
	cfg.Store.KeyPrefix = getEnv("STORE_KEY_PREFIX", cfg.Store.KeyPrefix)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)

	cfg.MySQL.Host = getEnv("MYSQL_HOST", cfg.MySQL.Host)
	cfg.MySQL.Port = getEnvAsInt("MYSQL_PORT", cfg.MySQL.Port)
	cfg.MySQL.User = getEnv("MYSQL_USER", cfg.MySQL.User)
	cfg.MySQL.Password = getEnv("MYSQL_PASSWORD", cfg.MySQL.Password)
	cfg.MySQL.DB = getEnv("MYSQL_DB", cfg.MySQL.DB)
	cfg.MySQL.Params = getEnv("MYSQL_PARAMS", cfg.MySQL.Params)

	cfg.RabbitMQ.URL = getEnv("RABBITMQ_URL", cfg.RabbitMQ.URL)
	cfg.RabbitMQ.SnapshotQueue = getEnv("RABBITMQ_SNAPSHOT_QUEUE", cfg.RabbitMQ.SnapshotQueue)

	cfg.Cache.AnswerTTLSeconds = getEnvAsInt("CACHE_ANSWER_TTL_SECONDS", cfg.Cache.AnswerTTLSeconds)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
