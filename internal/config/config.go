package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	DB         DBConfig
	Redis      RedisConfig
	Logger     LoggerConfig
	Auth       AuthConfig
	Search     SearchConfig
	CacheTTLs  CacheTTLConfig
	Remote     RemoteConfig
	LocalStore LocalStoreConfig
	Sync       SyncConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DBConfig struct {
	// Driver is "sqlite" or "oracle".
	Driver       string
	DSN          string
	MaxOpenConns int
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type LoggerConfig struct {
	Level string
	Env   string
}

type AuthConfig struct {
	JWTSecret string
	// Required turns on bearer validation for write endpoints.
	Required bool
}

type SearchConfig struct {
	DefaultLimit    int
	MaxLimit        int
	SuggestionLimit int
}

type CacheTTLConfig struct {
	SearchResults time.Duration
	Question      time.Duration
}

type RemoteConfig struct {
	BaseURL         string
	FallbackEnabled bool
	HealthTimeout   time.Duration
	QueryTimeout    time.Duration
	Token           string
	QuestionCache   int
}

type LocalStoreConfig struct {
	// Backend is "sqlite", "redis" or "memory".
	Backend     string
	Path        string
	RedisPrefix string
}

type SyncConfig struct {
	Concurrency int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8787)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:questa.db?_pragma=busy_timeout(5000)")
	v.SetDefault("db.max_open_conns", 10)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.env", "development")

	v.SetDefault("auth.required", true)

	v.SetDefault("search.default_limit", 20)
	v.SetDefault("search.max_limit", 100)
	v.SetDefault("search.suggestion_limit", 10)

	v.SetDefault("cache_ttls.search_results", "5m")
	v.SetDefault("cache_ttls.question", "30m")

	v.SetDefault("remote.base_url", "http://localhost:8787")
	v.SetDefault("remote.fallback_enabled", true)
	v.SetDefault("remote.health_timeout", "2s")
	v.SetDefault("remote.query_timeout", "10s")
	v.SetDefault("remote.question_cache", 256)

	v.SetDefault("local_store.backend", "sqlite")
	v.SetDefault("local_store.path", "questa-local.db")
	v.SetDefault("local_store.redis_prefix", "questa:local:")

	v.SetDefault("sync.concurrency", 4)
}

// LoadConfig reads config.yaml and QUESTA_* environment overrides.
// A missing config file is not an error; defaults and env still apply.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Add config paths based on environment
	if os.Getenv("ENV") == "test" {
		v.AddConfigPath("../../config")
		v.AddConfigPath("../../")
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("QUESTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := v.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", absPath)
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  time.Duration(v.GetInt("server.read_timeout")) * time.Second,
			WriteTimeout: time.Duration(v.GetInt("server.write_timeout")) * time.Second,
		},
		DB: DBConfig{
			Driver:       v.GetString("db.driver"),
			DSN:          v.GetString("db.dsn"),
			MaxOpenConns: v.GetInt("db.max_open_conns"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Logger: LoggerConfig{
			Level: v.GetString("logger.level"),
			Env:   v.GetString("logger.env"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
			Required:  v.GetBool("auth.required"),
		},
		Search: SearchConfig{
			DefaultLimit:    v.GetInt("search.default_limit"),
			MaxLimit:        v.GetInt("search.max_limit"),
			SuggestionLimit: v.GetInt("search.suggestion_limit"),
		},
		CacheTTLs: CacheTTLConfig{
			SearchResults: v.GetDuration("cache_ttls.search_results"),
			Question:      v.GetDuration("cache_ttls.question"),
		},
		Remote: RemoteConfig{
			BaseURL:         v.GetString("remote.base_url"),
			FallbackEnabled: v.GetBool("remote.fallback_enabled"),
			HealthTimeout:   v.GetDuration("remote.health_timeout"),
			QueryTimeout:    v.GetDuration("remote.query_timeout"),
			Token:           v.GetString("remote.token"),
			QuestionCache:   v.GetInt("remote.question_cache"),
		},
		LocalStore: LocalStoreConfig{
			Backend:     v.GetString("local_store.backend"),
			Path:        v.GetString("local_store.path"),
			RedisPrefix: v.GetString("local_store.redis_prefix"),
		},
		Sync: SyncConfig{
			Concurrency: v.GetInt("sync.concurrency"),
		},
	}
}
