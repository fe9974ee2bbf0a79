package config

import (
	"os"
	"strconv"
	"time"
)

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Config 决策引擎配置
type Config struct {
	Redis RedisConfig

	// 决策引擎特定配置
	Engine struct {
		// 结果缓存配置
		Cache struct {
			Backend   string        // "memory" 或 "redis"
			TTL       time.Duration // 结果缓存 TTL，默认 300 秒
			KeyPrefix string        // 缓存键前缀，如 "acdss:analysis:"
		}

		DefaultMode      string // OBSERVE / ASSIST / RECOMMEND，默认 ASSIST
		DefaultSpecialty string // 默认专科，默认 geral
		ProfilesFile     string // 专科配置覆盖文件（YAML），为空时使用内置配置
	}

	Log struct {
		Level  string
		Format string
	}
}

// 缓存后端
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Load 加载配置
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	// 缓存配置
	cfg.Engine.Cache.Backend = getEnv("ACDSS_CACHE_BACKEND", CacheBackendMemory)
	if cfg.Engine.Cache.Backend != CacheBackendRedis {
		cfg.Engine.Cache.Backend = CacheBackendMemory
	}
	cfg.Engine.Cache.TTL = time.Duration(getEnvInt("ACDSS_CACHE_TTL", 300)) * time.Second
	cfg.Engine.Cache.KeyPrefix = getEnv("ACDSS_CACHE_PREFIX", "acdss:analysis:")

	cfg.Engine.DefaultMode = getEnv("ACDSS_DEFAULT_MODE", "ASSIST")
	cfg.Engine.DefaultSpecialty = getEnv("ACDSS_DEFAULT_SPECIALTY", "geral")
	cfg.Engine.ProfilesFile = getEnv("ACDSS_PROFILES_FILE", "")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt 读取非负整数，无效值使用默认值
func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil && v >= 0 {
		return v
	}
	return defaultValue
}
