package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// StoreConfig.Backend 支持的存储后端。
const (
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	Log     LogConfig
	CORS    CORSConfig
	Metrics MetricsConfig
	Feed    FeedConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	store, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}

	metrics, err := loadMetricsConfig()
	if err != nil {
		return nil, err
	}

	feed, err := loadFeedConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		Store:   store,
		Log:     loadLogConfig(),
		CORS:    loadCORSConfig(),
		Metrics: metrics,
		Feed:    feed,
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 根据 PORT 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "9000"
	}

	if strings.Contains(port, ":") {
		// accept ":9000" or "127.0.0.1:9000" as well
		return ServerConfig{Addr: port}, nil
	}

	if _, err := strconv.Atoi(port); err != nil {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// StoreConfig 选择并配置持久化后端。
type StoreConfig struct {
	Backend        string
	MongoURL       string
	ConnectTimeout time.Duration
	SQLitePath     string
}

func loadStoreConfig() (StoreConfig, error) {
	backend := strings.ToLower(getEnvOrDefault("STORE_BACKEND", BackendMongo))
	switch backend {
	case BackendMongo, BackendSQLite, BackendMemory:
	default:
		return StoreConfig{}, fmt.Errorf("invalid STORE_BACKEND value %q (supported: mongo, sqlite, memory)", backend)
	}

	timeout, err := parseDurationEnv("MONGO_CONNECT_TIMEOUT", 10*time.Second)
	if err != nil {
		return StoreConfig{}, err
	}

	return StoreConfig{
		Backend:        backend,
		MongoURL:       getEnvOrDefault("MONGO_URL", "mongodb://localhost/happyThoughts"),
		ConnectTimeout: timeout,
		SQLitePath:     getEnvOrDefault("SQLITE_PATH", "./data/thoughts.db"),
	}, nil
}

// LogConfig 描述 zap 日志配置。
type LogConfig struct {
	Environment string
	Level       string
}

// Production 表示是否使用生产环境的编码器。
func (c LogConfig) Production() bool {
	return c.Environment == "production"
}

func loadLogConfig() LogConfig {
	return LogConfig{
		Environment: strings.ToLower(getEnvOrDefault("APP_ENV", "development")),
		Level:       strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
	}
}

// CORSConfig 列出允许跨域访问的来源。
type CORSConfig struct {
	AllowedOrigins []string
}

func loadCORSConfig() CORSConfig {
	raw := getEnvOrDefault("ALLOWED_ORIGINS", "*")
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return CORSConfig{AllowedOrigins: origins}
}

// MetricsConfig 控制是否开启 Prometheus 指标端点。
type MetricsConfig struct {
	Enabled bool
}

func loadMetricsConfig() (MetricsConfig, error) {
	enabled, err := parseBoolEnv("METRICS_ENABLED", true)
	if err != nil {
		return MetricsConfig{}, err
	}
	return MetricsConfig{Enabled: enabled}, nil
}

// FeedConfig 描述实时推送的缓冲大小。
type FeedConfig struct {
	Buffer int
}

func loadFeedConfig() (FeedConfig, error) {
	buffer := 16
	if override, err := parseOptionalIntEnv("FEED_BUFFER"); err != nil {
		return FeedConfig{}, err
	} else if override != nil {
		if *override < 1 {
			buffer = 1
		} else {
			buffer = *override
		}
	}
	return FeedConfig{Buffer: buffer}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val <= 0 {
		return 0, fmt.Errorf("invalid %s value %q: must be positive", key, raw)
	}
	return val, nil
}
