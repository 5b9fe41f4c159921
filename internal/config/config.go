package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Поддерживаемые хранилища.
const (
	StorageInMemory = "in-memory"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
	StorageMongo    = "mongo"
)

type ServerConfig struct {
	Addr     string `toml:"addr"`
	LogLevel string `toml:"logLevel"`
}

type StorageConfig struct {
	Type        string `toml:"type"`
	DatabaseURL string `toml:"databaseURL"`

	RedisHost     string `toml:"redisHost"`
	RedisPort     string `toml:"redisPort"`
	RedisPassword string `toml:"redisPassword"`
	RedisDB       int    `toml:"redisDB"`
	RedisPrefix   string `toml:"redisPrefix"`

	MongoURI string `toml:"mongoURI"`
	MongoDB  string `toml:"mongoDB"`
}

type AuthConfig struct {
	JWTSecret string        `toml:"jwtSecret"`
	TokenTTL  time.Duration `toml:"tokenTTL"`

	AdminID          string `toml:"adminID"`
	AdminUsername    string `toml:"adminUsername"`
	AdminPassword    string `toml:"adminPassword"`
	AdminDisplayName string `toml:"adminDisplayName"`
}

type GeminiConfig struct {
	APIKey  string        `toml:"apiKey"`
	Model   string        `toml:"model"`
	BaseURL string        `toml:"baseURL"`
	Timeout time.Duration `toml:"timeout"`
}

type KafkaConfig struct {
	Addr  string `toml:"addr"`
	Topic string `toml:"topic"`
	Batch int    `toml:"batch"`
}

// Config - полная конфигурация сервера.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Auth    AuthConfig    `toml:"auth"`
	Gemini  GeminiConfig  `toml:"gemini"`
	Kafka   KafkaConfig   `toml:"kafka"`
}

// Default возвращает настройки по умолчанию.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080", LogLevel: "info"},
		Storage: StorageConfig{
			Type:        StorageInMemory,
			RedisPort:   "6379",
			RedisPrefix: "academic-feed:",
			MongoDB:     "academic_feed",
		},
		Auth: AuthConfig{
			TokenTTL:         24 * time.Hour,
			AdminID:          "admin-id",
			AdminUsername:    "Admin_Izzaz",
			AdminPassword:    "Izzaz7603",
			AdminDisplayName: "Admin",
		},
		Gemini: GeminiConfig{
			Model:   "gemini-3-flash-preview",
			Timeout: 30 * time.Second,
		},
		Kafka: KafkaConfig{Batch: 1},
	}
}

var envLocations = []string{
	".env",       // текущая директория
	"../../.env", // корень проекта при запуске из cmd/server
}

// Load собирает конфигурацию: значения по умолчанию, затем TOML файл (если
// path не пустой), затем .env и переменные окружения.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	for _, location := range envLocations {
		if err := godotenv.Load(location); err == nil {
			break
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Addr = ":" + port
	}
	cfg.Server.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.Server.LogLevel)

	cfg.Storage.Type = getEnvOrDefault("STORAGE", cfg.Storage.Type)
	cfg.Storage.DatabaseURL = getEnvOrDefault("DATABASE_URL", cfg.Storage.DatabaseURL)
	cfg.Storage.RedisHost = getEnvOrDefault("REDIS_HOST", cfg.Storage.RedisHost)
	cfg.Storage.RedisPort = getEnvOrDefault("REDIS_PORT", cfg.Storage.RedisPort)
	cfg.Storage.RedisPassword = getEnvOrDefault("REDIS_PASSWD", cfg.Storage.RedisPassword)
	cfg.Storage.MongoURI = getEnvOrDefault("MONGO_URI", cfg.Storage.MongoURI)
	cfg.Storage.MongoDB = getEnvOrDefault("MONGO_DB", cfg.Storage.MongoDB)
	if db := os.Getenv("REDIS_DB"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB %q: %w", db, err)
		}
		cfg.Storage.RedisDB = n
	}

	cfg.Auth.JWTSecret = getEnvOrDefault("JWT_SECRET", cfg.Auth.JWTSecret)
	if ttl := os.Getenv("JWT_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("invalid JWT_TTL %q: %w", ttl, err)
		}
		cfg.Auth.TokenTTL = d
	}
	cfg.Auth.AdminUsername = getEnvOrDefault("ADMIN_USERNAME", cfg.Auth.AdminUsername)
	cfg.Auth.AdminPassword = getEnvOrDefault("ADMIN_PASSWORD", cfg.Auth.AdminPassword)
	cfg.Auth.AdminDisplayName = getEnvOrDefault("ADMIN_DISPLAY_NAME", cfg.Auth.AdminDisplayName)

	cfg.Gemini.APIKey = getEnvOrDefault("GEMINI_API_KEY", cfg.Gemini.APIKey)
	cfg.Gemini.Model = getEnvOrDefault("GEMINI_MODEL", cfg.Gemini.Model)

	cfg.Kafka.Addr = getEnvOrDefault("KAFKA_ADDR", cfg.Kafka.Addr)
	cfg.Kafka.Topic = getEnvOrDefault("KAFKA_TOPIC", cfg.Kafka.Topic)
	if batch := os.Getenv("KAFKA_BATCH"); batch != "" {
		n, err := strconv.Atoi(batch)
		if err != nil {
			return fmt.Errorf("invalid KAFKA_BATCH %q: %w", batch, err)
		}
		cfg.Kafka.Batch = n
	}
	return nil
}

// Validate проверяет обязательные параметры выбранного хранилища и авторизации.
func (c Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Auth.AdminUsername == "" || c.Auth.AdminPassword == "" {
		return errors.New("admin username and password are required")
	}

	switch c.Storage.Type {
	case StorageInMemory:
	case StoragePostgres:
		if c.Storage.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for postgres storage")
		}
	case StorageRedis:
		if c.Storage.RedisHost == "" {
			return errors.New("REDIS_HOST is required for redis storage")
		}
	case StorageMongo:
		if c.Storage.MongoURI == "" {
			return errors.New("MONGO_URI is required for mongo storage")
		}
	default:
		return fmt.Errorf("unsupported storage type %q", c.Storage.Type)
	}
	return nil
}

// KafkaEnabled сообщает, настроена ли отправка событий в Kafka.
func (c Config) KafkaEnabled() bool {
	return c.Kafka.Addr != "" && c.Kafka.Topic != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
