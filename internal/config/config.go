// Package config provides configuration management for the PAWSture well-being engine.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Redis     RedisConfig
	Logging   LoggingConfig
	Transport TransportConfig
	Detection DetectionConfig
	Cooldown  CooldownConfig
	Training  TrainingConfig
}

// ServerConfig holds the inbound webhook/introspection HTTP server configuration.
type ServerConfig struct {
	Port            int
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// StoreConfig configures the Row Store Gateway's connection to the relational backend.
type StoreConfig struct {
	URL             string
	Key             string
	MaxConnections  int
	MinConnections  int
	MaxIdleTime     time.Duration
	MaxConnLifetime time.Duration
	MaxRetries      int
	RetryDelay      time.Duration
	RetryBackoff    float64
}

// RedisConfig holds the cooldown table's backing store configuration.
type RedisConfig struct {
	URL      string
	Password string
	DB       int
	PoolSize int
}

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// TransportConfig configures the subscriber chat transport.
type TransportConfig struct {
	Token            string
	SubscriberPath   string
	BotPort          int
	OutboundTimeout  time.Duration
	WebhookJWTSecret string
}

// DetectionConfig holds the default thresholds from spec §4.B, all overridable.
type DetectionConfig struct {
	PostureWindow       time.Duration
	PostureRegionWindow time.Duration
	EmotionWindow       time.Duration

	CriticalCount int // T_crit
	HighCount     int // T_high
	MediumCount   int // T_med
	RegionCount   int // T_spec

	NegativeGroupCount int // T_neg
	SameEmotionCount   int // T_same
	HighStressCount    int // T_stress

	ChronicStressWindowDays   int
	ChronicStressMinSamples   int
	ChronicStressMeanThresh   float64
	ChronicPostureWindowDays  int
	ChronicPostureCountThresh int
}

// CooldownConfig holds the per-channel cooldown durations from spec §4.G.
type CooldownConfig struct {
	PostureL3 time.Duration
	PostureL2 time.Duration
	Emotion   time.Duration
	TickEvery time.Duration
}

// TrainingConfig holds the personalisation model's hyperparameters from spec §4.E/4.F.
type TrainingConfig struct {
	EmbeddingDim int
	HiddenDim    int
	DropoutProb  float64
	Epochs       int
	BatchSize    int
	LearningRate float64
	MinTrainRows int
}

// Load loads the configuration from environment variables, .env file first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvAsInt("PAWSTURE_PORT", 8080),
			Host:            getEnv("PAWSTURE_HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsDuration("PAWSTURE_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("PAWSTURE_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvAsDuration("PAWSTURE_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Store: StoreConfig{
			URL:             getEnv("PAWSTURE_STORE_URL", ""),
			Key:             getEnv("PAWSTURE_STORE_KEY", ""),
			MaxConnections:  getEnvAsInt("PAWSTURE_STORE_MAX_CONNECTIONS", 20),
			MinConnections:  getEnvAsInt("PAWSTURE_STORE_MIN_CONNECTIONS", 2),
			MaxIdleTime:     getEnvAsDuration("PAWSTURE_STORE_MAX_IDLE_TIME", 30*time.Minute),
			MaxConnLifetime: getEnvAsDuration("PAWSTURE_STORE_MAX_CONN_LIFETIME", time.Hour),
			MaxRetries:      getEnvAsInt("PAWSTURE_STORE_MAX_RETRIES", 2),
			RetryDelay:      getEnvAsDuration("PAWSTURE_STORE_RETRY_DELAY", 200*time.Millisecond),
			RetryBackoff:    getEnvAsFloat("PAWSTURE_STORE_RETRY_BACKOFF", 2.0),
		},
		Redis: RedisConfig{
			URL:      getEnv("PAWSTURE_REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("PAWSTURE_REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("PAWSTURE_REDIS_DB", 0),
			PoolSize: getEnvAsInt("PAWSTURE_REDIS_POOL_SIZE", 10),
		},
		Logging: LoggingConfig{
			Level:  getEnv("PAWSTURE_LOG_LEVEL", "info"),
			Format: getEnv("PAWSTURE_LOG_FORMAT", "json"),
		},
		Transport: TransportConfig{
			Token:            getEnv("PAWSTURE_TRANSPORT_TOKEN", ""),
			SubscriberPath:   getEnv("PAWSTURE_SUBSCRIBER_LIST_PATH", ""),
			BotPort:          getEnvAsInt("PAWSTURE_BOT_PORT", 0),
			OutboundTimeout:  getEnvAsDuration("PAWSTURE_TRANSPORT_TIMEOUT", 10*time.Second),
			WebhookJWTSecret: getEnv("PAWSTURE_WEBHOOK_JWT_SECRET", ""),
		},
		Detection: DetectionConfig{
			PostureWindow:       getEnvAsDuration("PAWSTURE_POSTURE_WINDOW", 10*time.Second),
			PostureRegionWindow: getEnvAsDuration("PAWSTURE_POSTURE_REGION_WINDOW", 20*time.Second),
			EmotionWindow:       getEnvAsDuration("PAWSTURE_EMOTION_WINDOW", 50*time.Second),

			CriticalCount: getEnvAsInt("PAWSTURE_T_CRIT", 4),
			HighCount:     getEnvAsInt("PAWSTURE_T_HIGH", 5),
			MediumCount:   getEnvAsInt("PAWSTURE_T_MED", 6),
			RegionCount:   getEnvAsInt("PAWSTURE_T_SPEC", 4),

			NegativeGroupCount: getEnvAsInt("PAWSTURE_T_NEG", 5),
			SameEmotionCount:   getEnvAsInt("PAWSTURE_T_SAME", 4),
			HighStressCount:    getEnvAsInt("PAWSTURE_T_STRESS", 4),

			ChronicStressWindowDays:   getEnvAsInt("PAWSTURE_CHRONIC_STRESS_DAYS", 7),
			ChronicStressMinSamples:   getEnvAsInt("PAWSTURE_CHRONIC_STRESS_MIN_SAMPLES", 200),
			ChronicStressMeanThresh:   getEnvAsFloat("PAWSTURE_CHRONIC_STRESS_MEAN", 7.0),
			ChronicPostureWindowDays:  getEnvAsInt("PAWSTURE_CHRONIC_POSTURE_DAYS", 14),
			ChronicPostureCountThresh: getEnvAsInt("PAWSTURE_CHRONIC_POSTURE_COUNT", 800),
		},
		Cooldown: CooldownConfig{
			PostureL3: getEnvAsDuration("PAWSTURE_COOLDOWN_POSTURE_L3", 30*time.Second),
			PostureL2: getEnvAsDuration("PAWSTURE_COOLDOWN_POSTURE_L2", 30*time.Second),
			Emotion:   getEnvAsDuration("PAWSTURE_COOLDOWN_EMOTION", 30*time.Second),
			TickEvery: getEnvAsDuration("PAWSTURE_TICK_INTERVAL", 10*time.Second),
		},
		Training: TrainingConfig{
			EmbeddingDim: getEnvAsInt("PAWSTURE_EMBED_DIM", 8),
			HiddenDim:    getEnvAsInt("PAWSTURE_HIDDEN_DIM", 32),
			DropoutProb:  getEnvAsFloat("PAWSTURE_DROPOUT", 0.2),
			Epochs:       getEnvAsInt("PAWSTURE_EPOCHS", 6),
			BatchSize:    getEnvAsInt("PAWSTURE_BATCH_SIZE", 32),
			LearningRate: getEnvAsFloat("PAWSTURE_LEARNING_RATE", 1e-3),
			MinTrainRows: getEnvAsInt("PAWSTURE_MIN_TRAIN_ROWS", 5),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration. Per spec §6, store URL, store key, transport
// token, subscriber list path and bot port are required at startup; absence is fatal.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if c.Store.URL == "" {
		return fmt.Errorf("PAWSTURE_STORE_URL is required")
	}
	if c.Store.Key == "" {
		return fmt.Errorf("PAWSTURE_STORE_KEY is required")
	}
	if c.Store.MinConnections > c.Store.MaxConnections {
		return fmt.Errorf("store min connections cannot exceed max connections")
	}

	if c.Transport.Token == "" {
		return fmt.Errorf("PAWSTURE_TRANSPORT_TOKEN is required")
	}
	if c.Transport.SubscriberPath == "" {
		return fmt.Errorf("PAWSTURE_SUBSCRIBER_LIST_PATH is required")
	}
	if c.Transport.BotPort < 1 || c.Transport.BotPort > 65535 {
		return fmt.Errorf("PAWSTURE_BOT_PORT is required and must be a valid port")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logging.Format)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
