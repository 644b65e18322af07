package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// MaxChunkCount bounds CHUNK_COUNT.
const MaxChunkCount = 4096

// Config holds all run settings, populated from environment variables.
type Config struct {
	ChunkCount int
	Workers    int
	Source     string

	LogLevel  string
	LogFormat string

	MetricsTextfile string

	KafkaBrokers []string
	KafkaTopic   string
	KafkaTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	chunkCount, err := parsePositiveInt("CHUNK_COUNT", runtime.NumCPU())
	if err != nil {
		return nil, err
	}
	if chunkCount > MaxChunkCount {
		return nil, fmt.Errorf("invalid CHUNK_COUNT: must be at most %d", MaxChunkCount)
	}

	workers, err := parsePositiveInt("WORKERS", runtime.GOMAXPROCS(0))
	if err != nil {
		return nil, err
	}

	kafkaTimeout, err := time.ParseDuration(envOrDefault("KAFKA_TIMEOUT", "10s"))
	if err != nil || kafkaTimeout <= 0 {
		return nil, errors.New("invalid KAFKA_TIMEOUT")
	}

	cfg := &Config{
		ChunkCount:      chunkCount,
		Workers:         workers,
		Source:          envOrDefault("SOURCE", "mmap"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "text"),
		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),
		KafkaBrokers:    parseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:      envOrDefault("KAFKA_TOPIC", "station-averages"),
		KafkaTimeout:    kafkaTimeout,
	}

	switch cfg.Source {
	case "mmap", "mmap-reader", "pread":
	default:
		return nil, fmt.Errorf("invalid SOURCE %q: want mmap, mmap-reader or pread", cfg.Source)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid LOG_LEVEL %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q", cfg.LogFormat)
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// PublishEnabled reports whether results go to Kafka.
func (c *Config) PublishEnabled() bool { return len(c.KafkaBrokers) > 0 }

func envOrDefault(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, s)
	}
	return n, nil
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
