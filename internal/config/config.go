// Package config loads server settings from an optional .env file, an
// optional YAML file and the environment, in that order of precedence
// (environment wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMongo  = "mongo"
	BackendBolt   = "bolt"
	BackendMemory = "memory"
)

// Config holds the server configuration
type Config struct {
	HTTPAddr string `yaml:"httpAddr"`

	StoreBackend string        `yaml:"storeBackend"`
	MongoURI     string        `yaml:"mongoUri"`
	MongoDB      string        `yaml:"mongoDb"`
	BoltPath     string        `yaml:"boltPath"`
	StoreTimeout time.Duration `yaml:"storeTimeout"`
	StoreRetries int           `yaml:"storeRetries"`

	// RedisURI enables distributed locking when set.
	RedisURI string        `yaml:"redisUri"`
	LockTTL  time.Duration `yaml:"lockTtl"`

	SurveyEntity   string `yaml:"surveyEntity"`
	SurveySchema   string `yaml:"surveySchema"`
	ResponseEntity string `yaml:"responseEntity"`
	ResponseSchema string `yaml:"responseSchema"`

	UniqueOrderResponses bool `yaml:"uniqueOrderResponses"`

	LogLevel string `yaml:"logLevel"`
	LogJSON  bool   `yaml:"logJson"`

	CORSAllowedOrigins []string `yaml:"corsAllowedOrigins"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		HTTPAddr:           ":8080",
		StoreBackend:       BackendMongo,
		MongoURI:           "mongodb://localhost:27017",
		MongoDB:            "postsurvey",
		BoltPath:           "postsurvey.db",
		StoreTimeout:       5 * time.Second,
		StoreRetries:       2,
		LockTTL:            10 * time.Second,
		SurveyEntity:       "zpd_surveys",
		SurveySchema:       "survey-schema-v1",
		ResponseEntity:     "zpd_responses",
		ResponseSchema:     "response-schema-v1",
		LogLevel:           "info",
		CORSAllowedOrigins: []string{"*"},
	}
}

// Load builds the configuration. path names an optional YAML file; a .env
// file in the working directory is read when present.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.HTTPAddr = getEnv("HTTP_ADDR", c.HTTPAddr)
	c.StoreBackend = getEnv("STORE_BACKEND", c.StoreBackend)
	c.MongoURI = getEnv("MONGO_URI", c.MongoURI)
	c.MongoDB = getEnv("MONGO_DB", c.MongoDB)
	c.BoltPath = getEnv("BOLT_PATH", c.BoltPath)
	c.RedisURI = getEnv("REDIS_URI", c.RedisURI)
	c.SurveyEntity = getEnv("SURVEY_ENTITY", c.SurveyEntity)
	c.SurveySchema = getEnv("SURVEY_SCHEMA", c.SurveySchema)
	c.ResponseEntity = getEnv("RESPONSE_ENTITY", c.ResponseEntity)
	c.ResponseSchema = getEnv("RESPONSE_SCHEMA", c.ResponseSchema)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	var errs []error
	var err error
	if c.StoreTimeout, err = getEnvDuration("STORE_TIMEOUT", c.StoreTimeout); err != nil {
		errs = append(errs, err)
	}
	if c.LockTTL, err = getEnvDuration("LOCK_TTL", c.LockTTL); err != nil {
		errs = append(errs, err)
	}
	if c.StoreRetries, err = getEnvInt("STORE_RETRIES", c.StoreRetries); err != nil {
		errs = append(errs, err)
	}
	if c.UniqueOrderResponses, err = getEnvBool("UNIQUE_ORDER_RESPONSES", c.UniqueOrderResponses); err != nil {
		errs = append(errs, err)
	}
	if c.LogJSON, err = getEnvBool("LOG_JSON", c.LogJSON); err != nil {
		errs = append(errs, err)
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.CORSAllowedOrigins = splitList(v)
	}
	return errors.Join(errs...)
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	switch c.StoreBackend {
	case BackendMongo:
		if c.MongoURI == "" || c.MongoDB == "" {
			errs = append(errs, errors.New("mongo backend requires MONGO_URI and MONGO_DB"))
		}
	case BackendBolt:
		if c.BoltPath == "" {
			errs = append(errs, errors.New("bolt backend requires BOLT_PATH"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.StoreBackend))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, fmt.Errorf("store timeout must be positive, got %s", c.StoreTimeout))
	}
	if c.StoreRetries < 0 {
		errs = append(errs, fmt.Errorf("store retries must not be negative, got %d", c.StoreRetries))
	}
	if c.LockTTL <= 0 {
		errs = append(errs, fmt.Errorf("lock ttl must be positive, got %s", c.LockTTL))
	}
	if c.SurveyEntity == "" || c.ResponseEntity == "" {
		errs = append(errs, errors.New("entity names must not be empty"))
	}
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("http address must not be empty"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
