package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yukikurage/project-tracker-api/internal/constants"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Session    SessionConfig    `yaml:"session"`
	Invitation InvitationConfig `yaml:"invitation"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	CORS       CORSConfig       `yaml:"cors"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Log        LogConfig        `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release, test
}

// DatabaseConfig selects the GORM dialector. When DSN is empty for mysql or
// postgres it is assembled from the host fields.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // sqlite, mysql, postgres
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"password"`
	PoolSize int    `yaml:"pool_size"`
}

type SessionConfig struct {
	Store      string `yaml:"store"` // redis, cookie
	Secret     string `yaml:"secret"`
	CookieName string `yaml:"cookie_name"`
	MaxAge     int    `yaml:"max_age"` // seconds
}

type InvitationConfig struct {
	CodeLength int `yaml:"code_length"`
	TTLHours   int `yaml:"ttl_hours"`
}

type RateLimitConfig struct {
	JoinRPS   float64 `yaml:"join_rps"`
	JoinBurst int     `yaml:"join_burst"`
}

type CORSConfig struct {
	AllowOrigins []string `yaml:"allow_origins"`
}

type OpenAIConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads the YAML file at configPath (config.yaml when empty), falling back
// to defaults when the file does not exist, then applies environment overrides.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", configPath, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	cfg.overrideFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8080",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "project_tracker.db",
			Host:   "localhost",
			Port:   "3306",
			User:   "taskuser",
			Name:   "project_tracker",
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			PoolSize: 10,
		},
		Session: SessionConfig{
			Store:      "cookie",
			Secret:     "default-secret-key-change-me",
			CookieName: "project_session",
			MaxAge:     86400 * 7,
		},
		Invitation: InvitationConfig{
			CodeLength: 10,
			TTLHours:   24 * 7,
		},
		RateLimit: RateLimitConfig{
			JoinRPS:   1,
			JoinBurst: 5,
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"http://localhost:3000"},
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}
	switch c.Session.Store {
	case "cookie", "redis":
	default:
		return fmt.Errorf("unsupported session store: %q", c.Session.Store)
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("session secret must not be empty")
	}
	if c.Invitation.CodeLength < 6 || c.Invitation.CodeLength > constants.MaxInvitationCodeLength {
		return fmt.Errorf("invitation code length must be between 6 and %d, got %d",
			constants.MaxInvitationCodeLength, c.Invitation.CodeLength)
	}
	if c.Invitation.TTLHours <= 0 {
		return fmt.Errorf("invitation ttl must be positive, got %d hours", c.Invitation.TTLHours)
	}
	// session cookies need credentialed CORS, which browsers refuse with "*"
	if len(c.CORS.AllowOrigins) == 0 {
		return fmt.Errorf("cors allow_origins must list at least one origin")
	}
	for _, origin := range c.CORS.AllowOrigins {
		if origin == "" || origin == "*" {
			return fmt.Errorf("cors allow_origins must list explicit origins, got %q", origin)
		}
	}
	return nil
}

// InvitationTTL returns how long a freshly generated invitation code stays valid.
func (c *Config) InvitationTTL() time.Duration {
	return time.Duration(c.Invitation.TTLHours) * time.Hour
}

// RedisAddr returns host:port for the session store.
func (c *Config) RedisAddr() string {
	return c.Redis.Host + ":" + c.Redis.Port
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.Server.Mode == "release"
}

func (c *Config) overrideFromEnv() {
	c.Server.Host = getEnv("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnv("SERVER_PORT", c.Server.Port)
	c.Server.Mode = getEnv("GIN_MODE", c.Server.Mode)

	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.DSN = getEnv("DB_DSN", c.Database.DSN)
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)

	c.Redis.Host = getEnv("REDIS_HOST", c.Redis.Host)
	c.Redis.Port = getEnv("REDIS_PORT", c.Redis.Port)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)

	c.Session.Store = getEnv("SESSION_STORE", c.Session.Store)
	c.Session.Secret = getEnv("SESSION_SECRET", c.Session.Secret)

	c.Invitation.TTLHours = getEnvInt("INVITATION_TTL_HOURS", c.Invitation.TTLHours)
	c.Invitation.CodeLength = getEnvInt("INVITATION_CODE_LENGTH", c.Invitation.CodeLength)

	if origins := os.Getenv("CORS_ALLOW_ORIGINS"); origins != "" {
		c.CORS.AllowOrigins = nil
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.CORS.AllowOrigins = append(c.CORS.AllowOrigins, origin)
			}
		}
	}

	c.OpenAI.APIKey = getEnv("OPENAI_API_KEY", c.OpenAI.APIKey)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
