package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Twilio     TwilioConfig
	Gemini     GeminiConfig
	Admin      AdminConfig
	Matching   MatchingConfig
	RateLimit  RateLimitConfig
	Logging    LoggingConfig
	CronSecret string
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	StateTTL time.Duration
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	BaseURL    string
}

type GeminiConfig struct {
	APIKey         string
	ChatModel      string
	EmbeddingModel string
}

type AdminConfig struct {
	JWTSecret    string
	PasswordHash string
	TokenTTL     time.Duration
}

type MatchingConfig struct {
	ScoreThreshold  float64
	MaxProposals    int
	ProposalTTL     time.Duration
	DefaultTime     string
	DefaultActivity string
	DefaultArea     string
}

type RateLimitConfig struct {
	Ceiling int
	Window  time.Duration
}

type LoggingConfig struct {
	Level string
}

// Load loads configuration from environment variables or .env file
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	// Try to read from .env file, but don't fail if it doesn't exist
	_ = viper.ReadInConfig()

	viper.SetDefault("GEMINI_CHAT_MODEL", "gemini-1.5-pro")
	viper.SetDefault("GEMINI_EMBEDDING_MODEL", "text-embedding-004")
	viper.SetDefault("MATCH_SCORE_THRESHOLD", 0.3)
	viper.SetDefault("MATCH_MAX_PROPOSALS", 3)
	viper.SetDefault("MATCH_PROPOSAL_TTL_MIN", 120)
	viper.SetDefault("MATCH_DEFAULT_TIME", "19:00")
	viper.SetDefault("MATCH_DEFAULT_ACTIVITY", "Coffee or drinks")
	viper.SetDefault("MATCH_DEFAULT_AREA", "Downtown")
	viper.SetDefault("REDIS_STATE_TTL_MIN", 60)
	viper.SetDefault("RATE_LIMIT_CEILING", 10)
	viper.SetDefault("RATE_LIMIT_WINDOW_SEC", 60)
	viper.SetDefault("ADMIN_TOKEN_TTL_MIN", 60)
	viper.SetDefault("LOG_LEVEL", "info")

	config := &Config{
		Server: ServerConfig{
			Host:         viper.GetString("SERVER_HOST"),
			Port:         viper.GetInt("SERVER_PORT"),
			Env:          viper.GetString("ENV"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetInt("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
			StateTTL: time.Duration(viper.GetInt("REDIS_STATE_TTL_MIN")) * time.Minute,
		},
		Twilio: TwilioConfig{
			AccountSID: viper.GetString("TWILIO_ACCOUNT_SID"),
			AuthToken:  viper.GetString("TWILIO_AUTH_TOKEN"),
			FromNumber: viper.GetString("TWILIO_FROM_NUMBER"),
			BaseURL:    viper.GetString("TWILIO_BASE_URL"),
		},
		Gemini: GeminiConfig{
			APIKey:         viper.GetString("GEMINI_API_KEY"),
			ChatModel:      viper.GetString("GEMINI_CHAT_MODEL"),
			EmbeddingModel: viper.GetString("GEMINI_EMBEDDING_MODEL"),
		},
		Admin: AdminConfig{
			JWTSecret:    viper.GetString("ADMIN_JWT_SECRET"),
			PasswordHash: viper.GetString("ADMIN_PASSWORD_HASH"),
			TokenTTL:     time.Duration(viper.GetInt("ADMIN_TOKEN_TTL_MIN")) * time.Minute,
		},
		Matching: MatchingConfig{
			ScoreThreshold:  viper.GetFloat64("MATCH_SCORE_THRESHOLD"),
			MaxProposals:    viper.GetInt("MATCH_MAX_PROPOSALS"),
			ProposalTTL:     time.Duration(viper.GetInt("MATCH_PROPOSAL_TTL_MIN")) * time.Minute,
			DefaultTime:     viper.GetString("MATCH_DEFAULT_TIME"),
			DefaultActivity: viper.GetString("MATCH_DEFAULT_ACTIVITY"),
			DefaultArea:     viper.GetString("MATCH_DEFAULT_AREA"),
		},
		RateLimit: RateLimitConfig{
			Ceiling: viper.GetInt("RATE_LIMIT_CEILING"),
			Window:  time.Duration(viper.GetInt("RATE_LIMIT_WINDOW_SEC")) * time.Second,
		},
		Logging: LoggingConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		CronSecret: viper.GetString("CRON_SECRET"),
	}

	// Validate critical configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates critical configuration values
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Twilio.AccountSID == "" {
		return fmt.Errorf("twilio account SID is required")
	}
	if c.Twilio.AuthToken == "" {
		return fmt.Errorf("twilio auth token is required")
	}
	if c.Twilio.FromNumber == "" {
		return fmt.Errorf("twilio from number is required")
	}
	if c.Admin.JWTSecret == "" {
		return fmt.Errorf("admin JWT secret is required")
	}
	if len(c.Admin.JWTSecret) < 32 {
		return fmt.Errorf("admin JWT secret must be at least 32 characters")
	}
	if c.Matching.ScoreThreshold <= 0 || c.Matching.ScoreThreshold >= 1 {
		return fmt.Errorf("match score threshold must be in (0,1)")
	}
	if c.RateLimit.Ceiling <= 0 {
		return fmt.Errorf("rate limit ceiling must be positive")
	}
	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetAddr returns Redis address
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
