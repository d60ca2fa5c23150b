package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the application.
type Config struct {
	Server      ServerConfig
	DB          DBConfig
	Redis       RedisConfig
	JWT         JWTConfig
	GoogleOAuth GoogleOAuthConfig
	Gemini      GeminiConfig
	RateLimit   RateLimitConfig
	Generation  GenerationConfig
	Logger      LoggerConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// GeminiConfig configures the external generative text service.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// RateLimitBucket is a fixed-window limit for one endpoint category.
type RateLimitBucket struct {
	Limit  int
	Window time.Duration
}

// RateLimitConfig carries independent buckets per endpoint category.
type RateLimitConfig struct {
	Generation RateLimitBucket
	Surprise   RateLimitBucket
	General    RateLimitBucket
	Auth       RateLimitBucket
	Safety     RateLimitBucket
}

// GenerationConfig bounds the shape of AI-generated quizzes.
type GenerationConfig struct {
	MaxQuestionCount int
	MaxOptionsCount  int
	TitleWordLimit   int
	TakeCacheTTL     time.Duration
}

type LoggerConfig struct {
	Level string
	Env   string
}

// LoadConfig reads configuration from config.yaml and the environment.
// Environment variables take precedence over file values.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		viper.AddConfigPath("../../configs")
		viper.AddConfigPath("../../")
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
	}

	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; defaults and env vars carry the load.
	}

	config := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout") * time.Second,
			WriteTimeout: viper.GetDuration("server.write_timeout") * time.Second,
			IdleTimeout:  viper.GetDuration("server.idle_timeout") * time.Second,
		},
		DB: DBConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetInt("db.port"),
			User:     viper.GetString("db.user"),
			Password: viper.GetString("db.password"),
			DBName:   viper.GetString("db.name"),
			SSLMode:  viper.GetString("db.sslmode"),
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			SecretKey:       viper.GetString("jwt.secret_key"),
			AccessTokenTTL:  viper.GetDuration("jwt.access_token_ttl"),
			RefreshTokenTTL: viper.GetDuration("jwt.refresh_token_ttl"),
		},
		GoogleOAuth: GoogleOAuthConfig{
			ClientID:     viper.GetString("google_oauth.client_id"),
			ClientSecret: viper.GetString("google_oauth.client_secret"),
			RedirectURL:  viper.GetString("google_oauth.redirect_url"),
		},
		Gemini: GeminiConfig{
			APIKey:      viper.GetString("gemini.api_key"),
			Model:       viper.GetString("gemini.model"),
			Temperature: viper.GetFloat64("gemini.temperature"),
			Timeout:     viper.GetDuration("gemini.timeout"),
		},
		RateLimit: RateLimitConfig{
			Generation: bucketFromViper("rate_limit.generation"),
			Surprise:   bucketFromViper("rate_limit.surprise"),
			General:    bucketFromViper("rate_limit.general"),
			Auth:       bucketFromViper("rate_limit.auth"),
			Safety:     bucketFromViper("rate_limit.safety"),
		},
		Generation: GenerationConfig{
			MaxQuestionCount: viper.GetInt("generation.max_question_count"),
			MaxOptionsCount:  viper.GetInt("generation.max_options_count"),
			TitleWordLimit:   viper.GetInt("generation.title_word_limit"),
			TakeCacheTTL:     viper.GetDuration("generation.take_cache_ttl"),
		},
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("logger.env"),
		},
	}

	applyEnvOverrides(config)

	return config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 20)
	viper.SetDefault("server.write_timeout", 20)
	viper.SetDefault("server.idle_timeout", 20)
	viper.SetDefault("db.port", 5432)
	viper.SetDefault("db.sslmode", "disable")
	viper.SetDefault("jwt.access_token_ttl", 15*time.Minute)
	viper.SetDefault("jwt.refresh_token_ttl", 7*24*time.Hour)
	viper.SetDefault("gemini.model", "gemini-2.0-flash")
	viper.SetDefault("gemini.temperature", 0.2)
	viper.SetDefault("gemini.timeout", 60*time.Second)
	viper.SetDefault("rate_limit.generation.limit", 10)
	viper.SetDefault("rate_limit.generation.window", time.Minute)
	viper.SetDefault("rate_limit.surprise.limit", 20)
	viper.SetDefault("rate_limit.surprise.window", time.Minute)
	viper.SetDefault("rate_limit.general.limit", 120)
	viper.SetDefault("rate_limit.general.window", time.Minute)
	viper.SetDefault("rate_limit.auth.limit", 30)
	viper.SetDefault("rate_limit.auth.window", 15*time.Minute)
	viper.SetDefault("rate_limit.safety.limit", 30)
	viper.SetDefault("rate_limit.safety.window", time.Minute)
	viper.SetDefault("generation.max_question_count", 20)
	viper.SetDefault("generation.max_options_count", 8)
	viper.SetDefault("generation.title_word_limit", 10)
	viper.SetDefault("generation.take_cache_ttl", 10*time.Minute)
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.env", "development")
}

func bucketFromViper(prefix string) RateLimitBucket {
	return RateLimitBucket{
		Limit:  viper.GetInt(prefix + ".limit"),
		Window: viper.GetDuration(prefix + ".window"),
	}
}

func applyEnvOverrides(config *Config) {
	if host := os.Getenv("DB_HOST"); host != "" {
		config.DB.Host = host
	}
	if user := os.Getenv("DB_USER"); user != "" {
		config.DB.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		config.DB.Password = password
	}
	if dbname := os.Getenv("DB_NAME"); dbname != "" {
		config.DB.DBName = dbname
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		config.Redis.Address = redisAddress
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}
	if geminiKey := os.Getenv("GEMINI_API_KEY"); geminiKey != "" {
		config.Gemini.APIKey = geminiKey
	}
	if jwtSecret := os.Getenv("JWT_SECRET_KEY"); jwtSecret != "" {
		config.JWT.SecretKey = jwtSecret
	}
}

// GetDSN builds a Postgres connection string for the pgx stdlib driver.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User,
		c.DB.Password,
		c.DB.Host,
		c.DB.Port,
		c.DB.DBName,
		c.DB.SSLMode,
	)
}
