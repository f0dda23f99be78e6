// config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	DB            DBConfig            `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Uploads       UploadsConfig       `mapstructure:"uploads"`
	Geocoder      GeocoderConfig      `mapstructure:"geocoder"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
	PasswordReset PasswordResetConfig `mapstructure:"password_reset"`
	Mail          MailConfig          `mapstructure:"mail"`
	CORS          CORSConfig          `mapstructure:"cors"`
	Log           LogConfig           `mapstructure:"log"`
}

// ServerConfig holds server specific configuration
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	Host           string        `mapstructure:"host"`
	Mode           string        `mapstructure:"mode"` // gin mode: debug, release, test
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// DBConfig holds database specific configuration
type DBConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Name          string `mapstructure:"name"`
	SSLMode       string `mapstructure:"sslmode"`
	MaxConns      int32  `mapstructure:"max_conns"`
	MinConns      int32  `mapstructure:"min_conns"`
	RunMigrations bool   `mapstructure:"run_migrations"`
}

// DSN builds the postgres connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// RedisConfig holds redis connection values
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig holds token signing configuration
type JWTConfig struct {
	Secret           string        `mapstructure:"secret"`
	Expiration       time.Duration `mapstructure:"expiration"`
	CookieExpiration time.Duration `mapstructure:"cookie_expiration"`
	SecureCookie     bool          `mapstructure:"secure_cookie"`
}

// UploadsConfig controls where resumes go and what is accepted.
type UploadsConfig struct {
	Path              string   `mapstructure:"path"`
	MaxFileSize       int64    `mapstructure:"max_file_size"` // bytes
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
}

// GeocoderConfig configures the address resolution provider.
type GeocoderConfig struct {
	Provider string        `mapstructure:"provider"`
	APIKey   string        `mapstructure:"api_key"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// RateLimitConfig is a fixed window per client IP.
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int64         `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// PasswordResetConfig holds reset token settings.
type PasswordResetConfig struct {
	TokenTTL time.Duration `mapstructure:"token_ttl"`
	URLBase  string        `mapstructure:"url_base"`
}

// MailConfig holds outgoing mail settings.
type MailConfig struct {
	From string `mapstructure:"from"`
}

// CORSConfig holds CORS specific configuration
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"` // Slice of allowed origin strings
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// Load configuration from env files, config file and environment variables
func Load() (*Config, error) {
	// .env files are optional; values already in the environment win.
	for _, f := range []string{".env", "config/config.env"} {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			log.Printf("Error loading env file %s: %v", f, err)
		}
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app/config")
	v.AddConfigPath("/app")

	setDefaults(v)

	// --- Read Config File (Optional) ---
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Config file not found, using defaults and environment variables.")
		} else {
			log.Printf("Error reading config file: %v", err)
		}
	}

	// --- Bind Environment Variables ---
	v.SetEnvPrefix("API") // Example: API_JWT_SECRET
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	log.Printf("Configuration loaded: Server Port=%d, DB Host=%s, Redis=%s, Allowed Origins=%v",
		cfg.Server.Port, cfg.DB.Host, cfg.Redis.Addr, cfg.CORS.AllowedOrigins)

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.request_timeout", 30*time.Second)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "jobboard")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.run_migrations", true)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.secret", "change-me")
	v.SetDefault("jwt.expiration", 7*24*time.Hour)
	v.SetDefault("jwt.cookie_expiration", 7*24*time.Hour)
	v.SetDefault("jwt.secure_cookie", false)

	v.SetDefault("uploads.path", "./public/uploads")
	v.SetDefault("uploads.max_file_size", 2*1024*1024)
	v.SetDefault("uploads.allowed_extensions", []string{".pdf", ".doc", ".docx"})

	v.SetDefault("geocoder.provider", "mapquest")
	v.SetDefault("geocoder.base_url", "https://www.mapquestapi.com/geocoding/v1/address")
	v.SetDefault("geocoder.timeout", 5*time.Second)
	v.SetDefault("geocoder.cache_ttl", 24*time.Hour)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", 10*time.Minute)

	v.SetDefault("password_reset.token_ttl", 30*time.Minute)
	v.SetDefault("password_reset.url_base", "http://localhost:8080/api/v1/password/reset")

	v.SetDefault("mail.from", "noreply@jobboard.local")

	// For production, this SHOULD be overridden by environment variables.
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// applyEnvOverrides lets the short, unprefixed variables used by the deployment win.
func applyEnvOverrides(cfg *Config) {
	if portStr := os.Getenv("SERVER_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			cfg.Server.Port = port
		}
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.DB.Host = host
	}
	if portStr := os.Getenv("DB_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			cfg.DB.Port = port
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.DB.User = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cfg.DB.Password = pass
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.DB.Name = name
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWT.Secret = secret
	}
	if key := os.Getenv("GEOCODER_API_KEY"); key != "" {
		cfg.Geocoder.APIKey = key
	}
	if path := os.Getenv("UPLOAD_PATH"); path != "" {
		cfg.Uploads.Path = path
	}
	if sizeStr := os.Getenv("MAX_FILE_SIZE"); sizeStr != "" {
		if size, err := strconv.ParseInt(sizeStr, 10, 64); err == nil {
			cfg.Uploads.MaxFileSize = size
		}
	}

	// Handle CORS_ALLOWED_ORIGINS env var (comma-separated string -> slice)
	if originsStr := os.Getenv("CORS_ALLOWED_ORIGINS"); originsStr != "" {
		cfg.CORS.AllowedOrigins = strings.Split(originsStr, ",")
		for i, origin := range cfg.CORS.AllowedOrigins {
			cfg.CORS.AllowedOrigins[i] = strings.TrimSpace(origin)
		}
	}
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret must not be empty")
	}
	if c.JWT.Expiration <= 0 {
		return fmt.Errorf("jwt.expiration must be positive")
	}
	if c.Uploads.MaxFileSize <= 0 {
		return fmt.Errorf("uploads.max_file_size must be positive")
	}
	if len(c.Uploads.AllowedExtensions) == 0 {
		return fmt.Errorf("uploads.allowed_extensions must not be empty")
	}
	return nil
}
