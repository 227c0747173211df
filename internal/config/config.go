package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the dashboard server.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Payment  PaymentConfig  `mapstructure:"payment"`
	State    StateConfig    `mapstructure:"state"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	S3       S3Config       `mapstructure:"s3"`
	Location LocationConfig `mapstructure:"location"`
}

type ServerConfig struct {
	Address        string   `mapstructure:"address"`
	CookieName     string   `mapstructure:"cookie_name"`
	CookieSecure   bool     `mapstructure:"cookie_secure"`
	CSRFKey        string   `mapstructure:"csrf_key"` // 32 bytes; CSRF protection is off when empty
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	RateLimit      float64  `mapstructure:"rate_limit"` // requests per second per browser session
	RateBurst      int      `mapstructure:"rate_burst"`
}

// BackendConfig points at the FitSphere REST and realtime services.
type BackendConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	RealtimeURL   string        `mapstructure:"realtime_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
}

// PaymentConfig fills the checkout widget options.
type PaymentConfig struct {
	KeyID        string `mapstructure:"key_id"`
	MerchantName string `mapstructure:"merchant_name"`
	Currency     string `mapstructure:"currency"`
	ThemeColor   string `mapstructure:"theme_color"`
}

// StateConfig selects where per-browser state is persisted.
type StateConfig struct {
	Driver  string        `mapstructure:"driver"` // memory, redis or mongo
	TTL     time.Duration `mapstructure:"ttl"`
	SealKey string        `mapstructure:"seal_key"` // hex encoded 32 byte key
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type S3Config struct {
	Endpoint        string        `mapstructure:"endpoint"`
	Region          string        `mapstructure:"region"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	BucketName      string        `mapstructure:"bucket_name"`
	PresignExpiry   time.Duration `mapstructure:"presign_expiry"`
}

// Enabled is true when exports should be archived to a bucket.
func (c S3Config) Enabled() bool {
	return c.BucketName != ""
}

// LocationConfig is the fallback point of the location picker.
type LocationConfig struct {
	DefaultLatitude  float64 `mapstructure:"default_latitude"`
	DefaultLongitude float64 `mapstructure:"default_longitude"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS, backend.base_url -> BACKEND_BASE_URL
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.cookie_name", "fitsphere_sid")
	v.SetDefault("server.cookie_secure", false)
	v.SetDefault("server.csrf_key", "")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.rate_limit", 10)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("backend.base_url", "http://localhost:8001")
	v.SetDefault("backend.realtime_url", "")
	v.SetDefault("backend.timeout", "15s")
	v.SetDefault("backend.max_reconnects", 5)
	v.SetDefault("payment.key_id", "")
	v.SetDefault("payment.merchant_name", "FitSphere")
	v.SetDefault("payment.currency", "INR")
	v.SetDefault("payment.theme_color", "#7c3aed")
	v.SetDefault("state.driver", "memory")
	v.SetDefault("state.ttl", "720h")
	v.SetDefault("state.seal_key", "")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "fitsphere_dashboard")
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.presign_expiry", "15m")
	v.SetDefault("location.default_latitude", 28.6139)
	v.SetDefault("location.default_longitude", 77.2090)

	err = v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		// No file: defaults and env vars only.
		err = nil
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}

	// The realtime service lives next to the REST API unless told otherwise.
	if config.Backend.RealtimeURL == "" {
		config.Backend.RealtimeURL = DeriveRealtimeURL(config.Backend.BaseURL)
	}

	return config, nil
}

// DeriveRealtimeURL turns http(s)://host into ws(s)://host/ws.
func DeriveRealtimeURL(baseURL string) string {
	u := strings.TrimRight(baseURL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/ws"
}
