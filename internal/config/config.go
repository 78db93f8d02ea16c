package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	PublicDir       string
	SecureCookie    bool

	MongoURI         string
	MongoDBName      string
	SessionRetention time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CatalogDBPath         string
	CatalogMigrationsPath string

	PaystackBaseURL       string
	PaystackSecretKey     string
	PaystackCallbackURL   string
	PaystackCustomerEmail string
	GatewayTimeout        time.Duration
	FrontendURL           string

	KafkaBrokers     []string
	OrderEventsTopic string

	LogLevel       string
	TracingEnabled bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_PORT", "3000")
	v.SetDefault("REQUEST_TIMEOUT", "15s")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("PUBLIC_DIR", "")
	v.SetDefault("SECURE_COOKIE", false)

	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB_NAME", "quickbites")
	v.SetDefault("SESSION_RETENTION", "0s")

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("CATALOG_DB_PATH", "catalog.db")
	v.SetDefault("CATALOG_MIGRATIONS_PATH", "internal/catalog/migrations")

	v.SetDefault("PAYSTACK_BASE_URL", "https://api.paystack.co")
	v.SetDefault("PAYSTACK_SECRET_KEY", "")
	v.SetDefault("PAYSTACK_CALLBACK_URL", "http://localhost:3000/paystack/callback")
	v.SetDefault("PAYSTACK_CUSTOMER_EMAIL", "customer@quickbites.local")
	v.SetDefault("GATEWAY_TIMEOUT", "10s")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")

	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("ORDER_EVENTS_TOPIC", "quickbites.orders")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TRACING_ENABLED", false)
}

// Load reads defaults, then the file named by CONFIG_FILE if set, then the environment.
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		HTTPPort:        v.GetString("HTTP_PORT"),
		RequestTimeout:  v.GetDuration("REQUEST_TIMEOUT"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		PublicDir:       v.GetString("PUBLIC_DIR"),
		SecureCookie:    v.GetBool("SECURE_COOKIE"),

		MongoURI:         v.GetString("MONGO_URI"),
		MongoDBName:      v.GetString("MONGO_DB_NAME"),
		SessionRetention: v.GetDuration("SESSION_RETENTION"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		CatalogDBPath:         v.GetString("CATALOG_DB_PATH"),
		CatalogMigrationsPath: v.GetString("CATALOG_MIGRATIONS_PATH"),

		PaystackBaseURL:       v.GetString("PAYSTACK_BASE_URL"),
		PaystackSecretKey:     v.GetString("PAYSTACK_SECRET_KEY"),
		PaystackCallbackURL:   v.GetString("PAYSTACK_CALLBACK_URL"),
		PaystackCustomerEmail: v.GetString("PAYSTACK_CUSTOMER_EMAIL"),
		GatewayTimeout:        v.GetDuration("GATEWAY_TIMEOUT"),
		FrontendURL:           v.GetString("FRONTEND_URL"),

		KafkaBrokers:     splitList(v.GetString("KAFKA_BROKERS")),
		OrderEventsTopic: v.GetString("ORDER_EVENTS_TOPIC"),

		LogLevel:       v.GetString("LOG_LEVEL"),
		TracingEnabled: v.GetBool("TRACING_ENABLED"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT must be set")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.GatewayTimeout <= 0 {
		return fmt.Errorf("GATEWAY_TIMEOUT must be positive, got %s", c.GatewayTimeout)
	}
	if c.SessionRetention < 0 {
		return fmt.Errorf("SESSION_RETENTION must not be negative, got %s", c.SessionRetention)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
