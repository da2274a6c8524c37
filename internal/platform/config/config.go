package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Consent store backends.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config is the full runtime configuration of the service.
type Config struct {
	Env       string
	Server    Server
	Logging   Logging
	Consent   Consent
	Redis     RedisConfig
	Postgres  PostgresConfig
	Mail      Mail
	RateLimit RateLimit
	Kafka     Kafka
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr              string
	PublicBaseURL     string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

type Logging struct {
	Level  string
	Format string
}

// Consent configures the consent store and its maintenance.
type Consent struct {
	Store          string
	SweepInterval  time.Duration
	AddressHashKey string
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type PostgresConfig struct {
	URL          string
	MaxOpenConns int
}

// Mail holds outbound SMTP settings. Missing credentials switch the service
// to the sandbox transport.
type Mail struct {
	Host            string
	Port            int
	User            string
	Password        string
	From            string
	ContactTo       string
	VisitorTo       string
	SandboxCapacity int
}

// Configured reports whether real SMTP delivery is possible.
func (m Mail) Configured() bool {
	return m.Host != "" && m.User != "" && m.Password != "" && m.From != ""
}

type RateLimit struct {
	Disabled bool
	RPS      float64
	Burst    int
	IdleTTL  time.Duration
}

type Kafka struct {
	Brokers    []string
	AuditTopic string
}

// Production reports whether cookies must be marked Secure.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// Load reads configuration from the environment and, when configFile is set,
// from a YAML file. Environment variables win over the file.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvVariables(v)

	if configFile != "" {
		v.SetConfigType("yaml")
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		Env: v.GetString("env"),
		Server: Server{
			Addr:              v.GetString("server.addr"),
			PublicBaseURL:     strings.TrimRight(v.GetString("server.public_base_url"), "/"),
			ReadHeaderTimeout: v.GetDuration("server.read_header_timeout"),
			ShutdownTimeout:   v.GetDuration("server.shutdown_timeout"),
		},
		Logging: Logging{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Consent: Consent{
			Store:          strings.ToLower(v.GetString("consent.store")),
			SweepInterval:  v.GetDuration("consent.sweep_interval"),
			AddressHashKey: v.GetString("consent.address_hash_key"),
		},
		Redis: RedisConfig{
			URL:          v.GetString("redis.url"),
			PoolSize:     v.GetInt("redis.pool_size"),
			MinIdleConns: v.GetInt("redis.min_idle_conns"),
			DialTimeout:  v.GetDuration("redis.dial_timeout"),
			ReadTimeout:  v.GetDuration("redis.read_timeout"),
			WriteTimeout: v.GetDuration("redis.write_timeout"),
		},
		Postgres: PostgresConfig{
			URL:          v.GetString("postgres.url"),
			MaxOpenConns: v.GetInt("postgres.max_open_conns"),
		},
		Mail: Mail{
			Host:            v.GetString("mail.host"),
			Port:            v.GetInt("mail.port"),
			User:            v.GetString("mail.user"),
			Password:        v.GetString("mail.password"),
			From:            v.GetString("mail.from"),
			ContactTo:       v.GetString("mail.contact_to"),
			VisitorTo:       v.GetString("mail.visitor_to"),
			SandboxCapacity: v.GetInt("mail.sandbox_capacity"),
		},
		RateLimit: RateLimit{
			Disabled: v.GetBool("ratelimit.disabled"),
			RPS:      v.GetFloat64("ratelimit.rps"),
			Burst:    v.GetInt("ratelimit.burst"),
			IdleTTL:  v.GetDuration("ratelimit.idle_ttl"),
		},
		Kafka: Kafka{
			Brokers:    splitList(v.GetString("kafka.brokers")),
			AuditTopic: v.GetString("kafka.audit_topic"),
		},
	}
	if cfg.Mail.From == "" {
		cfg.Mail.From = cfg.Mail.User
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	switch c.Consent.Store {
	case StoreMemory:
	case StoreRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("consent store %q requires REDIS_URL", c.Consent.Store)
		}
	case StorePostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("consent store %q requires DATABASE_URL", c.Consent.Store)
		}
	default:
		return fmt.Errorf("unknown consent store %q", c.Consent.Store)
	}
	if c.Consent.SweepInterval <= 0 {
		return fmt.Errorf("consent sweep interval must be positive")
	}
	if c.Production() && c.Consent.AddressHashKey == defaultAddressHashKey {
		return fmt.Errorf("ADDRESS_HASH_KEY must be set in production")
	}
	if c.Mail.Port <= 0 || c.Mail.Port > 65535 {
		return fmt.Errorf("invalid mail port %d", c.Mail.Port)
	}
	if !c.RateLimit.Disabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}
	if c.RateLimit.IdleTTL <= 0 {
		return fmt.Errorf("rate limit idle ttl must be positive")
	}
	return nil
}

const defaultAddressHashKey = "dev-address-key-change-in-production"

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.public_base_url", "http://localhost:8080")
	v.SetDefault("server.read_header_timeout", 5*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("consent.store", StoreMemory)
	v.SetDefault("consent.sweep_interval", 24*time.Hour)
	v.SetDefault("consent.address_hash_key", defaultAddressHashKey)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	v.SetDefault("postgres.url", "")
	v.SetDefault("postgres.max_open_conns", 5)

	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.user", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.contact_to", "owner@example.com")
	v.SetDefault("mail.visitor_to", "owner@example.com")
	v.SetDefault("mail.sandbox_capacity", 50)

	v.SetDefault("ratelimit.disabled", false)
	v.SetDefault("ratelimit.rps", 0.5)
	v.SetDefault("ratelimit.burst", 5)
	v.SetDefault("ratelimit.idle_ttl", 10*time.Minute)

	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.audit_topic", "portfolio.audit")
}

// bindEnvVariables keeps the environment names the site was deployed with.
func bindEnvVariables(v *viper.Viper) {
	_ = v.BindEnv("env", "APP_ENV")
	_ = v.BindEnv("server.addr", "ADDR")
	_ = v.BindEnv("server.public_base_url", "PUBLIC_BASE_URL")
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("logging.format", "LOG_FORMAT")
	_ = v.BindEnv("consent.store", "CONSENT_STORE")
	_ = v.BindEnv("consent.sweep_interval", "SWEEP_INTERVAL")
	_ = v.BindEnv("consent.address_hash_key", "ADDRESS_HASH_KEY")
	_ = v.BindEnv("redis.url", "REDIS_URL")
	_ = v.BindEnv("postgres.url", "DATABASE_URL")
	_ = v.BindEnv("mail.host", "EMAIL_HOST")
	_ = v.BindEnv("mail.port", "EMAIL_PORT")
	_ = v.BindEnv("mail.user", "EMAIL_USER")
	_ = v.BindEnv("mail.password", "EMAIL_PASS")
	_ = v.BindEnv("mail.from", "EMAIL_FROM")
	_ = v.BindEnv("mail.contact_to", "CONTACT_TO")
	_ = v.BindEnv("mail.visitor_to", "VISITOR_NOTIFY_TO")
	_ = v.BindEnv("ratelimit.disabled", "RATE_LIMIT_DISABLED")
	_ = v.BindEnv("ratelimit.rps", "RATE_LIMIT_RPS")
	_ = v.BindEnv("ratelimit.burst", "RATE_LIMIT_BURST")
	_ = v.BindEnv("ratelimit.idle_ttl", "RATE_LIMIT_IDLE_TTL")
	_ = v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	_ = v.BindEnv("kafka.audit_topic", "KAFKA_AUDIT_TOPIC")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
