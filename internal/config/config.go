package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaults []byte

// ---- Root ----

type Config struct {
	Env       string          `mapstructure:"env"`
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Mail      MailConfig      `mapstructure:"mail"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Security  SecurityConfig  `mapstructure:"security"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
}

// ---- Leaf structs ----

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"` // json | console
}

type HTTPConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	BodyLimit       string        `mapstructure:"body_limit"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// TrustedProxies lists the CIDRs (or single IPs) allowed to set
	// X-Forwarded-For. Empty means the peer address is the client.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

func (c HTTPConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// TrustedNets parses TrustedProxies; a bare IP is a single-host network.
func (c HTTPConfig) TrustedNets() ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(c.TrustedProxies))
	for _, p := range c.TrustedProxies {
		if !strings.Contains(p, "/") {
			ip := net.ParseIP(p)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", p)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(p)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", p, err)
		}
		nets = append(nets, n)
	}
	return nets, nil
}

type StorageConfig struct {
	Mode     string `mapstructure:"mode"`
	Fallback string `mapstructure:"fallback"`
	DataDir  string `mapstructure:"data_dir"`
}

type DatabaseConfig struct {
	URI             string        `mapstructure:"uri"`
	Name            string        `mapstructure:"name"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idletime"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout"`
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

type KafkaConfig struct {
	Brokers        []string      `mapstructure:"brokers"`
	Topic          string        `mapstructure:"topic"`
	GroupID        string        `mapstructure:"group_id"`
	MinBytes       int           `mapstructure:"min_bytes"`
	MaxBytes       int           `mapstructure:"max_bytes"`
	CommitInterval int           `mapstructure:"commit_interval_ms"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
}

type BreakerConfig struct {
	FailThreshold int `mapstructure:"fail_threshold" yaml:"fail_threshold"`
	OpenForMs     int `mapstructure:"open_for_ms"    yaml:"open_for_ms"`
}

type MailConfig struct {
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	User        string        `mapstructure:"user"`
	Password    string        `mapstructure:"password"`
	FromName    string        `mapstructure:"from_name"`
	To          string        `mapstructure:"to"` // defaults to User
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	Breaker     BreakerConfig `mapstructure:"breaker"`
}

// Configured reports whether SMTP credentials are present.
func (c MailConfig) Configured() bool {
	return c.User != "" && c.Password != ""
}

type NotifyConfig struct {
	Mode      string `mapstructure:"mode"`
	Workers   int    `mapstructure:"workers"`
	QueueSize int    `mapstructure:"queue_size"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	WindowMs    int    `mapstructure:"window_ms"`
	MaxRequests int    `mapstructure:"max_requests"`
	KeyPrefix   string `mapstructure:"key_prefix"`
}

func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowMs) * time.Millisecond
}

type AdminConfig struct {
	Token string `mapstructure:"token"`
}

// SecurityConfig is recognized for compatibility; nothing signs tokens yet.
type SecurityConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// envAliases maps config keys to the plain variable names deployments already use.
var envAliases = map[string][]string{
	"env":                     {"NODE_ENV", "APP_ENV"},
	"http.port":               {"PORT"},
	"database.uri":            {"DB_URI", "DATABASE_URL"},
	"mail.host":               {"SMTP_HOST"},
	"mail.port":               {"SMTP_PORT"},
	"mail.user":               {"SMTP_USER"},
	"mail.password":           {"SMTP_PASS"},
	"mail.to":                 {"NOTIFY_EMAIL"},
	"cors.allowed_origins":    {"ALLOWED_ORIGINS"},
	"rate_limit.window_ms":    {"RATE_LIMIT_WINDOW_MS"},
	"rate_limit.max_requests": {"RATE_LIMIT_MAX_REQUESTS"},
	"security.jwt_secret":     {"JWT_SECRET"},
	"redis.addr":              {"REDIS_ADDR"},
	"kafka.brokers":           {"KAFKA_BROKERS"},
	"admin.token":             {"ADMIN_TOKEN"},
	"storage.mode":            {"STORAGE_MODE"},
	"log.level":               {"LOG_LEVEL"},
	"http.trusted_proxies":    {"TRUSTED_PROXIES"},
}

const envPrefix = "LEGALNEST"

// Load reads embedded defaults, merges user YAML (if provided), loads .env and
// applies env overrides (LEGALNEST_* and the plain aliases above).
func Load(path string) (Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()

	// embedded defaults
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("read %s: %w", path, err)
			}
		}
	}

	// env override (LEGALNEST_HTTP_PORT, ...)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, aliases := range envAliases {
		names := append([]string{key, envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, aliases...)
		if err := v.BindEnv(names...); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.Storage.Mode = strings.ToLower(strings.TrimSpace(c.Storage.Mode))
	c.Storage.Fallback = strings.ToLower(strings.TrimSpace(c.Storage.Fallback))
	c.Notify.Mode = strings.ToLower(strings.TrimSpace(c.Notify.Mode))
	c.CORS.AllowedOrigins = splitList(c.CORS.AllowedOrigins)
	c.Kafka.Brokers = splitList(c.Kafka.Brokers)
	c.HTTP.TrustedProxies = splitList(c.HTTP.TrustedProxies)
	if c.Mail.To == "" {
		c.Mail.To = c.Mail.User
	}
}

// splitList trims entries and expands comma-separated values coming from env.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// Validate rejects values the server cannot start with. Missing database or
// SMTP settings are not errors; they select fallbacks.
func (c Config) Validate() error {
	switch c.Storage.Mode {
	case "auto", "mysql", "mongo", "file", "memory":
	default:
		return fmt.Errorf("invalid storage.mode %q", c.Storage.Mode)
	}
	switch c.Storage.Fallback {
	case "file", "memory":
	default:
		return fmt.Errorf("invalid storage.fallback %q", c.Storage.Fallback)
	}
	if (c.Storage.Mode == "mysql" || c.Storage.Mode == "mongo") && c.Database.URI == "" {
		return fmt.Errorf("storage.mode=%s requires database.uri", c.Storage.Mode)
	}
	switch c.Notify.Mode {
	case "async", "sync":
	case "kafka":
		if len(c.Kafka.Brokers) == 0 {
			return errors.New("notify.mode=kafka requires kafka.brokers")
		}
	default:
		return fmt.Errorf("invalid notify.mode %q", c.Notify.Mode)
	}
	if c.RateLimit.WindowMs <= 0 || c.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("invalid rate limit: window_ms=%d max_requests=%d", c.RateLimit.WindowMs, c.RateLimit.MaxRequests)
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http.port %d", c.HTTP.Port)
	}
	if _, err := c.HTTP.TrustedNets(); err != nil {
		return fmt.Errorf("http.trusted_proxies: %w", err)
	}
	return nil
}

func (c Config) IsProduction() bool { return c.Env == "production" }
