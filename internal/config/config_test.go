package config

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 5000, cfg.HTTP.Port)
	assert.Equal(t, "auto", cfg.Storage.Mode)
	assert.Equal(t, "file", cfg.Storage.Fallback)
	assert.Equal(t, "", cfg.Database.URI)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window())
	assert.Equal(t, 100, cfg.RateLimit.MaxRequests)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "smtp.gmail.com", cfg.Mail.Host)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.False(t, cfg.Mail.Configured())
	assert.Equal(t, "async", cfg.Notify.Mode)
}

func TestLoad_PlainEnvAliases(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("NODE_ENV", "Production")
	t.Setenv("DB_URI", "mongodb://localhost:27017/legalnest")
	t.Setenv("SMTP_USER", "ops@legalnest.com")
	t.Setenv("SMTP_PASS", "secret")
	t.Setenv("ALLOWED_ORIGINS", "https://legalnest.com, https://www.legalnest.com")
	t.Setenv("RATE_LIMIT_WINDOW_MS", "60000")
	t.Setenv("RATE_LIMIT_MAX_REQUESTS", "5")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.HTTP.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "mongodb://localhost:27017/legalnest", cfg.Database.URI)
	assert.True(t, cfg.Mail.Configured())
	assert.Equal(t, "ops@legalnest.com", cfg.Mail.To, "recipient defaults to the smtp user")
	assert.Equal(t, []string{"https://legalnest.com", "https://www.legalnest.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window())
	assert.Equal(t, 5, cfg.RateLimit.MaxRequests)
}

func TestLoad_PrefixedEnvWins(t *testing.T) {
	t.Setenv("LEGALNEST_HTTP_PORT", "9090")
	t.Setenv("PORT", "8081")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTP.Port)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  mode: memory\nnotify:\n  workers: 4\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Mode)
	assert.Equal(t, 4, cfg.Notify.Workers)
	assert.Equal(t, 256, cfg.Notify.QueueSize)
}

func TestLoad_TrustedProxies(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.HTTP.TrustedProxies)

	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.10")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.10"}, cfg.HTTP.TrustedProxies)

	nets, err := cfg.HTTP.TrustedNets()
	require.NoError(t, err)
	require.Len(t, nets, 2)
	assert.True(t, nets[0].Contains(net.ParseIP("10.20.30.40")))
	assert.True(t, nets[1].Contains(net.ParseIP("192.0.2.10")))
	assert.False(t, nets[1].Contains(net.ParseIP("192.0.2.11")))
}

func TestLoad_MissingFileIgnored(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
}

func TestValidate(t *testing.T) {
	base, err := Load("")
	require.NoError(t, err)

	cases := map[string]func(c *Config){
		"bad storage mode":      func(c *Config) { c.Storage.Mode = "s3" },
		"bad fallback":          func(c *Config) { c.Storage.Fallback = "mysql" },
		"mysql without uri":     func(c *Config) { c.Storage.Mode = "mysql" },
		"kafka without brokers": func(c *Config) { c.Notify.Mode = "kafka" },
		"zero window":           func(c *Config) { c.RateLimit.WindowMs = 0 },
		"zero max":              func(c *Config) { c.RateLimit.MaxRequests = 0 },
		"bad port":              func(c *Config) { c.HTTP.Port = 70000 },
		"bad trusted proxy":     func(c *Config) { c.HTTP.TrustedProxies = []string{"10.0.0.0/33"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
