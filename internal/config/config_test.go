package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vals map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vals[k]
		return v, ok
	}
}

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Load(Source{
		LookupEnv: env(map[string]string{"SIGNUP_API_URL": "https://api.example.com/signup"}),
	})
	require.NoError(t, err)

	assert.Equal(t, &Config{
		APIURL:          "https://api.example.com/signup",
		ListenAddr:      ":8080",
		LogLevel:        "info",
		LogFormat:       "json",
		SessionTTL:      30 * time.Minute,
		SessionCapacity: 10000,
		DefaultLocale:   "en",
	}, cfg)
}

func TestLayering(t *testing.T) {
	file := write(t, "signupd.json", `{
		"api_url": "http://file.example.com",
		"listen_addr": ":9000",
		"log_format": "console",
		"session_ttl": "5m",
		"session_capacity": 50
	}`)
	dotenv := write(t, ".env", "SIGNUP_LISTEN_ADDR=:9100\nSIGNUP_DEFAULT_LOCALE=de\n")

	cfg, err := Load(Source{
		File:     file,
		EnvFiles: []string{dotenv, filepath.Join(t.TempDir(), "missing.env")},
		LookupEnv: env(map[string]string{
			"SIGNUP_LISTEN_ADDR":      ":9200",
			"SIGNUP_SESSION_CAPACITY": "75",
		}),
		Overrides: map[string]string{
			APIURLKey:   "https://flag.example.com",
			LogLevelKey: "",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "https://flag.example.com", cfg.APIURL)
	assert.Equal(t, ":9200", cfg.ListenAddr)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 75, cfg.SessionCapacity)
	assert.Equal(t, "de", cfg.DefaultLocale)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(Source{File: filepath.Join(t.TempDir(), "nope.json"), LookupEnv: env(nil)})
		assert.Error(t, err)
	})

	t.Run("malformed file", func(t *testing.T) {
		_, err := Load(Source{File: write(t, "bad.json", "{"), LookupEnv: env(nil)})
		assert.Error(t, err)
	})

	t.Run("missing api url", func(t *testing.T) {
		_, err := Load(Source{LookupEnv: env(nil)})
		assert.ErrorIs(t, err, ErrInvalid)
	})
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			APIURL:          "https://api.example.com",
			ListenAddr:      ":8080",
			LogLevel:        "info",
			LogFormat:       "json",
			SessionTTL:      time.Minute,
			SessionCapacity: 1,
			DefaultLocale:   "en",
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"relative url", func(c *Config) { c.APIURL = "/signup" }, APIURLKey},
		{"ftp url", func(c *Config) { c.APIURL = "ftp://example.com" }, APIURLKey},
		{"no listen addr", func(c *Config) { c.ListenAddr = "" }, ListenAddrKey},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, LogFormatKey},
		{"ttl", func(c *Config) { c.SessionTTL = 0 }, SessionTTLKey},
		{"capacity", func(c *Config) { c.SessionCapacity = -1 }, SessionCapacityKey},
		{"locale", func(c *Config) { c.DefaultLocale = "not a locale!" }, DefaultLocaleKey},
		{"short key", func(c *Config) { c.PropsKey = "abcd" }, PropsKeyKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	cfg := valid()
	assert.NoError(t, cfg.Validate())
}

func TestKey(t *testing.T) {
	cfg := Config{}
	key, err := cfg.Key()
	require.NoError(t, err)
	assert.Nil(t, key)

	cfg.PropsKey = strings.Repeat("ab", 32)
	key, err = cfg.Key()
	require.NoError(t, err)
	assert.Len(t, key, 32)
	assert.Equal(t, byte(0xab), key[0])
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "SIGNUP_API_URL", EnvName(APIURLKey))
}
