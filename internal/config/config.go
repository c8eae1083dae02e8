// Package config loads signupd settings.
//
// Sources are layered, later ones winning: built-in defaults, an optional
// JSON file, .env files, SIGNUP_* environment variables, and explicit
// overrides (command-line flags).
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"golang.org/x/text/language"
)

// Keys for the supported settings.
const (
	APIURLKey          = "api_url"
	ListenAddrKey      = "listen_addr"
	PropsKeyKey        = "props_key"
	LogLevelKey        = "log_level"
	LogFormatKey       = "log_format"
	SessionTTLKey      = "session_ttl"
	SessionCapacityKey = "session_capacity"
	DefaultLocaleKey   = "default_locale"

	// EnvPrefix is prepended to the upper-cased key to form an environment
	// variable name, e.g. SIGNUP_API_URL.
	EnvPrefix = "SIGNUP_"
)

var keys = []string{
	APIURLKey, ListenAddrKey, PropsKeyKey, LogLevelKey, LogFormatKey,
	SessionTTLKey, SessionCapacityKey, DefaultLocaleKey,
}

var defaults = []byte(`{
	"listen_addr": ":8080",
	"log_level": "info",
	"log_format": "json",
	"session_ttl": "30m",
	"session_capacity": 10000,
	"default_locale": "en"
}`)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the resolved service configuration.
type Config struct {
	APIURL          string        `koanf:"api_url"`
	ListenAddr      string        `koanf:"listen_addr"`
	PropsKey        string        `koanf:"props_key"`
	LogLevel        string        `koanf:"log_level"`
	LogFormat       string        `koanf:"log_format"`
	SessionTTL      time.Duration `koanf:"session_ttl"`
	SessionCapacity int           `koanf:"session_capacity"`
	DefaultLocale   string        `koanf:"default_locale"`
}

// Source selects where Load reads from.
type Source struct {
	// File is an optional JSON config file.
	File string
	// EnvFiles are .env files; missing ones are skipped.
	EnvFiles []string
	// Overrides are applied last. Empty strings are ignored.
	Overrides map[string]string
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load resolves the configuration from src and validates it.
func Load(src Source) (*Config, error) {
	k := koanf.New(".")
	parser := json.Parser()

	if err := k.Load(rawbytes.Provider(defaults), parser); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if src.File != "" {
		raw, err := os.ReadFile(src.File)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(raw), parser); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", src.File, err)
		}
	}

	dotenv, err := readEnvFiles(src.EnvFiles)
	if err != nil {
		return nil, err
	}
	lookup := src.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, key := range keys {
		name := EnvName(key)
		v, ok := lookup(name)
		if !ok {
			v, ok = dotenv[name]
		}
		if ok {
			if err := k.Set(key, v); err != nil {
				return nil, fmt.Errorf("setting %s: %w", key, err)
			}
		}
	}

	for key, v := range src.Overrides {
		if v == "" {
			continue
		}
		if err := k.Set(key, v); err != nil {
			return nil, fmt.Errorf("setting %s: %w", key, err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// EnvName returns the environment variable for key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(key)
}

func readEnvFiles(files []string) (map[string]string, error) {
	out := map[string]string{}
	for _, f := range files {
		vals, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		for k, v := range vals {
			if _, seen := out[k]; !seen {
				out[k] = v
			}
		}
	}
	return out, nil
}

// Validate checks the resolved values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	switch {
	case c.APIURL == "":
		return fmt.Errorf("%w: %s is required", ErrInvalid, APIURLKey)
	case err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "":
		return fmt.Errorf("%w: %s must be an absolute http(s) URL, got %q", ErrInvalid, APIURLKey, c.APIURL)
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalid, ListenAddrKey)
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("%w: %s must be json or console, got %q", ErrInvalid, LogFormatKey, c.LogFormat)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalid, SessionTTLKey)
	}
	if c.SessionCapacity <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalid, SessionCapacityKey)
	}
	if _, err := language.Parse(c.DefaultLocale); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalid, DefaultLocaleKey, err)
	}
	if _, err := c.Key(); err != nil {
		return err
	}
	return nil
}

// Key decodes the props key. It returns nil when none is configured.
func (c *Config) Key() ([]byte, error) {
	if c.PropsKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.PropsKey)
	if err != nil || len(key) != 32 {
		return nil, fmt.Errorf("%w: %s must be 64 hex characters", ErrInvalid, PropsKeyKey)
	}
	return key, nil
}
