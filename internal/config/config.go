// Package config loads application configuration from environment variables.
package config

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	ct "github.com/launchdarkly/go-configtypes"
	"golang.org/x/crypto/hkdf"
)

// ErrAPIURLMissing is returned by Load when PROFILEPANEL_API_URL is unset.
// The panel cannot do anything without the account service, so this is
// reported at startup instead of on the first request.
var ErrAPIURLMissing = errors.New("PROFILEPANEL_API_URL is required")

// hkdfInfo binds derived keys to their single use.
const hkdfInfo = "profilepanel credential store v1"

// Config holds the application configuration loaded from environment variables.
type Config struct {
	APIURL         *url.URL
	ListenAddr     string
	DBPath         string
	SecretKey      string
	RequestTimeout time.Duration
	LoginInterval  time.Duration
	LoginBurst     int
	LogLevel       string
	LogFormat      string
}

// Load reads configuration from environment variables and returns a validated Config.
// PROFILEPANEL_API_URL is required and must be an absolute URL.
// Optional variables with defaults: PROFILEPANEL_LISTEN_ADDR (127.0.0.1:8080),
// PROFILEPANEL_DB_PATH (profilepanel.db), PROFILEPANEL_REQUEST_TIMEOUT (10s),
// PROFILEPANEL_LOGIN_RATE (1s), PROFILEPANEL_LOGIN_BURST (5),
// PROFILEPANEL_LOG_LEVEL (info), PROFILEPANEL_LOG_FORMAT (text).
// PROFILEPANEL_SECRET_KEY is optional; without it the credential is stored unencrypted.
func Load() (*Config, error) {
	rawURL := strings.TrimSpace(os.Getenv("PROFILEPANEL_API_URL"))
	if rawURL == "" {
		return nil, ErrAPIURLMissing
	}
	apiURL, err := ct.NewOptURLAbsoluteFromString(rawURL)
	if err != nil {
		return nil, fmt.Errorf("PROFILEPANEL_API_URL has invalid value %q: %w", rawURL, err)
	}

	requestTimeout, err := durationEnv("PROFILEPANEL_REQUEST_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	loginInterval, err := durationEnv("PROFILEPANEL_LOGIN_RATE", time.Second)
	if err != nil {
		return nil, err
	}

	loginBurst := 5
	if v, ok := os.LookupEnv("PROFILEPANEL_LOGIN_BURST"); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("PROFILEPANEL_LOGIN_BURST must be a positive integer, got %q", v)
		}
		loginBurst = parsed
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("PROFILEPANEL_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "profilepanel.db"
	if v, ok := os.LookupEnv("PROFILEPANEL_DB_PATH"); ok {
		dbPath = v
	}

	logFormat := strings.ToLower(os.Getenv("PROFILEPANEL_LOG_FORMAT"))
	switch logFormat {
	case "":
		logFormat = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("PROFILEPANEL_LOG_FORMAT must be text or json, got %q", logFormat)
	}

	return &Config{
		APIURL:         apiURL.Get(),
		ListenAddr:     listenAddr,
		DBPath:         dbPath,
		SecretKey:      os.Getenv("PROFILEPANEL_SECRET_KEY"),
		RequestTimeout: requestTimeout,
		LoginInterval:  loginInterval,
		LoginBurst:     loginBurst,
		LogLevel:       os.Getenv("PROFILEPANEL_LOG_LEVEL"),
		LogFormat:      logFormat,
	}, nil
}

// EncryptionKey stretches SecretKey into a 32-byte AES-256 key with
// HKDF-SHA256. It returns nil when no secret is configured.
func (c *Config) EncryptionKey() ([]byte, error) {
	if c.SecretKey == "" {
		return nil, nil
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(c.SecretKey), nil, []byte(hkdfInfo)), key); err != nil {
		return nil, fmt.Errorf("derive encryption key: %w", err)
	}
	return key, nil
}

func durationEnv(name string, def time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return def, nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid duration %q: %w", name, v, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %q", name, v)
	}
	return parsed, nil
}
