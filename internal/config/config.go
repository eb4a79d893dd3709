package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lightfoot-dev/idbroker/internal/identity"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultListenAddr    = ":8080"
	DefaultAccessTTL     = 24 * time.Hour
	DefaultRefreshTTL    = 30 * 24 * time.Hour
	DefaultRateBurst     = 20
	DefaultRatePerSecond = 10
	DefaultMaxBodyBytes  = 1 << 20
)

// OIDCProvider holds the OAuth2/OIDC client settings for one upstream realm.
type OIDCProvider struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Config is the process configuration, read from IDBROKER_* environment
// variables.
type Config struct {
	ListenAddr       string
	DatabaseDSN      string
	RefreshTokenSalt string

	CookieDomain string
	CookieSecure bool

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	Providers       map[identity.Provider]OIDCProvider
	SAMLMetadataURL string

	RateBurst     int
	RatePerSecond int
	MaxBodyBytes  int64
}

// providerEnvNames maps each provider to its environment variable infix.
var providerEnvNames = map[identity.Provider]string{
	identity.ProviderKeycloakLocal:  "LOCAL",
	identity.ProviderKeycloakRetail: "RETAIL",
	identity.ProviderKeycloakSAML:   "SAML",
}

// Load reads the configuration from the environment. The refresh token salt
// is mandatory; a provider is enabled by setting its issuer and must then be
// fully configured.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:       envOrDefault("IDBROKER_LISTEN_ADDR", DefaultListenAddr),
		DatabaseDSN:      os.Getenv("IDBROKER_PG_DSN"),
		RefreshTokenSalt: os.Getenv("IDBROKER_REFRESH_TOKEN_SALT"),
		CookieDomain:     os.Getenv("IDBROKER_COOKIE_DOMAIN"),
		CookieSecure:     envBool("IDBROKER_COOKIE_SECURE", true),
		SAMLMetadataURL:  os.Getenv("IDBROKER_SAML_METADATA_URL"),
		Providers:        make(map[identity.Provider]OIDCProvider),
		RateBurst:        envInt("IDBROKER_RATE_BURST", DefaultRateBurst),
		RatePerSecond:    envInt("IDBROKER_RATE_PER_SECOND", DefaultRatePerSecond),
		MaxBodyBytes:     int64(envInt("IDBROKER_MAX_BODY_BYTES", DefaultMaxBodyBytes)),
	}

	if strings.TrimSpace(cfg.RefreshTokenSalt) == "" {
		return nil, fmt.Errorf("config: IDBROKER_REFRESH_TOKEN_SALT is required")
	}

	var err error
	if cfg.AccessTTL, err = envDuration("IDBROKER_ACCESS_TTL", DefaultAccessTTL); err != nil {
		return nil, err
	}
	if cfg.RefreshTTL, err = envDuration("IDBROKER_REFRESH_TTL", DefaultRefreshTTL); err != nil {
		return nil, err
	}

	for provider, infix := range providerEnvNames {
		p := OIDCProvider{
			Issuer:       os.Getenv("IDBROKER_OIDC_" + infix + "_ISSUER"),
			ClientID:     os.Getenv("IDBROKER_OIDC_" + infix + "_CLIENT_ID"),
			ClientSecret: os.Getenv("IDBROKER_OIDC_" + infix + "_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("IDBROKER_OIDC_" + infix + "_REDIRECT_URL"),
		}
		if p.Issuer == "" {
			continue
		}
		if p.ClientID == "" || p.ClientSecret == "" || p.RedirectURL == "" {
			return nil, fmt.Errorf("config: provider %s is enabled but not fully configured", provider)
		}
		cfg.Providers[provider] = p
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}
