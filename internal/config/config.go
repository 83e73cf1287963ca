package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"

	ResetModeDev    = "dev"
	ResetModeSecure = "secure"
)

type Limit struct {
	Max    int
	Window time.Duration
}

type Config struct {
	Env       string
	Port      string
	Store     string
	MongoURI  string
	MongoDB   string
	JWTSecret string
	TokenTTL  time.Duration
	ResetMode string
	ResetTTL  time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	RedisAddr      string
	RabbitURL      string
	RabbitExchange string

	GlobalLimit Limit
	AuthLimit   Limit
	CORSOrigins []string
	DDEnabled   bool
}

// newViper loads .env (when present) and returns a viper bound to the process environment.
func newViper() *viper.Viper {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", "5000")
	v.SetDefault("STORE", StoreMongo)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB", "resellhub")
	v.SetDefault("TOKEN_TTL", "168h")
	v.SetDefault("RESET_MODE", ResetModeDev)
	v.SetDefault("RESET_TTL", "1h")
	v.SetDefault("RABBIT_EXCHANGE", "auth.events")
	v.SetDefault("RATE_LIMIT_GLOBAL_MAX", 1000)
	v.SetDefault("RATE_LIMIT_GLOBAL_WINDOW", "15m")
	v.SetDefault("RATE_LIMIT_AUTH_MAX", 100)
	v.SetDefault("RATE_LIMIT_AUTH_WINDOW", "15m")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("DD_ENABLED", false)
	return v
}

func Load() Config {
	v := newViper()
	return Config{
		Env:       v.GetString("APP_ENV"),
		Port:      v.GetString("APP_PORT"),
		Store:     strings.ToLower(v.GetString("STORE")),
		MongoURI:  v.GetString("MONGO_URI"),
		MongoDB:   v.GetString("MONGO_DB"),
		JWTSecret: v.GetString("JWT_SECRET"),
		TokenTTL:  v.GetDuration("TOKEN_TTL"),
		ResetMode: strings.ToLower(v.GetString("RESET_MODE")),
		ResetTTL:  v.GetDuration("RESET_TTL"),

		GoogleClientID:     v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  v.GetString("GOOGLE_REDIRECT_URL"),

		RedisAddr:      v.GetString("REDIS_ADDR"),
		RabbitURL:      v.GetString("RABBIT_URL"),
		RabbitExchange: v.GetString("RABBIT_EXCHANGE"),

		GlobalLimit: Limit{Max: v.GetInt("RATE_LIMIT_GLOBAL_MAX"), Window: v.GetDuration("RATE_LIMIT_GLOBAL_WINDOW")},
		AuthLimit:   Limit{Max: v.GetInt("RATE_LIMIT_AUTH_MAX"), Window: v.GetDuration("RATE_LIMIT_AUTH_WINDOW")},
		CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),
		DDEnabled:   v.GetBool("DD_ENABLED"),
	}
}

// Validate fails on settings the server cannot run safely without.
func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.Store {
	case StoreMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required when STORE=mongo"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE must be %q or %q, got %q", StoreMongo, StoreMemory, c.Store))
	}
	if c.ResetMode != ResetModeDev && c.ResetMode != ResetModeSecure {
		errs = append(errs, fmt.Errorf("RESET_MODE must be %q or %q", ResetModeDev, ResetModeSecure))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.ResetTTL <= 0 {
		errs = append(errs, errors.New("RESET_TTL must be positive"))
	}
	for name, l := range map[string]Limit{"global": c.GlobalLimit, "auth": c.AuthLimit} {
		if l.Max <= 0 || l.Window <= 0 {
			errs = append(errs, fmt.Errorf("%s rate limit must have positive max and window", name))
		}
	}
	return errors.Join(errs...)
}

func (c Config) GoogleEnabled() bool { return c.GoogleClientID != "" }

func (c Config) Production() bool { return c.Env == "production" }

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
