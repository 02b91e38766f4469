package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration required by the console process.
// All values must come from env (or env-file loaded by the process runner).
// No business logic should depend on raw environment variables.
type Config struct {
	App     AppConfig
	DB      DBConfig
	Redis   RedisConfig
	Session SessionConfig
	Gateway GatewayConfig
	Access  AccessConfig
	Login   LoginConfig
}

type AppConfig struct {
	Env  string
	Port int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// SSLMode is kept explicit for hosted-Postgres posture.
	// Accepts: disable, require, verify-ca, verify-full
	SSLMode string
}

type RedisConfig struct {
	Host string
	Port int
}

// SessionConfig controls token issuance and cookie persistence.
type SessionConfig struct {
	// Secret signs session tokens. Never logged, never transmitted.
	Secret string

	// TTL bounds both the token expiry and the cookie max-age.
	TTL time.Duration

	// CookieName is the base slot name; overflow fragments append ".1", ".2", ...
	CookieName string

	// ChunkSize is the per-cookie byte ceiling. Browsers cap a cookie at
	// 4096 bytes including name and attributes, so the default leaves
	// headroom for both.
	ChunkSize int
}

// GatewayConfig describes the remote operation-dispatch API.
type GatewayConfig struct {
	// BaseURL is the dispatch endpoint all operations are POSTed to.
	BaseURL string

	// Secret is the shared signing secret mixed into every call signature.
	// Never logged, never transmitted.
	Secret string

	// Channel is the fixed channel identifier carried in every envelope.
	Channel string

	Timeout time.Duration

	// RPS throttles outbound calls; 0 disables the limiter.
	RPS float64
}

// AccessConfig feeds the permission evaluator.
type AccessConfig struct {
	// AdminRoles are role names that bypass capability checks.
	// Compared case-insensitively.
	AdminRoles []string

	// DefaultCountry is used when neither the call nor the session
	// carries a country code.
	DefaultCountry string
}

type LoginConfig struct {
	MaxAttempts int
	Window      time.Duration
}

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	{
		n, err := mustInt("APP_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}

	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	{
		n, err := mustInt("DB_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.DB.Port = n
	}
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	{
		n, err := mustInt("REDIS_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Redis.Port = n
	}

	c.Session.Secret = os.Getenv("SESSION_SECRET")
	c.Session.TTL = mustDuration("SESSION_TTL")
	c.Session.CookieName = strings.TrimSpace(os.Getenv("SESSION_COOKIE"))
	c.Session.ChunkSize = optInt("SESSION_CHUNK_SIZE")

	c.Gateway.BaseURL = strings.TrimSpace(os.Getenv("GATEWAY_URL"))
	c.Gateway.Secret = os.Getenv("GATEWAY_SECRET")
	c.Gateway.Channel = strings.TrimSpace(os.Getenv("GATEWAY_CHANNEL"))
	c.Gateway.Timeout = mustDuration("GATEWAY_TIMEOUT")
	c.Gateway.RPS = optFloat("GATEWAY_RPS")

	c.Access.AdminRoles = splitList(os.Getenv("ADMIN_ROLES"))
	c.Access.DefaultCountry = strings.TrimSpace(os.Getenv("DEFAULT_COUNTRY"))

	c.Login.MaxAttempts = optInt("LOGIN_MAX_ATTEMPTS")
	c.Login.Window = mustDuration("LOGIN_WINDOW")

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	if c.DB.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
	}
	if c.DB.User == "" {
		errs = append(errs, errors.New("DB_USER is required"))
	}
	if c.DB.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if strings.TrimSpace(c.DB.SSLMode) == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_SSLMODE is required in production"))
		} else {
			// Local-friendly default; production must be explicit.
			c.DB.SSLMode = "disable"
		}
	}
	if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
		errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
	}

	if c.Redis.Host == "" {
		errs = append(errs, errors.New("REDIS_HOST is required"))
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}

	if c.Session.Secret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required"))
	}
	if c.Session.TTL <= 0 {
		c.Session.TTL = 12 * time.Hour
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "console_session"
	}
	if c.Session.ChunkSize <= 0 {
		c.Session.ChunkSize = 3000
	}

	if c.Gateway.BaseURL == "" {
		errs = append(errs, errors.New("GATEWAY_URL is required"))
	} else if u, err := url.Parse(c.Gateway.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("GATEWAY_URL must be an absolute URL, got %q", c.Gateway.BaseURL))
	} else if c.IsProduction() && u.Scheme != "https" {
		errs = append(errs, errors.New("GATEWAY_URL must use https in production"))
	}
	if c.Gateway.Secret == "" {
		errs = append(errs, errors.New("GATEWAY_SECRET is required"))
	}
	if c.Gateway.Channel == "" {
		c.Gateway.Channel = "admin"
	}
	if c.Gateway.Timeout <= 0 {
		c.Gateway.Timeout = 15 * time.Second
	}
	if c.Gateway.RPS < 0 {
		errs = append(errs, fmt.Errorf("GATEWAY_RPS must be >= 0, got %v", c.Gateway.RPS))
	}

	if len(c.Access.AdminRoles) == 0 {
		c.Access.AdminRoles = []string{"super admin"}
	}
	if c.Access.DefaultCountry == "" {
		c.Access.DefaultCountry = "TH"
	}

	if c.Login.MaxAttempts <= 0 {
		c.Login.MaxAttempts = 5
	}
	if c.Login.Window <= 0 {
		c.Login.Window = 10 * time.Minute
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

// TransportSecure reports whether session cookies must require HTTPS.
// Only local development is exempt.
func (c Config) TransportSecure() bool {
	return c.App.Env != "local" && c.App.Env != "dev"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func mustInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

// optInt returns 0 when the variable is unset or unparseable;
// defaults are applied in Validate().
func optInt(key string) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func optFloat(key string) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

func mustDuration(key string) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func appendParseErr(errs []error, n int, err error) (int, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return n, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
