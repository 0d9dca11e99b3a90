package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	FeatureFlags FeatureFlagsConfig
	Stripe       StripeConfig
	WooCommerce  WooCommerceConfig
	MondialRelay MondialRelayConfig
	Checkout     CheckoutConfig
	Wheel        WheelConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BOUTIQUE_APP_ENV" required:"true"`
	Port         string `envconfig:"BOUTIQUE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BOUTIQUE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BOUTIQUE_LOG_WARN_STACK" default:"false"`
	TimeZone     string `envconfig:"BOUTIQUE_TIMEZONE" default:"Europe/Paris"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Location resolves the configured business time zone, falling back to UTC.
func (a AppConfig) Location() *time.Location {
	if strings.TrimSpace(a.TimeZone) == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(a.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type ServiceConfig struct {
	Kind string `envconfig:"BOUTIQUE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"BOUTIQUE_DB_DSN"`
	Driver string `envconfig:"BOUTIQUE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BOUTIQUE_DB_HOST"`
	LegacyPort     int    `envconfig:"BOUTIQUE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BOUTIQUE_DB_USER"`
	LegacyPassword string `envconfig:"BOUTIQUE_DB_PASSWORD"`
	LegacyName     string `envconfig:"BOUTIQUE_DB_NAME"`
	LegacySSLMode  string `envconfig:"BOUTIQUE_DB_SSLMODE" default:"require"`

	MaxOpenConns    int           `envconfig:"BOUTIQUE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BOUTIQUE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BOUTIQUE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BOUTIQUE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BOUTIQUE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BOUTIQUE_REDIS_ADDR"`
	Password     string        `envconfig:"BOUTIQUE_REDIS_PASSWORD"`
	DB           int           `envconfig:"BOUTIQUE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BOUTIQUE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BOUTIQUE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BOUTIQUE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BOUTIQUE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BOUTIQUE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig carries the Supabase project JWT secret used to verify access tokens.
type JWTConfig struct {
	Secret   string `envconfig:"BOUTIQUE_JWT_SECRET" required:"true"`
	Issuer   string `envconfig:"BOUTIQUE_JWT_ISSUER"`
	Audience string `envconfig:"BOUTIQUE_JWT_AUDIENCE" default:"authenticated"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"BOUTIQUE_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BOUTIQUE_AUTO_MIGRATE" default:"false"`
}

type StripeConfig struct {
	APIKey   string `envconfig:"BOUTIQUE_STRIPE_API_KEY"`
	Env      string `envconfig:"BOUTIQUE_STRIPE_ENV" default:"test"`
	Currency string `envconfig:"BOUTIQUE_STRIPE_CURRENCY" default:"eur"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type WooCommerceConfig struct {
	BaseURL        string        `envconfig:"BOUTIQUE_WOOCOMMERCE_BASE_URL" required:"true"`
	ConsumerKey    string        `envconfig:"BOUTIQUE_WOOCOMMERCE_CONSUMER_KEY" required:"true"`
	ConsumerSecret string        `envconfig:"BOUTIQUE_WOOCOMMERCE_CONSUMER_SECRET" required:"true"`
	Timeout        time.Duration `envconfig:"BOUTIQUE_WOOCOMMERCE_TIMEOUT" default:"15s"`
}

type MondialRelayConfig struct {
	BaseURL string        `envconfig:"BOUTIQUE_MONDIAL_RELAY_BASE_URL"`
	APIKey  string        `envconfig:"BOUTIQUE_MONDIAL_RELAY_API_KEY"`
	Timeout time.Duration `envconfig:"BOUTIQUE_MONDIAL_RELAY_TIMEOUT" default:"10s"`
}

type CheckoutConfig struct {
	BatchWindow        time.Duration `envconfig:"BOUTIQUE_CHECKOUT_BATCH_WINDOW" default:"168h"`
	CardGateways       []string      `envconfig:"BOUTIQUE_CHECKOUT_CARD_GATEWAYS" default:"stripe,stripe_cc"`
	RelayMethodIDs     []string      `envconfig:"BOUTIQUE_CHECKOUT_RELAY_METHOD_IDS" default:"mondial_relay,mondialrelay,local_pickup_relay"`
	UserLockTTL        time.Duration `envconfig:"BOUTIQUE_CHECKOUT_USER_LOCK_TTL" default:"2m"`
	OptionsCacheTTL    time.Duration `envconfig:"BOUTIQUE_CHECKOUT_OPTIONS_CACHE_TTL" default:"1h"`
	OptionsMinRefresh  time.Duration `envconfig:"BOUTIQUE_CHECKOUT_OPTIONS_MIN_REFRESH" default:"30s"`
	CompensationBudget time.Duration `envconfig:"BOUTIQUE_CHECKOUT_COMPENSATION_TIMEOUT" default:"30s"`
}

type WheelConfig struct {
	SpinWindow  time.Duration `envconfig:"BOUTIQUE_WHEEL_SPIN_RATE_WINDOW" default:"1m"`
	SpinLimit   int           `envconfig:"BOUTIQUE_WHEEL_SPIN_RATE_LIMIT" default:"10"`
	SpinLockTTL time.Duration `envconfig:"BOUTIQUE_WHEEL_SPIN_LOCK_TTL" default:"15s"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"BOUTIQUE_CRON_INTERVAL" default:"15m"`
	LockTTL  time.Duration `envconfig:"BOUTIQUE_CRON_LOCK_TTL" default:"10m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
