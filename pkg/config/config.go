package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = "VENDOR"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Site         SiteConfig
	Pricing      PricingConfig
	Checkout     CheckoutConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string   `envconfig:"VENDOR_APP_ENV" required:"true"`
	Port         string   `envconfig:"VENDOR_APP_PORT" default:"8080"`
	CORSOrigins  []string `envconfig:"VENDOR_CORS_ORIGINS"`
	LogLevel     string   `envconfig:"VENDOR_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"VENDOR_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"VENDOR_DB_DSN"`
	Driver string `envconfig:"VENDOR_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"VENDOR_DB_HOST"`
	Port     int    `envconfig:"VENDOR_DB_PORT" default:"5432"`
	User     string `envconfig:"VENDOR_DB_USER"`
	Password string `envconfig:"VENDOR_DB_PASSWORD"`
	Name     string `envconfig:"VENDOR_DB_NAME"`
	SSLMode  string `envconfig:"VENDOR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VENDOR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VENDOR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VENDOR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VENDOR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either VENDOR_DB_DSN or host/user/name must be set")
	}
	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	query := dsn.Query()
	query.Set("sslmode", d.SSLMode)
	dsn.RawQuery = query.Encode()
	d.DSN = dsn.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"VENDOR_REDIS_URL"`
	Address      string        `envconfig:"VENDOR_REDIS_ADDR"`
	Password     string        `envconfig:"VENDOR_REDIS_PASSWORD"`
	DB           int           `envconfig:"VENDOR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VENDOR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VENDOR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VENDOR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VENDOR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VENDOR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"VENDOR_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"VENDOR_JWT_ISSUER" default:"vendorhub"`
	ExpirationMinutes int    `envconfig:"VENDOR_JWT_EXPIRATION_MINUTES" default:"60"`
	SessionTTLMinutes int    `envconfig:"VENDOR_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the server-side session lifetime.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"VENDOR_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"VENDOR_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"VENDOR_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"VENDOR_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"VENDOR_ARGON_KEY_LEN" default:"32"`
}

// SiteConfig names the tenant used when a request does not carry an explicit
// site header. Site scope is always passed through queries, never held as
// ambient state.
type SiteConfig struct {
	DefaultDomain string `envconfig:"VENDOR_SITE_DEFAULT_DOMAIN" default:"localhost"`
}

type PricingConfig struct {
	// TaxRate applies to order items whose product carries a taxable
	// classification, e.g. "0.0825" for 8.25%.
	TaxRate         string `envconfig:"VENDOR_TAX_RATE" default:"0"`
	DefaultCurrency string `envconfig:"VENDOR_DEFAULT_CURRENCY" default:"usd"`
}

// TaxRateDecimal parses the configured tax rate, falling back to zero on
// malformed input.
func (p PricingConfig) TaxRateDecimal() decimal.Decimal {
	rate, err := decimal.NewFromString(strings.TrimSpace(p.TaxRate))
	if err != nil || rate.IsNegative() {
		return decimal.Zero
	}
	return rate
}

type CheckoutConfig struct {
	PaymentProvider string        `envconfig:"VENDOR_PAYMENT_PROVIDER" default:"sandbox"`
	CartLockTTL     time.Duration `envconfig:"VENDOR_CART_LOCK_TTL" default:"10s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"VENDOR_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"VENDOR_AUTO_MIGRATE" default:"false"`
}
