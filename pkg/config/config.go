package config

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Cookie        CookieConfig
	CORS          CORSConfig
	Idempotency   IdempotencyConfig
	FeatureFlags  FeatureFlagsConfig
	Maintenance   MaintenanceConfig
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
	Env          string `envconfig:"GRIEVANCE_APP_ENV" required:"true"`
	Port         string `envconfig:"GRIEVANCE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GRIEVANCE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GRIEVANCE_LOG_WARN_STACK" default:"false"`
	ServiceName  string `envconfig:"GRIEVANCE_SERVICE_NAME" default:"grievance-api"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev) || strings.EqualFold(a.Env, "development")
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type DBConfig struct {
	DSN string `envconfig:"GRIEVANCE_DB_DSN"`

	LegacyHost     string `envconfig:"GRIEVANCE_DB_HOST"`
	LegacyPort     int    `envconfig:"GRIEVANCE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GRIEVANCE_DB_USER"`
	LegacyPassword string `envconfig:"GRIEVANCE_DB_PASSWORD"`
	LegacyName     string `envconfig:"GRIEVANCE_DB_NAME"`
	LegacySSLMode  string `envconfig:"GRIEVANCE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GRIEVANCE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GRIEVANCE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GRIEVANCE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GRIEVANCE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"GRIEVANCE_DB_SLOW_QUERY" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GRIEVANCE_REDIS_URL"`
	Address      string        `envconfig:"GRIEVANCE_REDIS_ADDR"`
	Password     string        `envconfig:"GRIEVANCE_REDIS_PASSWORD"`
	DB           int           `envconfig:"GRIEVANCE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GRIEVANCE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GRIEVANCE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GRIEVANCE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GRIEVANCE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GRIEVANCE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"GRIEVANCE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"GRIEVANCE_JWT_ISSUER" default:"grievance-portal"`
	ExpirationMinutes      int    `envconfig:"GRIEVANCE_JWT_EXPIRATION_MINUTES" default:"1440"`
	RefreshTokenTTLMinutes int    `envconfig:"GRIEVANCE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"GRIEVANCE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"GRIEVANCE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"GRIEVANCE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"GRIEVANCE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"GRIEVANCE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	SigninWindow      time.Duration `envconfig:"GRIEVANCE_AUTH_RATE_LIMIT_SIGNIN_WINDOW" default:"1m"`
	SigninEmailLimit  int           `envconfig:"GRIEVANCE_AUTH_RATE_LIMIT_SIGNIN_EMAIL_LIMIT" default:"5"`
	SigninIPLimit     int           `envconfig:"GRIEVANCE_AUTH_RATE_LIMIT_SIGNIN_IP_LIMIT" default:"20"`
	SignupWindow      time.Duration `envconfig:"GRIEVANCE_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupEmailLimit  int           `envconfig:"GRIEVANCE_AUTH_RATE_LIMIT_SIGNUP_EMAIL_LIMIT" default:"3"`
	SignupIPLimit     int           `envconfig:"GRIEVANCE_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

// CookieConfig controls the httpOnly session cookie set on signin/signup.
type CookieConfig struct {
	Name     string `envconfig:"GRIEVANCE_COOKIE_NAME" default:"token"`
	Domain   string `envconfig:"GRIEVANCE_COOKIE_DOMAIN"`
	Secure   bool   `envconfig:"GRIEVANCE_COOKIE_SECURE" default:"true"`
	SameSite string `envconfig:"GRIEVANCE_COOKIE_SAMESITE" default:"lax"`
}

// SameSiteMode maps the configured value onto net/http's enum.
func (c CookieConfig) SameSiteMode() http.SameSite {
	switch strings.ToLower(strings.TrimSpace(c.SameSite)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"GRIEVANCE_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"GRIEVANCE_IDEMPOTENCY_TTL" default:"24h"`
}

// MaintenanceConfig drives cmd/maintenance-worker.
type MaintenanceConfig struct {
	Interval              time.Duration `envconfig:"GRIEVANCE_MAINTENANCE_INTERVAL" default:"1h"`
	NotificationRetention time.Duration `envconfig:"GRIEVANCE_NOTIFICATION_RETENTION" default:"720h"`
	LockTTL               time.Duration `envconfig:"GRIEVANCE_MAINTENANCE_LOCK_TTL" default:"30m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GRIEVANCE_AUTO_MIGRATE" default:"false"`
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
