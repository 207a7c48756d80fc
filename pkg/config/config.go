package config

import (
	"fmt"
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
	FeatureFlags  FeatureFlagsConfig
	CORS          CORSConfig
	Cache         CacheConfig
	R2            R2Config
	Supabase      SupabaseConfig
	Uploads       UploadsConfig
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
	Env          string `envconfig:"PORTFOLIO_APP_ENV" required:"true"`
	Port         string `envconfig:"PORTFOLIO_APP_PORT" required:"true"`
	BasePath     string `envconfig:"PORTFOLIO_API_BASE_PATH" default:"/api"`
	LogLevel     string `envconfig:"PORTFOLIO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PORTFOLIO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PORTFOLIO_DB_DSN"`
	Driver string `envconfig:"PORTFOLIO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PORTFOLIO_DB_HOST"`
	LegacyPort     int    `envconfig:"PORTFOLIO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PORTFOLIO_DB_USER"`
	LegacyPassword string `envconfig:"PORTFOLIO_DB_PASSWORD"`
	LegacyName     string `envconfig:"PORTFOLIO_DB_NAME"`
	LegacySSLMode  string `envconfig:"PORTFOLIO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PORTFOLIO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PORTFOLIO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PORTFOLIO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PORTFOLIO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PORTFOLIO_REDIS_URL"`
	Address      string        `envconfig:"PORTFOLIO_REDIS_ADDR"`
	Password     string        `envconfig:"PORTFOLIO_REDIS_PASSWORD"`
	DB           int           `envconfig:"PORTFOLIO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PORTFOLIO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PORTFOLIO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PORTFOLIO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PORTFOLIO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PORTFOLIO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis target was configured at all. The response
// cache degrades to a no-op when it is absent.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"PORTFOLIO_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PORTFOLIO_JWT_ISSUER" default:"portfolio-api"`
	ExpirationMinutes int    `envconfig:"PORTFOLIO_JWT_EXPIRATION_MINUTES" default:"1440"`
	CookieName        string `envconfig:"PORTFOLIO_JWT_COOKIE_NAME" default:"adminToken"`
	CookieSecure      bool   `envconfig:"PORTFOLIO_JWT_COOKIE_SECURE" default:"true"`
}

// TokenTTL returns the access token lifetime.
func (j JWTConfig) TokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PORTFOLIO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PORTFOLIO_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PORTFOLIO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PORTFOLIO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PORTFOLIO_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"PORTFOLIO_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"PORTFOLIO_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"PORTFOLIO_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PORTFOLIO_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PORTFOLIO_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"PORTFOLIO_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type CacheConfig struct {
	TTL     time.Duration `envconfig:"PORTFOLIO_CACHE_TTL" default:"5m"`
	Enabled bool          `envconfig:"PORTFOLIO_CACHE_ENABLED" default:"true"`
}

// R2Config holds credentials for the S3-compatible object storage provider.
type R2Config struct {
	AccountID       string `envconfig:"PORTFOLIO_R2_ACCOUNT_ID"`
	AccessKeyID     string `envconfig:"PORTFOLIO_R2_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"PORTFOLIO_R2_SECRET_ACCESS_KEY"`
	Bucket          string `envconfig:"PORTFOLIO_R2_BUCKET"`
	Endpoint        string `envconfig:"PORTFOLIO_R2_ENDPOINT"`
	PublicBaseURL   string `envconfig:"PORTFOLIO_R2_PUBLIC_BASE_URL"`
	Region          string `envconfig:"PORTFOLIO_R2_REGION" default:"auto"`
}

// Configured reports whether every credential needed to talk to R2 is present.
func (r R2Config) Configured() bool {
	return r.AccessKeyID != "" && r.SecretAccessKey != "" && r.Bucket != "" && r.ResolvedEndpoint() != ""
}

// ResolvedEndpoint returns the explicit endpoint or the account-derived one.
func (r R2Config) ResolvedEndpoint() string {
	if r.Endpoint != "" {
		return r.Endpoint
	}
	if r.AccountID != "" {
		return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r.AccountID)
	}
	return ""
}

// SupabaseConfig holds credentials for the managed storage provider.
type SupabaseConfig struct {
	URL        string `envconfig:"PORTFOLIO_SUPABASE_URL"`
	ServiceKey string `envconfig:"PORTFOLIO_SUPABASE_SERVICE_KEY"`
	Bucket     string `envconfig:"PORTFOLIO_SUPABASE_BUCKET" default:"media"`
}

// Configured reports whether the Supabase storage API is reachable with the
// provided settings.
func (s SupabaseConfig) Configured() bool {
	return s.URL != "" && s.ServiceKey != "" && s.Bucket != ""
}

type UploadsConfig struct {
	Dir         string        `envconfig:"PORTFOLIO_UPLOADS_DIR" default:"uploads"`
	MaxUploadMB int           `envconfig:"PORTFOLIO_MAX_UPLOAD_MB" default:"50"`
	PresignTTL  time.Duration `envconfig:"PORTFOLIO_UPLOAD_PRESIGN_TTL" default:"15m"`
}

// MaxUploadBytes converts the configured megabyte cap to bytes.
func (u UploadsConfig) MaxUploadBytes() int64 {
	if u.MaxUploadMB <= 0 {
		return 50 << 20
	}
	return int64(u.MaxUploadMB) << 20
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
