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
	Auth          AuthConfig
	Audit         AuditConfig
	Catalog       CatalogConfig
	Storage       StorageConfig
	GCP           GCPConfig
	GCS           GCSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.validate(cfg.GCS); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env             string        `envconfig:"LOSTFOUND_APP_ENV" required:"true"`
	Port            string        `envconfig:"LOSTFOUND_APP_PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"LOSTFOUND_SHUTDOWN_TIMEOUT" default:"15s"`
	LogLevel        string        `envconfig:"LOSTFOUND_LOG_LEVEL" default:"info"`
	LogWarnStack    bool          `envconfig:"LOSTFOUND_LOG_WARN_STACK" default:"false"`
	LogFormat       string        `envconfig:"LOSTFOUND_LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LOSTFOUND_DB_DSN"`
	Driver string `envconfig:"LOSTFOUND_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LOSTFOUND_DB_HOST"`
	LegacyPort     int    `envconfig:"LOSTFOUND_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LOSTFOUND_DB_USER"`
	LegacyPassword string `envconfig:"LOSTFOUND_DB_PASSWORD"`
	LegacyName     string `envconfig:"LOSTFOUND_DB_NAME"`
	LegacySSLMode  string `envconfig:"LOSTFOUND_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LOSTFOUND_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LOSTFOUND_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LOSTFOUND_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LOSTFOUND_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is sqlite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"LOSTFOUND_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LOSTFOUND_REDIS_ADDR"`
	Password     string        `envconfig:"LOSTFOUND_REDIS_PASSWORD"`
	DB           int           `envconfig:"LOSTFOUND_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LOSTFOUND_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LOSTFOUND_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LOSTFOUND_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LOSTFOUND_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LOSTFOUND_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"LOSTFOUND_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"LOSTFOUND_JWT_ISSUER" default:"lostfound"`
	ExpirationMinutes int    `envconfig:"LOSTFOUND_JWT_EXPIRATION_MINUTES" default:"720"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"LOSTFOUND_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"LOSTFOUND_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"LOSTFOUND_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"LOSTFOUND_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"LOSTFOUND_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"LOSTFOUND_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit int           `envconfig:"LOSTFOUND_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"LOSTFOUND_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"LOSTFOUND_AUTO_MIGRATE" default:"false"`
}

type AuthConfig struct {
	LoginURL          string   `envconfig:"LOSTFOUND_AUTH_LOGIN_URL" default:"/accounts/login/"`
	AdminPrefix       string   `envconfig:"LOSTFOUND_AUTH_ADMIN_PREFIX" default:"/admin/"`
	CookieName        string   `envconfig:"LOSTFOUND_AUTH_COOKIE_NAME" default:"lf_session"`
	CookieSecure      bool     `envconfig:"LOSTFOUND_AUTH_COOKIE_SECURE" default:"false"`
	TrustProxyHeaders bool     `envconfig:"LOSTFOUND_AUTH_TRUST_PROXY_HEADERS" default:"false"`
	CORSOrigins       []string `envconfig:"LOSTFOUND_CORS_ORIGINS" default:"http://localhost:3000"`
}

type AuditConfig struct {
	MaxAttempts    int           `envconfig:"LOSTFOUND_AUDIT_MAX_ATTEMPTS" default:"3"`
	AttemptTimeout time.Duration `envconfig:"LOSTFOUND_AUDIT_ATTEMPT_TIMEOUT" default:"300ms"`
	Backoff        time.Duration `envconfig:"LOSTFOUND_AUDIT_BACKOFF" default:"50ms"`
	Budget         time.Duration `envconfig:"LOSTFOUND_AUDIT_BUDGET" default:"1s"`
}

type CatalogConfig struct {
	SummaryCache    string        `envconfig:"LOSTFOUND_CATALOG_SUMMARY_CACHE" default:"redis"`
	SummaryCacheTTL time.Duration `envconfig:"LOSTFOUND_CATALOG_SUMMARY_CACHE_TTL" default:"30s"`
}

// UsesLocalCache reports whether the summary cache lives in process memory.
func (c CatalogConfig) UsesLocalCache() bool {
	return strings.EqualFold(strings.TrimSpace(c.SummaryCache), CacheLocal)
}

type StorageConfig struct {
	Driver            string `envconfig:"LOSTFOUND_STORAGE_DRIVER" default:"local"`
	LocalDir          string `envconfig:"LOSTFOUND_STORAGE_LOCAL_DIR" default:"media"`
	MaxUploadMB       int    `envconfig:"LOSTFOUND_MAX_UPLOAD_MB" default:"10"`
	ImageMaxDimension int    `envconfig:"LOSTFOUND_IMAGE_MAX_DIMENSION" default:"1024"`
	ImageQuality      int    `envconfig:"LOSTFOUND_IMAGE_QUALITY" default:"85"`
}

// MaxUploadBytes returns the multipart size limit for uploads.
func (s StorageConfig) MaxUploadBytes() int64 {
	if s.MaxUploadMB <= 0 {
		return 10 << 20
	}
	return int64(s.MaxUploadMB) << 20
}

type GCPConfig struct {
	ProjectID              string `envconfig:"LOSTFOUND_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"LOSTFOUND_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"LOSTFOUND_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"LOSTFOUND_GCS_BUCKET_NAME"`
}

func (s StorageConfig) validate(gcs GCSConfig) error {
	switch strings.ToLower(strings.TrimSpace(s.Driver)) {
	case StorageDriverLocal:
		if strings.TrimSpace(s.LocalDir) == "" {
			return fmt.Errorf("%s is required for the local storage driver", EnvStorageLocalDir)
		}
	case StorageDriverGCS:
		if strings.TrimSpace(gcs.BucketName) == "" {
			return fmt.Errorf("%s is required for the gcs storage driver", EnvGCSBucket)
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", s.Driver)
	}
	return nil
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
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
