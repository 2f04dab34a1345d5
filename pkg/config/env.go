package config

const EnvPrefix = "LOSTFOUND"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	StorageDriverLocal = "local"
	StorageDriverGCS   = "gcs"

	CacheRedis = "redis"
	CacheLocal = "local"
)

const (
	EnvAppEnv          = "LOSTFOUND_APP_ENV"
	EnvPort            = "LOSTFOUND_APP_PORT"
	EnvDBDSN           = "LOSTFOUND_DB_DSN"
	EnvDBDriver        = "LOSTFOUND_DB_DRIVER"
	EnvDBHost          = "LOSTFOUND_DB_HOST"
	EnvDBUser          = "LOSTFOUND_DB_USER"
	EnvDBName          = "LOSTFOUND_DB_NAME"
	EnvRedisURL        = "LOSTFOUND_REDIS_URL"
	EnvJWTSecret       = "LOSTFOUND_JWT_SECRET"
	EnvAuditAttempts   = "LOSTFOUND_AUDIT_MAX_ATTEMPTS"
	EnvStorageDriver   = "LOSTFOUND_STORAGE_DRIVER"
	EnvStorageLocalDir = "LOSTFOUND_STORAGE_LOCAL_DIR"
	EnvGCSBucket       = "LOSTFOUND_GCS_BUCKET_NAME"
	EnvCORSOrigins     = "LOSTFOUND_CORS_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
