package config

// EnvPrefix namespaces every variable read by Load.
const EnvPrefix = "GRIEVANCE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "GRIEVANCE_APP_ENV"
	EnvPort     = "GRIEVANCE_APP_PORT"
	EnvLogLevel = "GRIEVANCE_LOG_LEVEL"

	EnvDBDSN  = "GRIEVANCE_DB_DSN"
	EnvDBHost = "GRIEVANCE_DB_HOST"
	EnvDBUser = "GRIEVANCE_DB_USER"
	EnvDBName = "GRIEVANCE_DB_NAME"

	EnvRedisURL = "GRIEVANCE_REDIS_URL"

	EnvJWTSecret              = "GRIEVANCE_JWT_SECRET"
	EnvJWTIssuer              = "GRIEVANCE_JWT_ISSUER"
	EnvJWTExpMins             = "GRIEVANCE_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "GRIEVANCE_REFRESH_TOKEN_TTL_MINUTES"

	EnvCORSAllowedOrigins = "GRIEVANCE_CORS_ALLOWED_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
