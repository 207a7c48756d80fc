package config

const (
	EnvPrefix = "PORTFOLIO"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "PORTFOLIO_APP_ENV"
	EnvPort   = "PORTFOLIO_APP_PORT"

	EnvDBDSN  = "PORTFOLIO_DB_DSN"
	EnvDBHost = "PORTFOLIO_DB_HOST"
	EnvDBUser = "PORTFOLIO_DB_USER"
	EnvDBName = "PORTFOLIO_DB_NAME"

	EnvRedisURL  = "PORTFOLIO_REDIS_URL"
	EnvJWTSecret = "PORTFOLIO_JWT_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
