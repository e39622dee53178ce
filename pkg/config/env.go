package config

const (
	EnvPrefix = "AUTOADS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "AUTOADS_APP_ENV"
	EnvPort     = "AUTOADS_APP_PORT"
	EnvLogLevel = "AUTOADS_LOG_LEVEL"

	EnvDBDSN  = "AUTOADS_DB_DSN"
	EnvDBHost = "AUTOADS_DB_HOST"
	EnvDBUser = "AUTOADS_DB_USER"
	EnvDBName = "AUTOADS_DB_NAME"

	EnvRedisURL = "AUTOADS_REDIS_URL"

	EnvJWTSecret              = "AUTOADS_JWT_SECRET"
	EnvJWTIssuer              = "AUTOADS_JWT_ISSUER"
	EnvJWTExpMins             = "AUTOADS_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "AUTOADS_REFRESH_TOKEN_TTL_MINUTES"

	EnvGCPProjectID      = "AUTOADS_GCP_PROJECT_ID"
	EnvGCSBucket         = "AUTOADS_GCS_BUCKET_NAME"
	EnvPubSubEnabled     = "AUTOADS_PUBSUB_ENABLED"
	EnvPubSubDomainTopic = "AUTOADS_PUBSUB_DOMAIN_TOPIC"
	EnvPubSubDomainSub   = "AUTOADS_PUBSUB_DOMAIN_SUBSCRIPTION"

	EnvMetricsClickSource  = "AUTOADS_METRICS_CLICK_SOURCE"
	EnvMetricsMaxUploadMB  = "AUTOADS_METRICS_MAX_UPLOAD_MB"
	EnvWebhookAdCreatedURL = "AUTOADS_WEBHOOK_AD_CREATED_URL"
	EnvCORSOrigins         = "AUTOADS_CORS_ORIGINS"
)

// legacyDBEnvVars must all be set when no DSN is provided.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
