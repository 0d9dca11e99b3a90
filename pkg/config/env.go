package config

const EnvPrefix = "BOUTIQUE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv             = "BOUTIQUE_APP_ENV"
	EnvPort               = "BOUTIQUE_APP_PORT"
	EnvDBDSN              = "BOUTIQUE_DB_DSN"
	EnvDBHost             = "BOUTIQUE_DB_HOST"
	EnvDBUser             = "BOUTIQUE_DB_USER"
	EnvDBName             = "BOUTIQUE_DB_NAME"
	EnvDBPassword         = "BOUTIQUE_DB_PASSWORD"
	EnvRedisURL           = "BOUTIQUE_REDIS_URL"
	EnvJWTSecret          = "BOUTIQUE_JWT_SECRET"
	EnvWooBaseURL         = "BOUTIQUE_WOOCOMMERCE_BASE_URL"
	EnvWooConsumerKey     = "BOUTIQUE_WOOCOMMERCE_CONSUMER_KEY"
	EnvWooConsumerSecret  = "BOUTIQUE_WOOCOMMERCE_CONSUMER_SECRET"
	EnvCheckoutBatchWin   = "BOUTIQUE_CHECKOUT_BATCH_WINDOW"
	EnvCheckoutCardGWs    = "BOUTIQUE_CHECKOUT_CARD_GATEWAYS"
	EnvCheckoutRelayIDs   = "BOUTIQUE_CHECKOUT_RELAY_METHOD_IDS"
	EnvCORSAllowedOrigins = "BOUTIQUE_CORS_ALLOWED_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
