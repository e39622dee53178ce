package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"google.golang.org/api/option"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Eventing      EventingConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Media         MediaConfig
	PubSub        PubSubConfig
	BigQuery      BigQueryConfig
	Webhook       WebhookConfig
	Metrics       MetricsImportConfig
	Ads           AdsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if cfg.FeatureFlags.PubSubEnabled && strings.TrimSpace(cfg.GCP.ProjectID) == "" {
		return nil, fmt.Errorf("%s is required when pubsub is enabled", EnvGCPProjectID)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"AUTOADS_APP_ENV" required:"true"`
	Port         string   `envconfig:"AUTOADS_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"AUTOADS_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"AUTOADS_LOG_WARN_STACK" default:"false"`
	LogFile      string   `envconfig:"AUTOADS_LOG_FILE"`
	LogFormat    string   `envconfig:"AUTOADS_LOG_FORMAT" default:"json"`
	CORSOrigins  []string `envconfig:"AUTOADS_CORS_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type DBConfig struct {
	DSN    string `envconfig:"AUTOADS_DB_DSN"`
	Driver string `envconfig:"AUTOADS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AUTOADS_DB_HOST"`
	LegacyPort     int    `envconfig:"AUTOADS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AUTOADS_DB_USER"`
	LegacyPassword string `envconfig:"AUTOADS_DB_PASSWORD"`
	LegacyName     string `envconfig:"AUTOADS_DB_NAME"`
	LegacySSLMode  string `envconfig:"AUTOADS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AUTOADS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AUTOADS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AUTOADS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AUTOADS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AUTOADS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"AUTOADS_REDIS_ADDR"`
	Password     string        `envconfig:"AUTOADS_REDIS_PASSWORD"`
	DB           int           `envconfig:"AUTOADS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AUTOADS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AUTOADS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AUTOADS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AUTOADS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AUTOADS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"AUTOADS_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"AUTOADS_JWT_ISSUER" default:"autoads"`
	ExpirationMinutes      int    `envconfig:"AUTOADS_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"AUTOADS_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"AUTOADS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"AUTOADS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"AUTOADS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"AUTOADS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"AUTOADS_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"AUTOADS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"AUTOADS_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"AUTOADS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"AUTOADS_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"AUTOADS_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"AUTOADS_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite       bool `envconfig:"AUTOADS_USE_SQLITE" default:"false"`
	AutoMigrate     bool `envconfig:"AUTOADS_AUTO_MIGRATE" default:"false"`
	PubSubEnabled   bool `envconfig:"AUTOADS_PUBSUB_ENABLED" default:"false"`
	MediaGCSEnabled bool `envconfig:"AUTOADS_MEDIA_GCS_ENABLED" default:"true"`
}

type EventingConfig struct {
	IdempotencyTTL time.Duration `envconfig:"AUTOADS_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"AUTOADS_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"AUTOADS_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"AUTOADS_GOOGLE_APPLICATION_CREDENTIALS"`
}

// ClientOptions picks inline JSON credentials, then a credentials file.
// With neither the SDKs use application default credentials.
func (g GCPConfig) ClientOptions() []option.ClientOption {
	if raw := strings.TrimSpace(g.CredentialsJSON); raw != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(raw))}
	}
	if path := strings.TrimSpace(g.ApplicationCredentials); path != "" {
		return []option.ClientOption{option.WithCredentialsFile(path)}
	}
	return nil
}

type GCSConfig struct {
	BucketName    string `envconfig:"AUTOADS_GCS_BUCKET_NAME"`
	PublicBaseURL string `envconfig:"AUTOADS_GCS_PUBLIC_BASE_URL" default:"https://storage.googleapis.com"`
}

type MediaConfig struct {
	MaxImageMB   int `envconfig:"AUTOADS_MEDIA_MAX_IMAGE_MB" default:"5"`
	MaxAdImages  int `envconfig:"AUTOADS_MEDIA_MAX_AD_IMAGES" default:"12"`
	MaxAvatarMB  int `envconfig:"AUTOADS_MEDIA_MAX_AVATAR_MB" default:"2"`
	MaxFormMemMB int `envconfig:"AUTOADS_MEDIA_MAX_FORM_MEMORY_MB" default:"8"`
}

// MaxImageBytes returns the per-image upload limit in bytes.
func (m MediaConfig) MaxImageBytes() int64 {
	return int64(positiveOr(m.MaxImageMB, 5)) << 20
}

// MaxAvatarBytes returns the avatar upload limit in bytes.
func (m MediaConfig) MaxAvatarBytes() int64 {
	return int64(positiveOr(m.MaxAvatarMB, 2)) << 20
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"AUTOADS_PUBSUB_DOMAIN_TOPIC" default:"autoads-domain-events"`
	DomainSubscription string `envconfig:"AUTOADS_PUBSUB_DOMAIN_SUBSCRIPTION" default:"autoads-domain-events-worker"`
}

type BigQueryConfig struct {
	Enabled       bool   `envconfig:"AUTOADS_BIGQUERY_ENABLED" default:"false"`
	Dataset       string `envconfig:"AUTOADS_BIGQUERY_DATASET" default:"autoads"`
	AdEventsTable string `envconfig:"AUTOADS_BIGQUERY_AD_TABLE" default:"ad_events"`
	// AutoCreateTable creates the ad events table when it is missing.
	AutoCreateTable bool `envconfig:"AUTOADS_BIGQUERY_AUTO_CREATE" default:"false"`
}

type WebhookConfig struct {
	AdCreatedURL string        `envconfig:"AUTOADS_WEBHOOK_AD_CREATED_URL"`
	Timeout      time.Duration `envconfig:"AUTOADS_WEBHOOK_TIMEOUT" default:"10s"`
}

type MetricsImportConfig struct {
	MaxUploadMB int    `envconfig:"AUTOADS_METRICS_MAX_UPLOAD_MB" default:"10"`
	ClickSource string `envconfig:"AUTOADS_METRICS_CLICK_SOURCE" default:"link_clicks"`
	Locale      string `envconfig:"AUTOADS_METRICS_LOCALE" default:"pt-BR"`
}

// MaxUploadBytes returns the CSV upload limit in bytes.
func (m MetricsImportConfig) MaxUploadBytes() int64 {
	return int64(positiveOr(m.MaxUploadMB, 10)) << 20
}

type AdsConfig struct {
	PublicBaseURL   string `envconfig:"AUTOADS_PUBLIC_BASE_URL" default:"https://autolink.app"`
	DefaultLocation string `envconfig:"AUTOADS_ADS_DEFAULT_LOCATION" default:"Brasil"`
}

func positiveOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
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
