package types

type Config struct {
	Environment       string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel          string `envconfig:"LOG_LEVEL" default:"info"`
	ServerPort        uint   `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeoutSec    uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec   uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`
	RequestTimeoutSec uint   `envconfig:"REQUEST_TIMEOUT_SEC" default:"30"`

	// Record store
	DatabaseDriver   string `envconfig:"DATABASE_DRIVER" default:"postgres"` // postgres or sqlite
	DatabaseURL      string `envconfig:"DATABASE_URL"`
	DatabaseSchema   string `envconfig:"DATABASE_SCHEMA" default:"evidencechain"`
	DatabaseMaxConns int32  `envconfig:"DATABASE_MAX_CONNS" default:"10"`
	SQLitePath       string `envconfig:"SQLITE_PATH" default:"data/evidencechain.db"`

	// Blob store
	StorageBackend         string `envconfig:"STORAGE_BACKEND" default:"supabase"` // supabase or s3
	SupabaseURL            string `envconfig:"SUPABASE_URL"`
	SupabaseServiceRoleKey string `envconfig:"SUPABASE_SERVICE_ROLE_KEY"`
	StorageBucket          string `envconfig:"STORAGE_BUCKET" default:"evidence"`
	S3Bucket               string `envconfig:"S3_BUCKET"`

	// Bearer auth is enabled when a JWKS endpoint is configured
	JWKSURL string `envconfig:"JWKS_URL"`

	// 0 disables the limiter
	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"0"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"20"`

	TamperRecordAttempts  int  `envconfig:"TAMPER_RECORD_ATTEMPTS" default:"3"`
	TamperRecordBackoffMS uint `envconfig:"TAMPER_RECORD_BACKOFF_MS" default:"200"`
}

const (
	DatabaseDriverPostgres = "postgres"
	DatabaseDriverSQLite   = "sqlite"

	StorageBackendSupabase = "supabase"
	StorageBackendS3       = "s3"
)
