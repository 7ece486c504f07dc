package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Corpus   CorpusConfig   `yaml:"corpus"`
	Log      LogConfig      `yaml:"log"`
	CORS     CORSConfig     `yaml:"cors"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`

	// RateLimitPerMinute caps requests per client IP. Zero disables limiting.
	RateLimitPerMinute int `yaml:"rate_limit_per_minute" env:"SERVER_RATE_LIMIT_PER_MINUTE" env-default:"120"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// RedisConfig holds settings for the global index cache. When Addr is empty
// the cache is disabled and all lookups go straight to PostgreSQL.
type RedisConfig struct {
	Addr     string        `yaml:"addr"     env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db"       env:"REDIS_DB"       env-default:"0"`
	TTL      time.Duration `yaml:"ttl"      env:"REDIS_TTL"      env-default:"6h"`
}

// AuthConfig holds access-token validation settings. Token issuance lives in
// the surrounding application; this service only validates bearer tokens.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"       env:"AUTH_JWT_SECRET"       env-required:"true"`
	JWTIssuer      string        `yaml:"jwt_issuer"       env:"AUTH_JWT_ISSUER"       env-default:"sirreessaa"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"AUTH_ACCESS_TOKEN_TTL" env-default:"15m"`
}

// CorpusConfig holds corpus engine settings.
type CorpusConfig struct {
	// ChunkSize is the number of global sentences per storage chunk. It is
	// recorded alongside the data (chunk = id / ChunkSize) and must not
	// change once a corpus has been ingested.
	ChunkSize               int `yaml:"chunk_size"                env:"CORPUS_CHUNK_SIZE"                env-default:"1000"`
	IngestBatchSize         int `yaml:"ingest_batch_size"         env:"CORPUS_INGEST_BATCH_SIZE"         env-default:"500"`
	MaxSentenceLength       int `yaml:"max_sentence_length"       env:"CORPUS_MAX_SENTENCE_LENGTH"       env-default:"1000"`
	MaxSentencesPerUser     int `yaml:"max_sentences_per_user"    env:"CORPUS_MAX_SENTENCES_PER_USER"    env-default:"20000"`
	SuggestionLimit         int `yaml:"suggestion_limit"          env:"CORPUS_SUGGESTION_LIMIT"          env-default:"10"`
	AnalysisSuggestionLimit int `yaml:"analysis_suggestion_limit" env:"CORPUS_ANALYSIS_SUGGESTION_LIMIT" env-default:"5"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}
