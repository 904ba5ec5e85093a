package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/aura-webinar/studytime/internal/reconcile"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server      ServerConfig
	Redis       RedisConfig
	AWS         AWSConfig
	Renderer    RendererConfig
	Ingest      IngestConfig
	Certificate CertificateConfig
	Rules       RulesConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
	MaxUploadMB        int
}

// RedisConfig holds Redis connection settings. An empty Addr disables the job queue.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AWSConfig holds AWS credentials and the artifact bucket.
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	CertificatesBucket   string
	PresignExpireMinutes int
}

// Enabled reports whether S3 output is configured.
func (c AWSConfig) Enabled() bool { return c.CertificatesBucket != "" }

// RendererConfig controls the headless browser used for PDFs.
type RendererConfig struct {
	ChromeBin  string // empty = let the launcher find or download a browser
	Headless   bool
	TimeoutSec int
}

// Timeout returns the per-render timeout.
func (c RendererConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// IngestConfig controls how input files are found and parsed.
type IngestConfig struct {
	StandardTimesDir string
	ParserBin        string // external batch parser; empty = in-process parser
	ParserTimeoutSec int
	UploadDir        string // empty = os.TempDir()
}

// CertificateConfig points at optional certificate wording and template overrides.
type CertificateConfig struct {
	ProfilePath  string
	TemplatePath string
}

// RulesConfig holds the content classification knobs.
type RulesConfig struct {
	ComprehensionMarker string
	CertificateMarker   string
	MissingStandard     string
}

// Engine converts the configured knobs into reconcile.Rules.
func (c RulesConfig) Engine() (reconcile.Rules, error) {
	policy, err := reconcile.ParseMissingStandardPolicy(c.MissingStandard)
	if err != nil {
		return reconcile.Rules{}, err
	}
	return reconcile.Rules{
		ComprehensionMarker: c.ComprehensionMarker,
		CertificateMarker:   c.CertificateMarker,
		MissingStandard:     policy,
	}, nil
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 120),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001"),
			MaxUploadMB:        getEnvInt("MAX_UPLOAD_MB", 32),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", "ap-northeast-1"),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			CertificatesBucket:   getEnv("AWS_S3_CERTIFICATES_BUCKET", ""),
			PresignExpireMinutes: getEnvInt("AWS_PRESIGN_EXPIRE_MINUTES", 15),
		},
		Renderer: RendererConfig{
			ChromeBin:  getEnv("CHROME_BIN", ""),
			Headless:   getEnvBool("RENDER_HEADLESS", true),
			TimeoutSec: getEnvInt("RENDER_TIMEOUT_SEC", 60),
		},
		Ingest: IngestConfig{
			StandardTimesDir: getEnv("STANDARD_TIMES_DIR", "standard_times"),
			ParserBin:        getEnv("PARSER_BIN", ""),
			ParserTimeoutSec: getEnvInt("PARSER_TIMEOUT_SEC", 120),
			UploadDir:        getEnv("UPLOAD_DIR", ""),
		},
		Certificate: CertificateConfig{
			ProfilePath:  getEnv("CERTIFICATE_PROFILE", ""),
			TemplatePath: getEnv("CERTIFICATE_TEMPLATE", ""),
		},
		Rules: RulesConfig{
			ComprehensionMarker: getEnv("COMPREHENSION_TEST_MARKER", reconcile.DefaultComprehensionMarker),
			CertificateMarker:   getEnv("COMPLETION_CERTIFICATE_MARKER", reconcile.DefaultCertificateMarker),
			MissingStandard:     getEnv("MISSING_STANDARD_POLICY", "abort"),
		},
	}
	if _, err := cfg.Rules.Engine(); err != nil {
		return nil, fmt.Errorf("MISSING_STANDARD_POLICY: %w", err)
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// SplitTrim splits s on sep and drops empty parts.
func SplitTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, sep) {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
