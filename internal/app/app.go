// Package app wires configuration into the parser, renderer and HTTP router shared by the binaries.
package app

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aura-webinar/studytime/config"
	"github.com/aura-webinar/studytime/internal/certificate"
	"github.com/aura-webinar/studytime/internal/ingest"
	"github.com/aura-webinar/studytime/internal/reconcile"
)

// NewLogger builds the production zap logger; verbose lowers the level to debug.
func NewLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// NewParser returns the external parser when a binary is configured, else the in-process one.
func NewParser(cfg config.IngestConfig, rules reconcile.Rules, logger *zap.Logger) ingest.Parser {
	if cfg.ParserBin != "" {
		logger.Info("using external batch parser", zap.String("bin", cfg.ParserBin))
		return ingest.NewProcessParser(cfg.ParserBin, time.Duration(cfg.ParserTimeoutSec)*time.Second, logger)
	}
	return ingest.NewCSVParser(rules, logger)
}

// NewLoader builds the input loader from the ingest settings.
func NewLoader(cfg config.IngestConfig, rules reconcile.Rules, logger *zap.Logger) *ingest.Loader {
	return ingest.NewLoader(NewParser(cfg, rules, logger), ingest.NewStandardTables(cfg.StandardTimesDir), cfg.UploadDir, logger)
}

// NewCertificateService loads the certificate profile and page template and attaches renderer.
func NewCertificateService(cfg *config.Config, renderer certificate.PDFRenderer, logger *zap.Logger) (*certificate.Service, error) {
	profile, err := certificate.LoadProfile(cfg.Certificate.ProfilePath)
	if err != nil {
		return nil, fmt.Errorf("certificate profile: %w", err)
	}
	page, err := certificate.LoadPage(cfg.Certificate.TemplatePath)
	if err != nil {
		return nil, fmt.Errorf("certificate template: %w", err)
	}
	return certificate.NewService(renderer, page, profile, cfg.Rules.CertificateMarker, logger), nil
}

// NewRodRenderer builds the headless Chrome renderer from the renderer settings.
func NewRodRenderer(cfg config.RendererConfig, logger *zap.Logger) *certificate.RodRenderer {
	return certificate.NewRodRenderer(certificate.RodConfig{
		Bin:      cfg.ChromeBin,
		Headless: cfg.Headless,
		Timeout:  cfg.Timeout(),
	}, logger)
}
