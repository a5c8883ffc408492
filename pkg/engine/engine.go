// Package engine assembles a ready-to-use query service from loaded
// configuration: logger, schema store, validator, scorer, generation
// provider, and the history log, wired the same way for every host.
package engine

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sqlsentinel/sentinel-engine/pkg/apperrors"
	"github.com/sqlsentinel/sentinel-engine/pkg/config"
	"github.com/sqlsentinel/sentinel-engine/pkg/feedback"
	"github.com/sqlsentinel/sentinel-engine/pkg/history"
	"github.com/sqlsentinel/sentinel-engine/pkg/llm"
	"github.com/sqlsentinel/sentinel-engine/pkg/logging"
	"github.com/sqlsentinel/sentinel-engine/pkg/schemastore"
	"github.com/sqlsentinel/sentinel-engine/pkg/services"
	"github.com/sqlsentinel/sentinel-engine/pkg/sqlcheck"
)

// Engine is the composed runtime: everything a host needs to serve
// queries. Hosts talk to Service; the other fields are exposed for
// direct access where a host needs them.
type Engine struct {
	Config  *config.Config
	Logger  *zap.Logger
	Schemas *schemastore.Store
	Service services.QueryService
}

// Load reads configuration from the default location and builds the
// engine from it.
func Load() (*Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

// New builds an engine from already-loaded configuration.
//
// A missing schema directory is not fatal: validation still works, it
// just cannot check identifiers against a schema. An empty LLM provider
// leaves generation disabled; Ask returns ErrNoGenerator while Validate
// and Score keep working.
func New(cfg *config.Config) (*Engine, error) {
	logger, err := logging.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	schemas, err := schemastore.LoadDir(cfg.SchemaDir, logger)
	if err != nil {
		if !errors.Is(err, apperrors.ErrSchemaDirMissing) {
			return nil, fmt.Errorf("load schemas: %w", err)
		}
		logger.Warn("schema directory missing, starting without schemas",
			zap.String("dir", logging.SanitizeEndpoint(cfg.SchemaDir)))
		schemas = schemastore.New()
	}

	generator, err := llm.NewGenerator(llm.ProviderConfig{
		Provider:    cfg.LLM.Provider,
		Endpoint:    cfg.LLM.Endpoint,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		Temperature: cfg.LLM.Temperature,
	}, logger)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNoGenerator) {
			return nil, fmt.Errorf("build generator: %w", err)
		}
		generator = nil
	}

	validator := sqlcheck.NewValidator(sqlcheck.Options{
		MaxQueryLength:  cfg.Validator.MaxQueryLength,
		DialectWarnings: !cfg.Validator.DisableDialectWarnings,
	})

	svc := services.NewQueryService(
		validator,
		feedback.NewScorer(validator),
		schemas,
		generator,
		history.NewLog(cfg.History.Capacity),
		logger,
	)

	logger.Info("engine assembled",
		zap.String("env", cfg.Env),
		zap.Int("schemas", schemas.Len()),
		zap.String("llm_provider", cfg.LLM.Provider))

	return &Engine{
		Config:  cfg,
		Logger:  logger,
		Schemas: schemas,
		Service: svc,
	}, nil
}

// Close flushes the engine's logger. Call it on shutdown.
func (e *Engine) Close() error {
	return e.Logger.Sync()
}
