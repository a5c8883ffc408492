// Package services hosts the engine's application layer: the query
// service orchestrates generation, validation, scoring, and history
// on top of the leaf packages.
package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sqlsentinel/sentinel-engine/pkg/apperrors"
	"github.com/sqlsentinel/sentinel-engine/pkg/feedback"
	"github.com/sqlsentinel/sentinel-engine/pkg/history"
	"github.com/sqlsentinel/sentinel-engine/pkg/llm"
	"github.com/sqlsentinel/sentinel-engine/pkg/logging"
	"github.com/sqlsentinel/sentinel-engine/pkg/models"
	"github.com/sqlsentinel/sentinel-engine/pkg/prompts"
	"github.com/sqlsentinel/sentinel-engine/pkg/schemastore"
	"github.com/sqlsentinel/sentinel-engine/pkg/sqlcheck"
)

// QueryResult bundles everything one request produces: the stored
// record, the full safety report, and score-driven recommendations.
type QueryResult struct {
	Record          models.QueryRecord `json:"record"`
	Report          sqlcheck.Report    `json:"report"`
	Recommendations []string           `json:"recommendations,omitempty"`
}

// QueryService defines the interface for query operations.
type QueryService interface {
	// Ask converts a natural-language request into SQL, validates and
	// scores the result, and records it in the history log. The SQL is
	// returned even when invalid; the report says what is wrong with it.
	Ask(ctx context.Context, request string, schemaName string) (*QueryResult, error)

	// Validate runs the safety checks on caller-supplied SQL without
	// involving a generation provider.
	Validate(sql string, schemaName string) (*QueryResult, error)

	// Score computes quality scores and recommendations for SQL,
	// optionally against the request that produced it.
	Score(sql string, schemaName string, naturalLanguage string) (models.FeedbackScore, []string, error)

	// Rate attaches a 1-5 star rating to a recorded query.
	Rate(id uuid.UUID, stars int, comment string) (models.QueryRecord, error)

	// History returns up to n records, newest first.
	History(n int) []models.QueryRecord

	// Summary aggregates the history log.
	Summary() history.Summary

	// Schemas lists the names of loaded schema documents.
	Schemas() []string
}

// queryService implements QueryService.
type queryService struct {
	validator *sqlcheck.Validator
	scorer    *feedback.Scorer
	schemas   *schemastore.Store
	generator llm.TextGenerator
	log       *history.Log
	logger    *zap.Logger
}

// NewQueryService creates a query service. generator may be nil, which
// disables Ask; validation and scoring still work.
func NewQueryService(
	validator *sqlcheck.Validator,
	scorer *feedback.Scorer,
	schemas *schemastore.Store,
	generator llm.TextGenerator,
	log *history.Log,
	logger *zap.Logger,
) QueryService {
	return &queryService{
		validator: validator,
		scorer:    scorer,
		schemas:   schemas,
		generator: generator,
		log:       log,
		logger:    logger.Named("query_service"),
	}
}

// Ask converts a natural-language request into validated, scored SQL.
func (s *queryService) Ask(ctx context.Context, request string, schemaName string) (*QueryResult, error) {
	request = strings.TrimSpace(request)
	if request == "" {
		return nil, apperrors.ErrEmptyRequest
	}
	if s.generator == nil {
		return nil, apperrors.ErrNoGenerator
	}

	schema, err := s.resolveSchema(schemaName)
	if err != nil {
		return nil, err
	}

	var schemaContext string
	if schema != nil {
		schemaContext = prompts.RenderSchema(schema)
	}

	raw, err := s.generator.GenerateSQL(ctx, request, schemaContext)
	if err != nil {
		s.logger.Error("SQL generation failed",
			zap.String("request", logging.TruncateString(request, logging.MaxQueryLogLength)),
			zap.String("error", logging.SanitizeError(err)))
		return nil, err
	}

	// Providers already strip their own framing; this also covers
	// generators that hand back fenced or annotated text.
	sql := llm.ExtractSQL(raw)
	if sql == "" {
		return nil, apperrors.ErrEmptyGeneration
	}

	result := s.assess(sql, schema, request, schemaName)
	result.Record.NaturalLanguage = request
	result.Record = s.log.Append(result.Record)

	s.logger.Info("query generated",
		zap.String("query_id", result.Record.ID.String()),
		zap.String("schema", schemaName),
		zap.Bool("is_valid", result.Report.IsValid),
		zap.String("statement_type", string(result.Report.StatementType)),
		zap.Float64("overall_score", result.Record.Scores.Overall))

	return result, nil
}

// Validate runs the safety checks on caller-supplied SQL.
func (s *queryService) Validate(sql string, schemaName string) (*QueryResult, error) {
	schema, err := s.resolveSchema(schemaName)
	if err != nil {
		return nil, err
	}

	result := s.assess(sql, schema, "", schemaName)

	s.logger.Debug("query validated",
		zap.String("query", logging.SanitizeQuery(sql)),
		zap.Bool("is_valid", result.Report.IsValid))

	return result, nil
}

// Score computes quality scores and recommendations for SQL.
func (s *queryService) Score(sql string, schemaName string, naturalLanguage string) (models.FeedbackScore, []string, error) {
	schema, err := s.resolveSchema(schemaName)
	if err != nil {
		return models.FeedbackScore{}, nil, err
	}

	var schemaCtx sqlcheck.SchemaContext
	if schema != nil {
		schemaCtx = schema
	}
	score := s.scorer.Score(sql, schemaCtx, naturalLanguage)
	return score, feedback.Recommendations(score), nil
}

// Rate attaches a user rating to a recorded query.
func (s *queryService) Rate(id uuid.UUID, stars int, comment string) (models.QueryRecord, error) {
	record, err := s.log.Rate(id, stars, comment)
	if err != nil {
		return models.QueryRecord{}, err
	}
	s.logger.Info("query rated",
		zap.String("query_id", id.String()),
		zap.Int("stars", stars))
	return record, nil
}

// History returns up to n records, newest first.
func (s *queryService) History(n int) []models.QueryRecord {
	return s.log.Recent(n)
}

// Summary aggregates the history log.
func (s *queryService) Summary() history.Summary {
	return s.log.Summarize()
}

// Schemas lists the names of loaded schema documents.
func (s *queryService) Schemas() []string {
	return s.schemas.Names()
}

// assess runs validation and scoring on one SQL text and builds the
// history record. It does not touch the log.
func (s *queryService) assess(sql string, schema *models.Schema, naturalLanguage string, schemaName string) *QueryResult {
	var schemaCtx sqlcheck.SchemaContext
	if schema != nil {
		schemaCtx = schema
	}

	analysis := s.validator.Analyze(sql, schemaCtx)
	report := sqlcheck.BuildReport(analysis.Statement, analysis.Issues)
	if report.IsValid {
		report.OptimizedSQL = sqlcheck.OptimizeSQL(sql, analysis.Tokens, schemaCtx)
	}

	score := s.scorer.Score(sql, schemaCtx, naturalLanguage)

	record := models.QueryRecord{
		SchemaName:      schemaName,
		NaturalLanguage: naturalLanguage,
		SQL:             sql,
		IsValid:         report.IsValid,
		StatementType:   string(report.StatementType),
		Errors:          report.Errors,
		SecurityIssues:  report.SecurityIssues,
		TablesUsed:      analysis.Structure.Tables,
		Scores:          &score,
	}

	return &QueryResult{
		Record:          record,
		Report:          report,
		Recommendations: feedback.Recommendations(score),
	}
}

// resolveSchema looks up a schema by name. An empty name means no
// schema context.
func (s *queryService) resolveSchema(name string) (*models.Schema, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}
	return s.schemas.Lookup(name)
}

// Ensure queryService implements QueryService at compile time.
var _ QueryService = (*queryService)(nil)
