package models

import (
	"time"

	"github.com/google/uuid"
)

// QueryRecord is one entry in the query history log: the request, the
// generated SQL, the safety verdict, and the quality scores, plus an
// optional user rating attached after the fact.
type QueryRecord struct {
	ID         uuid.UUID `json:"id"`
	SchemaName string    `json:"schema_name,omitempty"`

	NaturalLanguage string `json:"natural_language"`
	SQL             string `json:"sql"`

	IsValid        bool     `json:"is_valid"`
	StatementType  string   `json:"statement_type"`
	Errors         []string `json:"errors,omitempty"`
	SecurityIssues []string `json:"security_issues,omitempty"`
	TablesUsed     []string `json:"tables_used,omitempty"`

	Scores *FeedbackScore `json:"scores,omitempty"`

	Rating    *UserRating `json:"rating,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// UserRating is feedback a user attached to a recorded query.
type UserRating struct {
	Stars   int       `json:"stars"` // 1..5
	Comment string    `json:"comment,omitempty"`
	RatedAt time.Time `json:"rated_at"`
}

// FeedbackScore holds the four quality sub-scores and their weighted
// aggregate, each in [0,100]. Scores are derived values, recomputed on
// demand; they are never canonical state.
type FeedbackScore struct {
	Syntax      float64 `json:"syntax_score"`
	Semantic    float64 `json:"semantic_score"`
	Performance float64 `json:"performance_score"`
	Security    float64 `json:"security_score"`
	Overall     float64 `json:"overall_score"`
}
