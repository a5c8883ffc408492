package llm

import "context"

// MockGenerator is a configurable mock for testing SQL generation.
// Set the function field to control behavior in tests.
type MockGenerator struct {
	// GenerateSQLFunc is called when GenerateSQL is invoked.
	// If nil, returns a fixed valid statement and nil error.
	GenerateSQLFunc func(ctx context.Context, request string, schemaContext string) (string, error)

	// Call tracking for verification.
	GenerateSQLCalls []MockGenerateCall
}

// MockGenerateCall records a call to GenerateSQL.
type MockGenerateCall struct {
	Request       string
	SchemaContext string
}

// NewMockGenerator creates a new mock with sensible defaults.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		GenerateSQLCalls: []MockGenerateCall{},
	}
}

// GenerateSQL implements TextGenerator.
func (m *MockGenerator) GenerateSQL(ctx context.Context, request string, schemaContext string) (string, error) {
	m.GenerateSQLCalls = append(m.GenerateSQLCalls, MockGenerateCall{Request: request, SchemaContext: schemaContext})
	if m.GenerateSQLFunc != nil {
		return m.GenerateSQLFunc(ctx, request, schemaContext)
	}
	return "SELECT 1", nil
}

// Reset clears call tracking.
func (m *MockGenerator) Reset() {
	m.GenerateSQLCalls = []MockGenerateCall{}
}
