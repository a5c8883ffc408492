// Package llm turns natural-language requests into SQL text through a
// pluggable generation provider. Provider output is untrusted input:
// callers always run it through the full safety validation, regardless
// of which provider produced it.
package llm

import "context"

// TextGenerator is the single capability this engine needs from a
// language model: request plus optional schema context in, raw SQL text
// out. Callers supply either a live provider or a deterministic stub;
// nothing downstream cares which.
type TextGenerator interface {
	// GenerateSQL produces SQL for a natural-language request.
	// schemaContext is a rendered description of the target schema and
	// may be empty. The returned text is raw and unvalidated.
	GenerateSQL(ctx context.Context, request string, schemaContext string) (string, error)
}

// Compile-time checks that every provider satisfies the capability.
var (
	_ TextGenerator = (*OpenAIGenerator)(nil)
	_ TextGenerator = (*AnthropicGenerator)(nil)
	_ TextGenerator = (*MockGenerator)(nil)
)
