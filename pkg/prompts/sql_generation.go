// Package prompts builds the text sent to language model providers.
// Keeping prompt construction in one place makes the wording reviewable
// and testable without touching any provider client.
package prompts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sqlsentinel/sentinel-engine/pkg/models"
)

const sqlGenerationBase = `You are an expert SQL Server database developer and query optimizer. Your task is to convert natural language descriptions into optimized SQL Server T-SQL queries.

CRITICAL SECURITY REQUIREMENT: You must ONLY generate SELECT queries. Never generate INSERT, UPDATE, DELETE, DROP, CREATE, ALTER, TRUNCATE, or any other data modification statements. This is a read-only query system.

Guidelines:
1. Generate ONLY SELECT queries - no data modification allowed
2. Always generate syntactically correct SQL Server T-SQL
3. Use appropriate SQL Server specific functions and syntax
4. Use CTEs, window functions, and other advanced SQL features when appropriate
5. Handle NULL values appropriately
6. Use proper naming conventions and formatting
7. If asked for data modification, explain that only SELECT queries are permitted

Response format:

` + "```sql" + `
-- Your optimized SQL query here
` + "```" + `

Explanation: Brief explanation of the query logic.`

// SQLGenerationSystem returns the system prompt for SQL generation.
// schemaContext is a rendered schema description and may be empty.
func SQLGenerationSystem(schemaContext string) string {
	if strings.TrimSpace(schemaContext) == "" {
		return sqlGenerationBase
	}

	var prompt strings.Builder
	prompt.WriteString(sqlGenerationBase)
	prompt.WriteString("\n\nDatabase Schema Context:\n")
	prompt.WriteString(schemaContext)
	prompt.WriteString("\n\nUse this schema information to generate accurate queries with correct table and column names.")
	return prompt.String()
}

// RenderSchema formats a schema document as prompt context. Tables and
// columns are emitted in sorted order so the output is stable across
// runs.
func RenderSchema(schema *models.Schema) string {
	if schema == nil || len(schema.Tables) == 0 {
		return ""
	}

	var ctx strings.Builder
	ctx.WriteString(fmt.Sprintf("Database Schema: %s\n", schema.Name))
	ctx.WriteString(strings.Repeat("=", 50))
	ctx.WriteString("\n")

	for _, tableName := range schema.TableNames() {
		table := schema.Tables[tableName]
		ctx.WriteString(fmt.Sprintf("\nTable: %s\n", tableName))
		ctx.WriteString(strings.Repeat("-", 30))
		ctx.WriteString("\n")
		if table.Description != "" {
			ctx.WriteString(fmt.Sprintf("  %s\n", table.Description))
		}

		names := make([]string, 0, len(table.Columns))
		for name := range table.Columns {
			names = append(names, name)
		}
		sort.Strings(names)

		var primaryKeys []string
		var foreignKeys []string
		for _, name := range names {
			col := table.Columns[name]
			line := fmt.Sprintf("  %s (%s)", name, col.Type)
			if !col.Nullable {
				line += " NOT NULL"
			}
			if col.Description != "" {
				line += fmt.Sprintf(" - %s", col.Description)
			}
			ctx.WriteString(line)
			ctx.WriteString("\n")

			if col.PrimaryKey {
				primaryKeys = append(primaryKeys, name)
			}
			if fk := col.ForeignKey; fk != nil {
				foreignKeys = append(foreignKeys, fmt.Sprintf("  FOREIGN KEY: %s -> %s.%s", name, fk.Table, fk.Column))
			}
		}

		if len(primaryKeys) > 0 {
			ctx.WriteString(fmt.Sprintf("  PRIMARY KEY: %s\n", strings.Join(primaryKeys, ", ")))
		}
		for _, fk := range foreignKeys {
			ctx.WriteString(fk)
			ctx.WriteString("\n")
		}
	}

	return strings.TrimRight(ctx.String(), "\n")
}
