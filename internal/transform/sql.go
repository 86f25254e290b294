package transform

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/graphlore/graphlore/internal/source"
)

var (
	createTableRe = regexp.MustCompile(`(?is)create\s+table\s+(?:if\s+not\s+exists\s+)?([\w."]+)\s*\((.*)\)`)
	joinRe        = regexp.MustCompile(`(?i)\b(?:from|join)\s+([\w."]+)`)
	referencesRe  = regexp.MustCompile(`(?i)references\s+([\w."]+)`)
	sqlCommentRe  = regexp.MustCompile(`(?m)--.*$`)
)

// SQLTransformer splits SQL scripts into per-statement chunks. CREATE TABLE
// statements become table chunks with extracted columns; everything else
// becomes schema chunks. Joined and referenced tables produce relations.
type SQLTransformer struct{}

// NewSQLTransformer creates a SQLTransformer.
func NewSQLTransformer() *SQLTransformer {
	return &SQLTransformer{}
}

// Name returns the transformer identifier.
func (t *SQLTransformer) Name() string { return "sql" }

// CanHandle reports true for SQL-typed sources.
func (t *SQLTransformer) CanHandle(src *source.DataSource) bool {
	return src.Type == source.SourceTypeSQL
}

// Transform splits the script into statements and describes each one.
func (t *SQLTransformer) Transform(ctx context.Context, src *source.DataSource, content string) (*source.ProcessingResult, error) {
	statements := SplitStatements(content)
	if len(statements) == 0 {
		return nil, NewTransformError(fmt.Sprintf("sql source %s has no statements", src.Name), nil)
	}

	result := source.NewProcessingResult(src.ID)
	for i, stmt := range statements {
		kind := statementKind(stmt)

		chunkType := source.ChunkTypeSQLSchema
		title := fmt.Sprintf("%s statement %d", kind, i+1)
		var table string

		if m := createTableRe.FindStringSubmatch(stmt); m != nil {
			chunkType = source.ChunkTypeSQLTable
			table = unquoteIdent(m[1])
			title = table

			columns := extractColumns(m[2])
			for _, col := range columns {
				result.Relations = append(result.Relations,
					source.NewRelation(src.ID, table, table+"."+col, source.RelationContains))
			}
			for _, ref := range matchTables(referencesRe, stmt) {
				result.Relations = append(result.Relations,
					source.NewRelation(src.ID, table, ref, source.RelationReferences))
			}

			chunk := source.NewChunk(src.ID, chunkType, stmt).
				WithTitle(title).
				WithSummary(explainCreateTable(table, columns)).
				WithMetadata("statement_kind", kind).
				WithMetadata("table", table).
				WithMetadata("columns", columns)
			result.Chunks = append(result.Chunks, chunk)
			continue
		}

		tables := matchTables(joinRe, stmt)
		if kind == "SELECT" && len(tables) > 1 {
			for _, joined := range tables[1:] {
				result.Relations = append(result.Relations,
					source.NewRelation(src.ID, tables[0], joined, source.RelationJoins))
			}
		}

		chunk := source.NewChunk(src.ID, chunkType, stmt).
			WithTitle(title).
			WithSummary(explainStatement(kind, tables)).
			WithMetadata("statement_kind", kind)
		if len(tables) > 0 {
			chunk.WithMetadata("tables", tables)
		}
		result.Chunks = append(result.Chunks, chunk)
	}

	result.WithMetadata("transformer", t.Name()).
		WithMetadata("statement_count", len(statements))
	return result, nil
}

// SplitStatements splits a SQL script on semicolons, ignoring semicolons
// inside string literals and stripping line comments.
func SplitStatements(script string) []string {
	script = sqlCommentRe.ReplaceAllString(script, "")

	var statements []string
	var buf strings.Builder
	var quote rune
	for _, r := range script {
		switch {
		case quote != 0:
			buf.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
			buf.WriteRune(r)
		case r == ';':
			if stmt := strings.TrimSpace(buf.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			buf.Reset()
		default:
			buf.WriteRune(r)
		}
	}
	if stmt := strings.TrimSpace(buf.String()); stmt != "" {
		statements = append(statements, stmt)
	}
	return statements
}

// statementKind returns the leading keyword pair that classifies a statement.
func statementKind(stmt string) string {
	fields := strings.Fields(strings.ToUpper(stmt))
	if len(fields) == 0 {
		return "UNKNOWN"
	}
	switch fields[0] {
	case "CREATE", "ALTER", "DROP":
		if len(fields) > 1 {
			obj := fields[1]
			if obj == "UNIQUE" && len(fields) > 2 {
				obj = fields[2]
			}
			return fields[0] + " " + obj
		}
	}
	return fields[0]
}

// extractColumns pulls the column names from a CREATE TABLE body. Constraint
// clauses are skipped.
func extractColumns(body string) []string {
	var columns []string
	depth := 0
	start := 0
	var parts []string
	for i, r := range body {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, body[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, body[start:])

	for _, part := range parts {
		fields := strings.Fields(strings.TrimSpace(part))
		if len(fields) == 0 {
			continue
		}
		switch strings.ToUpper(fields[0]) {
		case "PRIMARY", "FOREIGN", "UNIQUE", "CHECK", "CONSTRAINT", "INDEX", "KEY":
			continue
		}
		columns = append(columns, unquoteIdent(fields[0]))
	}
	return columns
}

func matchTables(re *regexp.Regexp, stmt string) []string {
	seen := make(map[string]bool)
	var tables []string
	for _, m := range re.FindAllStringSubmatch(stmt, -1) {
		name := unquoteIdent(m[1])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		tables = append(tables, name)
	}
	return tables
}

func unquoteIdent(ident string) string {
	return strings.Trim(ident, `"`)
}

// explainCreateTable renders a short natural-language summary of a table
// definition.
func explainCreateTable(table string, columns []string) string {
	switch len(columns) {
	case 0:
		return fmt.Sprintf("Table %s.", table)
	case 1:
		return fmt.Sprintf("Table %s with column %s.", table, columns[0])
	default:
		shown := columns
		suffix := ""
		if len(columns) > 6 {
			shown = columns[:6]
			suffix = fmt.Sprintf(" and %d more", len(columns)-6)
		}
		return fmt.Sprintf("Table %s with columns %s%s.", table, strings.Join(shown, ", "), suffix)
	}
}

// explainStatement renders a short summary for non-DDL statements.
func explainStatement(kind string, tables []string) string {
	if len(tables) == 0 {
		return fmt.Sprintf("%s statement.", kind)
	}
	return fmt.Sprintf("%s statement over %s.", kind, strings.Join(tables, ", "))
}
