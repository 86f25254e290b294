package transform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphlore/graphlore/internal/source"
)

func TestSplitStatements(t *testing.T) {
	script := `-- schema
CREATE TABLE a (id INT);
INSERT INTO a VALUES ('semi;colon');
SELECT * FROM a`
	statements := SplitStatements(script)
	require.Len(t, statements, 3)
	assert.Contains(t, statements[1], "'semi;colon'")
}

func TestSQLTransformerCreateTable(t *testing.T) {
	src := source.NewDataSource("schema.sql", source.SourceTypeSQL).WithPath("schema.sql")
	content := `CREATE TABLE users (
	id INTEGER PRIMARY KEY,
	email TEXT NOT NULL,
	team_id INTEGER,
	FOREIGN KEY (team_id) REFERENCES teams(id)
);`

	result, err := NewSQLTransformer().Transform(context.Background(), src, content)
	require.NoError(t, err)
	require.Len(t, result.Chunks, 1)

	chunk := result.Chunks[0]
	assert.Equal(t, source.ChunkTypeSQLTable, chunk.Type)
	assert.Equal(t, "users", chunk.Title)
	assert.Equal(t, []string{"id", "email", "team_id"}, chunk.Metadata["columns"])
	assert.Contains(t, chunk.Summary, "Table users with columns id, email, team_id")

	var contains, references int
	for _, rel := range result.Relations {
		switch rel.Type {
		case source.RelationContains:
			contains++
			assert.Equal(t, "users", rel.FromEntity)
		case source.RelationReferences:
			references++
			assert.Equal(t, "teams", rel.ToEntity)
		}
	}
	assert.Equal(t, 3, contains)
	assert.Equal(t, 1, references)
}

func TestSQLTransformerJoins(t *testing.T) {
	src := source.NewDataSource("report.sql", source.SourceTypeSQL).WithPath("report.sql")
	content := `SELECT u.email, t.name
FROM users u
JOIN teams t ON t.id = u.team_id
LEFT JOIN invoices i ON i.user_id = u.id;`

	result, err := NewSQLTransformer().Transform(context.Background(), src, content)
	require.NoError(t, err)
	require.Len(t, result.Chunks, 1)
	assert.Equal(t, source.ChunkTypeSQLSchema, result.Chunks[0].Type)
	assert.Equal(t, "SELECT", result.Chunks[0].Metadata["statement_kind"])

	var joined []string
	for _, rel := range result.Relations {
		require.Equal(t, source.RelationJoins, rel.Type)
		assert.Equal(t, "users", rel.FromEntity)
		joined = append(joined, rel.ToEntity)
	}
	assert.ElementsMatch(t, []string{"teams", "invoices"}, joined)
}

func TestSQLTransformerStatementKinds(t *testing.T) {
	src := source.NewDataSource("mixed.sql", source.SourceTypeSQL).WithPath("mixed.sql")
	content := `CREATE UNIQUE INDEX idx_email ON users(email);
DROP TABLE legacy;
UPDATE users SET active = 1;`

	result, err := NewSQLTransformer().Transform(context.Background(), src, content)
	require.NoError(t, err)
	require.Len(t, result.Chunks, 3)
	assert.Equal(t, "CREATE INDEX", result.Chunks[0].Metadata["statement_kind"])
	assert.Equal(t, "DROP TABLE", result.Chunks[1].Metadata["statement_kind"])
	assert.Equal(t, "UPDATE", result.Chunks[2].Metadata["statement_kind"])
}

func TestSQLTransformerEmpty(t *testing.T) {
	src := source.NewDataSource("empty.sql", source.SourceTypeSQL).WithPath("empty.sql")
	_, err := NewSQLTransformer().Transform(context.Background(), src, "-- nothing here\n")
	assert.Error(t, err)
}
