// Package graph provides the Neo4j client used by the graph side of hybrid
// storage and retrieval. The Client interface abstracts the driver so stores
// and the query layer can run against the in-memory mock in tests.
package graph

import (
	"context"
	"time"

	"github.com/graphlore/graphlore/internal/types"
)

// Client provides graph database operations.
// Implementations must be thread-safe for concurrent access.
type Client interface {
	// Connect establishes a connection to the graph database.
	Connect(ctx context.Context) error

	// Close releases all resources and closes the database connection.
	Close(ctx context.Context) error

	// Health returns the current health status of the connection.
	Health(ctx context.Context) types.HealthStatus

	// Query executes a Cypher query in a read transaction.
	Query(ctx context.Context, cypher string, params map[string]any) (QueryResult, error)

	// Write executes a Cypher query in a write transaction.
	Write(ctx context.Context, cypher string, params map[string]any) (QueryResult, error)

	// CreateNode creates a node with the given labels and properties and
	// returns its element ID.
	CreateNode(ctx context.Context, labels []string, props map[string]any) (string, error)

	// MergeEntityRelation merges both entity nodes by name and the typed
	// relationship between them. Entities need not pre-exist; repeated merges
	// of the same triple are idempotent.
	MergeEntityRelation(ctx context.Context, from, to, relType string, props map[string]any) error

	// FulltextSearch runs a fulltext index query and returns matching records
	// ordered by score.
	FulltextSearch(ctx context.Context, index, query string, limit int) (QueryResult, error)
}

// QueryResult is the result of a Cypher query execution.
type QueryResult struct {
	// Records contains the result rows as maps of column name to value.
	Records []map[string]any

	// Columns contains the column names of the result set.
	Columns []string

	// Summary contains metadata about the query execution.
	Summary QuerySummary
}

// QuerySummary provides metadata about query execution.
type QuerySummary struct {
	ExecutionTime        time.Duration
	NodesCreated         int
	NodesDeleted         int
	RelationshipsCreated int
	PropertiesSet        int
}

// Config contains connection options for graph database clients.
type Config struct {
	// URI is the connection URI. For Neo4j:
	//   - "bolt://host:port" for unencrypted connections
	//   - "bolt+s://host:port" for TLS
	//   - "neo4j://" or "neo4j+s://" for routing
	URI string `yaml:"uri" json:"uri" mapstructure:"uri" validate:"required"`

	// Username for authentication.
	Username string `yaml:"username" json:"username" mapstructure:"username" validate:"required"`

	// Password for authentication.
	Password string `yaml:"password" json:"password" mapstructure:"password" validate:"required"`

	// Database name to connect to. Empty uses the default database.
	Database string `yaml:"database" json:"database" mapstructure:"database"`

	// MaxConnectionPoolSize limits the driver connection pool.
	// Zero or negative uses the driver default.
	MaxConnectionPoolSize int `yaml:"max_connection_pool_size" json:"max_connection_pool_size" mapstructure:"max_connection_pool_size"`

	// ConnectionTimeout is the maximum time to wait for a connection.
	ConnectionTimeout time.Duration `yaml:"connection_timeout" json:"connection_timeout" mapstructure:"connection_timeout"`

	// MaxTransactionRetryTime is the maximum time to retry failed transactions.
	MaxTransactionRetryTime time.Duration `yaml:"max_transaction_retry_time" json:"max_transaction_retry_time" mapstructure:"max_transaction_retry_time"`
}

// DefaultConfig returns a Config with local development defaults.
func DefaultConfig() Config {
	return Config{
		URI:                     "bolt://localhost:7687",
		Username:                "neo4j",
		Password:                "password",
		MaxConnectionPoolSize:   50,
		ConnectionTimeout:       30 * time.Second,
		MaxTransactionRetryTime: 30 * time.Second,
	}
}

// Validate checks if the configuration is usable.
func (c Config) Validate() error {
	if c.URI == "" {
		return types.NewError(ErrCodeInvalidConfig, "graph URI cannot be empty")
	}
	if c.Username == "" {
		return types.NewError(ErrCodeInvalidConfig, "graph username cannot be empty")
	}
	if c.Password == "" {
		return types.NewError(ErrCodeInvalidConfig, "graph password cannot be empty")
	}
	if c.ConnectionTimeout <= 0 {
		return types.NewError(ErrCodeInvalidConfig, "connection_timeout must be positive")
	}
	if c.MaxTransactionRetryTime <= 0 {
		return types.NewError(ErrCodeInvalidConfig, "max_transaction_retry_time must be positive")
	}
	return nil
}
