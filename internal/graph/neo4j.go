package graph

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/graphlore/graphlore/internal/types"
)

// Neo4jClient implements Client for Neo4j. It provides connection pooling,
// connect-time backoff, and health monitoring.
type Neo4jClient struct {
	config Config
	driver neo4j.DriverWithContext
}

// NewNeo4jClient creates a Neo4j client with the given configuration.
// The client must be connected via Connect before use.
func NewNeo4jClient(config Config) (*Neo4jClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Neo4jClient{config: config}, nil
}

// Connect establishes the driver connection with exponential backoff.
func (c *Neo4jClient) Connect(ctx context.Context) error {
	auth := neo4j.BasicAuth(c.config.Username, c.config.Password, "")

	driverConfig := func(config *neo4j.Config) {
		config.MaxConnectionPoolSize = c.config.MaxConnectionPoolSize
		config.ConnectionAcquisitionTimeout = c.config.ConnectionTimeout
		config.MaxTransactionRetryTime = c.config.MaxTransactionRetryTime
		// Encryption follows the URI scheme (bolt:// vs bolt+s://).
	}

	var lastErr error
	maxRetries := 5
	baseDelay := 100 * time.Millisecond

	for attempt := 0; attempt < maxRetries; attempt++ {
		driver, err := neo4j.NewDriverWithContext(c.config.URI, auth, driverConfig)
		if err == nil {
			if err = driver.VerifyConnectivity(ctx); err == nil {
				c.driver = driver
				return nil
			}
		}
		lastErr = err

		if ctx.Err() != nil {
			return types.WrapError(ErrCodeConnectionFailed,
				"connection attempt cancelled", ctx.Err())
		}

		delay := baseDelay * time.Duration(math.Pow(2, float64(attempt)))
		if delay > c.config.ConnectionTimeout {
			delay = c.config.ConnectionTimeout
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return types.WrapError(ErrCodeConnectionFailed,
				"connection attempt cancelled", ctx.Err())
		}
	}

	return types.WrapError(ErrCodeConnectionFailed,
		fmt.Sprintf("failed to connect after %d attempts", maxRetries), lastErr)
}

// Close releases all resources and closes the driver.
func (c *Neo4jClient) Close(ctx context.Context) error {
	if c.driver == nil {
		return nil
	}
	if err := c.driver.Close(ctx); err != nil {
		return types.WrapError(ErrCodeConnectionClosed, "failed to close driver", err)
	}
	c.driver = nil
	return nil
}

// Health verifies driver connectivity with a bounded timeout.
func (c *Neo4jClient) Health(ctx context.Context) types.HealthStatus {
	if c.driver == nil {
		return types.Unhealthy("driver not initialized")
	}
	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.driver.VerifyConnectivity(healthCtx); err != nil {
		return types.Unhealthy(fmt.Sprintf("connectivity check failed: %v", err))
	}
	return types.Healthy("connected to Neo4j")
}

// Query executes a Cypher query in a read transaction.
func (c *Neo4jClient) Query(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	return c.run(ctx, cypher, params, false)
}

// Write executes a Cypher query in a write transaction.
func (c *Neo4jClient) Write(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	return c.run(ctx, cypher, params, true)
}

func (c *Neo4jClient) run(ctx context.Context, cypher string, params map[string]any, write bool) (QueryResult, error) {
	if c.driver == nil {
		return QueryResult{}, types.NewError(ErrCodeConnectionClosed, "driver not connected")
	}

	startTime := time.Now()
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.config.Database})
	defer session.Close(ctx)

	work := func(tx neo4j.ManagedTransaction) (any, error) {
		neoResult, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		records, err := neoResult.Collect(ctx)
		if err != nil {
			return nil, err
		}
		summary, err := neoResult.Consume(ctx)
		if err != nil {
			return nil, err
		}
		return convertResult(records, summary), nil
	}

	var result any
	var err error
	if write {
		result, err = session.ExecuteWrite(ctx, work)
	} else {
		result, err = session.ExecuteRead(ctx, work)
	}
	if err != nil {
		code := ErrCodeQueryFailed
		if write {
			code = ErrCodeWriteFailed
		}
		return QueryResult{}, types.WrapError(code, "query execution failed", err)
	}

	queryResult := result.(QueryResult)
	queryResult.Summary.ExecutionTime = time.Since(startTime)
	return queryResult, nil
}

// CreateNode creates a node with the given labels and properties.
func (c *Neo4jClient) CreateNode(ctx context.Context, labels []string, props map[string]any) (string, error) {
	labelStr := ""
	for _, label := range labels {
		labelStr += ":" + label
	}
	cypher := fmt.Sprintf("CREATE (n%s) SET n = $props RETURN elementId(n) AS id", labelStr)

	result, err := c.Write(ctx, cypher, map[string]any{"props": props})
	if err != nil {
		return "", err
	}
	if len(result.Records) == 0 {
		return "", types.NewError(ErrCodeWriteFailed, "create returned no id")
	}
	id, _ := result.Records[0]["id"].(string)
	return id, nil
}

// MergeEntityRelation merges both entity nodes and the relationship between
// them. The relationship type is interpolated into the query; it is
// sanitized because Cypher does not parameterize relationship types.
func (c *Neo4jClient) MergeEntityRelation(ctx context.Context, from, to, relType string, props map[string]any) error {
	cypher := fmt.Sprintf(`
		MERGE (from:Entity {name: $from})
		MERGE (to:Entity {name: $to})
		MERGE (from)-[r:%s]->(to)
		SET r += $props`, sanitizeRelType(relType))

	if props == nil {
		props = map[string]any{}
	}
	_, err := c.Write(ctx, cypher, map[string]any{
		"from":  from,
		"to":    to,
		"props": props,
	})
	return err
}

// FulltextSearch queries a fulltext index, returning node and score columns
// ordered by score.
func (c *Neo4jClient) FulltextSearch(ctx context.Context, index, query string, limit int) (QueryResult, error) {
	if limit <= 0 {
		limit = 10
	}
	cypher := `
		CALL db.index.fulltext.queryNodes($index, $query)
		YIELD node, score
		RETURN node, score
		ORDER BY score DESC
		LIMIT $limit`
	return c.Query(ctx, cypher, map[string]any{
		"index": index,
		"query": query,
		"limit": limit,
	})
}

// sanitizeRelType restricts a relationship type to identifier characters.
func sanitizeRelType(relType string) string {
	var b strings.Builder
	for _, r := range relType {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "RELATED_TO"
	}
	return b.String()
}

// convertResult converts driver records and summary to QueryResult.
func convertResult(records []*neo4j.Record, summary neo4j.ResultSummary) QueryResult {
	result := QueryResult{
		Records: make([]map[string]any, 0, len(records)),
		Columns: []string{},
	}
	if len(records) > 0 {
		result.Columns = records[0].Keys
	}
	for _, record := range records {
		recordMap := make(map[string]any, len(record.Keys))
		for i, key := range record.Keys {
			recordMap[key] = record.Values[i]
		}
		result.Records = append(result.Records, recordMap)
	}
	if summary != nil && summary.Counters() != nil {
		counters := summary.Counters()
		result.Summary = QuerySummary{
			NodesCreated:         counters.NodesCreated(),
			NodesDeleted:         counters.NodesDeleted(),
			RelationshipsCreated: counters.RelationshipsCreated(),
			PropertiesSet:        counters.PropertiesSet(),
		}
	}
	return result
}
