package graph

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/graphlore/graphlore/internal/types"
)

// MockNode is a node stored by the mock client.
type MockNode struct {
	ID     string
	Labels []string
	Props  map[string]any
}

// MockRelation is a relationship stored by the mock client.
type MockRelation struct {
	From  string
	To    string
	Type  string
	Props map[string]any
}

// MockClient is an in-memory Client for tests. Nodes and entity relations
// are held in maps; Cypher passed to Query/Write is recorded but not
// interpreted. Configurable error fields fail the matching operation.
type MockClient struct {
	mu sync.RWMutex

	connected  bool
	nodes      map[string]MockNode
	relations  []MockRelation
	queries    []string
	nextNodeID int

	// QueryResults are returned by Query/FulltextSearch in FIFO order.
	QueryResults []QueryResult

	ConnectErr  error
	QueryErr    error
	WriteErr    error
	SearchErr   error
	HealthState types.HealthStatus
}

// NewMockClient creates an empty mock graph client.
func NewMockClient() *MockClient {
	return &MockClient{
		nodes:       make(map[string]MockNode),
		HealthState: types.Healthy("mock graph client"),
		nextNodeID:  1,
	}
}

// Connect marks the mock connected.
func (m *MockClient) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ConnectErr != nil {
		return m.ConnectErr
	}
	m.connected = true
	return nil
}

// Close marks the mock disconnected.
func (m *MockClient) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	return nil
}

// Health returns the configured health status, or unhealthy when not
// connected.
func (m *MockClient) Health(ctx context.Context) types.HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.connected {
		return types.Unhealthy("not connected")
	}
	return m.HealthState
}

// Query records the cypher and pops the next queued result.
func (m *MockClient) Query(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, cypher)
	if m.QueryErr != nil {
		return QueryResult{}, m.QueryErr
	}
	return m.popResult(), nil
}

// Write records the cypher and pops the next queued result.
func (m *MockClient) Write(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, cypher)
	if m.WriteErr != nil {
		return QueryResult{}, m.WriteErr
	}
	return m.popResult(), nil
}

// CreateNode stores a node and returns a generated ID.
func (m *MockClient) CreateNode(ctx context.Context, labels []string, props map[string]any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return "", m.WriteErr
	}
	id := fmt.Sprintf("node-%d", m.nextNodeID)
	m.nextNodeID++
	m.nodes[id] = MockNode{ID: id, Labels: labels, Props: props}
	return id, nil
}

// MergeEntityRelation stores an entity relation, deduplicating repeated
// merges of the same triple.
func (m *MockClient) MergeEntityRelation(ctx context.Context, from, to, relType string, props map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	for _, rel := range m.relations {
		if rel.From == from && rel.To == to && rel.Type == relType {
			return nil
		}
	}
	m.relations = append(m.relations, MockRelation{From: from, To: to, Type: relType, Props: props})
	return nil
}

// FulltextSearch returns the next queued result, or matches stored node
// properties against the query terms when none is queued.
func (m *MockClient) FulltextSearch(ctx context.Context, index, query string, limit int) (QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SearchErr != nil {
		return QueryResult{}, m.SearchErr
	}
	if len(m.QueryResults) > 0 {
		return m.popResult(), nil
	}

	result := QueryResult{Columns: []string{"node", "score"}}
	needle := strings.ToLower(query)
	for _, node := range m.nodes {
		for _, v := range node.Props {
			s, ok := v.(string)
			if !ok || !strings.Contains(strings.ToLower(s), needle) {
				continue
			}
			result.Records = append(result.Records, map[string]any{
				"node":  node.Props,
				"score": 1.0,
			})
			break
		}
		if limit > 0 && len(result.Records) >= limit {
			break
		}
	}
	return result, nil
}

func (m *MockClient) popResult() QueryResult {
	if len(m.QueryResults) == 0 {
		return QueryResult{}
	}
	result := m.QueryResults[0]
	m.QueryResults = m.QueryResults[1:]
	return result
}

// Nodes returns a snapshot of stored nodes.
func (m *MockClient) Nodes() []MockNode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]MockNode, 0, len(m.nodes))
	for _, node := range m.nodes {
		out = append(out, node)
	}
	return out
}

// Relations returns a snapshot of stored entity relations.
func (m *MockClient) Relations() []MockRelation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]MockRelation, len(m.relations))
	copy(out, m.relations)
	return out
}

// Queries returns the recorded Cypher statements.
func (m *MockClient) Queries() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.queries))
	copy(out, m.queries)
	return out
}
