package source

import (
	"fmt"
	"time"

	"github.com/graphlore/graphlore/internal/types"
)

// RelationType classifies the structural relation between two entities.
type RelationType string

const (
	RelationCalls      RelationType = "CALLS"
	RelationInherits   RelationType = "INHERITS"
	RelationImports    RelationType = "IMPORTS"
	RelationReferences RelationType = "REFERENCES"
	RelationJoins      RelationType = "JOINS"
	RelationContains   RelationType = "CONTAINS"
)

// String returns the string representation of RelationType.
func (rt RelationType) String() string {
	return string(rt)
}

// IsValid checks if the RelationType is a known value.
func (rt RelationType) IsValid() bool {
	switch rt {
	case RelationCalls, RelationInherits, RelationImports,
		RelationReferences, RelationJoins, RelationContains:
		return true
	default:
		return false
	}
}

// ExtractedRelation is a directional edge between two free-text entity names
// extracted by a transformer. The entity names need not pre-exist as nodes;
// the graph store merges them on write. Relations are write-once.
type ExtractedRelation struct {
	ID         types.ID       `json:"id"`
	SourceID   types.ID       `json:"source_id"`
	FromEntity string         `json:"from_entity"`
	ToEntity   string         `json:"to_entity"`
	Type       RelationType   `json:"relation_type"`
	Properties map[string]any `json:"properties,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// NewRelation creates an ExtractedRelation between two entity names.
func NewRelation(sourceID types.ID, from, to string, relType RelationType) *ExtractedRelation {
	return &ExtractedRelation{
		ID:         types.NewID(),
		SourceID:   sourceID,
		FromEntity: from,
		ToEntity:   to,
		Type:       relType,
		Properties: make(map[string]any),
		CreatedAt:  time.Now(),
	}
}

// WithProperty adds a property to the relation.
// Returns the relation for method chaining.
func (r *ExtractedRelation) WithProperty(key string, value any) *ExtractedRelation {
	if r.Properties == nil {
		r.Properties = make(map[string]any)
	}
	r.Properties[key] = value
	return r
}

// Validate validates the ExtractedRelation fields.
func (r *ExtractedRelation) Validate() error {
	if err := r.ID.Validate(); err != nil {
		return fmt.Errorf("invalid relation ID: %w", err)
	}
	if err := r.SourceID.Validate(); err != nil {
		return fmt.Errorf("invalid relation source ID: %w", err)
	}
	if r.FromEntity == "" {
		return fmt.Errorf("relation from_entity cannot be empty")
	}
	if r.ToEntity == "" {
		return fmt.Errorf("relation to_entity cannot be empty")
	}
	if !r.Type.IsValid() {
		return fmt.Errorf("invalid relation type: %s", r.Type)
	}
	return nil
}
