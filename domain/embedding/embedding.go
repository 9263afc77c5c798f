// Package embedding defines the embedding cache domain: entity keys, cached
// vectors with their staleness hash, and the embedder and store contracts.
package embedding

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// EntityType identifies what kind of record an embedding belongs to.
type EntityType string

// EntityType values.
const (
	EntityTypeGoal    EntityType = "goal"
	EntityTypeContact EntityType = "contact"
)

// Valid reports whether the entity type is known.
func (t EntityType) Valid() bool {
	return t == EntityTypeGoal || t == EntityTypeContact
}

// Key addresses one cached embedding.
type Key struct {
	entityType EntityType
	entityID   string
}

// NewKey creates a Key.
func NewKey(entityType EntityType, entityID string) Key {
	return Key{entityType: entityType, entityID: entityID}
}

// GoalKey returns the key for a goal's embedding.
func GoalKey(goalID string) Key { return NewKey(EntityTypeGoal, goalID) }

// ContactKey returns the key for a contact's embedding.
func ContactKey(contactID string) Key { return NewKey(EntityTypeContact, contactID) }

// EntityType returns the entity type.
func (k Key) EntityType() EntityType { return k.entityType }

// EntityID returns the entity ID.
func (k Key) EntityID() string { return k.entityID }

// String returns "type:id".
func (k Key) String() string {
	return fmt.Sprintf("%s:%s", k.entityType, k.entityID)
}

// Cached is a stored embedding paired with the hash of its source text and
// the model that produced it.
type Cached struct {
	key       Key
	model     string
	textHash  string
	vector    []float64
	updatedAt time.Time
}

// NewCached creates a Cached embedding.
func NewCached(key Key, model, textHash string, vector []float64) Cached {
	return Cached{
		key:       key,
		model:     model,
		textHash:  textHash,
		vector:    copyVector(vector),
		updatedAt: time.Now().UTC(),
	}
}

// ReconstructCached recreates a Cached embedding from persistence.
func ReconstructCached(key Key, model, textHash string, vector []float64, updatedAt time.Time) Cached {
	c := NewCached(key, model, textHash, vector)
	c.updatedAt = updatedAt
	return c
}

// Key returns the cache key.
func (c Cached) Key() Key { return c.key }

// Model returns the identifier of the model that produced the vector.
func (c Cached) Model() string { return c.model }

// TextHash returns the hash of the text the vector was computed from.
func (c Cached) TextHash() string { return c.textHash }

// Vector returns a copy of the embedding vector.
func (c Cached) Vector() []float64 { return copyVector(c.vector) }

// UpdatedAt returns when the vector was last stored.
func (c Cached) UpdatedAt() time.Time { return c.updatedAt }

// Fresh reports whether the cached vector can be reused for text with the
// given hash under the given model.
func (c Cached) Fresh(textHash, model string) bool {
	return len(c.vector) > 0 && c.textHash == textHash && c.model == model
}

// TextHash returns the lowercase hex SHA-256 of text.
func TextHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func copyVector(v []float64) []float64 {
	if v == nil {
		return nil
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
