package persistence

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// GoalModel represents a goal in the database.
type GoalModel struct {
	ID          string    `gorm:"column:id;primaryKey;size:64"`
	OwnerID     string    `gorm:"column:owner_id;index;size:64;not null"`
	Title       string    `gorm:"column:title;size:255"`
	Description string    `gorm:"column:description;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

// TableName returns the table name.
func (GoalModel) TableName() string { return "goals" }

// ContactModel represents a contact in the database.
type ContactModel struct {
	ID           string             `gorm:"column:id;primaryKey;size:64"`
	OwnerID      string             `gorm:"column:owner_id;index;size:64;not null"`
	Name         string             `gorm:"column:name;size:255"`
	Notes        string             `gorm:"column:notes;type:text"`
	Company      string             `gorm:"column:company;size:255"`
	Title        string             `gorm:"column:title;size:255"`
	LinkedIn     string             `gorm:"column:linkedin;size:512"`
	Twitter      string             `gorm:"column:twitter;size:255"`
	CreatedAt    time.Time          `gorm:"column:created_at;index"`
	UpdatedAt    time.Time          `gorm:"column:updated_at"`
	Interactions []InteractionModel `gorm:"foreignKey:ContactID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name.
func (ContactModel) TableName() string { return "contacts" }

// InteractionModel represents one interaction summary for a contact.
type InteractionModel struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ContactID  string    `gorm:"column:contact_id;index;size:64;not null"`
	Position   int       `gorm:"column:position"`
	Summary    string    `gorm:"column:summary;type:text"`
	OccurredAt time.Time `gorm:"column:occurred_at"`
}

// TableName returns the table name.
func (InteractionModel) TableName() string { return "contact_interactions" }

// EmbeddingModel is one cached embedding row, keyed by entity type and ID.
type EmbeddingModel struct {
	EntityType string       `gorm:"column:entity_type;primaryKey;size:16"`
	EntityID   string       `gorm:"column:entity_id;primaryKey;size:64"`
	Model      string       `gorm:"column:model;size:255"`
	TextHash   string       `gorm:"column:text_hash;size:64"`
	Vector     Float64Slice `gorm:"column:vector;type:text"`
	UpdatedAt  time.Time    `gorm:"column:updated_at"`
}

// TableName returns the table name.
func (EmbeddingModel) TableName() string { return "entity_embeddings" }

// Float64Slice stores a []float64 as JSON text so the same column works on
// SQLite and PostgreSQL.
type Float64Slice []float64

// Scan implements sql.Scanner.
func (f *Float64Slice) Scan(value any) error {
	if value == nil {
		*f = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Float64Slice", value)
	}

	return json.Unmarshal(data, f)
}

// Value implements driver.Valuer.
func (f Float64Slice) Value() (driver.Value, error) {
	if f == nil {
		return nil, nil
	}
	data, err := json.Marshal([]float64(f))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
