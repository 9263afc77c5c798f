// Package goal provides the goal domain type.
package goal

import (
	"strings"
	"time"
)

// Goal is a user's stated objective. Its description is the semantic signal
// matched against contacts.
type Goal struct {
	id          string
	ownerID     string
	title       string
	description string
	createdAt   time.Time
	updatedAt   time.Time
}

// NewGoal creates a new Goal.
func NewGoal(id, ownerID, title, description string) Goal {
	now := time.Now().UTC()
	return Goal{
		id:          id,
		ownerID:     ownerID,
		title:       strings.TrimSpace(title),
		description: description,
		createdAt:   now,
		updatedAt:   now,
	}
}

// ReconstructGoal recreates a Goal from persistence.
func ReconstructGoal(id, ownerID, title, description string, createdAt, updatedAt time.Time) Goal {
	return Goal{
		id:          id,
		ownerID:     ownerID,
		title:       title,
		description: description,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// ID returns the goal ID.
func (g Goal) ID() string { return g.id }

// OwnerID returns the ID of the user who owns the goal.
func (g Goal) OwnerID() string { return g.ownerID }

// Title returns the short goal title.
func (g Goal) Title() string { return g.title }

// Description returns the free-text goal description.
func (g Goal) Description() string { return g.description }

// CreatedAt returns the creation timestamp.
func (g Goal) CreatedAt() time.Time { return g.createdAt }

// UpdatedAt returns the last update timestamp.
func (g Goal) UpdatedAt() time.Time { return g.updatedAt }

// HasOwner reports whether the goal is attached to a user.
func (g Goal) HasOwner() bool { return strings.TrimSpace(g.ownerID) != "" }

// WithDescription returns a copy of the goal with a new description.
func (g Goal) WithDescription(description string) Goal {
	g.description = description
	g.updatedAt = time.Now().UTC()
	return g
}

// WithTitle returns a copy of the goal with a new title.
func (g Goal) WithTitle(title string) Goal {
	g.title = strings.TrimSpace(title)
	g.updatedAt = time.Now().UTC()
	return g
}
