package jsonapi

import (
	"fmt"
	"time"

	"github.com/helixml/affinity/application/service"
	"github.com/helixml/affinity/domain/contact"
	"github.com/helixml/affinity/domain/goal"
)

// Resource types.
const (
	TypeGoal    = "goal"
	TypeContact = "contact"
	TypeMatch   = "match"
)

// GoalAttributes represents goal attributes in JSON:API format.
type GoalAttributes struct {
	OwnerID     string     `json:"owner_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// InteractionAttributes represents one logged interaction with a contact.
type InteractionAttributes struct {
	Summary    string   `json:"summary"`
	OccurredAt DateTime `json:"occurred_at"`
}

// ContactAttributes represents contact attributes in JSON:API format.
type ContactAttributes struct {
	OwnerID      string                  `json:"owner_id"`
	Name         string                  `json:"name"`
	Notes        string                  `json:"notes,omitempty"`
	Company      string                  `json:"company,omitempty"`
	Title        string                  `json:"title,omitempty"`
	LinkedIn     string                  `json:"linkedin,omitempty"`
	Twitter      string                  `json:"twitter,omitempty"`
	Interactions []InteractionAttributes `json:"interactions"`
	CreatedAt    *time.Time              `json:"created_at,omitempty"`
	UpdatedAt    *time.Time              `json:"updated_at,omitempty"`
}

// MatchAttributes represents one ranked contact for a goal.
type MatchAttributes struct {
	GoalID      string  `json:"goal_id"`
	ContactID   string  `json:"contact_id"`
	ContactName string  `json:"contact_name"`
	Score       float64 `json:"score"`
	Rank        int     `json:"rank"`
	Available   bool    `json:"available"`
}

// Serializer converts domain objects to JSON:API resources.
type Serializer struct{}

// NewSerializer creates a new Serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// GoalResource converts a goal to a JSON:API resource.
func (s *Serializer) GoalResource(g goal.Goal) *Resource {
	attrs := &GoalAttributes{
		OwnerID:     g.OwnerID(),
		Title:       g.Title(),
		Description: g.Description(),
		CreatedAt:   timePtr(g.CreatedAt()),
		UpdatedAt:   timePtr(g.UpdatedAt()),
	}
	return NewResource(TypeGoal, g.ID(), attrs)
}

// GoalResources converts multiple goals to JSON:API resources.
func (s *Serializer) GoalResources(goals []goal.Goal) []*Resource {
	resources := make([]*Resource, len(goals))
	for i, g := range goals {
		resources[i] = s.GoalResource(g)
	}
	return resources
}

// ContactResource converts a contact to a JSON:API resource.
func (s *Serializer) ContactResource(c contact.Contact) *Resource {
	interactions := c.Interactions()
	attrs := &ContactAttributes{
		OwnerID:      c.OwnerID(),
		Name:         c.Name(),
		Notes:        c.Notes(),
		Company:      c.Company(),
		Title:        c.Title(),
		LinkedIn:     c.LinkedIn(),
		Twitter:      c.Twitter(),
		Interactions: make([]InteractionAttributes, len(interactions)),
		CreatedAt:    timePtr(c.CreatedAt()),
		UpdatedAt:    timePtr(c.UpdatedAt()),
	}
	for i, in := range interactions {
		attrs.Interactions[i] = InteractionAttributes{
			Summary:    in.Summary(),
			OccurredAt: NewDateTime(in.OccurredAt()),
		}
	}
	return NewResource(TypeContact, c.ID(), attrs)
}

// ContactResources converts multiple contacts to JSON:API resources.
func (s *Serializer) ContactResources(contacts []contact.Contact) []*Resource {
	resources := make([]*Resource, len(contacts))
	for i, c := range contacts {
		resources[i] = s.ContactResource(c)
	}
	return resources
}

// MatchResources converts ranked matches to JSON:API resources. The
// resource ID is "<goal>:<contact>".
func (s *Serializer) MatchResources(matches []service.Match) []*Resource {
	resources := make([]*Resource, len(matches))
	for i, m := range matches {
		resources[i] = NewResource(TypeMatch, fmt.Sprintf("%s:%s", m.GoalID, m.ContactID), &MatchAttributes{
			GoalID:      m.GoalID,
			ContactID:   m.ContactID,
			ContactName: m.ContactName,
			Score:       m.Score,
			Rank:        m.Rank,
			Available:   m.Available,
		})
	}
	return resources
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
