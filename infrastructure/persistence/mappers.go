package persistence

import (
	"github.com/helixml/affinity/domain/contact"
	"github.com/helixml/affinity/domain/embedding"
	"github.com/helixml/affinity/domain/goal"
)

// GoalMapper maps between domain Goal and persistence GoalModel.
type GoalMapper struct{}

// ToDomain converts a GoalModel to a domain Goal.
func (GoalMapper) ToDomain(e GoalModel) goal.Goal {
	return goal.ReconstructGoal(e.ID, e.OwnerID, e.Title, e.Description, e.CreatedAt, e.UpdatedAt)
}

// ToModel converts a domain Goal to a GoalModel.
func (GoalMapper) ToModel(g goal.Goal) GoalModel {
	return GoalModel{
		ID:          g.ID(),
		OwnerID:     g.OwnerID(),
		Title:       g.Title(),
		Description: g.Description(),
		CreatedAt:   g.CreatedAt(),
		UpdatedAt:   g.UpdatedAt(),
	}
}

// ContactMapper maps between domain Contact and persistence ContactModel.
type ContactMapper struct{}

// ToDomain converts a ContactModel (with preloaded interactions) to a domain Contact.
func (ContactMapper) ToDomain(e ContactModel) contact.Contact {
	interactions := make([]contact.Interaction, len(e.Interactions))
	for i, m := range e.Interactions {
		interactions[i] = contact.NewInteraction(m.Summary, m.OccurredAt)
	}
	return contact.ReconstructContact(
		e.ID,
		e.OwnerID,
		contact.Profile{
			Name:     e.Name,
			Notes:    e.Notes,
			Company:  e.Company,
			Title:    e.Title,
			LinkedIn: e.LinkedIn,
			Twitter:  e.Twitter,
		},
		interactions,
		e.CreatedAt,
		e.UpdatedAt,
	)
}

// ToModel converts a domain Contact to a ContactModel. Interaction positions
// record insertion order.
func (ContactMapper) ToModel(c contact.Contact) ContactModel {
	p := c.Profile()
	src := c.Interactions()
	interactions := make([]InteractionModel, len(src))
	for i, in := range src {
		interactions[i] = InteractionModel{
			ContactID:  c.ID(),
			Position:   i,
			Summary:    in.Summary(),
			OccurredAt: in.OccurredAt(),
		}
	}
	return ContactModel{
		ID:           c.ID(),
		OwnerID:      c.OwnerID(),
		Name:         p.Name,
		Notes:        p.Notes,
		Company:      p.Company,
		Title:        p.Title,
		LinkedIn:     p.LinkedIn,
		Twitter:      p.Twitter,
		CreatedAt:    c.CreatedAt(),
		UpdatedAt:    c.UpdatedAt(),
		Interactions: interactions,
	}
}

// EmbeddingMapper maps between embedding.Cached and EmbeddingModel.
type EmbeddingMapper struct{}

// ToDomain converts an EmbeddingModel to an embedding.Cached.
func (EmbeddingMapper) ToDomain(e EmbeddingModel) embedding.Cached {
	key := embedding.NewKey(embedding.EntityType(e.EntityType), e.EntityID)
	return embedding.ReconstructCached(key, e.Model, e.TextHash, []float64(e.Vector), e.UpdatedAt)
}

// ToModel converts an embedding.Cached to an EmbeddingModel.
func (EmbeddingMapper) ToModel(c embedding.Cached) EmbeddingModel {
	return EmbeddingModel{
		EntityType: string(c.Key().EntityType()),
		EntityID:   c.Key().EntityID(),
		Model:      c.Model(),
		TextHash:   c.TextHash(),
		Vector:     Float64Slice(c.Vector()),
		UpdatedAt:  c.UpdatedAt(),
	}
}
