// Package contact provides the contact and interaction domain types.
package contact

import (
	"sort"
	"time"
)

// Interaction is a summary of one past exchange with a contact.
type Interaction struct {
	summary    string
	occurredAt time.Time
}

// NewInteraction creates a new Interaction.
func NewInteraction(summary string, occurredAt time.Time) Interaction {
	return Interaction{summary: summary, occurredAt: occurredAt}
}

// Summary returns the interaction summary text.
func (i Interaction) Summary() string { return i.summary }

// OccurredAt returns when the interaction happened.
func (i Interaction) OccurredAt() time.Time { return i.occurredAt }

// Contact is a person in a user's network.
type Contact struct {
	id           string
	ownerID      string
	name         string
	notes        string
	company      string
	title        string
	linkedIn     string
	twitter      string
	interactions []Interaction
	createdAt    time.Time
	updatedAt    time.Time
}

// Profile holds the free-text fields of a contact.
type Profile struct {
	Name     string
	Notes    string
	Company  string
	Title    string
	LinkedIn string
	Twitter  string
}

// NewContact creates a new Contact.
func NewContact(id, ownerID string, profile Profile, interactions ...Interaction) Contact {
	now := time.Now().UTC()
	return Contact{
		id:           id,
		ownerID:      ownerID,
		name:         profile.Name,
		notes:        profile.Notes,
		company:      profile.Company,
		title:        profile.Title,
		linkedIn:     profile.LinkedIn,
		twitter:      profile.Twitter,
		interactions: copyInteractions(interactions),
		createdAt:    now,
		updatedAt:    now,
	}
}

// ReconstructContact recreates a Contact from persistence.
func ReconstructContact(
	id, ownerID string,
	profile Profile,
	interactions []Interaction,
	createdAt, updatedAt time.Time,
) Contact {
	c := NewContact(id, ownerID, profile, interactions...)
	c.createdAt = createdAt
	c.updatedAt = updatedAt
	return c
}

// ID returns the contact ID.
func (c Contact) ID() string { return c.id }

// OwnerID returns the ID of the user who owns the contact.
func (c Contact) OwnerID() string { return c.ownerID }

// Name returns the display name.
func (c Contact) Name() string { return c.name }

// Notes returns free-text notes.
func (c Contact) Notes() string { return c.notes }

// Company returns the company name.
func (c Contact) Company() string { return c.company }

// Title returns the job title.
func (c Contact) Title() string { return c.title }

// LinkedIn returns the LinkedIn handle or URL.
func (c Contact) LinkedIn() string { return c.linkedIn }

// Twitter returns the Twitter handle.
func (c Contact) Twitter() string { return c.twitter }

// Profile returns the free-text fields.
func (c Contact) Profile() Profile {
	return Profile{
		Name:     c.name,
		Notes:    c.notes,
		Company:  c.company,
		Title:    c.title,
		LinkedIn: c.linkedIn,
		Twitter:  c.twitter,
	}
}

// Interactions returns a copy of all interactions in insertion order.
func (c Contact) Interactions() []Interaction {
	return copyInteractions(c.interactions)
}

// CreatedAt returns the creation timestamp.
func (c Contact) CreatedAt() time.Time { return c.createdAt }

// UpdatedAt returns the last update timestamp.
func (c Contact) UpdatedAt() time.Time { return c.updatedAt }

// RecentInteractions returns up to n interactions, newest first.
// Interactions with equal timestamps keep their insertion order.
func (c Contact) RecentInteractions(n int) []Interaction {
	if n <= 0 || len(c.interactions) == 0 {
		return []Interaction{}
	}
	sorted := copyInteractions(c.interactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].occurredAt.After(sorted[j].occurredAt)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// WithProfile returns a copy of the contact with new free-text fields.
func (c Contact) WithProfile(profile Profile) Contact {
	c.name = profile.Name
	c.notes = profile.Notes
	c.company = profile.Company
	c.title = profile.Title
	c.linkedIn = profile.LinkedIn
	c.twitter = profile.Twitter
	c.updatedAt = time.Now().UTC()
	return c
}

// WithInteraction returns a copy of the contact with an interaction appended.
func (c Contact) WithInteraction(interaction Interaction) Contact {
	c.interactions = append(copyInteractions(c.interactions), interaction)
	c.updatedAt = time.Now().UTC()
	return c
}

func copyInteractions(in []Interaction) []Interaction {
	out := make([]Interaction, len(in))
	copy(out, in)
	return out
}
