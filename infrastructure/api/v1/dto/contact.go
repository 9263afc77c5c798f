package dto

import (
	"github.com/helixml/affinity/domain/contact"
	"github.com/helixml/affinity/infrastructure/api/jsonapi"
)

// InteractionInput is one logged interaction.
type InteractionInput struct {
	Summary    string           `json:"summary"`
	OccurredAt jsonapi.DateTime `json:"occurred_at"`
}

// ContactInput holds the writable contact attributes.
type ContactInput struct {
	OwnerID      string             `json:"owner_id"`
	Name         string             `json:"name"`
	Notes        string             `json:"notes"`
	Company      string             `json:"company"`
	Title        string             `json:"title"`
	LinkedIn     string             `json:"linkedin"`
	Twitter      string             `json:"twitter"`
	Interactions []InteractionInput `json:"interactions"`
}

// ContactData is the JSON:API resource object of a contact request.
type ContactData struct {
	Type       string       `json:"type"`
	ID         string       `json:"id,omitempty"`
	Attributes ContactInput `json:"attributes"`
}

// ContactRequest is the body of POST /contacts and PUT /contacts/{id}.
// Interactions replace the stored list.
type ContactRequest struct {
	Data ContactData `json:"data"`
}

// Validate checks the resource type and, when pathID is set, that the body
// ID agrees with it.
func (r ContactRequest) Validate(pathID string) error {
	return validateResource(jsonapi.TypeContact, r.Data.Type, r.Data.ID, pathID)
}

// ToDomain converts the request into a contact with the given ID.
func (r ContactRequest) ToDomain(id string) contact.Contact {
	a := r.Data.Attributes
	interactions := make([]contact.Interaction, len(a.Interactions))
	for i, in := range a.Interactions {
		interactions[i] = contact.NewInteraction(in.Summary, in.OccurredAt.Time())
	}
	return contact.NewContact(id, a.OwnerID, contact.Profile{
		Name:     a.Name,
		Notes:    a.Notes,
		Company:  a.Company,
		Title:    a.Title,
		LinkedIn: a.LinkedIn,
		Twitter:  a.Twitter,
	}, interactions...)
}
