// Package dto holds request bodies accepted by the v1 API.
package dto

import (
	"fmt"

	"github.com/helixml/affinity/domain/goal"
	"github.com/helixml/affinity/infrastructure/api/jsonapi"
)

// GoalInput holds the writable goal attributes.
type GoalInput struct {
	OwnerID     string `json:"owner_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// GoalData is the JSON:API resource object of a goal request.
type GoalData struct {
	Type       string    `json:"type"`
	ID         string    `json:"id,omitempty"`
	Attributes GoalInput `json:"attributes"`
}

// GoalRequest is the body of POST /goals and PUT /goals/{id}.
type GoalRequest struct {
	Data GoalData `json:"data"`
}

// Validate checks the resource type and, when pathID is set, that the body
// ID agrees with it.
func (r GoalRequest) Validate(pathID string) error {
	return validateResource(jsonapi.TypeGoal, r.Data.Type, r.Data.ID, pathID)
}

// ToDomain converts the request into a goal with the given ID.
func (r GoalRequest) ToDomain(id string) goal.Goal {
	a := r.Data.Attributes
	return goal.NewGoal(id, a.OwnerID, a.Title, a.Description)
}

func validateResource(want, gotType, bodyID, pathID string) error {
	if gotType != "" && gotType != want {
		return fmt.Errorf("resource type %q, want %q", gotType, want)
	}
	if pathID != "" && bodyID != "" && bodyID != pathID {
		return fmt.Errorf("body id %q does not match path id %q", bodyID, pathID)
	}
	return nil
}
