// Package bio composes the descriptive text embedded for goals and contacts.
package bio

import (
	"strings"

	"github.com/helixml/affinity/domain/contact"
	"github.com/helixml/affinity/domain/goal"
)

// Separator joins the fields of a contact bio.
const Separator = " | "

// DefaultInteractionLimit is the number of recent interactions included in a
// contact bio.
const DefaultInteractionLimit = 5

// Composer builds bio text. The zero value is not usable; use NewComposer.
type Composer struct {
	interactionLimit int
}

// NewComposer creates a Composer that includes up to interactionLimit recent
// interactions per contact. Negative limits are treated as zero.
func NewComposer(interactionLimit int) Composer {
	return Composer{interactionLimit: max(interactionLimit, 0)}
}

// DefaultComposer returns a Composer using DefaultInteractionLimit.
func DefaultComposer() Composer {
	return NewComposer(DefaultInteractionLimit)
}

// InteractionLimit returns the number of interactions included per contact.
func (c Composer) InteractionLimit() int { return c.interactionLimit }

// ContactBio joins the non-empty fields of a contact in a fixed order: name,
// notes, LinkedIn, Twitter, company, title, then the most recent interaction
// summaries. The leading fields survive truncation.
func (c Composer) ContactBio(ct contact.Contact) string {
	parts := make([]string, 0, 6+c.interactionLimit)
	parts = appendField(parts, ct.Name())
	parts = appendField(parts, ct.Notes())
	parts = appendField(parts, ct.LinkedIn())
	parts = appendField(parts, ct.Twitter())
	parts = appendField(parts, ct.Company())
	parts = appendField(parts, ct.Title())
	for _, interaction := range ct.RecentInteractions(c.interactionLimit) {
		parts = appendField(parts, interaction.Summary())
	}
	return strings.Join(parts, Separator)
}

// GoalBio returns the goal description with whitespace normalized. The title
// is not part of the embedded text.
func (c Composer) GoalBio(g goal.Goal) string {
	return normalize(g.Description())
}

func appendField(parts []string, value string) []string {
	if v := normalize(value); v != "" {
		return append(parts, v)
	}
	return parts
}

// normalize trims the value and collapses internal whitespace runs to a
// single space.
func normalize(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
