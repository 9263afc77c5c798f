// Package fixture loads goals and contacts from YAML seed files.
package fixture

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/helixml/affinity/domain/contact"
	"github.com/helixml/affinity/domain/goal"
)

// ErrInvalid indicates a seed file failed validation.
var ErrInvalid = errors.New("invalid fixture")

// File is the on-disk seed format.
//
//	owner: user-1
//	goals:
//	  - id: g1
//	    title: Fundraise
//	    description: Raise a seed round for a healthcare AI startup
//	contacts:
//	  - id: c1
//	    name: Alice Chen
//	    notes: VC partner, healthcare investments
//	    interactions:
//	      - summary: Coffee about digital health
//	        occurred_at: 2024-03-01T10:00:00Z
type File struct {
	Owner    string         `yaml:"owner"`
	Goals    []GoalEntry    `yaml:"goals"`
	Contacts []ContactEntry `yaml:"contacts"`
}

// GoalEntry is a goal in a seed file. Owner defaults to the file owner.
type GoalEntry struct {
	ID          string `yaml:"id"`
	Owner       string `yaml:"owner"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// ContactEntry is a contact in a seed file. Owner defaults to the file owner.
type ContactEntry struct {
	ID           string             `yaml:"id"`
	Owner        string             `yaml:"owner"`
	Name         string             `yaml:"name"`
	Notes        string             `yaml:"notes"`
	Company      string             `yaml:"company"`
	Title        string             `yaml:"title"`
	LinkedIn     string             `yaml:"linkedin"`
	Twitter      string             `yaml:"twitter"`
	Interactions []InteractionEntry `yaml:"interactions"`
}

// InteractionEntry is a logged interaction with a contact.
type InteractionEntry struct {
	Summary    string    `yaml:"summary"`
	OccurredAt time.Time `yaml:"occurred_at"`
}

// Fixture is a validated seed file converted to domain records.
type Fixture struct {
	goals    []goal.Goal
	contacts []contact.Contact
}

// Goals returns the goals in file order.
func (f Fixture) Goals() []goal.Goal {
	out := make([]goal.Goal, len(f.goals))
	copy(out, f.goals)
	return out
}

// Contacts returns the contacts in file order.
func (f Fixture) Contacts() []contact.Contact {
	out := make([]contact.Contact, len(f.contacts))
	copy(out, f.contacts)
	return out
}

// Owners returns the distinct owners referenced by the fixture, in first-seen order.
func (f Fixture) Owners() []string {
	seen := map[string]bool{}
	var owners []string
	add := func(owner string) {
		if !seen[owner] {
			seen[owner] = true
			owners = append(owners, owner)
		}
	}
	for _, g := range f.goals {
		add(g.OwnerID())
	}
	for _, c := range f.contacts {
		add(c.OwnerID())
	}
	return owners
}

// Load reads and validates the seed file at path.
func Load(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse reads and validates a seed file.
func Parse(r io.Reader) (Fixture, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return Fixture{}, fmt.Errorf("decode fixture: %w", err)
	}
	return file.Fixture()
}

// Fixture validates the file and converts it to domain records.
func (file File) Fixture() (Fixture, error) {
	var problems []string
	var fx Fixture

	goalIDs := map[string]bool{}
	for i, e := range file.Goals {
		owner := firstNonEmpty(e.Owner, file.Owner)
		switch {
		case strings.TrimSpace(e.ID) == "":
			problems = append(problems, fmt.Sprintf("goals[%d]: missing id", i))
			continue
		case goalIDs[e.ID]:
			problems = append(problems, fmt.Sprintf("goals[%d]: duplicate id %q", i, e.ID))
			continue
		case owner == "":
			problems = append(problems, fmt.Sprintf("goals[%d]: missing owner", i))
			continue
		}
		goalIDs[e.ID] = true
		fx.goals = append(fx.goals, goal.NewGoal(e.ID, owner, e.Title, e.Description))
	}

	contactIDs := map[string]bool{}
	for i, e := range file.Contacts {
		owner := firstNonEmpty(e.Owner, file.Owner)
		switch {
		case strings.TrimSpace(e.ID) == "":
			problems = append(problems, fmt.Sprintf("contacts[%d]: missing id", i))
			continue
		case contactIDs[e.ID]:
			problems = append(problems, fmt.Sprintf("contacts[%d]: duplicate id %q", i, e.ID))
			continue
		case owner == "":
			problems = append(problems, fmt.Sprintf("contacts[%d]: missing owner", i))
			continue
		}
		contactIDs[e.ID] = true

		interactions := make([]contact.Interaction, 0, len(e.Interactions))
		for _, in := range e.Interactions {
			interactions = append(interactions, contact.NewInteraction(in.Summary, in.OccurredAt))
		}
		fx.contacts = append(fx.contacts, contact.NewContact(e.ID, owner, contact.Profile{
			Name:     e.Name,
			Notes:    e.Notes,
			Company:  e.Company,
			Title:    e.Title,
			LinkedIn: e.LinkedIn,
			Twitter:  e.Twitter,
		}, interactions...))
	}

	if len(problems) > 0 {
		return Fixture{}, fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return fx, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
