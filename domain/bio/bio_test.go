package bio

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/helixml/affinity/domain/contact"
	"github.com/helixml/affinity/domain/goal"
	"github.com/stretchr/testify/require"
)

func TestComposer_ContactBio_FieldOrder(t *testing.T) {
	ct := contact.NewContact("c1", "u1", contact.Profile{
		Name:     "Dana Smith",
		Notes:    "VC partner, healthcare investments",
		Company:  "Acme Ventures",
		Title:    "Partner",
		LinkedIn: "linkedin.com/in/dana",
		Twitter:  "@dana",
	})

	got := DefaultComposer().ContactBio(ct)

	require.Equal(t,
		"Dana Smith | VC partner, healthcare investments | linkedin.com/in/dana | @dana | Acme Ventures | Partner",
		got,
	)
}

func TestComposer_ContactBio_SkipsEmptyFields(t *testing.T) {
	ct := contact.NewContact("c1", "u1", contact.Profile{
		Name:    "Sam",
		Notes:   "   ",
		Company: "Studio",
	})

	require.Equal(t, "Sam | Studio", DefaultComposer().ContactBio(ct))
}

func TestComposer_ContactBio_NameOnly(t *testing.T) {
	ct := contact.NewContact("c1", "u1", contact.Profile{Name: "Sam"})
	require.Equal(t, "Sam", DefaultComposer().ContactBio(ct))
}

func TestComposer_ContactBio_NoFields(t *testing.T) {
	ct := contact.NewContact("c1", "u1", contact.Profile{})
	require.Empty(t, DefaultComposer().ContactBio(ct))
}

func TestComposer_ContactBio_CollapsesWhitespace(t *testing.T) {
	ct := contact.NewContact("c1", "u1", contact.Profile{
		Name:  "  Sam\tLee ",
		Notes: "line one\n\nline two",
	})
	require.Equal(t, "Sam Lee | line one line two", DefaultComposer().ContactBio(ct))
}

func TestComposer_ContactBio_RecentInteractions(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var interactions []contact.Interaction
	for i := range 7 {
		interactions = append(interactions,
			contact.NewInteraction(fmt.Sprintf("call %d", i), base.Add(time.Duration(i)*time.Hour)))
	}
	ct := contact.NewContact("c1", "u1", contact.Profile{Name: "Sam"}, interactions...)

	got := DefaultComposer().ContactBio(ct)

	require.Equal(t, "Sam | call 6 | call 5 | call 4 | call 3 | call 2", got)
}

func TestComposer_ContactBio_ZeroInteractionLimit(t *testing.T) {
	ct := contact.NewContact("c1", "u1", contact.Profile{Name: "Sam"},
		contact.NewInteraction("coffee", time.Now()))

	require.Equal(t, "Sam", NewComposer(0).ContactBio(ct))
	require.Equal(t, 0, NewComposer(-3).InteractionLimit())
}

func TestComposer_ContactBio_Deterministic(t *testing.T) {
	ct := contact.NewContact("c1", "u1", contact.Profile{Name: "Sam", Notes: "designer"},
		contact.NewInteraction("a", time.Unix(10, 0)),
		contact.NewInteraction("b", time.Unix(10, 0)),
	)
	c := DefaultComposer()
	require.Equal(t, c.ContactBio(ct), c.ContactBio(ct))
}

func TestComposer_GoalBio(t *testing.T) {
	g := goal.NewGoal("g1", "u1", "Fundraise", "  Raise a seed round\nfor a healthcare AI startup ")

	got := DefaultComposer().GoalBio(g)

	require.Equal(t, "Raise a seed round for a healthcare AI startup", got)
	require.False(t, strings.Contains(got, "Fundraise"), "title is not embedded")
}

func TestComposer_GoalBio_Empty(t *testing.T) {
	g := goal.NewGoal("g1", "u1", "t", "   ")
	require.Empty(t, DefaultComposer().GoalBio(g))
}
