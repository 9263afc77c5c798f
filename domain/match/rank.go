package match

import "sort"

// Candidate is a contact offered for ranking. It either carries a vector or
// the reason its vector is unavailable.
type Candidate struct {
	contactID string
	vector    []float64
	err       error
	available bool
}

// Available creates a candidate with a vector.
func Available(contactID string, vector []float64) Candidate {
	vec := make([]float64, len(vector))
	copy(vec, vector)
	return Candidate{contactID: contactID, vector: vec, available: true}
}

// Unavailable creates a candidate whose vector could not be obtained.
func Unavailable(contactID string, err error) Candidate {
	return Candidate{contactID: contactID, err: err}
}

// ContactID returns the contact identifier.
func (c Candidate) ContactID() string { return c.contactID }

// IsAvailable reports whether the candidate carries a vector.
func (c Candidate) IsAvailable() bool { return c.available }

// Err returns why the vector is unavailable, or nil.
func (c Candidate) Err() error { return c.err }

// Vector returns the embedding vector (copy).
func (c Candidate) Vector() []float64 {
	result := make([]float64, len(c.vector))
	copy(result, c.vector)
	return result
}

// Scored is a ranked candidate.
type Scored struct {
	contactID string
	score     float64
	rank      int
	available bool
}

// ContactID returns the contact identifier.
func (s Scored) ContactID() string { return s.contactID }

// Score returns the cosine similarity, 0 for unavailable candidates.
func (s Scored) Score() float64 { return s.score }

// Rank returns the 1-based position in the ranking.
func (s Scored) Rank() int { return s.rank }

// Available reports whether the score came from a real vector.
func (s Scored) Available() bool { return s.available }

// Rank scores every candidate against the goal vector and orders them by
// score descending. Every candidate appears exactly once. Unavailable
// candidates score 0 and, like any other equal scores, keep their input order.
func Rank(goal []float64, candidates []Candidate) []Scored {
	scored := make([]Scored, len(candidates))
	for i, c := range candidates {
		s := Scored{contactID: c.contactID, available: c.available}
		if c.available {
			s.score = Cosine(goal, c.vector)
		}
		scored[i] = s
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	for i := range scored {
		scored[i].rank = i + 1
	}
	return scored
}
