package consensus

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ScalarCandidate is one source's value for a single field, weighted by
// that source's extraction confidence.
type ScalarCandidate struct {
	Value      string
	Confidence float64
	SourceID   uuid.UUID
	CreatedAt  time.Time
}

// Resolution is the outcome of merging one field across candidates. An
// empty Value means no candidate supplied the field; the caller keeps
// the field null rather than guessing.
type Resolution struct {
	Value     string
	Rationale string
}

type valueGroup struct {
	value    string
	total    float64
	count    int
	earliest time.Time
	longest  string
}

// ResolveScalar merges candidate values for one scalar field. Candidates
// are grouped by normalized value and the group with the highest summed
// confidence wins; agreement across sources beats a single confident
// outlier. Ties go to the group containing the earliest-created
// candidate.
func ResolveScalar(candidates []ScalarCandidate) Resolution {
	return resolve(candidates, false)
}

// ResolveText behaves like ResolveScalar but, within the winning group,
// returns the longest text. Texts from different groups are never
// concatenated.
func ResolveText(candidates []ScalarCandidate) Resolution {
	return resolve(candidates, true)
}

func resolve(candidates []ScalarCandidate, preferLongest bool) Resolution {
	groups := make(map[string]*valueGroup)
	var order []string
	supplied := 0

	for _, c := range candidates {
		trimmed := strings.TrimSpace(c.Value)
		if trimmed == "" {
			continue
		}
		supplied++
		key := normalizeValue(trimmed)
		g, ok := groups[key]
		if !ok {
			g = &valueGroup{value: trimmed, earliest: c.CreatedAt, longest: trimmed}
			groups[key] = g
			order = append(order, key)
		}
		g.total += c.Confidence
		g.count++
		if c.CreatedAt.Before(g.earliest) {
			g.earliest = c.CreatedAt
			g.value = trimmed
		}
		if len(trimmed) > len(g.longest) {
			g.longest = trimmed
		}
	}

	if supplied == 0 {
		return Resolution{Rationale: "no candidate supplied a value"}
	}

	var winner *valueGroup
	for _, key := range order {
		g := groups[key]
		if winner == nil {
			winner = g
			continue
		}
		if g.total > winner.total {
			winner = g
			continue
		}
		if g.total == winner.total && g.earliest.Before(winner.earliest) {
			winner = g
		}
	}

	value := winner.value
	if preferLongest {
		value = winner.longest
	}
	return Resolution{
		Value:     value,
		Rationale: fmt.Sprintf("%d of %d sources agree, total confidence %.2f", winner.count, supplied, winner.total),
	}
}

func normalizeValue(v string) string {
	return strings.Join(strings.Fields(strings.ToLower(v)), " ")
}
