package consensus

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/driftfly/driftfly-backend/internal/domain"
)

// ErrEmptyInput is returned when Build is called with zero candidates.
// The caller is responsible for filtering to a single slug and for
// excluding unusable extractions (empty pattern name) before calling.
var ErrEmptyInput = errors.New("consensus: no candidate extractions")

// Candidate is one approved extraction feeding a consensus build.
type Candidate struct {
	ExtractionID uuid.UUID
	SourceID     uuid.UUID
	Pattern      domain.ExtractedPattern
	Confidence   float64
	CreatedAt    time.Time
}

// Material is one merged material group.
type Material struct {
	Type     string
	Name     string
	Color    string
	Size     string
	Required bool
}

// Pattern is the resolved merge of all candidates for one slug. It is
// ephemeral: computed at approval time, handed to the ingestion writer,
// then discarded.
type Pattern struct {
	Name        string
	Slug        string
	Category    string
	Difficulty  string
	WaterType   string
	Description string
	Materials   []Material
	Steps       []domain.ExtractedStep
	Resources   []domain.ExtractedResource
	Variations  []string
	SourcesUsed int

	// MissingFields names scalar fields no candidate supplied. Not an
	// error; downstream review surfaces the incomplete record.
	MissingFields []string
	// Rationales explains, per field, why the winning value won.
	Rationales map[string]string
}

// Build merges N candidate extractions of the same slug into one
// consensus pattern. Scalars resolve by summed confidence, the material
// list keeps the highest-confidence candidate's tying order, and
// resources, steps and variations are additive unions.
func Build(candidates []Candidate) (*Pattern, error) {
	if len(candidates) == 0 {
		return nil, ErrEmptyInput
	}

	out := &Pattern{
		SourcesUsed: len(candidates),
		Rationales:  make(map[string]string),
	}

	name := ResolveScalar(scalarField(candidates, func(p domain.ExtractedPattern) string { return p.PatternName }))
	out.Name = name.Value
	out.Rationales["name"] = name.Rationale
	// Slug is recomputed from the resolved name so a consensus name fix
	// keeps name and slug consistent.
	out.Slug = Slugify(out.Name)

	scalars := []struct {
		field   string
		get     func(domain.ExtractedPattern) string
		set     func(*Pattern, string)
		text    bool
	}{
		{"category", func(p domain.ExtractedPattern) string { return p.Category }, func(c *Pattern, v string) { c.Category = v }, false},
		{"difficulty", func(p domain.ExtractedPattern) string { return p.Difficulty }, func(c *Pattern, v string) { c.Difficulty = v }, false},
		{"water_type", func(p domain.ExtractedPattern) string { return p.WaterType }, func(c *Pattern, v string) { c.WaterType = v }, false},
		{"description", func(p domain.ExtractedPattern) string { return p.Description }, func(c *Pattern, v string) { c.Description = v }, true},
	}
	for _, s := range scalars {
		var res Resolution
		if s.text {
			res = ResolveText(scalarField(candidates, s.get))
		} else {
			res = ResolveScalar(scalarField(candidates, s.get))
		}
		s.set(out, res.Value)
		out.Rationales[s.field] = res.Rationale
		if res.Value == "" {
			out.MissingFields = append(out.MissingFields, s.field)
		}
	}

	out.Materials = mergeMaterials(candidates)
	out.Resources = mergeResources(candidates)
	out.Steps = mergeSteps(candidates)
	out.Variations = mergeVariations(candidates)

	return out, nil
}

func scalarField(candidates []Candidate, get func(domain.ExtractedPattern) string) []ScalarCandidate {
	out := make([]ScalarCandidate, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, ScalarCandidate{
			Value:      get(c.Pattern),
			Confidence: c.Confidence,
			SourceID:   c.SourceID,
			CreatedAt:  c.CreatedAt,
		})
	}
	return out
}

type materialGroup struct {
	mat           Material
	contributors  int
	requiredVotes int
	colors        []ScalarCandidate
	sizes         []ScalarCandidate
}

// mergeMaterials groups materials by normalized (type, name) across all
// candidates, then orders the merged list by walking candidates from
// highest confidence down: the strongest source's tying order comes
// first and materials only it omits are appended, never interleaved.
func mergeMaterials(candidates []Candidate) []Material {
	byConfidence := make([]Candidate, len(candidates))
	copy(byConfidence, candidates)
	sort.SliceStable(byConfidence, func(i, j int) bool {
		return byConfidence[i].Confidence > byConfidence[j].Confidence
	})

	groups := make(map[string]*materialGroup)
	var order []string

	for _, c := range byConfidence {
		seen := make(map[string]bool)
		for _, m := range c.Pattern.Materials {
			if strings.TrimSpace(m.Name) == "" {
				continue
			}
			key := materialKey(m.Type, m.Name)
			g, ok := groups[key]
			if !ok {
				g = &materialGroup{mat: Material{
					Type: strings.TrimSpace(m.Type),
					Name: strings.TrimSpace(m.Name),
				}}
				groups[key] = g
				order = append(order, key)
			}
			if !seen[key] {
				seen[key] = true
				g.contributors++
				if m.Required {
					g.requiredVotes++
				}
				g.colors = append(g.colors, ScalarCandidate{Value: m.Color, Confidence: c.Confidence, SourceID: c.SourceID, CreatedAt: c.CreatedAt})
				g.sizes = append(g.sizes, ScalarCandidate{Value: m.Size, Confidence: c.Confidence, SourceID: c.SourceID, CreatedAt: c.CreatedAt})
			}
		}
	}

	out := make([]Material, 0, len(order))
	for _, key := range order {
		g := groups[key]
		// Strict majority marks a material required; a tie stays
		// optional.
		g.mat.Required = g.requiredVotes*2 > g.contributors
		g.mat.Color = ResolveScalar(g.colors).Value
		g.mat.Size = ResolveScalar(g.sizes).Value
		out = append(out, g.mat)
	}
	return out
}

func materialKey(mtype, name string) string {
	return normalizeValue(mtype) + "\x00" + normalizeValue(name)
}

func mergeResources(candidates []Candidate) []domain.ExtractedResource {
	var out []domain.ExtractedResource
	seen := make(map[string]bool)
	for _, c := range candidates {
		for _, r := range c.Pattern.Resources {
			url := strings.TrimSpace(r.URL)
			if url == "" || seen[strings.ToLower(url)] {
				continue
			}
			seen[strings.ToLower(url)] = true
			r.URL = url
			out = append(out, r)
		}
	}
	return out
}

func mergeSteps(candidates []Candidate) []domain.ExtractedStep {
	var out []domain.ExtractedStep
	seen := make(map[string]bool)
	for _, c := range candidates {
		for _, s := range c.Pattern.Steps {
			key := fmt.Sprintf("%d\x00%s", s.Position, normalizeValue(s.Title))
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func mergeVariations(candidates []Candidate) []string {
	var out []string
	seen := make(map[string]bool)
	for _, c := range candidates {
		for _, v := range c.Pattern.Variations {
			trimmed := strings.TrimSpace(v)
			if trimmed == "" || seen[normalizeValue(trimmed)] {
				continue
			}
			seen[normalizeValue(trimmed)] = true
			out = append(out, trimmed)
		}
	}
	return out
}
