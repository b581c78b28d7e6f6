package consensus

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/driftfly/driftfly-backend/internal/domain"
)

func candidateAt(p domain.ExtractedPattern, confidence float64, createdAt time.Time) Candidate {
	return Candidate{
		ExtractionID: uuid.New(),
		SourceID:     uuid.New(),
		Pattern:      p,
		Confidence:   confidence,
		CreatedAt:    createdAt,
	}
}

func material(mtype, name string, required bool) domain.ExtractedMaterial {
	return domain.ExtractedMaterial{Type: mtype, Name: name, Required: required}
}

func TestBuildEmptyInput(t *testing.T) {
	if _, err := Build(nil); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("Build(nil) err = %v, want ErrEmptyInput", err)
	}
	if _, err := Build([]Candidate{}); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("Build([]) err = %v, want ErrEmptyInput", err)
	}
}

func TestBuildSlugRecomputedFromResolvedName(t *testing.T) {
	base := time.Now()
	p := domain.ExtractedPattern{PatternName: "Parachute Adams "}
	cons, err := Build([]Candidate{candidateAt(p, 0.8, base)})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if cons.Slug != "parachute-adams" {
		t.Fatalf("slug = %q, want parachute-adams", cons.Slug)
	}
	if cons.SourcesUsed != 1 {
		t.Fatalf("sources used = %d, want 1", cons.SourcesUsed)
	}
}

func TestBuildScalarResolutionBySummedConfidence(t *testing.T) {
	base := time.Now()
	cons, err := Build([]Candidate{
		candidateAt(domain.ExtractedPattern{PatternName: "Woolly Bugger", Difficulty: "advanced"}, 0.9, base),
		candidateAt(domain.ExtractedPattern{PatternName: "Woolly Bugger", Difficulty: "beginner"}, 0.2, base.Add(time.Minute)),
		candidateAt(domain.ExtractedPattern{PatternName: "Woolly Bugger", Difficulty: "beginner"}, 0.2, base.Add(2*time.Minute)),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if cons.Difficulty != "advanced" {
		t.Fatalf("difficulty = %q, want advanced (sum-based, not count-based)", cons.Difficulty)
	}
}

func TestBuildMaterialOrderFollowsHighestConfidenceCandidate(t *testing.T) {
	base := time.Now()
	strong := domain.ExtractedPattern{
		PatternName: "Woolly Bugger",
		Materials: []domain.ExtractedMaterial{
			material("hook", "Streamer Hook", true),
			material("thread", "Black Thread", true),
			material("tail", "Marabou", true),
		},
	}
	weak := domain.ExtractedPattern{
		PatternName: "Woolly Bugger",
		Materials: []domain.ExtractedMaterial{
			material("tail", "Marabou", true),
			material("hook", "Streamer Hook", true),
			material("thread", "Black Thread", true),
			material("rib", "Copper Wire", false),
		},
	}
	cons, err := Build([]Candidate{
		candidateAt(weak, 0.4, base),
		candidateAt(strong, 0.9, base.Add(time.Minute)),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	var names []string
	for _, m := range cons.Materials {
		names = append(names, m.Name)
	}
	want := []string{"Streamer Hook", "Black Thread", "Marabou", "Copper Wire"}
	if len(names) != len(want) {
		t.Fatalf("materials = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("materials = %v, want %v", names, want)
		}
	}
}

func TestBuildRequiredFlagMajority(t *testing.T) {
	base := time.Now()
	with := func(required bool) domain.ExtractedPattern {
		return domain.ExtractedPattern{
			PatternName: "Zebra Midge",
			Materials:   []domain.ExtractedMaterial{material("bead", "Tungsten Bead", required)},
		}
	}

	// 2 of 3 mark required -> required.
	cons, err := Build([]Candidate{
		candidateAt(with(true), 0.5, base),
		candidateAt(with(true), 0.5, base.Add(time.Minute)),
		candidateAt(with(false), 0.5, base.Add(2*time.Minute)),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !cons.Materials[0].Required {
		t.Fatal("2 of 3 required votes should resolve required=true")
	}

	// 1 of 2 is a tie -> optional.
	cons, err = Build([]Candidate{
		candidateAt(with(true), 0.9, base),
		candidateAt(with(false), 0.1, base.Add(time.Minute)),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if cons.Materials[0].Required {
		t.Fatal("1 of 2 required votes is a tie and should resolve required=false")
	}
}

func TestBuildMaterialColorResolvedWithinGroup(t *testing.T) {
	base := time.Now()
	withColor := func(color string) domain.ExtractedPattern {
		return domain.ExtractedPattern{
			PatternName: "Woolly Bugger",
			Materials: []domain.ExtractedMaterial{
				{Type: "tail", Name: "Marabou", Color: color, Required: true},
			},
		}
	}
	cons, err := Build([]Candidate{
		candidateAt(withColor("olive"), 0.4, base),
		candidateAt(withColor("olive"), 0.4, base.Add(time.Minute)),
		candidateAt(withColor("black"), 0.7, base.Add(2*time.Minute)),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if cons.Materials[0].Color != "olive" {
		t.Fatalf("color = %q, want olive (0.8 total beats 0.7)", cons.Materials[0].Color)
	}
}

func TestBuildResourcesAndStepsDeduped(t *testing.T) {
	base := time.Now()
	a := domain.ExtractedPattern{
		PatternName: "Elk Hair Caddis",
		Resources: []domain.ExtractedResource{
			{URL: "https://example.com/video", Kind: "video"},
		},
		Steps: []domain.ExtractedStep{
			{Position: 1, Title: "Start thread"},
			{Position: 2, Title: "Dub body"},
		},
	}
	b := domain.ExtractedPattern{
		PatternName: "Elk Hair Caddis",
		Resources: []domain.ExtractedResource{
			{URL: "https://example.com/video", Kind: "video"},
			{URL: "https://example.com/blog", Kind: "blog"},
		},
		Steps: []domain.ExtractedStep{
			{Position: 1, Title: "Start Thread"},
			{Position: 3, Title: "Tie in wing"},
		},
	}
	cons, err := Build([]Candidate{
		candidateAt(a, 0.8, base),
		candidateAt(b, 0.6, base.Add(time.Minute)),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(cons.Resources) != 2 {
		t.Fatalf("resources = %d, want 2 (deduped by URL)", len(cons.Resources))
	}
	if len(cons.Steps) != 3 {
		t.Fatalf("steps = %d, want 3 (deduped by position+title)", len(cons.Steps))
	}
	for i, s := range cons.Steps {
		if i > 0 && s.Position < cons.Steps[i-1].Position {
			t.Fatalf("steps out of order: %+v", cons.Steps)
		}
	}
}

func TestBuildMissingFieldsSurfaceAsNulls(t *testing.T) {
	base := time.Now()
	cons, err := Build([]Candidate{
		candidateAt(domain.ExtractedPattern{PatternName: "Mystery Fly"}, 0.9, base),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if cons.Category != "" || cons.Difficulty != "" || cons.WaterType != "" || cons.Description != "" {
		t.Fatal("unsupplied fields must stay empty, never guessed")
	}
	if len(cons.MissingFields) != 4 {
		t.Fatalf("missing fields = %v, want all four scalar fields", cons.MissingFields)
	}
}
