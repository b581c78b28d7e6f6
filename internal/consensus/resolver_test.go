package consensus

import (
	"testing"
	"time"
)

func scalarAt(value string, confidence float64, createdAt time.Time) ScalarCandidate {
	return ScalarCandidate{Value: value, Confidence: confidence, CreatedAt: createdAt}
}

func TestResolveScalarSummedConfidenceBeatsCountMajority(t *testing.T) {
	base := time.Now()
	// Two sources vote "beginner" (0.2 each), one votes "advanced"
	// (0.9). Summed confidence wins: 0.9 > 0.4.
	got := ResolveScalar([]ScalarCandidate{
		scalarAt("advanced", 0.9, base),
		scalarAt("beginner", 0.2, base.Add(time.Minute)),
		scalarAt("beginner", 0.2, base.Add(2*time.Minute)),
	})
	if got.Value != "advanced" {
		t.Fatalf("resolved %q, want advanced (rationale: %s)", got.Value, got.Rationale)
	}
}

func TestResolveScalarAgreementBeatsSingleOutlier(t *testing.T) {
	base := time.Now()
	got := ResolveScalar([]ScalarCandidate{
		scalarAt("dry fly", 0.6, base),
		scalarAt("dry fly", 0.5, base.Add(time.Minute)),
		scalarAt("streamer", 0.9, base.Add(2*time.Minute)),
	})
	if got.Value != "dry fly" {
		t.Fatalf("resolved %q, want dry fly", got.Value)
	}
}

func TestResolveScalarGroupsCaseInsensitively(t *testing.T) {
	base := time.Now()
	got := ResolveScalar([]ScalarCandidate{
		scalarAt("Woolly Bugger", 0.4, base),
		scalarAt("woolly  bugger", 0.4, base.Add(time.Minute)),
		scalarAt("Wooly Bugger", 0.7, base.Add(2*time.Minute)),
	})
	// 0.8 for the correctly spelled group; representative value is the
	// earliest-created candidate's casing.
	if got.Value != "Woolly Bugger" {
		t.Fatalf("resolved %q, want Woolly Bugger", got.Value)
	}
}

func TestResolveScalarTieBreaksByEarliestCandidate(t *testing.T) {
	base := time.Now()
	got := ResolveScalar([]ScalarCandidate{
		scalarAt("nymph", 0.5, base.Add(time.Minute)),
		scalarAt("wet fly", 0.5, base),
	})
	if got.Value != "wet fly" {
		t.Fatalf("resolved %q, want wet fly (earlier candidate)", got.Value)
	}
}

func TestResolveScalarSkipsEmptyValues(t *testing.T) {
	base := time.Now()
	got := ResolveScalar([]ScalarCandidate{
		scalarAt("", 0.9, base),
		scalarAt("   ", 0.9, base),
		scalarAt("saltwater", 0.1, base),
	})
	if got.Value != "saltwater" {
		t.Fatalf("resolved %q, want saltwater", got.Value)
	}
}

func TestResolveScalarAllEmptyResolvesNull(t *testing.T) {
	got := ResolveScalar([]ScalarCandidate{
		scalarAt("", 0.9, time.Now()),
		scalarAt("", 0.8, time.Now()),
	})
	if got.Value != "" {
		t.Fatalf("resolved %q, want empty", got.Value)
	}
	if got.Rationale == "" {
		t.Fatal("expected a rationale for the null resolution")
	}
}

func TestResolveTextPrefersLongestInWinningGroup(t *testing.T) {
	base := time.Now()
	short := "A classic streamer."
	long := "A classic streamer.  Tied with marabou and chenille in olive or black."
	got := ResolveText([]ScalarCandidate{
		scalarAt(short, 0.5, base),
		scalarAt(long, 0.5, base.Add(time.Minute)),
		scalarAt("Different prose from the single strongest source.", 0.6, base.Add(2*time.Minute)),
	})
	// The two streamer texts differ, so they are separate groups
	// (0.5 each) and the 0.6 group wins. Texts from different groups
	// are never concatenated.
	if got.Value != "Different prose from the single strongest source." {
		t.Fatalf("resolved %q", got.Value)
	}

	// When the same text appears with different whitespace the group
	// sums, and the longest member of that group is returned.
	got = ResolveText([]ScalarCandidate{
		scalarAt("tied  with   marabou", 0.5, base),
		scalarAt("tied with marabou", 0.5, base.Add(time.Minute)),
		scalarAt("other", 0.6, base.Add(2*time.Minute)),
	})
	if got.Value != "tied  with   marabou" {
		t.Fatalf("resolved %q, want the longest member of the winning group", got.Value)
	}
}
