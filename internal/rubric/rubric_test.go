package rubric

import (
	"errors"
	"testing"
)

func TestDimensionOrder(t *testing.T) {
	want := []Dimension{Study, Copy, Output, Research, Ethical}
	got := Dimensions()
	if len(got) != len(want) {
		t.Fatalf("got %d dimensions, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLevelInvariants(t *testing.T) {
	for _, def := range Definitions() {
		t.Run(string(def.ID), func(t *testing.T) {
			if len(def.Levels) != MaxLevel+1 {
				t.Fatalf("expected %d levels, got %d", MaxLevel+1, len(def.Levels))
			}
			for i, l := range def.Levels {
				if l.Level != i {
					t.Errorf("level index %d holds level %d", i, l.Level)
				}
				if l.Description == "" {
					t.Errorf("level %d has no description", i)
				}
				if i == 0 {
					continue
				}
				if l.Midpoint < l.MinPoints || l.Midpoint > l.MaxPoints {
					t.Errorf("level %d midpoint %.1f outside [%.1f, %.1f]", i, l.Midpoint, l.MinPoints, l.MaxPoints)
				}
				if l.Points() <= def.Levels[i-1].Points() {
					t.Errorf("level %d points not increasing", i)
				}
			}
			if MaxPoints(def.ID) != def.Levels[MaxLevel].Midpoint {
				t.Errorf("MaxPoints = %.1f, want level 5 midpoint", MaxPoints(def.ID))
			}
		})
	}
}

func TestPoints(t *testing.T) {
	tests := []struct {
		dim   Dimension
		level int
		want  float64
	}{
		{Study, 0, 0},
		{Study, 3, 10.5},
		{Copy, 2, 6.5},
		{Output, 4, 18},
		{Output, 5, 23},
		{Research, 1, 2.5},
		{Ethical, 3, 8},
		{Ethical, 5, 14},
	}
	for _, tt := range tests {
		got, err := Points(tt.dim, tt.level)
		if err != nil {
			t.Errorf("Points(%s, %d): %v", tt.dim, tt.level, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Points(%s, %d) = %v, want %v", tt.dim, tt.level, got, tt.want)
		}
	}
}

func TestPointsErrors(t *testing.T) {
	p, err := Points("vibes", 2)
	if !errors.Is(err, ErrUnknownDimension) {
		t.Errorf("expected ErrUnknownDimension, got %v", err)
	}
	if p != 0 {
		t.Errorf("expected sentinel 0, got %v", p)
	}

	for _, lvl := range []int{-1, 6} {
		p, err = Points(Study, lvl)
		if !errors.Is(err, ErrLevelOutOfRange) {
			t.Errorf("level %d: expected ErrLevelOutOfRange, got %v", lvl, err)
		}
		if p != 0 {
			t.Errorf("level %d: expected sentinel 0, got %v", lvl, p)
		}
	}
}

func TestBandForIsTotalAndExclusive(t *testing.T) {
	for score := 0; score <= 100; score++ {
		matches := 0
		for _, b := range Bands() {
			if b.Contains(score) {
				matches++
			}
		}
		if matches != 1 {
			t.Errorf("score %d matched %d bands", score, matches)
		}
		if !BandFor(score).Contains(score) {
			t.Errorf("BandFor(%d) = %s does not contain score", score, BandFor(score).Name)
		}
	}
}

func TestBandForBoundaries(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, "Unaware"},
		{20, "Unaware"},
		{21, "User"},
		{40, "User"},
		{41, "Practitioner"},
		{61, "Builder"},
		{81, "Architect"},
		{95, "Architect"},
		{96, "Pioneer"},
		{100, "Pioneer"},
		{-5, "Unaware"},
		{101, "Unaware"},
	}
	for _, tt := range tests {
		if got := BandFor(tt.score).Name; got != tt.want {
			t.Errorf("BandFor(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestEvidence(t *testing.T) {
	tests := []struct {
		tier Tier
		mult float64
		conf Confidence
	}{
		{TierSelf, 0.6, ConfidenceLow},
		{TierPeer, 0.8, ConfidenceMedium},
		{TierVerified, 1.0, ConfidenceHigh},
	}
	for _, tt := range tests {
		e, ok := Evidence(tt.tier)
		if !ok {
			t.Fatalf("tier %d missing", tt.tier)
		}
		if e.Multiplier != tt.mult || e.Confidence != tt.conf {
			t.Errorf("tier %d = %v/%s, want %v/%s", tt.tier, e.Multiplier, e.Confidence, tt.mult, tt.conf)
		}
	}
	if _, ok := Evidence(4); ok {
		t.Error("tier 4 should not exist")
	}
}

func TestCanonicalRole(t *testing.T) {
	if r, ok := CanonicalRole("developer"); !ok || r != "Developer" {
		t.Errorf("CanonicalRole(developer) = %q, %v", r, ok)
	}
	if _, ok := CanonicalRole("Astronaut"); ok {
		t.Error("Astronaut should not be a known role")
	}
	if c, ok := CanonicalCompanyType(" startup "); !ok || c != "Startup" {
		t.Errorf("CanonicalCompanyType = %q, %v", c, ok)
	}
}

func TestTierReportType(t *testing.T) {
	if TierSelf.ReportType() != "self-assessment" || TierPeer.ReportType() != "peer-validation" || TierVerified.ReportType() != "full-verification" {
		t.Error("unexpected report types")
	}
	if Tier(0).Valid() || Tier(4).Valid() {
		t.Error("tiers outside 1..3 must be invalid")
	}
}
