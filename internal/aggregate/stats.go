package aggregate

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/sagearbor/ai-skill-eval-kit/internal/rubric"
)

// Headers are the summary CSV columns.
var Headers = []string{
	"name", "role", "assessment_level", "period",
	"study_level", "study_points",
	"copy_level", "copy_points",
	"output_level", "output_points",
	"research_level", "research_points",
	"ethical_level", "ethical_points",
	"raw_total", "evidence_multiplier", "final_score", "score_band", "confidence",
	"validator_name", "validated_at",
}

// Row flattens one entry into CSV columns, in Headers order. Missing values
// are empty strings.
func Row(e Entry) []string {
	r := e.Report
	row := []string{
		r.Assessee.Name,
		r.Assessee.Role,
		strconv.Itoa(int(r.AssessmentLevel)),
		e.Period,
	}
	for _, d := range rubric.Dimensions() {
		dim, ok := r.Dimensions[d]
		if !ok {
			row = append(row, "", "")
			continue
		}
		row = append(row, strconv.Itoa(dim.Level), num(dim.Points))
	}
	c := r.Calculation
	row = append(row,
		num(c.CombinedScore.RawTotal),
		num(c.EvidenceMultiplier),
		strconv.Itoa(c.CombinedScore.NormalizedScore),
		c.CombinedScore.ScoreBand,
		string(c.Confidence),
	)
	if v := r.Validation; v != nil {
		row = append(row, v.ValidatorName, v.ValidatedAt)
	} else {
		row = append(row, "", "")
	}
	return row
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Trend is the average score of one period.
type Trend struct {
	AvgScore int `json:"avgScore"`
	Count    int `json:"count"`
}

// Stats is the organization-wide summary.
type Stats struct {
	GeneratedAt       string                       `json:"generatedAt"`
	Periods           []string                     `json:"periods"`
	TotalReports      int                          `json:"totalReports"`
	ByLevel           map[string]int               `json:"byLevel"`
	ByRole            map[string]int               `json:"byRole"`
	ScoreDistribution map[string]int               `json:"scoreDistribution"`
	DimensionAverages map[rubric.Dimension]float64 `json:"dimensionAverages"`
	LowestDimension   rubric.Dimension             `json:"lowestDimension"`
	PeriodTrends      map[string]Trend             `json:"periodTrends"`

	// AverageScore is the mean combined score over every report.
	AverageScore int `json:"-"`
}

var buckets = []struct {
	name   string
	lo, hi int
}{
	{"0-20", 0, 20},
	{"21-40", 21, 40},
	{"41-60", 41, 60},
	{"61-80", 61, 80},
	{"81-100", 81, 100},
}

// Compute derives statistics from the collection's entries.
func Compute(entries []Entry, now time.Time) *Stats {
	s := &Stats{
		GeneratedAt:       now.UTC().Format(time.RFC3339),
		Periods:           []string{},
		TotalReports:      len(entries),
		ByLevel:           map[string]int{},
		ByRole:            map[string]int{},
		ScoreDistribution: map[string]int{},
		DimensionAverages: map[rubric.Dimension]float64{},
		PeriodTrends:      map[string]Trend{},
	}
	for _, b := range buckets {
		s.ScoreDistribution[b.name] = 0
	}

	seen := map[string]bool{}
	levels := map[rubric.Dimension][]float64{}
	byPeriod := map[string][]float64{}
	var all []float64

	for _, e := range entries {
		r := e.Report
		if !seen[e.Period] {
			seen[e.Period] = true
			s.Periods = append(s.Periods, e.Period)
		}
		s.ByLevel[strconv.Itoa(int(r.AssessmentLevel))]++
		if r.Assessee.Role != "" {
			s.ByRole[r.Assessee.Role]++
		}

		score := r.Calculation.CombinedScore.NormalizedScore
		for _, b := range buckets {
			if score >= b.lo && score <= b.hi {
				s.ScoreDistribution[b.name]++
				break
			}
		}
		byPeriod[e.Period] = append(byPeriod[e.Period], float64(score))
		all = append(all, float64(score))

		for _, d := range rubric.Dimensions() {
			if dim, ok := r.Dimensions[d]; ok {
				levels[d] = append(levels[d], float64(dim.Level))
			}
		}
	}
	sort.Strings(s.Periods)

	for i, d := range rubric.Dimensions() {
		avg := 0.0
		if len(levels[d]) > 0 {
			avg = math.RoundToEven(mean(levels[d])*10) / 10
		}
		s.DimensionAverages[d] = avg
		if i == 0 || avg < s.DimensionAverages[s.LowestDimension] {
			s.LowestDimension = d
		}
	}

	for period, scores := range byPeriod {
		s.PeriodTrends[period] = Trend{AvgScore: int(math.RoundToEven(mean(scores))), Count: len(scores)}
	}
	if len(all) > 0 {
		s.AverageScore = int(math.RoundToEven(mean(all)))
	}
	return s
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
