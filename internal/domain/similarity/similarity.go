// Package similarity computes the weighted multi-attribute similarity between two profiles.
package similarity

import (
	"math"

	"github.com/kailas-cloud/reachout/internal/domain/profile"
)

// Attribute weights. They sum to 1.
const (
	WeightSkills    = 0.25
	WeightEducation = 0.30
	WeightCompanies = 0.15
	WeightIndustry  = 0.15
	WeightLocation  = 0.15
)

// Breakdown holds independent 0..1 sub-scores per attribute.
type Breakdown struct {
	Skills    float64 `json:"skills"`
	Education float64 `json:"education"`
	Companies float64 `json:"companies"`
	Industry  float64 `json:"industry"`
	Location  float64 `json:"location"`
}

// Result is the ProfileSimilarity value object.
type Result struct {
	overall   float64
	breakdown Breakdown
}

// FromBreakdown builds a Result whose overall score is the weighted sum of b.
func FromBreakdown(b Breakdown) Result {
	overall := b.Skills*WeightSkills +
		b.Education*WeightEducation +
		b.Companies*WeightCompanies +
		b.Industry*WeightIndustry +
		b.Location*WeightLocation
	return Result{overall: round(clamp01(overall)), breakdown: b}
}

// Overall returns the weighted score in [0, 1].
func (r Result) Overall() float64 { return r.overall }

// Breakdown returns the per-attribute scores.
func (r Result) Breakdown() Breakdown { return r.breakdown }

// Compare computes the similarity between a and b. It never fails: missing
// attributes contribute zero.
func Compare(a, b *profile.Profile) Result {
	if a == nil || b == nil {
		return Result{}
	}
	return FromBreakdown(Breakdown{
		Skills:    jaccard(a.SkillNames(), b.SkillNames()),
		Education: education(a.Education, b.Education),
		Companies: jaccard(a.CompanyNames(), b.CompanyNames()),
		Industry:  exact(a.CurrentIndustry(), b.CurrentIndustry()),
		Location:  exact(a.Location, b.Location),
	})
}

// jaccard expects normalized, de-duplicated inputs.
func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	inter := 0
	union := len(set)
	for _, s := range b {
		if _, ok := set[s]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// education returns the best school/degree/field overlap across all entry pairs.
func education(a, b []profile.Education) float64 {
	best := 0.0
	for i := range a {
		for j := range b {
			if s := educationPair(&a[i], &b[j]); s > best {
				best = s
			}
		}
	}
	return best
}

// educationPair scores one pair over the fields at least one side filled in.
func educationPair(a, b *profile.Education) float64 {
	fields := [][2]string{
		{a.School, b.School},
		{a.Degree, b.Degree},
		{a.Field, b.Field},
	}
	considered, matched := 0, 0
	for _, f := range fields {
		x, y := profile.Normalize(f[0]), profile.Normalize(f[1])
		if x == "" && y == "" {
			continue
		}
		considered++
		if x == y {
			matched++
		}
	}
	if considered == 0 {
		return 0
	}
	return float64(matched) / float64(considered)
}

func exact(a, b string) float64 {
	x, y := profile.Normalize(a), profile.Normalize(b)
	if x == "" || y == "" || x != y {
		return 0
	}
	return 1
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// round trims float noise from the weighted sum so identical profiles score exactly 1.
func round(v float64) float64 {
	return math.Round(v*1e9) / 1e9
}
