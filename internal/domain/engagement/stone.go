package engagement

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/kailas-cloud/reachout/internal/domain/profile"
)

// Bridge scoring constants.
const (
	QualityFloor   = 0.5
	MaxStones      = 3
	engagementLift = 0.25

	compositeQuality    = 0.4
	compositeProximity  = 0.3
	compositeEngagement = 0.2
	compositeOverlap    = 0.1
)

// ProximityMultiplier boosts bridge quality for closer stepping stones.
func ProximityMultiplier(degree int) float64 {
	switch degree {
	case 1:
		return 1.2
	case 2:
		return 1.1
	default:
		return 1.0
	}
}

// ProximityScore maps degree to a 0..1 closeness score used by the composite rank.
func ProximityScore(degree int) float64 {
	switch degree {
	case 1:
		return 1.0
	case 2:
		return 0.66
	case 3:
		return 0.33
	default:
		return 0
	}
}

// BridgeQuality is the geometric mean of both similarity legs times the
// proximity and engagement multipliers, capped at 1.
func BridgeQuality(requesterToStone, stoneToTarget float64, degree int, engagement float64) float64 {
	if requesterToStone <= 0 || stoneToTarget <= 0 {
		return 0
	}
	q := math.Sqrt(requesterToStone*stoneToTarget) *
		ProximityMultiplier(degree) *
		(1 + engagementLift*clamp01(engagement))
	return math.Min(1, q)
}

// Composite ranks stepping stones: quality 40%, proximity 30%, engagement 20%, overlap 10%.
func Composite(quality float64, degree int, engagement, overlap float64) float64 {
	return compositeQuality*clamp01(quality) +
		compositeProximity*ProximityScore(degree) +
		compositeEngagement*clamp01(engagement) +
		compositeOverlap*clamp01(overlap)
}

// SteppingStone is a person who engages with the target and is reachable from the requester.
type SteppingStone struct {
	Person         profile.Profile
	Via            []profile.Profile // requester's contacts between requester and stone
	Direction      string
	Degree         int
	Engagement     float64
	NetworkOverlap float64
	Quality        float64
	Composite      float64
	LastEngaged    time.Time
	Outreach       string
}

// Rank keeps stones with quality strictly above floor, ordered by composite
// score, then quality, then person key, and truncated to limit.
func Rank(stones []SteppingStone, floor float64, limit int) []SteppingStone {
	kept := make([]SteppingStone, 0, len(stones))
	for _, s := range stones {
		if s.Quality > floor {
			kept = append(kept, s)
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if a.Composite != b.Composite {
			return a.Composite > b.Composite
		}
		if a.Quality != b.Quality {
			return a.Quality > b.Quality
		}
		return a.Person.Key() < b.Person.Key()
	})
	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}
	return kept
}

// OutreachText drafts the introduction request sent to the stepping stone.
func OutreachText(stone *SteppingStone, target *profile.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s, ", firstName(stone.Person.DisplayName()))
	switch stone.Direction {
	case "outbound":
		fmt.Fprintf(&b, "I noticed %s often engages with your posts. ", target.DisplayName())
	case "bidirectional":
		fmt.Fprintf(&b, "I see you and %s regularly engage with each other's work. ", target.DisplayName())
	default:
		fmt.Fprintf(&b, "I saw your recent comments on %s's posts. ", target.DisplayName())
	}
	fmt.Fprintf(&b, "Would you be open to introducing me to %s?", firstName(target.DisplayName()))
	return b.String()
}

func firstName(name string) string {
	if f := strings.Fields(name); len(f) > 0 {
		return f[0]
	}
	return name
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
