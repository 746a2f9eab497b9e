// Package engagement turns raw engagement records into ranked bridge candidates.
package engagement

import (
	"math"
	"sort"
	"strings"
	"time"
)

// Kind tags the direction of an engagement event relative to the target.
type Kind int

// Engagement directions.
const (
	// Inbound: the counterpart engaged with the target's content.
	Inbound Kind = iota + 1
	// Outbound: the target engaged with the counterpart's content.
	Outbound
)

func (k Kind) String() string {
	switch k {
	case Inbound:
		return "inbound"
	case Outbound:
		return "outbound"
	default:
		return "unknown"
	}
}

// DefaultHalfLife is the recency half-life applied to engagement events.
const DefaultHalfLife = 90 * 24 * time.Hour

// Signal mixing weights.
const (
	outboundWeight     = 0.6
	inboundWeight      = 0.4
	bidirectionalBonus = 1.2
)

// typeWeights scores engagement kinds; unknown kinds use defaultTypeWeight.
var typeWeights = map[string]float64{
	"comment":  1.0,
	"share":    0.9,
	"repost":   0.9,
	"mention":  0.8,
	"reaction": 0.6,
	"like":     0.6,
	"view":     0.3,
}

const defaultTypeWeight = 0.5

// Event is one tagged engagement record between the target and a counterpart.
type Event struct {
	CounterpartID string
	Kind          Kind
	Type          string
	Timestamp     time.Time
}

// Signal is the merged engagement strength of one counterpart.
type Signal struct {
	PersonID      string
	Inbound       float64
	Outbound      float64
	Strength      float64
	Bidirectional bool
	LastEngaged   time.Time
}

// Direction summarizes the signal for display.
func (s Signal) Direction() string {
	switch {
	case s.Bidirectional:
		return "bidirectional"
	case s.Outbound > 0:
		return Outbound.String()
	default:
		return Inbound.String()
	}
}

// Reduce merges events into one Signal per counterpart, ordered by strength
// descending with ties broken by person id. excluded ids are dropped.
func Reduce(events []Event, now time.Time, halfLife time.Duration, excluded ...string) []Signal {
	if halfLife <= 0 {
		halfLife = DefaultHalfLife
	}
	skip := make(map[string]struct{}, len(excluded))
	for _, id := range excluded {
		skip[id] = struct{}{}
	}

	type acc struct {
		in, out float64
		last    time.Time
	}
	byPerson := make(map[string]*acc)

	for _, e := range events {
		id := strings.TrimSpace(e.CounterpartID)
		if id == "" {
			continue
		}
		if _, ok := skip[id]; ok {
			continue
		}
		a, ok := byPerson[id]
		if !ok {
			a = &acc{}
			byPerson[id] = a
		}
		w := weightOf(e.Type) * decay(now.Sub(e.Timestamp), halfLife)
		switch e.Kind {
		case Outbound:
			a.out += w
		case Inbound:
			a.in += w
		default:
			continue
		}
		if e.Timestamp.After(a.last) {
			a.last = e.Timestamp
		}
	}

	signals := make([]Signal, 0, len(byPerson))
	for id, a := range byPerson {
		in, out := saturate(a.in), saturate(a.out)
		strength := outboundWeight*out + inboundWeight*in
		bi := in > 0 && out > 0
		if bi {
			strength *= bidirectionalBonus
		}
		signals = append(signals, Signal{
			PersonID:      id,
			Inbound:       in,
			Outbound:      out,
			Strength:      math.Min(1, strength),
			Bidirectional: bi,
			LastEngaged:   a.last,
		})
	}

	sort.Slice(signals, func(i, j int) bool {
		if signals[i].Strength != signals[j].Strength {
			return signals[i].Strength > signals[j].Strength
		}
		return signals[i].PersonID < signals[j].PersonID
	})
	return signals
}

func weightOf(kind string) float64 {
	if w, ok := typeWeights[strings.ToLower(strings.TrimSpace(kind))]; ok {
		return w
	}
	return defaultTypeWeight
}

// decay halves the weight every halfLife. Future timestamps count as fresh.
func decay(age, halfLife time.Duration) float64 {
	if age <= 0 {
		return 1
	}
	return math.Pow(0.5, float64(age)/float64(halfLife))
}

// saturate maps an unbounded accumulated weight into [0, 1).
func saturate(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return 1 - math.Exp(-x)
}
