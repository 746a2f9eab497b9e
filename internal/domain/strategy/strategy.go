// Package strategy defines the connection strategy the engine returns.
package strategy

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Type tags a strategy. The set is closed.
type Type string

// Strategy types in engine priority order.
const (
	TypeMutual           Type = "mutual"
	TypeDirectSimilarity Type = "direct-similarity"
	TypeEngagementBridge Type = "engagement_bridge"
	TypeCompanyBridge    Type = "company_bridge"
	TypeIntermediary     Type = "intermediary"
	TypeColdSimilarity   Type = "cold-similarity"
	TypeColdOutreach     Type = "cold-outreach"
	TypeSemantic         Type = "semantic"
)

// Types lists every strategy type in priority order.
var Types = []Type{
	TypeMutual, TypeDirectSimilarity, TypeEngagementBridge, TypeCompanyBridge,
	TypeIntermediary, TypeColdSimilarity, TypeColdOutreach, TypeSemantic,
}

// Valid reports whether t belongs to the closed set.
func (t Type) Valid() bool {
	for _, v := range Types {
		if t == v {
			return true
		}
	}
	return false
}

// CarriesPath reports whether strategies of this type populate Path.
func (t Type) CarriesPath() bool {
	return t == TypeMutual || t == TypeEngagementBridge || t == TypeCompanyBridge
}

var defaultNextSteps = map[Type][]string{
	TypeMutual:           {"Ask your mutual connection for a warm introduction"},
	TypeDirectSimilarity: {"Send a personalized connection request highlighting your shared background"},
	TypeEngagementBridge: {"Engage with your stepping stone's content before asking for an introduction"},
	TypeCompanyBridge:    {"Reach out to your contact at the target's company for an introduction"},
	TypeIntermediary:     {"Ask the suggested intermediary for an introduction"},
	TypeColdSimilarity:   {"Send a connection request that leads with your common ground"},
	TypeColdOutreach:     {"Engage with the target's content before sending a short, specific connection request"},
	TypeSemantic:         {"Open with the shared context and talking points identified for this target"},
}

// Details are the fields every strategy carries regardless of type.
type Details struct {
	TargetID       string
	Confidence     float64
	AcceptanceRate float64
	Reasoning      string
	NextSteps      []string
	LowConfidence  bool
}

// Strategy is the engine's single output type. At most one payload is set
// and which one is determined by the type; use the constructors.
type Strategy struct {
	typ           Type
	targetID      string
	confidence    float64
	rate          float64
	reasoning     string
	nextSteps     []string
	lowConfidence bool

	path         *Path
	intermediary *Intermediary
	candidate    *Candidate
}

func build(t Type, d Details) Strategy {
	steps := make([]string, 0, len(d.NextSteps)+1)
	for _, s := range d.NextSteps {
		if s != "" {
			steps = append(steps, s)
		}
	}
	if len(steps) == 0 {
		steps = append(steps, defaultNextSteps[t]...)
	}
	return Strategy{
		typ:           t,
		targetID:      d.TargetID,
		confidence:    clamp01(d.Confidence),
		rate:          clamp01(d.AcceptanceRate),
		reasoning:     d.Reasoning,
		nextSteps:     steps,
		lowConfidence: d.LowConfidence,
	}
}

// NewMutual builds a graph-path strategy.
func NewMutual(p Path, d Details) Strategy {
	s := build(TypeMutual, d)
	s.path = &p
	return s
}

// NewEngagementBridge builds a stepping-stone strategy. p runs requester to target through the stone.
func NewEngagementBridge(p Path, d Details) Strategy {
	s := build(TypeEngagementBridge, d)
	s.path = &p
	return s
}

// NewCompanyBridge builds a colleague-introduction strategy.
func NewCompanyBridge(p Path, d Details) Strategy {
	s := build(TypeCompanyBridge, d)
	s.path = &p
	return s
}

// NewIntermediary builds an introducer strategy.
func NewIntermediary(in Intermediary, d Details) Strategy {
	s := build(TypeIntermediary, d)
	s.intermediary = &in
	return s
}

// NewDirectSimilarity builds a strategy for a highly similar target.
func NewDirectSimilarity(c Candidate, d Details) Strategy {
	s := build(TypeDirectSimilarity, d)
	s.candidate = &c
	return s
}

// NewColdSimilarity builds a cold strategy backed by moderate similarity.
func NewColdSimilarity(c Candidate, d Details) Strategy {
	s := build(TypeColdSimilarity, d)
	s.candidate = &c
	return s
}

// NewColdOutreach builds the terminal fallback strategy. gateway may be nil.
func NewColdOutreach(gateway *Candidate, d Details) Strategy {
	s := build(TypeColdOutreach, d)
	if gateway != nil {
		g := *gateway
		s.candidate = &g
	}
	return s
}

// NewSemantic builds a strategy backed by the semantic similarity service or its heuristic.
func NewSemantic(c Candidate, d Details) Strategy {
	s := build(TypeSemantic, d)
	s.candidate = &c
	return s
}

// Type returns the strategy tag.
func (s Strategy) Type() Type { return s.typ }

// TargetID returns the identity key of the target this strategy reaches.
func (s Strategy) TargetID() string { return s.targetID }

// Confidence returns the 0..1 confidence.
func (s Strategy) Confidence() float64 { return s.confidence }

// AcceptanceRate returns the estimated probability the request is accepted.
func (s Strategy) AcceptanceRate() float64 { return s.rate }

// Reasoning returns the human-readable explanation.
func (s Strategy) Reasoning() string { return s.reasoning }

// NextSteps returns a copy of the ordered next steps. Never empty for a built strategy.
func (s Strategy) NextSteps() []string {
	out := make([]string, len(s.nextSteps))
	copy(out, s.nextSteps)
	return out
}

// LowConfidence reports whether the recommendation is weak.
func (s Strategy) LowConfidence() bool { return s.lowConfidence }

// Path returns the connection path, if this type carries one.
func (s Strategy) Path() (Path, bool) {
	if s.path == nil {
		return Path{}, false
	}
	return *s.path, true
}

// Intermediary returns the suggested introducer, if any.
func (s Strategy) Intermediary() (Intermediary, bool) {
	if s.intermediary == nil {
		return Intermediary{}, false
	}
	return *s.intermediary, true
}

// Candidate returns the candidate payload, if any.
func (s Strategy) Candidate() (Candidate, bool) {
	if s.candidate == nil {
		return Candidate{}, false
	}
	return *s.candidate, true
}

// IsZero reports whether s is the zero value.
func (s Strategy) IsZero() bool { return s.typ == "" }

// ErrInvalidStrategy is returned by Validate.
var ErrInvalidStrategy = errors.New("invalid strategy")

// Validate checks the payload and field invariants.
func (s Strategy) Validate() error {
	if !s.typ.Valid() {
		return fmt.Errorf("type %q: %w", s.typ, ErrInvalidStrategy)
	}
	if len(s.nextSteps) == 0 {
		return fmt.Errorf("%s: no next steps: %w", s.typ, ErrInvalidStrategy)
	}
	payloads := 0
	for _, set := range []bool{s.path != nil, s.intermediary != nil, s.candidate != nil} {
		if set {
			payloads++
		}
	}
	if payloads > 1 {
		return fmt.Errorf("%s: %d payloads set: %w", s.typ, payloads, ErrInvalidStrategy)
	}
	if s.typ.CarriesPath() != (s.path != nil) {
		return fmt.Errorf("%s: path presence mismatch: %w", s.typ, ErrInvalidStrategy)
	}
	if s.typ == TypeIntermediary && s.intermediary == nil {
		return fmt.Errorf("%s: missing intermediary: %w", s.typ, ErrInvalidStrategy)
	}
	return nil
}

// SortByConfidence orders strategies by confidence descending, keeping input order on ties.
func SortByConfidence(list []Strategy) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].confidence > list[j].confidence
	})
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
