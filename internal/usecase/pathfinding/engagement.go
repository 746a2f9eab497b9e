package pathfinding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/reachout/internal/domain/engagement"
	"github.com/kailas-cloud/reachout/internal/domain/profile"
	"github.com/kailas-cloud/reachout/internal/domain/similarity"
	"github.com/kailas-cloud/reachout/internal/domain/strategy"
)

// Engagement bridge acceptance rate.
const (
	engagementRateBase        = 0.28
	engagementRateQuality     = 0.12
	engagementRateFirstDegree = 0.08
	engagementRateCap         = 0.48
	overlapSaturation         = 10.0
	maxStoneDegree            = 3
)

// reach is a person in the requester's extended network and the contacts leading to them.
type reach struct {
	person profile.Profile
	via    []profile.Profile
}

func (s *Service) engagementBridge(ctx context.Context, req *request) (strategy.Strategy, bool, error) {
	if !s.activities.Present() && !s.outbound.Present() {
		return strategy.Strategy{}, false, nil
	}

	events, err := s.engagementEvents(ctx, req)
	if err != nil {
		return strategy.Strategy{}, false, err
	}

	excluded := append(req.requester.IdentityKeys(), req.target.IdentityKeys()...)
	excluded = append(excluded, req.sourceID, req.targetID)
	signals := engagement.Reduce(events, s.now(), s.cfg.EngagementHalfLife, excluded...)
	if len(signals) == 0 {
		return strategy.Strategy{}, false, nil
	}

	first, err := req.graph.GetConnections(ctx, req.sourceID)
	if err != nil {
		return strategy.Strategy{}, false, fmt.Errorf("requester connections: %w", err)
	}
	firstIdx := newProfileIndex(first)
	second := s.secondDegree(ctx, req, first, firstIdx)

	var stones []engagement.SteppingStone
	var unmatched []engagement.Signal
	for _, sig := range signals {
		if p, ok := firstIdx.find(sig.PersonID); ok {
			stones = append(stones, newStone(reach{person: *p}, 1, sig))
			continue
		}
		if r, ok := second[sig.PersonID]; ok {
			stones = append(stones, newStone(r, 2, sig))
			continue
		}
		unmatched = append(unmatched, sig)
	}
	stones = append(stones, s.thirdDegree(ctx, req, unmatched)...)
	if len(stones) == 0 {
		return strategy.Strategy{}, false, nil
	}

	if err := s.scoreStones(ctx, req, stones); err != nil {
		return strategy.Strategy{}, false, err
	}
	ranked := engagement.Rank(stones, engagement.QualityFloor, engagement.MaxStones)
	if len(ranked) == 0 {
		return strategy.Strategy{}, false, nil
	}

	return s.bridgeStrategy(req, ranked), true, nil
}

// engagementEvents gathers tagged inbound and outbound events for the target.
// It fails only when every configured source failed.
func (s *Service) engagementEvents(ctx context.Context, req *request) ([]engagement.Event, error) {
	var (
		events    []engagement.Event
		errs      []error
		attempted int
	)

	if store, ok := s.activities.Get(); ok {
		attempted++
		acts, err := store.ActivitiesForTarget(ctx, req.targetID)
		if err != nil {
			errs = append(errs, fmt.Errorf("inbound activity: %w", err))
		}
		for _, a := range acts {
			events = append(events, engagement.Event{
				CounterpartID: a.ActorID, Kind: engagement.Inbound, Type: a.Type, Timestamp: a.Timestamp,
			})
		}
	}

	if src, ok := s.outbound.Get(); ok {
		attempted++
		acts, err := src.ActivitiesByActor(ctx, req.targetID)
		if err != nil {
			errs = append(errs, fmt.Errorf("outbound activity: %w", err))
		}
		for _, a := range acts {
			events = append(events, engagement.Event{
				CounterpartID: a.TargetID, Kind: engagement.Outbound, Type: a.Type, Timestamp: a.Timestamp,
			})
		}
	}

	if attempted > 0 && len(errs) == attempted {
		return nil, errors.Join(errs...)
	}
	for _, err := range errs {
		req.log.Warn("engagement source unavailable", zap.Error(err))
	}
	return events, nil
}

// secondDegree expands a bounded number of first-degree contacts, in key order,
// and indexes the people they reach by identity key.
func (s *Service) secondDegree(
	ctx context.Context, req *request, first []profile.Profile, firstIdx profileIndex,
) map[string]reach {
	contacts := make([]profile.Profile, len(first))
	copy(contacts, first)
	sort.Slice(contacts, func(i, j int) bool { return contacts[i].Key() < contacts[j].Key() })
	if len(contacts) > s.cfg.SecondDegreeFanout {
		contacts = contacts[:s.cfg.SecondDegreeFanout]
	}

	lists := make([][]profile.Profile, len(contacts))
	var g errgroup.Group
	g.SetLimit(s.cfg.MaxConcurrency)
	for i := range contacts {
		g.Go(func() error {
			conns, err := req.graph.GetConnections(ctx, contacts[i].Key())
			if err != nil {
				req.log.Debug("second-degree expansion failed",
					zap.String("contact", contacts[i].Key()), zap.Error(err))
				return nil
			}
			lists[i] = conns
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]reach)
	for i, conns := range lists {
		for j := range conns {
			p := &conns[j]
			if req.isEndpoint(p) {
				continue
			}
			if _, known := firstIdx.find(p.Key()); known {
				continue
			}
			r := reach{person: *p, via: []profile.Profile{contacts[i]}}
			for _, k := range p.IdentityKeys() {
				if _, ok := out[k]; !ok {
					out[k] = r
				}
			}
		}
	}
	return out
}

// thirdDegree probes the top unmatched engagers with a shortest-path search.
func (s *Service) thirdDegree(
	ctx context.Context, req *request, unmatched []engagement.Signal,
) []engagement.SteppingStone {
	if len(unmatched) > s.cfg.ThirdDegreeProbes {
		unmatched = unmatched[:s.cfg.ThirdDegreeProbes]
	}
	found := make([]*engagement.SteppingStone, len(unmatched))

	var g errgroup.Group
	g.SetLimit(s.cfg.MaxConcurrency)
	for i, sig := range unmatched {
		g.Go(func() error {
			res, err := req.graph.BidirectionalBFS(ctx, req.sourceID, sig.PersonID)
			if err != nil {
				req.log.Debug("stepping stone probe failed",
					zap.String("person", sig.PersonID), zap.Error(err))
				return nil
			}
			if res == nil || len(res.Path) < 2 {
				return nil
			}
			hops := len(res.Path) - 1
			if hops > maxStoneDegree {
				return nil
			}
			stone := newStone(reach{person: res.Path[hops], via: res.Path[1:hops]}, hops, sig)
			found[i] = &stone
			return nil
		})
	}
	_ = g.Wait()

	out := make([]engagement.SteppingStone, 0, len(found))
	for _, st := range found {
		if st != nil {
			out = append(out, *st)
		}
	}
	return out
}

func newStone(r reach, degree int, sig engagement.Signal) engagement.SteppingStone {
	return engagement.SteppingStone{
		Person:      r.person,
		Via:         r.via,
		Direction:   sig.Direction(),
		Degree:      degree,
		Engagement:  sig.Strength,
		LastEngaged: sig.LastEngaged,
	}
}

// scoreStones fills quality, overlap, composite and outreach text in place.
func (s *Service) scoreStones(ctx context.Context, req *request, stones []engagement.SteppingStone) error {
	mutuals, hasMutuals := req.caps.Mutuals.Get()

	var g errgroup.Group
	g.SetLimit(s.cfg.MaxConcurrency)
	for i := range stones {
		g.Go(func() error {
			st := &stones[i]
			toStone := similarity.Compare(req.requester, &st.Person).Overall()
			toTarget := similarity.Compare(&st.Person, req.target).Overall()

			if hasMutuals {
				shared, err := mutuals.GetMutualConnections(ctx, st.Person.Key(), req.targetID)
				if err != nil {
					req.log.Debug("mutual lookup failed",
						zap.String("person", st.Person.Key()), zap.Error(err))
				} else {
					st.NetworkOverlap = math.Min(1, float64(len(shared))/overlapSaturation)
				}
			}

			st.Quality = engagement.BridgeQuality(toStone, toTarget, st.Degree, st.Engagement)
			st.Composite = engagement.Composite(st.Quality, st.Degree, st.Engagement, st.NetworkOverlap)
			st.Outreach = engagement.OutreachText(st, req.target)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("score stepping stones: %w", err)
	}
	return nil
}

func (s *Service) bridgeStrategy(req *request, ranked []engagement.SteppingStone) strategy.Strategy {
	best := ranked[0]
	rate := engagementRateBase + engagementRateQuality*best.Quality
	if best.Degree == 1 {
		rate += engagementRateFirstDegree
	}
	rate = math.Min(engagementRateCap, rate)

	nodes := make([]profile.Profile, 0, len(best.Via)+3)
	nodes = append(nodes, *req.requester)
	nodes = append(nodes, best.Via...)
	nodes = append(nodes, best.Person, *req.target)
	path := strategy.NewPath(nodes, rate)

	stone := best.Person.DisplayName()
	target := req.target.DisplayName()

	steps := make([]string, 0, len(ranked)+1)
	if len(best.Via) > 0 {
		steps = append(steps, fmt.Sprintf("Ask %s to introduce you to %s", best.Via[0].DisplayName(), stone))
	}
	steps = append(steps, fmt.Sprintf("Reach out to %s: %q", stone, best.Outreach))
	for _, alt := range ranked[1:] {
		steps = append(steps, fmt.Sprintf("Alternative stepping stone: %s (%s connection, bridge quality %.2f)",
			alt.Person.DisplayName(), ordinal(alt.Degree), alt.Quality))
	}

	return strategy.NewEngagementBridge(path, strategy.Details{
		TargetID:       req.targetID,
		Confidence:     best.Quality,
		AcceptanceRate: rate,
		Reasoning: fmt.Sprintf("%s has %s engagement with %s and is a %s connection of yours (bridge quality %.2f).",
			stone, best.Direction, target, ordinal(best.Degree), best.Quality),
		NextSteps: steps,
	})
}

func ordinal(degree int) string {
	switch degree {
	case 1:
		return "1st-degree"
	case 2:
		return "2nd-degree"
	case 3:
		return "3rd-degree"
	default:
		return fmt.Sprintf("%dth-degree", degree)
	}
}
