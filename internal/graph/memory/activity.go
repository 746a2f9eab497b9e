package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kailas-cloud/reachout/internal/domain"
	"github.com/kailas-cloud/reachout/internal/domain/network"
)

// Activities is an in-memory engagement log indexed by target and actor.
type Activities struct {
	mu       sync.RWMutex
	byTarget map[string][]network.Activity
	byActor  map[string][]network.Activity
}

// NewActivities creates an empty activity log.
func NewActivities() *Activities {
	return &Activities{
		byTarget: make(map[string][]network.Activity),
		byActor:  make(map[string][]network.Activity),
	}
}

// Record appends an engagement event.
func (a *Activities) Record(_ context.Context, act network.Activity) error {
	if act.ActorID == "" || act.TargetID == "" {
		return fmt.Errorf("record activity: %w", domain.ErrInvalidRequest)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.byTarget[act.TargetID] = append(a.byTarget[act.TargetID], act)
	a.byActor[act.ActorID] = append(a.byActor[act.ActorID], act)
	return nil
}

// ActivitiesForTarget returns engagement with targetID's content, newest first.
func (a *Activities) ActivitiesForTarget(_ context.Context, targetID string) ([]network.Activity, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return newestFirst(a.byTarget[targetID]), nil
}

// ActivitiesByActor returns engagement performed by actorID, newest first.
func (a *Activities) ActivitiesByActor(_ context.Context, actorID string) ([]network.Activity, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return newestFirst(a.byActor[actorID]), nil
}

func newestFirst(in []network.Activity) []network.Activity {
	out := append([]network.Activity(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}
