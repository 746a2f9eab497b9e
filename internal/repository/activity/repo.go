// Package activity stores engagement events in capped Redis lists, one list
// per target (inbound) and one per actor (outbound).
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/reachout/internal/domain"
	"github.com/kailas-cloud/reachout/internal/domain/network"
)

// DefaultMaxEvents caps each per-person list.
const DefaultMaxEvents = 1000

var (
	targetKeyPrefix = domain.KeyPrefix + "activity:target:"
	actorKeyPrefix  = domain.KeyPrefix + "activity:actor:"
)

// store is the consumer interface for the event log.
type store interface {
	LPush(ctx context.Context, key string, values ...[]byte) error
	LTrim(ctx context.Context, key string, start, stop int64) error
	LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// event is the stored form of a network.Activity.
type event struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actor_id"`
	TargetID  string    `json:"target_id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// Repo implements network.ActivityStore and network.OutboundActivitySource.
type Repo struct {
	store     store
	maxEvents int
	ttl       time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

// New creates an activity repository.
func New(s store, logger *zap.Logger) *Repo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{
		store:     s,
		maxEvents: DefaultMaxEvents,
		now:       time.Now,
		logger:    logger,
	}
}

// WithMaxEvents sets the per-list cap.
func (r *Repo) WithMaxEvents(n int) *Repo {
	if n > 0 {
		r.maxEvents = n
	}
	return r
}

// WithTTL expires idle lists. Zero keeps them forever.
func (r *Repo) WithTTL(ttl time.Duration) *Repo {
	r.ttl = ttl
	return r
}

// WithClock overrides the clock used to stamp events without a timestamp.
func (r *Repo) WithClock(now func() time.Time) *Repo {
	r.now = now
	return r
}

// Record appends an engagement event to the target's inbound list and the
// actor's outbound list.
func (r *Repo) Record(ctx context.Context, a network.Activity) error {
	a.ActorID = strings.TrimSpace(a.ActorID)
	a.TargetID = strings.TrimSpace(a.TargetID)
	if a.ActorID == "" || a.TargetID == "" {
		return fmt.Errorf("activity needs actor and target: %w", domain.ErrInvalidRequest)
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = r.now()
	}

	ev := event{
		ID:        uuid.NewString(),
		ActorID:   a.ActorID,
		TargetID:  a.TargetID,
		Type:      a.Type,
		Timestamp: a.Timestamp.UTC(),
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}

	for _, key := range []string{targetKeyPrefix + a.TargetID, actorKeyPrefix + a.ActorID} {
		if err := r.push(ctx, key, data); err != nil {
			return err
		}
	}
	r.logger.Debug("Activity recorded",
		zap.String("event_id", ev.ID),
		zap.String("actor_id", ev.ActorID),
		zap.String("target_id", ev.TargetID),
		zap.String("type", ev.Type),
	)
	return nil
}

// ActivitiesForTarget returns inbound engagement, newest first.
func (r *Repo) ActivitiesForTarget(ctx context.Context, targetID string) ([]network.Activity, error) {
	return r.list(ctx, targetKeyPrefix+targetID)
}

// ActivitiesByActor returns outbound engagement, newest first.
func (r *Repo) ActivitiesByActor(ctx context.Context, actorID string) ([]network.Activity, error) {
	return r.list(ctx, actorKeyPrefix+actorID)
}

func (r *Repo) push(ctx context.Context, key string, data []byte) error {
	if err := r.store.LPush(ctx, key, data); err != nil {
		return fmt.Errorf("push %s: %w", key, err)
	}
	if err := r.store.LTrim(ctx, key, 0, int64(r.maxEvents-1)); err != nil {
		return fmt.Errorf("trim %s: %w", key, err)
	}
	if r.ttl > 0 {
		if err := r.store.Expire(ctx, key, r.ttl, true); err != nil {
			return fmt.Errorf("expire %s: %w", key, err)
		}
	}
	return nil
}

func (r *Repo) list(ctx context.Context, key string) ([]network.Activity, error) {
	items, err := r.store.LRange(ctx, key, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	out := make([]network.Activity, 0, len(items))
	for _, raw := range items {
		var ev event
		if err := json.Unmarshal(raw, &ev); err != nil {
			r.logger.Warn("Skipping malformed activity", zap.String("key", key), zap.Error(err))
			continue
		}
		out = append(out, network.Activity{
			ActorID:   ev.ActorID,
			TargetID:  ev.TargetID,
			Type:      ev.Type,
			Timestamp: ev.Timestamp,
		})
	}
	slices.SortStableFunc(out, func(a, b network.Activity) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return out, nil
}
