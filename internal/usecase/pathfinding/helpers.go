package pathfinding

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/reachout/internal/domain/profile"
	"github.com/kailas-cloud/reachout/internal/domain/similarity"
)

// resolve maps a profile to its graph identity, trying id, then email, then
// name through the graph's node lookup. Falls back to the profile's own key.
func (s *Service) resolve(ctx context.Context, req *request, p *profile.Profile) string {
	nodes, ok := req.caps.Nodes.Get()
	if !ok {
		return p.Key()
	}
	for _, key := range p.IdentityKeys() {
		node, err := nodes.GetNode(ctx, key)
		if err != nil {
			req.log.Debug("node lookup failed", zap.String("key", key), zap.Error(err))
			continue
		}
		if node != nil {
			if k := node.Key(); k != "" {
				return k
			}
		}
	}
	return p.Key()
}

// profileIndex finds profiles by any of their identity keys.
type profileIndex map[string]*profile.Profile

func newProfileIndex(list []profile.Profile) profileIndex {
	idx := make(profileIndex, len(list)*2)
	for i := range list {
		idx.add(&list[i])
	}
	return idx
}

func (idx profileIndex) add(p *profile.Profile) {
	for _, k := range p.IdentityKeys() {
		if _, ok := idx[k]; !ok {
			idx[k] = p
		}
	}
}

func (idx profileIndex) find(key string) (*profile.Profile, bool) {
	p, ok := idx[key]
	return p, ok
}

// isEndpoint reports whether p is the requester or the target of req.
func (req *request) isEndpoint(p *profile.Profile) bool {
	if p.SameAs(req.requester) || p.SameAs(req.target) {
		return true
	}
	k := p.Key()
	return k != "" && (k == req.sourceID || k == req.targetID)
}

// sharedAttributes names the breakdown entries with any overlap, heaviest weight first.
func sharedAttributes(b similarity.Breakdown) []string {
	var out []string
	for _, a := range []struct {
		name  string
		score float64
	}{
		{"education", b.Education},
		{"skills", b.Skills},
		{"employers", b.Companies},
		{"industry", b.Industry},
		{"location", b.Location},
	} {
		if a.score > 0 {
			out = append(out, a.name)
		}
	}
	return out
}

// joinList renders "a", "a and b", "a, b and c".
func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

func overlapPhrase(b similarity.Breakdown) string {
	shared := sharedAttributes(b)
	if len(shared) == 0 {
		return "no shared background"
	}
	return "shared " + joinList(shared)
}

func names(list []profile.Profile) []string {
	out := make([]string, 0, len(list))
	for i := range list {
		out = append(out, list[i].DisplayName())
	}
	return out
}

func pct(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}
