package neo4j

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/kailas-cloud/reachout/internal/domain"
	"github.com/kailas-cloud/reachout/internal/domain/acceptance"
	"github.com/kailas-cloud/reachout/internal/domain/network"
	"github.com/kailas-cloud/reachout/internal/domain/profile"
)

// Defaults for Graph.
const (
	DefaultMaxHops       = 6
	DefaultNodeCacheTTL  = 5 * time.Minute
	DefaultNodeCacheSize = 10_000
	// companyDegreeLimit bounds the viewer distance reported for employees.
	companyDegreeLimit = 3
)

// Graph serves the social graph, company directory and engagement log from
// Person, Company and ENGAGED data. Resolved identities are cached.
type Graph struct {
	client   Client
	maxHops  int
	viewerID string
	nodes    *expirable.LRU[string, profile.Profile]
}

// New creates a Graph over client.
func New(client Client) *Graph {
	return &Graph{
		client:  client,
		maxHops: DefaultMaxHops,
		nodes:   expirable.NewLRU[string, profile.Profile](DefaultNodeCacheSize, nil, DefaultNodeCacheTTL),
	}
}

// WithMaxHops configures the shortest-path hop budget.
func (g *Graph) WithMaxHops(n int) *Graph {
	if n > 0 {
		g.maxHops = n
	}
	return g
}

// WithViewer sets the person employee connection degrees are measured from.
func (g *Graph) WithViewer(id string) *Graph {
	g.viewerID = id
	return g
}

// WithNodeCache resizes the identity cache.
func (g *Graph) WithNodeCache(size int, ttl time.Duration) *Graph {
	if size > 0 && ttl > 0 {
		g.nodes = expirable.NewLRU[string, profile.Profile](size, nil, ttl)
	}
	return g
}

// VerifyConnectivity checks the underlying connection.
func (g *Graph) VerifyConnectivity(ctx context.Context) error {
	return g.client.VerifyConnectivity(ctx)
}

// Close releases the underlying connection.
func (g *Graph) Close(ctx context.Context) error {
	return g.client.Close(ctx)
}

// GetNode resolves id, email or name to a Person. Unknown identities return nil.
func (g *Graph) GetNode(ctx context.Context, id string) (*profile.Profile, error) {
	key := profile.Normalize(id)
	if key == "" {
		return nil, nil
	}
	if p, ok := g.nodes.Get(key); ok {
		return &p, nil
	}

	res, err := g.client.ExecuteRead(ctx, getNodeCypher, map[string]any{
		"id":    strings.TrimSpace(id),
		"alias": key,
	})
	if err != nil {
		return nil, fmt.Errorf("get node %s: %w", id, err)
	}
	if len(res.Records) == 0 {
		return nil, nil
	}
	p, err := toProfile(res.Records[0]["person"])
	if err != nil {
		return nil, fmt.Errorf("get node %s: %w", id, err)
	}
	g.nodes.Add(key, p)
	return &p, nil
}

// GetConnections lists first-degree connections ordered by id.
func (g *Graph) GetConnections(ctx context.Context, id string) ([]profile.Profile, error) {
	res, err := g.client.ExecuteRead(ctx, connectionsCypher, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get connections %s: %w", id, err)
	}
	return toProfiles(res.Records, "person")
}

// GetMutualConnections lists people connected to both ids.
func (g *Graph) GetMutualConnections(ctx context.Context, id1, id2 string) ([]profile.Profile, error) {
	res, err := g.client.ExecuteRead(ctx, mutualsCypher, map[string]any{"a": id1, "b": id2})
	if err != nil {
		return nil, fmt.Errorf("get mutual connections %s/%s: %w", id1, id2, err)
	}
	return toProfiles(res.Records, "person")
}

// BidirectionalBFS delegates to cypher shortestPath within the hop budget,
// which the server evaluates as a bidirectional search.
func (g *Graph) BidirectionalBFS(ctx context.Context, sourceID, targetID string) (*network.PathResult, error) {
	if sourceID == "" || targetID == "" || sourceID == targetID {
		return nil, nil
	}
	res, err := g.client.ExecuteRead(ctx, fmt.Sprintf(shortestPathCypherTemplate, g.maxHops), map[string]any{
		"source": sourceID,
		"target": targetID,
	})
	if err != nil {
		return nil, fmt.Errorf("shortest path %s->%s: %w", sourceID, targetID, err)
	}
	if len(res.Records) == 0 {
		return nil, nil
	}

	raw, ok := res.Records[0]["path"].([]any)
	if !ok {
		return nil, fmt.Errorf("shortest path: %w: path is %T", domain.ErrMalformedResponse, res.Records[0]["path"])
	}
	nodes := make([]profile.Profile, 0, len(raw))
	for _, n := range raw {
		p, err := toProfile(n)
		if err != nil {
			return nil, fmt.Errorf("shortest path: %w", err)
		}
		nodes = append(nodes, p)
	}
	if len(nodes) < 2 {
		return nil, nil
	}

	hops := len(nodes) - 1
	return &network.PathResult{
		Path:              nodes,
		Probability:       acceptance.HopCountToRate(hops),
		MutualConnections: hops - 1,
	}, nil
}

// GetCompany returns the company with current employees annotated by their
// distance to the viewer (0 when farther than three hops or no viewer is set).
func (g *Graph) GetCompany(ctx context.Context, companyKey string) (*network.Company, error) {
	key := network.CompanyKey(companyKey)
	if key == "" {
		return nil, nil
	}
	res, err := g.client.ExecuteRead(ctx, companyCypher, map[string]any{
		"key":    key,
		"viewer": g.viewerID,
	})
	if err != nil {
		return nil, fmt.Errorf("get company %s: %w", key, err)
	}
	if len(res.Records) == 0 {
		return nil, nil
	}

	c := &network.Company{
		Key:  toString(res.Records[0]["key"]),
		Name: toString(res.Records[0]["name"]),
	}
	for _, r := range res.Records {
		id := toString(r["profileId"])
		if id == "" {
			continue
		}
		degree := int(toInt64(r["degree"]))
		if degree > companyDegreeLimit {
			degree = 0
		}
		c.Employees = append(c.Employees, network.Employee{
			ProfileID:        id,
			Name:             toString(r["employeeName"]),
			Role:             toString(r["role"]),
			Department:       toString(r["department"]),
			ConnectionDegree: degree,
		})
	}
	return c, nil
}

// ActivitiesForTarget returns engagement with targetID's content, newest first.
func (g *Graph) ActivitiesForTarget(ctx context.Context, targetID string) ([]network.Activity, error) {
	res, err := g.client.ExecuteRead(ctx, inboundActivityCypher, map[string]any{"id": targetID})
	if err != nil {
		return nil, fmt.Errorf("activities for %s: %w", targetID, err)
	}
	return toActivities(res.Records), nil
}

// ActivitiesByActor returns engagement performed by actorID, newest first.
func (g *Graph) ActivitiesByActor(ctx context.Context, actorID string) ([]network.Activity, error) {
	res, err := g.client.ExecuteRead(ctx, outboundActivityCypher, map[string]any{"id": actorID})
	if err != nil {
		return nil, fmt.Errorf("activities by %s: %w", actorID, err)
	}
	return toActivities(res.Records), nil
}

// UpsertProfile creates or refreshes a Person keyed by the profile's identity.
func (g *Graph) UpsertProfile(ctx context.Context, p profile.Profile) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	props, err := personProperties(p)
	if err != nil {
		return fmt.Errorf("upsert profile %s: %w", p.Key(), err)
	}
	employment := make([]map[string]any, 0, 1)
	if exp, ok := p.CurrentExperience(); ok && exp.Company != "" {
		employment = append(employment, map[string]any{
			"key":        network.CompanyKey(exp.Company),
			"name":       exp.Company,
			"role":       exp.Title,
			"department": exp.Department,
		})
	}

	if _, err := g.client.ExecuteWrite(ctx, upsertPersonCypher, map[string]any{
		"id":         p.Key(),
		"props":      props,
		"employment": employment,
	}); err != nil {
		return fmt.Errorf("upsert profile %s: %w", p.Key(), err)
	}
	for _, k := range p.IdentityKeys() {
		g.nodes.Remove(profile.Normalize(k))
	}
	return nil
}

// Connect records an undirected connection between two people.
func (g *Graph) Connect(ctx context.Context, a, b string) error {
	if a == "" || b == "" {
		return fmt.Errorf("connect: %w", domain.ErrMissingIdentity)
	}
	if _, err := g.client.ExecuteWrite(ctx, connectCypher, map[string]any{"a": a, "b": b}); err != nil {
		return fmt.Errorf("connect %s-%s: %w", a, b, err)
	}
	return nil
}

// Record stores an engagement event.
func (g *Graph) Record(ctx context.Context, act network.Activity) error {
	if act.ActorID == "" || act.TargetID == "" {
		return fmt.Errorf("record activity: %w", domain.ErrInvalidRequest)
	}
	if _, err := g.client.ExecuteWrite(ctx, recordActivityCypher, map[string]any{
		"actor":     act.ActorID,
		"target":    act.TargetID,
		"type":      act.Type,
		"timestamp": act.Timestamp.UTC(),
	}); err != nil {
		return fmt.Errorf("record activity %s->%s: %w", act.ActorID, act.TargetID, err)
	}
	return nil
}

func personProperties(p profile.Profile) (map[string]any, error) {
	doc, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":              p.Key(),
		"email":           strings.ToLower(p.Email),
		"name":            p.Name,
		"nameKey":         profile.Normalize(p.Name),
		"location":        p.Location,
		"title":           p.Title,
		"connectionCount": int64(p.ConnectionCount),
		"profile":         string(doc),
	}, nil
}

func toProfiles(records []Record, field string) ([]profile.Profile, error) {
	out := make([]profile.Profile, 0, len(records))
	for _, r := range records {
		p, err := toProfile(r[field])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// toProfile decodes Person properties. The serialized profile document, when
// present, supplies experience and education; scalar properties win.
func toProfile(val any) (profile.Profile, error) {
	props, ok := val.(map[string]any)
	if !ok {
		return profile.Profile{}, fmt.Errorf("%w: person is %T", domain.ErrMalformedResponse, val)
	}

	var p profile.Profile
	if doc := toString(props["profile"]); doc != "" {
		if err := json.Unmarshal([]byte(doc), &p); err != nil {
			return profile.Profile{}, fmt.Errorf("%w: profile document: %v", domain.ErrMalformedResponse, err)
		}
	}
	if v := toString(props["id"]); v != "" {
		p.ID = v
	}
	if v := toString(props["email"]); v != "" && p.Email == "" {
		p.Email = v
	}
	if v := toString(props["name"]); v != "" {
		p.Name = v
	}
	if v := toString(props["location"]); v != "" {
		p.Location = v
	}
	if v := toString(props["title"]); v != "" {
		p.Title = v
	}
	if v := toInt64(props["connectionCount"]); v > 0 {
		p.ConnectionCount = int(v)
	}
	if p.Key() == "" {
		return profile.Profile{}, fmt.Errorf("%w: person without identity", domain.ErrMalformedResponse)
	}
	return p, nil
}

func toActivities(records []Record) []network.Activity {
	out := make([]network.Activity, 0, len(records))
	for _, r := range records {
		a := network.Activity{
			ActorID:  toString(r["actorId"]),
			TargetID: toString(r["targetId"]),
			Type:     toString(r["type"]),
		}
		if ts := toTime(r["timestamp"]); ts != nil {
			a.Timestamp = *ts
		}
		if a.ActorID == "" || a.TargetID == "" {
			continue
		}
		out = append(out, a)
	}
	return out
}

func toString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func toInt64(val any) int64 {
	switch v := val.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func toTime(val any) *time.Time {
	switch v := val.(type) {
	case time.Time:
		return &v
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return &parsed
		}
	}
	return nil
}

const getNodeCypher = `
MATCH (p:Person)
WHERE p.id = $id OR p.email = $alias OR p.nameKey = $alias
RETURN properties(p) AS person
ORDER BY CASE WHEN p.id = $id THEN 0 WHEN p.email = $alias THEN 1 ELSE 2 END, p.id
LIMIT 1
`

const connectionsCypher = `
MATCH (:Person {id: $id})-[:CONNECTED_TO]-(c:Person)
WITH DISTINCT c
RETURN properties(c) AS person
ORDER BY c.id
`

const mutualsCypher = `
MATCH (a:Person {id: $a})-[:CONNECTED_TO]-(m:Person)-[:CONNECTED_TO]-(b:Person {id: $b})
WHERE m <> a AND m <> b
WITH DISTINCT m
RETURN properties(m) AS person
ORDER BY m.id
`

// shortestPathCypherTemplate takes the hop budget; cypher cannot
// parameterize variable-length bounds.
const shortestPathCypherTemplate = `
MATCH (s:Person {id: $source}), (t:Person {id: $target})
MATCH p = shortestPath((s)-[:CONNECTED_TO*..%d]-(t))
RETURN [n IN nodes(p) | properties(n)] AS path
LIMIT 1
`

const companyCypher = `
MATCH (c:Company {key: $key})
OPTIONAL MATCH (e:Person)-[w:WORKS_AT]->(c)
WHERE coalesce(w.current, true)
OPTIONAL MATCH (v:Person {id: $viewer})
OPTIONAL MATCH sp = shortestPath((v)-[:CONNECTED_TO*1..3]-(e))
WHERE v <> e
RETURN c.key AS key, c.name AS name, e.id AS profileId, e.name AS employeeName,
       w.role AS role, w.department AS department,
       CASE WHEN sp IS NULL THEN 0 ELSE length(sp) END AS degree
ORDER BY e.id
`

const inboundActivityCypher = `
MATCH (a:Person)-[r:ENGAGED]->(t:Person {id: $id})
RETURN a.id AS actorId, t.id AS targetId, r.type AS type, r.timestamp AS timestamp
ORDER BY r.timestamp DESC
`

const outboundActivityCypher = `
MATCH (a:Person {id: $id})-[r:ENGAGED]->(t:Person)
RETURN a.id AS actorId, t.id AS targetId, r.type AS type, r.timestamp AS timestamp
ORDER BY r.timestamp DESC
`

const upsertPersonCypher = `
MERGE (p:Person {id: $id})
SET p += $props
WITH p
FOREACH (job IN $employment |
	MERGE (c:Company {key: job.key})
	ON CREATE SET c.name = job.name
	MERGE (p)-[w:WORKS_AT]->(c)
	SET w.role = job.role, w.department = job.department, w.current = true
)
RETURN p.id AS id
`

const connectCypher = `
MATCH (a:Person {id: $a}), (b:Person {id: $b})
WHERE a <> b
MERGE (a)-[:CONNECTED_TO]-(b)
`

const recordActivityCypher = `
MATCH (a:Person {id: $actor}), (t:Person {id: $target})
CREATE (a)-[:ENGAGED {type: $type, timestamp: $timestamp}]->(t)
`
