package pathfinding

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/kailas-cloud/reachout/internal/domain/network"
	"github.com/kailas-cloud/reachout/internal/domain/profile"
	"github.com/kailas-cloud/reachout/internal/domain/strategy"
)

// Company bridge scoring.
const (
	companyDegreeWeight    = 0.6
	companyRoleWeight      = 0.25
	companySeniorityBonus  = 0.15
	companyScoreFloor      = 0.4
	companyRateBase        = 0.32
	companyRateCap         = 0.40
	companyMaxDegree       = 3
	companyMinDegree       = 1
	companyTokenMinLength  = 2
	companyDefaultRoleText = "colleague"
)

var (
	companyDegreeScores = map[int]float64{1: 1.0, 2: 0.7, 3: 0.4}
	companyDegreeBonus  = map[int]float64{1: 0.08, 2: 0.05, 3: 0.02}
	seniorityKeywords   = []string{
		"senior", "lead", "principal", "staff", "director", "manager", "head", "vp", "chief",
	}
)

type colleague struct {
	employee network.Employee
	score    float64
}

func (s *Service) companyBridge(ctx context.Context, req *request) (strategy.Strategy, bool, error) {
	dir, ok := s.companies.Get()
	if !ok {
		return strategy.Strategy{}, false, nil
	}
	name := req.target.CurrentCompany()
	if name == "" {
		return strategy.Strategy{}, false, nil
	}
	key := network.CompanyKey(name)
	company, err := dir.GetCompany(ctx, key)
	if err != nil {
		return strategy.Strategy{}, false, fmt.Errorf("get company %q: %w", key, err)
	}
	if company == nil {
		return strategy.Strategy{}, false, nil
	}

	best, found := bestColleague(req, company.Employees)
	if !found {
		return strategy.Strategy{}, false, nil
	}

	rate := math.Min(companyRateCap, companyRateBase+companyDegreeBonus[best.employee.ConnectionDegree])
	bridge := profile.Profile{
		ID:    best.employee.ProfileID,
		Name:  best.employee.Name,
		Title: best.employee.Role,
		Experience: []profile.Experience{{
			Company: company.Name, Title: best.employee.Role,
			Department: best.employee.Department, Current: true,
		}},
	}
	path := strategy.NewPath([]profile.Profile{*req.requester, bridge, *req.target}, rate)

	role := best.employee.Role
	if role == "" {
		role = companyDefaultRoleText
	}
	colleagueName := bridge.DisplayName()
	target := req.target.DisplayName()
	return strategy.NewCompanyBridge(path, strategy.Details{
		TargetID:       req.targetID,
		Confidence:     best.score,
		AcceptanceRate: rate,
		Reasoning: fmt.Sprintf("%s works at %s with %s as %s and is a %s connection of yours.",
			colleagueName, company.Name, target, role, ordinal(best.employee.ConnectionDegree)),
		NextSteps: []string{
			fmt.Sprintf("Ask %s about the team at %s", colleagueName, company.Name),
			fmt.Sprintf("Request an introduction to %s through %s", target, colleagueName),
		},
	}), true, nil
}

// bestColleague scores reachable employees and returns the best one above the
// floor. Ties go to the lower degree, then the lower profile id.
func bestColleague(req *request, employees []network.Employee) (colleague, bool) {
	targetExp, _ := req.target.CurrentExperience()
	targetTitle := req.target.Title
	if targetTitle == "" {
		targetTitle = targetExp.Title
	}

	var best colleague
	found := false
	for _, e := range employees {
		if e.ConnectionDegree < companyMinDegree || e.ConnectionDegree > companyMaxDegree {
			continue
		}
		if req.isEndpoint(&profile.Profile{ID: e.ProfileID, Name: e.Name}) {
			continue
		}
		c := colleague{employee: e, score: colleagueScore(e, targetExp.Department, targetTitle)}
		if c.score <= companyScoreFloor {
			continue
		}
		if !found || betterColleague(c, best) {
			best = c
			found = true
		}
	}
	return best, found
}

func betterColleague(a, b colleague) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	if a.employee.ConnectionDegree != b.employee.ConnectionDegree {
		return a.employee.ConnectionDegree < b.employee.ConnectionDegree
	}
	return a.employee.ProfileID < b.employee.ProfileID
}

func colleagueScore(e network.Employee, targetDept, targetTitle string) float64 {
	score := companyDegreeScores[e.ConnectionDegree] * companyDegreeWeight
	score += roleMatch(e, targetDept, targetTitle) * companyRoleWeight
	if isSenior(e.Role) {
		score += companySeniorityBonus
	}
	return score
}

// roleMatch is 1 for the same department, otherwise the title token overlap.
func roleMatch(e network.Employee, targetDept, targetTitle string) float64 {
	d1, d2 := profile.Normalize(e.Department), profile.Normalize(targetDept)
	if d1 != "" && d1 == d2 {
		return 1
	}
	return tokenJaccard(e.Role, targetTitle)
}

func isSenior(role string) bool {
	for _, tok := range tokens(role) {
		for _, kw := range seniorityKeywords {
			if tok == kw {
				return true
			}
		}
	}
	return false
}

func tokens(s string) []string {
	fields := strings.FieldsFunc(profile.Normalize(s), func(r rune) bool {
		return r == ' ' || r == ',' || r == '/' || r == '-' || r == '&' || r == '.'
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) >= companyTokenMinLength {
			out = append(out, f)
		}
	}
	return out
}

func tokenJaccard(a, b string) float64 {
	ta, tb := tokens(a), tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(ta))
	for _, t := range ta {
		set[t] = struct{}{}
	}
	inter, union := 0, len(set)
	seen := make(map[string]struct{}, len(tb))
	for _, t := range tb {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := set[t]; ok {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}
