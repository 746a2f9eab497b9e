package profile

import (
	"strings"
	"time"

	"github.com/kailas-cloud/reachout/internal/domain"
)

// Proficiency is a self-reported skill level.
type Proficiency string

// Proficiency levels.
const (
	Beginner     Proficiency = "beginner"
	Intermediate Proficiency = "intermediate"
	Advanced     Proficiency = "advanced"
	Expert       Proficiency = "expert"
)

// Experience is one work-history entry.
type Experience struct {
	Company          string     `json:"company" yaml:"company"`
	Title            string     `json:"title" yaml:"title"`
	Department       string     `json:"department,omitempty" yaml:"department"`
	Industry         string     `json:"industry,omitempty" yaml:"industry"`
	StartDate        *time.Time `json:"start_date,omitempty" yaml:"start_date"`
	EndDate          *time.Time `json:"end_date,omitempty" yaml:"end_date"`
	Current          bool       `json:"current,omitempty" yaml:"current"`
	Skills           []string   `json:"skills,omitempty" yaml:"skills"`
	Responsibilities []string   `json:"responsibilities,omitempty" yaml:"responsibilities"`
}

// Education is one education entry.
type Education struct {
	School    string `json:"school" yaml:"school"`
	Degree    string `json:"degree,omitempty" yaml:"degree"`
	Field     string `json:"field,omitempty" yaml:"field"`
	StartYear int    `json:"start_year,omitempty" yaml:"start_year"`
	EndYear   int    `json:"end_year,omitempty" yaml:"end_year"`
}

// Skill is a named skill with optional proficiency data.
type Skill struct {
	Name     string      `json:"name" yaml:"name"`
	Level    Proficiency `json:"level,omitempty" yaml:"level"`
	Years    float64     `json:"years,omitempty" yaml:"years"`
	Category string      `json:"category,omitempty" yaml:"category"`
}

// Metadata holds values derived from the rest of the profile.
type Metadata struct {
	TotalYearsExperience float64  `json:"total_years_experience,omitempty" yaml:"total_years_experience"`
	DomainTags           []string `json:"domain_tags,omitempty" yaml:"domain_tags"`
	Seniority            string   `json:"seniority,omitempty" yaml:"seniority"`
	CareerStage          string   `json:"career_stage,omitempty" yaml:"career_stage"`
}

// Profile is a person as known locally. Experience and Education are ordered most recent first.
// The engine treats a Profile as read-only for the lifetime of a request.
type Profile struct {
	ID              string       `json:"id,omitempty" yaml:"id"`
	Email           string       `json:"email,omitempty" yaml:"email"`
	Name            string       `json:"name,omitempty" yaml:"name"`
	Location        string       `json:"location,omitempty" yaml:"location"`
	Title           string       `json:"title,omitempty" yaml:"title"`
	Experience      []Experience `json:"experience,omitempty" yaml:"experience"`
	Education       []Education  `json:"education,omitempty" yaml:"education"`
	Skills          []Skill      `json:"skills,omitempty" yaml:"skills"`
	Metadata        Metadata     `json:"metadata,omitempty" yaml:"metadata"`
	ConnectionCount int          `json:"connection_count,omitempty" yaml:"connection_count"`
}

// Validate checks that the profile carries at least one identity field.
func (p *Profile) Validate() error {
	if p.Key() == "" {
		return domain.ErrMissingIdentity
	}
	return nil
}

// Key returns the first non-empty identity in lookup order: id, email, name.
func (p *Profile) Key() string {
	if keys := p.IdentityKeys(); len(keys) > 0 {
		return keys[0]
	}
	return ""
}

// IdentityKeys returns the non-empty identity fields in fallback order.
func (p *Profile) IdentityKeys() []string {
	keys := make([]string, 0, 3)
	for _, k := range []string{p.ID, p.Email, p.Name} {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// DisplayName returns a human-readable label for reasoning text.
func (p *Profile) DisplayName() string {
	switch {
	case strings.TrimSpace(p.Name) != "":
		return strings.TrimSpace(p.Name)
	case p.Email != "":
		return p.Email
	case p.ID != "":
		return p.ID
	default:
		return "this person"
	}
}

// SameAs reports whether two profiles share any identity field.
func (p *Profile) SameAs(other *Profile) bool {
	if other == nil {
		return false
	}
	if p.ID != "" && p.ID == other.ID {
		return true
	}
	if p.Email != "" && strings.EqualFold(p.Email, other.Email) {
		return true
	}
	return p.ID == "" && other.ID == "" && p.Email == "" && other.Email == "" &&
		p.Name != "" && Normalize(p.Name) == Normalize(other.Name)
}

// CurrentExperience returns the entry flagged current, else the most recent one.
func (p *Profile) CurrentExperience() (Experience, bool) {
	for _, e := range p.Experience {
		if e.Current || (e.EndDate == nil && e.StartDate != nil) {
			return e, true
		}
	}
	if len(p.Experience) > 0 {
		return p.Experience[0], true
	}
	return Experience{}, false
}

// CurrentCompany returns the current employer name, or "".
func (p *Profile) CurrentCompany() string {
	if e, ok := p.CurrentExperience(); ok {
		return strings.TrimSpace(e.Company)
	}
	return ""
}

// CurrentIndustry returns the industry of the most recent experience, or "".
func (p *Profile) CurrentIndustry() string {
	if e, ok := p.CurrentExperience(); ok {
		return strings.TrimSpace(e.Industry)
	}
	return ""
}

// SkillNames returns normalized, de-duplicated skill names from the skills list and experience entries.
func (p *Profile) SkillNames() []string {
	seen := make(map[string]struct{}, len(p.Skills))
	out := make([]string, 0, len(p.Skills))
	add := func(s string) {
		n := Normalize(s)
		if n == "" {
			return
		}
		if _, ok := seen[n]; ok {
			return
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	for _, s := range p.Skills {
		add(s.Name)
	}
	for _, e := range p.Experience {
		for _, s := range e.Skills {
			add(s)
		}
	}
	return out
}

// CompanyNames returns normalized, de-duplicated employer names across all experience.
func (p *Profile) CompanyNames() []string {
	seen := make(map[string]struct{}, len(p.Experience))
	out := make([]string, 0, len(p.Experience))
	for _, e := range p.Experience {
		n := Normalize(e.Company)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Completeness returns the fraction of optional profile sections that are filled in.
func (p *Profile) Completeness() float64 {
	filled := 0
	for _, ok := range []bool{
		strings.TrimSpace(p.Title) != "",
		strings.TrimSpace(p.Location) != "",
		p.Email != "",
		len(p.Experience) > 0,
		len(p.Education) > 0,
		len(p.Skills) > 0,
	} {
		if ok {
			filled++
		}
	}
	return float64(filled) / 6
}

// Normalize lowercases and collapses whitespace for comparisons.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
