package profile

import (
	"strings"
)

// maxCondensedSkills bounds the skill list sent across the network boundary.
const maxCondensedSkills = 15

// Condensed is the reduced attribute set shared with the semantic similarity service.
type Condensed struct {
	Name      string   `json:"name,omitempty"`
	Headline  string   `json:"headline,omitempty"`
	Company   string   `json:"company,omitempty"`
	Industry  string   `json:"industry,omitempty"`
	Location  string   `json:"location,omitempty"`
	Skills    []string `json:"skills,omitempty"`
	Schools   []string `json:"schools,omitempty"`
	Companies []string `json:"companies,omitempty"`
}

// Condense builds the Condensed view of p.
func Condense(p *Profile) Condensed {
	c := Condensed{
		Name:     strings.TrimSpace(p.Name),
		Headline: strings.TrimSpace(p.Title),
		Company:  p.CurrentCompany(),
		Industry: p.CurrentIndustry(),
		Location: strings.TrimSpace(p.Location),
	}

	skills := p.SkillNames()
	if len(skills) > maxCondensedSkills {
		skills = skills[:maxCondensedSkills]
	}
	c.Skills = skills

	for _, e := range p.Education {
		if s := strings.TrimSpace(e.School); s != "" {
			c.Schools = append(c.Schools, s)
		}
	}
	for _, e := range p.Experience {
		if s := strings.TrimSpace(e.Company); s != "" {
			c.Companies = append(c.Companies, s)
		}
	}
	return c
}

// Text renders the condensed profile as a single line of prose for embedding models.
func (c Condensed) Text() string {
	var b strings.Builder
	write := func(label, v string) {
		if v == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteString(". ")
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(v)
	}
	write("Headline", c.Headline)
	write("Company", c.Company)
	write("Industry", c.Industry)
	write("Location", c.Location)
	write("Skills", strings.Join(c.Skills, ", "))
	write("Education", strings.Join(c.Schools, ", "))
	write("Experience", strings.Join(c.Companies, ", "))
	return b.String()
}

// IsEmpty reports whether no comparable attribute is present.
func (c Condensed) IsEmpty() bool {
	return c.Headline == "" && c.Company == "" && c.Industry == "" && c.Location == "" &&
		len(c.Skills) == 0 && len(c.Schools) == 0 && len(c.Companies) == 0
}
