package interview

// Profile is the structured candidate summary extracted from résumé text.
type Profile struct {
	Role       string   `json:"role" mapstructure:"role"`
	Summary    string   `json:"summary" mapstructure:"summary"`
	Skills     []string `json:"skills" mapstructure:"skills"`
	Experience []string `json:"experience" mapstructure:"experience"`
	Education  []string `json:"education" mapstructure:"education"`
}

// Empty reports whether the profile carries no information at all.
func (p *Profile) Empty() bool {
	if p == nil {
		return true
	}
	return p.Role == "" && p.Summary == "" && len(p.Skills) == 0 && len(p.Experience) == 0 && len(p.Education) == 0
}
