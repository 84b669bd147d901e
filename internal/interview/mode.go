package interview

import (
	"fmt"
	"strings"
)

// Mode selects the prompt template and the downstream services engaged for a session.
type Mode string

const (
	ModeCV             Mode = "cv"
	ModeJobDescription Mode = "job_description"
	ModeTechStack      Mode = "tech_stack"
	ModeBehavioral     Mode = "behavioral"
)

// Modes lists every supported mode in display order.
var Modes = []Mode{ModeTechStack, ModeJobDescription, ModeCV, ModeBehavioral}

// legacy names still accepted from older clients.
var modeAliases = map[string]Mode{
	"soft_skills": ModeBehavioral,
	"job_link":    ModeJobDescription,
	"link":        ModeJobDescription,
}

// ParseMode resolves a user supplied mode name.
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if alias, ok := modeAliases[name]; ok {
		return alias, nil
	}

	m := Mode(name)
	if !m.Valid() {
		return "", fmt.Errorf("%w: unknown interview mode %q", ErrInvalidInput, s)
	}
	return m, nil
}

func (m Mode) Valid() bool {
	switch m {
	case ModeCV, ModeJobDescription, ModeTechStack, ModeBehavioral:
		return true
	default:
		return false
	}
}

func (m Mode) Behavioral() bool { return m == ModeBehavioral }

func (m Mode) String() string { return string(m) }

// QuestionPlan describes how many questions of each category a mode requires.
type QuestionPlan map[Category]int

// Total returns the number of questions in the plan.
func (p QuestionPlan) Total() int {
	total := 0
	for _, n := range p {
		total += n
	}
	return total
}

// Plan returns the category distribution every generated question set must match.
func (m Mode) Plan() QuestionPlan {
	if m.Behavioral() {
		return QuestionPlan{CategoryBehavioral: 4}
	}
	return QuestionPlan{CategoryTheoretical: 3, CategoryPractical: 1}
}
