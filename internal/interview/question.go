package interview

import (
	"fmt"
	"strings"
)

type Category string

const (
	CategoryTheoretical Category = "theoretical"
	CategoryPractical   Category = "practical"
	CategoryBehavioral  Category = "behavioral"
)

// ParseCategory normalises the category reported by the model.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CategoryTheoretical, CategoryPractical, CategoryBehavioral:
		return c, nil
	default:
		return "", fmt.Errorf("unknown question category %q", s)
	}
}

// GeneratedQuestion is one interview question. Its position in the session is its identity.
type GeneratedQuestion struct {
	Text     string   `json:"text"`
	Category Category `json:"category"`
}

// CheckPlan reports whether questions match the distribution required by mode.
func CheckPlan(mode Mode, questions []GeneratedQuestion) error {
	plan := mode.Plan()
	if len(questions) != plan.Total() {
		return fmt.Errorf("expected %d questions for mode %s, got %d", plan.Total(), mode, len(questions))
	}

	got := make(map[Category]int, len(plan))
	for _, q := range questions {
		got[q.Category]++
	}

	for category, want := range plan {
		if got[category] != want {
			return fmt.Errorf("expected %d %s questions for mode %s, got %d", want, category, mode, got[category])
		}
	}

	return nil
}
