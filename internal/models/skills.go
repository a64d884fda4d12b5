package models

import "strings"

// DefaultSkills returns an empty skill list.
func DefaultSkills() []string { return []string{} }

// NormalizeSkills trims labels, drops blanks and keeps the first occurrence of
// case-insensitive duplicates. Storage itself does not enforce uniqueness.
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		k := strings.ToLower(s)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}

// AddSkill appends label unless an equal label is already present.
func AddSkill(skills []string, label string) ([]string, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return skills, false
	}
	for _, s := range skills {
		if strings.EqualFold(s, label) {
			return skills, false
		}
	}
	return append(skills, label), true
}
