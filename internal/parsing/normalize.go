package parsing

import (
	"strings"

	"github.com/jonathan/career-extractor/internal/types"
)

// skillNormalizations maps common skill name variants to canonical names
var skillNormalizations = map[string]string{
	"golang":      "Go",
	"go lang":     "Go",
	"javascript":  "JavaScript",
	"js":          "JavaScript",
	"typescript":  "TypeScript",
	"ts":          "TypeScript",
	"k8s":         "Kubernetes",
	"kubernetes":  "Kubernetes",
	"react.js":    "React",
	"reactjs":     "React",
	"node.js":     "Node.js",
	"nodejs":      "Node.js",
	"postgres":    "PostgreSQL",
	"postgresql":  "PostgreSQL",
	"ms excel":    "Excel",
	"excel":       "Excel",
	"pm":          "Project Management",
	"agile/scrum": "Agile",
	"scrum":       "Scrum",
	"aws":         "AWS",
	"gcp":         "GCP",
	"sql":         "SQL",
}

// NormalizeSkillName normalizes a skill name to its canonical form
func NormalizeSkillName(skillName string) string {
	normalized := strings.Join(strings.Fields(skillName), " ")
	if normalized == "" {
		return ""
	}

	lower := strings.ToLower(normalized)
	if canonical, ok := skillNormalizations[lower]; ok {
		return canonical
	}

	// Single all-caps words that are not known acronyms get title case
	if normalized == strings.ToUpper(normalized) && !strings.Contains(normalized, " ") && len(normalized) > 4 {
		return normalized[:1] + strings.ToLower(normalized[1:])
	}

	// Single lowercase word: capitalize
	if normalized == lower && !strings.Contains(normalized, " ") {
		return strings.ToUpper(normalized[:1]) + normalized[1:]
	}

	return normalized
}

// NormalizeSkills canonicalizes skill names and merges duplicates, keeping the
// highest confidence and the first non-empty category and equivalent.
func NormalizeSkills(skills []types.Skill) []types.Skill {
	out := make([]types.Skill, 0, len(skills))
	seen := make(map[string]int)

	for _, skill := range skills {
		name := NormalizeSkillName(skill.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if idx, exists := seen[key]; exists {
			existing := &out[idx]
			if skill.Confidence > existing.Confidence {
				existing.Confidence = skill.Confidence
			}
			if existing.Category == "" {
				existing.Category = skill.Category
			}
			if existing.CrossFunctionalEquivalent == "" {
				existing.CrossFunctionalEquivalent = skill.CrossFunctionalEquivalent
			}
			continue
		}
		skill.Name = name
		out = append(out, skill)
		seen[key] = len(out) - 1
	}
	return out
}
