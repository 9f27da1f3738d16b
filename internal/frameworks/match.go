package frameworks

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/jonathan/career-extractor/internal/types"
)

const (
	exactConfidence   = 95
	partialCap        = 85
	defaultConfidence = 50
	fuzzyThreshold    = 50

	roleWeight     = 0.7
	industryWeight = 0.3

	containmentSimilarity = 0.8
)

// NoBenchmarksNote is the adaptation note attached to the generic fallback
const NoBenchmarksNote = "no role-specific benchmarks available"

// genericFramework is used when nothing in the library matches
var genericFramework = types.CompetencyFramework{
	Role:     "General Professional",
	Industry: "General",
	TechnicalCompetencies: []types.TechnicalCompetency{
		{Name: "Domain Expertise", RequiredLevel: "intermediate", Category: "expertise", Keywords: []string{"expertise", "knowledge", "specialist"}},
		{Name: "Problem Solving", RequiredLevel: "intermediate", Category: "analytical", Keywords: []string{"solved", "improved", "analyzed", "resolved"}},
	},
	ManagementBenchmarks: []types.ManagementBenchmark{
		{Aspect: "team_size", Min: 1, Typical: 5, Max: 50, Unit: "people", Keywords: []string{"team", "staff", "reports"}},
		{Aspect: "budget", Min: 10000, Typical: 500000, Max: 10000000, Unit: "USD", Keywords: []string{"budget", "cost", "spend"}},
	},
	ExperienceYears: types.YearsRange{Min: 0, Max: 40},
}

// Match resolves a framework from the embedded library
func Match(role, industry string) *types.FrameworkContext {
	lib, err := Default()
	if err != nil {
		return defaultContext()
	}
	return lib.Match(role, industry)
}

// Match resolves a framework for role and industry: exact role or alias match,
// then weighted fuzzy similarity, then the generic default.
func (l *Library) Match(role, industry string) *types.FrameworkContext {
	role = strings.TrimSpace(role)
	industry = strings.TrimSpace(industry)

	if role != "" {
		for i := range l.frameworks {
			fw := &l.frameworks[i]
			if !matchesRoleExactly(fw, role) {
				continue
			}
			if industry != "" && !strings.EqualFold(fw.Industry, industry) {
				continue
			}
			return &types.FrameworkContext{
				Framework:       cloneFramework(fw),
				MatchQuality:    types.MatchExact,
				MatchScore:      100,
				AdaptationNotes: []string{},
				Confidence:      exactConfidence,
			}
		}
	}

	var best *types.CompetencyFramework
	bestScore := 0.0
	for i := range l.frameworks {
		fw := &l.frameworks[i]
		score := 100 * (roleWeight*roleSimilarity(fw, role) + industryWeight*Similarity(fw.Industry, industry))
		if score > bestScore {
			best, bestScore = fw, score
		}
	}
	if best != nil && bestScore > fuzzyThreshold {
		score := math.Round(bestScore*10) / 10
		return &types.FrameworkContext{
			Framework:       cloneFramework(best),
			MatchQuality:    types.MatchPartial,
			MatchScore:      score,
			AdaptationNotes: adaptationNotes(best, role, industry),
			Confidence:      math.Min(score, partialCap),
		}
	}

	return defaultContext()
}

func defaultContext() *types.FrameworkContext {
	return &types.FrameworkContext{
		Framework:       cloneFramework(&genericFramework),
		MatchQuality:    types.MatchDefault,
		MatchScore:      0,
		AdaptationNotes: []string{NoBenchmarksNote},
		Confidence:      defaultConfidence,
	}
}

func matchesRoleExactly(fw *types.CompetencyFramework, role string) bool {
	if strings.EqualFold(fw.Role, role) {
		return true
	}
	for _, alias := range fw.Aliases {
		if strings.EqualFold(alias, role) {
			return true
		}
	}
	return false
}

func roleSimilarity(fw *types.CompetencyFramework, role string) float64 {
	best := Similarity(fw.Role, role)
	for _, alias := range fw.Aliases {
		if s := Similarity(alias, role); s > best {
			best = s
		}
	}
	return best
}

func adaptationNotes(fw *types.CompetencyFramework, role, industry string) []string {
	notes := []string{}
	if role != "" && !matchesRoleExactly(fw, role) {
		notes = append(notes, fmt.Sprintf("Role %q adapted from the %q framework", role, fw.Role))
	}
	if industry != "" && !strings.EqualFold(fw.Industry, industry) {
		notes = append(notes, fmt.Sprintf("Industry %q differs from framework industry %q; benchmarks may need adjustment", industry, fw.Industry))
	}
	return notes
}

// Similarity scores two labels in [0,1]: 1 for equal, 0.8 when one contains
// the other as whole words, otherwise the Jaccard overlap of their word sets.
func Similarity(a, b string) float64 {
	ta, tb := tokens(a), tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	ja, jb := " "+strings.Join(ta, " ")+" ", " "+strings.Join(tb, " ")+" "
	if ja == jb {
		return 1
	}
	if strings.Contains(ja, jb) || strings.Contains(jb, ja) {
		return containmentSimilarity
	}
	return Jaccard(toSet(ta), toSet(tb))
}

// Jaccard returns |a∩b| / |a∪b| for two word sets
func Jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if b[w] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

var labelStopWords = map[string]bool{"of": true, "and": true, "the": true, "for": true, "&": true}

// tokens lowercases a label and splits it into words
func tokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '&' && r != '+'
	})
}

func toSet(words []string) map[string]bool {
	out := make(map[string]bool, len(words))
	for _, w := range words {
		if !labelStopWords[w] {
			out[w] = true
		}
	}
	return out
}

func cloneFramework(fw *types.CompetencyFramework) *types.CompetencyFramework {
	cp := *fw
	cp.Aliases = append([]string(nil), fw.Aliases...)
	cp.TechnicalCompetencies = append([]types.TechnicalCompetency(nil), fw.TechnicalCompetencies...)
	cp.ManagementBenchmarks = append([]types.ManagementBenchmark(nil), fw.ManagementBenchmarks...)
	cp.EducationRequirements = append([]string(nil), fw.EducationRequirements...)
	cp.Certifications = append([]string(nil), fw.Certifications...)
	return &cp
}
