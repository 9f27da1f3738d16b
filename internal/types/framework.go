package types

// TechnicalCompetency is an expected skill area for a role
type TechnicalCompetency struct {
	Name          string   `json:"name" yaml:"name"`
	RequiredLevel string   `json:"required_level" yaml:"required_level"`
	Category      string   `json:"category" yaml:"category"`
	Keywords      []string `json:"keywords" yaml:"keywords"`
}

// ManagementBenchmark is a numeric scope expectation (team size, budget, ...) for a role
type ManagementBenchmark struct {
	Aspect   string   `json:"aspect" yaml:"aspect"`
	Min      float64  `json:"min" yaml:"min"`
	Typical  float64  `json:"typical" yaml:"typical"`
	Max      float64  `json:"max" yaml:"max"`
	Unit     string   `json:"unit" yaml:"unit"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// YearsRange is an inclusive range of years of experience
type YearsRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// CompetencyFramework is static reference data for one role and industry pair
type CompetencyFramework struct {
	Role                  string                `json:"role" yaml:"role"`
	Industry              string                `json:"industry" yaml:"industry"`
	Aliases               []string              `json:"aliases,omitempty" yaml:"aliases"`
	TechnicalCompetencies []TechnicalCompetency `json:"technical_competencies" yaml:"technical_competencies"`
	ManagementBenchmarks  []ManagementBenchmark `json:"management_benchmarks" yaml:"management_benchmarks"`
	EducationRequirements []string              `json:"education_requirements,omitempty" yaml:"education_requirements"`
	Certifications        []string              `json:"certifications,omitempty" yaml:"certifications"`
	ExperienceYears       YearsRange            `json:"experience_years" yaml:"experience_years"`
}

// Benchmark returns the management benchmark whose aspect equals aspect, or nil
func (f *CompetencyFramework) Benchmark(aspect string) *ManagementBenchmark {
	if f == nil {
		return nil
	}
	for i := range f.ManagementBenchmarks {
		if f.ManagementBenchmarks[i].Aspect == aspect {
			return &f.ManagementBenchmarks[i]
		}
	}
	return nil
}

// MatchQuality describes how a framework was resolved for a role
type MatchQuality string

const (
	MatchExact     MatchQuality = "exact"
	MatchPartial   MatchQuality = "partial"
	MatchDefault   MatchQuality = "default"
	MatchGenerated MatchQuality = "generated"
)

// FrameworkContext is the result of framework matching
type FrameworkContext struct {
	Framework       *CompetencyFramework `json:"framework"`
	MatchQuality    MatchQuality         `json:"match_quality"`
	MatchScore      float64              `json:"match_score"`
	AdaptationNotes []string             `json:"adaptation_notes"`
	Confidence      float64              `json:"confidence"`
}

// HasManagementBenchmarks reports whether a matched framework carries at least one benchmark
func (c *FrameworkContext) HasManagementBenchmarks() bool {
	return c != nil && c.Framework != nil && len(c.Framework.ManagementBenchmarks) > 0
}
