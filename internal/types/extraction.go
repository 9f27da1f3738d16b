package types

import "encoding/json"

// Category names one extraction pass and the bucket it fills
type Category string

const (
	CategoryPowerPhrases Category = "power_phrases"
	CategorySkills       Category = "skills"
	CategoryCompetencies Category = "competencies"
	CategorySoftSkills   Category = "soft_skills"
)

// AllCategories is the fixed pass order
var AllCategories = []Category{
	CategoryPowerPhrases,
	CategorySkills,
	CategoryCompetencies,
	CategorySoftSkills,
}

// Valid reports whether c is one of the four known categories
func (c Category) Valid() bool {
	for _, k := range AllCategories {
		if c == k {
			return true
		}
	}
	return false
}

// PowerPhrase is a quantified achievement statement
type PowerPhrase struct {
	Statement     string             `json:"statement"`
	Category      string             `json:"category,omitempty"`
	ImpactMetrics map[string]float64 `json:"impact_metrics,omitempty"`
	Keywords      []string           `json:"keywords,omitempty"`
	Confidence    float64            `json:"confidence"`
}

// Skill is a stated skill with an optional transferable equivalent
type Skill struct {
	Name                      string  `json:"name"`
	Category                  string  `json:"category,omitempty"`
	CrossFunctionalEquivalent string  `json:"cross_functional_equivalent,omitempty"`
	Confidence                float64 `json:"confidence"`
}

// Competency is a capability inferred from evidence rather than stated outright
type Competency struct {
	Area               string  `json:"area"`
	InferredCapability string  `json:"inferred_capability"`
	EvidenceSource     string  `json:"evidence_source,omitempty"`
	Confidence         float64 `json:"confidence"`
}

// SoftSkill is an interpersonal trait backed by behavioral evidence
type SoftSkill struct {
	Name               string  `json:"name"`
	BehavioralEvidence string  `json:"behavioral_evidence,omitempty"`
	Confidence         float64 `json:"confidence"`
}

// ExtractedData holds the four category buckets. Buckets are never nil once
// constructed through NewExtractedData or Normalize.
type ExtractedData struct {
	PowerPhrases []PowerPhrase `json:"power_phrases"`
	Skills       []Skill       `json:"skills"`
	Competencies []Competency  `json:"competencies"`
	SoftSkills   []SoftSkill   `json:"soft_skills"`
}

// NewExtractedData returns data with every bucket initialized to an empty slice
func NewExtractedData() *ExtractedData {
	return &ExtractedData{
		PowerPhrases: []PowerPhrase{},
		Skills:       []Skill{},
		Competencies: []Competency{},
		SoftSkills:   []SoftSkill{},
	}
}

// Normalize replaces nil buckets with empty slices
func (d *ExtractedData) Normalize() *ExtractedData {
	if d == nil {
		return NewExtractedData()
	}
	if d.PowerPhrases == nil {
		d.PowerPhrases = []PowerPhrase{}
	}
	if d.Skills == nil {
		d.Skills = []Skill{}
	}
	if d.Competencies == nil {
		d.Competencies = []Competency{}
	}
	if d.SoftSkills == nil {
		d.SoftSkills = []SoftSkill{}
	}
	return d
}

// Count returns the number of items in the bucket for c
func (d *ExtractedData) Count(c Category) int {
	if d == nil {
		return 0
	}
	switch c {
	case CategoryPowerPhrases:
		return len(d.PowerPhrases)
	case CategorySkills:
		return len(d.Skills)
	case CategoryCompetencies:
		return len(d.Competencies)
	case CategorySoftSkills:
		return len(d.SoftSkills)
	}
	return 0
}

// Total returns the number of items across all buckets
func (d *ExtractedData) Total() int {
	n := 0
	for _, c := range AllCategories {
		n += d.Count(c)
	}
	return n
}

// AverageConfidence returns the mean item confidence across all buckets, 0 when empty
func (d *ExtractedData) AverageConfidence() float64 {
	if d == nil {
		return 0
	}
	var sum float64
	n := 0
	for _, p := range d.PowerPhrases {
		sum += p.Confidence
		n++
	}
	for _, s := range d.Skills {
		sum += s.Confidence
		n++
	}
	for _, c := range d.Competencies {
		sum += c.Confidence
		n++
	}
	for _, s := range d.SoftSkills {
		sum += s.Confidence
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Append copies the bucket for c from other into d
func (d *ExtractedData) Append(c Category, other *ExtractedData) {
	if d == nil || other == nil {
		return
	}
	d.Normalize()
	switch c {
	case CategoryPowerPhrases:
		d.PowerPhrases = append(d.PowerPhrases, other.PowerPhrases...)
	case CategorySkills:
		d.Skills = append(d.Skills, other.Skills...)
	case CategoryCompetencies:
		d.Competencies = append(d.Competencies, other.Competencies...)
	case CategorySoftSkills:
		d.SoftSkills = append(d.SoftSkills, other.SoftSkills...)
	}
}

// Merge appends every bucket of other into d
func (d *ExtractedData) Merge(other *ExtractedData) {
	for _, c := range AllCategories {
		d.Append(c, other)
	}
}

// Only returns a copy of d holding just the bucket for c
func (d *ExtractedData) Only(c Category) *ExtractedData {
	out := NewExtractedData()
	out.Append(c, d)
	return out
}

// MarshalJSON encodes empty buckets as [] rather than null
func (d ExtractedData) MarshalJSON() ([]byte, error) {
	type plain ExtractedData
	cp := d
	cp.Normalize()
	return json.Marshal(plain(cp))
}
