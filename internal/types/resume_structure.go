// Package types provides type definitions for structured data used throughout the career-extractor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// SectionType tags a résumé section with the kind of content it holds
type SectionType string

const (
	SectionContact        SectionType = "contact"
	SectionSummary        SectionType = "summary"
	SectionExperience     SectionType = "experience"
	SectionEducation      SectionType = "education"
	SectionSkills         SectionType = "skills"
	SectionCertifications SectionType = "certifications"
)

// Section is a contiguous block of résumé lines opened by a recognized header
type Section struct {
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	StartLine int         `json:"start_line"`
	EndLine   int         `json:"end_line"`
	WordCount int         `json:"word_count"`
	Type      SectionType `json:"type"`
}

// ResumeStructure is the parsed layout of a résumé. It is built once and never mutated.
type ResumeStructure struct {
	Sections          []Section `json:"sections"`
	WordCount         int       `json:"word_count"`
	CharCount         int       `json:"char_count"`
	HasContact        bool      `json:"has_contact"`
	HasSummary        bool      `json:"has_summary"`
	HasWorkHistory    bool      `json:"has_work_history"`
	HasEducation      bool      `json:"has_education"`
	HasSkills         bool      `json:"has_skills"`
	HasCertifications bool      `json:"has_certifications"`
	EstimatedPages    int       `json:"estimated_pages"`
}

// SectionsOfType returns the sections tagged with t, in document order
func (r *ResumeStructure) SectionsOfType(t SectionType) []Section {
	if r == nil {
		return nil
	}
	var out []Section
	for _, s := range r.Sections {
		if s.Type == t {
			out = append(out, s)
		}
	}
	return out
}
