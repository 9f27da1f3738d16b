// Package parsing turns raw résumé text and completion-service output into typed structures.
package parsing

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/career-extractor/internal/types"
)

// maxHeaderLength bounds how long a line may be and still count as a section header
const maxHeaderLength = 60

// wordsPerPage is used for the page estimate
const wordsPerPage = 500

// headerSectionTitle names the synthetic section holding lines before the first header
const headerSectionTitle = "Header"

type headerPattern struct {
	sectionType types.SectionType
	re          *regexp.Regexp
}

var headerPatterns = []headerPattern{
	{types.SectionContact, regexp.MustCompile(`(?i)^(contact|contact (info|information|details)|personal (information|details))$`)},
	{types.SectionSummary, regexp.MustCompile(`(?i)^((professional |executive |career )?(summary|profile)|(career )?objective|about( me)?|overview)$`)},
	{types.SectionExperience, regexp.MustCompile(`(?i)^((work|professional|relevant|career) )?(experience|history)$|^(employment|work|career)( history)?$|^employment$`)},
	{types.SectionEducation, regexp.MustCompile(`(?i)^(education|academic (background|qualifications|history)|education (and|&) training)$`)},
	{types.SectionSkills, regexp.MustCompile(`(?i)^((technical|core|key|professional) )?(skills|competencies)$|^(areas of expertise|expertise|skills (and|&) (expertise|abilities)|technologies)$`)},
	{types.SectionCertifications, regexp.MustCompile(`(?i)^(certifications?|licen[cs]es?|credentials|(licen[cs]es?|certifications?) (and|&) (licen[cs]es?|certifications?))$`)},
}

// matchHeader returns the section type a line opens, if any
func matchHeader(line string) (types.SectionType, bool) {
	candidate := strings.TrimSpace(line)
	if candidate == "" || len(candidate) > maxHeaderLength {
		return "", false
	}
	candidate = strings.TrimLeft(candidate, "#*=- ")
	candidate = strings.TrimRight(candidate, ":*=- ")
	candidate = strings.Join(strings.Fields(candidate), " ")
	for _, p := range headerPatterns {
		if p.re.MatchString(candidate) {
			return p.sectionType, true
		}
	}
	return "", false
}

// ParseResumeStructure segments résumé text into typed sections.
// It never fails: empty input yields a structure with zero sections and zero counts.
func ParseResumeStructure(text string) *types.ResumeStructure {
	structure := &types.ResumeStructure{
		Sections:  []types.Section{},
		WordCount: len(strings.Fields(text)),
		CharCount: utf8.RuneCountInString(text),
	}
	if strings.TrimSpace(text) == "" {
		return structure
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	current := types.Section{Title: headerSectionTitle, Type: types.SectionContact, StartLine: 1, EndLine: 1}
	var body []string

	closeSection := func() {
		content := strings.TrimSpace(strings.Join(body, "\n"))
		if content != "" {
			current.Content = content
			current.WordCount = len(strings.Fields(content))
			structure.Sections = append(structure.Sections, current)
		}
		body = nil
	}

	for i, line := range lines {
		lineNo := i + 1
		if sectionType, ok := matchHeader(line); ok {
			closeSection()
			current = types.Section{
				Title:     strings.TrimSpace(line),
				Type:      sectionType,
				StartLine: lineNo,
				EndLine:   lineNo,
			}
			continue
		}
		body = append(body, line)
		if strings.TrimSpace(line) != "" {
			current.EndLine = lineNo
		}
	}
	closeSection()

	for _, s := range structure.Sections {
		switch s.Type {
		case types.SectionContact:
			structure.HasContact = true
		case types.SectionSummary:
			structure.HasSummary = true
		case types.SectionExperience:
			structure.HasWorkHistory = true
		case types.SectionEducation:
			structure.HasEducation = true
		case types.SectionSkills:
			structure.HasSkills = true
		case types.SectionCertifications:
			structure.HasCertifications = true
		}
	}

	structure.EstimatedPages = (structure.WordCount + wordsPerPage - 1) / wordsPerPage
	return structure
}
