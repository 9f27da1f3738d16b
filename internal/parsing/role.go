package parsing

import (
	"regexp"
	"strings"

	"github.com/jonathan/career-extractor/internal/types"
)

const (
	genericRole     = "Professional"
	genericIndustry = "General"

	maxAlternativeRoles = 3

	// confidence levels for detected roles
	confidenceStrongIndustry = 85
	confidenceTitleFound     = 70
	confidenceWeak           = 40
	confidenceNoExperience   = 30
	confidenceSupplied       = 90

	strongIndustryHits = 3
)

// titlePatterns are tried in order against each experience line; the first
// pattern that matches a line supplies that line's title.
var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(Chief(?: [A-Z][a-z]+){1,2} Officer|CEO|CTO|CFO|COO|CIO|CMO|CISO|(?:Senior |Executive )?(?:Vice President|VP)(?: of)?(?: [A-Z][A-Za-z&]+){0,2}|Co-Founder|Founder|President)\b`),
	regexp.MustCompile(`\b((?:Senior |Associate |Executive )?(?:Director|Head)(?: of)?(?: [A-Z][A-Za-z&]+){1,2})\b`),
	regexp.MustCompile(`\b((?:(?:Senior|Sr\.|Junior|Jr\.|Lead|Principal|Staff|Associate|Assistant) )?(?:[A-Z][A-Za-z&/]+ ){0,2}(?:Engineer|Developer|Manager|Analyst|Designer|Architect|Consultant|Scientist|Specialist|Coordinator|Administrator|Accountant|Nurse|Teacher|Officer|Lead|Director|Strategist|Recruiter|Researcher))\b`),
}

// fallbackTitlePattern accepts a short run of capitalized words at the start of a line
var fallbackTitlePattern = regexp.MustCompile(`^((?:[A-Z][A-Za-z&/]+)(?: [A-Z][A-Za-z&/]+){1,4})(?:\s*(?:[-|,@(]|\bat\b)|\s*$)`)

type industryKeywords struct {
	name     string
	keywords []string
}

// industries is ordered; on equal scores the earlier industry wins
var industries = []industryKeywords{
	{"Technology", []string{"software", "saas", "cloud", "api", "platform", "kubernetes", "devops", "microservices", "engineering", "startup", "machine learning", "data pipeline"}},
	{"Finance", []string{"bank", "banking", "finance", "financial", "investment", "trading", "portfolio", "fintech", "accounting", "audit", "credit"}},
	{"Healthcare", []string{"healthcare", "hospital", "clinical", "patient", "patients", "medical", "pharmaceutical", "nursing", "hipaa", "clinic"}},
	{"Education", []string{"school", "university", "teaching", "curriculum", "students", "classroom", "education", "faculty"}},
	{"Retail", []string{"retail", "e-commerce", "ecommerce", "merchandising", "store", "stores", "consumer goods", "omnichannel"}},
	{"Manufacturing", []string{"manufacturing", "supply chain", "production line", "plant", "lean", "six sigma", "logistics", "procurement"}},
	{"Marketing", []string{"marketing", "brand", "campaign", "campaigns", "seo", "advertising", "content strategy"}},
	{"Consulting", []string{"consulting", "consultancy", "client engagement", "advisory", "engagements"}},
}

var industryPatterns = compileIndustryPatterns()

func compileIndustryPatterns() map[string][]*regexp.Regexp {
	out := make(map[string][]*regexp.Regexp, len(industries))
	for _, ind := range industries {
		for _, kw := range ind.keywords {
			out[ind.name] = append(out[ind.name], regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(kw)+`\b`))
		}
	}
	return out
}

// seniority keyword classes, tested in priority order
var (
	executiveTitle = regexp.MustCompile(`(?i)\b(chief|ceo|cto|cfo|coo|cio|cmo|ciso|president|vice president|vp|founder|co-founder|managing partner)\b`)
	directorTitle  = regexp.MustCompile(`(?i)\b(director|head of)\b`)
	seniorTitle    = regexp.MustCompile(`(?i)\b(senior|sr\.?|lead|principal|staff)\b`)
	entryTitle     = regexp.MustCompile(`(?i)\b(junior|jr\.?|associate|entry[- ]level|intern|trainee|graduate)\b`)
)

// SeniorityFromTitle classifies a job title into a seniority tier
func SeniorityFromTitle(title string) types.Seniority {
	switch {
	case executiveTitle.MatchString(title):
		return types.SeniorityExecutive
	case directorTitle.MatchString(title):
		return types.SenioritySenior
	case seniorTitle.MatchString(title):
		return types.SenioritySenior
	case entryTitle.MatchString(title):
		return types.SeniorityEntry
	default:
		return types.SeniorityMid
	}
}

// DetectRoleAndIndustry infers role, industry and seniority from a parsed résumé.
// Titles come from the experience sections only; industry keywords are counted over the full text.
func DetectRoleAndIndustry(structure *types.ResumeStructure, text string) *types.RoleInfo {
	experience := structure.SectionsOfType(types.SectionExperience)
	if len(experience) == 0 {
		return &types.RoleInfo{
			PrimaryRole:      genericRole,
			Industry:         genericIndustry,
			Seniority:        types.SeniorityMid,
			Confidence:       confidenceNoExperience,
			AlternativeRoles: []string{},
			Source:           types.RoleSourceDetected,
		}
	}

	var lines []string
	for _, s := range experience {
		lines = append(lines, strings.Split(s.Content, "\n")...)
	}

	titles := detectTitles(lines, titlePatterns)
	if len(titles) == 0 {
		titles = detectTitles(lines, []*regexp.Regexp{fallbackTitlePattern})
	}

	industry, hits := detectIndustry(text)

	info := &types.RoleInfo{
		PrimaryRole:      genericRole,
		Industry:         industry,
		Seniority:        types.SeniorityMid,
		AlternativeRoles: []string{},
		Source:           types.RoleSourceDetected,
	}
	if len(titles) > 0 {
		info.PrimaryRole = titles[0]
		info.Seniority = SeniorityFromTitle(titles[0])
		for _, alt := range titles[1:] {
			if len(info.AlternativeRoles) == maxAlternativeRoles {
				break
			}
			info.AlternativeRoles = append(info.AlternativeRoles, alt)
		}
	}

	switch {
	case hits >= strongIndustryHits:
		info.Confidence = confidenceStrongIndustry
	case len(titles) > 0:
		info.Confidence = confidenceTitleFound
	default:
		info.Confidence = confidenceWeak
	}
	return info
}

// ResolveRoleInfo applies caller-supplied role or industry over detection.
// Supplied values take precedence and raise confidence to 90.
func ResolveRoleInfo(structure *types.ResumeStructure, text, targetRole, targetIndustry string) *types.RoleInfo {
	info := DetectRoleAndIndustry(structure, text)
	targetRole = strings.TrimSpace(targetRole)
	targetIndustry = strings.TrimSpace(targetIndustry)

	if targetRole != "" {
		if !strings.EqualFold(info.PrimaryRole, targetRole) && info.PrimaryRole != genericRole {
			alts := append([]string{info.PrimaryRole}, info.AlternativeRoles...)
			if len(alts) > maxAlternativeRoles {
				alts = alts[:maxAlternativeRoles]
			}
			info.AlternativeRoles = alts
		}
		info.PrimaryRole = targetRole
		info.Seniority = SeniorityFromTitle(targetRole)
	}
	if targetIndustry != "" {
		info.Industry = targetIndustry
	}
	if targetRole != "" || targetIndustry != "" {
		info.Confidence = confidenceSupplied
		info.Source = types.RoleSourceSupplied
	}
	return info
}

func detectTitles(lines []string, patterns []*regexp.Regexp) []string {
	var titles []string
	seen := make(map[string]bool)
	for _, line := range lines {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*•·"))
		if line == "" {
			continue
		}
		for _, re := range patterns {
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			title := strings.TrimSpace(m[1])
			key := strings.ToLower(title)
			if title != "" && !seen[key] {
				seen[key] = true
				titles = append(titles, title)
			}
			break
		}
	}
	return titles
}

func detectIndustry(text string) (string, int) {
	best, bestHits := genericIndustry, 0
	for _, ind := range industries {
		hits := 0
		for _, re := range industryPatterns[ind.name] {
			hits += len(re.FindAllStringIndex(text, -1))
		}
		if hits > bestHits {
			best, bestHits = ind.name, hits
		}
	}
	return best, bestHits
}
