package types

// Seniority is the coarse career level inferred for a candidate
type Seniority string

const (
	SeniorityEntry     Seniority = "entry"
	SeniorityMid       Seniority = "mid"
	SenioritySenior    Seniority = "senior"
	SeniorityExecutive Seniority = "executive"
)

// IsSenior reports whether the level is senior or executive
func (s Seniority) IsSenior() bool {
	return s == SenioritySenior || s == SeniorityExecutive
}

// RoleSource records whether role info was detected from text or supplied by the caller
type RoleSource string

const (
	RoleSourceDetected RoleSource = "detected"
	RoleSourceSupplied RoleSource = "supplied"
)

// RoleInfo describes the candidate's primary role, industry and seniority
type RoleInfo struct {
	PrimaryRole      string     `json:"primary_role"`
	Industry         string     `json:"industry"`
	Seniority        Seniority  `json:"seniority"`
	Confidence       int        `json:"confidence"`
	AlternativeRoles []string   `json:"alternative_roles"`
	Source           RoleSource `json:"source"`
}
