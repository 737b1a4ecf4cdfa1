package rubric

import "strings"

// Tier is the assessment level that determines evidence confidence.
type Tier int

const (
	TierSelf     Tier = 1
	TierPeer     Tier = 2
	TierVerified Tier = 3
)

func (t Tier) Valid() bool {
	return t >= TierSelf && t <= TierVerified
}

// ReportType is the report kind string for the tier.
func (t Tier) ReportType() string {
	switch t {
	case TierPeer:
		return "peer-validation"
	case TierVerified:
		return "full-verification"
	default:
		return "self-assessment"
	}
}

// Confidence labels the trust placed in an assessment.
type Confidence string

const (
	ConfidenceLow    Confidence = "LOW"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceHigh   Confidence = "HIGH"
)

// EvidenceTier is the fixed multiplier and label for a tier.
type EvidenceTier struct {
	Tier        Tier       `json:"tier"`
	Multiplier  float64    `json:"multiplier"`
	Confidence  Confidence `json:"confidence"`
	Description string     `json:"description"`
}

var evidence = map[Tier]EvidenceTier{
	TierSelf:     {Tier: TierSelf, Multiplier: 0.6, Confidence: ConfidenceLow, Description: "Self-report only"},
	TierPeer:     {Tier: TierPeer, Multiplier: 0.8, Confidence: ConfidenceMedium, Description: "Peer/manager validated"},
	TierVerified: {Tier: TierVerified, Multiplier: 1.0, Confidence: ConfidenceHigh, Description: "Auto/Audit verified"},
}

// Evidence returns the evidence record for t.
func Evidence(t Tier) (EvidenceTier, bool) {
	e, ok := evidence[t]
	return e, ok
}

// ScoreType selects which weight table a score is computed with.
type ScoreType string

const (
	ScorePersonal  ScoreType = "personal"
	ScoreCorporate ScoreType = "corporate"
	ScoreCombined  ScoreType = "combined"
)

func (s ScoreType) Valid() bool {
	switch s {
	case ScorePersonal, ScoreCorporate, ScoreCombined:
		return true
	}
	return false
}

// DefaultRole is used when a role is unknown.
const DefaultRole = "General"

var (
	roles        = []string{"General", "Developer", "Researcher", "Support", "Leader"}
	companyTypes = []string{"Startup", "Enterprise", "Aspirational"}
)

// Roles lists the known roles.
func Roles() []string { return append([]string(nil), roles...) }

// CompanyTypes lists the known company types.
func CompanyTypes() []string { return append([]string(nil), companyTypes...) }

// CanonicalRole matches s case-insensitively against the known roles.
func CanonicalRole(s string) (string, bool) {
	return canonical(roles, s)
}

// CanonicalCompanyType matches s case-insensitively against the known company types.
func CanonicalCompanyType(s string) (string, bool) {
	return canonical(companyTypes, s)
}

func canonical(list []string, s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return v, true
		}
	}
	return s, false
}
