package service

import "github.com/AnTengye/contractreview/backend/model"

// RiskDetails is the explanation shown for a risk level
type RiskDetails struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Issues  []string `json:"issues"`
	Icon    string   `json:"icon"`
	Badge   string   `json:"badge"`
}

// Badge icon tokens
const (
	IconAlertTriangle = "alert-triangle"
	IconAlertCircle   = "alert-circle"
	IconShieldCheck   = "shield-check"
	IconCheckCircle   = "check-circle"
	IconInfo          = "info"
)

const lowRiskNote = "No significant issues detected. This clause uses standard industry language."

// DescribeRisk is total over its input; unrecognized levels get "Unknown Risk"
func DescribeRisk(risk model.RiskLevel) RiskDetails {
	switch risk {
	case model.RiskHigh:
		return RiskDetails{
			Title:   "High Risk Clause",
			Summary: "This clause has significant legal implications and should be carefully reviewed. Consider replacing with suggested alternatives.",
			Issues: []string{
				"One-sided provisions with unfair advantage",
				"Potential enforceability issues in multiple jurisdictions",
				"Lacks standard protective language for balanced agreements",
			},
			Icon:  IconAlertTriangle,
			Badge: "High Risk",
		}
	case model.RiskMedium:
		return RiskDetails{
			Title:   "Medium Risk Clause",
			Summary: "This clause contains some potentially problematic language but may be acceptable with modifications.",
			Issues: []string{
				"Contains ambiguous language that could be interpreted in multiple ways",
				"Could benefit from more specific definitions or limitations",
			},
			Icon:  IconAlertCircle,
			Badge: "Medium Risk",
		}
	case model.RiskLow:
		return RiskDetails{
			Title:   "Low Risk Clause",
			Summary: "This clause follows standard legal language and appears to be fair and balanced.",
			Issues:  []string{},
			Icon:    IconShieldCheck,
			Badge:   "Low Risk",
		}
	default:
		return RiskDetails{
			Title:   "Unknown Risk",
			Summary: "Risk assessment is unavailable for this clause.",
			Issues:  []string{},
			Icon:    IconInfo,
			Badge:   "Unknown Risk",
		}
	}
}

// IssueNote returns the sentence shown in place of the issue list for low risk
func IssueNote(risk model.RiskLevel) string {
	if risk == model.RiskLow {
		return lowRiskNote
	}
	return ""
}

const contextPrefix = "This type of clause typically appears in software licensing agreements to establish"

var clauseContexts = map[string]string{
	"Liability":   " boundaries for legal responsibility and financial exposure.",
	"Termination": " conditions under which the agreement can be ended.",
	"Indemnity":   " who will bear the costs of third-party claims.",
	"License":     " the specific rights being granted to use the software.",
	"IP Rights":   " ownership of intellectual property.",
}

// ClauseContext returns the context sentence for a clause type. Unknown
// types report ok=false.
func ClauseContext(clauseType string) (string, bool) {
	suffix, ok := clauseContexts[clauseType]
	if !ok {
		return "", false
	}
	return contextPrefix + suffix, true
}

// Precedents returns the precedent bullets for a risk level
func Precedents(risk model.RiskLevel) []string {
	alignment := "This clause deviates from standard industry language"
	if risk == model.RiskLow {
		alignment = "This clause aligns with standard industry language"
	}

	var likelihood string
	switch risk {
	case model.RiskHigh:
		likelihood = "85% of your previous contracts use more balanced language"
	case model.RiskMedium:
		likelihood = "40% of your previous contracts contain similar provisions"
	default:
		likelihood = "90% of your previous contracts contain nearly identical language"
	}
	return []string{alignment, likelihood}
}

// StrengthIcon returns the badge token for an argument strength
func StrengthIcon(strength model.ArgumentStrength) string {
	switch strength {
	case model.StrengthStrong:
		return IconAlertTriangle
	case model.StrengthModerate:
		return IconAlertCircle
	case model.StrengthWeak:
		return IconCheckCircle
	default:
		return ""
	}
}

// ClauseAnalysis aggregates everything derived from a single clause
type ClauseAnalysis struct {
	Clause     model.Clause `json:"clause"`
	Heading    string       `json:"heading"`
	Risk       RiskDetails  `json:"risk"`
	IssueNote  string       `json:"issue_note,omitempty"`
	Context    string       `json:"context,omitempty"`
	Precedents []string     `json:"precedents"`
}

// DescribeClause derives the analysis panel for clause
func DescribeClause(clause model.Clause) ClauseAnalysis {
	context, _ := ClauseContext(clause.Type)
	return ClauseAnalysis{
		Clause:     clause,
		Heading:    clause.Title + " Analysis",
		Risk:       DescribeRisk(clause.Risk),
		IssueNote:  IssueNote(clause.Risk),
		Context:    context,
		Precedents: Precedents(clause.Risk),
	}
}
