package service

import "github.com/AnTengye/contractreview/backend/model"

// ClauseReport is the per-clause entry of an analysis report
type ClauseReport struct {
	ClauseID              string                       `json:"clause_id"`
	ClauseTitle           string                       `json:"clause_title"`
	ClauseType            string                       `json:"clause_type"`
	RiskLevel             model.RiskLevel              `json:"risk_level"`
	RiskTitle             string                       `json:"risk_title"`
	EditSuggestions       []model.EditSuggestion       `json:"edit_suggestions"`
	CounterpartyArguments []model.CounterPartyArgument `json:"counterparty_arguments"`
	LegalReferences       []model.LegalReference       `json:"legal_references"`
}

// Report is a whole-document analysis, clauses in document order
type Report struct {
	ContractID    string         `json:"contract_id"`
	ContractTitle string         `json:"contract_title"`
	Parties       []string       `json:"parties"`
	Analysis      []ClauseReport `json:"analysis"`
}

// BuildReport joins every clause of contract with its annotations
func BuildReport(contract *model.Contract, store *AnnotationStore) Report {
	report := Report{
		ContractID:    contract.ID,
		ContractTitle: contract.Title,
		Parties:       append([]string(nil), contract.Parties...),
		Analysis:      make([]ClauseReport, 0, len(contract.Clauses)),
	}

	for _, clause := range contract.Clauses {
		report.Analysis = append(report.Analysis, ClauseReport{
			ClauseID:              clause.ID,
			ClauseTitle:           clause.Title,
			ClauseType:            clause.Type,
			RiskLevel:             clause.Risk,
			RiskTitle:             DescribeRisk(clause.Risk).Title,
			EditSuggestions:       store.SuggestionsFor(clause.ID),
			CounterpartyArguments: store.ArgumentsFor(clause.ID),
			LegalReferences:       store.ReferencesFor(clause.ID),
		})
	}

	return report
}

// HighRisk returns the entries whose clause is rated high risk
func (r Report) HighRisk() []ClauseReport {
	out := make([]ClauseReport, 0)
	for _, entry := range r.Analysis {
		if entry.RiskLevel == model.RiskHigh {
			out = append(out, entry)
		}
	}
	return out
}
