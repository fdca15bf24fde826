package service

import (
	"encoding/json"
	"testing"

	"github.com/AnTengye/contractreview/backend/model"
	"github.com/google/go-cmp/cmp"
)

func TestBuildReport(t *testing.T) {
	report := BuildReport(FixtureContract(), NewFixtureAnnotationStore())

	if report.ContractID != "1" || report.ContractTitle != "Software Licensing Agreement" {
		t.Errorf("Unexpected header %q %q", report.ContractID, report.ContractTitle)
	}
	if len(report.Parties) != 2 {
		t.Errorf("Expected 2 parties, got %d", len(report.Parties))
	}

	var order []string
	for _, entry := range report.Analysis {
		order = append(order, entry.ClauseID)
	}
	if diff := cmp.Diff([]string{"c1", "c2", "c3", "c4", "c5"}, order); diff != "" {
		t.Errorf("Clause order mismatch (-want +got):\n%s", diff)
	}

	liability := report.Analysis[1]
	if liability.RiskTitle != "High Risk Clause" {
		t.Errorf("Expected high risk title, got %q", liability.RiskTitle)
	}
	if len(liability.EditSuggestions) != 1 || liability.EditSuggestions[0].ID != "e1" {
		t.Errorf("Expected e1 on c2, got %+v", liability.EditSuggestions)
	}
	if len(liability.CounterpartyArguments) != 1 || liability.CounterpartyArguments[0].ID != "cp1" {
		t.Errorf("Expected cp1 on c2, got %+v", liability.CounterpartyArguments)
	}
	if len(liability.LegalReferences) != 1 || liability.LegalReferences[0].ID != "lr1" {
		t.Errorf("Expected lr1 on c2, got %+v", liability.LegalReferences)
	}

	license := report.Analysis[0]
	if license.EditSuggestions == nil || len(license.EditSuggestions) != 0 {
		t.Errorf("Expected empty non-nil suggestions for c1, got %#v", license.EditSuggestions)
	}
}

func TestReportHighRisk(t *testing.T) {
	report := BuildReport(FixtureContract(), NewFixtureAnnotationStore())

	var ids []string
	for _, entry := range report.HighRisk() {
		if entry.RiskLevel != model.RiskHigh {
			t.Errorf("Unexpected risk %s", entry.RiskLevel)
		}
		ids = append(ids, entry.ClauseID)
	}
	if diff := cmp.Diff([]string{"c2", "c4"}, ids); diff != "" {
		t.Errorf("High risk mismatch (-want +got):\n%s", diff)
	}
}

func TestReportJSONShape(t *testing.T) {
	report := BuildReport(FixtureContract(), NewFixtureAnnotationStore())

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	for _, key := range []string{"contract_id", "contract_title", "parties", "analysis"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("Expected key %q in report", key)
		}
	}
	entry := decoded["analysis"].([]interface{})[0].(map[string]interface{})
	for _, key := range []string{"clause_id", "clause_title", "risk_level", "edit_suggestions", "counterparty_arguments", "legal_references"} {
		if _, ok := entry[key]; !ok {
			t.Errorf("Expected key %q in clause entry", key)
		}
	}
}
