package service

import "github.com/AnTengye/contractreview/backend/model"

const (
	NoSuggestionsMessage = "No edit suggestions for this clause"
	NoArgumentsMessage   = "No counterparty arguments predicted for this clause"

	SimulatorIntro     = "This simulator predicts potential counterarguments from the other party during negotiations. Strength indicators show how compelling these arguments might be."
	NegotiationAdvice  = "Based on the predicted counterarguments, consider preparing responses that address their concerns while protecting your key interests. Review the suggested edits for this clause as potential compromise positions."
	SelectClausePrompt = "Click on any clause in the document to view its analysis"
)

// SuggestionItem pairs a suggestion with the reviewer decision
type SuggestionItem struct {
	model.EditSuggestion
	Status model.SuggestionStatus `json:"status"`
}

// SuggestionPanel is the rendered edit suggestion view
type SuggestionPanel struct {
	Selected     bool             `json:"selected"`
	ClauseID     string           `json:"clause_id,omitempty"`
	Items        []SuggestionItem `json:"items"`
	Empty        bool             `json:"empty"`
	EmptyMessage string           `json:"empty_message,omitempty"`
}

// ArgumentItem pairs an argument with its badge icon
type ArgumentItem struct {
	model.CounterPartyArgument
	Icon string `json:"icon"`
}

// ArgumentPanel is the rendered negotiation simulator view
type ArgumentPanel struct {
	Selected     bool           `json:"selected"`
	ClauseID     string         `json:"clause_id,omitempty"`
	Intro        string         `json:"intro,omitempty"`
	Items        []ArgumentItem `json:"items"`
	Empty        bool           `json:"empty"`
	EmptyMessage string         `json:"empty_message,omitempty"`
	Strategy     string         `json:"strategy,omitempty"`
}

// SuggestionView projects the annotation store onto the selected clause.
// It keeps no state of its own; every Render reads the controller.
type SuggestionView struct {
	selection *SelectionController
	store     *AnnotationStore
}

func NewSuggestionView(selection *SelectionController, store *AnnotationStore) *SuggestionView {
	return &SuggestionView{selection: selection, store: store}
}

// Render builds the panel for the current selection
func (v *SuggestionView) Render() SuggestionPanel {
	return v.renderFor(v.selection.Snapshot())
}

// Watch calls fn with a freshly rendered panel after every transition. A
// transition overtaken by a newer one before it is delivered is skipped.
func (v *SuggestionView) Watch(fn func(SuggestionPanel)) {
	gate := &seqGate{}
	v.selection.Subscribe(func(s Snapshot) {
		if gate.admit(s.Seq) {
			fn(v.renderFor(s))
		}
	})
}

func (v *SuggestionView) renderFor(snap Snapshot) SuggestionPanel {
	panel := SuggestionPanel{Items: []SuggestionItem{}}
	if snap.Clause == nil {
		return panel
	}

	panel.Selected = true
	panel.ClauseID = snap.Clause.ID
	for _, s := range v.store.SuggestionsFor(snap.Clause.ID) {
		status, err := v.store.SuggestionStatus(s.ID)
		if err != nil {
			status = model.SuggestionPending
		}
		panel.Items = append(panel.Items, SuggestionItem{EditSuggestion: s, Status: status})
	}
	if len(panel.Items) == 0 {
		panel.Empty = true
		panel.EmptyMessage = NoSuggestionsMessage
	}
	return panel
}

// ArgumentView projects counterparty arguments onto the selected clause
type ArgumentView struct {
	selection *SelectionController
	store     *AnnotationStore
}

func NewArgumentView(selection *SelectionController, store *AnnotationStore) *ArgumentView {
	return &ArgumentView{selection: selection, store: store}
}

// Render builds the panel for the current selection
func (v *ArgumentView) Render() ArgumentPanel {
	return v.renderFor(v.selection.Snapshot())
}

// Watch calls fn with a freshly rendered panel after every transition
func (v *ArgumentView) Watch(fn func(ArgumentPanel)) {
	gate := &seqGate{}
	v.selection.Subscribe(func(s Snapshot) {
		if gate.admit(s.Seq) {
			fn(v.renderFor(s))
		}
	})
}

func (v *ArgumentView) renderFor(snap Snapshot) ArgumentPanel {
	panel := ArgumentPanel{Items: []ArgumentItem{}}
	if snap.Clause == nil {
		return panel
	}

	panel.Selected = true
	panel.ClauseID = snap.Clause.ID
	for _, a := range v.store.ArgumentsFor(snap.Clause.ID) {
		panel.Items = append(panel.Items, ArgumentItem{CounterPartyArgument: a, Icon: StrengthIcon(a.Strength)})
	}
	if len(panel.Items) == 0 {
		panel.Empty = true
		panel.EmptyMessage = NoArgumentsMessage
		return panel
	}
	panel.Intro = SimulatorIntro
	panel.Strategy = NegotiationAdvice
	return panel
}
