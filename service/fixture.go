package service

import "github.com/AnTengye/contractreview/backend/model"

// Sample software licensing agreement served by FixtureLoader together with
// its hand-authored annotations.

// FixtureContract returns a fresh copy of the sample agreement
func FixtureContract() *model.Contract {
	return &model.Contract{
		ID:      "1",
		Title:   "Software Licensing Agreement",
		Parties: []string{"Acme Corp (Licensor)", "TechStart Inc. (Licensee)"},
		Clauses: []model.Clause{
			{
				ID:      "c1",
				Title:   "License Grant",
				Type:    "License",
				Content: "Licensor hereby grants to Licensee a non-exclusive, non-transferable, revocable license to use the Software solely for internal business purposes. Licensee may not sublicense, sell, lease, or otherwise transfer the Software to any third party.",
				Risk:    model.RiskLow,
			},
			{
				ID:      "c2",
				Title:   "Limitation of Liability",
				Type:    "Liability",
				Content: "In no event shall Licensor be liable for any indirect, incidental, special, exemplary, or consequential damages, however caused and on any theory of liability, whether in contract, strict liability, or tort (including negligence or otherwise) arising in any way out of the use of the Software, even if advised of the possibility of such damage.",
				Risk:    model.RiskHigh,
			},
			{
				ID:      "c3",
				Title:   "Indemnification",
				Type:    "Indemnity",
				Content: "Licensee shall indemnify, defend, and hold harmless Licensor against any claims, damages, and expenses (including reasonable attorneys' fees) arising from or related to Licensee's use of the Software or breach of this Agreement.",
				Risk:    model.RiskMedium,
			},
			{
				ID:      "c4",
				Title:   "Term and Termination",
				Type:    "Termination",
				Content: "This Agreement shall remain in effect until terminated. Licensor may terminate this Agreement immediately and without notice if Licensee breaches any provision of this Agreement. Upon termination, Licensee must cease all use of the Software and destroy all copies.",
				Risk:    model.RiskHigh,
			},
			{
				ID:      "c5",
				Title:   "Intellectual Property",
				Type:    "IP Rights",
				Content: "All title, ownership rights, and intellectual property rights in and to the Software shall remain with Licensor. Licensee acknowledges that no title to the intellectual property in the Software is transferred to Licensee.",
				Risk:    model.RiskLow,
			},
		},
	}
}

// FixtureSuggestions returns the edit suggestions for the sample agreement
func FixtureSuggestions() []model.EditSuggestion {
	return []model.EditSuggestion{
		{
			ID:        "e1",
			ClauseID:  "c2",
			Original:  "In no event shall Licensor be liable for any indirect, incidental, special, exemplary, or consequential damages, however caused and on any theory of liability, whether in contract, strict liability, or tort (including negligence or otherwise) arising in any way out of the use of the Software, even if advised of the possibility of such damage.",
			Suggested: "In no event shall Licensor be liable for any indirect, incidental, special, exemplary, or consequential damages, however caused and on any theory of liability, whether in contract, strict liability, or tort (including negligence or otherwise) arising in any way out of the use of the Software, even if advised of the possibility of such damage. Licensor's total liability for all claims related to this Agreement shall not exceed the amounts paid by Licensee to Licensor under this Agreement in the twelve (12) months preceding the claim.",
			Reasoning: "The current clause completely eliminates all liability for the Licensor without any cap on liability, which courts often find unenforceable.",
			Impact:    "Adding a liability cap provides some protection for the Licensee while still limiting Licensor's overall exposure to a reasonable amount.",
		},
		{
			ID:        "e2",
			ClauseID:  "c4",
			Original:  "This Agreement shall remain in effect until terminated. Licensor may terminate this Agreement immediately and without notice if Licensee breaches any provision of this Agreement. Upon termination, Licensee must cease all use of the Software and destroy all copies.",
			Suggested: "This Agreement shall remain in effect until terminated. Licensor may terminate this Agreement with thirty (30) days written notice if Licensee breaches any material provision of this Agreement and fails to cure such breach within the notice period. Upon termination, Licensee must cease all use of the Software and destroy all copies.",
			Reasoning: "The original clause allows immediate termination without notice for any breach, no matter how minor, which is highly unfavorable to the Licensee.",
			Impact:    "Adding a notice period and cure rights allows the Licensee time to address issues before losing access to potentially critical software.",
		},
	}
}

// FixtureArguments returns the counterparty arguments for the sample agreement
func FixtureArguments() []model.CounterPartyArgument {
	return []model.CounterPartyArgument{
		{
			ID:       "cp1",
			ClauseID: "c2",
			Argument: "The unlimited limitation of liability clause is unbalanced and potentially unenforceable in many jurisdictions. We propose adding mutual limitations and excluding liability caps for certain scenarios such as breaches of confidentiality, IP infringement, and gross negligence.",
			Strength: model.StrengthStrong,
		},
		{
			ID:       "cp2",
			ClauseID: "c3",
			Argument: "The indemnification clause is one-sided. We suggest making it mutual so that Licensor also indemnifies Licensee against third-party claims alleging the Software infringes intellectual property rights.",
			Strength: model.StrengthModerate,
		},
		{
			ID:       "cp3",
			ClauseID: "c4",
			Argument: "The termination clause doesn't provide any opportunity to cure breaches and lacks reciprocal termination rights. We request a 30-day cure period and the ability for Licensee to terminate if Licensor materially breaches its obligations.",
			Strength: model.StrengthStrong,
		},
	}
}

// FixtureReferences returns the legal references for the sample agreement
func FixtureReferences() []model.LegalReference {
	return []model.LegalReference{
		{
			ID:        "lr1",
			ClauseID:  "c2",
			Source:    "Case Law",
			Citation:  "XYZ Corp v. ABC Inc., 123 F.3d 456 (9th Cir. 2010)",
			Relevance: "Court found that unlimited liability waivers without any cap are often unenforceable as unconscionable, particularly in B2B software licenses.",
			URL:       "https://example.com/case/xyz-v-abc",
		},
		{
			ID:        "lr2",
			ClauseID:  "c4",
			Source:    "Legal Commentary",
			Citation:  "Practical Law, \"Software License Agreements: Key Provisions\"",
			Relevance: "Standard industry practice includes notice and cure periods before termination except in extreme cases such as IP infringement.",
			URL:       "https://example.com/practical-law/software-license",
		},
	}
}

// NewFixtureAnnotationStore builds a store over the sample annotations
func NewFixtureAnnotationStore() *AnnotationStore {
	return NewAnnotationStore(FixtureSuggestions(), FixtureArguments(), FixtureReferences())
}
