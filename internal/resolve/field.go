// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import "strings"

// fieldKeywords maps a coarse discipline label to the vocabulary that
// signals it. Hits are counted by raw substring frequency, so common
// stems ("psycholog") are listed once in their most inclusive form.
var fieldKeywords = map[string][]string{
	"psychology": {
		"psycholog", "cognitive", "behavioral", "behaviour", "perception",
		"memory", "emotion", "personality", "therapy", "clinical",
		"developmental", "neuroscience", "brain", "participants",
	},
	"history": {
		"histor", "century", "era", "revolution", "empire", "colonial",
		"archive", "manuscript", "medieval", "ancient",
	},
	"economics": {
		"econom", "market", "price", "demand", "supply", "gdp",
		"inflation", "monetary", "fiscal", "trade", "investment",
		"capital", "labor", "wage", "equilibrium",
	},
	"sociology": {
		"sociolog", "society", "class", "gender", "race", "inequality",
		"institution", "culture", "community", "demographic", "urban",
	},
	"political science": {
		"politic", "government", "democracy", "election", "voter",
		"policy", "legislature", "congress", "parliament", "diplomacy",
	},
	"medicine": {
		"medical", "patient", "clinical", "treatment", "diagnosis",
		"disease", "symptom", "hospital", "physician", "drug",
		"pharmaceutical", "placebo",
	},
	"biology": {
		"biolog", "cell", "gene", "dna", "protein", "organism",
		"species", "evolution", "ecology", "molecular",
	},
	"literature": {
		"literature", "literary", "novel", "poetry", "poem", "fiction",
		"narrative", "criticism", "modernism", "postmodern",
	},
	"philosophy": {
		"philosoph", "ethics", "moral", "epistemology", "metaphysics",
		"logic", "reasoning", "consciousness",
	},
}

// fieldThreshold is the minimum keyword hit count before a label is
// confident enough to report.
const fieldThreshold = 5

// DetectField classifies a document's discipline from keyword
// frequency. The label feeds the AI tiers as a disambiguation hint.
// Returns "" when no field clears the threshold.
func DetectField(text string) string {
	if text == "" {
		return ""
	}
	lower := strings.ToLower(text)

	bestField, bestScore := "", 0
	for field, keywords := range fieldKeywords {
		var n int
		for _, kw := range keywords {
			n += strings.Count(lower, kw)
		}
		if n > bestScore || (n == bestScore && field < bestField) {
			bestField, bestScore = field, n
		}
	}
	if bestScore < fieldThreshold {
		return ""
	}
	return bestField
}
