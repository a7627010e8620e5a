package steno

import (
	"sort"

	"github.com/agnivade/levenshtein"
)

// suggestVerb finds the closest known verb or alias for an unrecognised
// token. The edit-distance budget scales with candidate length so short
// verbs do not match everything.
func suggestVerb(vocab *ResolvedVocabulary, word string) (string, bool) {
	if word == "" {
		return "", false
	}
	candidates := vocab.VerbTokens()
	for alias := range vocab.verbAliases {
		candidates = append(candidates, alias)
	}
	sort.Strings(candidates)

	best := ""
	bestDist := -1
	for _, cand := range candidates {
		dist := levenshtein.ComputeDistance(word, cand)
		if dist == 0 || dist > suggestLimit(len(cand)) {
			continue
		}
		if bestDist == -1 || dist < bestDist {
			best = cand
			bestDist = dist
		}
	}
	return best, best != ""
}

func suggestLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
