package table

// MatchResult describes how an incoming column sequence relates to the
// expected one.
type MatchResult struct {
	Exact     bool     `json:"exact"`
	Missing   []string `json:"missing"`   // expected but not found, in expected order
	Extra     []string `json:"extra"`     // found but not expected, in incoming order
	Reordered bool     `json:"reordered"` // same set, different order
}

// Compare classifies an incoming column sequence against the expected one.
// An exact match requires the same labels in the same order. Otherwise the
// two are treated as sets: labels only in expected are missing, labels only
// in incoming are extra, and equal sets in a different order are reordered.
// Set equality with an order mismatch is always reported as reordered, never
// as simultaneous missing and extra.
func Compare(expected, incoming []string) MatchResult {
	if equalSequences(expected, incoming) {
		return MatchResult{Exact: true, Missing: []string{}, Extra: []string{}}
	}

	incomingSet := make(map[string]bool, len(incoming))
	for _, c := range incoming {
		incomingSet[c] = true
	}
	expectedSet := make(map[string]bool, len(expected))
	for _, c := range expected {
		expectedSet[c] = true
	}

	missing := []string{}
	for _, c := range expected {
		if !incomingSet[c] {
			missing = append(missing, c)
		}
	}
	extra := []string{}
	for _, c := range incoming {
		if !expectedSet[c] {
			extra = append(extra, c)
		}
	}

	return MatchResult{
		Missing:   missing,
		Extra:     extra,
		Reordered: len(missing) == 0 && len(extra) == 0,
	}
}

func equalSequences(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
