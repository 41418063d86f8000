package textutil

import "strings"

// SequenceRatio computes a Ratcliff-Obershelp similarity between two strings:
// twice the total length of matching blocks divided by the combined length.
// Returns a value in [0, 1].
func SequenceRatio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	matched := matchingLength(ra, rb)
	return 2 * float64(matched) / float64(len(ra)+len(rb))
}

// matchingLength sums the longest common substring and recursive matches on
// the unmatched left and right remainders.
func matchingLength(a, b []rune) int {
	aStart, bStart, size := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingLength(a[:aStart], b[:bStart])
	total += matchingLength(a[aStart+size:], b[bStart+size:])
	return total
}

func longestCommonBlock(a, b []rune) (aStart, bStart, size int) {
	// prev[j] holds the run length ending at a[i-1], b[j-1].
	prev := make([]int, len(b)+1)
	current := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				current[j] = prev[j-1] + 1
				if current[j] > size {
					size = current[j]
					aStart = i - size
					bStart = j - size
				}
			} else {
				current[j] = 0
			}
		}
		prev, current = current, prev
	}
	return aStart, bStart, size
}

// WordOverlap returns the fraction of words from reference that also appear in
// candidate. Comparison is exact per word; callers normalize case first.
func WordOverlap(candidate, reference string) float64 {
	refWords := strings.Fields(reference)
	if len(refWords) == 0 {
		return 0
	}
	candidateSet := make(map[string]struct{})
	for _, word := range strings.Fields(candidate) {
		candidateSet[word] = struct{}{}
	}
	if len(candidateSet) == 0 {
		return 0
	}
	var overlap int
	seen := make(map[string]struct{}, len(refWords))
	var distinct int
	for _, word := range refWords {
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		distinct++
		if _, ok := candidateSet[word]; ok {
			overlap++
		}
	}
	if distinct == 0 {
		return 0
	}
	return float64(overlap) / float64(distinct)
}
