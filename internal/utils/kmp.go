package utils

// KMP is a Knuth-Morris-Pratt matcher for one fixed pattern. It is
// used to find literal @mention tags inside message bodies without
// re-deriving the failure table per search.
type KMP struct {
	pattern string
	lps     []int
}

// NewKMP precomputes the longest-proper-prefix-suffix table for pattern.
func NewKMP(pattern string) *KMP {
	return &KMP{pattern: pattern, lps: computeLPS(pattern)}
}

// Search returns the byte offsets of every occurrence of the pattern
// in text, in ascending order.
func (k *KMP) Search(text string) []int {
	var result []int
	if len(k.pattern) == 0 {
		return result
	}

	i, j := 0, 0
	for i < len(text) {
		if k.pattern[j] == text[i] {
			i++
			j++
		}
		if j == len(k.pattern) {
			result = append(result, i-j)
			j = k.lps[j-1]
		} else if i < len(text) && k.pattern[j] != text[i] {
			if j != 0 {
				j = k.lps[j-1]
			} else {
				i++
			}
		}
	}
	return result
}

func computeLPS(pattern string) []int {
	lps := make([]int, len(pattern))
	length := 0
	i := 1
	for i < len(pattern) {
		if pattern[i] == pattern[length] {
			length++
			lps[i] = length
			i++
		} else if length != 0 {
			length = lps[length-1]
		} else {
			lps[i] = 0
			i++
		}
	}
	return lps
}
