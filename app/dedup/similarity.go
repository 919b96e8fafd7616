package dedup

import (
	"strings"
)

const DefaultTitleThreshold = 0.85

// IsTitleDuplicate reports whether title is more than threshold similar to
// any of existing. Comparison is case-insensitive; nothing else is
// normalised.
func IsTitleDuplicate(title string, existing []string, threshold float64) bool {
	lowered := strings.ToLower(title)
	for _, other := range existing {
		if Ratio(lowered, strings.ToLower(other)) > threshold {
			return true
		}
	}
	return false
}

// Ratio returns 2*M/T where M is the total size of the matching blocks found
// by recursive longest-common-substring search and T is the combined rune
// length of a and b. Two empty strings have ratio 1.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(matchingSize(ra, rb)) / float64(total)
}

type span struct {
	alo, ahi, blo, bhi int
}

func matchingSize(a, b []rune) int {
	b2j := make(map[rune][]int)
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	matched := 0
	queue := []span{{0, len(a), 0, len(b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := longestMatch(a, b2j, s)
		if k == 0 {
			continue
		}
		matched += k

		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			queue = append(queue, span{i + k, s.ahi, j + k, s.bhi})
		}
	}

	return matched
}

// longestMatch finds the longest block a[i:i+k] == b[j:j+k] inside s. Ties
// go to the earliest i, then the earliest j.
func longestMatch(a []rune, b2j map[rune][]int, s span) (int, int, int) {
	besti, bestj, bestk := s.alo, s.blo, 0

	j2len := make(map[int]int)
	for i := s.alo; i < s.ahi; i++ {
		next := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < s.blo {
				continue
			}
			if j >= s.bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestk {
				besti, bestj, bestk = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}

	return besti, bestj, bestk
}
