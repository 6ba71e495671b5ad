package mutate

import "strings"

// normalizeTokens collapses whitespace runs and splits the HTML into
// tokens. Two pages that differ only in whitespace normalize identically.
func normalizeTokens(html string) []string {
	return strings.Fields(html)
}

// similarityRatio computes a difflib-style sequence similarity between two
// token sequences: 2*M/T where M is the total length of matching blocks
// and T the combined length. 1.0 means identical, 0.0 means disjoint.
func similarityRatio(a, b []string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1
	}
	b2j := make(map[string][]int, len(b))
	for j, tok := range b {
		b2j[tok] = append(b2j[tok], j)
	}
	matched := matchingTokens(a, b, b2j, 0, len(a), 0, len(b))
	return 2 * float64(matched) / float64(total)
}

// matchingTokens recursively sums the longest matching blocks, mirroring
// difflib's get_matching_blocks without materialising the block list.
func matchingTokens(a, b []string, b2j map[string][]int, alo, ahi, blo, bhi int) int {
	besti, bestj, size := longestMatch(a, b2j, alo, ahi, blo, bhi)
	if size == 0 {
		return 0
	}
	sum := size
	sum += matchingTokens(a, b, b2j, alo, besti, blo, bestj)
	sum += matchingTokens(a, b, b2j, besti+size, ahi, bestj+size, bhi)
	return sum
}

func longestMatch(a []string, b2j map[string][]int, alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}
	return besti, bestj, bestsize
}
