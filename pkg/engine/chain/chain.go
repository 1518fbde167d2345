// Package chain implements the solver engine's maximal-consecutive-chain
// analysis: violating windows for the max-worktime-in-a-row rule, and
// the minimum qualifying chain ending at each shift.
package chain

import "github.com/paiban/paiban-core/pkg/engine/timeutil"

// ViolatingWindows sweeps the sorted shift list and returns, for each
// starting position, the first zero-gap extension whose length is >= 2
// and whose cumulative duration exceeds maxChainMinutes. Windows are
// deduplicated by exact shift-index-tuple equality.
func ViolatingWindows(arrays timeutil.Arrays, maxChainMinutes int) [][]int {
	sorted := arrays.Sorted
	var windows [][]int

	for startPos, startIdx := range sorted {
		runningMinutes := arrays.Durations[startIdx]
		window := []int{startIdx}

		for nextPos := startPos + 1; nextPos < len(sorted); nextPos++ {
			prevIdx := sorted[nextPos-1]
			nextIdx := sorted[nextPos]
			gap := arrays.StartAbs[nextIdx] - arrays.EndAbs[prevIdx]
			if gap != 0 {
				break
			}
			window = append(window, nextIdx)
			runningMinutes += arrays.Durations[nextIdx]
			if len(window) >= 2 && runningMinutes > maxChainMinutes {
				windows = append(windows, append([]int(nil), window...))
				break
			}
		}
	}

	return dedupeWindows(windows)
}

func dedupeWindows(windows [][]int) [][]int {
	seen := make(map[string]bool, len(windows))
	unique := make([][]int, 0, len(windows))
	for _, w := range windows {
		key := windowKey(w)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, w)
	}
	return unique
}

func windowKey(w []int) string {
	// A simple separator-joined key is sufficient: shift indices are
	// small non-negative integers bounded by the request's shift count.
	b := make([]byte, 0, len(w)*4)
	for i, idx := range w {
		if i > 0 {
			b = append(b, ',')
		}
		b = appendInt(b, idx)
	}
	return string(b)
}

func appendInt(b []byte, v int) []byte {
	if v == 0 {
		return append(b, '0')
	}
	start := len(b)
	for v > 0 {
		b = append(b, byte('0'+v%10))
		v /= 10
	}
	for i, j := start, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b
}

// MinQualifyingChains returns, for every shift index L, the shortest
// zero-gap prefix (by sorted order) ending at L whose cumulative
// duration reaches maxChainMinutes. Shifts with no such chain are
// absent from the result.
func MinQualifyingChains(arrays timeutil.Arrays, maxChainMinutes int) map[int][]int {
	sorted := arrays.Sorted
	chains := make(map[int][]int)

	for endPos, endIdx := range sorted {
		runningMinutes := arrays.Durations[endIdx]
		chainRev := []int{endIdx}
		if runningMinutes >= maxChainMinutes {
			chains[endIdx] = []int{endIdx}
			continue
		}

		for prevPos := endPos - 1; prevPos >= 0; prevPos-- {
			prevIdx := sorted[prevPos]
			nextIdx := sorted[prevPos+1]
			gap := arrays.StartAbs[nextIdx] - arrays.EndAbs[prevIdx]
			if gap != 0 {
				break
			}
			chainRev = append(chainRev, prevIdx)
			runningMinutes += arrays.Durations[prevIdx]
			if runningMinutes >= maxChainMinutes {
				chain := make([]int, len(chainRev))
				for i, idx := range chainRev {
					chain[len(chainRev)-1-i] = idx
				}
				chains[endIdx] = chain
				break
			}
		}
	}

	return chains
}
