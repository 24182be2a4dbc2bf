package orchestrator

// inflationThreshold is how many multiples of the other strategies'
// average line length mark a candidate as a probable OCR hallucination
// rather than genuinely denser text.
const inflationThreshold = 5.0

// filterHallucinatedOutcomes drops attempts whose average line
// character count is wildly inflated relative to the other attempts in
// the same fallback chain, before quality is compared across them. A
// single attempt, or a set with no baseline to compare against, passes
// through unfiltered.
func filterHallucinatedOutcomes(outcomes []*attemptOutcome) []*attemptOutcome {
	if len(outcomes) <= 1 {
		return outcomes
	}

	avgs := make([]float64, len(outcomes))
	for i, o := range outcomes {
		avgs[i] = avgLineCharCount(o.sections)
	}

	kept := make([]*attemptOutcome, 0, len(outcomes))
	for i, o := range outcomes {
		var baselineTotal float64
		var baselineCount int
		for j, avg := range avgs {
			if j == i {
				continue
			}
			baselineTotal += avg
			baselineCount++
		}
		if baselineCount == 0 {
			kept = append(kept, o)
			continue
		}
		baselineAvg := baselineTotal / float64(baselineCount)

		if baselineAvg < 100 && avgs[i] > 1000 {
			continue
		}
		if baselineAvg > 0 && avgs[i] > baselineAvg*inflationThreshold {
			continue
		}
		kept = append(kept, o)
	}

	if len(kept) == 0 {
		return outcomes
	}
	return kept
}
