package assessment

import "math"

// UpdateRunningScore folds a newly judged score into the running score for a
// dimension. priorJudgments is how many judgments the running score already
// reflects; later answers carry slightly more weight since they reflect more
// context and rapport. With no prior judgments the new score is returned
// exactly.
func UpdateRunningScore(current, judged float64, priorJudgments int) float64 {
	if priorJudgments < 0 {
		priorJudgments = 0
	}

	n := float64(priorJudgments)
	weight := 1.0 + 0.05*n

	// n == 0 reduces to judged*weight/weight == judged.
	updated := (current*n + judged*weight) / (n + weight)
	return round2(updated)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
