package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateRunningScoreFirstJudgment(t *testing.T) {
	// With nothing folded in yet the judged score comes back exactly,
	// regardless of the zero-valued running score.
	assert.Equal(t, 4.0, UpdateRunningScore(0.0, 4.0, 0))
	assert.Equal(t, 1.0, UpdateRunningScore(0.0, 1.0, 0))
	assert.Equal(t, 5.0, UpdateRunningScore(3.0, 5.0, 0))
}

func TestUpdateRunningScoreConsistentAnswers(t *testing.T) {
	// A candidate who scores 5 on every answer must end at exactly 5.0.
	score := 0.0
	for n := 0; n < 10; n++ {
		score = UpdateRunningScore(score, 5.0, n)
	}
	assert.Equal(t, 5.0, score)
}

func TestUpdateRunningScoreLaterAnswersWeighMore(t *testing.T) {
	// Same current score, same judged score, but the later fold moves the
	// average further because its weight grows with the judgment count.
	early := UpdateRunningScore(3.0, 5.0, 1)
	late := UpdateRunningScore(3.0, 5.0, 9)
	assert.Greater(t, late, early)
}

func TestUpdateRunningScoreSecondJudgment(t *testing.T) {
	// n=1: weight 1.05, (4*1 + 2*1.05) / 2.05 = 2.98 (rounded).
	assert.Equal(t, 2.98, UpdateRunningScore(4.0, 2.0, 1))
}

func TestUpdateRunningScoreBounds(t *testing.T) {
	for n := 0; n < 10; n++ {
		for judged := 1.0; judged <= 5.0; judged++ {
			got := UpdateRunningScore(3.0, judged, n)
			assert.GreaterOrEqual(t, got, 1.0)
			assert.LessOrEqual(t, got, 5.0)
		}
	}
}

func TestUpdateRunningScoreNegativePriorTreatedAsZero(t *testing.T) {
	assert.Equal(t, 4.0, UpdateRunningScore(2.0, 4.0, -3))
}
