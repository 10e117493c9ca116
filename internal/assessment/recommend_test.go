package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ai-interviewer/backend/internal/rubric"
	"github.com/ai-interviewer/backend/internal/storage/models"
)

func scoresAt(values ...float64) []models.DimensionScore {
	names := []string{"Technical Knowledge", "Problem Solving", "Communication", "Experience Depth", "Culture and Motivation"}
	scores := make([]models.DimensionScore, len(values))
	for i, v := range values {
		scores[i] = models.DimensionScore{
			DimensionName: names[i%len(names)],
			Score:         v,
			MaxScore:      models.MaxDimensionScore,
		}
	}
	return scores
}

func TestRecommend(t *testing.T) {
	tests := []struct {
		name    string
		overall float64
		scores  []models.DimensionScore
		want    models.Recommendation
	}{
		{"strong hire", 4.5, scoresAt(4.5, 4.6, 4.4, 4.5, 4.3), models.StrongHire},
		{"strong hire at exact thresholds", 4.3, scoresAt(4.0, 4.0, 4.0, 4.0, 3.8), models.StrongHire},
		{"high overall but too few strong dims", 4.4, scoresAt(5.0, 5.0, 5.0, 3.9, 3.9), models.Hire},
		{"hire", 3.6, scoresAt(3.5, 3.8, 3.4, 3.7, 3.6), models.Hire},
		{"hire at exact thresholds", 3.5, scoresAt(3.0, 3.0, 3.0, 3.0, 2.5), models.Hire},
		{"no hire in the middle band", 2.8, scoresAt(2.8, 2.9, 2.7, 2.8, 2.8), models.NoHire},
		{"borderline overall but weak coverage", 3.6, scoresAt(5.0, 5.0, 2.5, 2.5, 2.5), models.NoHire},
		{"strong no hire", 1.5, scoresAt(1.5, 1.4, 1.6, 1.5, 1.5), models.StrongNoHire},
		{"strong no hire just under two", 1.99, scoresAt(2.0, 2.0, 2.0, 2.0, 1.9), models.StrongNoHire},
		{"empty interview", 0.0, nil, models.StrongNoHire},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Recommend(tt.overall, tt.scores))
		})
	}
}

func TestOverallScoreWeighted(t *testing.T) {
	rub := &rubric.Rubric{
		TemplateName: "weighted",
		Dimensions: []rubric.Dimension{
			{Name: "A", Weight: 0.75},
			{Name: "B", Weight: 0.25},
		},
	}

	scores := []models.DimensionScore{
		{DimensionName: "A", Score: 4.0},
		{DimensionName: "B", Score: 2.0},
	}

	// (4*0.75 + 2*0.25) / 1.0 = 3.5
	assert.Equal(t, 3.5, OverallScore(scores, rub))
}

func TestOverallScoreUnknownDimensionDefaultsToUnitWeight(t *testing.T) {
	rub := &rubric.Rubric{TemplateName: "empty"}

	scores := []models.DimensionScore{
		{DimensionName: "X", Score: 4.0},
		{DimensionName: "Y", Score: 2.0},
	}

	assert.Equal(t, 3.0, OverallScore(scores, rub))
}

func TestOverallScoreEmpty(t *testing.T) {
	rub := &rubric.Rubric{TemplateName: "empty"}
	assert.Equal(t, 0.0, OverallScore(nil, rub))
}

func TestScoreLevel(t *testing.T) {
	assert.Equal(t, "Poor", ScoreLevel(1.0))
	assert.Equal(t, "Poor", ScoreLevel(1.49))
	assert.Equal(t, "Fair", ScoreLevel(1.5))
	assert.Equal(t, "Fair", ScoreLevel(2.49))
	assert.Equal(t, "Good", ScoreLevel(2.5))
	assert.Equal(t, "Good", ScoreLevel(3.49))
	assert.Equal(t, "Very Good", ScoreLevel(3.5))
	assert.Equal(t, "Very Good", ScoreLevel(4.49))
	assert.Equal(t, "Excellent", ScoreLevel(4.5))
	assert.Equal(t, "Excellent", ScoreLevel(5.0))
}

func TestConfidenceLevel(t *testing.T) {
	assert.Equal(t, "High", ConfidenceLevel(8, 5))
	assert.Equal(t, "High", ConfidenceLevel(10, 6))
	assert.Equal(t, "Medium", ConfidenceLevel(7, 5))
	assert.Equal(t, "Medium", ConfidenceLevel(5, 4))
	assert.Equal(t, "Low", ConfidenceLevel(4, 5))
	assert.Equal(t, "Low", ConfidenceLevel(8, 3))
	assert.Equal(t, "Low", ConfidenceLevel(0, 0))
}
