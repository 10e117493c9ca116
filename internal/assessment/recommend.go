package assessment

import (
	"github.com/ai-interviewer/backend/internal/rubric"
	"github.com/ai-interviewer/backend/internal/storage/models"
)

// OverallScore is the rubric-weight-averaged score across all recorded
// dimensions, rounded to 2 decimals. Dimensions missing from the rubric
// count with weight 1.0; no dimensions means 0.0.
func OverallScore(scores []models.DimensionScore, rub *rubric.Rubric) float64 {
	if len(scores) == 0 {
		return 0.0
	}

	var weightedSum, totalWeight float64
	for _, ds := range scores {
		weight := 1.0
		if dim, ok := rub.DimensionByName(ds.DimensionName); ok {
			weight = dim.Weight
		}
		weightedSum += ds.Score * weight
		totalWeight += weight
	}

	if totalWeight == 0 {
		return 0.0
	}
	return round2(weightedSum / totalWeight)
}

// Recommend maps the final scores to a hiring outcome. The thresholds are
// evaluated in priority order; NO_HIRE is the default for everything in
// between.
func Recommend(overall float64, scores []models.DimensionScore) models.Recommendation {
	dimsAt4Plus := 0
	dimsAt3Plus := 0
	for _, ds := range scores {
		if ds.Score >= 4.0 {
			dimsAt4Plus++
		}
		if ds.Score >= 3.0 {
			dimsAt3Plus++
		}
	}

	switch {
	case overall >= 4.3 && dimsAt4Plus >= 4:
		return models.StrongHire
	case overall >= 3.5 && dimsAt3Plus >= 4:
		return models.Hire
	case overall < 2.0:
		return models.StrongNoHire
	default:
		return models.NoHire
	}
}

// ScoreLevel labels a score for report display. Intervals are half-open with
// the lower bound inclusive.
func ScoreLevel(score float64) string {
	switch {
	case score < 1.5:
		return "Poor"
	case score < 2.5:
		return "Fair"
	case score < 3.5:
		return "Good"
	case score < 4.5:
		return "Very Good"
	default:
		return "Excellent"
	}
}

// ConfidenceLevel is a coarse reliability label derived from conversation
// length and dimension coverage.
func ConfidenceLevel(interviewerTurns, scoredDimensions int) string {
	switch {
	case interviewerTurns >= 8 && scoredDimensions >= 5:
		return "High"
	case interviewerTurns >= 5 && scoredDimensions >= 4:
		return "Medium"
	default:
		return "Low"
	}
}
