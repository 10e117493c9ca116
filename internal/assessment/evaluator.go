package assessment

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/ai-interviewer/backend/internal/llm"
	"github.com/ai-interviewer/backend/internal/metrics"
	"github.com/ai-interviewer/backend/internal/rubric"
	"github.com/ai-interviewer/backend/pkg/logger"
)

// Fallback texts baked into the grading contract. A judged interview never
// loses a dimension: missing or unparseable model output degrades to a
// neutral score instead.
const (
	neutralScore           = 3
	missingDimensionReason = "No specific assessment for this dimension"
	unavailableReason      = "Unable to evaluate automatically"
	unavailableFeedback    = "Automatic evaluation unavailable"
)

const gradingTemperature = 0.3

// Judgment is the model's verdict on one dimension for one answer.
type Judgment struct {
	Score     int      `json:"score"`
	Reasoning string   `json:"reasoning"`
	Evidence  []string `json:"evidence"`
}

// Evaluation holds one grading pass over a single answer, covering every
// rubric dimension.
type Evaluation struct {
	DimensionScores map[string]Judgment `json:"dimension_scores"`
	OverallFeedback string              `json:"overall_feedback"`
}

// judgeAnswer asks the gateway to grade one answer and defensively parses
// the result. It never fails: any gateway or parse problem yields the
// neutral evaluation.
func (s *Service) judgeAnswer(ctx context.Context, question, answer string, rub *rubric.Rubric, expectedTopics []string) *Evaluation {
	messages := s.prompts.Grading(question, answer, rub, expectedTopics)

	resp, err := s.gateway.Complete(ctx, llm.CompletionRequest{
		Messages:    messages,
		Temperature: gradingTemperature,
		MaxTokens:   1024,
	})
	if err != nil {
		logger.Error("Grading call failed", zap.Error(err))
		metrics.EvaluationFallbacks.WithLabelValues("gateway").Inc()
		return neutralEvaluation(rub)
	}

	evaluation, err := parseEvaluation(resp.Content, rub)
	if err != nil {
		logger.Error("Failed to parse grading response", zap.Error(err))
		metrics.EvaluationFallbacks.WithLabelValues("parse").Inc()
		return neutralEvaluation(rub)
	}

	return evaluation
}

// parseEvaluation decodes the strict JSON grading contract, tolerating
// markdown code fences and filling in any dimension the model skipped.
func parseEvaluation(content string, rub *rubric.Rubric) (*Evaluation, error) {
	var evaluation Evaluation
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &evaluation); err != nil {
		return nil, err
	}

	if evaluation.DimensionScores == nil {
		evaluation.DimensionScores = make(map[string]Judgment, len(rub.Dimensions))
	}

	for _, dim := range rub.Dimensions {
		j, ok := evaluation.DimensionScores[dim.Name]
		if !ok {
			evaluation.DimensionScores[dim.Name] = Judgment{
				Score:     neutralScore,
				Reasoning: missingDimensionReason,
			}
			continue
		}
		evaluation.DimensionScores[dim.Name] = clampJudgment(j)
	}

	return &evaluation, nil
}

func clampJudgment(j Judgment) Judgment {
	if j.Score < 1 {
		j.Score = 1
	}
	if j.Score > 5 {
		j.Score = 5
	}
	return j
}

func neutralEvaluation(rub *rubric.Rubric) *Evaluation {
	scores := make(map[string]Judgment, len(rub.Dimensions))
	for _, dim := range rub.Dimensions {
		scores[dim.Name] = Judgment{
			Score:     neutralScore,
			Reasoning: unavailableReason,
		}
	}
	return &Evaluation{
		DimensionScores: scores,
		OverallFeedback: unavailableFeedback,
	}
}

// stripCodeFence removes a surrounding markdown code block, with or without
// a json language tag, from model output.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	parts := strings.SplitN(content, "```", 3)
	if len(parts) < 2 {
		return content
	}

	inner := parts[1]
	inner = strings.TrimPrefix(inner, "json")
	return strings.TrimSpace(inner)
}
