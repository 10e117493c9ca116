package assessment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-interviewer/backend/internal/llm"
	"github.com/ai-interviewer/backend/internal/rubric"
)

func TestParseEvaluationPlainJSON(t *testing.T) {
	rub := twoDimRubric()

	content := `{
		"dimension_scores": {
			"Technical Knowledge": {"score": 4, "reasoning": "good depth", "evidence": ["mentioned sharding"]},
			"Communication": {"score": 3, "reasoning": "clear enough"}
		},
		"overall_feedback": "decent answer"
	}`

	eval, err := parseEvaluation(content, rub)
	require.NoError(t, err)

	assert.Equal(t, "decent answer", eval.OverallFeedback)
	assert.Equal(t, 4, eval.DimensionScores["Technical Knowledge"].Score)
	assert.Equal(t, []string{"mentioned sharding"}, eval.DimensionScores["Technical Knowledge"].Evidence)
	assert.Equal(t, 3, eval.DimensionScores["Communication"].Score)
}

func TestParseEvaluationStripsCodeFence(t *testing.T) {
	rub := twoDimRubric()

	fenced := "```json\n{\"dimension_scores\": {\"Technical Knowledge\": {\"score\": 5}, \"Communication\": {\"score\": 5}}, \"overall_feedback\": \"great\"}\n```"

	eval, err := parseEvaluation(fenced, rub)
	require.NoError(t, err)
	assert.Equal(t, 5, eval.DimensionScores["Technical Knowledge"].Score)

	bare := "```\n{\"dimension_scores\": {\"Technical Knowledge\": {\"score\": 2}, \"Communication\": {\"score\": 2}}}\n```"
	eval, err = parseEvaluation(bare, rub)
	require.NoError(t, err)
	assert.Equal(t, 2, eval.DimensionScores["Communication"].Score)
}

func TestParseEvaluationFillsMissingDimensions(t *testing.T) {
	rub := twoDimRubric()

	content := `{"dimension_scores": {"Technical Knowledge": {"score": 4, "reasoning": "ok"}}, "overall_feedback": "partial"}`

	eval, err := parseEvaluation(content, rub)
	require.NoError(t, err)

	filled := eval.DimensionScores["Communication"]
	assert.Equal(t, neutralScore, filled.Score)
	assert.Equal(t, "No specific assessment for this dimension", filled.Reasoning)
}

func TestParseEvaluationClampsScores(t *testing.T) {
	rub := twoDimRubric()

	content := `{"dimension_scores": {"Technical Knowledge": {"score": 9}, "Communication": {"score": -2}}}`

	eval, err := parseEvaluation(content, rub)
	require.NoError(t, err)
	assert.Equal(t, 5, eval.DimensionScores["Technical Knowledge"].Score)
	assert.Equal(t, 1, eval.DimensionScores["Communication"].Score)
}

func TestParseEvaluationMalformed(t *testing.T) {
	_, err := parseEvaluation("the candidate was great, 5/5", twoDimRubric())
	assert.Error(t, err)
}

func TestJudgeAnswerGatewayFailureFallsBackToNeutral(t *testing.T) {
	gateway := &fakeGateway{
		completeFn: func(_ llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return nil, errors.New("timeout")
		},
	}
	svc := NewService(newFakeScoreStore(), gateway, rubric.NewStore(twoDimRubric()), nil)

	eval := svc.judgeAnswer(context.Background(), "q", "a", twoDimRubric(), nil)

	assert.Equal(t, "Automatic evaluation unavailable", eval.OverallFeedback)
	for _, j := range eval.DimensionScores {
		assert.Equal(t, neutralScore, j.Score)
		assert.Equal(t, "Unable to evaluate automatically", j.Reasoning)
	}
}

func TestJudgeAnswerUnparseableFallsBackToNeutral(t *testing.T) {
	gateway := &fakeGateway{
		completeFn: func(_ llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return &llm.CompletionResponse{Content: "not json at all"}, nil
		},
	}
	svc := NewService(newFakeScoreStore(), gateway, rubric.NewStore(twoDimRubric()), nil)

	eval := svc.judgeAnswer(context.Background(), "q", "a", twoDimRubric(), nil)

	require.Len(t, eval.DimensionScores, 2)
	for _, j := range eval.DimensionScores {
		assert.Equal(t, neutralScore, j.Score)
	}
}

func TestJudgeAnswerUsesGradingTemperature(t *testing.T) {
	var got llm.CompletionRequest
	gateway := &fakeGateway{
		completeFn: func(req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			got = req
			return &llm.CompletionResponse{Content: `{"dimension_scores": {}}`}, nil
		},
	}
	svc := NewService(newFakeScoreStore(), gateway, rubric.NewStore(twoDimRubric()), nil)

	svc.judgeAnswer(context.Background(), "q", "a", twoDimRubric(), nil)

	assert.InDelta(t, 0.3, float64(got.Temperature), 0.001)
	assert.Equal(t, 1024, got.MaxTokens)
}
