package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-interviewer/backend/internal/llm"
	"github.com/ai-interviewer/backend/internal/rubric"
	"github.com/ai-interviewer/backend/internal/storage/models"
)

// fakeScoreStore keeps dimension scores and reports in memory, preserving
// upsert order.
type fakeScoreStore struct {
	order     []string
	scores    map[string]*models.DimensionScore
	reports   map[int64]*models.Report
	listErr   error
	upsertErr error
}

func newFakeScoreStore() *fakeScoreStore {
	return &fakeScoreStore{
		scores:  make(map[string]*models.DimensionScore),
		reports: make(map[int64]*models.Report),
	}
}

func (f *fakeScoreStore) ListDimensionScores(_ context.Context, _ int64) ([]models.DimensionScore, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.DimensionScore, 0, len(f.order))
	for _, name := range f.order {
		out = append(out, *f.scores[name])
	}
	return out, nil
}

func (f *fakeScoreStore) UpsertDimensionScore(_ context.Context, ds *models.DimensionScore) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	cp := *ds
	if _, ok := f.scores[ds.DimensionName]; !ok {
		f.order = append(f.order, ds.DimensionName)
	}
	f.scores[ds.DimensionName] = &cp
	return nil
}

func (f *fakeScoreStore) UpsertReport(_ context.Context, report *models.Report) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	cp := *report
	f.reports[report.InterviewID] = &cp
	return nil
}

// fakeGateway scripts gateway behavior per call.
type fakeGateway struct {
	completeFn func(req llm.CompletionRequest) (*llm.CompletionResponse, error)
	streamFn   func(req llm.CompletionRequest, onFragment func(string) error) (string, error)
}

func (f *fakeGateway) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if f.completeFn == nil {
		return &llm.CompletionResponse{Content: "ok"}, nil
	}
	return f.completeFn(req)
}

func (f *fakeGateway) Stream(_ context.Context, req llm.CompletionRequest, onFragment func(string) error) (string, error) {
	if f.streamFn != nil {
		return f.streamFn(req, onFragment)
	}
	resp, err := f.Complete(context.Background(), req)
	if err != nil {
		return "", err
	}
	if onFragment != nil {
		onFragment(resp.Content)
	}
	return resp.Content, nil
}

func twoDimRubric() *rubric.Rubric {
	return &rubric.Rubric{
		TemplateName: "backend-engineer",
		Dimensions: []rubric.Dimension{
			{Name: "Technical Knowledge", Weight: 0.5, Keywords: []string{"database", "message queue"}},
			{Name: "Communication", Weight: 0.5},
		},
	}
}

func gradingResponse(t *testing.T, scores map[string]Judgment) string {
	t.Helper()
	data, err := json.Marshal(Evaluation{DimensionScores: scores, OverallFeedback: "fine"})
	require.NoError(t, err)
	return string(data)
}

func TestEvaluateAnswerFirstJudgmentIsExact(t *testing.T) {
	store := newFakeScoreStore()
	gateway := &fakeGateway{
		completeFn: func(_ llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return &llm.CompletionResponse{Content: gradingResponse(t, map[string]Judgment{
				"Technical Knowledge": {Score: 4, Reasoning: "solid", Evidence: []string{"used indexes"}},
				"Communication":       {Score: 2, Reasoning: "terse"},
			})}, nil
		},
	}
	svc := NewService(store, gateway, rubric.NewStore(twoDimRubric()), nil)

	eval, err := svc.EvaluateAnswer(context.Background(), 1, "backend-engineer",
		"How do you index a hot table?", "I would add a covering index on the database.", 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "fine", eval.OverallFeedback)

	scores, err := store.ListDimensionScores(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, scores, 2)

	byName := map[string]models.DimensionScore{}
	for _, ds := range scores {
		byName[ds.DimensionName] = ds
	}

	assert.Equal(t, 4.0, byName["Technical Knowledge"].Score)
	assert.Equal(t, "solid", byName["Technical Knowledge"].Reasoning)
	assert.Equal(t, []string{"used indexes"}, byName["Technical Knowledge"].Evidence)
	assert.Contains(t, byName["Technical Knowledge"].KeywordHits, "database")
	assert.Equal(t, 2.0, byName["Communication"].Score)
}

func TestEvaluateAnswerFoldsIntoRunningScore(t *testing.T) {
	store := newFakeScoreStore()
	judged := 5
	gateway := &fakeGateway{
		completeFn: func(_ llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return &llm.CompletionResponse{Content: gradingResponse(t, map[string]Judgment{
				"Technical Knowledge": {Score: judged, Reasoning: "r"},
				"Communication":       {Score: judged, Reasoning: "r"},
			})}, nil
		},
	}
	svc := NewService(store, gateway, rubric.NewStore(twoDimRubric()), nil)

	for q := 1; q <= 10; q++ {
		_, err := svc.EvaluateAnswer(context.Background(), 1, "backend-engineer", "q", "a", q, nil)
		require.NoError(t, err)
	}

	scores, _ := store.ListDimensionScores(context.Background(), 1)
	for _, ds := range scores {
		assert.Equal(t, 5.0, ds.Score, ds.DimensionName)
	}
}

func TestEvaluateAnswerCapsEvidence(t *testing.T) {
	store := newFakeScoreStore()
	call := 0
	gateway := &fakeGateway{
		completeFn: func(_ llm.CompletionRequest) (*llm.CompletionResponse, error) {
			call++
			return &llm.CompletionResponse{Content: gradingResponse(t, map[string]Judgment{
				"Technical Knowledge": {Score: 3, Evidence: []string{
					fmt.Sprintf("quote-%d-a", call),
					fmt.Sprintf("quote-%d-b", call),
					fmt.Sprintf("quote-%d-c", call),
				}},
				"Communication": {Score: 3},
			})}, nil
		},
	}
	svc := NewService(store, gateway, rubric.NewStore(twoDimRubric()), nil)

	for q := 1; q <= 10; q++ {
		answer := fmt.Sprintf("answer %d", q)
		_, err := svc.EvaluateAnswer(context.Background(), 1, "backend-engineer", "q", answer, q, nil)
		require.NoError(t, err)
	}

	ds := store.scores["Technical Knowledge"]
	require.NotNil(t, ds)
	assert.Len(t, ds.Evidence, models.MaxEvidencePerDimension)
	// The cap keeps the most recent entries.
	assert.Equal(t, "quote-10-c", ds.Evidence[len(ds.Evidence)-1])
}

func TestEvaluateAnswerUnknownTemplate(t *testing.T) {
	svc := NewService(newFakeScoreStore(), &fakeGateway{}, rubric.NewStore(twoDimRubric()), nil)

	_, err := svc.EvaluateAnswer(context.Background(), 1, "nope", "q", "a", 1, nil)
	assert.ErrorIs(t, err, rubric.ErrTemplateNotFound)
}

func TestEvaluateAnswerPersistenceErrorPropagates(t *testing.T) {
	store := newFakeScoreStore()
	store.upsertErr = errors.New("disk full")
	gateway := &fakeGateway{
		completeFn: func(_ llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return &llm.CompletionResponse{Content: gradingResponse(t, map[string]Judgment{
				"Technical Knowledge": {Score: 3},
				"Communication":       {Score: 3},
			})}, nil
		},
	}
	svc := NewService(store, gateway, rubric.NewStore(twoDimRubric()), nil)

	_, err := svc.EvaluateAnswer(context.Background(), 1, "backend-engineer", "q", "a", 1, nil)
	assert.ErrorContains(t, err, "disk full")
}

// fakeEvalCache is an in-memory EvaluationCache.
type fakeEvalCache struct {
	entries map[string][]byte
}

func (f *fakeEvalCache) GetEvaluation(_ context.Context, key string, out any) (bool, error) {
	data, ok := f.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, out)
}

func (f *fakeEvalCache) SetEvaluation(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = data
	return nil
}

func TestEvaluateAnswerMemoizesJudgments(t *testing.T) {
	store := newFakeScoreStore()
	calls := 0
	gateway := &fakeGateway{
		completeFn: func(_ llm.CompletionRequest) (*llm.CompletionResponse, error) {
			calls++
			return &llm.CompletionResponse{Content: gradingResponse(t, map[string]Judgment{
				"Technical Knowledge": {Score: 4},
				"Communication":       {Score: 4},
			})}, nil
		},
	}
	cache := &fakeEvalCache{entries: make(map[string][]byte)}
	svc := NewService(store, gateway, rubric.NewStore(twoDimRubric()), cache)

	_, err := svc.EvaluateAnswer(context.Background(), 1, "backend-engineer", "q", "same answer", 1, nil)
	require.NoError(t, err)
	_, err = svc.EvaluateAnswer(context.Background(), 2, "backend-engineer", "q", "same answer", 1, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}
