// Package assessment grades candidate answers against a weighted rubric in
// real time and compiles the final hiring report. Grading rides on a
// non-deterministic language model, so everything here is defensive: a
// failed or malformed judgment degrades to a neutral outcome and never
// aborts the interview.
package assessment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ai-interviewer/backend/internal/llm"
	"github.com/ai-interviewer/backend/internal/metrics"
	"github.com/ai-interviewer/backend/internal/prompt"
	"github.com/ai-interviewer/backend/internal/rubric"
	"github.com/ai-interviewer/backend/internal/storage/models"
	"github.com/ai-interviewer/backend/pkg/logger"
	"github.com/ai-interviewer/backend/pkg/utils"
)

// Reasoning placeholder used between interview start and the first judgment.
const initialReasoning = "Assessment in progress"

// Store is the persistence collaborator for scores and reports. Upserts are
// keyed by (interview, dimension) and by interview respectively.
type Store interface {
	ListDimensionScores(ctx context.Context, interviewID int64) ([]models.DimensionScore, error)
	UpsertDimensionScore(ctx context.Context, score *models.DimensionScore) error
	UpsertReport(ctx context.Context, report *models.Report) error
}

// EvaluationCache memoizes grading results by answer hash so a replayed turn
// does not burn a second gateway call. A nil cache disables memoization.
type EvaluationCache interface {
	GetEvaluation(ctx context.Context, key string, out any) (bool, error)
	SetEvaluation(ctx context.Context, key string, value any) error
}

type Service struct {
	store   Store
	gateway llm.Gateway
	rubrics *rubric.Store
	prompts *prompt.Builder
	cache   EvaluationCache
}

func NewService(store Store, gateway llm.Gateway, rubrics *rubric.Store, cache EvaluationCache) *Service {
	return &Service{
		store:   store,
		gateway: gateway,
		rubrics: rubrics,
		prompts: prompt.NewBuilder(),
		cache:   cache,
	}
}

// InitializeDimensions eagerly creates every rubric dimension for a freshly
// started interview at score 0.0, so progress views always show the full
// rubric.
func (s *Service) InitializeDimensions(ctx context.Context, interviewID int64, rub *rubric.Rubric) error {
	existing, err := s.store.ListDimensionScores(ctx, interviewID)
	if err != nil {
		return fmt.Errorf("failed to list dimension scores: %w", err)
	}

	present := make(map[string]struct{}, len(existing))
	for _, ds := range existing {
		present[ds.DimensionName] = struct{}{}
	}

	now := time.Now().UTC()
	for _, dim := range rub.Dimensions {
		if _, ok := present[dim.Name]; ok {
			continue
		}
		err := s.store.UpsertDimensionScore(ctx, &models.DimensionScore{
			InterviewID:   interviewID,
			DimensionName: dim.Name,
			Score:         0.0,
			MaxScore:      models.MaxDimensionScore,
			Reasoning:     initialReasoning,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize dimension %s: %w", dim.Name, err)
		}
	}

	logger.Info("Dimensions initialized",
		zap.Int64("interview_id", interviewID),
		zap.Int("dimensions", len(rub.Dimensions)),
	)
	return nil
}

// EvaluateAnswer grades one (question, answer) pair across every rubric
// dimension and folds the judgments into the running scores. Gateway and
// parse failures degrade to neutral judgments; only persistence failures are
// returned.
func (s *Service) EvaluateAnswer(ctx context.Context, interviewID int64, templateName, question, answer string, questionNumber int, expectedTopics []string) (*Evaluation, error) {
	rub, err := s.rubrics.Get(templateName)
	if err != nil {
		return nil, err
	}

	evaluation := s.cachedJudgeAnswer(ctx, templateName, question, answer, rub, expectedTopics)

	existing, err := s.store.ListDimensionScores(ctx, interviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dimension scores: %w", err)
	}
	byName := make(map[string]*models.DimensionScore, len(existing))
	for i := range existing {
		byName[existing[i].DimensionName] = &existing[i]
	}

	now := time.Now().UTC()

	for _, dim := range rub.Dimensions {
		judgment := evaluation.DimensionScores[dim.Name]
		hits := KeywordHits(answer, dim.Keywords)

		ds, ok := byName[dim.Name]
		if !ok {
			// Dimension created lazily on first evaluation.
			ds = &models.DimensionScore{
				InterviewID:   interviewID,
				DimensionName: dim.Name,
				MaxScore:      models.MaxDimensionScore,
				CreatedAt:     now,
			}
		}

		ds.Score = UpdateRunningScore(ds.Score, float64(judgment.Score), questionNumber-1)
		ds.Reasoning = judgment.Reasoning
		ds.Evidence = appendEvidence(ds.Evidence, judgment.Evidence)
		ds.KeywordHits = mergeKeywordHits(ds.KeywordHits, hits)
		ds.UpdatedAt = now

		if err := s.store.UpsertDimensionScore(ctx, ds); err != nil {
			return nil, fmt.Errorf("failed to upsert dimension score %s: %w", dim.Name, err)
		}

		metrics.DimensionScoreUpdates.Inc()
	}

	logger.Info("Answer evaluated",
		zap.Int64("interview_id", interviewID),
		zap.Int("question_number", questionNumber),
		zap.Int("dimensions", len(rub.Dimensions)),
	)

	return evaluation, nil
}

func (s *Service) cachedJudgeAnswer(ctx context.Context, templateName, question, answer string, rub *rubric.Rubric, expectedTopics []string) *Evaluation {
	if s.cache == nil {
		return s.judgeAnswer(ctx, question, answer, rub, expectedTopics)
	}

	key := utils.HashString(templateName + "\x00" + question + "\x00" + answer)

	var cached Evaluation
	hit, err := s.cache.GetEvaluation(ctx, key, &cached)
	if err != nil {
		logger.Warn("Evaluation cache read failed", zap.Error(err))
	} else if hit && cached.DimensionScores != nil {
		metrics.EvaluationCacheHits.Inc()
		return &cached
	}

	evaluation := s.judgeAnswer(ctx, question, answer, rub, expectedTopics)
	if err := s.cache.SetEvaluation(ctx, key, evaluation); err != nil {
		logger.Warn("Evaluation cache write failed", zap.Error(err))
	}
	return evaluation
}

// appendEvidence appends new quotes and keeps only the most recent entries.
func appendEvidence(existing, quotes []string) []string {
	merged := append(existing, quotes...)
	if len(merged) > models.MaxEvidencePerDimension {
		merged = merged[len(merged)-models.MaxEvidencePerDimension:]
	}
	return merged
}

// CurrentScores returns the running per-dimension scores for an interview.
func (s *Service) CurrentScores(ctx context.Context, interviewID int64) ([]models.DimensionScore, error) {
	return s.store.ListDimensionScores(ctx, interviewID)
}
