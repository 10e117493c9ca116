package assessment

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ai-interviewer/backend/internal/llm"
	"github.com/ai-interviewer/backend/internal/metrics"
	"github.com/ai-interviewer/backend/internal/rubric"
	"github.com/ai-interviewer/backend/internal/storage/models"
	"github.com/ai-interviewer/backend/pkg/logger"
)

const (
	followUpTemperature = 0.7
	summaryTemperature  = 0.5

	maxStrengths         = 3
	maxFollowUps         = 3
	maxNotableQuotes     = 5
	maxEvidencePerEntry  = 3
	notableQuoteMinChars = 100
	notableQuoteMaxChars = 300
)

// GenerateReport compiles the full evaluation report for an interview and
// upserts it, superseding any previous report. It works from whatever state
// is persisted: an interview with no recorded scores still yields a report
// with overall score 0.0 and an empty breakdown.
func (s *Service) GenerateReport(ctx context.Context, iv *models.Interview) (*models.Report, error) {
	if iv.Status != models.StatusCompleted {
		logger.Warn("Generating report for non-completed interview",
			zap.Int64("interview_id", iv.ID),
			zap.String("status", string(iv.Status)),
		)
	}

	rub, err := s.rubrics.Get(iv.TemplateName)
	if err != nil {
		return nil, err
	}

	scores, err := s.store.ListDimensionScores(ctx, iv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dimension scores: %w", err)
	}

	overall := OverallScore(scores, rub)
	recommendation := Recommend(overall, scores)

	dimensions := make([]models.ReportDimension, 0, len(scores))
	for _, ds := range scores {
		reasoning := ds.Reasoning
		if reasoning == "" {
			reasoning = "No reasoning provided"
		}
		dimensions = append(dimensions, models.ReportDimension{
			DimensionName: ds.DimensionName,
			Score:         ds.Score,
			MaxScore:      ds.MaxScore,
			Percentage:    round1(ds.Score / ds.MaxScore * 100),
			Level:         ScoreLevel(ds.Score),
			Reasoning:     reasoning,
			Evidence:      ds.Evidence,
		})
	}

	interviewerTurns := 0
	for _, turn := range iv.Transcript {
		if turn.Role == models.RoleInterviewer {
			interviewerTurns++
		}
	}

	report := &models.Report{
		InterviewID:     iv.ID,
		CandidateName:   orUnknown(iv.CandidateContext.Name, "Unknown Candidate"),
		Position:        orUnknown(iv.JobContext.Title, "Unknown Position"),
		Recommendation:  recommendation,
		OverallScore:    overall,
		ConfidenceLevel: ConfidenceLevel(interviewerTurns, len(scores)),
		Dimensions:      dimensions,
		Strengths:       extractStrengths(scores),
		Concerns:        extractConcerns(scores),
		NotableQuotes:   extractNotableQuotes(iv),
		FollowUps:       s.generateFollowUps(ctx, scores, rub),
		Summary:         s.generateSummary(ctx, iv, overall),
		Transcript:      RenderTranscript(iv),
		DurationSeconds: iv.DurationSeconds,
		GeneratedAt:     time.Now().UTC(),
	}

	if err := s.store.UpsertReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}

	metrics.ReportsGenerated.WithLabelValues(string(recommendation)).Inc()
	logger.Info("Report generated",
		zap.Int64("interview_id", iv.ID),
		zap.String("recommendation", string(recommendation)),
		zap.Float64("overall_score", overall),
	)

	return report, nil
}

func orUnknown(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

// extractStrengths picks the top 3 dimensions scoring at least 4.0, highest
// first.
func extractStrengths(scores []models.DimensionScore) []models.ReportStrength {
	high := make([]models.DimensionScore, 0, len(scores))
	for _, ds := range scores {
		if ds.Score >= 4.0 {
			high = append(high, ds)
		}
	}
	sort.SliceStable(high, func(i, j int) bool { return high[i].Score > high[j].Score })

	if len(high) > maxStrengths {
		high = high[:maxStrengths]
	}

	strengths := make([]models.ReportStrength, 0, len(high))
	for _, ds := range high {
		strengths = append(strengths, models.ReportStrength{
			Title:       "Strong " + ds.DimensionName,
			Description: reasoningOrScore(ds),
			Evidence:    topEvidence(ds.Evidence),
		})
	}
	return strengths
}

// extractConcerns lists every dimension under 3.0, lowest first. Scores
// under 2.0 are major concerns.
func extractConcerns(scores []models.DimensionScore) []models.ReportConcern {
	low := make([]models.DimensionScore, 0, len(scores))
	for _, ds := range scores {
		if ds.Score < 3.0 {
			low = append(low, ds)
		}
	}
	sort.SliceStable(low, func(i, j int) bool { return low[i].Score < low[j].Score })

	concerns := make([]models.ReportConcern, 0, len(low))
	for _, ds := range low {
		severity := "Moderate"
		if ds.Score < 2.0 {
			severity = "Major"
		}
		concerns = append(concerns, models.ReportConcern{
			Title:       "Improvement Needed in " + ds.DimensionName,
			Description: reasoningOrScore(ds),
			Evidence:    topEvidence(ds.Evidence),
			Severity:    severity,
		})
	}
	return concerns
}

func reasoningOrScore(ds models.DimensionScore) string {
	if ds.Reasoning != "" {
		return ds.Reasoning
	}
	return fmt.Sprintf("Scored %.2f/5.0 in %s", ds.Score, ds.DimensionName)
}

func topEvidence(evidence []string) []string {
	if len(evidence) > maxEvidencePerEntry {
		return evidence[:maxEvidencePerEntry]
	}
	return evidence
}

// extractNotableQuotes takes the first substantive candidate answers in
// transcript order, truncated for display.
func extractNotableQuotes(iv *models.Interview) []models.QuoteHighlight {
	var quotes []models.QuoteHighlight
	for _, turn := range iv.Transcript {
		if turn.Role != models.RoleCandidate || len(turn.Content) <= notableQuoteMinChars {
			continue
		}

		text := turn.Content
		if len(text) > notableQuoteMaxChars {
			text = text[:notableQuoteMaxChars] + "..."
		}

		quotes = append(quotes, models.QuoteHighlight{
			Quote:   text,
			Context: "Candidate response demonstrating technical thinking",
		})

		if len(quotes) >= maxNotableQuotes {
			break
		}
	}
	return quotes
}

// generateFollowUps produces one probing question for up to 3 borderline
// dimensions (score in [2.5, 3.5]). A failed generation drops that
// dimension from the list rather than failing the report.
func (s *Service) generateFollowUps(ctx context.Context, scores []models.DimensionScore, rub *rubric.Rubric) []models.FollowUpQuestion {
	var followUps []models.FollowUpQuestion
	for i := range scores {
		if len(followUps) >= maxFollowUps {
			break
		}
		ds := &scores[i]
		if ds.Score < 2.5 || ds.Score > 3.5 {
			continue
		}

		dim, ok := rub.DimensionByName(ds.DimensionName)
		if !ok {
			continue
		}

		resp, err := s.gateway.Complete(ctx, llm.CompletionRequest{
			Messages:    s.prompts.FollowUp(ds, dim),
			Temperature: followUpTemperature,
			MaxTokens:   200,
		})
		if err != nil {
			logger.Warn("Follow-up question generation failed",
				zap.String("dimension", ds.DimensionName),
				zap.Error(err),
			)
			continue
		}

		followUps = append(followUps, models.FollowUpQuestion{
			Question:  strings.TrimSpace(resp.Content),
			Reason:    fmt.Sprintf("Score of %.2f warrants deeper probing", ds.Score),
			Dimension: ds.DimensionName,
		})
	}
	return followUps
}

// generateSummary asks for a short executive summary, falling back to a
// templated sentence when generation fails.
func (s *Service) generateSummary(ctx context.Context, iv *models.Interview, overall float64) string {
	resp, err := s.gateway.Complete(ctx, llm.CompletionRequest{
		Messages:    s.prompts.Summary(iv, overall),
		Temperature: summaryTemperature,
		MaxTokens:   200,
	})
	if err != nil {
		logger.Warn("Summary generation failed, using fallback",
			zap.Int64("interview_id", iv.ID),
			zap.Error(err),
		)
		return fmt.Sprintf("Candidate scored %.2f/5.0 overall in the interview.", overall)
	}
	return strings.TrimSpace(resp.Content)
}
