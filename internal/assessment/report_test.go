package assessment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-interviewer/backend/internal/llm"
	"github.com/ai-interviewer/backend/internal/rubric"
	"github.com/ai-interviewer/backend/internal/storage/models"
)

func fiveDimRubric() *rubric.Rubric {
	names := []string{"Technical Knowledge", "Problem Solving", "Communication", "Experience Depth", "Culture and Motivation"}
	dims := make([]rubric.Dimension, len(names))
	for i, name := range names {
		dims[i] = rubric.Dimension{Name: name, Weight: 0.2, Description: name + " axis"}
	}
	return &rubric.Rubric{TemplateName: "backend-engineer", Dimensions: dims}
}

func completedInterview() *models.Interview {
	started := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	completed := started.Add(30 * time.Minute)
	iv := &models.Interview{
		ID:               7,
		SessionID:        "sess-7",
		TemplateName:     "backend-engineer",
		Status:           models.StatusCompleted,
		StartedAt:        &started,
		CompletedAt:      &completed,
		DurationSeconds:  1800,
		JobContext:       models.JobContext{Title: "Senior Backend Engineer"},
		CandidateContext: models.CandidateContext{Name: "Jordan Reyes"},
	}

	long := strings.Repeat("We sharded the orders table by customer id and moved reads to replicas. ", 3)
	for i := 0; i < 8; i++ {
		ts := started.Add(time.Duration(i) * time.Minute)
		iv.Transcript = append(iv.Transcript,
			models.Turn{Role: models.RoleInterviewer, Content: "question", TurnNumber: 2*i + 1, Timestamp: ts},
			models.Turn{Role: models.RoleCandidate, Content: long, TurnNumber: 2*i + 2, Timestamp: ts.Add(30 * time.Second)},
		)
	}
	return iv
}

func seedScores(store *fakeScoreStore, values map[string]float64) {
	for name, score := range values {
		store.UpsertDimensionScore(context.Background(), &models.DimensionScore{
			InterviewID:   7,
			DimensionName: name,
			Score:         score,
			MaxScore:      models.MaxDimensionScore,
			Reasoning:     "assessed " + name,
			Evidence:      []string{"e1", "e2", "e3", "e4"},
		})
	}
}

func TestGenerateReportFullInterview(t *testing.T) {
	store := newFakeScoreStore()
	seedScores(store, map[string]float64{
		"Technical Knowledge":    4.6,
		"Problem Solving":        4.2,
		"Communication":          4.1,
		"Experience Depth":       4.4,
		"Culture and Motivation": 3.0,
	})

	gateway := &fakeGateway{
		completeFn: func(req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return &llm.CompletionResponse{Content: "A strong, well-rounded performance."}, nil
		},
	}
	svc := NewService(store, gateway, rubric.NewStore(fiveDimRubric()), nil)

	report, err := svc.GenerateReport(context.Background(), completedInterview())
	require.NoError(t, err)

	assert.Equal(t, "Jordan Reyes", report.CandidateName)
	assert.Equal(t, "Senior Backend Engineer", report.Position)
	// (4.6+4.2+4.1+4.4+3.0)/5 = 4.06
	assert.Equal(t, 4.06, report.OverallScore)
	assert.Equal(t, models.Hire, report.Recommendation)
	assert.Equal(t, "High", report.ConfidenceLevel)
	assert.Len(t, report.Dimensions, 5)
	assert.Equal(t, "A strong, well-rounded performance.", report.Summary)
	assert.Equal(t, 1800, report.DurationSeconds)
	assert.Contains(t, report.Transcript, "Interview Transcript - sess-7")

	// Top three >= 4.0, highest first. Evidence trimmed to three entries.
	require.Len(t, report.Strengths, 3)
	assert.Equal(t, "Strong Technical Knowledge", report.Strengths[0].Title)
	assert.Equal(t, "Strong Experience Depth", report.Strengths[1].Title)
	assert.Equal(t, "Strong Problem Solving", report.Strengths[2].Title)
	assert.Len(t, report.Strengths[0].Evidence, 3)

	assert.Empty(t, report.Concerns)

	require.NotEmpty(t, report.NotableQuotes)
	assert.LessOrEqual(t, len(report.NotableQuotes), 5)

	// One borderline dimension at 3.0 gets a follow-up.
	require.Len(t, report.FollowUps, 1)
	assert.Equal(t, "Culture and Motivation", report.FollowUps[0].Dimension)

	// The report was persisted.
	assert.NotNil(t, store.reports[7])
}

func TestGenerateReportConcernsAndSeverity(t *testing.T) {
	store := newFakeScoreStore()
	seedScores(store, map[string]float64{
		"Technical Knowledge":    1.5,
		"Problem Solving":        2.4,
		"Communication":          2.9,
		"Experience Depth":       3.2,
		"Culture and Motivation": 3.1,
	})

	svc := NewService(store, &fakeGateway{}, rubric.NewStore(fiveDimRubric()), nil)

	report, err := svc.GenerateReport(context.Background(), completedInterview())
	require.NoError(t, err)

	require.Len(t, report.Concerns, 3)
	assert.Equal(t, "Improvement Needed in Technical Knowledge", report.Concerns[0].Title)
	assert.Equal(t, "Major", report.Concerns[0].Severity)
	assert.Equal(t, "Moderate", report.Concerns[1].Severity)
	assert.Equal(t, "Moderate", report.Concerns[2].Severity)
}

func TestGenerateReportEmptyInterview(t *testing.T) {
	store := newFakeScoreStore()
	gateway := &fakeGateway{
		completeFn: func(_ llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return nil, errors.New("unavailable")
		},
	}
	svc := NewService(store, gateway, rubric.NewStore(fiveDimRubric()), nil)

	iv := &models.Interview{
		ID:           9,
		SessionID:    "sess-9",
		TemplateName: "backend-engineer",
		Status:       models.StatusCancelled,
	}

	report, err := svc.GenerateReport(context.Background(), iv)
	require.NoError(t, err)

	assert.Equal(t, 0.0, report.OverallScore)
	assert.Equal(t, models.StrongNoHire, report.Recommendation)
	assert.Equal(t, "Low", report.ConfidenceLevel)
	assert.Empty(t, report.Dimensions)
	assert.Empty(t, report.Strengths)
	assert.Empty(t, report.NotableQuotes)
	assert.Equal(t, "Candidate scored 0.00/5.0 overall in the interview.", report.Summary)
	assert.Equal(t, "Unknown Candidate", report.CandidateName)
	assert.Equal(t, "Unknown Position", report.Position)
}

func TestGenerateReportFollowUpFailureIsSwallowed(t *testing.T) {
	store := newFakeScoreStore()
	seedScores(store, map[string]float64{
		"Technical Knowledge":    3.0,
		"Problem Solving":        3.2,
		"Communication":          3.4,
		"Experience Depth":       4.0,
		"Culture and Motivation": 4.0,
	})

	gateway := &fakeGateway{
		completeFn: func(req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			// Follow-up prompts fail; the summary prompt succeeds.
			for _, m := range req.Messages {
				if strings.Contains(m.Content, "follow-up question") {
					return nil, errors.New("rate limited")
				}
			}
			return &llm.CompletionResponse{Content: "summary"}, nil
		},
	}
	svc := NewService(store, gateway, rubric.NewStore(fiveDimRubric()), nil)

	report, err := svc.GenerateReport(context.Background(), completedInterview())
	require.NoError(t, err)
	assert.Empty(t, report.FollowUps)
	assert.Equal(t, "summary", report.Summary)
}

func TestGenerateReportUnknownTemplate(t *testing.T) {
	svc := NewService(newFakeScoreStore(), &fakeGateway{}, rubric.NewStore(fiveDimRubric()), nil)

	iv := &models.Interview{ID: 1, TemplateName: "missing"}
	_, err := svc.GenerateReport(context.Background(), iv)
	assert.ErrorIs(t, err, rubric.ErrTemplateNotFound)
}
