package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-interviewer/backend/internal/assessment"
	"github.com/ai-interviewer/backend/internal/interview"
	"github.com/ai-interviewer/backend/internal/llm"
	"github.com/ai-interviewer/backend/internal/rubric"
	"github.com/ai-interviewer/backend/internal/storage/models"
	"github.com/ai-interviewer/backend/internal/storage/sqlite"
)

// stubGateway answers every request with a canned question.
type stubGateway struct{}

func (stubGateway) Complete(_ context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{Content: "question"}, nil
}

func (stubGateway) Stream(_ context.Context, _ llm.CompletionRequest, onFragment func(string) error) (string, error) {
	if onFragment != nil {
		_ = onFragment("question")
	}
	return "question", nil
}

func handlerRubric() *rubric.Rubric {
	levels := make([]rubric.ScoreLevel, 0, 5)
	for score := 1; score <= 5; score++ {
		levels = append(levels, rubric.ScoreLevel{Score: score, Label: "level"})
	}
	return &rubric.Rubric{
		TemplateName: "backend-engineer",
		Dimensions: []rubric.Dimension{
			{Name: "Technical Knowledge", Weight: 1.0, ScoreLevels: levels},
		},
	}
}

func newTestApp(t *testing.T) (*fiber.App, *sqlite.Client) {
	t.Helper()

	store, err := sqlite.NewClient(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.InitSchema())

	rubrics := rubric.NewStore(handlerRubric())
	gateway := stubGateway{}
	assessor := assessment.NewService(store, gateway, rubrics, nil)
	machine := interview.NewMachine(store, gateway, rubrics, assessor, 10)

	handler := NewInterviewHandler(store, machine, assessor, rubrics, nil, "backend-engineer")

	app := fiber.New()
	app.Post("/api/v1/interviews", handler.CreateInterview)
	app.Get("/api/v1/interviews/:id/assessment", handler.GetAssessment)

	return app, store
}

func seedJobAndCandidate(t *testing.T, store *sqlite.Client) (int64, int64) {
	t.Helper()

	job := &models.Job{Title: "Backend Engineer", Status: models.JobActive}
	require.NoError(t, store.CreateJob(context.Background(), job))

	cand := &models.Candidate{
		JobID:     job.ID,
		FirstName: "Sam",
		Email:     "sam@example.com",
		Status:    models.CandidateApplied,
	}
	require.NoError(t, store.CreateCandidate(context.Background(), cand))

	return job.ID, cand.ID
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any) (int, string) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(respBody)
}

func TestCreateInterviewRejectsUnknownTemplate(t *testing.T) {
	app, store := newTestApp(t)
	jobID, candID := seedJobAndCandidate(t, store)

	status, body := postJSON(t, app, "/api/v1/interviews", map[string]any{
		"job_id":        jobID,
		"candidate_id":  candID,
		"template_name": "does-not-exist",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body, "does-not-exist")

	// Nothing was persisted for the rejected request.
	interviews, err := store.ListInterviews(context.Background(), candID)
	require.NoError(t, err)
	assert.Empty(t, interviews)
}

func TestCreateInterviewAcceptsKnownTemplate(t *testing.T) {
	app, store := newTestApp(t)
	jobID, candID := seedJobAndCandidate(t, store)

	status, _ := postJSON(t, app, "/api/v1/interviews", map[string]any{
		"job_id":       jobID,
		"candidate_id": candID,
	})
	assert.Equal(t, fiber.StatusCreated, status)

	interviews, err := store.ListInterviews(context.Background(), candID)
	require.NoError(t, err)
	require.Len(t, interviews, 1)
	assert.Equal(t, "backend-engineer", interviews[0].TemplateName)
}

func TestGetAssessmentUnknownInterview(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest("GET", "/api/v1/interviews/999/assessment", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
