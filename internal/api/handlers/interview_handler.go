package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ai-interviewer/backend/internal/assessment"
	"github.com/ai-interviewer/backend/internal/cache/redis"
	"github.com/ai-interviewer/backend/internal/interview"
	"github.com/ai-interviewer/backend/internal/metrics"
	"github.com/ai-interviewer/backend/internal/rubric"
	"github.com/ai-interviewer/backend/internal/storage"
	"github.com/ai-interviewer/backend/internal/storage/models"
	"github.com/ai-interviewer/backend/internal/storage/sqlite"
	"github.com/ai-interviewer/backend/pkg/logger"
)

const reportCacheTTL = 10 * time.Minute

type InterviewHandler struct {
	store           *sqlite.Client
	machine         *interview.Machine
	assessor        *assessment.Service
	rubrics         *rubric.Store
	reportCache     *redis.Client
	defaultTemplate string
}

func NewInterviewHandler(store *sqlite.Client, machine *interview.Machine, assessor *assessment.Service, rubrics *rubric.Store, reportCache *redis.Client, defaultTemplate string) *InterviewHandler {
	return &InterviewHandler{
		store:           store,
		machine:         machine,
		assessor:        assessor,
		rubrics:         rubrics,
		reportCache:     reportCache,
		defaultTemplate: defaultTemplate,
	}
}

func interviewID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, interview.ErrInvalidState):
		return fiber.StatusConflict
	case errors.Is(err, rubric.ErrTemplateNotFound):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *InterviewHandler) CreateInterview(c *fiber.Ctx) error {
	var req struct {
		JobID        int64  `json:"job_id"`
		CandidateID  int64  `json:"candidate_id"`
		TemplateName string `json:"template_name"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.JobID == 0 || req.CandidateID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "job_id and candidate_id are required",
		})
	}

	job, err := h.store.GetJob(c.Context(), req.JobID)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": "Job not found"})
	}

	cand, err := h.store.GetCandidate(c.Context(), req.CandidateID)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": "Candidate not found"})
	}

	templateName := req.TemplateName
	if templateName == "" {
		templateName = job.InterviewTemplate
	}
	if templateName == "" {
		templateName = h.defaultTemplate
	}

	// A bogus template would let the interview run fully unscored, so reject
	// it before anything is persisted.
	if _, err := h.rubrics.Get(templateName); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	iv := &models.Interview{
		SessionID:    uuid.New().String(),
		JobID:        job.ID,
		CandidateID:  cand.ID,
		TemplateName: templateName,
		Status:       models.StatusPending,
		JobContext: models.JobContext{
			Title:            job.Title,
			Department:       job.Department,
			ExperienceLevel:  job.ExperienceLevel,
			Description:      job.Description,
			Requirements:     job.Requirements,
			Responsibilities: job.Responsibilities,
		},
		CandidateContext: models.CandidateContext{
			Name:          cand.FullName(),
			Email:         cand.Email,
			ResumeExcerpt: cand.ResumeText,
			LinkedInURL:   cand.LinkedInURL,
		},
	}

	if err := h.store.CreateInterview(c.Context(), iv); err != nil {
		logger.Error("Failed to create interview", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create interview",
		})
	}

	if err := h.store.UpdateCandidateStatus(c.Context(), cand.ID, models.CandidateInterviewScheduled); err != nil {
		logger.Warn("Failed to advance candidate status",
			zap.Int64("candidate_id", cand.ID),
			zap.Error(err),
		)
	}

	return c.Status(fiber.StatusCreated).JSON(iv)
}

func (h *InterviewHandler) StartInterview(c *fiber.Ctx) error {
	id, err := interviewID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid interview id"})
	}

	result, err := h.machine.Start(c.Context(), id)
	if err != nil {
		logger.Error("Failed to start interview", zap.Int64("interview_id", id), zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(result)
}

func (h *InterviewHandler) Respond(c *fiber.Ctx) error {
	id, err := interviewID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid interview id"})
	}

	var req struct {
		Answer string `json:"answer"`
	}
	if err := c.BodyParser(&req); err != nil || req.Answer == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Answer is required"})
	}

	result, err := h.machine.Respond(c.Context(), id, req.Answer)
	if err != nil {
		logger.Error("Failed to process answer", zap.Int64("interview_id", id), zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(result)
}

func (h *InterviewHandler) EndInterview(c *fiber.Ctx) error {
	id, err := interviewID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid interview id"})
	}

	iv, err := h.machine.End(c.Context(), id)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(iv)
}

func (h *InterviewHandler) CancelInterview(c *fiber.Ctx) error {
	id, err := interviewID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid interview id"})
	}

	iv, err := h.machine.Cancel(c.Context(), id)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(iv)
}

func (h *InterviewHandler) GetInterview(c *fiber.Ctx) error {
	id, err := interviewID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid interview id"})
	}

	iv, err := h.store.GetInterview(c.Context(), id)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": "Interview not found"})
	}

	return c.JSON(iv)
}

func (h *InterviewHandler) ListInterviews(c *fiber.Ctx) error {
	candidateID, _ := strconv.ParseInt(c.Query("candidate_id"), 10, 64)

	interviews, err := h.store.ListInterviews(c.Context(), candidateID)
	if err != nil {
		logger.Error("Failed to list interviews", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list interviews",
		})
	}

	return c.JSON(fiber.Map{"interviews": interviews})
}

func (h *InterviewHandler) GetProgress(c *fiber.Ctx) error {
	id, err := interviewID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid interview id"})
	}

	progress, err := h.machine.Progress(c.Context(), id)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(progress)
}

func (h *InterviewHandler) GetAssessment(c *fiber.Ctx) error {
	id, err := interviewID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid interview id"})
	}

	if _, err := h.store.GetInterview(c.Context(), id); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": "Interview not found"})
	}

	scores, err := h.assessor.CurrentScores(c.Context(), id)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"interview_id": id,
		"scores":       scores,
	})
}

func (h *InterviewHandler) GenerateReport(c *fiber.Ctx) error {
	id, err := interviewID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid interview id"})
	}

	iv, err := h.store.GetInterview(c.Context(), id)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": "Interview not found"})
	}

	report, err := h.assessor.GenerateReport(c.Context(), iv)
	if err != nil {
		logger.Error("Failed to generate report", zap.Int64("interview_id", id), zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	metrics.Recommendations.WithLabelValues(string(report.Recommendation)).Inc()

	if h.reportCache != nil {
		if err := h.reportCache.SetReport(c.Context(), id, report, reportCacheTTL); err != nil {
			logger.Warn("Failed to cache report", zap.Int64("interview_id", id), zap.Error(err))
		}
	}

	return c.JSON(report)
}

func (h *InterviewHandler) GetReport(c *fiber.Ctx) error {
	id, err := interviewID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid interview id"})
	}

	if h.reportCache != nil {
		var cached models.Report
		if hit, cerr := h.reportCache.GetReport(c.Context(), id, &cached); cerr == nil && hit {
			return c.JSON(&cached)
		}
	}

	report, err := h.store.GetReport(c.Context(), id)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": "Report not found"})
	}

	return c.JSON(report)
}
