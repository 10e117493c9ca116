package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ai-interviewer/backend/internal/rubric"
	"github.com/ai-interviewer/backend/internal/storage/models"
	"github.com/ai-interviewer/backend/internal/storage/sqlite"
	"github.com/ai-interviewer/backend/pkg/logger"
)

type JobHandler struct {
	store   *sqlite.Client
	rubrics *rubric.Store
}

func NewJobHandler(store *sqlite.Client, rubrics *rubric.Store) *JobHandler {
	return &JobHandler{store: store, rubrics: rubrics}
}

func (h *JobHandler) CreateJob(c *fiber.Ctx) error {
	var req struct {
		Title             string   `json:"title"`
		Department        string   `json:"department"`
		ExperienceLevel   string   `json:"experience_level"`
		Description       string   `json:"description"`
		Requirements      []string `json:"requirements"`
		Responsibilities  []string `json:"responsibilities"`
		InterviewTemplate string   `json:"interview_template"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title is required",
		})
	}
	if req.InterviewTemplate != "" {
		if _, err := h.rubrics.Get(req.InterviewTemplate); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unknown interview template",
			})
		}
	}

	job := &models.Job{
		Title:             req.Title,
		Department:        req.Department,
		ExperienceLevel:   req.ExperienceLevel,
		Description:       req.Description,
		Requirements:      req.Requirements,
		Responsibilities:  req.Responsibilities,
		InterviewTemplate: req.InterviewTemplate,
		Status:            models.JobActive,
	}

	if err := h.store.CreateJob(c.Context(), job); err != nil {
		logger.Error("Failed to create job", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create job",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(job)
}

func (h *JobHandler) GetJob(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid job id"})
	}

	job, err := h.store.GetJob(c.Context(), id)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": "Job not found"})
	}

	return c.JSON(job)
}

func (h *JobHandler) ListJobs(c *fiber.Ctx) error {
	jobs, err := h.store.ListJobs(c.Context())
	if err != nil {
		logger.Error("Failed to list jobs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list jobs",
		})
	}

	return c.JSON(fiber.Map{"jobs": jobs})
}
