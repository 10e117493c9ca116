package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ai-interviewer/backend/internal/storage/models"
	"github.com/ai-interviewer/backend/internal/storage/sqlite"
	"github.com/ai-interviewer/backend/pkg/logger"
)

type CandidateHandler struct {
	store *sqlite.Client
}

func NewCandidateHandler(store *sqlite.Client) *CandidateHandler {
	return &CandidateHandler{store: store}
}

func (h *CandidateHandler) CreateCandidate(c *fiber.Ctx) error {
	var req struct {
		JobID       int64  `json:"job_id"`
		FirstName   string `json:"first_name"`
		LastName    string `json:"last_name"`
		Email       string `json:"email"`
		ResumeText  string `json:"resume_text"`
		LinkedInURL string `json:"linkedin_url"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.JobID == 0 || req.FirstName == "" || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "job_id, first_name and email are required",
		})
	}

	if _, err := h.store.GetJob(c.Context(), req.JobID); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": "Job not found"})
	}

	cand := &models.Candidate{
		JobID:       req.JobID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		ResumeText:  req.ResumeText,
		LinkedInURL: req.LinkedInURL,
		Status:      models.CandidateApplied,
	}

	if err := h.store.CreateCandidate(c.Context(), cand); err != nil {
		logger.Error("Failed to create candidate", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create candidate",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(cand)
}

func (h *CandidateHandler) GetCandidate(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid candidate id"})
	}

	cand, err := h.store.GetCandidate(c.Context(), id)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": "Candidate not found"})
	}

	return c.JSON(cand)
}

func (h *CandidateHandler) ListCandidates(c *fiber.Ctx) error {
	jobID, _ := strconv.ParseInt(c.Query("job_id"), 10, 64)

	candidates, err := h.store.ListCandidates(c.Context(), jobID)
	if err != nil {
		logger.Error("Failed to list candidates", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list candidates",
		})
	}

	return c.JSON(fiber.Map{"candidates": candidates})
}

var candidateStatuses = map[models.CandidateStatus]bool{
	models.CandidateApplied:             true,
	models.CandidateInterviewScheduled:  true,
	models.CandidateInterviewInProgress: true,
	models.CandidateInterviewCompleted:  true,
}

func (h *CandidateHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid candidate id"})
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	status := models.CandidateStatus(req.Status)
	if !candidateStatuses[status] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown candidate status",
		})
	}

	if err := h.store.UpdateCandidateStatus(c.Context(), id, status); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"id": id, "status": status})
}
