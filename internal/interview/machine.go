// Package interview drives the conversation state machine: starting an
// interview, alternating interviewer and candidate turns, and closing the
// session out once the question budget is spent.
package interview

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ai-interviewer/backend/internal/assessment"
	"github.com/ai-interviewer/backend/internal/llm"
	"github.com/ai-interviewer/backend/internal/metrics"
	"github.com/ai-interviewer/backend/internal/prompt"
	"github.com/ai-interviewer/backend/internal/rubric"
	"github.com/ai-interviewer/backend/internal/storage/models"
	"github.com/ai-interviewer/backend/pkg/logger"
)

const (
	completionNotice = "Thank you for your time! The interview is now complete. We'll review your responses and get back to you soon."

	openingTemperature  = 0.7
	questionTemperature = 0.8
	questionMaxTokens   = 300
)

// now is swapped out by tests that need a fixed clock.
var now = time.Now

// Store is the persistence collaborator for interviews and for advancing the
// candidate's pipeline status alongside the interview lifecycle.
type Store interface {
	GetInterview(ctx context.Context, id int64) (*models.Interview, error)
	SaveInterview(ctx context.Context, iv *models.Interview) error
	UpdateCandidateStatus(ctx context.Context, candidateID int64, status models.CandidateStatus) error
}

// TurnResult is what a state transition hands back to the transport layer.
type TurnResult struct {
	Response       string `json:"response"`
	QuestionNumber int    `json:"question_number"`
	TotalQuestions int    `json:"total_questions"`
	IsComplete     bool   `json:"is_complete"`
}

// Progress is a read-only snapshot of a running interview.
type Progress struct {
	Status         models.InterviewStatus  `json:"status"`
	TurnsCompleted int                     `json:"turns_completed"`
	TotalTurns     int                     `json:"total_turns"`
	Scores         []models.DimensionScore `json:"scores"`
}

// Machine serializes transitions per interview: concurrent requests against
// the same interview queue behind a per-ID lock, while distinct interviews
// proceed in parallel.
type Machine struct {
	store          Store
	gateway        llm.Gateway
	rubrics        *rubric.Store
	assessor       *assessment.Service
	prompts        *prompt.Builder
	totalQuestions int

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewMachine(store Store, gateway llm.Gateway, rubrics *rubric.Store, assessor *assessment.Service, totalQuestions int) *Machine {
	if totalQuestions <= 0 {
		totalQuestions = prompt.TotalQuestions
	}
	return &Machine{
		store:          store,
		gateway:        gateway,
		rubrics:        rubrics,
		assessor:       assessor,
		prompts:        prompt.NewBuilder(),
		totalQuestions: totalQuestions,
		locks:          make(map[int64]*sync.Mutex),
	}
}

func (m *Machine) lockFor(id int64) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[id] = lock
	}
	return lock
}

// Start transitions a pending interview to in_progress and produces the
// opening question as Turn 1.
func (m *Machine) Start(ctx context.Context, id int64) (*TurnResult, error) {
	lock := m.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	iv, err := m.store.GetInterview(ctx, id)
	if err != nil {
		return nil, err
	}
	if iv.Status != models.StatusPending {
		return nil, fmt.Errorf("%w: cannot start interview in status %s", ErrInvalidState, iv.Status)
	}

	// There is no safe default rubric: an interview without one would run to
	// completion with every answer unscored.
	rub, err := m.rubrics.Get(iv.TemplateName)
	if err != nil {
		return nil, err
	}

	resp, err := m.gateway.Complete(ctx, llm.CompletionRequest{
		Messages:    m.prompts.OpeningQuestion(iv),
		Temperature: openingTemperature,
		MaxTokens:   questionMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate opening question: %w", err)
	}

	startedAt := now().UTC()
	iv.Status = models.StatusInProgress
	iv.StartedAt = &startedAt
	iv.Transcript = append(iv.Transcript, models.Turn{
		Role:       models.RoleInterviewer,
		Content:    resp.Content,
		TurnNumber: len(iv.Transcript) + 1,
		Timestamp:  startedAt,
	})
	iv.CurrentTurnIndex = 1

	if err := m.store.SaveInterview(ctx, iv); err != nil {
		return nil, fmt.Errorf("failed to save interview: %w", err)
	}

	if ierr := m.assessor.InitializeDimensions(ctx, iv.ID, rub); ierr != nil {
		logger.Warn("Failed to initialize dimension scores",
			zap.Int64("interview_id", iv.ID),
			zap.Error(ierr),
		)
	}

	if serr := m.store.UpdateCandidateStatus(ctx, iv.CandidateID, models.CandidateInterviewInProgress); serr != nil {
		logger.Warn("Failed to advance candidate status",
			zap.Int64("candidate_id", iv.CandidateID),
			zap.Error(serr),
		)
	}

	metrics.InterviewsStarted.Inc()
	metrics.ActiveInterviews.Inc()
	metrics.TurnsProcessed.WithLabelValues(string(models.RoleInterviewer)).Inc()
	logger.Info("Interview started",
		zap.Int64("interview_id", iv.ID),
		zap.String("session_id", iv.SessionID),
	)

	return &TurnResult{
		Response:       resp.Content,
		QuestionNumber: 1,
		TotalQuestions: m.totalQuestions,
		IsComplete:     false,
	}, nil
}

// Respond records the candidate's answer, grades it, and either asks the
// next question or completes the interview once the question budget is spent.
func (m *Machine) Respond(ctx context.Context, id int64, answer string) (*TurnResult, error) {
	return m.respond(ctx, id, answer, nil)
}

// RespondStream is Respond with the next question streamed fragment by
// fragment through onFragment before the full result returns.
func (m *Machine) RespondStream(ctx context.Context, id int64, answer string, onFragment func(fragment string) error) (*TurnResult, error) {
	return m.respond(ctx, id, answer, onFragment)
}

func (m *Machine) respond(ctx context.Context, id int64, answer string, onFragment func(fragment string) error) (*TurnResult, error) {
	lock := m.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	timer := time.Now()
	defer func() { metrics.TurnDuration.Observe(time.Since(timer).Seconds()) }()

	iv, err := m.store.GetInterview(ctx, id)
	if err != nil {
		return nil, err
	}
	if iv.Status != models.StatusInProgress {
		return nil, fmt.Errorf("%w: cannot respond to interview in status %s", ErrInvalidState, iv.Status)
	}

	question := ""
	if turn, ok := iv.LastInterviewerTurn(); ok {
		question = turn.Content
	} else {
		logger.Warn("Candidate answer arrived with no question on record",
			zap.Int64("interview_id", iv.ID),
		)
	}

	iv.Transcript = append(iv.Transcript, models.Turn{
		Role:       models.RoleCandidate,
		Content:    answer,
		TurnNumber: len(iv.Transcript) + 1,
		Timestamp:  now().UTC(),
	})
	metrics.TurnsProcessed.WithLabelValues(string(models.RoleCandidate)).Inc()

	if err := m.store.SaveInterview(ctx, iv); err != nil {
		return nil, fmt.Errorf("failed to save interview: %w", err)
	}

	// Grading failures never block the conversation; the answer stays in the
	// transcript and the score simply does not move.
	if _, eerr := m.assessor.EvaluateAnswer(ctx, iv.ID, iv.TemplateName, question, answer, iv.CurrentTurnIndex, nil); eerr != nil {
		logger.Error("Answer evaluation failed",
			zap.Int64("interview_id", iv.ID),
			zap.Int("question_number", iv.CurrentTurnIndex),
			zap.Error(eerr),
		)
	}

	if iv.CandidateTurns() >= m.totalQuestions {
		return m.complete(ctx, iv)
	}

	return m.nextQuestion(ctx, iv, onFragment)
}

func (m *Machine) nextQuestion(ctx context.Context, iv *models.Interview, onFragment func(fragment string) error) (*TurnResult, error) {
	req := llm.CompletionRequest{
		Messages:    m.prompts.NextQuestion(iv),
		Temperature: questionTemperature,
		MaxTokens:   questionMaxTokens,
	}

	var content string
	if onFragment != nil {
		// Generation outlives the caller's context so a dropped subscriber
		// cannot leave the interview without its next question.
		text, err := m.gateway.Stream(context.WithoutCancel(ctx), req, onFragment)
		if err != nil {
			return nil, fmt.Errorf("failed to generate next question: %w", err)
		}
		content = text
	} else {
		resp, err := m.gateway.Complete(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("failed to generate next question: %w", err)
		}
		content = resp.Content
	}

	iv.Transcript = append(iv.Transcript, models.Turn{
		Role:       models.RoleInterviewer,
		Content:    content,
		TurnNumber: len(iv.Transcript) + 1,
		Timestamp:  now().UTC(),
	})
	iv.CurrentTurnIndex++
	metrics.TurnsProcessed.WithLabelValues(string(models.RoleInterviewer)).Inc()

	if err := m.store.SaveInterview(ctx, iv); err != nil {
		return nil, fmt.Errorf("failed to save interview: %w", err)
	}

	return &TurnResult{
		Response:       content,
		QuestionNumber: iv.CurrentTurnIndex,
		TotalQuestions: m.totalQuestions,
		IsComplete:     false,
	}, nil
}

func (m *Machine) complete(ctx context.Context, iv *models.Interview) (*TurnResult, error) {
	completedAt := now().UTC()
	iv.Status = models.StatusCompleted
	iv.CompletedAt = &completedAt
	if iv.StartedAt != nil {
		iv.DurationSeconds = int(completedAt.Sub(*iv.StartedAt).Seconds())
	}
	iv.Transcript = append(iv.Transcript, models.Turn{
		Role:       models.RoleInterviewer,
		Content:    completionNotice,
		TurnNumber: len(iv.Transcript) + 1,
		Timestamp:  completedAt,
	})

	if err := m.store.SaveInterview(ctx, iv); err != nil {
		return nil, fmt.Errorf("failed to save interview: %w", err)
	}

	if serr := m.store.UpdateCandidateStatus(ctx, iv.CandidateID, models.CandidateInterviewCompleted); serr != nil {
		logger.Warn("Failed to advance candidate status",
			zap.Int64("candidate_id", iv.CandidateID),
			zap.Error(serr),
		)
	}

	metrics.ActiveInterviews.Dec()
	metrics.InterviewsFinished.WithLabelValues(string(models.StatusCompleted)).Inc()
	logger.Info("Interview completed",
		zap.Int64("interview_id", iv.ID),
		zap.Int("duration_seconds", iv.DurationSeconds),
	)

	return &TurnResult{
		Response:       completionNotice,
		QuestionNumber: iv.CurrentTurnIndex,
		TotalQuestions: m.totalQuestions,
		IsComplete:     true,
	}, nil
}

// End finishes an interview before the question budget is spent. Ending an
// already terminal interview is a no-op.
func (m *Machine) End(ctx context.Context, id int64) (*models.Interview, error) {
	return m.finish(ctx, id, models.StatusCompleted)
}

// Cancel abandons an interview. Cancelling an already terminal interview is
// a no-op.
func (m *Machine) Cancel(ctx context.Context, id int64) (*models.Interview, error) {
	return m.finish(ctx, id, models.StatusCancelled)
}

// MarkFailed forces an interview into the error state after an unrecoverable
// fault. Terminal interviews are left untouched.
func (m *Machine) MarkFailed(ctx context.Context, id int64) (*models.Interview, error) {
	return m.finish(ctx, id, models.StatusError)
}

func (m *Machine) finish(ctx context.Context, id int64, status models.InterviewStatus) (*models.Interview, error) {
	lock := m.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	iv, err := m.store.GetInterview(ctx, id)
	if err != nil {
		return nil, err
	}
	if iv.Status.Terminal() {
		return iv, nil
	}

	wasInProgress := iv.Status == models.StatusInProgress

	completedAt := now().UTC()
	iv.Status = status
	iv.CompletedAt = &completedAt
	if iv.StartedAt != nil {
		iv.DurationSeconds = int(completedAt.Sub(*iv.StartedAt).Seconds())
	}

	if err := m.store.SaveInterview(ctx, iv); err != nil {
		return nil, fmt.Errorf("failed to save interview: %w", err)
	}

	if status == models.StatusCompleted {
		if serr := m.store.UpdateCandidateStatus(ctx, iv.CandidateID, models.CandidateInterviewCompleted); serr != nil {
			logger.Warn("Failed to advance candidate status",
				zap.Int64("candidate_id", iv.CandidateID),
				zap.Error(serr),
			)
		}
	}

	if wasInProgress {
		metrics.ActiveInterviews.Dec()
	}
	metrics.InterviewsFinished.WithLabelValues(string(status)).Inc()
	logger.Info("Interview finished",
		zap.Int64("interview_id", iv.ID),
		zap.String("status", string(status)),
	)

	return iv, nil
}

// Progress reports how far along an interview is, with the running scores.
func (m *Machine) Progress(ctx context.Context, id int64) (*Progress, error) {
	iv, err := m.store.GetInterview(ctx, id)
	if err != nil {
		return nil, err
	}

	scores, err := m.assessor.CurrentScores(ctx, iv.ID)
	if err != nil {
		return nil, err
	}

	return &Progress{
		Status:         iv.Status,
		TurnsCompleted: iv.CandidateTurns(),
		TotalTurns:     m.totalQuestions,
		Scores:         scores,
	}, nil
}
