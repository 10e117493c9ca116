// Package sqlite is the embedded persistence backend. Structured fields
// (transcripts, context snapshots, evidence lists, report sections) are
// stored as JSON columns; everything queried or joined on gets its own
// column.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/ai-interviewer/backend/internal/storage"
	"github.com/ai-interviewer/backend/internal/storage/models"
	"github.com/ai-interviewer/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS jobs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		department TEXT,
		experience_level TEXT,
		description TEXT,
		requirements TEXT,
		responsibilities TEXT,
		interview_template TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);

	CREATE TABLE IF NOT EXISTS candidates (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id INTEGER NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT,
		email TEXT NOT NULL,
		resume_text TEXT,
		linkedin_url TEXT,
		status TEXT NOT NULL DEFAULT 'applied',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		FOREIGN KEY (job_id) REFERENCES jobs(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_candidates_job ON candidates(job_id);
	CREATE INDEX IF NOT EXISTS idx_candidates_status ON candidates(status);

	CREATE TABLE IF NOT EXISTS interviews (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT UNIQUE NOT NULL,
		job_id INTEGER NOT NULL,
		candidate_id INTEGER NOT NULL,
		template_name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		transcript TEXT NOT NULL DEFAULT '[]',
		current_turn_index INTEGER NOT NULL DEFAULT 0,
		job_context TEXT NOT NULL DEFAULT '{}',
		candidate_context TEXT NOT NULL DEFAULT '{}',
		started_at INTEGER,
		completed_at INTEGER,
		duration_seconds INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (job_id) REFERENCES jobs(id),
		FOREIGN KEY (candidate_id) REFERENCES candidates(id)
	);
	CREATE INDEX IF NOT EXISTS idx_interviews_candidate ON interviews(candidate_id);
	CREATE INDEX IF NOT EXISTS idx_interviews_status ON interviews(status);

	CREATE TABLE IF NOT EXISTS dimension_scores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		interview_id INTEGER NOT NULL,
		dimension_name TEXT NOT NULL,
		score REAL NOT NULL,
		max_score REAL NOT NULL,
		reasoning TEXT,
		evidence TEXT NOT NULL DEFAULT '[]',
		keyword_hits TEXT NOT NULL DEFAULT '[]',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		UNIQUE(interview_id, dimension_name),
		FOREIGN KEY (interview_id) REFERENCES interviews(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_scores_interview ON dimension_scores(interview_id);

	CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		interview_id INTEGER NOT NULL UNIQUE,
		candidate_name TEXT NOT NULL,
		position TEXT NOT NULL,
		recommendation TEXT NOT NULL,
		overall_score REAL NOT NULL,
		confidence_level TEXT NOT NULL,
		dimensions TEXT NOT NULL DEFAULT '[]',
		strengths TEXT NOT NULL DEFAULT '[]',
		concerns TEXT NOT NULL DEFAULT '[]',
		notable_quotes TEXT NOT NULL DEFAULT '[]',
		follow_ups TEXT NOT NULL DEFAULT '[]',
		summary TEXT,
		transcript TEXT,
		duration_seconds INTEGER NOT NULL DEFAULT 0,
		generated_at INTEGER NOT NULL,
		FOREIGN KEY (interview_id) REFERENCES interviews(id) ON DELETE CASCADE
	);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func marshalJSON(v any) string {
	data, _ := json.Marshal(v)
	return string(data)
}

func unixOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func timeOrNil(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0).UTC()
	return &t
}

// ---- jobs ----

func (c *Client) CreateJob(ctx context.Context, job *models.Job) error {
	nowUnix := time.Now().Unix()

	query := `
		INSERT INTO jobs (title, department, experience_level, description, requirements,
			responsibilities, interview_template, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := c.db.ExecContext(ctx, query,
		job.Title,
		job.Department,
		job.ExperienceLevel,
		job.Description,
		marshalJSON(job.Requirements),
		marshalJSON(job.Responsibilities),
		job.InterviewTemplate,
		string(job.Status),
		nowUnix,
		nowUnix,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	job.ID, _ = res.LastInsertId()
	job.CreatedAt = time.Unix(nowUnix, 0).UTC()
	job.UpdatedAt = job.CreatedAt

	logger.Info("Job created", zap.Int64("job_id", job.ID), zap.String("title", job.Title))
	return nil
}

func (c *Client) GetJob(ctx context.Context, id int64) (*models.Job, error) {
	query := `
		SELECT id, title, department, experience_level, description, requirements,
			responsibilities, interview_template, status, created_at, updated_at
		FROM jobs WHERE id = ?
	`

	var (
		job                            models.Job
		requirements, responsibilities string
		createdAt, updatedAt           int64
	)

	err := c.db.QueryRowContext(ctx, query, id).Scan(
		&job.ID,
		&job.Title,
		&job.Department,
		&job.ExperienceLevel,
		&job.Description,
		&requirements,
		&responsibilities,
		&job.InterviewTemplate,
		&job.Status,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: job %d", storage.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	json.Unmarshal([]byte(requirements), &job.Requirements)
	json.Unmarshal([]byte(responsibilities), &job.Responsibilities)
	job.CreatedAt = time.Unix(createdAt, 0).UTC()
	job.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return &job, nil
}

func (c *Client) ListJobs(ctx context.Context) ([]models.Job, error) {
	query := `
		SELECT id, title, department, experience_level, description, requirements,
			responsibilities, interview_template, status, created_at, updated_at
		FROM jobs ORDER BY created_at DESC
	`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		var (
			job                            models.Job
			requirements, responsibilities string
			createdAt, updatedAt           int64
		)

		err := rows.Scan(
			&job.ID,
			&job.Title,
			&job.Department,
			&job.ExperienceLevel,
			&job.Description,
			&requirements,
			&responsibilities,
			&job.InterviewTemplate,
			&job.Status,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		json.Unmarshal([]byte(requirements), &job.Requirements)
		json.Unmarshal([]byte(responsibilities), &job.Responsibilities)
		job.CreatedAt = time.Unix(createdAt, 0).UTC()
		job.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

// ---- candidates ----

func (c *Client) CreateCandidate(ctx context.Context, cand *models.Candidate) error {
	nowUnix := time.Now().Unix()

	query := `
		INSERT INTO candidates (job_id, first_name, last_name, email, resume_text,
			linkedin_url, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := c.db.ExecContext(ctx, query,
		cand.JobID,
		cand.FirstName,
		cand.LastName,
		cand.Email,
		cand.ResumeText,
		cand.LinkedInURL,
		string(cand.Status),
		nowUnix,
		nowUnix,
	)
	if err != nil {
		return fmt.Errorf("failed to create candidate: %w", err)
	}

	cand.ID, _ = res.LastInsertId()
	cand.CreatedAt = time.Unix(nowUnix, 0).UTC()
	cand.UpdatedAt = cand.CreatedAt

	logger.Info("Candidate created",
		zap.Int64("candidate_id", cand.ID),
		zap.Int64("job_id", cand.JobID),
	)
	return nil
}

func (c *Client) GetCandidate(ctx context.Context, id int64) (*models.Candidate, error) {
	query := `
		SELECT id, job_id, first_name, last_name, email, resume_text, linkedin_url,
			status, created_at, updated_at
		FROM candidates WHERE id = ?
	`

	var (
		cand                 models.Candidate
		createdAt, updatedAt int64
	)

	err := c.db.QueryRowContext(ctx, query, id).Scan(
		&cand.ID,
		&cand.JobID,
		&cand.FirstName,
		&cand.LastName,
		&cand.Email,
		&cand.ResumeText,
		&cand.LinkedInURL,
		&cand.Status,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: candidate %d", storage.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}

	cand.CreatedAt = time.Unix(createdAt, 0).UTC()
	cand.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return &cand, nil
}

func (c *Client) ListCandidates(ctx context.Context, jobID int64) ([]models.Candidate, error) {
	query := `
		SELECT id, job_id, first_name, last_name, email, resume_text, linkedin_url,
			status, created_at, updated_at
		FROM candidates
	`
	args := []any{}
	if jobID > 0 {
		query += " WHERE job_id = ?"
		args = append(args, jobID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []models.Candidate
	for rows.Next() {
		var (
			cand                 models.Candidate
			createdAt, updatedAt int64
		)

		err := rows.Scan(
			&cand.ID,
			&cand.JobID,
			&cand.FirstName,
			&cand.LastName,
			&cand.Email,
			&cand.ResumeText,
			&cand.LinkedInURL,
			&cand.Status,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		cand.CreatedAt = time.Unix(createdAt, 0).UTC()
		cand.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		candidates = append(candidates, cand)
	}

	return candidates, rows.Err()
}

func (c *Client) UpdateCandidateStatus(ctx context.Context, id int64, status models.CandidateStatus) error {
	query := `UPDATE candidates SET status = ?, updated_at = ? WHERE id = ?`

	res, err := c.db.ExecContext(ctx, query, string(status), time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to update candidate status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: candidate %d", storage.ErrNotFound, id)
	}

	logger.Debug("Candidate status updated",
		zap.Int64("candidate_id", id),
		zap.String("status", string(status)),
	)
	return nil
}

// ---- interviews ----

func (c *Client) CreateInterview(ctx context.Context, iv *models.Interview) error {
	nowUnix := time.Now().Unix()

	query := `
		INSERT INTO interviews (session_id, job_id, candidate_id, template_name, status,
			transcript, current_turn_index, job_context, candidate_context, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := c.db.ExecContext(ctx, query,
		iv.SessionID,
		iv.JobID,
		iv.CandidateID,
		iv.TemplateName,
		string(iv.Status),
		marshalJSON(iv.Transcript),
		iv.CurrentTurnIndex,
		marshalJSON(iv.JobContext),
		marshalJSON(iv.CandidateContext),
		nowUnix,
	)
	if err != nil {
		return fmt.Errorf("failed to create interview: %w", err)
	}

	iv.ID, _ = res.LastInsertId()
	iv.CreatedAt = time.Unix(nowUnix, 0).UTC()

	logger.Info("Interview created",
		zap.Int64("interview_id", iv.ID),
		zap.String("session_id", iv.SessionID),
	)
	return nil
}

func (c *Client) GetInterview(ctx context.Context, id int64) (*models.Interview, error) {
	return c.getInterview(ctx, "id = ?", id)
}

func (c *Client) GetInterviewBySession(ctx context.Context, sessionID string) (*models.Interview, error) {
	return c.getInterview(ctx, "session_id = ?", sessionID)
}

func (c *Client) getInterview(ctx context.Context, where string, arg any) (*models.Interview, error) {
	query := `
		SELECT id, session_id, job_id, candidate_id, template_name, status, transcript,
			current_turn_index, job_context, candidate_context, started_at, completed_at,
			duration_seconds, created_at
		FROM interviews WHERE ` + where

	var (
		iv                                    models.Interview
		transcript, jobContext, candidateCtx  string
		startedAt, completedAt                sql.NullInt64
		createdAt                             int64
	)

	err := c.db.QueryRowContext(ctx, query, arg).Scan(
		&iv.ID,
		&iv.SessionID,
		&iv.JobID,
		&iv.CandidateID,
		&iv.TemplateName,
		&iv.Status,
		&transcript,
		&iv.CurrentTurnIndex,
		&jobContext,
		&candidateCtx,
		&startedAt,
		&completedAt,
		&iv.DurationSeconds,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: interview %v", storage.ErrNotFound, arg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get interview: %w", err)
	}

	json.Unmarshal([]byte(transcript), &iv.Transcript)
	json.Unmarshal([]byte(jobContext), &iv.JobContext)
	json.Unmarshal([]byte(candidateCtx), &iv.CandidateContext)
	iv.StartedAt = timeOrNil(startedAt)
	iv.CompletedAt = timeOrNil(completedAt)
	iv.CreatedAt = time.Unix(createdAt, 0).UTC()

	return &iv, nil
}

func (c *Client) SaveInterview(ctx context.Context, iv *models.Interview) error {
	query := `
		UPDATE interviews SET status = ?, transcript = ?, current_turn_index = ?,
			started_at = ?, completed_at = ?, duration_seconds = ?
		WHERE id = ?
	`

	res, err := c.db.ExecContext(ctx, query,
		string(iv.Status),
		marshalJSON(iv.Transcript),
		iv.CurrentTurnIndex,
		unixOrNil(iv.StartedAt),
		unixOrNil(iv.CompletedAt),
		iv.DurationSeconds,
		iv.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to save interview: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: interview %d", storage.ErrNotFound, iv.ID)
	}

	return nil
}

func (c *Client) ListInterviews(ctx context.Context, candidateID int64) ([]models.Interview, error) {
	query := `
		SELECT id, session_id, job_id, candidate_id, template_name, status, transcript,
			current_turn_index, job_context, candidate_context, started_at, completed_at,
			duration_seconds, created_at
		FROM interviews
	`
	args := []any{}
	if candidateID > 0 {
		query += " WHERE candidate_id = ?"
		args = append(args, candidateID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	defer rows.Close()

	var interviews []models.Interview
	for rows.Next() {
		var (
			iv                                   models.Interview
			transcript, jobContext, candidateCtx string
			startedAt, completedAt               sql.NullInt64
			createdAt                            int64
		)

		err := rows.Scan(
			&iv.ID,
			&iv.SessionID,
			&iv.JobID,
			&iv.CandidateID,
			&iv.TemplateName,
			&iv.Status,
			&transcript,
			&iv.CurrentTurnIndex,
			&jobContext,
			&candidateCtx,
			&startedAt,
			&completedAt,
			&iv.DurationSeconds,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		json.Unmarshal([]byte(transcript), &iv.Transcript)
		json.Unmarshal([]byte(jobContext), &iv.JobContext)
		json.Unmarshal([]byte(candidateCtx), &iv.CandidateContext)
		iv.StartedAt = timeOrNil(startedAt)
		iv.CompletedAt = timeOrNil(completedAt)
		iv.CreatedAt = time.Unix(createdAt, 0).UTC()
		interviews = append(interviews, iv)
	}

	return interviews, rows.Err()
}

// ---- dimension scores ----

func (c *Client) ListDimensionScores(ctx context.Context, interviewID int64) ([]models.DimensionScore, error) {
	query := `
		SELECT id, interview_id, dimension_name, score, max_score, reasoning, evidence,
			keyword_hits, created_at, updated_at
		FROM dimension_scores WHERE interview_id = ? ORDER BY id
	`

	rows, err := c.db.QueryContext(ctx, query, interviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dimension scores: %w", err)
	}
	defer rows.Close()

	var scores []models.DimensionScore
	for rows.Next() {
		var (
			ds                    models.DimensionScore
			evidence, keywordHits string
			createdAt, updatedAt  int64
		)

		err := rows.Scan(
			&ds.ID,
			&ds.InterviewID,
			&ds.DimensionName,
			&ds.Score,
			&ds.MaxScore,
			&ds.Reasoning,
			&evidence,
			&keywordHits,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		json.Unmarshal([]byte(evidence), &ds.Evidence)
		json.Unmarshal([]byte(keywordHits), &ds.KeywordHits)
		ds.CreatedAt = time.Unix(createdAt, 0).UTC()
		ds.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		scores = append(scores, ds)
	}

	return scores, rows.Err()
}

func (c *Client) UpsertDimensionScore(ctx context.Context, ds *models.DimensionScore) error {
	nowUnix := time.Now().Unix()

	query := `
		INSERT INTO dimension_scores (interview_id, dimension_name, score, max_score,
			reasoning, evidence, keyword_hits, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(interview_id, dimension_name) DO UPDATE SET
			score = excluded.score,
			reasoning = excluded.reasoning,
			evidence = excluded.evidence,
			keyword_hits = excluded.keyword_hits,
			updated_at = excluded.updated_at
	`

	_, err := c.db.ExecContext(ctx, query,
		ds.InterviewID,
		ds.DimensionName,
		ds.Score,
		ds.MaxScore,
		ds.Reasoning,
		marshalJSON(ds.Evidence),
		marshalJSON(ds.KeywordHits),
		nowUnix,
		nowUnix,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert dimension score: %w", err)
	}

	return nil
}

// ---- reports ----

func (c *Client) UpsertReport(ctx context.Context, report *models.Report) error {
	query := `
		INSERT INTO reports (interview_id, candidate_name, position, recommendation,
			overall_score, confidence_level, dimensions, strengths, concerns,
			notable_quotes, follow_ups, summary, transcript, duration_seconds, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(interview_id) DO UPDATE SET
			candidate_name = excluded.candidate_name,
			position = excluded.position,
			recommendation = excluded.recommendation,
			overall_score = excluded.overall_score,
			confidence_level = excluded.confidence_level,
			dimensions = excluded.dimensions,
			strengths = excluded.strengths,
			concerns = excluded.concerns,
			notable_quotes = excluded.notable_quotes,
			follow_ups = excluded.follow_ups,
			summary = excluded.summary,
			transcript = excluded.transcript,
			duration_seconds = excluded.duration_seconds,
			generated_at = excluded.generated_at
	`

	_, err := c.db.ExecContext(ctx, query,
		report.InterviewID,
		report.CandidateName,
		report.Position,
		string(report.Recommendation),
		report.OverallScore,
		report.ConfidenceLevel,
		marshalJSON(report.Dimensions),
		marshalJSON(report.Strengths),
		marshalJSON(report.Concerns),
		marshalJSON(report.NotableQuotes),
		marshalJSON(report.FollowUps),
		report.Summary,
		report.Transcript,
		report.DurationSeconds,
		report.GeneratedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert report: %w", err)
	}

	logger.Debug("Report upserted", zap.Int64("interview_id", report.InterviewID))
	return nil
}

func (c *Client) GetReport(ctx context.Context, interviewID int64) (*models.Report, error) {
	query := `
		SELECT id, interview_id, candidate_name, position, recommendation, overall_score,
			confidence_level, dimensions, strengths, concerns, notable_quotes, follow_ups,
			summary, transcript, duration_seconds, generated_at
		FROM reports WHERE interview_id = ?
	`

	var (
		report                                             models.Report
		dimensions, strengths, concerns, quotes, followUps string
		generatedAt                                        int64
	)

	err := c.db.QueryRowContext(ctx, query, interviewID).Scan(
		&report.ID,
		&report.InterviewID,
		&report.CandidateName,
		&report.Position,
		&report.Recommendation,
		&report.OverallScore,
		&report.ConfidenceLevel,
		&dimensions,
		&strengths,
		&concerns,
		&quotes,
		&followUps,
		&report.Summary,
		&report.Transcript,
		&report.DurationSeconds,
		&generatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: report for interview %d", storage.ErrNotFound, interviewID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	json.Unmarshal([]byte(dimensions), &report.Dimensions)
	json.Unmarshal([]byte(strengths), &report.Strengths)
	json.Unmarshal([]byte(concerns), &report.Concerns)
	json.Unmarshal([]byte(quotes), &report.NotableQuotes)
	json.Unmarshal([]byte(followUps), &report.FollowUps)
	report.GeneratedAt = time.Unix(generatedAt, 0).UTC()

	return &report, nil
}
