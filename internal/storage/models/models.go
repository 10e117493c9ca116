package models

import "time"

// InterviewStatus is the closed status enumeration for an interview.
// Any textual representation on the wire or in SQLite uses these exact values.
type InterviewStatus string

const (
	StatusPending    InterviewStatus = "pending"
	StatusInProgress InterviewStatus = "in_progress"
	StatusCompleted  InterviewStatus = "completed"
	StatusCancelled  InterviewStatus = "cancelled"
	StatusError      InterviewStatus = "error"
)

// Terminal reports whether no further transitions are allowed from s.
func (s InterviewStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusError
}

// TurnRole tags one side of the conversation.
type TurnRole string

const (
	RoleInterviewer TurnRole = "interviewer"
	RoleCandidate   TurnRole = "candidate"
)

// Turn is a single message in the transcript. Turns are append-only and
// never reordered after creation.
type Turn struct {
	Role       TurnRole  `json:"role"`
	Content    string    `json:"content"`
	TurnNumber int       `json:"turn_number"`
	Timestamp  time.Time `json:"timestamp"`
}

// JobContext is the immutable job snapshot taken when the interview is created.
type JobContext struct {
	Title            string   `json:"title"`
	Department       string   `json:"department,omitempty"`
	ExperienceLevel  string   `json:"experience_level,omitempty"`
	Description      string   `json:"description,omitempty"`
	Requirements     []string `json:"requirements,omitempty"`
	Responsibilities []string `json:"responsibilities,omitempty"`
}

// CandidateContext is the immutable candidate snapshot taken when the
// interview is created.
type CandidateContext struct {
	Name          string `json:"name"`
	Email         string `json:"email,omitempty"`
	ResumeExcerpt string `json:"resume_excerpt,omitempty"`
	LinkedInURL   string `json:"linkedin_url,omitempty"`
}

type Interview struct {
	ID               int64
	SessionID        string
	JobID            int64
	CandidateID      int64
	TemplateName     string
	Status           InterviewStatus
	Transcript       []Turn
	CurrentTurnIndex int
	JobContext       JobContext
	CandidateContext CandidateContext
	StartedAt        *time.Time
	CompletedAt      *time.Time
	DurationSeconds  int
	CreatedAt        time.Time
}

// LastInterviewerTurn returns the most recent interviewer turn, searching
// backward through the transcript. The second return is false when no
// interviewer turn exists yet.
func (iv *Interview) LastInterviewerTurn() (Turn, bool) {
	for i := len(iv.Transcript) - 1; i >= 0; i-- {
		if iv.Transcript[i].Role == RoleInterviewer {
			return iv.Transcript[i], true
		}
	}
	return Turn{}, false
}

// CandidateTurns counts completed answers in the transcript.
func (iv *Interview) CandidateTurns() int {
	n := 0
	for _, t := range iv.Transcript {
		if t.Role == RoleCandidate {
			n++
		}
	}
	return n
}

// MaxDimensionScore is the fixed upper bound of the scoring scale.
const MaxDimensionScore = 5.0

// MaxEvidencePerDimension caps the per-dimension evidence list so very long
// interviews cannot grow interview and report payloads without bound.
const MaxEvidencePerDimension = 20

// DimensionScore is the running assessment for one rubric dimension of one
// interview. Evidence accumulates (capped to the most recent entries);
// reasoning holds only the latest judgment.
type DimensionScore struct {
	ID            int64
	InterviewID   int64
	DimensionName string
	Score         float64
	MaxScore      float64
	Reasoning     string
	Evidence      []string
	KeywordHits   []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Recommendation is one of the four categorical hiring outcomes.
type Recommendation string

const (
	StrongHire   Recommendation = "STRONG_HIRE"
	Hire         Recommendation = "HIRE"
	NoHire       Recommendation = "NO_HIRE"
	StrongNoHire Recommendation = "STRONG_NO_HIRE"
)

// Report is the compiled evaluation of a completed interview. One per
// interview; regenerating overwrites the previous one.
type Report struct {
	ID              int64
	InterviewID     int64
	CandidateName   string
	Position        string
	Recommendation  Recommendation
	OverallScore    float64
	ConfidenceLevel string
	Dimensions      []ReportDimension
	Strengths       []ReportStrength
	Concerns        []ReportConcern
	NotableQuotes   []QuoteHighlight
	FollowUps       []FollowUpQuestion
	Summary         string
	Transcript      string
	DurationSeconds int
	GeneratedAt     time.Time
}

type ReportDimension struct {
	DimensionName string   `json:"dimension_name"`
	Score         float64  `json:"score"`
	MaxScore      float64  `json:"max_score"`
	Percentage    float64  `json:"percentage"`
	Level         string   `json:"level"`
	Reasoning     string   `json:"reasoning"`
	Evidence      []string `json:"evidence"`
}

type ReportStrength struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Evidence    []string `json:"evidence"`
}

type ReportConcern struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Evidence    []string `json:"evidence"`
	Severity    string   `json:"severity"`
}

type QuoteHighlight struct {
	Quote   string `json:"quote"`
	Context string `json:"context"`
}

type FollowUpQuestion struct {
	Question  string `json:"question"`
	Reason    string `json:"reason"`
	Dimension string `json:"dimension"`
}

// JobStatus mirrors the hiring pipeline state of a position.
type JobStatus string

const (
	JobActive JobStatus = "active"
	JobPaused JobStatus = "paused"
	JobClosed JobStatus = "closed"
)

type Job struct {
	ID                int64
	Title             string
	Department        string
	ExperienceLevel   string
	Description       string
	Requirements      []string
	Responsibilities  []string
	InterviewTemplate string
	Status            JobStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CandidateStatus advances with the candidate's interview lifecycle.
type CandidateStatus string

const (
	CandidateApplied             CandidateStatus = "applied"
	CandidateInterviewScheduled  CandidateStatus = "interview_scheduled"
	CandidateInterviewInProgress CandidateStatus = "interview_in_progress"
	CandidateInterviewCompleted  CandidateStatus = "interview_completed"
)

type Candidate struct {
	ID          int64
	JobID       int64
	FirstName   string
	LastName    string
	Email       string
	ResumeText  string
	LinkedInURL string
	Status      CandidateStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FullName joins first and last name for display and context snapshots.
func (c *Candidate) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
