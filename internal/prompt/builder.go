// Package prompt builds the system/user message pairs sent to the
// language-model gateway: interview questions, answer grading, follow-up
// suggestions, and report summaries.
package prompt

import (
	"fmt"
	"strings"

	"github.com/ai-interviewer/backend/internal/llm"
	"github.com/ai-interviewer/backend/internal/rubric"
	"github.com/ai-interviewer/backend/internal/storage/models"
)

// TotalQuestions is the fixed interview length: the interview terminates
// after this many interviewer turns.
const TotalQuestions = 10

const resumeExcerptLimit = 500

type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

func bulletList(items []string) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

func interviewSystemPrompt(iv *models.Interview) string {
	job := iv.JobContext
	candidate := iv.CandidateContext

	return fmt.Sprintf(`You are an expert technical interviewer conducting an interview for the position of %s.

JOB DETAILS:
- Title: %s
- Department: %s
- Experience Level: %s
- Description: %s

KEY REQUIREMENTS:
%s
KEY RESPONSIBILITIES:
%s
CANDIDATE INFORMATION:
- Name: %s
- Resume highlights: %s

Your task is to conduct a thorough technical interview with approximately %d questions. Assess:
1. Technical knowledge relevant to the job requirements
2. Problem-solving abilities
3. Communication skills
4. Cultural fit and motivation
5. Depth of experience mentioned in their resume

IMPORTANT:
- Ask ONE question at a time
- Do NOT role-play or simulate the candidate's answers
- Wait for the candidate to respond before asking the next question
- Keep questions conversational but professional
- Build on their previous answers`,
		job.Title,
		job.Title,
		orDefault(job.Department, "Not specified"),
		orDefault(job.ExperienceLevel, "Not specified"),
		truncate(job.Description, 500),
		bulletList(job.Requirements),
		bulletList(job.Responsibilities),
		candidate.Name,
		truncate(candidate.ResumeExcerpt, resumeExcerptLimit),
		TotalQuestions,
	)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// OpeningQuestion builds the prompt that produces Turn 1.
func (b *Builder) OpeningQuestion(iv *models.Interview) []llm.Message {
	system := interviewSystemPrompt(iv) +
		"\n\nStart with a welcoming opening question about their background that ties to the job requirements."

	return []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: "Please ask your first interview question."},
	}
}

// NextQuestion builds the prompt for every subsequent interviewer turn: the
// system prompt plus the full transcript mapped onto assistant/user roles.
func (b *Builder) NextQuestion(iv *models.Interview) []llm.Message {
	messages := make([]llm.Message, 0, len(iv.Transcript)+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: interviewSystemPrompt(iv)})

	for _, turn := range iv.Transcript {
		role := llm.RoleUser
		if turn.Role == models.RoleInterviewer {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: turn.Content})
	}

	return messages
}

// Grading builds the evaluation prompt for one (question, answer) pair,
// enumerating every rubric dimension with its 1/3/5 exemplars and the strict
// JSON output contract.
func (b *Builder) Grading(question, answer string, rub *rubric.Rubric, expectedTopics []string) []llm.Message {
	var dims strings.Builder
	for _, d := range rub.Dimensions {
		dims.WriteString(fmt.Sprintf(
			"\n**%s** (weight: %g):\n%s\nKeywords to look for: %s\nScore 1: %s\nScore 3: %s\nScore 5: %s\n",
			d.Name,
			d.Weight,
			d.Description,
			strings.Join(d.Keywords, ", "),
			d.LevelDescription(1),
			d.LevelDescription(3),
			d.LevelDescription(5),
		))
	}

	topics := "General technical discussion"
	if len(expectedTopics) > 0 {
		topics = strings.Join(expectedTopics, ", ")
	}

	user := fmt.Sprintf(`You are an expert technical interviewer evaluating a candidate's answer.

**Question Asked:**
%s

**Candidate's Answer:**
%s

**Expected Topics:** %s

**Assessment Dimensions:**
%s
**Your Task:**
Evaluate this answer across ALL dimensions listed above. For each dimension:
1. Assign a score from 1-5 based on the rubric
2. Provide brief reasoning (2-3 sentences)
3. Extract 1-3 direct quotes or paraphrases as evidence

**Output Format (JSON):**
{
  "dimension_scores": {
    "<dimension name>": {
      "score": 3,
      "reasoning": "Demonstrates solid understanding...",
      "evidence": ["quote1", "quote2"]
    }
  },
  "overall_feedback": "Brief summary of answer quality"
}

Include every dimension. Provide ONLY the JSON output, no additional text.`,
		question, answer, topics, dims.String())

	return []llm.Message{
		{
			Role:    llm.RoleSystem,
			Content: "You are an expert technical interviewer. Evaluate answers objectively and provide scores with evidence.",
		},
		{Role: llm.RoleUser, Content: user},
	}
}

// FollowUp builds the prompt that produces one probing question for a
// borderline dimension.
func (b *Builder) FollowUp(score *models.DimensionScore, dim *rubric.Dimension) []llm.Message {
	user := fmt.Sprintf(`Based on a candidate who scored %.2f/5.0 in %s
(%s), suggest ONE specific follow-up question that would help assess this dimension more deeply.

Reasoning for current score: %s

Provide ONLY the question, no additional text.`,
		score.Score, score.DimensionName, dim.Description, score.Reasoning)

	return []llm.Message{
		{
			Role:    llm.RoleSystem,
			Content: "You are an expert technical interviewer. Generate precise, probing questions.",
		},
		{Role: llm.RoleUser, Content: user},
	}
}

// Summary builds the prompt for the report's executive summary.
func (b *Builder) Summary(iv *models.Interview, overallScore float64) []llm.Message {
	questionsAsked := 0
	for _, turn := range iv.Transcript {
		if turn.Role == models.RoleInterviewer {
			questionsAsked++
		}
	}

	user := fmt.Sprintf(`Interview for %s
Overall Score: %.2f/5.0
Questions Asked: %d

Generate a 2-3 sentence executive summary of this candidate's performance.`,
		orDefault(iv.JobContext.Title, "position"), overallScore, questionsAsked)

	return []llm.Message{
		{
			Role:    llm.RoleSystem,
			Content: "You are an expert technical interviewer writing concise summaries.",
		},
		{Role: llm.RoleUser, Content: user},
	}
}
