package assessment

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ai-interviewer/backend/internal/storage/models"
)

const transcriptDivider = "================================================================================"

var turnHeaderPattern = regexp.MustCompile(`^\[(\d+)\] (Interviewer|Candidate) \((.*)\):$`)

// RenderTranscript produces the role-tagged text rendering of the full
// conversation that ships inside the report.
func RenderTranscript(iv *models.Interview) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Interview Transcript - %s\n", iv.SessionID))
	started := ""
	if iv.StartedAt != nil {
		started = iv.StartedAt.UTC().Format(time.RFC3339)
	}
	b.WriteString(fmt.Sprintf("Started: %s\n", started))
	b.WriteString(transcriptDivider + "\n\n")

	for i, turn := range iv.Transcript {
		role := "Candidate"
		if turn.Role == models.RoleInterviewer {
			role = "Interviewer"
		}
		b.WriteString(fmt.Sprintf("[%d] %s (%s):\n", i+1, role, turn.Timestamp.UTC().Format(time.RFC3339)))
		b.WriteString(turn.Content)
		b.WriteString("\n\n")
	}

	return b.String()
}

// ParseTranscript reads a rendered transcript back into ordered turns,
// recovering role and content. Turn numbers are reassigned sequentially.
func ParseTranscript(rendered string) []models.Turn {
	lines := strings.Split(rendered, "\n")

	var turns []models.Turn
	var content []string
	flush := func() {
		if len(turns) == 0 {
			return
		}
		// Each rendered turn ends with a blank separator line.
		text := strings.Join(content, "\n")
		turns[len(turns)-1].Content = strings.TrimSuffix(text, "\n")
	}

	for _, line := range lines {
		m := turnHeaderPattern.FindStringSubmatch(line)
		if m == nil {
			if len(turns) > 0 {
				content = append(content, line)
			}
			continue
		}

		flush()
		content = content[:0]

		role := models.RoleCandidate
		if m[2] == "Interviewer" {
			role = models.RoleInterviewer
		}
		ts, _ := time.Parse(time.RFC3339, m[3])
		turns = append(turns, models.Turn{
			Role:       role,
			TurnNumber: len(turns) + 1,
			Timestamp:  ts,
		})
	}
	flush()

	for i := range turns {
		turns[i].Content = strings.TrimRight(turns[i].Content, "\n")
	}
	return turns
}
