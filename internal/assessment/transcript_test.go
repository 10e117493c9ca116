package assessment

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-interviewer/backend/internal/storage/models"
)

func transcriptFixture() *models.Interview {
	started := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	return &models.Interview{
		SessionID: "sess-42",
		StartedAt: &started,
		Transcript: []models.Turn{
			{Role: models.RoleInterviewer, Content: "Tell me about your background.", TurnNumber: 1, Timestamp: started},
			{Role: models.RoleCandidate, Content: "I spent four years on payments infrastructure.\nMostly Go services.", TurnNumber: 2, Timestamp: started.Add(time.Minute)},
			{Role: models.RoleInterviewer, Content: "What was the hardest incident?", TurnNumber: 3, Timestamp: started.Add(2 * time.Minute)},
		},
	}
}

func TestRenderTranscript(t *testing.T) {
	rendered := RenderTranscript(transcriptFixture())

	assert.True(t, strings.HasPrefix(rendered, "Interview Transcript - sess-42\n"))
	assert.Contains(t, rendered, "Started: 2026-03-10T14:00:00Z")
	assert.Contains(t, rendered, strings.Repeat("=", 80))
	assert.Contains(t, rendered, "[1] Interviewer (2026-03-10T14:00:00Z):\nTell me about your background.")
	assert.Contains(t, rendered, "[2] Candidate (2026-03-10T14:01:00Z):")
	assert.Contains(t, rendered, "Mostly Go services.")
}

func TestTranscriptRoundTrip(t *testing.T) {
	iv := transcriptFixture()
	turns := ParseTranscript(RenderTranscript(iv))

	require.Len(t, turns, len(iv.Transcript))
	for i, turn := range turns {
		assert.Equal(t, iv.Transcript[i].Role, turn.Role, "turn %d role", i)
		assert.Equal(t, iv.Transcript[i].Content, turn.Content, "turn %d content", i)
		assert.Equal(t, i+1, turn.TurnNumber)
	}
}

func TestParseTranscriptIgnoresHeader(t *testing.T) {
	turns := ParseTranscript("Interview Transcript - x\nStarted: \n" + strings.Repeat("=", 80) + "\n\n")
	assert.Empty(t, turns)
}

func TestRenderTranscriptUnstarted(t *testing.T) {
	iv := &models.Interview{SessionID: "sess-0"}
	rendered := RenderTranscript(iv)
	assert.Contains(t, rendered, "Started: \n")
}
