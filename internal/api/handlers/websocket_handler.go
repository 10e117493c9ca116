package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/ai-interviewer/backend/internal/interview"
	"github.com/ai-interviewer/backend/internal/metrics"
	"github.com/ai-interviewer/backend/pkg/logger"
)

// WebSocketHandler runs the live interview loop: the client announces
// readiness, answers arrive as candidate messages, and every interviewer
// question streams back fragment by fragment.
type WebSocketHandler struct {
	machine *interview.Machine
}

func NewWebSocketHandler(machine *interview.Machine) *WebSocketHandler {
	return &WebSocketHandler{machine: machine}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		h.sendError(c, "Invalid interview id")
		c.Close()
		return
	}

	metrics.WSConnections.Inc()
	logger.Info("Live interview connection established", zap.Int64("interview_id", id))

	defer func() {
		c.Close()
		metrics.WSConnections.Dec()
		logger.Info("Live interview connection closed", zap.Int64("interview_id", id))
	}()

	ctx := context.Background()

	for {
		var msg struct {
			Type    string `json:"type"`
			Content string `json:"content"`
		}

		if err := c.ReadJSON(&msg); err != nil {
			logger.Debug("Live interview read ended", zap.Int64("interview_id", id), zap.Error(err))
			return
		}

		switch msg.Type {
		case "ready":
			result, err := h.machine.Start(ctx, id)
			if err != nil {
				logger.Error("Failed to start live interview", zap.Int64("interview_id", id), zap.Error(err))
				h.sendError(c, err.Error())
				continue
			}
			h.sendQuestion(c, "ai_question", result)

		case "candidate_message":
			if msg.Content == "" {
				h.sendError(c, "Empty answer")
				continue
			}

			result, err := h.machine.RespondStream(ctx, id, msg.Content, func(fragment string) error {
				metrics.StreamFragments.Inc()
				return c.WriteJSON(map[string]interface{}{
					"type":    "stream_chunk",
					"content": fragment,
				})
			})
			if err != nil {
				logger.Error("Failed to process live answer", zap.Int64("interview_id", id), zap.Error(err))
				h.sendError(c, err.Error())
				continue
			}

			h.sendQuestion(c, "stream_complete", result)

			if result.IsComplete {
				return
			}

		default:
			h.sendError(c, "Unknown message type")
		}
	}
}

func (h *WebSocketHandler) sendQuestion(c *websocket.Conn, msgType string, result *interview.TurnResult) {
	msg := map[string]interface{}{
		"type":            msgType,
		"content":         result.Response,
		"question_number": result.QuestionNumber,
		"total_questions": result.TotalQuestions,
		"is_complete":     result.IsComplete,
	}

	if err := c.WriteJSON(msg); err != nil {
		logger.Warn("Failed to write live interview message", zap.Error(err))
	}
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	c.WriteJSON(map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	})
}
