package validation

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var scriptPattern = regexp.MustCompile(`(?i)(<script|<iframe|javascript:|onerror=|onload=|onclick=)`)

type Config struct {
	MaxAnswerLength     int
	AllowedContentTypes []string
	Logger              *zap.Logger
}

// Middleware enforces content-type and payload rules before requests reach
// the handlers. Candidate answers get the strictest treatment since they are
// free-form text echoed back into prompts and reports.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxAnswerLength == 0 {
		cfg.MaxAnswerLength = 10000
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{"application/json"}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() == "POST" || c.Method() == "PUT" {
			contentType := c.Get("Content-Type")
			if contentType != "" && !allowedContentType(contentType, cfg.AllowedContentTypes) {
				return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
					"error": "Unsupported content type",
				})
			}
		}

		if c.Method() == "POST" && strings.HasSuffix(c.Path(), "/respond") {
			var req map[string]interface{}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}

			answer, ok := req["answer"].(string)
			if !ok || strings.TrimSpace(answer) == "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Answer is required and must be a string",
				})
			}

			if len(answer) > cfg.MaxAnswerLength {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Answer exceeds maximum length",
				})
			}

			if scriptPattern.MatchString(answer) {
				cfg.Logger.Warn("Markup stripped from candidate answer",
					zap.String("ip", c.IP()),
					zap.String("path", c.Path()),
				)
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid answer content",
				})
			}
		}

		return c.Next()
	}
}

func allowedContentType(contentType string, allowed []string) bool {
	for _, a := range allowed {
		if strings.Contains(contentType, a) {
			return true
		}
	}
	return false
}
