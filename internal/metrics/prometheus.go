package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	InterviewsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "interviewer_interviews_started_total",
			Help: "Total number of interviews started",
		},
	)

	InterviewsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interviewer_interviews_finished_total",
			Help: "Total number of interviews reaching a terminal state",
		},
		[]string{"status"},
	)

	ActiveInterviews = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "interviewer_active_interviews",
			Help: "Number of interviews currently in progress",
		},
	)

	TurnsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interviewer_turns_processed_total",
			Help: "Total conversation turns processed",
		},
		[]string{"role"},
	)

	TurnDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "interviewer_turn_duration_seconds",
			Help:    "Time to process one candidate turn end to end",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30},
		},
	)

	Recommendations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interviewer_recommendations_total",
			Help: "Hiring recommendations issued by generated reports",
		},
		[]string{"recommendation"},
	)

	ReportsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interviewer_reports_generated_total",
			Help: "Total evaluation reports generated",
		},
		[]string{"recommendation"},
	)

	DimensionScoreUpdates = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "interviewer_dimension_score_updates_total",
			Help: "Total running dimension score recalculations",
		},
	)

	EvaluationFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interviewer_evaluation_fallbacks_total",
			Help: "Answer evaluations that fell back to a neutral score",
		},
		[]string{"reason"},
	)

	EvaluationCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "interviewer_evaluation_cache_hits_total",
			Help: "Answer evaluations served from cache",
		},
	)

	LLMTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interviewer_llm_tokens_used",
			Help: "Total language-model tokens consumed",
		},
		[]string{"model", "type"},
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "interviewer_llm_request_duration_seconds",
			Help:    "Language-model request latency",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"operation"},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "interviewer_ws_connections",
			Help: "Open live-interview websocket connections",
		},
	)

	StreamFragments = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "interviewer_stream_fragments_total",
			Help: "Question fragments pushed over streaming connections",
		},
	)
)

func Init() {
	prometheus.MustRegister(InterviewsStarted)
	prometheus.MustRegister(InterviewsFinished)
	prometheus.MustRegister(ActiveInterviews)
	prometheus.MustRegister(TurnsProcessed)
	prometheus.MustRegister(TurnDuration)
	prometheus.MustRegister(Recommendations)
	prometheus.MustRegister(ReportsGenerated)
	prometheus.MustRegister(DimensionScoreUpdates)
	prometheus.MustRegister(EvaluationFallbacks)
	prometheus.MustRegister(EvaluationCacheHits)
	prometheus.MustRegister(LLMTokensUsed)
	prometheus.MustRegister(LLMRequestDuration)
	prometheus.MustRegister(WSConnections)
	prometheus.MustRegister(StreamFragments)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
