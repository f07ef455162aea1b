package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// AIGenerations counts generation calls by purpose (quiz, roadmap) and outcome.
	AIGenerations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learno_ai_generations_total",
			Help: "AI generation calls by purpose and outcome",
		},
		[]string{"purpose", "outcome"},
	)

	AIGenerationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "learno_ai_generation_duration_seconds",
			Help:    "Latency of AI generation calls",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"purpose"},
	)

	RoadmapFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "learno_roadmap_fallbacks_total",
			Help: "Roadmaps replaced by the default milestones",
		},
	)

	AnswerKeyFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "learno_answer_key_fallbacks_total",
			Help: "Questions whose stated correct answer matched no option",
		},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(AIGenerations)
		prometheus.MustRegister(AIGenerationDuration)
		prometheus.MustRegister(RoadmapFallbacks)
		prometheus.MustRegister(AnswerKeyFallbacks)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

// ObserveGeneration records one AI call.
func ObserveGeneration(purpose string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	AIGenerations.WithLabelValues(purpose, outcome).Inc()
	AIGenerationDuration.WithLabelValues(purpose).Observe(time.Since(start).Seconds())
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
