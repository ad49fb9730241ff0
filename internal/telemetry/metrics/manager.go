package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests                 *prometheus.CounterVec
	CounterHandleRequestPanic       prometheus.Counter
	CounterRateLimitedRequests      prometheus.Counter
	CounterAssistantCalls           prometheus.Counter
	CounterMessagesStored           prometheus.Counter
	CounterRecommendationsGenerated prometheus.Counter
	CounterSignups                  prometheus.Counter

	// gauges
	GaugeRequests   prometheus.Gauge
	GaugeLifeSignal prometheus.Gauge

	// histograms
	HistAssistantCallDuration prometheus.Histogram
	HistogramRequestDuration  *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("backend", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("backend", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterHandleRequestPanic := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "handle_request_panic",
		Help:      "The total number of serve request panics",
	})
	counterRateLimitedRequests := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rate_limited_requests",
		Help:      "The total number of rate limited requests",
	})
	counterAssistantCalls := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "assistant_calls",
		Help:      "The total number of calls to the chat completion API",
	})
	counterMessagesStored := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "messages_stored",
		Help:      "The total number of conversation messages stored",
	})
	counterRecommendationsGenerated := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "recommendations_generated",
		Help:      "The total number of workout recommendations generated",
	})
	counterSignups := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "signups",
		Help:      "The total number of new user signups",
	})

	gaugeRequests := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "current_requests",
		Help:      "Current number of requests served",
	})
	gaugeLifeSignal := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "life_signal",
		Help:      "Shows whether the service is alive",
	})

	histAssistantCallDuration := factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			Name:      "assistant_call_duration_seconds",
			Help:      "Duration of a single chat completion API round trip in seconds",
		},
	)
	histogramRequestDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_duration_seconds",
		Help:      "Histogram of response time for requests in seconds",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"route", "method", "status_code"})

	return &Manager{
		CounterRequests:                 counterRequests,
		CounterHandleRequestPanic:       counterHandleRequestPanic,
		CounterRateLimitedRequests:      counterRateLimitedRequests,
		CounterAssistantCalls:           counterAssistantCalls,
		CounterMessagesStored:           counterMessagesStored,
		CounterRecommendationsGenerated: counterRecommendationsGenerated,
		CounterSignups:                  counterSignups,
		GaugeRequests:                   gaugeRequests,
		GaugeLifeSignal:                 gaugeLifeSignal,
		HistAssistantCallDuration:       histAssistantCallDuration,
		HistogramRequestDuration:        histogramRequestDuration,
	}
}
