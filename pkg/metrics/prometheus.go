// Package metrics provides Prometheus metrics for the hearts game server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the hearts service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Game Metrics - what players actually do
	gamesStarted    prometheus.Counter
	gameOutcomes    *prometheus.CounterVec
	gameSeconds     prometheus.Histogram
	targetsSpawned  prometheus.Counter
	targetsResolved *prometheus.CounterVec
	pointsAwarded   prometheus.Counter
	cuesPlayed      *prometheus.CounterVec
	letterResponses *prometheus.CounterVec

	// Session Metrics
	sessionsActive   prometheus.Gauge
	sessionsOpened   prometheus.Counter
	sessionsRejected prometheus.Counter
	storeRecords     prometheus.Gauge

	// WebSocket Metrics
	wsConnections prometheus.Gauge
	wsMessages    *prometheus.CounterVec
	wsDuplicates  prometheus.Counter

	// Inbox Metrics - per-session task queues
	inboxCapacity    prometheus.Gauge
	inboxDepth       prometheus.Gauge
	inboxEnqueued    prometheus.Counter
	inboxDropped     *prometheus.CounterVec
	taskLatency      prometheus.Histogram
	taskPanics       prometheus.Counter
	timerTasksPosted prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "hearts",
		subsystem:        "game",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.constLabels)

	// Game Metrics
	m.gamesStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("started_total"),
		Help:        "Total number of rounds started",
		ConstLabels: labels,
	})

	m.gameOutcomes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("outcomes_total"),
		Help:        "Finished rounds by outcome (won, timed_out)",
		ConstLabels: labels,
	}, []string{"outcome"})

	m.gameSeconds = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("round_seconds"),
		Help:        "Seconds elapsed on the countdown when a round finished",
		Buckets:     []float64{1, 2, 5, 10, 15, 20, 25, 30, 45, 60},
		ConstLabels: labels,
	})

	m.targetsSpawned = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("targets_spawned_total"),
		Help:        "Total number of hearts spawned",
		ConstLabels: labels,
	})

	m.targetsResolved = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("targets_resolved_total"),
		Help:        "Hearts removed from play by resolution (collected, missed, expired)",
		ConstLabels: labels,
	}, []string{"resolution"})

	m.pointsAwarded = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("points_awarded_total"),
		Help:        "Total points awarded across all rounds",
		ConstLabels: labels,
	})

	m.cuesPlayed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("cues_total"),
		Help:        "Sound cues emitted by kind",
		ConstLabels: labels,
	}, []string{"cue"})

	m.letterResponses = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("letter_responses_total"),
		Help:        "Letter responses by choice",
		ConstLabels: labels,
	}, []string{"choice"})

	// Session Metrics
	m.sessionsActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("sessions_active"),
		Help:        "Currently open game sessions",
		ConstLabels: labels,
	})

	m.sessionsOpened = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("sessions_opened_total"),
		Help:        "Total number of sessions opened",
		ConstLabels: labels,
	})

	m.sessionsRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("sessions_rejected_total"),
		Help:        "Sessions refused because the server was at capacity",
		ConstLabels: labels,
	})

	m.storeRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("store_records"),
		Help:        "Records held by the session store",
		ConstLabels: labels,
	})

	// WebSocket Metrics
	m.wsConnections = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("ws_connections"),
		Help:        "Open websocket connections",
		ConstLabels: labels,
	})

	m.wsMessages = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("ws_messages_total"),
		Help:        "Websocket messages by direction and type",
		ConstLabels: labels,
	}, []string{"direction", "type"})

	m.wsDuplicates = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("ws_duplicate_collects_total"),
		Help:        "Collect requests dropped as duplicates",
		ConstLabels: labels,
	})

	// Inbox Metrics
	m.inboxCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("inbox_capacity"),
		Help:        "Configured capacity of a session inbox",
		ConstLabels: labels,
	})

	m.inboxDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("inbox_depth"),
		Help:        "Tasks waiting in the most recently touched session inbox",
		ConstLabels: labels,
	})

	m.inboxEnqueued = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("inbox_enqueued_total"),
		Help:        "Tasks accepted by session inboxes",
		ConstLabels: labels,
	})

	m.inboxDropped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("inbox_dropped_total"),
		Help:        "Tasks refused by session inboxes by reason",
		ConstLabels: labels,
	}, []string{"reason"})

	m.taskLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("task_latency_milliseconds"),
		Help:        "Time from enqueue to completion of a session task",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.taskPanics = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("task_panics_total"),
		Help:        "Session tasks that panicked and were recovered",
		ConstLabels: labels,
	})

	m.timerTasksPosted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("timer_tasks_total"),
		Help:        "Timer callbacks posted onto session loops",
		ConstLabels: labels,
	})

	// HTTP Performance Metrics
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_requests_total"),
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_request_duration_milliseconds"),
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// Error Metrics
	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_component_total"),
			Help:        "Errors by component and error type",
			ConstLabels: labels,
		},
		[]string{"component", "error_type"},
	)

	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_type_total"),
			Help:        "Errors by type and severity",
			ConstLabels: labels,
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_endpoint_total"),
			Help:        "Errors by endpoint, method and error type",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("error_latency_milliseconds"),
			Help:        "Latency of operations that resulted in errors",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"component", "error_type"},
	)

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_memory_usage_bytes"),
		Help:        "System memory usage in bytes",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_goroutine_count"),
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_gc_pause_time_milliseconds"),
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: labels,
	})
}

// Game Metrics Functions.

// RecordGameStarted increments the rounds started counter.
func RecordGameStarted() {
	globalManager.gamesStarted.Inc()
}

// RecordGameOutcome records a finished round and how long its countdown ran.
func RecordGameOutcome(outcome string, elapsedSeconds float64) {
	globalManager.gameOutcomes.WithLabelValues(outcome).Inc()
	globalManager.gameSeconds.Observe(elapsedSeconds)
}

// RecordTargetSpawned increments the spawned hearts counter.
func RecordTargetSpawned() {
	globalManager.targetsSpawned.Inc()
}

// RecordTargetResolved records how a heart left play.
func RecordTargetResolved(resolution string) {
	globalManager.targetsResolved.WithLabelValues(resolution).Inc()
}

// RecordPointsAwarded adds awarded points.
func RecordPointsAwarded(points int) {
	globalManager.pointsAwarded.Add(float64(points))
}

// RecordCue increments the cue counter for kind.
func RecordCue(cue string) {
	globalManager.cuesPlayed.WithLabelValues(cue).Inc()
}

// RecordLetterResponse increments the letter responses counter for choice.
func RecordLetterResponse(choice string) {
	globalManager.letterResponses.WithLabelValues(choice).Inc()
}

// Session Metrics Functions.

// UpdateSessionsActive sets the open sessions gauge.
func UpdateSessionsActive(count int) {
	globalManager.sessionsActive.Set(float64(count))
}

// RecordSessionOpened increments the opened sessions counter.
func RecordSessionOpened() {
	globalManager.sessionsOpened.Inc()
}

// RecordSessionRejected increments the rejected sessions counter.
func RecordSessionRejected() {
	globalManager.sessionsRejected.Inc()
}

// UpdateStoreRecords sets the number of records in the session store.
func UpdateStoreRecords(count int) {
	globalManager.storeRecords.Set(float64(count))
}

// WebSocket Metrics Functions.

// UpdateWSConnections adjusts the open connections gauge by delta.
func UpdateWSConnections(delta int) {
	globalManager.wsConnections.Add(float64(delta))
}

// RecordWSMessage counts a websocket message; direction is "in" or "out".
func RecordWSMessage(direction, msgType string) {
	globalManager.wsMessages.WithLabelValues(direction, msgType).Inc()
}

// RecordWSDuplicate counts a dropped duplicate collect.
func RecordWSDuplicate() {
	globalManager.wsDuplicates.Inc()
}

// Inbox Metrics Functions.

// UpdateInboxCapacity sets the configured inbox capacity.
func UpdateInboxCapacity(capacity int) {
	globalManager.inboxCapacity.Set(float64(capacity))
}

// UpdateInboxDepth sets the current inbox depth.
func UpdateInboxDepth(depth int) {
	globalManager.inboxDepth.Set(float64(depth))
}

// RecordInboxEnqueue increments the accepted tasks counter.
func RecordInboxEnqueue() {
	globalManager.inboxEnqueued.Inc()
}

// RecordInboxDropped counts a refused task.
func RecordInboxDropped(reason string) {
	globalManager.inboxDropped.WithLabelValues(reason).Inc()
}

// RecordTaskLatency records enqueue-to-done latency in milliseconds.
func RecordTaskLatency(latencyMs float64) {
	globalManager.taskLatency.Observe(latencyMs)
}

// RecordTaskPanic increments the recovered panics counter.
func RecordTaskPanic() {
	globalManager.taskPanics.Inc()
}

// RecordTimerTask increments the timer callbacks counter.
func RecordTimerTask() {
	globalManager.timerTasksPosted.Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
