package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Endpoint is the normalized name of a GitHub API endpoint
type Endpoint string

const (
	EndpointRepositories Endpoint = "user_repos"
	EndpointRuns         Endpoint = "workflow_runs"
	EndpointJobs         Endpoint = "run_jobs"
	EndpointTiming       Endpoint = "run_timing"
	EndpointOther        Endpoint = "other"
)

const (
	ResultCompleted = "completed"
	ResultFailed    = "failed"
)

var (
	_ prometheus.Collector = new(Collector)

	requestDurationBuckets = []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}
)

// Collector tracks API traffic and collection progress.
// A nil *Collector is valid and records nothing.
type Collector struct {
	requests             *prometheus.CounterVec
	durations            *prometheus.HistogramVec
	retries              *prometheus.CounterVec
	rateLimitWaits       prometheus.Counter
	rateLimitWaitSeconds prometheus.Counter
	repositories         *prometheus.CounterVec
}

// NewCollector creates a collector with the default duration buckets
func NewCollector() *Collector {
	return newCollectorWithBuckets(requestDurationBuckets)
}

func newCollectorWithBuckets(buckets []float64) *Collector {
	return &Collector{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "actions_usage_api_requests_total",
				Help: "The total number of GitHub API requests, partitioned by endpoint and status.",
			},
			[]string{"endpoint", "status"},
		),
		durations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "actions_usage_api_request_duration_seconds",
				Help:    "Latency histogram of GitHub API requests, partitioned by endpoint and status class.",
				Buckets: buckets,
			},
			[]string{"endpoint", "status_class"},
		),
		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "actions_usage_api_request_retries_total",
				Help: "The total number of requests retried after a transport failure, partitioned by endpoint.",
			},
			[]string{"endpoint"},
		),
		rateLimitWaits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "actions_usage_rate_limit_waits_total",
			Help: "The total number of times a request waited for the API rate limit to reset.",
		}),
		rateLimitWaitSeconds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "actions_usage_rate_limit_wait_seconds_total",
			Help: "The total time spent waiting for the API rate limit to reset.",
		}),
		repositories: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "actions_usage_repositories_total",
				Help: "The total number of processed repositories, partitioned by result.",
			},
			[]string{"result"},
		),
	}
}

// ObserveRequest records a completed HTTP exchange
func (c *Collector) ObserveRequest(endpoint Endpoint, status int, duration time.Duration) {
	if c == nil {
		return
	}

	c.requests.WithLabelValues(string(endpoint), strconv.Itoa(status)).Inc()
	c.durations.WithLabelValues(string(endpoint), statusClass(status)).Observe(duration.Seconds())
}

// AddRetry records a retry after a transport failure
func (c *Collector) AddRetry(endpoint Endpoint) {
	if c == nil {
		return
	}
	c.retries.WithLabelValues(string(endpoint)).Inc()
}

// ObserveRateLimitWait records a sleep until the rate limit window resets
func (c *Collector) ObserveRateLimitWait(wait time.Duration) {
	if c == nil {
		return
	}
	c.rateLimitWaits.Inc()
	c.rateLimitWaitSeconds.Add(wait.Seconds())
}

// RepositoryDone records the outcome of one repository task
func (c *Collector) RepositoryDone(err error) {
	if c == nil {
		return
	}

	result := ResultCompleted
	if err != nil {
		result = ResultFailed
	}
	c.repositories.WithLabelValues(result).Inc()
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.requests.Describe(ch)
	c.durations.Describe(ch)
	c.retries.Describe(ch)
	c.rateLimitWaits.Describe(ch)
	c.rateLimitWaitSeconds.Describe(ch)
	c.repositories.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.requests.Collect(ch)
	c.durations.Collect(ch)
	c.retries.Collect(ch)
	c.rateLimitWaits.Collect(ch)
	c.rateLimitWaitSeconds.Collect(ch)
	c.repositories.Collect(ch)
}

// EndpointFor maps a request path to its endpoint name so repository and run
// identifiers do not end up in label values.
func EndpointFor(path string) Endpoint {
	path = strings.TrimSuffix(path, "/")

	switch {
	case strings.HasSuffix(path, "/user/repos"):
		return EndpointRepositories
	case strings.HasSuffix(path, "/actions/runs"):
		return EndpointRuns
	case strings.HasSuffix(path, "/jobs") && strings.Contains(path, "/actions/runs/"):
		return EndpointJobs
	case strings.HasSuffix(path, "/timing") && strings.Contains(path, "/actions/runs/"):
		return EndpointTiming
	default:
		return EndpointOther
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	case status >= 100:
		return "1xx"
	default:
		return "unknown"
	}
}
