package api

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vilaca/forge-gateway/internal/domain"
)

// Operation names used as metric labels and log fields.
const (
	OperationGetIssues       = "getIssues"
	OperationGetRepositories = "getRepositories"
	OperationCreateIssue     = "createIssue"
	OperationExecuteQuery    = "executeQuery"
)

const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

// Metrics holds the upstream and aggregation collectors.
type Metrics struct {
	requests            *prometheus.CounterVec
	duration            *prometheus.HistogramVec
	aggregationFailures *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "forge_gateway",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Upstream provider calls by source, operation and outcome.",
		}, []string{"source", "operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "forge_gateway",
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Upstream provider call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source", "operation", "outcome"}),
		aggregationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "forge_gateway",
			Subsystem: "aggregation",
			Name:      "failures_total",
			Help:      "Provider failures swallowed during aggregation.",
		}, []string{"source", "operation"}),
	}

	reg.MustRegister(m.requests, m.duration, m.aggregationFailures)
	return m
}

// ObserveAggregationFailure counts a provider failure that aggregation discarded.
func (m *Metrics) ObserveAggregationFailure(source, operation string) {
	m.aggregationFailures.WithLabelValues(source, operation).Inc()
}

func (m *Metrics) observe(source, operation string, start time.Time, err error) {
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeError
	}
	m.requests.WithLabelValues(source, operation, outcome).Inc()
	m.duration.WithLabelValues(source, operation, outcome).Observe(time.Since(start).Seconds())
}

// InstrumentedClient wraps a Client and records call counts and latency.
// Results and errors pass through unchanged.
// Follows Decorator pattern to add metrics without modifying the underlying client.
type InstrumentedClient struct {
	client  Client
	metrics *Metrics
}

// NewInstrumentedClient creates a new instrumented client wrapper.
func NewInstrumentedClient(client Client, metrics *Metrics) *InstrumentedClient {
	return &InstrumentedClient{
		client:  client,
		metrics: metrics,
	}
}

// Name returns the wrapped client's name.
func (c *InstrumentedClient) Name() string {
	return c.client.Name()
}

// GetIssues delegates to the wrapped client.
func (c *InstrumentedClient) GetIssues(ctx context.Context, params IssueParams) ([]domain.Issue, error) {
	start := time.Now()
	issues, err := c.client.GetIssues(ctx, params)
	c.metrics.observe(c.client.Name(), OperationGetIssues, start, err)
	return issues, err
}

// GetRepositories delegates to the wrapped client.
func (c *InstrumentedClient) GetRepositories(ctx context.Context, params RepositoryParams) ([]domain.Repository, error) {
	start := time.Now()
	repos, err := c.client.GetRepositories(ctx, params)
	c.metrics.observe(c.client.Name(), OperationGetRepositories, start, err)
	return repos, err
}

// CreateIssue delegates to the wrapped client.
func (c *InstrumentedClient) CreateIssue(ctx context.Context, params CreateIssueParams) (*domain.Issue, error) {
	start := time.Now()
	issue, err := c.client.CreateIssue(ctx, params)
	c.metrics.observe(c.client.Name(), OperationCreateIssue, start, err)
	return issue, err
}

// ExecuteQuery delegates to the wrapped client.
func (c *InstrumentedClient) ExecuteQuery(ctx context.Context, query string, variables map[string]any) (any, error) {
	start := time.Now()
	result, err := c.client.ExecuteQuery(ctx, query, variables)
	c.metrics.observe(c.client.Name(), OperationExecuteQuery, start, err)
	return result, err
}
