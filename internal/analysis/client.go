package analysis

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/intake"
)

const (
	DefaultAPIURL  = "http://localhost:8000"
	DefaultTimeout = 2 * time.Minute

	analyzePath = "/api/analyze"
	healthPath  = "/health"
	userAgent   = "spigell/resume-matcher"

	defaultMaxLogLength = 200
)

// Client talks to the remote Analysis Service.
type Client struct {
	logger       *zap.Logger
	HTTPClient   *http.Client
	UserAgent    string
	APIURL       string
	MaxLogLength int
}

// Request is one analysis submission.
type Request struct {
	ID             string
	Resume         *intake.SelectedFile
	JobDescription string
}

// HealthStatus is the body of the service health endpoint.
type HealthStatus struct {
	Status string `json:"status"`
}

func New(logger *zap.Logger, apiURL string, timeout time.Duration) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	apiURL = strings.TrimRight(strings.TrimSpace(apiURL), "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		logger:       logger,
		APIURL:       apiURL,
		UserAgent:    userAgent,
		MaxLogLength: defaultMaxLogLength,
		HTTPClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Analyze uploads the resume and job description and returns the validated result.
// Errors are *TransportError, *ServerError or *MalformedResponseError.
func (c *Client) Analyze(ctx context.Context, req *Request) (*Result, error) {
	body, err := c.postAnalyze(ctx, req)
	if err != nil {
		return nil, err
	}

	return DecodeResult(body)
}

// Health probes the service health endpoint.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.getJSON(ctx, c.APIURL+healthPath, &status); err != nil {
		return nil, err
	}

	return &status, nil
}
