// Package client implements the Go client for the Pandora file-analysis
// service. Each operation performs exactly one HTTP round trip against the
// remote REST API and returns a typed result or a typed failure; the client
// never retries and owns no background work.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pandora-analysis/gopandora/internal/dto"
)

const (
	// defaultUserAgent is the User-Agent header value sent with all API
	// requests unless overridden in the Config.
	defaultUserAgent = "gopandora/1.0"

	// maxErrorBody caps how much of a non-2xx response body is kept for
	// diagnostics.
	maxErrorBody = 64 * 1024
)

// API endpoint path segments.
const (
	pathRedisUp      = "redis_up"
	pathSubmit       = "submit"
	pathTask         = "task"
	pathTaskStatus   = "status"
	pathWorkerStatus = "workers/status"
	pathGetToken       = "api/get_token"
	pathSearch         = "api/search"
	pathStats          = "api/stats"
	pathWorkersStats   = "api/workers_stats"
	pathEnabledWorkers = "api/enabled_workers"
)

// Client provides methods for interacting with a Pandora instance. It owns
// the base URL and the HTTP session; construct one Client per instance. A
// Client is not safe for concurrent use from multiple goroutines.
type Client struct {
	baseURL    *url.URL
	userAgent  string
	apiKey     string
	httpClient *http.Client
	metrics    *requestMetrics
}

// SubmitOptions carries the optional parameters of a file submission.
type SubmitOptions struct {
	// Filename overrides the name reported to the service. Empty means the
	// base name of the submitted path.
	Filename string

	// ValiditySeconds is how long the returned seed stays valid. Zero means
	// the seed never expires.
	ValiditySeconds int

	// Password, when set, is forwarded so the service can open protected
	// archives.
	Password string
}

// NewClient creates a new API client with the given configuration.
// Returns an error if the configuration is nil or invalid.
func NewClient(config *Config) (*Client, error) {
	return NewClientWithHTTPClient(config, nil)
}

// NewClientWithHTTPClient creates a new API client with the given
// configuration and HTTP client. If httpClient is nil, a default HTTP client
// with the configured timeout is used. Injecting an *http.Client allows tests
// to supply transport doubles.
func NewClientWithHTTPClient(config *Config, httpClient *http.Client) (*Client, error) {
	if config == nil {
		return nil, errors.New("config cannot be nil")
	}

	cfg := *config
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: cannot parse instance URL: %w", err)
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		baseURL:    base,
		userAgent:  userAgent,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		metrics:    newRequestMetrics(),
	}, nil
}

// BaseURL returns the normalized instance URL the client queries.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// endpoint builds the absolute URL for the given path segments and query.
func (c *Client) endpoint(query url.Values, segments ...string) string {
	u := c.baseURL.JoinPath(segments...)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// doRequest performs one HTTP round trip and decodes the JSON response body
// into result when result is non-nil. A transport failure is reported as
// ServiceUnreachableError, a non-2xx response as ServiceError, and a 2xx body
// that cannot be decoded as MalformedResponseError.
func (c *Client) doRequest(ctx context.Context, method, fullURL, endpoint string, body io.Reader, contentType string, result any) error {
	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return err
	}

	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
	}

	done := c.metrics.start(ctx, endpoint, method)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		done(0, err)
		return &ServiceUnreachableError{URL: fullURL, Err: err}
	}
	defer resp.Body.Close()
	done(resp.StatusCode, nil)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &ServiceError{Status: resp.StatusCode, Body: string(raw)}
	}

	if result == nil {
		return nil
	}

	// Success bodies are read in full; details-mode worker reports can be
	// arbitrarily large.
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &MalformedResponseError{Endpoint: endpoint, Reason: "cannot read response body: " + err.Error()}
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return &MalformedResponseError{Endpoint: endpoint, Reason: "cannot decode JSON body: " + err.Error()}
	}

	return nil
}

// IsUp probes the instance root with a HEAD request and reports whether the
// instance answered with HTTP 200. Transport failures are reported as false,
// never as an error.
func (c *Client) IsUp(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL.String(), nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// RedisUp checks whether the queue/store backing the instance is reachable.
// Fails with ServiceUnreachableError if the HTTP layer cannot connect; never
// retries.
func (c *Client) RedisUp(ctx context.Context) (bool, error) {
	var wire struct {
		Up *bool `json:"up"`
	}
	if err := c.doRequest(ctx, http.MethodGet, c.endpoint(nil, pathRedisUp), pathRedisUp, nil, "", &wire); err != nil {
		return false, err
	}
	if wire.Up == nil {
		return false, &MalformedResponseError{Endpoint: pathRedisUp, Reason: "missing required field \"up\""}
	}
	return *wire.Up, nil
}

// SubmitFile reads the file at path and submits it for analysis. The file is
// read before any network I/O: a missing file fails with FileNotFoundError
// and an unreadable one with FileUnreadableError, in both cases without
// touching the network.
func (c *Client) SubmitFile(ctx context.Context, path string, opts SubmitOptions) (*dto.SubmissionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &FileNotFoundError{Path: path}
		}
		return nil, &FileUnreadableError{Path: path, Err: err}
	}

	if opts.Filename == "" {
		opts.Filename = filepath.Base(path)
	}
	return c.Submit(ctx, bytes.NewReader(data), opts)
}

// Submit sends the contents of r as a multipart form to the submission
// endpoint and returns the task id and seed of the new analysis task. A 2xx
// response missing either required field fails with MalformedResponseError.
func (c *Client) Submit(ctx context.Context, r io.Reader, opts SubmitOptions) (*dto.SubmissionResult, error) {
	if opts.Filename == "" {
		return nil, &InvalidArgumentsError{Reason: "a filename is required to submit from a reader"}
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", opts.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to encode multipart body: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to encode multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode multipart body: %w", err)
	}

	query := url.Values{}
	query.Set("validity", strconv.Itoa(opts.ValiditySeconds))
	if opts.Password != "" {
		query.Set("password", opts.Password)
	}

	var wire struct {
		TaskID *string `json:"taskId"`
		Seed   *string `json:"seed"`
		Link   string  `json:"link"`
		Error  string  `json:"error"`
	}
	fullURL := c.endpoint(query, pathSubmit)
	if err := c.doRequest(ctx, http.MethodPost, fullURL, pathSubmit, &body, mw.FormDataContentType(), &wire); err != nil {
		return nil, err
	}

	// The service reports submission rejections (quota, unsupported file)
	// inside a 2xx JSON body.
	if wire.Error != "" {
		return nil, &ServiceError{Status: http.StatusOK, Body: wire.Error}
	}
	if wire.TaskID == nil || *wire.TaskID == "" {
		return nil, &MalformedResponseError{Endpoint: pathSubmit, Reason: "missing required field \"taskId\""}
	}
	if wire.Seed == nil || *wire.Seed == "" {
		return nil, &MalformedResponseError{Endpoint: pathSubmit, Reason: "missing required field \"seed\""}
	}

	result := &dto.SubmissionResult{
		TaskID: *wire.TaskID,
		Seed:   *wire.Seed,
	}
	if wire.Link != "" {
		result.Link = c.resolveLink(wire.Link)
	}
	return result, nil
}

// resolveLink resolves a service-relative result link against the base URL.
func (c *Client) resolveLink(link string) string {
	ref, err := url.Parse(link)
	if err != nil {
		return link
	}
	return c.baseURL.ResolveReference(ref).String()
}

// TaskStatus queries the state of one task. The seed returned at submission
// time acts as the capability token for the query; the service rejects a task
// id presented without a valid seed. details toggles inclusion of the full
// per-worker payloads.
//
// Fails with TaskNotFoundError when the service reports no such task and
// ErrUnauthorized when the seed does not match.
func (c *Client) TaskStatus(ctx context.Context, taskID, seed string, details bool) (*dto.TaskStatus, error) {
	if taskID == "" {
		return nil, &InvalidArgumentsError{Reason: "a task id is required"}
	}

	query := url.Values{}
	if seed != "" {
		query.Set("seed", seed)
	}
	query.Set("details", boolParam(details))

	var wire struct {
		State   *string                     `json:"state"`
		Workers map[string]dto.WorkerReport `json:"workers"`
	}
	endpoint := pathTask + "/{taskId}/" + pathTaskStatus
	fullURL := c.endpoint(query, pathTask, taskID, pathTaskStatus)
	if err := c.doRequest(ctx, http.MethodGet, fullURL, endpoint, nil, "", &wire); err != nil {
		var svcErr *ServiceError
		if errors.As(err, &svcErr) {
			switch svcErr.Status {
			case http.StatusNotFound:
				return nil, &TaskNotFoundError{TaskID: taskID}
			case http.StatusUnauthorized, http.StatusForbidden:
				return nil, ErrUnauthorized
			}
		}
		return nil, err
	}

	if wire.State == nil {
		return nil, &MalformedResponseError{Endpoint: endpoint, Reason: "missing required field \"state\""}
	}

	return &dto.TaskStatus{
		TaskID:  taskID,
		State:   *wire.State,
		Workers: wire.Workers,
	}, nil
}

// WorkerStatus queries the status of the instance's analysis workers. Exactly
// one of workerName or allWorkers must be chosen; providing neither or both
// is a caller error reported as InvalidArgumentsError before any network
// call. details toggles inclusion of the full per-worker payloads.
func (c *Client) WorkerStatus(ctx context.Context, workerName string, allWorkers, details bool) (map[string]dto.WorkerReport, error) {
	if workerName != "" && allWorkers {
		return nil, &InvalidArgumentsError{Reason: "worker name and all-workers selection are mutually exclusive"}
	}
	if workerName == "" && !allWorkers {
		return nil, &InvalidArgumentsError{Reason: "either a worker name or the all-workers selection is required"}
	}

	query := url.Values{}
	if workerName != "" {
		query.Set("worker", workerName)
	}
	query.Set("all", boolParam(allWorkers))
	query.Set("details", boolParam(details))

	var reports map[string]dto.WorkerReport
	fullURL := c.endpoint(query, pathWorkerStatus)
	if err := c.doRequest(ctx, http.MethodGet, fullURL, pathWorkerStatus, nil, "", &reports); err != nil {
		var svcErr *ServiceError
		if errors.As(err, &svcErr) && (svcErr.Status == http.StatusUnauthorized || svcErr.Status == http.StatusForbidden) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if reports == nil {
		return nil, &MalformedResponseError{Endpoint: pathWorkerStatus, Reason: "expected a worker report mapping"}
	}
	return reports, nil
}

// GetAPIKey fetches the API key for the given user.
func (c *Client) GetAPIKey(ctx context.Context, username, password string) (string, error) {
	query := url.Values{}
	query.Set("username", username)
	query.Set("password", password)

	var wire dto.TokenResponse
	if err := c.doRequest(ctx, http.MethodGet, c.endpoint(query, pathGetToken), pathGetToken, nil, "", &wire); err != nil {
		return "", err
	}
	if wire.AuthKey == "" {
		if wire.Error != "" {
			return "", fmt.Errorf("%w: %s", ErrAuth, wire.Error)
		}
		return "", ErrAuth
	}
	return wire.AuthKey, nil
}

// InitAPIKey installs an API key on the session so that every subsequent
// request is authenticated. Either a key or a username/password pair must be
// given; with credentials, the key is fetched through GetAPIKey first.
func (c *Client) InitAPIKey(ctx context.Context, username, password, apikey string) error {
	switch {
	case apikey != "":
		c.apiKey = apikey
		return nil
	case username != "" && password != "":
		key, err := c.GetAPIKey(ctx, username, password)
		if err != nil {
			return err
		}
		c.apiKey = key
		return nil
	default:
		return fmt.Errorf("%w: username and password required", ErrAuth)
	}
}

// Search looks up a hash or a filename in the instance's tasks. The result
// payload is owned by the service and returned undecoded. Requires an
// authenticated session.
func (c *Client) Search(ctx context.Context, searchQuery string, limitDays int) (map[string]any, error) {
	if searchQuery == "" {
		return nil, &InvalidArgumentsError{Reason: "a search query is required"}
	}

	segments := []string{pathSearch, searchQuery}
	if limitDays > 0 {
		segments = append(segments, strconv.Itoa(limitDays))
	}

	var result map[string]any
	if err := c.doRequest(ctx, http.MethodGet, c.endpoint(nil, segments...), pathSearch, nil, "", &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Stats fetches an overview of what was submitted on the platform for the
// selected interval. Requires an authenticated session.
func (c *Client) Stats(ctx context.Context, q dto.StatsQuery) (map[string]any, error) {
	return c.statsRequest(ctx, []string{pathStats}, q)
}

// SubmitStats fetches the number of submissions for the selected interval.
// Requires an authenticated session.
func (c *Client) SubmitStats(ctx context.Context, q dto.StatsQuery) (map[string]any, error) {
	return c.statsRequest(ctx, []string{pathStats, "submit"}, q)
}

// WorkersStats fetches per-worker statistics for the selected interval. The
// period qualifiers nest the same way as Stats. Requires an authenticated
// session.
func (c *Client) WorkersStats(ctx context.Context, q dto.StatsQuery) (map[string]any, error) {
	return c.statsRequest(ctx, []string{pathWorkersStats}, q)
}

// EnabledWorkers lists the names of the workers enabled on the instance.
func (c *Client) EnabledWorkers(ctx context.Context) ([]string, error) {
	var workers []string
	if err := c.doRequest(ctx, http.MethodGet, c.endpoint(nil, pathEnabledWorkers), pathEnabledWorkers, nil, "", &workers); err != nil {
		return nil, err
	}
	if workers == nil {
		return nil, &MalformedResponseError{Endpoint: pathEnabledWorkers, Reason: "expected a worker name list"}
	}
	return workers, nil
}

func (c *Client) statsRequest(ctx context.Context, base []string, q dto.StatsQuery) (map[string]any, error) {
	segments, err := statsPath(base, q)
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if err := c.doRequest(ctx, http.MethodGet, c.endpoint(nil, segments...), base[0], nil, "", &result); err != nil {
		return nil, err
	}
	return result, nil
}

// statsPath builds the path segments for a stats query. The service expects
// the period components most-specific first, each qualifier optional:
// year/{year}, month/{month}/{year}, week/{week}/{year} and
// day/{day}/{month}/{year}.
func statsPath(base []string, q dto.StatsQuery) ([]string, error) {
	interval := q.Interval
	if interval == "" {
		interval = dto.IntervalYear
	}
	if !dto.ValidInterval(interval) {
		return nil, &InvalidArgumentsError{Reason: fmt.Sprintf("invalid stats interval %q", interval)}
	}

	segments := append(base, interval)
	switch interval {
	case dto.IntervalYear:
		if q.Year > 0 {
			segments = append(segments, strconv.Itoa(q.Year))
		}
	case dto.IntervalMonth:
		if q.Month > 0 {
			segments = append(segments, strconv.Itoa(q.Month))
			if q.Year > 0 {
				segments = append(segments, strconv.Itoa(q.Year))
			}
		}
	case dto.IntervalWeek:
		if q.Week > 0 {
			segments = append(segments, strconv.Itoa(q.Week))
			if q.Year > 0 {
				segments = append(segments, strconv.Itoa(q.Year))
			}
		}
	case dto.IntervalDay:
		if q.Day > 0 {
			segments = append(segments, strconv.Itoa(q.Day))
			if q.Month > 0 {
				segments = append(segments, strconv.Itoa(q.Month))
				if q.Year > 0 {
					segments = append(segments, strconv.Itoa(q.Year))
				}
			}
		}
	}
	return segments, nil
}

// boolParam renders a flag the way the service expects its query parameters.
func boolParam(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
