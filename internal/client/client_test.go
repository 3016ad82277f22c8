package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pandora-analysis/gopandora/internal/client"
	"github.com/pandora-analysis/gopandora/internal/dto"
)

// testConfig returns a valid config pointing at the given test server.
func testConfig(serverURL string) *client.Config {
	return &client.Config{
		BaseURL: serverURL,
		Timeout: 5 * time.Second,
	}
}

// writeTempFile creates a file with the given content under t.TempDir.
func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// TestNewClient_ValidConfig tests that a client can be created with valid configuration.
func TestNewClient_ValidConfig(t *testing.T) {
	t.Parallel()

	c, err := client.NewClient(testConfig("http://localhost:6100"))

	require.NoError(t, err, "NewClient should succeed with valid config")
	assert.NotNil(t, c, "Client should not be nil")
	assert.Equal(t, "http://localhost:6100/", c.BaseURL(), "base URL should be normalized with a trailing slash")
}

// TestNewClient_NilConfig tests that NewClient returns an error for nil config.
func TestNewClient_NilConfig(t *testing.T) {
	t.Parallel()

	c, err := client.NewClient(nil)

	require.Error(t, err, "NewClient should return error for nil config")
	assert.Nil(t, c, "Client should be nil on error")
	assert.Contains(t, err.Error(), "config cannot be nil", "Error should mention nil config")
}

// TestNewClient_NormalizesSchemelessURL tests that a URL without a scheme
// gets http:// prepended rather than being rejected.
func TestNewClient_NormalizesSchemelessURL(t *testing.T) {
	t.Parallel()

	c, err := client.NewClient(&client.Config{BaseURL: "pandora.example.org", Timeout: time.Second})

	require.NoError(t, err)
	assert.Equal(t, "http://pandora.example.org/", c.BaseURL())
}

// TestNewClient_InvalidConfig tests that NewClient returns an error for invalid config.
func TestNewClient_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		config *client.Config
		errMsg string
	}{
		{
			name:   "empty URL",
			config: &client.Config{BaseURL: "", Timeout: time.Second},
			errMsg: "instance URL cannot be empty",
		},
		{
			name:   "zero timeout",
			config: &client.Config{BaseURL: "http://localhost:6100", Timeout: 0},
			errMsg: "timeout must be positive",
		},
		{
			name:   "negative timeout",
			config: &client.Config{BaseURL: "http://localhost:6100", Timeout: -time.Second},
			errMsg: "timeout must be positive",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := client.NewClient(tt.config)

			require.Error(t, err, "NewClient should return error for invalid config")
			assert.Nil(t, c, "Client should be nil on error")
			assert.Contains(t, err.Error(), tt.errMsg, "Error should contain expected message")
		})
	}
}

// TestClient_RedisUp verifies that the liveness probe maps {"up": bool}
// to a plain bool without error in either case.
func TestClient_RedisUp(t *testing.T) {
	t.Parallel()

	for _, up := range []bool{true, false} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/redis_up", r.URL.Path, "should request /redis_up endpoint")
			assert.Equal(t, http.MethodGet, r.Method, "should use GET method")
			w.Header().Set("Content-Type", "application/json")
			require.NoError(t, json.NewEncoder(w).Encode(dto.RedisStatus{Up: up}))
		}))
		defer server.Close()

		c, err := client.NewClient(testConfig(server.URL))
		require.NoError(t, err)

		got, err := c.RedisUp(context.Background())
		require.NoError(t, err, "RedisUp should not fail on a well-formed response")
		assert.Equal(t, up, got)
	}
}

// TestClient_RedisUp_MissingField verifies that a 2xx body without the "up"
// field fails with MalformedResponseError.
func TestClient_RedisUp_MissingField(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c, err := client.NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = c.RedisUp(context.Background())

	var malformed *client.MalformedResponseError
	require.ErrorAs(t, err, &malformed, "missing field should be a MalformedResponseError")
	assert.Contains(t, malformed.Reason, "up")
}

// TestClient_RedisUp_Unreachable verifies that a transport failure surfaces
// as ServiceUnreachableError.
func TestClient_RedisUp_Unreachable(t *testing.T) {
	t.Parallel()

	// Reserve a port and close it so the connection is refused.
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	url := server.URL
	server.Close()

	c, err := client.NewClient(testConfig(url))
	require.NoError(t, err)

	_, err = c.RedisUp(context.Background())

	var unreachable *client.ServiceUnreachableError
	require.ErrorAs(t, err, &unreachable, "connection refused should be a ServiceUnreachableError")
}

// TestClient_SubmitFile_Success verifies that a submission issues exactly one
// POST with a multipart body and returns the service's task id and seed
// unchanged.
func TestClient_SubmitFile_Success(t *testing.T) {
	t.Parallel()

	var posts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts.Add(1)
		assert.Equal(t, "/submit", r.URL.Path, "should request /submit endpoint")
		assert.Equal(t, http.MethodPost, r.Method, "should use POST method")
		assert.Equal(t, "3600", r.URL.Query().Get("validity"), "should forward the seed validity")

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err, "request should carry a multipart file field")
		defer file.Close()
		assert.Equal(t, "sample.txt", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"taskId": "task-123", "seed": "seed-456", "link": "/analysis/task-123/seed-456"}`))
	}))
	defer server.Close()

	c, err := client.NewClient(testConfig(server.URL))
	require.NoError(t, err)

	path := writeTempFile(t, "sample.txt", "hello pandora")
	result, err := c.SubmitFile(context.Background(), path, client.SubmitOptions{ValiditySeconds: 3600})

	require.NoError(t, err, "SubmitFile should succeed")
	assert.Equal(t, int32(1), posts.Load(), "exactly one POST should be issued")
	assert.Equal(t, "task-123", result.TaskID, "task id should match the service response")
	assert.Equal(t, "seed-456", result.Seed, "seed should match the service response")
	assert.Equal(t, server.URL+"/analysis/task-123/seed-456", result.Link, "link should be resolved against the base URL")
}

// TestClient_SubmitFile_PasswordForwarded verifies the archive password is
// sent as a query parameter when set.
func TestClient_SubmitFile_PasswordForwarded(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "infected", r.URL.Query().Get("password"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"taskId": "t", "seed": "s"}`))
	}))
	defer server.Close()

	c, err := client.NewClient(testConfig(server.URL))
	require.NoError(t, err)

	path := writeTempFile(t, "archive.zip", "not really a zip")
	_, err = c.SubmitFile(context.Background(), path, client.SubmitOptions{Password: "infected"})
	require.NoError(t, err)
}

// TestClient_SubmitFile_FileNotFound verifies that a missing file fails with
// FileNotFoundError without any network call.
func TestClient_SubmitFile_FileNotFound(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	c, err := client.NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = c.SubmitFile(context.Background(), filepath.Join(t.TempDir(), "nope.bin"), client.SubmitOptions{})

	var notFound *client.FileNotFoundError
	require.ErrorAs(t, err, &notFound, "missing file should be a FileNotFoundError")
	assert.Equal(t, int32(0), requests.Load(), "no network call should be attempted")
}

// TestClient_SubmitFile_MissingSeed verifies that a 2xx submission response
// without the required fields fails with MalformedResponseError.
func TestClient_SubmitFile_MissingSeed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"taskId": "task-123"}`))
	}))
	defer server.Close()

	c, err := client.NewClient(testConfig(server.URL))
	require.NoError(t, err)

	path := writeTempFile(t, "sample.txt", "x")
	_, err = c.SubmitFile(context.Background(), path, client.SubmitOptions{})

	var malformed *client.MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Contains(t, malformed.Reason, "seed")
}

// TestClient_SubmitFile_ServiceError verifies that a non-2xx response is
// surfaced as ServiceError carrying the HTTP status and raw body.
func TestClient_SubmitFile_ServiceError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal"}`))
	}))
	defer server.Close()

	c, err := client.NewClient(testConfig(server.URL))
	require.NoError(t, err)

	path := writeTempFile(t, "sample.txt", "x")
	_, err = c.SubmitFile(context.Background(), path, client.SubmitOptions{})

	var svcErr *client.ServiceError
	require.ErrorAs(t, err, &svcErr, "non-2xx should be a ServiceError")
	assert.Equal(t, http.StatusInternalServerError, svcErr.Status)
	assert.JSONEq(t, `{"error":"internal"}`, svcErr.Body, "raw body should be preserved for diagnostics")
}

// TestClient_TaskStatus_Success verifies the status query path, parameters
// and parsed snapshot.
func TestClient_TaskStatus_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/task/task-123/status", r.URL.Path)
		assert.Equal(t, "seed-456", r.URL.Query().Get("seed"))
		assert.Equal(t, "1", r.URL.Query().Get("details"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"state": "finished",
			"workers": {
				"clamav": {"status": "ok", "details": {"signatures": 0}},
				"yara":   {"status": "alert"}
			}
		}`))
	}))
	defer server.Close()

	c, err := client.NewClient(testConfig(server.URL))
	require.NoError(t, err)

	status, err := c.TaskStatus(context.Background(), "task-123", "seed-456", true)

	require.NoError(t, err)
	assert.Equal(t, "task-123", status.TaskID, "snapshot should carry the queried task id")
	assert.Equal(t, dto.StateFinished, status.State)
	require.Contains(t, status.Workers, "clamav")
	assert.Equal(t, "ok", status.Workers["clamav"].Status)
	assert.Equal(t, "alert", status.Workers["yara"].Status)
}

// TestClient_TaskStatus_NotFound verifies that a 404 becomes TaskNotFoundError.
func TestClient_TaskStatus_NotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no such task", http.StatusNotFound)
	}))
	defer server.Close()

	c, err := client.NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = c.TaskStatus(context.Background(), "task-999", "seed", false)

	var notFound *client.TaskNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "task-999", notFound.TaskID)
}

// TestClient_TaskStatus_Unauthorized verifies that a 403 for a bad seed
// becomes ErrUnauthorized.
func TestClient_TaskStatus_Unauthorized(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid seed", http.StatusForbidden)
	}))
	defer server.Close()

	c, err := client.NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = c.TaskStatus(context.Background(), "task-123", "wrong-seed", false)

	require.ErrorIs(t, err, client.ErrUnauthorized)
}

// TestClient_TaskStatus_MissingState verifies that a 2xx body without the
// state field fails with MalformedResponseError.
func TestClient_TaskStatus_MissingState(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"workers": {}}`))
	}))
	defer server.Close()

	c, err := client.NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = c.TaskStatus(context.Background(), "task-123", "seed", false)

	var malformed *client.MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Contains(t, malformed.Reason, "state")
}

// TestClient_SubmitThenStatus_RoundTrip verifies that querying the status of
// a freshly submitted task with the returned task id and seed yields a
// snapshot for the same task id.
func TestClient_SubmitThenStatus_RoundTrip(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/submit", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"taskId": "round-trip-task", "seed": "round-trip-seed"}`))
	})
	mux.HandleFunc("/task/round-trip-task/status", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "round-trip-seed", r.URL.Query().Get("seed"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"state": "waiting"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c, err := client.NewClient(testConfig(server.URL))
	require.NoError(t, err)

	path := writeTempFile(t, "sample.txt", "x")
	submission, err := c.SubmitFile(context.Background(), path, client.SubmitOptions{})
	require.NoError(t, err)

	status, err := c.TaskStatus(context.Background(), submission.TaskID, submission.Seed, false)
	require.NoError(t, err)
	assert.Equal(t, submission.TaskID, status.TaskID, "status snapshot should match the submitted task id")
	assert.Equal(t, dto.StateWaiting, status.State)
}

// TestClient_WorkerStatus_SelectorValidation verifies that both and neither
// worker selections fail with InvalidArgumentsError before any network call.
func TestClient_WorkerStatus_SelectorValidation(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	c, err := client.NewClient(testConfig(server.URL))
	require.NoError(t, err)

	tests := []struct {
		name       string
		workerName string
		allWorkers bool
	}{
		{name: "both selected", workerName: "clamav", allWorkers: true},
		{name: "neither selected", workerName: "", allWorkers: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.WorkerStatus(context.Background(), tt.workerName, tt.allWorkers, false)

			var invalid *client.InvalidArgumentsError
			require.ErrorAs(t, err, &invalid, "conflicting selection should be an InvalidArgumentsError")
		})
	}

	assert.Equal(t, int32(0), requests.Load(), "no network call should be attempted")
}

// TestClient_WorkerStatus_AllWorkers verifies the all-workers query and the
// parsed report mapping.
func TestClient_WorkerStatus_AllWorkers(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/workers/status", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("all"))
		assert.Equal(t, "0", r.URL.Query().Get("details"))
		assert.Empty(t, r.URL.Query().Get("worker"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"clamav": {"status": "ok"}, "yara": {"status": "degraded"}}`))
	}))
	defer server.Close()

	c, err := client.NewClient(testConfig(server.URL))
	require.NoError(t, err)

	reports, err := c.WorkerStatus(context.Background(), "", true, false)

	require.NoError(t, err)
	assert.Len(t, reports, 2)
	assert.Equal(t, "ok", reports["clamav"].Status)
	assert.Equal(t, "degraded", reports["yara"].Status)
}

// TestClient_WorkerStatus_SingleWorker verifies the named-worker query.
func TestClient_WorkerStatus_SingleWorker(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "clamav", r.URL.Query().Get("worker"))
		assert.Equal(t, "0", r.URL.Query().Get("all"))
		assert.Equal(t, "1", r.URL.Query().Get("details"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"clamav": {"status": "ok", "details": {"db_version": "27000"}}}`))
	}))
	defer server.Close()

	c, err := client.NewClient(testConfig(server.URL))
	require.NoError(t, err)

	reports, err := c.WorkerStatus(context.Background(), "clamav", false, true)

	require.NoError(t, err)
	require.Contains(t, reports, "clamav")
	assert.Equal(t, "27000", reports["clamav"].Details["db_version"])
}

// TestClient_IsUp verifies the HEAD probe against the instance root.
func TestClient_IsUp(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c, err := client.NewClient(testConfig(server.URL))
	require.NoError(t, err)

	assert.True(t, c.IsUp(context.Background()))

	server.Close()
	assert.False(t, c.IsUp(context.Background()), "a closed server should report not up, not an error")
}

// TestClient_InitAPIKey verifies that an installed API key is sent as the
// Authorization header on subsequent requests.
func TestClient_InitAPIKey(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/get_token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "admin", r.URL.Query().Get("username"))
		assert.Equal(t, "hunter2", r.URL.Query().Get("password"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"authkey": "key-789"}`))
	})
	mux.HandleFunc("/redis_up", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-789", r.Header.Get("Authorization"), "requests after InitAPIKey should be authenticated")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"up": true}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c, err := client.NewClient(testConfig(server.URL))
	require.NoError(t, err)

	require.NoError(t, c.InitAPIKey(context.Background(), "admin", "hunter2", ""))

	up, err := c.RedisUp(context.Background())
	require.NoError(t, err)
	assert.True(t, up)
}

// TestClient_InitAPIKey_NoCredentials verifies that InitAPIKey without a key
// or credentials fails with ErrAuth.
func TestClient_InitAPIKey_NoCredentials(t *testing.T) {
	t.Parallel()

	c, err := client.NewClient(testConfig("http://localhost:6100"))
	require.NoError(t, err)

	err = c.InitAPIKey(context.Background(), "", "", "")
	require.ErrorIs(t, err, client.ErrAuth)
}

// TestClient_Stats_PathConstruction verifies the period qualifiers are laid
// out most-specific first in the stats path.
func TestClient_Stats_PathConstruction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		query    dto.StatsQuery
		wantPath string
	}{
		{
			name:     "default interval",
			query:    dto.StatsQuery{},
			wantPath: "/api/stats/year",
		},
		{
			name:     "specific year",
			query:    dto.StatsQuery{Interval: dto.IntervalYear, Year: 2026},
			wantPath: "/api/stats/year/2026",
		},
		{
			name:     "month and year",
			query:    dto.StatsQuery{Interval: dto.IntervalMonth, Month: 8, Year: 2026},
			wantPath: "/api/stats/month/8/2026",
		},
		{
			name:     "full day",
			query:    dto.StatsQuery{Interval: dto.IntervalDay, Day: 25, Month: 8, Year: 2026},
			wantPath: "/api/stats/day/25/8/2026",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.wantPath, r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"submissions": 42}`))
			}))
			defer server.Close()

			c, err := client.NewClient(testConfig(server.URL))
			require.NoError(t, err)

			result, err := c.Stats(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, float64(42), result["submissions"])
		})
	}
}

// TestClient_Stats_InvalidInterval verifies the interval is validated before
// any network call.
func TestClient_Stats_InvalidInterval(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	c, err := client.NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = c.Stats(context.Background(), dto.StatsQuery{Interval: "decade"})

	var invalid *client.InvalidArgumentsError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, int32(0), requests.Load(), "no network call should be attempted")
}

// TestClient_TaskStatus_LargeDetails verifies a details-mode response larger
// than the diagnostic body cap is read and parsed in full.
func TestClient_TaskStatus_LargeDetails(t *testing.T) {
	t.Parallel()

	report := strings.Repeat("scan line\n", 10*1024)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"state": dto.StateFinished,
			"workers": map[string]any{
				"clamav": map[string]any{
					"status":  "ok",
					"details": map[string]any{"report": report},
				},
			},
		}))
	}))
	defer server.Close()

	c, err := client.NewClient(testConfig(server.URL))
	require.NoError(t, err)

	status, err := c.TaskStatus(context.Background(), "task-big", "seed-big", true)

	require.NoError(t, err, "a large success body must not be truncated")
	assert.Equal(t, dto.StateFinished, status.State)
	assert.Equal(t, report, status.Workers["clamav"].Details["report"])
}

// TestClient_WorkersStats_PathConstruction verifies the per-worker stats
// endpoint nests its period qualifiers like the submission stats one.
func TestClient_WorkersStats_PathConstruction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		query    dto.StatsQuery
		wantPath string
	}{
		{
			name:     "default interval",
			query:    dto.StatsQuery{},
			wantPath: "/api/workers_stats/year",
		},
		{
			name:     "week and year",
			query:    dto.StatsQuery{Interval: dto.IntervalWeek, Week: 35, Year: 2026},
			wantPath: "/api/workers_stats/week/35/2026",
		},
		{
			name:     "full day",
			query:    dto.StatsQuery{Interval: dto.IntervalDay, Day: 25, Month: 8, Year: 2026},
			wantPath: "/api/workers_stats/day/25/8/2026",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.wantPath, r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"clamav": {"analyzed": 12}}`))
			}))
			defer server.Close()

			c, err := client.NewClient(testConfig(server.URL))
			require.NoError(t, err)

			result, err := c.WorkersStats(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Contains(t, result, "clamav")
		})
	}
}

// TestClient_EnabledWorkers verifies the enabled-workers listing.
func TestClient_EnabledWorkers(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/enabled_workers", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`["clamav", "yara", "hashlookup"]`))
	}))
	defer server.Close()

	c, err := client.NewClient(testConfig(server.URL))
	require.NoError(t, err)

	workers, err := c.EnabledWorkers(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"clamav", "yara", "hashlookup"}, workers)
}

// TestClient_EnabledWorkers_MalformedBody verifies a non-list body fails
// with MalformedResponseError.
func TestClient_EnabledWorkers_MalformedBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`null`))
	}))
	defer server.Close()

	c, err := client.NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = c.EnabledWorkers(context.Background())

	var malformed *client.MalformedResponseError
	require.ErrorAs(t, err, &malformed)
}

// TestClient_Search verifies the search path and the opaque result payload.
func TestClient_Search(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/search/deadbeef/7", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"matches": [{"taskId": "task-1"}]}`))
	}))
	defer server.Close()

	c, err := client.NewClient(testConfig(server.URL))
	require.NoError(t, err)

	result, err := c.Search(context.Background(), "deadbeef", 7)
	require.NoError(t, err)
	assert.Contains(t, result, "matches")
}
