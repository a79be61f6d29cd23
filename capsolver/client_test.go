package capsolver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return New("test-key").
		SetEndpoint(server.URL).
		SetPollInterval(time.Millisecond * 10)
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func TestCreateTaskReturnsHandle(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/createTask", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var request CreateTaskBody
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		assert.Equal(t, "test-key", request.Key)
		assert.Equal(t, DEFAULT_TASK_TYPE, request.Task.Type)
		assert.Equal(t, "abc123", request.Task.WebsiteKey)
		assert.Equal(t, "https://example.com", request.Task.WebsiteURL)

		writeJSON(w, map[string]any{"errorId": 0, "taskId": "t1"})
	})

	client := newTestClient(t, mux)

	task, err := client.CreateTask(context.Background(), "abc123", "https://example.com")
	require.NoError(t, err)
	require.Equal(t, "t1", task)
}

func TestCreateTaskWithoutHandleDoesNotPoll(t *testing.T) {
	var polls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/createTask", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"errorId": 0})
	})
	mux.HandleFunc("/getTaskResult", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&polls, 1)
		writeJSON(w, map[string]any{"errorId": 0, "status": STATUS_PROCESSING})
	})

	client := newTestClient(t, mux)

	_, err := client.Solve(context.Background(), "abc123", "https://example.com")
	require.ErrorIs(t, err, ErrNoTaskHandle)
	require.Zero(t, atomic.LoadInt32(&polls))
}

func TestCreateTaskServiceError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/createTask", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"errorId":          1,
			"errorCode":        "ERROR_KEY_DENIED_ACCESS",
			"errorDescription": "invalid api key",
		})
	})

	client := newTestClient(t, mux)

	_, err := client.CreateTask(context.Background(), "abc123", "https://example.com")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNoTaskHandle)
	require.Contains(t, err.Error(), "ERROR_KEY_DENIED_ACCESS")
}

func TestCreateTaskServiceUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client := New("test-key").SetEndpoint(server.URL)

	_, err := client.CreateTask(context.Background(), "abc123", "https://example.com")
	require.ErrorIs(t, err, ErrServiceUnreachable)
}

// The full cycle: createTask, one pending poll, then ready with a token
func TestSolveProcessingThenReady(t *testing.T) {
	var polls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/createTask", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"taskId": "t1"})
	})
	mux.HandleFunc("/getTaskResult", func(w http.ResponseWriter, r *http.Request) {
		var request TaskResultBody
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		assert.Equal(t, "test-key", request.Key)
		assert.Equal(t, "t1", request.Task)

		if atomic.AddInt32(&polls, 1) == 1 {
			writeJSON(w, map[string]any{"status": STATUS_PROCESSING})
			return
		}
		writeJSON(w, map[string]any{
			"status":   STATUS_READY,
			"solution": map[string]string{"gRecaptchaResponse": "TOKEN"},
		})
	})

	client := newTestClient(t, mux)

	token, err := client.Solve(context.Background(), "abc123", "https://example.com")
	require.NoError(t, err)
	require.Equal(t, "TOKEN", token)
	require.Equal(t, int32(2), atomic.LoadInt32(&polls))
}

// Ready with an empty solution payload is a failure, never a success
func TestGetTaskResultReadyWithoutSolution(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/getTaskResult", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"status": STATUS_READY, "solution": map[string]string{}})
	})

	client := newTestClient(t, mux)

	_, err := client.GetTaskResult(context.Background(), "t1")
	require.ErrorIs(t, err, ErrEmptySolution)
}

func TestGetTaskResultFailedStopsPolling(t *testing.T) {
	var polls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/getTaskResult", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&polls, 1)
		writeJSON(w, map[string]any{"status": STATUS_FAILED})
	})

	client := newTestClient(t, mux)

	_, err := client.GetTaskResult(context.Background(), "t1")
	require.ErrorIs(t, err, ErrTaskFailed)
	require.Equal(t, int32(1), atomic.LoadInt32(&polls))
}

func TestGetTaskResultServiceErrorStopsPolling(t *testing.T) {
	var polls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/getTaskResult", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&polls, 1)
		writeJSON(w, map[string]any{"errorId": 12, "errorCode": "ERROR_CAPTCHA_UNSOLVABLE"})
	})

	client := newTestClient(t, mux)

	_, err := client.GetTaskResult(context.Background(), "t1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "ERROR_CAPTCHA_UNSOLVABLE")
	require.Equal(t, int32(1), atomic.LoadInt32(&polls))
}

func TestGetTaskResultAttemptsExhausted(t *testing.T) {
	var polls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/getTaskResult", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&polls, 1)
		writeJSON(w, map[string]any{"status": STATUS_PROCESSING})
	})

	client := newTestClient(t, mux).SetPollAttempts(3)

	_, err := client.GetTaskResult(context.Background(), "t1")
	require.ErrorIs(t, err, ErrPollTimeout)
	require.Equal(t, int32(3), atomic.LoadInt32(&polls))
}

func TestGetTaskResultContextCancelled(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/getTaskResult", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"status": STATUS_PROCESSING})
	})

	client := newTestClient(t, mux).SetPollInterval(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond*50)
	defer cancel()

	start := time.Now()
	_, err := client.GetTaskResult(ctx, "t1")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), time.Second)
}

func TestBalance(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/getBalance", func(w http.ResponseWriter, r *http.Request) {
		var request BalanceBody
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		assert.Equal(t, "test-key", request.Key)

		writeJSON(w, map[string]any{"errorId": 0, "balance": 12.5})
	})

	client := newTestClient(t, mux)

	balance, err := client.Balance(context.Background())
	require.NoError(t, err)
	require.Equal(t, 12.5, balance)
}
