// Package capsolver implements a client for the Capsolver task API:
// create a solving task, then poll its result on a fixed interval until
// the service reports a terminal status.
package capsolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"gopkg.in/h2non/gentleman.v2"
	"gopkg.in/h2non/gentleman.v2/plugins/body"
	"gopkg.in/h2non/gentleman.v2/plugins/timeout"

	"github.com/Kreppz/capsolve/logger"
)

const (
	DEFAULT_ENDPOINT  = "https://api.capsolver.com"
	DEFAULT_TASK_TYPE = "ReCaptchaV2TaskProxyLess"

	DEFAULT_POLL_INTERVAL = time.Second * 5
	DEFAULT_POLL_ATTEMPTS = 24

	REQUEST_TIMEOUT = time.Second * 30
)

type Client struct {
	// API key for the service. Passed in explicitly, never read from
	// process-wide state
	apiKey string

	// Task type sent with createTask
	taskType string

	// Delay between getTaskResult calls
	pollInterval time.Duration

	// How many getTaskResult calls before giving up
	pollAttempts int

	http *gentleman.Client

	log zerolog.Logger
}

func New(apiKey string) *Client {
	http := gentleman.New()
	http.URL(DEFAULT_ENDPOINT)
	http.Use(timeout.Request(REQUEST_TIMEOUT))

	return &Client{
		apiKey:       apiKey,
		taskType:     DEFAULT_TASK_TYPE,
		pollInterval: DEFAULT_POLL_INTERVAL,
		pollAttempts: DEFAULT_POLL_ATTEMPTS,
		http:         http,
		log:          logger.Logger().With().Str("component", "capsolver").Logger(),
	}
}

func (c *Client) SetEndpoint(url string) *Client {
	c.http.URL(url)
	return c
}

func (c *Client) SetTaskType(taskType string) *Client {
	c.taskType = taskType
	return c
}

func (c *Client) SetPollInterval(interval time.Duration) *Client {
	c.pollInterval = interval
	return c
}

func (c *Client) SetPollAttempts(attempts int) *Client {
	if attempts < 1 {
		attempts = 1
	}
	c.pollAttempts = attempts
	return c
}

// Solve runs the full cycle for one captcha: create a task, then poll
// until the service resolves it. Returns the solution token
func (c *Client) Solve(ctx context.Context, siteKey, pageURL string) (string, error) {
	task, err := c.CreateTask(ctx, siteKey, pageURL)
	if err != nil {
		return "", err
	}

	return c.GetTaskResult(ctx, task)
}

// CreateTask sends the task to the service and returns its handle
func (c *Client) CreateTask(ctx context.Context, siteKey, pageURL string) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("capsolver: api key is not set")
	}

	payload := &CreateTaskBody{
		Key: c.apiKey,
		Task: TaskPayload{
			Type:       c.taskType,
			WebsiteURL: pageURL,
			WebsiteKey: siteKey,
		},
	}

	response := new(CreateTaskResponse)
	if err := c.post(ctx, "/createTask", payload, response); err != nil {
		return "", err
	}

	if response.Error != 0 {
		return "", serviceError(response.ErrorCode, response.ErrorDescription)
	}

	if response.Task == "" {
		return "", ErrNoTaskHandle
	}

	c.log.Debug().Str("task", response.Task).Str("sitekey", siteKey).Msg("Task created")

	return response.Task, nil
}

// GetTaskResult polls the task on a fixed interval until the service
// reports a terminal status, the attempts budget runs out, or the
// context is cancelled
func (c *Client) GetTaskResult(ctx context.Context, task string) (string, error) {
	payload := &TaskResultBody{Key: c.apiKey, Task: task}

	var attempt int

	query := func() (string, error) {
		attempt++

		response := new(TaskResultResponse)
		if err := c.post(ctx, "/getTaskResult", payload, response); err != nil {
			return "", backoff.Permanent(err)
		}

		if response.Error != 0 {
			return "", backoff.Permanent(serviceError(response.ErrorCode, response.ErrorDescription))
		}

		switch response.Status {
		case STATUS_READY:
			if response.Solution.Token == "" {
				return "", backoff.Permanent(ErrEmptySolution)
			}
			return response.Solution.Token, nil

		case STATUS_FAILED:
			return "", backoff.Permanent(ErrTaskFailed)

		default:
			c.log.Debug().Str("task", task).Int("attempt", attempt).Str("status", response.Status).Msg("Task not ready")
			return "", ErrNotReady
		}
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.pollInterval), uint64(c.pollAttempts-1)),
		ctx,
	)

	token, err := backoff.RetryWithData(query, policy)
	if errors.Is(err, ErrNotReady) {
		return "", fmt.Errorf("%w: task %s after %d attempts", ErrPollTimeout, task, attempt)
	}
	return token, err
}

// Balance returns the account balance in USD
func (c *Client) Balance(ctx context.Context) (float64, error) {
	response := new(BalanceResponse)
	if err := c.post(ctx, "/getBalance", &BalanceBody{Key: c.apiKey}, response); err != nil {
		return 0, err
	}

	if response.Error != 0 {
		return 0, serviceError(response.ErrorCode, response.ErrorDescription)
	}

	return response.Balance, nil
}

func (c *Client) post(ctx context.Context, path string, payload, response any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	res, err := c.http.Request().Method("POST").Path(path).Use(body.JSON(payload)).Send()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnreachable, err)
	}

	if !res.Ok {
		return fmt.Errorf("%w: status %d", ErrServiceUnreachable, res.StatusCode)
	}

	if err := res.JSON(response); err != nil {
		return fmt.Errorf("capsolver: decode %s response: %w", path, err)
	}

	return nil
}
