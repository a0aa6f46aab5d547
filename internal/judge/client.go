package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Executor runs one request against the judge service. Implementations must
// return an outcome for every call: transport trouble is reported as
// StatusInternalError, never as an error that could abort sibling cases.
type Executor interface {
	Execute(ctx context.Context, req ExecutionRequest) ExecutionOutcome
}

type ClientConfig struct {
	BaseURL   string
	AuthToken string
	Timeout   time.Duration

	// Retries and Backoff govern transport-level failures only; judging
	// outcomes are never retried.
	Retries int
	Backoff time.Duration

	DefaultTimeLimitMs   int
	DefaultMemoryLimitKb int
}

// Client talks to a judge-service instance over HTTP, one synchronous
// execution per call.
type Client struct {
	cfg   ClientConfig
	httpc *http.Client
	log   *zap.Logger
}

func NewClient(cfg ClientConfig, log *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.DefaultTimeLimitMs <= 0 {
		cfg.DefaultTimeLimitMs = 2000
	}
	if cfg.DefaultMemoryLimitKb <= 0 {
		cfg.DefaultMemoryLimitKb = 65536
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 250 * time.Millisecond
	}
	return &Client{
		cfg:   cfg,
		httpc: &http.Client{Timeout: cfg.Timeout},
		log:   log,
	}
}

// Wire format of the judge service.
type judgeSubmission struct {
	SourceCode   string  `json:"source_code"`
	LanguageID   int     `json:"language_id"`
	Stdin        string  `json:"stdin,omitempty"`
	CPUTimeLimit float64 `json:"cpu_time_limit,omitempty"` // seconds
	MemoryLimit  int     `json:"memory_limit,omitempty"`   // KB
}

type judgeStatus struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

type judgeResult struct {
	Stdout        *string     `json:"stdout"`
	Stderr        *string     `json:"stderr"`
	CompileOutput *string     `json:"compile_output"`
	Message       *string     `json:"message"`
	Time          *string     `json:"time"`   // seconds, stringified
	Memory        *int        `json:"memory"` // KB
	Status        judgeStatus `json:"status"`
}

// Execute sends one code+input pair and normalizes whatever comes back.
func (c *Client) Execute(ctx context.Context, req ExecutionRequest) ExecutionOutcome {
	timeLimitMs := req.TimeLimitMs
	if timeLimitMs <= 0 {
		timeLimitMs = c.cfg.DefaultTimeLimitMs
	}
	memoryLimitKb := req.MemoryLimitKb
	if memoryLimitKb <= 0 {
		memoryLimitKb = c.cfg.DefaultMemoryLimitKb
	}

	body, err := json.Marshal(judgeSubmission{
		SourceCode:   req.SourceCode,
		LanguageID:   req.Language.JudgeID(),
		Stdin:        req.Stdin,
		CPUTimeLimit: float64(timeLimitMs) / 1000.0,
		MemoryLimit:  memoryLimitKb,
	})
	if err != nil {
		return internalOutcome(fmt.Sprintf("marshal execution request: %v", err))
	}

	var result judgeResult
	if err := c.post(ctx, body, &result); err != nil {
		c.log.Warn("judge call failed", zap.Error(err))
		return internalOutcome(err.Error())
	}

	outcome := ExecutionOutcome{
		Status: statusFromRemote(result.Status.ID),
	}
	if result.Stdout != nil {
		outcome.Stdout = *result.Stdout
	}
	if result.Stderr != nil {
		outcome.Stderr = *result.Stderr
	}
	if result.CompileOutput != nil {
		outcome.CompileOutput = *result.CompileOutput
	}
	if result.Time != nil {
		if sec, err := strconv.ParseFloat(*result.Time, 64); err == nil && sec >= 0 {
			outcome.TimeMs = sec * 1000.0
		}
	}
	if result.Memory != nil && *result.Memory > 0 {
		outcome.MemoryKb = *result.Memory
	}

	// The remote is authoritative for compile, runtime and resource statuses.
	// Inside the text-comparison domain we decide acceptance ourselves.
	if outcome.Status == StatusAccepted || outcome.Status == StatusWrongAnswer {
		if OutputsMatch(outcome.Stdout, req.ExpectedOutput) {
			outcome.Status = StatusAccepted
		} else {
			outcome.Status = StatusWrongAnswer
		}
		if outcome.MemoryKb > memoryLimitKb {
			outcome.Status = StatusMemoryLimitExceeded
		}
	}
	return outcome
}

// post performs the HTTP round-trip with bounded retries for transport-level
// failures (connection refused, 5xx).
func (c *Client) post(ctx context.Context, body []byte, out *judgeResult) error {
	url := c.cfg.BaseURL + "/submissions?base64_encoded=false&wait=true"

	var lastErr error
	for attempt := 0; attempt <= c.cfg.Retries; attempt++ {
		if attempt > 0 {
			backoff := c.cfg.Backoff * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return fmt.Errorf("judge call abandoned: %w", ctx.Err())
			case <-time.After(backoff):
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("build judge request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if c.cfg.AuthToken != "" {
			httpReq.Header.Set("X-Auth-Token", c.cfg.AuthToken)
		}

		resp, err := c.httpc.Do(httpReq)
		if err != nil {
			lastErr = fmt.Errorf("judge transport: %w", err)
			if ctx.Err() != nil {
				return lastErr
			}
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("judge returned %d", resp.StatusCode)
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return fmt.Errorf("judge rejected request with %d", resp.StatusCode)
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("decode judge response: %w", err)
			continue
		}
		return nil
	}
	return lastErr
}

func internalOutcome(msg string) ExecutionOutcome {
	return ExecutionOutcome{
		Status: StatusInternalError,
		Stderr: msg,
	}
}
