package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/TWRT/task-analyzer/internal/logging"
	"github.com/TWRT/task-analyzer/internal/models"
)

// RequestIDHeader carries the per-call id to the service logs.
const RequestIDHeader = "X-Request-Id"

// DefaultTimeout applies when NewClient is given a non-positive timeout.
const DefaultTimeout = 10 * time.Second

type Client struct {
	baseUrl    string
	httpClient *http.Client
	logger     *logging.Logger
}

func NewClient(baseUrl string, timeout time.Duration, logger *logging.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Client{
		baseUrl:    strings.TrimRight(baseUrl, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.WithComponent("analysis_client"),
	}
}

// Analyze posts tasks to the analysis service and returns its ranked list.
// Failures come back as *FieldErrors, *ServiceError or *TransportError.
func (c *Client) Analyze(ctx context.Context, tasks []json.RawMessage) ([]models.ScoredTask, error) {
	if tasks == nil {
		tasks = []json.RawMessage{}
	}
	body, err := json.Marshal(AnalyzeRequest{Tasks: tasks})
	if err != nil {
		return nil, fmt.Errorf("marshal analyze request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseUrl+AnalyzePath, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("build request (analysis): %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	log := c.logger.WithRequest(requestID)
	log.Debug("sending analysis request", "tasks", len(tasks), "url", req.URL.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("analysis request failed", "error", err.Error())
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("read response body (analysis): %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Info("analysis rejected", "status", resp.StatusCode)
		return nil, decodeError(resp.StatusCode, responseBody)
	}

	var analyzeResp AnalyzeResponse
	if err := json.Unmarshal(responseBody, &analyzeResp); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("parse analyze response: %w", err)}
	}

	list := analyzeResp.Sorted
	if !present(list) {
		list = analyzeResp.Tasks
	}
	if !present(list) {
		log.Warn("analysis response had no task list")
		return []models.ScoredTask{}, nil
	}

	var scored []models.ScoredTask
	if err := json.Unmarshal(list, &scored); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("parse scored tasks: %w", err)}
	}
	if scored == nil {
		scored = []models.ScoredTask{}
	}

	log.Info("analysis completed", "status", resp.StatusCode, "returned", len(scored))
	return scored, nil
}

func decodeError(status int, body []byte) error {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return &ServiceError{StatusCode: status, Message: "Server error"}
	}
	if present(errResp.Errors) {
		return &FieldErrors{StatusCode: status, Errors: errResp.Errors}
	}
	if errResp.Error != nil && *errResp.Error != "" {
		return &ServiceError{StatusCode: status, Message: *errResp.Error}
	}
	return &ServiceError{StatusCode: status, Message: "Server error"}
}
