// Package traininglog talks to the spreadsheet-backed training-log service.
// The engine only knows these three operations; how the service stores rows
// is its own business.
package traininglog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/sirupsen/logrus"
)

// Config holds training-log service configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// SaveSetRequest is the payload for logging a freshly completed set.
type SaveSetRequest struct {
	ExerciseID      string  `json:"exerciseId"`
	EffectiveWeight float64 `json:"weight"`
	InputWeight     string  `json:"inputWeight"`
	Reps            string  `json:"reps"`
	Rest            string  `json:"rest"`
	Note            string  `json:"note"`
	GroupID         string  `json:"setGroupId"`
	Order           int     `json:"order"`
}

// SaveSetResponse carries the server row reference used to address later
// edits. Older deployments return none; edits then fall back to the
// (setGroupId, order) key.
type SaveSetResponse struct {
	RowReference string `json:"rowReference"`
}

// UpdateSetRequest addresses an already-logged set, preferably by row
// reference, otherwise by the (setGroupId, order) pair.
type UpdateSetRequest struct {
	RowReference    string  `json:"rowReference,omitempty"`
	GroupID         string  `json:"setGroupId,omitempty"`
	Order           int     `json:"order"`
	EffectiveWeight float64 `json:"weight"`
	InputWeight     string  `json:"inputWeight"`
	Reps            string  `json:"reps"`
	Rest            string  `json:"rest"`
}

// HistoryResponse is the exercise history plus the last recorded note.
type HistoryResponse struct {
	History []domain.HistoryGroup `json:"history"`
	Note    string                `json:"note"`
}

// Client is the boundary the session engine syncs through.
type Client interface {
	FetchExerciseHistory(ctx context.Context, exerciseID string) (*HistoryResponse, error)
	SaveSet(ctx context.Context, req SaveSetRequest) (*SaveSetResponse, error)
	UpdateSet(ctx context.Context, req UpdateSetRequest) error
}

// HTTPClient is the production training-log client
type HTTPClient struct {
	config     Config
	httpClient *http.Client
}

// NewHTTPClient creates a new training-log client
func NewHTTPClient(cfg Config) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchExerciseHistory loads prior sets and the last note for one exercise
func (c *HTTPClient) FetchExerciseHistory(ctx context.Context, exerciseID string) (*HistoryResponse, error) {
	endpoint := fmt.Sprintf("%s/api/exercises/%s/history", c.config.BaseURL, url.PathEscape(exerciseID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create history request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("history request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("history request returned %d: %s", resp.StatusCode, string(body))
	}

	var out HistoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode history response: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"exercise_id": exerciseID,
		"groups":      len(out.History),
	}).Debug("fetched exercise history")

	return &out, nil
}

// SaveSet appends one completed set to the remote log
func (c *HTTPClient) SaveSet(ctx context.Context, reqBody SaveSetRequest) (*SaveSetResponse, error) {
	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal save request: %w", err)
	}

	endpoint := c.config.BaseURL + "/api/log/sets"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create save request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("save request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("save request returned %d: %s", resp.StatusCode, string(body))
	}

	var out SaveSetResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		// A missing row reference is tolerated; the set stays addressable
		// by (setGroupId, order).
		logrus.WithError(err).Debug("save response carried no row reference")
		return &SaveSetResponse{}, nil
	}

	return &out, nil
}

// UpdateSet rewrites an already-logged set in place
func (c *HTTPClient) UpdateSet(ctx context.Context, reqBody UpdateSetRequest) error {
	data, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal update request: %w", err)
	}

	endpoint := c.config.BaseURL + "/api/log/sets"
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("update request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("update request returned %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
