// Package jobapi reads job reports from the shortlisting backend's REST API.
package jobapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "shortlist-monitor/internal/errors"
	"shortlist-monitor/internal/models"

	"github.com/rs/zerolog/log"
)

// responses larger than this are treated as malformed
const maxBodyBytes = 10 << 20

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) (*Client, error) {

	if baseURL == "" {
		return nil, fmt.Errorf("job api base url is required")
	}

	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid job api base url %q: %w", baseURL, err)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// GetStatus fetches GET /jobs/{jobId}/status.
func (c *Client) GetStatus(ctx context.Context, jobID string) (*models.JobStatus, error) {

	body, err := c.get(ctx, jobID, "status")

	if err != nil {
		return nil, err
	}

	return models.DecodeJobStatus(body)
}

// GetResults fetches GET /jobs/{jobId}/shortlisted.
func (c *Client) GetResults(ctx context.Context, jobID string) ([]models.Candidate, error) {

	body, err := c.get(ctx, jobID, "shortlisted")

	if err != nil {
		return nil, err
	}

	return models.DecodeShortlist(body)
}

// ListJobs fetches GET /jobs.
func (c *Client) ListJobs(ctx context.Context) ([]models.JobSummary, error) {

	body, err := c.fetch(ctx, c.baseURL+"/jobs", "job list")

	if err != nil {
		return nil, err
	}

	return models.DecodeJobList(body)
}

func (c *Client) get(ctx context.Context, jobID, resource string) ([]byte, error) {

	endpoint := fmt.Sprintf("%s/jobs/%s/%s", c.baseURL, url.PathEscape(jobID), resource)

	body, err := c.fetch(ctx, endpoint, "job "+jobID)

	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("component", "jobapi").
		Str("job_id", jobID).
		Str("resource", resource).
		Int("bytes", len(body)).
		Msg("Fetched job resource")

	return body, nil
}

// fetch GETs endpoint and maps the outcome onto the error kinds. subject
// names what was asked for in not-found errors.
func (c *Client) fetch(ctx context.Context, endpoint, subject string) ([]byte, error) {

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)

	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", subject, err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)

	if err != nil {
		return nil, fmt.Errorf("GET %s: %v: %w", endpoint, err, apperrors.ErrTransport)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", subject, apperrors.ErrNotFound)

	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("GET %s returned %d: %w: %w", endpoint, resp.StatusCode, apperrors.ErrTransport, apperrors.ErrPermanentFailure)

	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("GET %s returned %d: %w", endpoint, resp.StatusCode, apperrors.ErrTransport)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))

	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %v: %w", endpoint, err, apperrors.ErrTransport)
	}

	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("response from %s exceeds %d bytes: %w", endpoint, maxBodyBytes, apperrors.ErrMalformedSnapshot)
	}

	return body, nil
}
