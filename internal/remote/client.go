// Package remote talks to the external gradebook REST API on behalf of the grader.
package remote

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/noah-isme/grading-assistant/internal/models"
)

const (
	apiPrefix       = "/api/v1"
	defaultPerPage  = 100
	defaultTimeout  = 30 * time.Second
	maxPages        = 500
	maxErrorBody    = 4 << 10
	sniffHeaderSize = 3072
)

// ErrAttachmentNotFound is returned when a file is not attached to the student's submission.
var ErrAttachmentNotFound = errors.New("attachment not found")

// Error describes a non-successful response from the remote API.
type Error struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: remote returned status %d", e.Operation, e.StatusCode)
}

// Observer receives timing for each remote call.
type Observer interface {
	ObserveRemoteCall(operation string, status int, duration time.Duration)
}

// Options tune the HTTP behaviour of a Client.
type Options struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	PerPage    int
	Logger     *zap.Logger
	Observer   Observer
}

// Client issues authenticated requests scoped to one course and, optionally, one assignment.
type Client struct {
	base         *url.URL
	token        string
	courseID     string
	assignmentID string
	perPage      int
	http         *http.Client
	logger       *zap.Logger
	observer     Observer
}

// New builds a client from connection settings. It does not contact the remote.
func New(settings models.ConnectionSettings, opts Options) (*Client, error) {
	raw := strings.TrimRight(strings.TrimSpace(settings.BaseURL), "/")
	raw = strings.TrimSuffix(raw, apiPrefix)
	base, err := url.Parse(raw)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", settings.BaseURL)
	}
	if settings.AccessToken == "" {
		return nil, errors.New("access token required")
	}
	if settings.CourseID == "" {
		return nil, errors.New("course id required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		base:         base,
		token:        settings.AccessToken,
		courseID:     settings.CourseID,
		assignmentID: settings.AssignmentID,
		perPage:      perPage,
		http:         httpClient,
		logger:       logger.Named("remote"),
		observer:     opts.Observer,
	}, nil
}

// ListAssignments returns every assignment of the course with its submission counts.
func (c *Client) ListAssignments(ctx context.Context) ([]models.AssignmentSummary, error) {
	path := fmt.Sprintf("%s/courses/%s/assignments", apiPrefix, url.PathEscape(c.courseID))
	raw, err := getAll[wireAssignment](ctx, c, "list_assignments", path, url.Values{"order_by": {"position"}})
	if err != nil {
		return nil, err
	}

	out := make([]models.AssignmentSummary, 0, len(raw))
	for _, a := range raw {
		summary, err := c.submissionSummary(ctx, a.ID.Value)
		if err != nil {
			c.logger.Warn("submission summary unavailable", zap.Int64("assignment_id", a.ID.Value), zap.Error(err))
			summary = nil
		}
		out = append(out, normalizeAssignmentSummary(a, summary))
	}
	return out, nil
}

func (c *Client) submissionSummary(ctx context.Context, assignmentID int64) (*wireSubmissionSummary, error) {
	path := fmt.Sprintf("%s/courses/%s/assignments/%d/submission_summary", apiPrefix, url.PathEscape(c.courseID), assignmentID)
	var summary wireSubmissionSummary
	if err := c.getJSON(ctx, "submission_summary", c.endpoint(path, nil), &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// GetAssignment returns the configured assignment with its rubric.
func (c *Client) GetAssignment(ctx context.Context) (*models.AssignmentDetails, error) {
	path, err := c.assignmentPath("")
	if err != nil {
		return nil, err
	}
	var raw wireAssignment
	if err := c.getJSON(ctx, "get_assignment", c.endpoint(path, nil), &raw); err != nil {
		return nil, err
	}
	details := normalizeAssignmentDetails(raw)
	return &details, nil
}

// ListSubmissions returns the normalized submissions of the configured assignment.
func (c *Client) ListSubmissions(ctx context.Context) ([]models.SubmissionRecord, error) {
	path, err := c.assignmentPath("/submissions")
	if err != nil {
		return nil, err
	}
	query := url.Values{"include[]": {"submission_comments", "rubric_assessment", "user", "group"}}
	raw, err := getAll[wireSubmission](ctx, c, "list_submissions", path, query)
	if err != nil {
		return nil, err
	}
	return normalizeSubmissions(raw), nil
}

// AttachmentStream is an open attachment body. Callers must close Body.
type AttachmentStream struct {
	Body          io.ReadCloser
	Name          string
	ContentType   string
	ContentLength int64
}

// OpenAttachment streams a file attached to a student's submission.
func (c *Client) OpenAttachment(ctx context.Context, userID, fileID int64) (*AttachmentStream, error) {
	path, err := c.assignmentPath(fmt.Sprintf("/submissions/%d", userID))
	if err != nil {
		return nil, err
	}
	var raw wireSubmission
	if err := c.getJSON(ctx, "get_submission", c.endpoint(path, nil), &raw); err != nil {
		return nil, err
	}

	var attachment *wireAttachment
	for i := range raw.Attachments {
		if raw.Attachments[i].ID.Value == fileID {
			attachment = &raw.Attachments[i]
			break
		}
	}
	if attachment == nil || attachment.URL == "" {
		return nil, ErrAttachmentNotFound
	}

	target, err := c.base.Parse(attachment.URL)
	if err != nil {
		return nil, fmt.Errorf("download_attachment: invalid url %q", attachment.URL)
	}
	resp, err := c.do(ctx, "download_attachment", http.MethodGet, target.String(), nil, "")
	if err != nil {
		return nil, err
	}

	name := attachment.DisplayName
	if name == "" {
		name = attachment.Filename
	}
	reader := bufio.NewReaderSize(resp.Body, sniffHeaderSize)
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || strings.HasPrefix(contentType, "application/octet-stream") || strings.HasPrefix(contentType, "binary/") {
		head, _ := reader.Peek(sniffHeaderSize)
		contentType = mimetype.Detect(head).String()
	}

	return &AttachmentStream{
		Body:          readCloser{Reader: reader, Closer: resp.Body},
		Name:          name,
		ContentType:   contentType,
		ContentLength: resp.ContentLength,
	}, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

// UpdateSubmission writes a partial, form-encoded update for one student.
func (c *Client) UpdateSubmission(ctx context.Context, userID int64, form url.Values) error {
	path, err := c.assignmentPath(fmt.Sprintf("/submissions/%d", userID))
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, "update_submission", http.MethodPut, c.endpoint(path, nil), strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

func (c *Client) assignmentPath(suffix string) (string, error) {
	if c.assignmentID == "" {
		return "", errors.New("assignment id required")
	}
	return fmt.Sprintf("%s/courses/%s/assignments/%s%s", apiPrefix, url.PathEscape(c.courseID), url.PathEscape(c.assignmentID), suffix), nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) getJSON(ctx context.Context, operation, target string, dest interface{}) error {
	resp, err := c.do(ctx, operation, http.MethodGet, target, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%s: decode response: %w", operation, err)
	}
	return nil
}

// do sends one request and returns the response only for 2xx statuses. The token is
// attached only when the target is on the configured host.
func (c *Client) do(ctx context.Context, operation, method, target string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", operation, err)
	}
	if req.URL.Host == c.base.Host {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	if c.observer != nil {
		c.observer.ObserveRemoteCall(operation, status, duration)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close() //nolint:errcheck
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Debug("remote request failed",
			zap.String("operation", operation),
			zap.Int("status", resp.StatusCode),
			zap.Duration("latency", duration),
		)
		return nil, &Error{Operation: operation, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(detail))}
	}
	return resp, nil
}

// UserIDFromString parses a path parameter into a user id.
func UserIDFromString(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
