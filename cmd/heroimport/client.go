package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Client wraps HTTP calls to the heroimport server.
type Client struct {
	baseURL    string
	user       string
	httpClient *http.Client
}

// NewClient creates a new heroimport API client acting as user.
func NewClient(serverURL, user string) *Client {
	return &Client{
		baseURL: serverURL,
		user:    user,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// apiError is the server's error body.
type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (c *Client) userQuery() string {
	return "?user=" + url.QueryEscape(c.user)
}

func (c *Client) do(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server error %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server error %d: %s", resp.StatusCode, string(body))
	}

	if result == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

func (c *Client) get(path string, result any) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}
	return c.do(req, result)
}

func (c *Client) delete(path string, result any) error {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}
	return c.do(req, result)
}

// upload posts the named files as multipart field field.
func (c *Client) upload(path, field string, files []string, result any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range files {
		data, err := os.ReadFile(name)
		if err != nil {
			return err
		}
		fw, err := mw.CreateFormFile(field, filepath.Base(name))
		if err != nil {
			return err
		}
		if _, err := fw.Write(data); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, result)
}

// API response types (mirror server types)

type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Pool    struct {
		Size    int `json:"size"`
		Active  int `json:"active"`
		Waiting int `json:"waiting"`
	} `json:"pool"`
	TrackedImports int `json:"tracked_imports"`
}

type ImportResponse struct {
	ImportID int64  `json:"importId,omitempty"`
	FileName string `json:"fileName"`
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

type BatchResponse struct {
	Imports []ImportResponse `json:"imports"`
	Message string           `json:"message"`
}

type ProgressResponse struct {
	ImportID     int64  `json:"importId"`
	FileName     string `json:"fileName"`
	Status       string `json:"status"`
	Processed    int    `json:"processedRecords"`
	Total        int    `json:"totalRecords"`
	Success      int    `json:"successfulRecords"`
	Failed       int    `json:"failedRecords"`
	Percent      int    `json:"progress"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// Finished reports whether the import reached a terminal status.
func (p *ProgressResponse) Finished() bool {
	return p.Status == "COMPLETED" || p.Status == "FAILED"
}

type JobResponse struct {
	ID           int64      `json:"id"`
	FileName     string     `json:"fileName"`
	Format       string     `json:"format"`
	Status       string     `json:"status"`
	Owner        string     `json:"userName"`
	IsAdmin      bool       `json:"isAdmin"`
	TotalRecords int        `json:"totalRecords"`
	SuccessCount int        `json:"successfulRecords"`
	FailCount    int        `json:"failedRecords"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	StartTime    time.Time  `json:"startTime"`
	EndTime      *time.Time `json:"endTime,omitempty"`
}

type HistoryResponse struct {
	Items []JobResponse `json:"items"`
	Total int           `json:"total"`
}

type ClearHistoryResponse struct {
	Message string `json:"message"`
	Cleared int64  `json:"cleared"`
}

type EventResponse struct {
	ID         int64           `json:"id"`
	EventType  string          `json:"event_type"`
	EntityType string          `json:"entity_type"`
	EntityID   int64           `json:"entity_id"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt string          `json:"occurred_at"`
}

type ListEventsResponse struct {
	Items  []EventResponse `json:"items"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// API methods

func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.get("/api/v1/status", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Submit(file string) (*ImportResponse, error) {
	var resp ImportResponse
	if err := c.upload("/api/v1/imports"+c.userQuery(), "file", []string{file}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SubmitBatch(files []string) (*BatchResponse, error) {
	var resp BatchResponse
	if err := c.upload("/api/v1/imports/batch"+c.userQuery(), "files", files, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Progress(id int64) (*ProgressResponse, error) {
	var resp ProgressResponse
	if err := c.get("/api/v1/imports/"+strconv.FormatInt(id, 10)+"/progress", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) History() (*HistoryResponse, error) {
	var resp HistoryResponse
	if err := c.get("/api/v1/imports/history"+c.userQuery(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ClearHistory() (*ClearHistoryResponse, error) {
	var resp ClearHistoryResponse
	if err := c.delete("/api/v1/imports/history"+c.userQuery(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Events(limit, offset int) (*ListEventsResponse, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var resp ListEventsResponse
	if err := c.get("/api/v1/events?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ImportEvents(id int64) (*ListEventsResponse, error) {
	var resp ListEventsResponse
	if err := c.get("/api/v1/imports/"+strconv.FormatInt(id, 10)+"/events", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
