// Package client talks to the course endpoints of a Learno server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"learno_backend/internal/model"
	"learno_backend/internal/service"
	"learno_backend/internal/util"
)

var (
	ErrNotFound      = errors.New("course not found")
	ErrDuplicateSave = errors.New("this course is already saved")
	ErrServer        = errors.New("server error")
	ErrNetwork       = errors.New("network error")
	ErrRejected      = errors.New("request rejected")
)

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Save posts a course. The server answers 409 for an existing
// (username, courseName, skillLevel).
func (c *Client) Save(ctx context.Context, in service.SaveCourseInput) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodPost, "/api/courses/save-course", body)
	return err
}

// SaveUnique checks the user's saved courses before posting so the duplicate
// is reported without a write.
func (c *Client) SaveUnique(ctx context.Context, in service.SaveCourseInput) error {
	courses, err := c.List(ctx, in.Username)
	if err != nil {
		return err
	}
	for _, existing := range courses {
		if existing.CourseName == in.CourseName && strings.EqualFold(existing.SkillLevel, in.SkillLevel) {
			return ErrDuplicateSave
		}
	}
	return c.Save(ctx, in)
}

// List returns an empty slice when the user has no courses.
func (c *Client) List(ctx context.Context, username string) ([]model.Course, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/courses/get-courses/"+url.PathEscape(username), nil)
	if errors.Is(err, ErrNotFound) {
		return []model.Course{}, nil
	}
	if err != nil {
		return nil, err
	}

	var courses []model.Course
	if err := json.Unmarshal(data, &courses); err != nil {
		return nil, fmt.Errorf("%w: decode courses: %v", ErrServer, err)
	}
	return courses, nil
}

func (c *Client) Get(ctx context.Context, username, courseName string) (*model.Course, error) {
	data, err := c.do(ctx, http.MethodGet, coursePath("get-course", username, courseName), nil)
	if err != nil {
		return nil, err
	}
	var course model.Course
	if err := json.Unmarshal(data, &course); err != nil {
		return nil, fmt.Errorf("%w: decode course: %v", ErrServer, err)
	}
	return &course, nil
}

func (c *Client) Delete(ctx context.Context, username, courseName string) (*model.Course, error) {
	// 删除按课程名精确匹配，不做连字符转换
	path := "/api/courses/delete-course/" + url.PathEscape(username) + "/" + url.PathEscape(courseName)
	data, err := c.do(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return nil, err
	}
	var resp struct {
		DeletedCourse *model.Course `json:"deletedCourse"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode delete response: %v", ErrServer, err)
	}
	return resp.DeletedCourse, nil
}

// Export downloads the rendered course in format (txt or xlsx).
func (c *Client) Export(ctx context.Context, username, courseName, format string) ([]byte, error) {
	path := coursePath("export", username, courseName)
	if format != "" {
		path += "?format=" + url.QueryEscape(format)
	}
	return c.do(ctx, http.MethodGet, path, nil)
}

func coursePath(action, username, courseName string) string {
	// 与前端一致，空格转为连字符
	slug := strings.ReplaceAll(strings.TrimSpace(courseName), " ", "-")
	return "/api/courses/" + action + "/" + url.PathEscape(username) + "/" + url.PathEscape(slug)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", util.MimeJSON)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrNetwork, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return data, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		return nil, ErrDuplicateSave
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: %s", ErrServer, message(data, resp.Status))
	default:
		return nil, fmt.Errorf("%w (%d): %s", ErrRejected, resp.StatusCode, message(data, resp.Status))
	}
}

func message(data []byte, fallback string) string {
	var m util.MessageResponse
	if json.Unmarshal(data, &m) == nil && m.Message != "" {
		return m.Message
	}
	return fallback
}
