package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/fitlog/internal/library"
	"github.com/claude/fitlog/internal/storage"
	"github.com/google/uuid"
)

// HTTPClient implements DataSource by calling the fitlog REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// routines live on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// remoteError carries the server's error message for a failed request.
type remoteError struct {
	Status  int
	Message string
}

func (e *remoteError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in any) ([]byte, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("httpclient: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(data))
		}
		return nil, &remoteError{Status: resp.StatusCode, Message: e.Error}
	}

	return data, nil
}

func (c *HTTPClient) view(ctx context.Context, method, path string, in any) (library.RoutineView, error) {
	data, err := c.do(ctx, method, path, in)
	if err != nil {
		return library.RoutineView{}, err
	}
	var v library.RoutineView
	if err := json.Unmarshal(data, &v); err != nil {
		return library.RoutineView{}, fmt.Errorf("httpclient: decode routine: %w", err)
	}
	return v, nil
}

func routinePath(id uuid.UUID, format string, args ...any) string {
	return "/api/v1/routines/" + id.String() + fmt.Sprintf(format, args...)
}

func (c *HTTPClient) ListRoutines(ctx context.Context) ([]storage.RoutineSummary, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/v1/routines", nil)
	if err != nil {
		return nil, err
	}
	var list []storage.RoutineSummary
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("httpclient: decode routines: %w", err)
	}
	return list, nil
}

func (c *HTTPClient) Render(ctx context.Context, id uuid.UUID) (string, error) {
	data, err := c.do(ctx, http.MethodGet, routinePath(id, "/render"), nil)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (c *HTTPClient) AddExercise(ctx context.Context, id uuid.UUID, wi int, in library.ExerciseInput) (library.RoutineView, error) {
	return c.view(ctx, http.MethodPost, routinePath(id, "/workouts/%d/exercises", wi), in)
}

func (c *HTTPClient) RemoveExercise(ctx context.Context, id uuid.UUID, wi, ei int) (library.RoutineView, error) {
	return c.view(ctx, http.MethodDelete, routinePath(id, "/workouts/%d/exercises/%d", wi, ei), nil)
}

func (c *HTTPClient) RestoreExercise(ctx context.Context, id uuid.UUID, wi, di int) (library.RoutineView, error) {
	return c.view(ctx, http.MethodPost, routinePath(id, "/workouts/%d/deleted-exercises/%d/restore", wi, di), nil)
}

func (c *HTTPClient) UpdateReps(ctx context.Context, id uuid.UUID, wi, ei, si, reps int) (library.RoutineView, error) {
	return c.view(ctx, http.MethodPut, routinePath(id, "/workouts/%d/exercises/%d/sets/%d", wi, ei, si),
		map[string]int{"reps": reps})
}

func (c *HTTPClient) ReorderWorkouts(ctx context.Context, id uuid.UUID, from, to int) (library.RoutineView, error) {
	return c.view(ctx, http.MethodPost, routinePath(id, "/workouts/reorder"),
		map[string]int{"from": from, "to": to})
}
