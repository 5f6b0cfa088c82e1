package challenge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/beattype/internal/rhythm"
)

const defaultTimeout = 5 * time.Second

// Client is a Source backed by the challenge HTTP API.
type Client struct {
	baseURL   string
	http      *http.Client
	sessionID string
}

// NewClient returns a Client for baseURL. A nil httpClient uses a client
// with a short timeout so a slow service never stalls play.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      httpClient,
		sessionID: uuid.NewString(),
	}
}

// SessionID returns the id sent with every request.
func (c *Client) SessionID() string {
	return c.sessionID
}

// StartSession implements Source.
func (c *Client) StartSession(ctx context.Context, level int) (Level, error) {
	var resp startResponse
	if err := c.do(ctx, "start session", http.MethodPost, "/api/v1/session/start", startRequest{Level: level}, &resp); err != nil {
		return Level{}, err
	}
	if !resp.Success {
		return Level{}, &NetworkError{Op: "start session", Err: errors.New(orDefault(resp.Error, "service refused session"))}
	}
	pattern, err := rhythm.PatternFromInts(resp.RhythmPattern)
	if err != nil {
		return Level{}, fmt.Errorf("level %d: %w", level, err)
	}
	if resp.BPM <= 0 {
		return Level{}, fmt.Errorf("level %d: %w", level, &rhythm.ConfigError{Field: "tempo", Reason: fmt.Sprintf("service sent %v BPM", resp.BPM)})
	}
	return Level{ID: level, Name: resp.Name, Tempo: resp.BPM, Pattern: pattern}, nil
}

// NextWord implements Source.
func (c *Client) NextWord(ctx context.Context) (string, error) {
	var resp challengeResponse
	if err := c.do(ctx, "fetch word", http.MethodGet, "/api/v1/game/challenge", nil, &resp); err != nil {
		return "", err
	}
	word := strings.TrimSpace(resp.Word)
	if word == "" {
		return "", &NetworkError{Op: "fetch word", Err: errors.New(orDefault(resp.Error, "empty word"))}
	}
	return word, nil
}

// SubmitWordResult implements Source.
func (c *Client) SubmitWordResult(ctx context.Context, result WordResult) error {
	req := submitRequest{
		Word:         result.Word,
		Score:        result.Score,
		Accuracy:     result.Accuracy,
		Combo:        result.Combo,
		Completed:    result.Completed,
		TimingPoints: encodeTimingPoints(result.TimingPoints),
	}
	return c.do(ctx, "submit word", http.MethodPost, "/api/v1/game/submit", req, nil)
}

// EndSession implements Source.
func (c *Client) EndSession(ctx context.Context) (EndResult, error) {
	var resp endResponse
	if err := c.do(ctx, "end session", http.MethodPost, "/api/v1/session/end", struct{}{}, &resp); err != nil {
		return EndResult{}, err
	}
	if !resp.Success {
		return EndResult{}, &NetworkError{Op: "end session", Err: errors.New(orDefault(resp.Error, "service refused end"))}
	}
	return EndResult{MaxCombo: resp.Stats.MaxCombo, WordsCompleted: resp.Stats.WordsCompleted}, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Session-ID", c.sessionID)

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &NetworkError{Op: op, Status: resp.StatusCode, Err: errors.New(strings.TrimSpace(string(respBody)))}
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &NetworkError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
