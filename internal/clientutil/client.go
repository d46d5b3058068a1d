// Package clientutil is brainctl's HTTP client and local secret-file
// helpers, generalized from the teacher's internal/cli from a
// player-facing game client to an operator tool talking to footybrain.
package clientutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) SweepStatus(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/api/sweep/status", "", nil, &out)
	return out, err
}

func (c *Client) SweepRun(ctx context.Context, cronSecret string, force bool) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/api/sweep/run", cronSecret, map[string]any{"force": force}, &out)
	return out, err
}

func (c *Client) SeasonsStatus(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/api/seasons/status", "", nil, &out)
	return out, err
}

func (c *Client) LeaguesTable(ctx context.Context, tier string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/api/leagues/"+url.PathEscape(tier)+"/table", "", nil, &out)
	return out, err
}

func (c *Client) LeaguesFixtures(ctx context.Context, tier string, matchday int) (map[string]any, error) {
	path := "/api/leagues/" + url.PathEscape(tier) + "/fixtures"
	if matchday > 0 {
		path += fmt.Sprintf("?matchday=%d", matchday)
	}
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, path, "", nil, &out)
	return out, err
}

func (c *Client) SquadsLeaderboard(ctx context.Context, limit int) (map[string]any, error) {
	path := "/api/squads/leaderboard"
	if limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, path, "", nil, &out)
	return out, err
}

func (c *Client) jsonRequest(ctx context.Context, method, path, cronSecret string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cronSecret != "" {
		req.Header.Set("Authorization", "Bearer "+cronSecret)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("api status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
