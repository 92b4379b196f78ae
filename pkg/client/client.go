// Package client is a typed Go client for the genelab HTTP API.
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
	"strconv"
	"strings"

	"github.com/daniacca/genelab/internal/lab"
)

// Client talks to one genelab server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for baseURL (e.g. "http://localhost:8080").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{baseURL: baseURL, httpClient: &http.Client{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

func (c *Client) do(ctx context.Context, method string, body, out any, path ...string) error {
	u, err := url.JoinPath(c.baseURL, path...)
	if err != nil {
		return fmt.Errorf("failed to build URL: %w", err)
	}
	return c.doURL(ctx, method, u, body, out)
}

func (c *Client) doURL(ctx context.Context, method, u string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Message: string(bytes.TrimSpace(msg))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// CreateSession starts a session in the menu and returns its snapshot.
func (c *Client) CreateSession(ctx context.Context, id string) (lab.Snapshot, error) {
	return c.snapshot(ctx, http.MethodPost, "sessions", id)
}

func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, nil, nil, "sessions", id)
}

func (c *Client) ListSessions(ctx context.Context) ([]string, error) {
	var resp struct {
		Sessions []string `json:"sessions"`
	}
	err := c.do(ctx, http.MethodGet, nil, &resp, "sessions")
	return resp.Sessions, err
}

// State returns the full snapshot of a session.
func (c *Client) State(ctx context.Context, id string) (lab.Snapshot, error) {
	return c.snapshot(ctx, http.MethodGet, "sessions", id, "state")
}

func (c *Client) snapshot(ctx context.Context, method string, path ...string) (lab.Snapshot, error) {
	var raw json.RawMessage
	if err := c.do(ctx, method, nil, &raw, path...); err != nil {
		return lab.Snapshot{}, err
	}
	return lab.DecodeSnapshotJSON(raw)
}

// Dispatch sends a player action and returns the resulting game state.
func (c *Client) Dispatch(ctx context.Context, id string, action lab.ActionType, mode lab.Phase, points int) (lab.GameState, error) {
	body := map[string]any{"type": action}
	if mode != "" {
		body["mode"] = mode
	}
	if points != 0 {
		body["points"] = points
	}
	var state lab.GameState
	err := c.do(ctx, http.MethodPost, body, &state, "sessions", id, "actions")
	return state, err
}

func (c *Client) StartMode(ctx context.Context, id string, mode lab.Phase) (lab.GameState, error) {
	return c.Dispatch(ctx, id, lab.ActionStartMode, mode, 0)
}

func (c *Client) NextLevel(ctx context.Context, id string) (lab.GameState, error) {
	return c.Dispatch(ctx, id, lab.ActionNextLevel, "", 0)
}

func (c *Client) GoToMenu(ctx context.Context, id string) (lab.GameState, error) {
	return c.Dispatch(ctx, id, lab.ActionGoToMenu, "", 0)
}

// Simulate starts a simulation. The verdict is delivered later as a
// simulation_completed event, or can be polled with State. A 409 APIError
// means another simulation is still in flight.
func (c *Client) Simulate(ctx context.Context, id string) (uint64, error) {
	var resp struct {
		Seq uint64 `json:"simulation_seq"`
	}
	err := c.do(ctx, http.MethodPost, nil, &resp, "sessions", id, "simulate")
	return resp.Seq, err
}

// SequenceOp is one edit of the session strand. Build it with the
// constructors below.
type SequenceOp struct {
	Op         string `json:"op"`
	Position   int    `json:"position,omitempty"`
	Nucleotide string `json:"nucleotide,omitempty"`
}

func SelectNucleotide(n lab.Nucleotide) SequenceOp {
	return SequenceOp{Op: "select", Nucleotide: string(n)}
}

func SetCursor(pos int) SequenceOp { return SequenceOp{Op: "cursor", Position: pos} }

func EditAt(pos int, n lab.Nucleotide) SequenceOp {
	return SequenceOp{Op: "edit", Position: pos, Nucleotide: string(n)}
}

func Insert(n lab.Nucleotide) SequenceOp { return SequenceOp{Op: "insert", Nucleotide: string(n)} }

func DeleteAt(pos int) SequenceOp { return SequenceOp{Op: "delete", Position: pos} }

func ToggleRNA() SequenceOp { return SequenceOp{Op: "toggle_rna"} }

func ResetSequence() SequenceOp { return SequenceOp{Op: "reset"} }

// EditSequence applies ops in order and returns the strand after the last.
func (c *Client) EditSequence(ctx context.Context, id string, ops ...SequenceOp) (lab.SequenceView, error) {
	var view lab.SequenceView
	for _, op := range ops {
		if err := c.do(ctx, http.MethodPost, op, &view, "sessions", id, "sequence"); err != nil {
			return view, fmt.Errorf("sequence op %s: %w", op.Op, err)
		}
	}
	return view, nil
}

// DrugOp is one change to the session's drug.
type DrugOp struct {
	Op          string `json:"op"`
	ComponentID string `json:"component_id,omitempty"`
	Index       int    `json:"index,omitempty"`
	Target      string `json:"target,omitempty"`
}

func AddComponent(catalogID string) DrugOp { return DrugOp{Op: "add", ComponentID: catalogID} }

func RemoveComponent(index int) DrugOp { return DrugOp{Op: "remove", Index: index} }

func SelectComponent(catalogID string) DrugOp {
	return DrugOp{Op: "select", ComponentID: catalogID}
}

func BindingTarget(target string) DrugOp { return DrugOp{Op: "target", Target: target} }

func ClearDrug() DrugOp { return DrugOp{Op: "clear"} }

// EditDrug applies ops in order and returns the drug after the last.
func (c *Client) EditDrug(ctx context.Context, id string, ops ...DrugOp) (lab.DrugView, error) {
	var view lab.DrugView
	for _, op := range ops {
		if err := c.do(ctx, http.MethodPost, op, &view, "sessions", id, "drug"); err != nil {
			return view, fmt.Errorf("drug op %s: %w", op.Op, err)
		}
	}
	return view, nil
}

func (c *Client) Level(ctx context.Context, mode lab.Phase, n int) (lab.LevelData, error) {
	var level lab.LevelData
	err := c.do(ctx, http.MethodGet, nil, &level, "levels", string(mode), strconv.Itoa(n))
	return level, err
}

// Levels lists a mode's level table, optionally only one difficulty.
func (c *Client) Levels(ctx context.Context, mode lab.Phase, d lab.Difficulty) ([]lab.LevelData, error) {
	u, err := url.JoinPath(c.baseURL, "levels", string(mode))
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}
	if d != "" {
		u += "?" + url.Values{"difficulty": {string(d)}}.Encode()
	}

	var resp struct {
		Levels []lab.LevelData `json:"levels"`
	}
	err = c.doURL(ctx, http.MethodGet, u, nil, &resp)
	return resp.Levels, err
}

// Pathogens lists catalog pathogens. Empty filters match everything.
func (c *Client) Pathogens(ctx context.Context, t lab.PathogenType, d lab.Difficulty) ([]lab.PathogenData, error) {
	u, err := url.JoinPath(c.baseURL, "pathogens")
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}
	q := url.Values{}
	if t != "" {
		q.Set("type", string(t))
	}
	if d != "" {
		q.Set("difficulty", string(d))
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var resp struct {
		Pathogens []lab.PathogenData `json:"pathogens"`
	}
	err = c.doURL(ctx, http.MethodGet, u, nil, &resp)
	return resp.Pathogens, err
}

// Pathogen returns one pathogen and the targets it is most vulnerable at.
func (c *Client) Pathogen(ctx context.Context, id string) (lab.PathogenData, []string, error) {
	var resp struct {
		Pathogen       lab.PathogenData `json:"pathogen"`
		OptimalTargets []string         `json:"optimal_targets"`
	}
	err := c.do(ctx, http.MethodGet, nil, &resp, "pathogens", id)
	return resp.Pathogen, resp.OptimalTargets, err
}

// PathogenResistance reports how strongly pathogen id resists the given
// interventions, in [0,1].
func (c *Client) PathogenResistance(ctx context.Context, id string, interventions []string) (float64, error) {
	u, err := url.JoinPath(c.baseURL, "pathogens", id)
	if err != nil {
		return 0, fmt.Errorf("failed to build URL: %w", err)
	}
	u += "?" + url.Values{"interventions": {strings.Join(interventions, ",")}}.Encode()

	var resp struct {
		Resistance float64 `json:"resistance"`
	}
	err = c.doURL(ctx, http.MethodGet, u, nil, &resp)
	return resp.Resistance, err
}

func (c *Client) Components(ctx context.Context) ([]lab.DrugComponent, error) {
	var resp struct {
		Components []lab.DrugComponent `json:"components"`
	}
	err := c.do(ctx, http.MethodGet, nil, &resp, "components")
	return resp.Components, err
}

// RegisterWebhook registers a webhook notifier. With no events every event
// type is delivered.
func (c *Client) RegisterWebhook(ctx context.Context, id, webhookURL string, events ...lab.EventType) error {
	cfg := map[string]any{"url": webhookURL}
	if len(events) > 0 {
		cfg["events"] = events
	}
	body := map[string]any{"type": "webhook", "id": id, "config": cfg}
	return c.do(ctx, http.MethodPost, body, nil, "notifiers")
}

// NotifierInfo describes one registered notifier.
type NotifierInfo struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

func (c *Client) Notifiers(ctx context.Context) ([]NotifierInfo, error) {
	var resp struct {
		Notifiers []NotifierInfo `json:"notifiers"`
	}
	err := c.do(ctx, http.MethodGet, nil, &resp, "notifiers")
	return resp.Notifiers, err
}

func (c *Client) UnregisterNotifier(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, nil, nil, "notifiers", id)
}
