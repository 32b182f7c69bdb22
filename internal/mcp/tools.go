// ABOUTME: MCP tool implementations for fitsync.
// ABOUTME: Session, pull, list, note/log capture, deletion, and routine generation.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/fitsync/internal/models"
	"github.com/harperreed/fitsync/internal/routine"
	"github.com/harperreed/fitsync/internal/storage"
	fsync "github.com/harperreed/fitsync/internal/sync"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "login",
		Description: "Log in to the fitness API and start a session",
	}, s.handleLogin)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "logout",
		Description: "End the current session",
	}, s.handleLogout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "session_status",
		Description: "Report whether a user is logged in",
	}, s.handleSessionStatus)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "pull",
		Description: "Refresh one kind (or all) from the API into the local cache",
	}, s.handlePull)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list",
		Description: "List cached entities of one kind",
	}, s.handleList)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_note",
		Description: "Write a journal note locally and send it to the API",
	}, s.handleAddNote)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_log",
		Description: "Record an exercise set locally and send it to the API",
	}, s.handleAddLog)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete",
		Description: "Delete a routine, note, or log locally and on the API",
	}, s.handleDelete)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "generate_routines",
		Description: "Generate a 7-day routine plan from a body-mass metric and optionally save it",
	}, s.handleGenerateRoutines)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "compute_metric",
		Description: "Compute the body-mass metric and its bucket from weight and height",
	}, s.handleComputeMetric)
}

// Tool input/output types

type emptyInput struct{}

type loginInput struct {
	Email    string `json:"email" jsonschema:"Account email"`
	Password string `json:"password" jsonschema:"Account password"`
}

type sessionOutput struct {
	LoggedIn bool   `json:"logged_in"`
	UserID   int64  `json:"user_id,omitempty"`
	Message  string `json:"message"`
}

type pullInput struct {
	Kind string `json:"kind,omitempty" jsonschema:"Kind to pull (exercises, users, routines, logs, notes, target_locations) or all; defaults to all"`
}

type pullResult struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}

type pullOutput struct {
	Results []pullResult `json:"results"`
	Message string       `json:"message"`
}

type listInput struct {
	Kind  string `json:"kind" jsonschema:"Kind to list"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
	Mine  bool   `json:"mine,omitempty" jsonschema:"Only entities owned by the logged-in user"`
}

type listOutput struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
	Items any    `json:"items"`
}

type addNoteInput struct {
	Header string `json:"header" jsonschema:"Note title"`
	Text   string `json:"text,omitempty" jsonschema:"Note body"`
}

type addLogInput struct {
	ExerciseID int64   `json:"exercise_id" jsonschema:"Catalog exercise id"`
	Weight     float64 `json:"weight,omitempty" jsonschema:"Weight lifted in kg"`
	Reps       int     `json:"reps,omitempty" jsonschema:"Repetitions"`
	Date       string  `json:"date,omitempty" jsonschema:"Date (YYYY-MM-DD), defaults to today"`
}

type deleteInput struct {
	Kind string `json:"kind" jsonschema:"routines, notes, or logs"`
	ID   int64  `json:"id" jsonschema:"Local id"`
}

type outcomeOutput struct {
	Kind        string `json:"kind"`
	ID          int64  `json:"id"`
	Synced      bool   `json:"synced"`
	RemoteError string `json:"remote_error,omitempty"`
	Message     string `json:"message"`
}

type generateInput struct {
	Metric float64 `json:"metric,omitempty" jsonschema:"Precomputed metric; ignored when weight and height are given"`
	Weight string  `json:"weight,omitempty" jsonschema:"Weight in kg"`
	Height string  `json:"height,omitempty" jsonschema:"Height in meters"`
	Gender string  `json:"gender,omitempty" jsonschema:"male or female (default male)"`
	DryRun bool    `json:"dry_run,omitempty" jsonschema:"Only return the plan without saving it"`
}

type generateOutput struct {
	Metric   float64           `json:"metric"`
	Bucket   string            `json:"bucket"`
	Routines []*models.Routine `json:"routines"`
	Outcomes []outcomeOutput   `json:"outcomes,omitempty"`
	Message  string            `json:"message"`
}

type metricInput struct {
	Weight string `json:"weight" jsonschema:"Weight in kg"`
	Height string `json:"height" jsonschema:"Height in meters"`
	Gender string `json:"gender,omitempty" jsonschema:"male or female (default male)"`
}

type metricOutput struct {
	Metric float64 `json:"metric"`
	Bucket string  `json:"bucket"`
}

// Tool handlers

func (s *Server) handleLogin(ctx context.Context, req *mcp.CallToolRequest, input loginInput) (*mcp.CallToolResult, sessionOutput, error) {
	if s.auth == nil {
		return nil, sessionOutput{}, errors.New("login is not available: no API server configured")
	}
	if input.Email == "" || input.Password == "" {
		return nil, sessionOutput{}, errors.New("email and password are required")
	}

	creds, err := s.auth.Login(ctx, input.Email, input.Password)
	if err != nil {
		return nil, sessionOutput{}, fmt.Errorf("login failed: %w", err)
	}
	if err := s.engine.Session().Save(creds.Token, creds.UserID); err != nil {
		return nil, sessionOutput{}, fmt.Errorf("login failed: %w", err)
	}

	s.logger.Info("logged in", "user", creds.UserID)
	return nil, sessionOutput{
		LoggedIn: true,
		UserID:   creds.UserID,
		Message:  fmt.Sprintf("Logged in as %s (user %d)", creds.Email, creds.UserID),
	}, nil
}

func (s *Server) handleLogout(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, sessionOutput, error) {
	s.engine.Session().Clear()
	return nil, sessionOutput{Message: "Logged out"}, nil
}

func (s *Server) handleSessionStatus(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, sessionOutput, error) {
	snap := s.engine.Session().Snapshot()
	if !snap.LoggedIn() {
		return nil, sessionOutput{Message: "Not logged in"}, nil
	}
	return nil, sessionOutput{
		LoggedIn: true,
		UserID:   snap.UserID,
		Message:  fmt.Sprintf("Logged in as user %d", snap.UserID),
	}, nil
}

func (s *Server) handlePull(ctx context.Context, req *mcp.CallToolRequest, input pullInput) (*mcp.CallToolResult, pullOutput, error) {
	var results []*fsync.PullResult
	var pullErr error

	if input.Kind == "" || input.Kind == "all" {
		results, pullErr = s.engine.PullAll(ctx)
	} else {
		kind, err := models.ParseKind(input.Kind)
		if err != nil {
			return nil, pullOutput{}, err
		}
		res, err := s.engine.Pull(ctx, kind)
		results, pullErr = []*fsync.PullResult{res}, err
	}

	out := pullOutput{Results: make([]pullResult, 0, len(results))}
	failed := 0
	for _, res := range results {
		r := pullResult{Kind: string(res.Kind), Count: res.Count}
		if res.Err != nil {
			r.Error = res.Err.Error()
			failed++
		}
		out.Results = append(out.Results, r)
	}

	if pullErr != nil && failed == len(results) {
		return nil, pullOutput{}, fmt.Errorf("pull failed: %w", pullErr)
	}
	out.Message = fmt.Sprintf("Pulled %d kind(s), %d failed", len(results)-failed, failed)
	return nil, out, nil
}

func (s *Server) handleList(ctx context.Context, req *mcp.CallToolRequest, input listInput) (*mcp.CallToolResult, listOutput, error) {
	kind, err := models.ParseKind(input.Kind)
	if err != nil {
		return nil, listOutput{}, err
	}
	if input.Limit <= 0 {
		input.Limit = 20
	}

	var items []models.Entity
	if input.Mine {
		uid, err := s.engine.Session().CurrentUserID()
		if err != nil {
			return nil, listOutput{}, err
		}
		items, err = s.engine.Store().ByUser(ctx, kind, uid)
		if err != nil {
			return nil, listOutput{}, fmt.Errorf("failed to list %s: %w", kind, err)
		}
	} else {
		items, err = s.engine.Store().All(ctx, kind)
		if err != nil {
			return nil, listOutput{}, fmt.Errorf("failed to list %s: %w", kind, err)
		}
	}

	if len(items) > input.Limit {
		items = items[:input.Limit]
	}
	if items == nil {
		items = []models.Entity{}
	}
	return nil, listOutput{Kind: string(kind), Count: len(items), Items: items}, nil
}

func (s *Server) handleAddNote(ctx context.Context, req *mcp.CallToolRequest, input addNoteInput) (*mcp.CallToolResult, outcomeOutput, error) {
	n := models.NewNote(s.currentUser(), input.Header, input.Text)
	return s.push(ctx, n)
}

func (s *Server) handleAddLog(ctx context.Context, req *mcp.CallToolRequest, input addLogInput) (*mcp.CallToolResult, outcomeOutput, error) {
	l := models.NewExerciseLog(input.ExerciseID, s.currentUser(), input.Weight, input.Reps)
	if input.Date != "" {
		d, err := time.Parse(models.DateLayout, input.Date)
		if err != nil {
			return nil, outcomeOutput{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", input.Date)
		}
		l.WithDate(d)
	}
	return s.push(ctx, l)
}

func (s *Server) handleDelete(ctx context.Context, req *mcp.CallToolRequest, input deleteInput) (*mcp.CallToolResult, outcomeOutput, error) {
	kind, err := models.ParseKind(input.Kind)
	if err != nil {
		return nil, outcomeOutput{}, err
	}
	out, err := s.engine.RemoveByID(ctx, kind, input.ID)
	if out == nil || out.Local != nil {
		return nil, outcomeOutput{}, fmt.Errorf("failed to delete %s %d: %w", kind, input.ID, err)
	}
	return nil, toOutcomeOutput(out, "Deleted"), nil
}

func (s *Server) handleGenerateRoutines(ctx context.Context, req *mcp.CallToolRequest, input generateInput) (*mcp.CallToolResult, generateOutput, error) {
	metric := input.Metric
	if input.Weight != "" || input.Height != "" {
		m, err := computeMetric(input.Weight, input.Height, input.Gender)
		if err != nil {
			return nil, generateOutput{}, err
		}
		metric = m
	}

	routines, err := routine.Generate(metric, s.currentUser())
	if err != nil {
		return nil, generateOutput{}, err
	}

	out := generateOutput{
		Metric:   metric,
		Bucket:   routine.Classify(metric).String(),
		Routines: routines,
	}
	if input.DryRun {
		out.Message = fmt.Sprintf("Generated %d routines (%s), not saved", len(routines), out.Bucket)
		return nil, out, nil
	}

	outcomes, err := s.engine.PushAll(ctx, storage.Entities(routines))
	for _, o := range outcomes {
		if o.Local != nil {
			return nil, generateOutput{}, fmt.Errorf("failed to save routines: %w", err)
		}
		out.Outcomes = append(out.Outcomes, toOutcomeOutput(o, "Saved"))
	}
	out.Message = fmt.Sprintf("Saved %d routines (%s)", len(outcomes), out.Bucket)
	return nil, out, nil
}

func (s *Server) handleComputeMetric(ctx context.Context, req *mcp.CallToolRequest, input metricInput) (*mcp.CallToolResult, metricOutput, error) {
	m, err := computeMetric(input.Weight, input.Height, input.Gender)
	if err != nil {
		return nil, metricOutput{}, err
	}
	return nil, metricOutput{Metric: m, Bucket: routine.Classify(m).String()}, nil
}

func (s *Server) push(ctx context.Context, ent models.Entity) (*mcp.CallToolResult, outcomeOutput, error) {
	out, err := s.engine.Push(ctx, ent)
	if out == nil || out.Local != nil {
		return nil, outcomeOutput{}, fmt.Errorf("failed to save %s: %w", ent.Kind(), err)
	}
	return nil, toOutcomeOutput(out, "Saved"), nil
}

// currentUser returns the logged-in user id, or 0 for local-only records.
func (s *Server) currentUser() int64 {
	uid, err := s.engine.Session().CurrentUserID()
	if err != nil {
		return 0
	}
	return uid
}

func computeMetric(weight, height, gender string) (float64, error) {
	g := routine.Male
	if gender != "" {
		parsed, err := routine.ParseGender(gender)
		if err != nil {
			return 0, err
		}
		g = parsed
	}
	return routine.ComputeMetric(weight, height, g)
}

func toOutcomeOutput(o *fsync.Outcome, verb string) outcomeOutput {
	out := outcomeOutput{
		Kind:   string(o.Kind),
		ID:     o.ID,
		Synced: o.Synced(),
	}
	if o.Remote != nil {
		out.RemoteError = o.Remote.Error()
		out.Message = fmt.Sprintf("%s %s %d locally; server sync failed", verb, o.Kind, o.ID)
	} else {
		out.Message = fmt.Sprintf("%s %s %d", verb, o.Kind, o.ID)
	}
	return out
}
