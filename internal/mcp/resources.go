// ABOUTME: MCP resource implementations for fitsync.
// ABOUTME: Provides fitsync://routines, fitsync://logs/recent, and fitsync://summary resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/fitsync/internal/models"
	"github.com/harperreed/fitsync/internal/storage"
	fsync "github.com/harperreed/fitsync/internal/sync"
)

const (
	routinesURI   = "fitsync://routines"
	recentLogsURI = "fitsync://logs/recent"
	summaryURI    = "fitsync://summary"

	recentLogLimit = 20
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         routinesURI,
		Name:        "Routines",
		Description: "Cached routines with their exercises resolved from the catalog",
		MIMEType:    "application/json",
	}, s.handleRoutinesResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         recentLogsURI,
		Name:        "Recent Exercise Logs",
		Description: "Latest exercise logs, newest first",
		MIMEType:    "application/json",
	}, s.handleRecentLogsResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         summaryURI,
		Name:        "Sync Summary",
		Description: "Session state and cached entity counts per kind",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)
}

type routineView struct {
	*models.Routine
	Exercises []*models.Exercise `json:"exercises"`
}

// Resource handlers

func (s *Server) handleRoutinesResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	routines, err := storage.List[*models.Routine](ctx, s.engine.Store())
	if err != nil {
		return nil, fmt.Errorf("failed to list routines: %w", err)
	}

	views := make([]routineView, 0, len(routines))
	for _, r := range routines {
		exercises, err := s.engine.RoutineExercises(ctx, r)
		if err != nil {
			return nil, err
		}
		if exercises == nil {
			exercises = []*models.Exercise{}
		}
		views = append(views, routineView{Routine: r, Exercises: exercises})
	}

	return jsonResource(routinesURI, map[string]any{
		"routines": views,
		"count":    len(views),
	})
}

func (s *Server) handleRecentLogsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	logs, err := storage.List[*models.ExerciseLog](ctx, s.engine.Store())
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}
	if len(logs) > recentLogLimit {
		logs = logs[:recentLogLimit]
	}
	if logs == nil {
		logs = []*models.ExerciseLog{}
	}

	return jsonResource(recentLogsURI, map[string]any{
		"logs":  logs,
		"count": len(logs),
	})
}

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	store := s.engine.Store()

	counts := make(map[string]int, len(models.AllKinds))
	for _, kind := range models.AllKinds {
		items, err := store.All(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", kind, err)
		}
		counts[string(kind)] = len(items)
	}

	_, seeded, err := store.Meta(ctx, fsync.BootstrapMetaKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read bootstrap flag: %w", err)
	}

	snap := s.engine.Session().Snapshot()
	sessionInfo := map[string]any{"logged_in": snap.LoggedIn()}
	if snap.LoggedIn() {
		sessionInfo["user_id"] = snap.UserID
	}

	return jsonResource(summaryURI, map[string]any{
		"generated_at": time.Now().Format(time.RFC3339),
		"session":      sessionInfo,
		"counts":       counts,
		"bootstrapped": seeded,
	})
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
