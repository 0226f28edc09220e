package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/commitpulse/core"
	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	engine  Analytics
}

// productRequest builds a product-scoped request from the tool arguments,
// falling back to the configured defaults.
func (h *toolHandler) productRequest(request mcp.CallToolRequest) (core.Request, error) {
	req := core.RequestFromConfig(h.baseCfg)
	req.ProductID = strings.TrimSpace(request.GetString("product_id", ""))
	if req.ProductID == "" {
		return req, errors.New("product_id is required")
	}
	if u := request.GetString("user_id", ""); u != "" {
		req.UserID = u
	}
	if p := request.GetString("period", ""); p != "" {
		req.Period = schema.ParsePeriod(strings.ToLower(p))
	}
	if r := request.GetString("repo_ids", ""); r != "" {
		req.RepoIDs = contract.ParseRepoIDs(r)
	}
	if s := request.GetString("sort_by", ""); s != "" {
		req.SortBy = schema.ContributorSort(strings.ToLower(s))
	}
	if r := request.GetString("rank_by", ""); r != "" {
		req.RankBy = schema.RankBy(strings.ToLower(r))
	}
	if tz := request.GetString("timezone", ""); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return req, fmt.Errorf("invalid timezone '%s': %w", tz, err)
		}
		req.Location = loc
	}
	return req, nil
}

// dashboardRequest builds a dashboard request from the tool arguments.
func (h *toolHandler) dashboardRequest(request mcp.CallToolRequest) (core.DashboardRequest, error) {
	req := core.DashboardRequestFromConfig(h.baseCfg)
	if u := request.GetString("user_id", ""); u != "" {
		req.UserID = u
	}
	if o := request.GetString("org_id", ""); o != "" {
		req.OrgID = o
	}
	if d := request.GetInt("days", 0); d > 0 {
		req.Days = d
	}
	if req.UserID == "" {
		return req, errors.New("user_id is required")
	}
	return req, nil
}

// jsonResult renders a view as indented JSON text.
func jsonResult(v any, err error, what string) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", what, err)), nil
	}
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot encode %s: %v", what, err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// productView adapts one engine view into a tool handler.
func productView[T any](h *toolHandler, what string, compute func(context.Context, core.Request) (T, error)) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req, err := h.productRequest(request)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
		}
		result, err := compute(ctx, req)
		return jsonResult(result, err, what)
	}
}

func (h *toolHandler) handleSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return productView(h, "summary", h.engine.Summary)(ctx, request)
}

func (h *toolHandler) handleContributors(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return productView(h, "contributors", h.engine.Contributors)(ctx, request)
}

func (h *toolHandler) handleHeatmap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return productView(h, "heatmap", h.engine.Heatmap)(ctx, request)
}

func (h *toolHandler) handleDayOfWeek(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return productView(h, "day of week", h.engine.DayOfWeek)(ctx, request)
}

func (h *toolHandler) handleLeaderboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return productView(h, "leaderboard", h.engine.Leaderboard)(ctx, request)
}

func (h *toolHandler) handleVelocity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return productView(h, "velocity", h.engine.Velocity)(ctx, request)
}

func (h *toolHandler) handleActiveCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return productView(h, "active code", h.engine.ActiveCode)(ctx, request)
}

func (h *toolHandler) handleDashboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := h.dashboardRequest(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	result, err := h.engine.Dashboard(ctx, req)
	return jsonResult(result, err, "dashboard")
}

func (h *toolHandler) handleGenerateDashboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := h.dashboardRequest(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	result, err := h.engine.GenerateDashboard(ctx, req)
	return jsonResult(result, err, "dashboard generation")
}
