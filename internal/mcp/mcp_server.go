// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/commitpulse/core"
	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Analytics is the set of views served over MCP. *core.Engine implements it.
type Analytics interface {
	Summary(ctx context.Context, req core.Request) (schema.SummaryResult, error)
	Contributors(ctx context.Context, req core.Request) (schema.ContributorsResult, error)
	Heatmap(ctx context.Context, req core.Request) (schema.HeatmapResult, error)
	DayOfWeek(ctx context.Context, req core.Request) (schema.DayOfWeekResult, error)
	Leaderboard(ctx context.Context, req core.Request) (schema.LeaderboardResult, error)
	Velocity(ctx context.Context, req core.Request) (schema.VelocityResult, error)
	ActiveCode(ctx context.Context, req core.Request) (schema.ActiveCodeResult, error)
	Dashboard(ctx context.Context, req core.DashboardRequest) (schema.DashboardResult, error)
	GenerateDashboard(ctx context.Context, req core.DashboardRequest) (schema.DashboardResult, error)
}

var _ Analytics = &core.Engine{} // Compile-time check

var periodEnum = mcp.Enum("24h", "48h", "7d", "14d", "30d", "90d", "365d")

// productTool declares a tool scoped to one product.
func productTool(name, description string, extra ...mcp.ToolOption) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithString("product_id", mcp.Description("Product to analyze."), mcp.Required()),
		mcp.WithString("user_id", mcp.Description("Acting user whose credential is tried first. Defaults to the configured user.")),
		mcp.WithString("period", mcp.Description("Time window. Defaults to '7d'."), periodEnum),
		mcp.WithString("repo_ids", mcp.Description("Comma-separated subset of the product's repository ids.")),
	}
	return mcp.NewTool(name, append(opts, extra...)...)
}

// dashboardTool declares a tool spanning every product of a user.
func dashboardTool(name, description string) mcp.Tool {
	return mcp.NewTool(name,
		mcp.WithDescription(description),
		mcp.WithString("user_id", mcp.Description("User whose products are included. Defaults to the configured user.")),
		mcp.WithString("org_id", mcp.Description("Restrict to one organization.")),
		mcp.WithNumber("days", mcp.Description("Window in days: 7, 14 or 30. Defaults to 7.")),
	)
}

// NewMCPServer initializes and configures the commit analytics MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, engine Analytics) *server.MCPServer {
	s := server.NewMCPServer(
		"Commit Pulse Analytics Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{baseCfg: baseCfg, engine: engine}

	s.AddTool(productTool("get_summary",
		"Summarize a product's commit activity: totals, focus areas, top contributors, daily activity, pulse and commit quality."),
		h.handleSummary)
	s.AddTool(productTool("get_contributors",
		"List a product's contributors with totals, focus areas, daily activity and recent commits.",
		mcp.WithString("sort_by", mcp.Description("Sort key. Defaults to 'commits'."), mcp.Enum("commits", "additions", "last_active"))),
		h.handleContributors)
	s.AddTool(productTool("get_heatmap",
		"Build a contributor by date commit grid for a product."),
		h.handleHeatmap)
	s.AddTool(productTool("get_day_of_week",
		"Count a product's commits per weekday in a timezone.",
		mcp.WithString("timezone", mcp.Description("IANA timezone such as 'America/New_York'. Defaults to the configured timezone."))),
		h.handleDayOfWeek)
	s.AddTool(productTool("get_leaderboard",
		"Rank a product's contributors by a metric.",
		mcp.WithString("rank_by", mcp.Description("Ranking metric. Defaults to 'commits'."), mcp.Enum("commits", "additions", "active_days", "files_changed"))),
		h.handleLeaderboard)
	s.AddTool(productTool("get_velocity",
		"Compare a product's velocity against the previous window, with insights and a per-repository breakdown."),
		h.handleVelocity)
	s.AddTool(productTool("get_active_code",
		"Find the files and directories of a product that changed the most."),
		h.handleActiveCode)

	s.AddTool(dashboardTool("get_dashboard",
		"Aggregate activity across a user's products with the cached shipped narratives."),
		h.handleDashboard)
	s.AddTool(dashboardTool("generate_dashboard",
		"Regenerate the shipped narrative of every product of a user, then return the dashboard."),
		h.handleGenerateDashboard)

	return s
}

// StartMCPServer starts the commit analytics MCP server on stdio.
func StartMCPServer(ctx context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	engine, err := core.NewEngineFromConfig(ctx, baseCfg, mgr)
	if err != nil {
		return err
	}
	defer engine.Close()
	return server.ServeStdio(NewMCPServer(baseCfg, engine))
}
