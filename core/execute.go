package core

import (
	"context"
	"errors"
	"time"

	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/internal/ghclient"
	"github.com/huangsam/commitpulse/internal/outwriter"
	"github.com/huangsam/commitpulse/internal/summarizer"
	"github.com/huangsam/commitpulse/schema"
)

// ExecutorFunc defines the function signature for executing the different views.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// NewEngineFromConfig wires an engine against the stores of mgr and the GitHub
// API. Narrative generation is enabled only when a GenAI key is configured.
func NewEngineFromConfig(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (*Engine, error) {
	var summ contract.Summarizer
	if cfg.GenAIAPIKey != "" {
		model, err := summarizer.NewGemini(ctx, cfg.GenAIAPIKey, cfg.GenAIModel)
		if err != nil {
			return nil, err
		}
		summ = summarizer.New(model)
	}
	return NewEngine(
		mgr.GetRegistryStore(),
		mgr.GetStatsStore(),
		mgr.GetNarrativeStore(),
		summ,
		ghclient.NewFactory(cfg.GitHubBaseURL),
		OptionsFromConfig(cfg),
	)
}

// runView computes one product view and prints it.
func runView[T any](ctx context.Context, cfg *contract.Config, mgr contract.StoreManager,
	compute func(*Engine, context.Context, Request) (T, error),
	write func(*outwriter.OutWriter, T, *contract.Config, time.Duration) error,
) error {
	if cfg.ProductID == "" {
		return errors.New("--product is required")
	}
	start := time.Now()
	engine, err := NewEngineFromConfig(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	defer engine.Close()

	result, err := compute(engine, ctx, RequestFromConfig(cfg))
	if err != nil {
		return err
	}
	return write(outwriter.NewOutWriter(), result, cfg, time.Since(start))
}

// ExecuteSummary prints the summary view of a product.
func ExecuteSummary(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	return runView(ctx, cfg, mgr, (*Engine).Summary, (*outwriter.OutWriter).WriteSummary)
}

// ExecuteContributors prints the per-author detail view of a product.
func ExecuteContributors(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	return runView(ctx, cfg, mgr, (*Engine).Contributors, (*outwriter.OutWriter).WriteContributors)
}

// ExecuteHeatmap prints the contributor by date grid of a product.
func ExecuteHeatmap(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	return runView(ctx, cfg, mgr, (*Engine).Heatmap, (*outwriter.OutWriter).WriteHeatmap)
}

// ExecuteDayOfWeek prints the weekday distribution of a product.
func ExecuteDayOfWeek(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	return runView(ctx, cfg, mgr, (*Engine).DayOfWeek, (*outwriter.OutWriter).WriteDayOfWeek)
}

// ExecuteLeaderboard prints the ranked contributors of a product.
func ExecuteLeaderboard(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	return runView(ctx, cfg, mgr, (*Engine).Leaderboard, (*outwriter.OutWriter).WriteLeaderboard)
}

// ExecuteVelocity prints the velocity view of a product.
func ExecuteVelocity(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	return runView(ctx, cfg, mgr, (*Engine).Velocity, (*outwriter.OutWriter).WriteVelocity)
}

// ExecuteActiveCode prints the file hotspots of a product.
func ExecuteActiveCode(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	return runView(ctx, cfg, mgr, (*Engine).ActiveCode, (*outwriter.OutWriter).WriteActiveCode)
}

// DashboardRequestFromConfig builds a dashboard request from the validated runtime config.
func DashboardRequestFromConfig(cfg *contract.Config) DashboardRequest {
	return DashboardRequest{UserID: cfg.UserID, OrgID: cfg.OrgID, Days: cfg.Days}
}

// runDashboard computes a dashboard and prints it.
func runDashboard(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager,
	compute func(*Engine, context.Context, DashboardRequest) (schema.DashboardResult, error),
) error {
	if cfg.UserID == "" {
		return errors.New("--user is required")
	}
	start := time.Now()
	engine, err := NewEngineFromConfig(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	defer engine.Close()

	result, err := compute(engine, ctx, DashboardRequestFromConfig(cfg))
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteDashboard(result, cfg, time.Since(start))
}

// ExecuteDashboard prints the dashboard with cached narratives.
func ExecuteDashboard(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	return runDashboard(ctx, cfg, mgr, (*Engine).Dashboard)
}

// ExecuteGenerateDashboard regenerates every narrative and prints the dashboard.
func ExecuteGenerateDashboard(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	return runDashboard(ctx, cfg, mgr, (*Engine).GenerateDashboard)
}
