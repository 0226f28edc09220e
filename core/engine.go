package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/commitpulse/core/agg"
	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/schema"
)

// Request scopes one analytics call to a product.
type Request struct {
	ProductID string
	UserID    string
	RepoIDs   []string // optional subset of the product's repositories
	Period    schema.Period
	SortBy    schema.ContributorSort
	RankBy    schema.RankBy
	Location  *time.Location
}

// RequestFromConfig builds a request from the validated runtime config.
func RequestFromConfig(cfg *contract.Config) Request {
	return Request{
		ProductID: cfg.ProductID,
		UserID:    cfg.UserID,
		RepoIDs:   cfg.RepoIDs,
		Period:    cfg.Period,
		SortBy:    cfg.SortBy,
		RankBy:    cfg.RankBy,
		Location:  cfg.Location,
	}
}

// EngineOptions bounds the fan-out of an Engine.
type EngineOptions struct {
	RepoConcurrency    int
	StatsConcurrency   int
	ProductConcurrency int
	PerRepoLimit       int
	ProductTimeout     time.Duration
}

// OptionsFromConfig extracts the engine bounds from the runtime config.
func OptionsFromConfig(cfg *contract.Config) EngineOptions {
	return EngineOptions{
		RepoConcurrency:    cfg.RepoConcurrency,
		StatsConcurrency:   cfg.StatsConcurrency,
		ProductConcurrency: cfg.ProductConcurrency,
		PerRepoLimit:       cfg.PerRepoLimit,
		ProductTimeout:     cfg.ProductTimeout,
	}
}

// Engine runs the per-view pipelines: resolve the credential once, enumerate
// repositories, fetch, enrich and aggregate.
type Engine struct {
	registry   contract.RegistryStore
	narratives contract.NarrativeStore
	summarizer contract.Summarizer
	newClient  contract.ClientFactory
	resolver   *TokenResolver
	fetcher    *Fetcher
	enricher   *Enricher
	opts       EngineOptions
	now        func() time.Time
}

// NewEngine wires an engine. narratives and summarizer may be nil when the
// dashboard is not used.
func NewEngine(registry contract.RegistryStore, stats contract.StatsCacheStore, narratives contract.NarrativeStore,
	summarizer contract.Summarizer, factory contract.ClientFactory, opts EngineOptions,
) (*Engine, error) {
	if registry == nil {
		return nil, fmt.Errorf("product registry is not initialized")
	}
	if factory == nil {
		return nil, fmt.Errorf("hosting client factory is required")
	}
	if opts.PerRepoLimit <= 0 {
		opts.PerRepoLimit = contract.DefaultPerRepoLimit
	}
	if opts.ProductConcurrency <= 0 {
		opts.ProductConcurrency = contract.DefaultProductConcurrency
	}
	if opts.ProductTimeout <= 0 {
		opts.ProductTimeout = contract.DefaultProductTimeout
	}

	fetcher, err := NewFetcher(opts.RepoConcurrency)
	if err != nil {
		return nil, err
	}
	return &Engine{
		registry:   registry,
		narratives: narratives,
		summarizer: summarizer,
		newClient:  factory,
		resolver:   NewTokenResolver(registry, registry),
		fetcher:    fetcher,
		enricher:   NewEnricher(stats, opts.StatsConcurrency),
		opts:       opts,
		now:        time.Now,
	}, nil
}

// Close releases the fetch pool.
func (e *Engine) Close() {
	e.fetcher.Release()
}

// scope is the resolved credential and repository set of a request.
type scope struct {
	client contract.HostingClient
	repos  []schema.RepositoryRef
}

// prepare resolves the credential and the repositories once per request.
// A nil scope means there is no data to show.
func (e *Engine) prepare(ctx context.Context, productID, userID string, repoIDs []string) (*scope, error) {
	token := e.resolver.Resolve(ctx, productID, userID)
	if token == "" {
		return nil, nil
	}
	repos, err := ListRepos(ctx, e.registry, productID, repoIDs)
	if err != nil {
		return nil, err
	}
	if len(repos) == 0 {
		return nil, nil
	}
	return &scope{client: e.newClient(ctx, token), repos: repos}, nil
}

// window fetches the events of one period and stores any rename found.
// The scope follows the rename so later windows of the request use the new name.
func (e *Engine) window(ctx context.Context, sc *scope, period schema.Period, limit int) []schema.TimelineEvent {
	if sc == nil {
		return nil
	}
	outcome := e.fetcher.Fetch(ctx, sc.client, sc.repos, period.Start(e.now()), limit)
	if len(outcome.Repairs) > 0 {
		ApplyRepairs(ctx, e.registry, outcome.Repairs)
		sc.follow(outcome.Repairs)
	}
	return outcome.Events
}

// follow points the scope's repositories at their repaired full names.
func (sc *scope) follow(repairs []schema.RenameRepair) {
	for _, r := range repairs {
		for i := range sc.repos {
			if sc.repos[i].ID == r.RepositoryID {
				sc.repos[i].FullName = r.NewFullName
			}
		}
	}
}

// enrichedWindow fetches and enriches the events of one period.
func (e *Engine) enrichedWindow(ctx context.Context, req Request) ([]schema.TimelineEvent, error) {
	sc, err := e.prepare(ctx, req.ProductID, req.UserID, req.RepoIDs)
	if err != nil || sc == nil {
		return nil, err
	}
	events := e.window(ctx, sc, req.Period, e.opts.PerRepoLimit)
	return e.enricher.Enrich(ctx, sc.client, events), nil
}

// Summary computes the summary view, comparing against the period before it.
func (e *Engine) Summary(ctx context.Context, req Request) (schema.SummaryResult, error) {
	period := schema.ParsePeriod(string(req.Period))
	sc, err := e.prepare(ctx, req.ProductID, req.UserID, req.RepoIDs)
	if err != nil {
		return schema.EmptySummary(period), err
	}
	if sc == nil {
		return schema.EmptySummary(period), nil
	}

	current := e.window(ctx, sc, period, e.opts.PerRepoLimit)
	if len(current) == 0 {
		return schema.EmptySummary(period), nil
	}
	current = e.enricher.Enrich(ctx, sc.client, current)
	// Only ids of the extended window are needed, so it stays unenriched
	extended := e.window(ctx, sc, period.Extended(), e.opts.PerRepoLimit)
	return agg.Summary(current, extended, period, e.now()), nil
}

// Contributors computes the per-author detail view.
func (e *Engine) Contributors(ctx context.Context, req Request) (schema.ContributorsResult, error) {
	req.Period = schema.ParsePeriod(string(req.Period))
	events, err := e.enrichedWindow(ctx, req)
	return agg.Contributors(events, req.Period, req.SortBy, e.now()), err
}

// Heatmap computes the contributor by date grid. Line counts are not needed.
func (e *Engine) Heatmap(ctx context.Context, req Request) (schema.HeatmapResult, error) {
	period := schema.ParsePeriod(string(req.Period))
	sc, err := e.prepare(ctx, req.ProductID, req.UserID, req.RepoIDs)
	if err != nil {
		return agg.Heatmap(nil, period, e.now()), err
	}
	return agg.Heatmap(e.window(ctx, sc, period, e.opts.PerRepoLimit), period, e.now()), nil
}

// DayOfWeek computes the weekday distribution in req.Location.
func (e *Engine) DayOfWeek(ctx context.Context, req Request) (schema.DayOfWeekResult, error) {
	period := schema.ParsePeriod(string(req.Period))
	sc, err := e.prepare(ctx, req.ProductID, req.UserID, req.RepoIDs)
	if err != nil {
		return agg.DayOfWeek(nil, period, req.Location), err
	}
	return agg.DayOfWeek(e.window(ctx, sc, period, e.opts.PerRepoLimit), period, req.Location), nil
}

// Leaderboard computes the ranked contributor view.
func (e *Engine) Leaderboard(ctx context.Context, req Request) (schema.LeaderboardResult, error) {
	req.Period = schema.ParsePeriod(string(req.Period))
	events, err := e.enrichedWindow(ctx, req)
	return agg.Leaderboard(events, req.Period, req.RankBy, e.now()), err
}

// Velocity computes the velocity view over the extended window.
func (e *Engine) Velocity(ctx context.Context, req Request) (schema.VelocityResult, error) {
	period := schema.ParsePeriod(string(req.Period))
	sc, err := e.prepare(ctx, req.ProductID, req.UserID, req.RepoIDs)
	if err != nil {
		return schema.EmptyVelocity(period), err
	}
	events := e.window(ctx, sc, period.Extended(), max(e.opts.PerRepoLimit, contract.DefaultVelocityRepoLimit))
	if len(events) == 0 {
		return schema.EmptyVelocity(period), nil
	}
	return agg.Velocity(e.enricher.Enrich(ctx, sc.client, events), period, e.now()), nil
}

// ActiveCode computes file and directory hotspots of the period.
func (e *Engine) ActiveCode(ctx context.Context, req Request) (schema.ActiveCodeResult, error) {
	period := schema.ParsePeriod(string(req.Period))
	sc, err := e.prepare(ctx, req.ProductID, req.UserID, req.RepoIDs)
	if err != nil {
		return schema.EmptyActiveCode(period), err
	}
	events := e.window(ctx, sc, period, e.opts.PerRepoLimit)
	if len(events) == 0 {
		return schema.EmptyActiveCode(period), nil
	}
	files := e.enricher.CollectFiles(ctx, sc.client, events)
	return agg.ActiveCode(files, period, len(sc.repos) > 1), nil
}
