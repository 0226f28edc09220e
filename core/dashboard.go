package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/commitpulse/core/agg"
	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/internal/metrics"
	"github.com/huangsam/commitpulse/schema"
	"golang.org/x/sync/errgroup"
)

// DashboardRequest scopes a dashboard to the organizations of a user.
type DashboardRequest struct {
	UserID string
	OrgID  string // optional single organization
	Days   int    // 7, 14 or 30
}

// errNoSummarizer is returned when generation is requested without a narrative generator.
var errNoSummarizer = errors.New("narrative generation is not configured (set genai-api-key)")

// Dashboard aggregates activity across the user's products and attaches the
// cached narratives. It never generates narratives.
func (e *Engine) Dashboard(ctx context.Context, req DashboardRequest) (schema.DashboardResult, error) {
	period := schema.PeriodFromDays(req.Days)
	products, err := e.registry.ListAccessibleProducts(ctx, req.UserID, req.OrgID)
	if err != nil {
		return schema.EmptyDashboard(period), fmt.Errorf("failed to list products: %w", err)
	}
	if len(products) == 0 {
		return schema.EmptyDashboard(period), nil
	}

	activity := e.productActivity(ctx, products, req.UserID, period, nil)
	result := agg.DashboardRollup(activity, period, e.now())

	records := e.cachedNarratives(ctx, products, period)
	for _, p := range products {
		rec, ok := records[p.ID]
		if !ok {
			continue
		}
		generated := rec.GeneratedAt
		result.Products = append(result.Products, productCard(p, rec, &generated))
		if result.GeneratedAt == nil || generated.After(*result.GeneratedAt) {
			result.GeneratedAt = &generated
		}
	}
	return result, nil
}

// GenerateDashboard aggregates like Dashboard, then generates and caches a fresh
// narrative for every product. A product that fails is logged and left out.
func (e *Engine) GenerateDashboard(ctx context.Context, req DashboardRequest) (schema.DashboardResult, error) {
	period := schema.PeriodFromDays(req.Days)
	if e.summarizer == nil {
		return schema.EmptyDashboard(period), errNoSummarizer
	}
	products, err := e.registry.ListAccessibleProducts(ctx, req.UserID, req.OrgID)
	if err != nil {
		return schema.EmptyDashboard(period), fmt.Errorf("failed to list products: %w", err)
	}
	if len(products) == 0 {
		return schema.EmptyDashboard(period), nil
	}

	cards := make([]*schema.ProductShippedSummary, len(products))
	activity := e.productActivity(ctx, products, req.UserID, period, func(ctx context.Context, i int, pa agg.ProductActivity) {
		cards[i] = e.generateNarrative(ctx, pa, period)
	})

	result := agg.DashboardRollup(activity, period, e.now())
	for _, c := range cards {
		if c != nil {
			result.Products = append(result.Products, *c)
		}
	}
	now := e.now().UTC()
	result.GeneratedAt = &now
	return result, nil
}

// productActivity collects the enriched events of every product concurrently.
// Each product runs under its own timeout; then, when set, runs inside that
// same deadline once the events are known.
func (e *Engine) productActivity(ctx context.Context, products []schema.Product, userID string, period schema.Period,
	then func(ctx context.Context, i int, pa agg.ProductActivity),
) []agg.ProductActivity {
	userToken := e.resolver.userToken(ctx, userID)
	activity := make([]agg.ProductActivity, len(products))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.ProductConcurrency)
	for i, p := range products {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(gctx, e.opts.ProductTimeout)
			defer cancel()

			activity[i] = agg.ProductActivity{Product: p, Events: e.productEvents(pctx, p, userToken, period)}
			if then != nil {
				then(pctx, i, activity[i])
			}
			return nil // products never fail the group
		})
	}
	_ = g.Wait()
	return activity
}

// productEvents fetches one product with the user's token, falling back to the
// organization's admins.
func (e *Engine) productEvents(ctx context.Context, p schema.Product, userToken string, period schema.Period) []schema.TimelineEvent {
	token := userToken
	if token == "" {
		token = e.resolver.Resolve(ctx, p.ID, "")
	}
	if token == "" {
		return nil
	}
	repos, err := ListRepos(ctx, e.registry, p.ID, nil)
	if err != nil {
		contract.LogWarn("Cannot list repositories of product "+p.ID, err)
		return nil
	}
	if len(repos) == 0 {
		return nil
	}

	sc := &scope{client: e.newClient(ctx, token), repos: repos}
	events := e.window(ctx, sc, period, e.opts.PerRepoLimit)
	return e.enricher.Enrich(ctx, sc.client, events)
}

// generateNarrative asks the summarizer about one product and caches the answer.
func (e *Engine) generateNarrative(ctx context.Context, pa agg.ProductActivity, period schema.Period) *schema.ProductShippedSummary {
	summary, err := e.summarizer.SummarizeShipped(ctx, agg.ShippedInput(pa.Product.Name, period, pa.Events))
	if err != nil {
		metrics.NarrativesGenerated.WithLabelValues(metrics.ResultError).Inc()
		contract.LogWarn("Cannot generate narrative for product "+pa.Product.ID, err)
		return nil
	}
	metrics.NarrativesGenerated.WithLabelValues(metrics.ResultOK).Inc()

	commits, additions, deletions := agg.EventTotals(pa.Events)
	record := schema.NarrativeRecord{
		ProductID:             pa.Product.ID,
		Period:                period,
		Items:                 summary.Items,
		HasSignificantChanges: summary.HasSignificantChanges,
		TotalCommits:          commits,
		TotalAdditions:        additions,
		TotalDeletions:        deletions,
		LastActivityAt:        agg.LastActivity(pa.Events),
		GeneratedAt:           e.now().UTC(),
	}
	if record.Items == nil {
		record.Items = []schema.ShippedItem{}
	}
	if e.narratives != nil {
		if err := e.narratives.Upsert(ctx, record); err != nil {
			contract.LogWarn("Cannot cache narrative for product "+pa.Product.ID, err)
		}
	}
	card := productCard(pa.Product, record, &record.GeneratedAt)
	return &card
}

// cachedNarratives loads the cached narratives of products keyed by product id.
func (e *Engine) cachedNarratives(ctx context.Context, products []schema.Product, period schema.Period) map[string]schema.NarrativeRecord {
	byID := make(map[string]schema.NarrativeRecord, len(products))
	if e.narratives == nil {
		return byID
	}
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	records, err := e.narratives.GetByProductsPeriod(ctx, ids, period)
	if err != nil {
		contract.LogWarn("Cannot read cached narratives", err)
		return byID
	}
	for _, r := range records {
		byID[r.ProductID] = r
	}
	return byID
}

// productCard merges a product with its narrative.
func productCard(p schema.Product, rec schema.NarrativeRecord, generatedAt *time.Time) schema.ProductShippedSummary {
	name := p.Name
	if name == "" {
		name = agg.UnnamedProduct
	}
	items := rec.Items
	if items == nil {
		items = []schema.ShippedItem{}
	}
	return schema.ProductShippedSummary{
		ProductID:             p.ID,
		ProductName:           name,
		ProductColor:          p.Color,
		Items:                 items,
		HasSignificantChanges: rec.HasSignificantChanges,
		TotalCommits:          rec.TotalCommits,
		TotalAdditions:        rec.TotalAdditions,
		TotalDeletions:        rec.TotalDeletions,
		GeneratedAt:           generatedAt,
		LastActivityAt:        rec.LastActivityAt,
	}
}
