// Package summarizer turns a product's recent commits into a short list of
// user-facing changes with a generative model.
package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/schema"
)

// Prompt limits.
const (
	maxCommits      = 50
	maxMessageRunes = 120
	maxFilesShown   = 5
)

const (
	itemPrefix    = "ITEM:"
	noSignificant = "NO_SIGNIFICANT_CHANGES"
)

const systemPrompt = `You summarize development work for product managers and stakeholders.

TASK: Read the commit messages and identify what was FUNCTIONALLY SHIPPED: features added, bugs fixed or meaningful improvements made.

RULES:
1. Focus on user-facing or functional changes only
2. Ignore trivial changes such as dependency bumps, lint fixes, config tweaks and refactors without user impact
3. Group related commits into a single item
4. Use active voice: "Added X", "Fixed Y", "Improved Z"
5. Be concise: at most 5 items of 5 to 15 words each
6. If nothing significant was shipped, output NO_SIGNIFICANT_CHANGES

OUTPUT FORMAT (exactly one item per line):
ITEM: feature | <description>
ITEM: fix | <description>
ITEM: improvement | <description>
ITEM: refactor | <description>

Example:
ITEM: feature | Added user authentication flow with OAuth support
ITEM: fix | Fixed login redirect bug affecting Safari users`

// TextModel generates a completion for a system instruction and a prompt.
type TextModel interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Summarizer implements contract.Summarizer on top of a TextModel.
type Summarizer struct {
	model TextModel
}

var _ contract.Summarizer = &Summarizer{} // Compile-time check

// New wraps a text model.
func New(model TextModel) *Summarizer {
	return &Summarizer{model: model}
}

// SummarizeShipped asks the model what shipped. A period without commits is
// answered locally without calling the model.
func (s *Summarizer) SummarizeShipped(ctx context.Context, input schema.ShippedInput) (schema.ShippedSummary, error) {
	if len(input.Commits) == 0 {
		return schema.ShippedSummary{Items: []schema.ShippedItem{}}, nil
	}
	text, err := s.model.Generate(ctx, systemPrompt, FormatInput(input))
	if err != nil {
		return schema.ShippedSummary{}, fmt.Errorf("failed to summarize %s: %w", input.ProductName, err)
	}
	return ParseOutput(text), nil
}

// FormatInput renders the prompt for one product.
func FormatInput(input schema.ShippedInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project: %s\n", input.ProductName)
	if len(input.Commits) == 0 {
		fmt.Fprintf(&b, "Period: %s\n\nNo commits in this period.", input.Period)
		return b.String()
	}
	fmt.Fprintf(&b, "Period: Last %s\n", input.Period.Text())
	fmt.Fprintf(&b, "Total commits: %d\n\nCOMMITS:", len(input.Commits))

	for _, c := range input.Commits[:min(maxCommits, len(input.Commits))] {
		message := schema.TruncateRunes(c.Message, maxMessageRunes)
		if message != c.Message {
			message += "..."
		}
		fmt.Fprintf(&b, "\n- %s", message)
		if len(c.Files) == 0 {
			continue
		}
		files := strings.Join(c.Files[:min(maxFilesShown, len(c.Files))], ", ")
		if extra := len(c.Files) - maxFilesShown; extra > 0 {
			files += fmt.Sprintf(" (+%d more)", extra)
		}
		fmt.Fprintf(&b, "\n  Files: %s", files)
	}
	if len(input.Commits) > maxCommits {
		fmt.Fprintf(&b, "\n\n(Showing %d of %d commits)", maxCommits, len(input.Commits))
	}
	return b.String()
}

// ParseOutput reads "ITEM: category | description" lines. Unknown categories
// become improvements; a NO_SIGNIFICANT_CHANGES line ends the scan.
func ParseOutput(text string) schema.ShippedSummary {
	summary := schema.ShippedSummary{Items: []schema.ShippedItem{}, HasSignificantChanges: true}
	for line := range strings.SplitSeq(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == noSignificant {
			summary.HasSignificantChanges = false
			break
		}
		content, ok := strings.CutPrefix(line, itemPrefix)
		if !ok {
			continue
		}
		category, description, ok := strings.Cut(content, "|")
		if !ok {
			continue
		}
		summary.Items = append(summary.Items, schema.ShippedItem{
			Description: strings.TrimSpace(description),
			Category:    parseCategory(category),
		})
	}
	if len(summary.Items) > 0 {
		summary.HasSignificantChanges = true
	}
	return summary
}

func parseCategory(s string) schema.ShippedCategory {
	switch c := schema.ShippedCategory(strings.ToLower(strings.TrimSpace(s))); c {
	case schema.CategoryFeature, schema.CategoryFix, schema.CategoryImprovement, schema.CategoryRefactor:
		return c
	default:
		return schema.CategoryImprovement
	}
}
