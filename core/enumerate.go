package core

import (
	"context"
	"fmt"

	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/schema"
)

// ListRepos returns the repositories linked to a product that have a full name.
// A non-empty filterIDs keeps only the listed repository ids.
func ListRepos(ctx context.Context, store contract.RepoStore, productID string, filterIDs []string) ([]schema.RepositoryRef, error) {
	linked, err := store.ListLinkedRepos(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories of product %s: %w", productID, err)
	}

	var keep map[string]struct{}
	if len(filterIDs) > 0 {
		keep = make(map[string]struct{}, len(filterIDs))
		for _, id := range filterIDs {
			keep[id] = struct{}{}
		}
	}

	repos := make([]schema.RepositoryRef, 0, len(linked))
	for _, r := range linked {
		if r.FullName == "" {
			continue
		}
		if keep != nil {
			if _, ok := keep[r.ID]; !ok {
				continue
			}
		}
		repos = append(repos, r)
	}
	return repos, nil
}
