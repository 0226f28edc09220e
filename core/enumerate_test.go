package core

import (
	"context"
	"errors"
	"testing"

	"github.com/huangsam/commitpulse/internal/iocache"
	"github.com/huangsam/commitpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListRepos(t *testing.T) {
	ctx := context.Background()
	registry := &iocache.MockRegistryStore{}
	registry.On("ListLinkedRepos", ctx, "p1").Return([]schema.RepositoryRef{
		repoRef("r1", "api"),
		{ID: "r2", ProductID: "p1", Name: "unlinked"},
		repoRef("r3", "web"),
	}, nil)

	repos, err := ListRepos(ctx, registry, "p1", nil)
	require.NoError(t, err)
	assert.Equal(t, []schema.RepositoryRef{repoRef("r1", "api"), repoRef("r3", "web")}, repos)

	repos, err = ListRepos(ctx, registry, "p1", []string{"r3", "r2"})
	require.NoError(t, err)
	assert.Equal(t, []schema.RepositoryRef{repoRef("r3", "web")}, repos)

	repos, err = ListRepos(ctx, registry, "p1", []string{"nope"})
	require.NoError(t, err)
	assert.Empty(t, repos)
}

func TestListReposError(t *testing.T) {
	ctx := context.Background()
	registry := &iocache.MockRegistryStore{}
	registry.On("ListLinkedRepos", ctx, "p1").Return(nil, errors.New("db down"))

	_, err := ListRepos(ctx, registry, "p1", nil)
	assert.ErrorContains(t, err, "db down")
}
