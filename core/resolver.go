package core

import (
	"context"
	"sort"

	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/schema"
)

// TokenResolver picks the hosting credential used for a request.
// Nothing is cached: every call reads the credential store again.
type TokenResolver struct {
	creds    contract.CredentialStore
	products contract.ProductStore
}

// NewTokenResolver creates a resolver over the given stores.
func NewTokenResolver(creds contract.CredentialStore, products contract.ProductStore) *TokenResolver {
	return &TokenResolver{creds: creds, products: products}
}

// Resolve returns the acting user's own token, else the first usable token of an
// owner or admin of the product's organization, else "".
// Store failures are logged and treated as a missing credential.
func (r *TokenResolver) Resolve(ctx context.Context, productID, userID string) string {
	if token := r.userToken(ctx, userID); token != "" {
		return token
	}
	if productID == "" {
		return ""
	}

	product, err := r.products.GetProduct(ctx, productID)
	if err != nil {
		contract.LogWarn("Cannot load product "+productID, err)
		return ""
	}
	if product == nil {
		return ""
	}
	return r.ResolveForOrg(ctx, product.OrganizationID)
}

// ResolveForOrg returns the first usable token among the organization's owners,
// then its admins, each group in membership order. It is meant for background
// work that has no acting user.
func (r *TokenResolver) ResolveForOrg(ctx context.Context, orgID string) string {
	if orgID == "" {
		return ""
	}
	members, err := r.creds.GetOrgAdminsWithTokens(ctx, orgID)
	if err != nil {
		contract.LogWarn("Cannot list admins of organization "+orgID, err)
		return ""
	}

	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Role == schema.RoleOwner && members[j].Role != schema.RoleOwner
	})
	for _, m := range members {
		if token := r.userToken(ctx, m.UserID); token != "" {
			return token
		}
	}
	return ""
}

func (r *TokenResolver) userToken(ctx context.Context, userID string) string {
	if userID == "" {
		return ""
	}
	token, err := r.creds.GetDecryptedToken(ctx, userID)
	if err != nil {
		contract.LogWarn("Cannot read credential of "+userID, err)
		return ""
	}
	return token
}
