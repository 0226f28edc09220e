package contract

import (
	"errors"
	"fmt"
)

// ErrProductNotFound is returned when a product id does not resolve.
var ErrProductNotFound = errors.New("product not found")

// RepoRenamedError reports that the provider moved a repository permanently.
// NewFullName is set when the provider response carried it, otherwise ProviderID
// is used to look it up.
type RepoRenamedError struct {
	FullName    string
	NewFullName string
	ProviderID  int64
}

func (e *RepoRenamedError) Error() string {
	if e.NewFullName != "" {
		return fmt.Sprintf("repository %s moved to %s", e.FullName, e.NewFullName)
	}
	return fmt.Sprintf("repository %s moved (provider id %d)", e.FullName, e.ProviderID)
}

// AsRepoRenamed reports whether err is a repository move and returns it.
func AsRepoRenamed(err error) (*RepoRenamedError, bool) {
	var renamed *RepoRenamedError
	if errors.As(err, &renamed) {
		return renamed, true
	}
	return nil, false
}
