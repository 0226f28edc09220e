// Package iocache persists commit statistics, shipped narratives and the product registry.
package iocache

import (
	"sync"

	"github.com/huangsam/commitpulse/internal/contract"
)

// StoreManagerImpl manages the stores opened for one process.
type StoreManagerImpl struct {
	sync.RWMutex // Protects the store pointers during initialization
	stats        contract.StatsCacheStore
	narratives   contract.NarrativeStore
	registry     contract.RegistryStore
}

var _ contract.StoreManager = &StoreManagerImpl{} // Compile-time check

// GetStatsStore returns the commit statistics cache.
func (mgr *StoreManagerImpl) GetStatsStore() contract.StatsCacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.stats
}

// GetNarrativeStore returns the narrative cache.
func (mgr *StoreManagerImpl) GetNarrativeStore() contract.NarrativeStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.narratives
}

// GetRegistryStore returns the product registry.
func (mgr *StoreManagerImpl) GetRegistryStore() contract.RegistryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.registry
}
