package services

import (
	"sync"

	"github.com/custodia-labs/mcpland/internal/core/ports/driving"
	"github.com/custodia-labs/mcpland/internal/logger"
)

// StoreGroup tracks the live context stores of a process so shutdown can
// stop every in-flight ingestion at once.
type StoreGroup struct {
	mu     sync.Mutex
	stores map[driving.ContextStore]struct{}
}

// NewStoreGroup creates an empty group.
func NewStoreGroup() *StoreGroup {
	return &StoreGroup{stores: make(map[driving.ContextStore]struct{})}
}

// Add tracks store.
func (g *StoreGroup) Add(store driving.ContextStore) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stores[store] = struct{}{}
}

// Remove stops tracking store.
func (g *StoreGroup) Remove(store driving.ContextStore) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.stores, store)
}

// Len returns the number of tracked stores.
func (g *StoreGroup) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.stores)
}

// Shutdown signals every tracked store to stop ingesting. It does not wait
// for ingestion to stop and does not close any connection.
func (g *StoreGroup) Shutdown() {
	g.mu.Lock()
	defer g.mu.Unlock()
	logger.Info("Stopping ingestion on %d store(s)", len(g.stores))
	for store := range g.stores {
		store.StopIngestion()
	}
}
