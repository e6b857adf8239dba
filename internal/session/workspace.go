// Package session holds per-browser working state. Each session owns a
// workspace: the photo store, the workflow stage machine, the active filter
// state and the derived views computed from the store.
package session

import (
	"sync"

	"github.com/LullabiesGr/AilbumsV2-sub002/internal/album"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/analysis"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/duplicates"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/filterview"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/people"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/workflow"
)

// Workspace is the mutable state of one culling session.
type Workspace struct {
	Store        *album.Store
	Workflow     *workflow.Controller
	Orchestrator *analysis.Orchestrator

	mu       sync.RWMutex
	filters  filterview.State
	groups   []people.Group
	clusters []duplicates.Cluster
}

// NewWorkspace creates an empty workspace bound to the given analyzer.
func NewWorkspace(analyzer analysis.Analyzer) *Workspace {
	ws := &Workspace{
		Store:    album.NewStore(),
		Workflow: workflow.NewController(),
		filters:  filterview.NewState(),
	}
	ws.Orchestrator = analysis.New(ws.Store, ws.Workflow, analyzer, ws.RebuildGroups)
	return ws
}

// Filters returns the current filter state.
func (ws *Workspace) Filters() filterview.State {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.filters
}

// SetFilters replaces the filter state.
func (ws *Workspace) SetFilters(state filterview.State) {
	ws.mu.Lock()
	ws.filters = state
	ws.mu.Unlock()
}

// FilteredPhotos returns the store contents with the active filters applied.
func (ws *Workspace) FilteredPhotos() []album.Photo {
	return filterview.Apply(ws.Store.List(), ws.Filters())
}

// RebuildGroups recomputes person groups from the current store contents.
func (ws *Workspace) RebuildGroups() {
	groups := people.BuildGroups(ws.Store.List())
	ws.mu.Lock()
	ws.groups = groups
	ws.mu.Unlock()
}

// Groups returns the person groups from the last rebuild.
func (ws *Workspace) Groups() []people.Group {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.groups
}

// GroupByID looks up one person group by its identifier.
func (ws *Workspace) GroupByID(id string) (people.Group, bool) {
	return people.GroupByID(ws.Groups(), id)
}

// SetClusters stores the duplicate clusters from the last detection run and
// reconciles the per-photo duplicate marks.
func (ws *Workspace) SetClusters(clusters []duplicates.Cluster) {
	duplicates.Reconcile(ws.Store, clusters)
	ws.mu.Lock()
	ws.clusters = clusters
	ws.mu.Unlock()
}

// Clusters returns the duplicate clusters from the last detection run.
func (ws *Workspace) Clusters() []duplicates.Cluster {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.clusters
}

// Reset clears all photos, derived views and workflow state, returning the
// workspace to a fresh upload stage. A running analysis batch is abandoned:
// its pending merges and terminal replace are discarded, never this fresh
// state. The configured analyzer is kept.
func (ws *Workspace) Reset() {
	ws.Orchestrator.Abandon()
	ws.Store.Reset()
	ws.Workflow.Reset()
	ws.mu.Lock()
	ws.filters = filterview.NewState()
	ws.groups = nil
	ws.clusters = nil
	ws.mu.Unlock()
}
