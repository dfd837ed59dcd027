package chart

import (
	"sort"
	"sync"
)

// Board tracks the chart drawn on each mount point. Rendering onto a target
// replaces whatever chart was there, so repeated calculations never stack.
type Board struct {
	mu     sync.RWMutex
	charts map[string]Chart
}

// NewBoard returns an empty board
func NewBoard() *Board {
	return &Board{charts: make(map[string]Chart)}
}

// Render binds c to target, replacing any previous chart on it
func (b *Board) Render(target string, c Chart) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.charts[target] = c
}

// Get returns the chart currently bound to target
func (b *Board) Get(target string) (Chart, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.charts[target]
	return c, ok
}

// Snippet renders the chart on target as embeddable HTML
func (b *Board) Snippet(target string) (Snippet, bool, error) {
	c, ok := b.Get(target)
	if !ok {
		return Snippet{}, false, nil
	}
	s, err := c.HTML(target)
	if err != nil {
		return Snippet{}, true, err
	}
	return s, true, nil
}

// Targets lists the bound targets in sorted order
func (b *Board) Targets() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	targets := make([]string, 0, len(b.charts))
	for t := range b.charts {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return targets
}

// Clear removes every chart
func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.charts = make(map[string]Chart)
}
