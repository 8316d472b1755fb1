// Package observability provides hooks for metrics and tracing.
//
// Libraries emit events through package-level hook registries; main decides
// what receives them. Nothing here depends on a metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&promHooks{})
//	    observability.SetEffectHooks(&promHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnSlideStart(ctx, index, nodes)
//	// ... layout and render the slide ...
//	observability.Pipeline().OnSlideComplete(ctx, index, instructions, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the deck pipeline.
type PipelineHooks interface {
	// Per-slide events. nodes is the element count including the root.
	OnSlideStart(ctx context.Context, index, nodes int)
	OnSlideComplete(ctx context.Context, index, instructions int, duration time.Duration, err error)

	// Sink events, one per output format.
	OnRenderStart(ctx context.Context, format string)
	OnRenderComplete(ctx context.Context, format string, bytes int, duration time.Duration, err error)
}

// =============================================================================
// Effect Hooks
// =============================================================================

// EffectHooks receives events from glass effect synthesis.
type EffectHooks interface {
	// OnSynthesize records one synthesized effect document. cached reports
	// whether the blurred raster came from the cache; degraded reports that
	// the background was unavailable and only the overlay was drawn.
	OnSynthesize(ctx context.Context, cached, degraded bool, bytes int, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnSlideStart(context.Context, int, int)                              {}
func (NoopPipelineHooks) OnSlideComplete(context.Context, int, int, time.Duration, error)     {}
func (NoopPipelineHooks) OnRenderStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, int, time.Duration, error) {}

// NoopEffectHooks is a no-op implementation of EffectHooks.
type NoopEffectHooks struct{}

func (NoopEffectHooks) OnSynthesize(context.Context, bool, bool, int, time.Duration) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	effectHooks   EffectHooks   = NoopEffectHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers pipeline hooks. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetEffectHooks registers effect hooks. A nil h is ignored.
func SetEffectHooks(h EffectHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		effectHooks = h
	}
}

// SetCacheHooks registers cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Effect returns the registered effect hooks.
func Effect() EffectHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return effectHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults. Tests use it.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	effectHooks = NoopEffectHooks{}
	cacheHooks = NoopCacheHooks{}
}
