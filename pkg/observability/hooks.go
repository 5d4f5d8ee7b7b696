// Package observability provides hooks for metrics and logging.
//
// Library packages emit events through the registered hooks without
// depending on any metrics backend. The binary registers real
// implementations at startup; until then every hook is a no-op.
//
//	func main() {
//	    observability.SetEngineHooks(metrics)
//	    observability.SetCodecHooks(metrics)
//	    // ... run application
//	}
//
// Libraries call hooks around the work they measure:
//
//	start := time.Now()
//	f := forest.Build(records, tree)
//	observability.Engine().OnBuild(ctx, tree, f.Len(), len(f.Diagnostics()), time.Since(start))
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Engine Hooks
// =============================================================================

// EngineHooks receives events from forest builds and relationship queries.
type EngineHooks interface {
	// OnBuild records a forest build and generation pass.
	OnBuild(ctx context.Context, tree string, people, diagnostics, conflicts int, duration time.Duration)

	// OnResolve records a relationship query. kind is the relationship kind,
	// or the error code when err is set.
	OnResolve(ctx context.Context, kind string, duration time.Duration, err error)
}

// =============================================================================
// Codec Hooks
// =============================================================================

// CodecHooks receives events from import and export.
type CodecHooks interface {
	OnEncode(ctx context.Context, format string, people, size int, err error)
	OnDecode(ctx context.Context, format string, size, people int, err error)
}

// =============================================================================
// Storage Hooks
// =============================================================================

// StorageHooks receives events from dataset repositories.
type StorageHooks interface {
	// OnLoad records a dataset read. A missing dataset is reported through err.
	OnLoad(ctx context.Context, backend, dataset string, people int, duration time.Duration, err error)

	// OnSave records a dataset write.
	OnSave(ctx context.Context, backend, dataset string, people int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEngineHooks is a no-op implementation of EngineHooks.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnBuild(context.Context, string, int, int, int, time.Duration) {}
func (NoopEngineHooks) OnResolve(context.Context, string, time.Duration, error)       {}

// NoopCodecHooks is a no-op implementation of CodecHooks.
type NoopCodecHooks struct{}

func (NoopCodecHooks) OnEncode(context.Context, string, int, int, error) {}
func (NoopCodecHooks) OnDecode(context.Context, string, int, int, error) {}

// NoopStorageHooks is a no-op implementation of StorageHooks.
type NoopStorageHooks struct{}

func (NoopStorageHooks) OnLoad(context.Context, string, string, int, time.Duration, error) {}
func (NoopStorageHooks) OnSave(context.Context, string, string, int, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	engineHooks  EngineHooks  = NoopEngineHooks{}
	codecHooks   CodecHooks   = NoopCodecHooks{}
	storageHooks StorageHooks = NoopStorageHooks{}
	hooksMu      sync.RWMutex
)

// SetEngineHooks registers custom engine hooks.
// This should be called once at application startup.
func SetEngineHooks(h EngineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		engineHooks = h
	}
}

// SetCodecHooks registers custom codec hooks.
func SetCodecHooks(h CodecHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		codecHooks = h
	}
}

// SetStorageHooks registers custom storage hooks.
func SetStorageHooks(h StorageHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storageHooks = h
	}
}

// Engine returns the registered engine hooks.
func Engine() EngineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return engineHooks
}

// Codec returns the registered codec hooks.
func Codec() CodecHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return codecHooks
}

// Storage returns the registered storage hooks.
func Storage() StorageHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storageHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	engineHooks = NoopEngineHooks{}
	codecHooks = NoopCodecHooks{}
	storageHooks = NoopStorageHooks{}
}
