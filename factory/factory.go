// Package factory constructs contexts from a schema registry and keeps
// task-confined contexts for callers that want one context per provider per
// unit of work.
package factory

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/spetersoncode/hyni"
	"github.com/spetersoncode/hyni/metrics"
	"github.com/spetersoncode/hyni/registry"
)

var (
	// ErrNilRegistry is returned by New when no registry is supplied.
	ErrNilRegistry = errors.New("factory: registry cannot be nil")
	// ErrEmptyTaskID is returned when a task-confined context is requested
	// without a task ID.
	ErrEmptyTaskID = errors.New("factory: task ID cannot be empty")
)

// Option configures a Factory.
type Option func(*Factory)

// WithConfig sets the configuration used for contexts created without an
// explicit one.
func WithConfig(cfg hyni.Config) Option {
	return func(f *Factory) {
		f.config = cfg
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(f *Factory) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithFallback sets a filesystem holding <provider>.json schemas that is
// consulted when the registry has no schema file for a provider.
func WithFallback(fsys fs.FS) Option {
	return func(f *Factory) {
		f.fallback = fsys
	}
}

// WithBundledSchemas falls back to the schemas shipped with the module.
func WithBundledSchemas() Option {
	return func(f *Factory) {
		sub, err := fs.Sub(hyni.BundledSchemas, "schemas")
		if err == nil {
			f.fallback = sub
		}
	}
}

// Factory creates contexts. It is safe for concurrent use; the contexts it
// returns are not.
type Factory struct {
	registry *registry.Registry
	config   hyni.Config
	logger   *slog.Logger
	fallback fs.FS

	mu    sync.Mutex
	stats map[string]*counter

	taskMu sync.Mutex
	tasks  map[string]map[string]*hyni.Context
}

type counter struct {
	requests atomic.Int64
	hits     atomic.Int64
	misses   atomic.Int64
}

// Stats are usage counters for context construction. They count how often a
// provider was asked for; contexts are never reused.
type Stats struct {
	Hits   int64
	Misses int64
	Size   int // number of providers seen
}

// HitRate returns Hits / (Hits + Misses), or 0 before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// New creates a factory over reg.
func New(reg *registry.Registry, opts ...Option) (*Factory, error) {
	if reg == nil {
		return nil, ErrNilRegistry
	}
	f := &Factory{
		registry: reg,
		config:   hyni.DefaultConfig(),
		logger:   slog.Default(),
		stats:    make(map[string]*counter),
		tasks:    make(map[string]map[string]*hyni.Context),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// CreateContext builds a fresh context for provider with the factory's
// configuration.
func (f *Factory) CreateContext(provider string) (*hyni.Context, error) {
	return f.CreateContextWithConfig(provider, f.config)
}

// CreateContextWithConfig builds a fresh context for provider. Any load or
// validation failure is reported as a *hyni.SchemaError naming the provider
// and the attempted path.
func (f *Factory) CreateContextWithConfig(provider string, cfg hyni.Config) (*hyni.Context, error) {
	schemaPath, err := f.registry.ResolvePath(provider)
	if err != nil {
		return nil, err
	}

	f.record(provider)
	f.logger.Debug("creating context", "provider", provider, "schema", schemaPath)

	ctx, err := f.load(provider, schemaPath, cfg)
	if err != nil {
		f.logger.Error("failed to create context", "provider", provider, "schema", schemaPath, "error", err)
		return nil, &hyni.SchemaError{
			Location: schemaPath,
			Msg:      fmt.Sprintf("schema not found for provider: %s at %s", provider, schemaPath),
			Err:      err,
		}
	}
	return ctx, nil
}

func (f *Factory) load(provider, schemaPath string, cfg hyni.Config) (*hyni.Context, error) {
	if f.fallback != nil && !f.registry.IsAvailable(provider) {
		if data, err := fs.ReadFile(f.fallback, provider+".json"); err == nil {
			return hyni.NewFromJSON(data, cfg)
		}
	}
	return hyni.NewFromFile(schemaPath, cfg)
}

// record counts a lookup. The first lookup of a provider is a miss, every
// later one a hit. Nothing is counted when caching is disabled.
func (f *Factory) record(provider string) {
	if !f.config.EnableCaching {
		return
	}

	f.mu.Lock()
	c, ok := f.stats[provider]
	if !ok {
		c = &counter{}
		f.stats[provider] = c
	}
	f.mu.Unlock()

	hit := c.requests.Add(1) > 1
	if hit {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	metrics.RecordLookup(provider, hit)
}

// ClearCache resets all usage counters.
func (f *Factory) ClearCache() {
	f.mu.Lock()
	f.stats = make(map[string]*counter)
	f.mu.Unlock()
}

// Stats aggregates the usage counters over all providers.
func (f *Factory) Stats() Stats {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := Stats{Size: len(f.stats)}
	for _, c := range f.stats {
		s.Hits += c.hits.Load()
		s.Misses += c.misses.Load()
	}
	return s
}

// ProviderStats returns the usage counters of one provider.
func (f *Factory) ProviderStats(provider string) Stats {
	f.mu.Lock()
	c, ok := f.stats[provider]
	f.mu.Unlock()
	if !ok {
		return Stats{}
	}
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Size: 1}
}

// NewTaskID returns a fresh identifier for TaskContext.
func NewTaskID() string {
	return uuid.NewString()
}

// TaskContext returns the context confined to taskID for provider, creating
// it on first use. Callers must not share a task ID between goroutines that
// use the returned context concurrently.
func (f *Factory) TaskContext(taskID, provider string) (*hyni.Context, error) {
	return f.taskContext(taskID, provider, f.config)
}

func (f *Factory) taskContext(taskID, provider string, cfg hyni.Config) (*hyni.Context, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, ErrEmptyTaskID
	}

	f.taskMu.Lock()
	defer f.taskMu.Unlock()

	contexts := f.tasks[taskID]
	if ctx, ok := contexts[provider]; ok {
		return ctx, nil
	}

	ctx, err := f.CreateContextWithConfig(provider, cfg)
	if err != nil {
		return nil, err
	}
	if contexts == nil {
		contexts = make(map[string]*hyni.Context)
		f.tasks[taskID] = contexts
	}
	contexts[provider] = ctx
	return ctx, nil
}

func (f *Factory) existingTaskContext(taskID, provider string) (*hyni.Context, bool) {
	f.taskMu.Lock()
	defer f.taskMu.Unlock()
	ctx, ok := f.tasks[taskID][provider]
	return ctx, ok
}

func (f *Factory) dropTaskContext(taskID, provider string) {
	f.taskMu.Lock()
	defer f.taskMu.Unlock()
	contexts, ok := f.tasks[taskID]
	if !ok {
		return
	}
	delete(contexts, provider)
	if len(contexts) == 0 {
		delete(f.tasks, taskID)
	}
}

// ClearTaskContexts drops every context confined to taskID.
func (f *Factory) ClearTaskContexts(taskID string) {
	f.taskMu.Lock()
	delete(f.tasks, taskID)
	f.taskMu.Unlock()
}

// AvailableProviders lists providers with a schema in the registry or the
// fallback filesystem, sorted.
func (f *Factory) AvailableProviders() []string {
	names := f.registry.List()
	if f.fallback == nil {
		return names
	}

	matches, err := fs.Glob(f.fallback, "*.json")
	if err != nil || len(matches) == 0 {
		return names
	}
	seen := make(map[string]struct{}, len(names)+len(matches))
	for _, n := range names {
		seen[n] = struct{}{}
	}
	for _, m := range matches {
		seen[strings.TrimSuffix(path.Base(m), ".json")] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// IsProviderAvailable reports whether CreateContext can find a schema for
// provider.
func (f *Factory) IsProviderAvailable(provider string) bool {
	if f.registry.IsAvailable(provider) {
		return true
	}
	if f.fallback == nil || strings.TrimSpace(provider) == "" {
		return false
	}
	_, err := fs.Stat(f.fallback, provider+".json")
	return err == nil
}

// Registry returns the underlying registry.
func (f *Factory) Registry() *registry.Registry { return f.registry }

// Config returns the factory's default context configuration.
func (f *Factory) Config() hyni.Config { return f.config }
