package factory

import (
	"github.com/spetersoncode/hyni"
)

// ProviderHandle binds a provider name to the factory's task-confined
// contexts.
type ProviderHandle struct {
	factory *Factory
	name    string
	config  hyni.Config
}

// Provider returns a handle for name. opts are applied on top of the
// factory's configuration.
func (f *Factory) Provider(name string, opts ...hyni.ConfigOption) *ProviderHandle {
	cfg := f.config
	for _, opt := range opts {
		opt(&cfg)
	}
	return &ProviderHandle{factory: f, name: name, config: cfg}
}

// Get returns the task's context for this provider, creating it if needed.
func (h *ProviderHandle) Get(taskID string) (*hyni.Context, error) {
	return h.factory.taskContext(taskID, h.name, h.config)
}

// Reset resets the task's context for this provider, if one exists.
func (h *ProviderHandle) Reset(taskID string) {
	if ctx, ok := h.factory.existingTaskContext(taskID, h.name); ok {
		ctx.Reset()
	}
}

// Clear drops the task's context for this provider. Other providers'
// contexts for the task are kept.
func (h *ProviderHandle) Clear(taskID string) {
	h.factory.dropTaskContext(taskID, h.name)
}

// Name returns the provider name.
func (h *ProviderHandle) Name() string { return h.name }

// Config returns the configuration used for contexts created by Get.
func (h *ProviderHandle) Config() hyni.Config { return h.config }
