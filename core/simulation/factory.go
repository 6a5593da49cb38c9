package simulation

import "github.com/kilianp07/chargeinfra/core/factory"

var allocatorRegistry = factory.NewRegistry[Allocator]()

func init() {
	_ = RegisterAllocator("uncontrolled", func(map[string]any) (Allocator, error) {
		return UncontrolledAllocator{}, nil
	})
}

// RegisterAllocator adds an allocator factory identified by name.
func RegisterAllocator(name string, f factory.Factory[Allocator]) error {
	return allocatorRegistry.Register(name, f)
}

// AllocatorTypes lists the registered allocator types.
func AllocatorTypes() []string { return allocatorRegistry.Types() }

// NewAllocator creates the allocator described by cfg.
func NewAllocator(cfg factory.ModuleConfig) (Allocator, error) {
	return allocatorRegistry.Create(cfg)
}
