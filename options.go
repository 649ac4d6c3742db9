package rhi

import (
	"log/slog"

	"github.com/gogpu/wgpu/hal"
)

// InstanceOption configures an Instance during creation.
//
// Example:
//
//	inst, err := rhi.CreateInstance(rhi.RHITypeVulkan,
//		rhi.WithValidation(),
//		rhi.WithLogger(slog.Default()),
//	)
type InstanceOption func(*InstanceConfig)

// InstanceConfig is the resolved configuration handed to a BackendFactory.
type InstanceConfig struct {
	// Type is the requested variant.
	Type RHIType

	// HALBackend overrides the execution layer the variant runs on.
	// Nil selects the platform backend matching Type.
	HALBackend hal.Backend

	// Debug enables backend debug labels and verbose logging.
	Debug bool

	// Validation enables the native validation layers.
	Validation bool

	// Logger receives instance diagnostics. Defaults to Logger().
	Logger *slog.Logger
}

func defaultInstanceConfig(t RHIType) InstanceConfig {
	return InstanceConfig{
		Type:   t,
		Logger: Logger(),
	}
}

// WithHALBackend runs the variant on the given execution layer instead of
// the platform one. Tests use the noop backend this way.
//
// Example:
//
//	inst, err := rhi.CreateInstance(rhi.RHITypeDirectX12, rhi.WithHALBackend(noop.API{}))
func WithHALBackend(b hal.Backend) InstanceOption {
	return func(c *InstanceConfig) {
		c.HALBackend = b
	}
}

// WithDebug enables debug labels on native objects.
func WithDebug() InstanceOption {
	return func(c *InstanceConfig) {
		c.Debug = true
	}
}

// WithValidation enables the native validation layers.
func WithValidation() InstanceOption {
	return func(c *InstanceConfig) {
		c.Validation = true
	}
}

// WithLogger sets the logger for this instance and everything created
// from it. A nil logger keeps the package logger.
func WithLogger(l *slog.Logger) InstanceOption {
	return func(c *InstanceConfig) {
		if l != nil {
			c.Logger = l
		}
	}
}
