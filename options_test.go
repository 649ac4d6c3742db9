package rhi

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/gogpu/wgpu/hal/noop"
)

func TestDefaultInstanceConfig(t *testing.T) {
	cfg := defaultInstanceConfig(RHITypeDirectX12)
	if cfg.Type != RHITypeDirectX12 {
		t.Errorf("Type = %s, want DirectX12", cfg.Type)
	}
	if cfg.Logger != Logger() {
		t.Error("default config does not use the package logger")
	}
	if cfg.HALBackend != nil || cfg.Debug || cfg.Validation {
		t.Errorf("default config is not minimal: %+v", cfg)
	}
}

func TestInstanceOptions(t *testing.T) {
	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	tests := []struct {
		name  string
		opt   InstanceOption
		check func(*InstanceConfig) bool
	}{
		{"WithDebug", WithDebug(), func(c *InstanceConfig) bool { return c.Debug }},
		{"WithValidation", WithValidation(), func(c *InstanceConfig) bool { return c.Validation }},
		{"WithHALBackend", WithHALBackend(noop.API{}), func(c *InstanceConfig) bool { return c.HALBackend != nil }},
		{"WithLogger", WithLogger(custom), func(c *InstanceConfig) bool { return c.Logger == custom }},
		{"WithLogger nil", WithLogger(nil), func(c *InstanceConfig) bool { return c.Logger == Logger() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultInstanceConfig(RHITypeVulkan)
			tt.opt(&cfg)
			if !tt.check(&cfg) {
				t.Errorf("%s not applied: %+v", tt.name, cfg)
			}
		})
	}
}
