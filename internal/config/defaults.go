package config

import (
	"git.home.luguber.info/inful/simplesite/internal/locale"
	"git.home.luguber.info/inful/simplesite/internal/paths"
	"git.home.luguber.info/inful/simplesite/internal/render"
)

// DefaultIgnoreFile is looked up in the source directory.
const DefaultIgnoreFile = ".siteignore"

// ApplyDefaults fills every unset field.
func (c *Config) ApplyDefaults() {
	if c.TemplateExtension == "" {
		c.TemplateExtension = paths.DefaultTemplateExtension
	}
	if c.OutputExtension == "" {
		c.OutputExtension = paths.DefaultOutputExtension
	}
	if c.StringsFile == "" {
		c.StringsFile = locale.DefaultPath
	}
	if c.IgnoreFile == "" {
		c.IgnoreFile = DefaultIgnoreFile
	}
	if c.SymlinkAssets == nil {
		enabled := true
		c.SymlinkAssets = &enabled
	}
	if c.OnCycle == "" {
		c.OnCycle = string(render.CycleError)
	}
}

// Symlinks reports whether secondary locales link their assets.
func (c *Config) Symlinks() bool {
	return c.SymlinkAssets == nil || *c.SymlinkAssets
}
