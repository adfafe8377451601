package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/simplesite/internal/render"
)

// Validate checks a configuration with defaults applied.
func (c *Config) Validate() error {
	for field, ext := range map[string]string{
		"template_extension": c.TemplateExtension,
		"output_extension":   c.OutputExtension,
	} {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("%s must start with a dot: %q", field, ext)
		}
		if strings.ContainsAny(ext, `/\`) {
			return fmt.Errorf("%s must not contain path separators: %q", field, ext)
		}
	}
	// Template detection compares the final extension only.
	if strings.Count(c.TemplateExtension, ".") > 1 {
		return fmt.Errorf("template_extension must be a single extension such as .tmpl: %q", c.TemplateExtension)
	}
	if c.TemplateExtension == c.OutputExtension {
		return fmt.Errorf("template_extension and output_extension must differ: %q", c.TemplateExtension)
	}
	if filepath.IsAbs(c.IgnoreFile) {
		return fmt.Errorf("ignore_file must be relative to the source directory: %q", c.IgnoreFile)
	}
	if _, err := render.ParseCyclePolicy(c.OnCycle); err != nil {
		return fmt.Errorf("on_cycle: %w", err)
	}
	return nil
}
