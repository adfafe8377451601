package commands

import (
	"log/slog"
	"path/filepath"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/simplesite/internal/config"
	ferrors "git.home.luguber.info/inful/simplesite/internal/foundation/errors"
	"git.home.luguber.info/inful/simplesite/internal/locale"
	"git.home.luguber.info/inful/simplesite/internal/logfields"
	"git.home.luguber.info/inful/simplesite/internal/metrics"
	"git.home.luguber.info/inful/simplesite/internal/paths"
	"git.home.luguber.info/inful/simplesite/internal/render"
	"git.home.luguber.info/inful/simplesite/internal/site"
)

// SiteFlags are shared by the commands that build.
type SiteFlags struct {
	Source      string `arg:"" type:"existingdir" help:"Source directory with templates and assets"`
	Output      string `arg:"" type:"path" help:"Output directory (cleared on every build)"`
	Strings     string `short:"s" type:"path" help:"Localization table, TOML or YAML (default strings.toml, optional)"`
	NoSymlinks  bool   `name:"no-symlinks" help:"Copy assets into every locale instead of linking to the primary locale"`
	OnCycle     string `name:"on-cycle" help:"What to do when autolink re-enters a page being rendered (error|partial)"`
	MetricsFile string `name:"metrics-file" type:"path" help:"Write Prometheus metrics in textfile format after each build"`
	TemplateExt string `name:"template-ext" help:"Extension marking template files (default .tmpl)"`
}

// buildSettings is the resolved configuration of a build-capable command.
type buildSettings struct {
	Options  site.Options
	Config   *config.Config
	recorder *metrics.PrometheusRecorder
}

// resolve merges the config file with flag overrides. Flags win.
func (f *SiteFlags) resolve(root *CLI, logger *slog.Logger) (*buildSettings, error) {
	cfg, err := config.Load(root.Config, root.Config != config.DefaultPath)
	if err != nil {
		return nil, err
	}

	requireStrings := cfg.StringsFile != locale.DefaultPath
	if f.Strings != "" {
		cfg.StringsFile = f.Strings
		requireStrings = true
	}
	if f.NoSymlinks {
		disabled := false
		cfg.SymlinkAssets = &disabled
	}
	if f.OnCycle != "" {
		cfg.OnCycle = f.OnCycle
	}
	if f.MetricsFile != "" {
		cfg.MetricsFile = f.MetricsFile
	}
	if f.TemplateExt != "" {
		cfg.TemplateExtension = f.TemplateExt
	}
	if err := cfg.Validate(); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryValidation, "invalid build settings").Build()
	}

	policy, _ := render.ParseCyclePolicy(cfg.OnCycle)
	settings := &buildSettings{
		Config: cfg,
		Options: site.Options{
			SourceDir:      f.Source,
			OutputDir:      f.Output,
			StringsFile:    cfg.StringsFile,
			RequireStrings: requireStrings,
			IgnoreFile:     cfg.IgnoreFile,
			Symlinks:       cfg.Symlinks(),
			Mapper:         paths.NewMapper(cfg.TemplateExtension, cfg.OutputExtension),
			OnCycle:        policy,
			Logger:         logger,
		},
	}
	if cfg.MetricsFile != "" {
		settings.recorder = metrics.NewPrometheusRecorder(prom.NewRegistry())
		settings.Options.Recorder = settings.recorder
	}
	return settings, nil
}

// watchedFiles lists inputs outside the template walk that affect a build.
func (s *buildSettings) watchedFiles(configPath string) []string {
	return []string{
		s.Options.StringsFile,
		filepath.Join(s.Options.SourceDir, s.Options.IgnoreFile),
		configPath,
	}
}

// flushMetrics writes the metrics textfile when one is configured. Failures
// are logged; metrics never fail a build.
func (s *buildSettings) flushMetrics(logger *slog.Logger) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.WriteTextfile(s.Config.MetricsFile); err != nil {
		logger.Warn("Failed to write metrics", logfields.Path(s.Config.MetricsFile), logfields.Error(err))
	}
}
