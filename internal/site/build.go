package site

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/simplesite/internal/assets"
	ferrors "git.home.luguber.info/inful/simplesite/internal/foundation/errors"
	"git.home.luguber.info/inful/simplesite/internal/locale"
	"git.home.luguber.info/inful/simplesite/internal/logfields"
	"git.home.luguber.info/inful/simplesite/internal/markdown"
	"git.home.luguber.info/inful/simplesite/internal/metrics"
	"git.home.luguber.info/inful/simplesite/internal/paths"
	"git.home.luguber.info/inful/simplesite/internal/render"
)

// Options configures a Builder.
type Options struct {
	SourceDir string
	OutputDir string
	// StringsFile is the localization table. Empty disables localization.
	StringsFile string
	// RequireStrings makes a missing StringsFile fatal; otherwise the build
	// runs unlocalized when the file is absent.
	RequireStrings bool
	// IgnoreFile is relative to SourceDir.
	IgnoreFile string
	// Symlinks makes secondary locales link to the primary locale's assets.
	Symlinks bool
	Mapper   paths.Mapper
	OnCycle  render.CyclePolicy
	Logger   *slog.Logger
	Recorder metrics.Recorder
}

// Report summarizes a finished build.
type Report struct {
	BuildID string
	// Locales is empty for an unlocalized build.
	Locales   []string
	Templates int
	// Pages and Assets are keyed by locale, "" when unlocalized.
	Pages      map[string]int
	Assets     map[string]int
	AssetModes map[string]assets.Mode
	// Skipped is set when the localization table declared no locales and
	// nothing was written.
	Skipped  bool
	Duration time.Duration
}

// Localized reports whether the build rendered per locale.
func (r *Report) Localized() bool {
	return len(r.Locales) > 0
}

// TotalPages sums pages over all locales.
func (r *Report) TotalPages() int {
	n := 0
	for _, c := range r.Pages {
		n += c
	}
	return n
}

// Builder runs site builds. A Builder may be reused; every Build starts from
// a clean output root and fresh render state.
type Builder struct {
	opts Options
}

// NewBuilder returns a Builder with defaults substituted for unset options.
func NewBuilder(opts Options) *Builder {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Mapper == (paths.Mapper{}) {
		opts.Mapper = paths.NewMapper("", "")
	}
	if opts.OnCycle == "" {
		opts.OnCycle = render.CycleError
	}
	return &Builder{opts: opts}
}

// Build performs one full build.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{
		BuildID:    uuid.NewString(),
		Pages:      map[string]int{},
		Assets:     map[string]int{},
		AssetModes: map[string]assets.Mode{},
	}
	logger := b.opts.Logger.With(logfields.BuildID(report.BuildID))

	err := b.build(ctx, logger, report)
	report.Duration = time.Since(start)
	b.opts.Recorder.ObserveBuildDuration(report.Duration)

	switch {
	case err != nil:
		b.opts.Recorder.IncBuildOutcome(metrics.OutcomeFailed)
		return report, err
	case report.Skipped:
		b.opts.Recorder.IncBuildOutcome(metrics.OutcomeNoop)
	default:
		b.opts.Recorder.IncBuildOutcome(metrics.OutcomeSuccess)
		logger.Info("Build finished",
			logfields.Count(report.TotalPages()),
			logfields.DurationMS(float64(report.Duration.Microseconds())/1000))
	}
	return report, nil
}

func (b *Builder) build(ctx context.Context, logger *slog.Logger, report *Report) error {
	if err := b.validateDirs(); err != nil {
		return err
	}

	table, err := b.loadStrings(logger)
	if err != nil {
		return err
	}
	if table != nil && table.Empty() {
		logger.Info("Localization table declares no locales; nothing to build",
			logfields.Path(b.opts.StringsFile))
		report.Skipped = true
		return nil
	}

	ignorePath := filepath.Join(b.opts.SourceDir, b.opts.IgnoreFile)
	ignored, err := ReadIgnoreFile(ignorePath)
	if err != nil {
		return err
	}
	templates, err := DiscoverTemplates(b.opts.SourceDir, b.opts.Mapper, ignored)
	if err != nil {
		return err
	}
	set, err := render.ParseSet(templates)
	if err != nil {
		return err
	}
	report.Templates = set.Len()
	logger.Debug("Templates discovered", logfields.Count(set.Len()), logfields.Source(b.opts.SourceDir))

	if err := b.resetOutput(logger); err != nil {
		return err
	}

	replicator := assets.NewReplicator(b.opts.Mapper.IsTemplate, logger, filepath.ToSlash(filepath.Clean(b.opts.IgnoreFile)))
	converter := markdown.NewConverter()

	if table == nil {
		return b.buildLocale(ctx, logger, report, set, replicator, converter, nil, "", assets.ModeCopy, "")
	}

	locales := table.Locales()
	report.Locales = locales
	primary, _ := table.Primary()
	primaryDir := paths.LocaleDir(b.opts.OutputDir, primary)
	for i, loc := range locales {
		mode := assets.ModeCopy
		if i > 0 && b.opts.Symlinks {
			mode = assets.ModeSymlink
		}
		if err := b.buildLocale(ctx, logger, report, set, replicator, converter, table, loc, mode, primaryDir); err != nil {
			return err
		}
	}
	return nil
}

// buildLocale replicates assets and renders every page for one locale.
func (b *Builder) buildLocale(
	ctx context.Context,
	logger *slog.Logger,
	report *Report,
	set *render.Set,
	replicator *assets.Replicator,
	converter *markdown.Converter,
	table *locale.Table,
	loc string,
	mode assets.Mode,
	primaryDir string,
) error {
	if err := ctx.Err(); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "build canceled").Build()
	}

	start := time.Now()
	localeDir := paths.LocaleDir(b.opts.OutputDir, loc)
	if loc != "" {
		logger = logger.With(logfields.Locale(loc))
	}

	var (
		n   int
		err error
	)
	if mode == assets.ModeSymlink {
		n, err = replicator.SymlinkAssets(b.opts.SourceDir, localeDir, primaryDir)
	} else {
		n, err = replicator.CopyAssets(b.opts.SourceDir, localeDir)
	}
	if err != nil {
		return err
	}
	report.Assets[loc] = n
	report.AssetModes[loc] = mode
	b.opts.Recorder.AddAssets(loc, string(mode), n)

	engine := render.NewEngine(set, render.Options{
		Locale:     loc,
		Strings:    table,
		OutputRoot: b.opts.OutputDir,
		Mapper:     b.opts.Mapper,
		OnCycle:    b.opts.OnCycle,
		Logger:     logger,
		Recorder:   b.opts.Recorder,
		Markdown:   converter,
	})
	if err := engine.RenderAll(); err != nil {
		return err
	}
	report.Pages[loc] = engine.Rendered()

	elapsed := time.Since(start)
	b.opts.Recorder.ObserveLocaleDuration(loc, elapsed)
	logger.Info("Locale built",
		logfields.Mode(string(mode)),
		logfields.Count(engine.Rendered()),
		logfields.DurationMS(float64(elapsed.Microseconds())/1000))
	return nil
}

// loadStrings returns nil when the build is unlocalized.
func (b *Builder) loadStrings(logger *slog.Logger) (*locale.Table, error) {
	path := b.opts.StringsFile
	if path == "" {
		return nil, nil
	}
	if !b.opts.RequireStrings {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			logger.Info("No localization table found; building unlocalized", logfields.Path(path))
			return nil, nil
		}
	}
	return locale.Load(path)
}

// resetOutput removes the previous output tree and recreates the root.
func (b *Builder) resetOutput(logger *slog.Logger) error {
	if err := os.RemoveAll(b.opts.OutputDir); err != nil {
		logger.Warn("Could not clear output directory", logfields.Output(b.opts.OutputDir), logfields.Error(err))
	}
	if err := os.MkdirAll(b.opts.OutputDir, 0o755); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "create output directory").
			Fatal().
			WithContext("path", b.opts.OutputDir).
			Build()
	}
	return nil
}

// validateDirs rejects layouts where clearing the output would destroy the
// source, or where the output would be copied into itself.
func (b *Builder) validateDirs() error {
	info, err := os.Stat(b.opts.SourceDir)
	if err != nil || !info.IsDir() {
		return ferrors.ValidationError("source directory does not exist or is not a directory").
			WithCause(err).
			WithContext("path", b.opts.SourceDir).
			Build()
	}

	src, err := filepath.Abs(b.opts.SourceDir)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "resolve source directory").Build()
	}
	out, err := filepath.Abs(b.opts.OutputDir)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "resolve output directory").Build()
	}
	if within(src, out) || within(out, src) {
		return ferrors.ValidationError("output directory must not overlap the source directory").
			WithContext("path", b.opts.OutputDir).
			WithContext("source", b.opts.SourceDir).
			Build()
	}
	return nil
}

// within reports whether path is dir or below it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
