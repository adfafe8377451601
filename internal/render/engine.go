package render

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/simplesite/internal/foundation/errors"
	"git.home.luguber.info/inful/simplesite/internal/locale"
	"git.home.luguber.info/inful/simplesite/internal/logfields"
	"git.home.luguber.info/inful/simplesite/internal/markdown"
	"git.home.luguber.info/inful/simplesite/internal/metrics"
	"git.home.luguber.info/inful/simplesite/internal/paths"
	"git.home.luguber.info/inful/simplesite/internal/util/sets"
)

// ErrRenderCycle indicates a page was requested while its own render was
// still in progress.
var ErrRenderCycle = errors.New("render cycle")

// CyclePolicy selects what happens when autolink re-enters a page that is
// still being rendered.
type CyclePolicy string

const (
	// CycleError aborts the build.
	CycleError CyclePolicy = "error"
	// CyclePartial links the page without title or description.
	CyclePartial CyclePolicy = "partial"
)

// ParseCyclePolicy validates s, defaulting to CycleError when empty.
func ParseCyclePolicy(s string) (CyclePolicy, error) {
	switch CyclePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", CycleError:
		return CycleError, nil
	case CyclePartial:
		return CyclePartial, nil
	default:
		return "", fmt.Errorf("unknown cycle policy %q (want %q or %q)", s, CycleError, CyclePartial)
	}
}

// Options configures an Engine.
type Options struct {
	// Locale is the active locale, empty for an unlocalized build.
	Locale string
	// Strings is the localization table, nil for an unlocalized build.
	Strings    *locale.Table
	OutputRoot string
	Mapper     paths.Mapper
	OnCycle    CyclePolicy
	Logger     *slog.Logger
	Recorder   metrics.Recorder
	Markdown   *markdown.Converter
	// Writer defaults to WriteFile.
	Writer PageWriter
}

// Engine renders the pages of one locale. It is not safe for concurrent use
// and must not be shared across locales.
type Engine struct {
	set  *Set
	opts Options

	rendered   sets.Set[string]
	inProgress sets.Set[string]
	stack      []string
}

// NewEngine returns an engine with an empty memo.
func NewEngine(set *Set, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Markdown == nil {
		opts.Markdown = markdown.NewConverter()
	}
	if opts.Writer == nil {
		opts.Writer = WriteFile
	}
	if opts.OnCycle == "" {
		opts.OnCycle = CycleError
	}
	if opts.Mapper == (paths.Mapper{}) {
		opts.Mapper = paths.NewMapper("", "")
	}
	if opts.Locale != "" {
		opts.Logger = opts.Logger.With(logfields.Locale(opts.Locale))
	}
	return &Engine{
		set:        set,
		opts:       opts,
		rendered:   sets.New[string](),
		inProgress: sets.New[string](),
	}
}

// Locale returns the engine's locale, empty when unlocalized.
func (e *Engine) Locale() string {
	return e.opts.Locale
}

// Rendered returns how many pages this engine has written.
func (e *Engine) Rendered() int {
	return e.rendered.Len()
}

// OutputPath returns where t renders to under this engine's locale.
func (e *Engine) OutputPath(t Template) string {
	return e.opts.Mapper.OutputPath(t.Name, e.opts.Locale, e.opts.OutputRoot)
}

// RenderAll renders every template of the set in discovery order.
func (e *Engine) RenderAll() error {
	for _, t := range e.set.Templates() {
		if _, err := e.Render(t); err != nil {
			return err
		}
	}
	return nil
}

// Render writes t to its output path and returns that path. A page already
// written by this engine is not evaluated again.
func (e *Engine) Render(t Template) (string, error) {
	out := e.OutputPath(t)
	if e.rendered.Has(out) {
		return out, nil
	}
	if e.inProgress.Has(out) {
		return out, e.cycleError(t, out)
	}

	e.inProgress.Add(out)
	e.stack = append(e.stack, t.Name)
	defer func() {
		e.inProgress.Delete(out)
		e.stack = e.stack[:len(e.stack)-1]
	}()

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return out, ferrors.WrapError(err, ferrors.CategoryFileSystem, "create page directory").
			Fatal().
			WithContext("path", filepath.Dir(out)).
			Build()
	}

	resolver := newResolver(e, t, out)
	content, err := e.set.execute(t.Name, e.funcs(resolver), e.pageData(t, out))
	if err != nil {
		// Failures raised by nested renders are already classified.
		if _, ok := ferrors.AsClassified(err); ok {
			return out, err
		}
		return out, ferrors.WrapError(err, ferrors.CategoryRender, "execute template").
			Fatal().
			WithContext("template", t.Name).
			WithContext("path", t.Source).
			Build()
	}

	if err := e.opts.Writer(out, content); err != nil {
		return out, ferrors.WrapError(err, ferrors.CategoryFileSystem, "write page").
			Fatal().
			WithContext("path", out).
			Build()
	}
	e.rendered.Add(out)
	e.opts.Recorder.IncPagesRendered(e.opts.Locale)
	e.opts.Logger.Debug("Rendered page", logfields.Template(t.Name), logfields.Output(out))
	return out, nil
}

// inFlight reports whether out is currently being rendered.
func (e *Engine) inFlight(out string) bool {
	return e.inProgress.Has(out)
}

func (e *Engine) cycleError(t Template, out string) error {
	e.opts.Recorder.IncRenderCycles(e.opts.Locale)
	chain := strings.Join(append(append([]string{}, e.stack...), t.Name), " -> ")
	return ferrors.WrapError(fmt.Errorf("%w: %s", ErrRenderCycle, chain), ferrors.CategoryRender, "autolink re-entered a page still being rendered").
		Fatal().
		WithContext("template", t.Name).
		WithContext("path", out).
		Build()
}
