package render

import (
	"errors"
	"fmt"
	"iter"
	"path"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/simplesite/internal/foundation/errors"
	"git.home.luguber.info/inful/simplesite/internal/logfields"
	"git.home.luguber.info/inful/simplesite/internal/paths"
)

// ErrDirectoryOutsideRoot indicates an autolink directory that escapes the source root.
var ErrDirectoryOutsideRoot = errors.New("directory is outside the source root")

// Link is one autolink result.
type Link struct {
	// URL is relative to the calling page's directory, slash-separated.
	URL            string
	Title          string
	Description    string
	HasDescription bool
	// Page is the target template's logical name.
	Page string
}

// Resolver answers autolink queries on behalf of one page.
type Resolver struct {
	engine *Engine
	origin Template
	out    string
}

func newResolver(e *Engine, origin Template, out string) *Resolver {
	return &Resolver{engine: e, origin: origin, out: out}
}

// Resolve collects Links, stopping at the first error.
func (r *Resolver) Resolve(dir string) ([]Link, error) {
	var links []Link
	for link, err := range r.Links(dir) {
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, nil
}

// Links yields a link for every template directly inside dir, in discovery
// order, rendering each target first if needed. dir is relative to the
// calling template's directory, or to the source root when it starts with a
// slash. The calling page never links to itself.
func (r *Resolver) Links(dir string) iter.Seq2[Link, error] {
	return func(yield func(Link, error) bool) {
		target, err := ResolveDir(r.origin.Name, dir)
		if err != nil {
			yield(Link{}, ferrors.WrapError(err, ferrors.CategoryValidation, "invalid autolink directory").
				WithContext("template", r.origin.Name).
				WithContext("directory", dir).
				Build())
			return
		}
		r.engine.opts.Recorder.IncAutolinkQueries(r.engine.opts.Locale)

		for _, t := range r.engine.set.Templates() {
			if t.Name == r.origin.Name || paths.TemplateDir(t.Name) != target {
				continue
			}
			link, err := r.link(t)
			if !yield(link, err) || err != nil {
				return
			}
		}
	}
}

func (r *Resolver) link(t Template) (Link, error) {
	e := r.engine
	targetOut := e.OutputPath(t)

	url, err := relativeURL(filepath.Dir(r.out), targetOut)
	if err != nil {
		return Link{}, ferrors.WrapError(err, ferrors.CategoryInternal, "compute autolink url").
			WithContext("path", targetOut).
			Build()
	}
	link := Link{URL: url, Page: t.Name}

	if e.inFlight(targetOut) && e.opts.OnCycle == CyclePartial {
		e.opts.Recorder.IncRenderCycles(e.opts.Locale)
		e.opts.Logger.Warn("Autolink target is still rendering; linking without metadata",
			logfields.Template(r.origin.Name),
			logfields.Target(t.Name))
		return link, nil
	}

	if _, err := e.Render(t); err != nil {
		return Link{}, err
	}

	md, err := ReadMetadata(targetOut)
	if err != nil {
		return Link{}, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read rendered page").
			Fatal().
			WithContext("path", targetOut).
			Build()
	}
	link.Title = md.Title
	link.Description = md.Description
	link.HasDescription = md.HasDescription
	return link, nil
}

// ResolveDir resolves requested against the directory of the template named
// origin and returns the cleaned logical directory, "." for the source root.
func ResolveDir(origin, requested string) (string, error) {
	requested = filepath.ToSlash(requested)

	var dir string
	if strings.HasPrefix(requested, "/") {
		dir = path.Clean("." + requested)
	} else {
		dir = path.Join(paths.TemplateDir(origin), requested)
	}

	if dir == ".." || strings.HasPrefix(dir, "../") {
		return "", fmt.Errorf("%w: %q from %q", ErrDirectoryOutsideRoot, requested, origin)
	}
	return dir, nil
}

func relativeURL(fromDir, to string) (string, error) {
	rel, err := filepath.Rel(fromDir, to)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}
