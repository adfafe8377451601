package site

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/simplesite/internal/foundation/errors"
	"git.home.luguber.info/inful/simplesite/internal/paths"
	"git.home.luguber.info/inful/simplesite/internal/render"
	"git.home.luguber.info/inful/simplesite/internal/util/sets"
)

// DiscoverTemplates walks sourceDir once and returns every template not named
// in the ignore list, in lexical walk order. Names are slash-separated and
// relative to sourceDir.
func DiscoverTemplates(sourceDir string, mapper paths.Mapper, ignored sets.Set[string]) ([]render.Template, error) {
	var templates []render.Template
	err := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !mapper.IsTemplate(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if ignored.Has(name) {
			return nil
		}
		templates = append(templates, render.Template{Name: name, Source: path})
		return nil
	})
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "discover templates").
			Fatal().
			WithContext("path", sourceDir).
			Build()
	}
	return templates, nil
}

// ReadIgnoreFile returns the template names listed in path, one per line.
// Blank lines and lines starting with # are skipped. A missing file yields
// an empty set.
func ReadIgnoreFile(path string) (sets.Set[string], error) {
	ignored := sets.New[string]()

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ignored, nil
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "open ignore file").
			WithContext("path", path).
			Build()
	}
	defer func() {
		_ = f.Close()
	}()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ignored.Add(filepath.ToSlash(strings.TrimPrefix(line, "./")))
	}
	if err := scanner.Err(); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read ignore file").
			WithContext("path", path).
			Build()
	}
	return ignored, nil
}
