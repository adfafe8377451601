// Package assets replicates non-template source files into each locale's
// output directory, either as full copies or as relative symlinks into the
// primary locale's copy.
package assets

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/simplesite/internal/foundation/errors"
	"git.home.luguber.info/inful/simplesite/internal/logfields"
	"git.home.luguber.info/inful/simplesite/internal/util/sets"
)

// ErrAssetCollision indicates a symlink could not be created because the path is taken.
var ErrAssetCollision = errors.New("asset path already exists")

// Mode names how a locale received its assets.
type Mode string

const (
	ModeCopy    Mode = "copy"
	ModeSymlink Mode = "symlink"
)

// Replicator walks a source tree and mirrors its assets.
type Replicator struct {
	isTemplate func(name string) bool
	exclude    sets.Set[string]
	logger     *slog.Logger
}

// NewReplicator returns a Replicator treating files accepted by isTemplate as
// templates. exclude lists slash-separated source-relative paths that are
// never replicated.
func NewReplicator(isTemplate func(name string) bool, logger *slog.Logger, exclude ...string) *Replicator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Replicator{
		isTemplate: isTemplate,
		exclude:    sets.New(exclude...),
		logger:     logger,
	}
}

// List returns the source-relative paths of all assets under sourceDir in
// lexical walk order.
func (r *Replicator) List(sourceDir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		if r.isTemplate(d.Name()) || r.exclude.Has(filepath.ToSlash(rel)) {
			return nil
		}

		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			r.logger.Debug("Skipping non-regular source entry", logfields.Path(rel))
			return nil
		}

		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "walk source assets").
			Fatal().
			WithContext("path", sourceDir).
			Build()
	}
	return out, nil
}

// CopyAssets copies every asset from sourceDir into localeDir, creating
// directories as needed and overwriting existing files.
func (r *Replicator) CopyAssets(sourceDir, localeDir string) (int, error) {
	files, err := r.List(sourceDir)
	if err != nil {
		return 0, err
	}

	for _, rel := range files {
		src := filepath.Join(sourceDir, rel)
		dst := filepath.Join(localeDir, rel)
		if err := copyFile(src, dst); err != nil {
			return 0, ferrors.WrapError(err, ferrors.CategoryFileSystem, "copy asset").
				Fatal().
				WithContext("path", dst).
				WithContext("source", src).
				Build()
		}
	}

	r.logger.Debug("Assets copied", logfields.Output(localeDir), logfields.Count(len(files)))
	return len(files), nil
}

// SymlinkAssets mirrors every asset under sourceDir into localeDir as a
// relative symlink pointing at the same file under primaryLocaleDir. The
// primary copies must already exist.
func (r *Replicator) SymlinkAssets(sourceDir, localeDir, primaryLocaleDir string) (int, error) {
	files, err := r.List(sourceDir)
	if err != nil {
		return 0, err
	}

	for _, rel := range files {
		link := filepath.Join(localeDir, rel)
		if err := Symlink(rel, localeDir, primaryLocaleDir); err != nil {
			return 0, ferrors.WrapError(err, ferrors.CategoryFileSystem, "link asset").
				Fatal().
				WithContext("path", link).
				Build()
		}
	}

	r.logger.Debug("Assets linked", logfields.Output(localeDir), logfields.Count(len(files)))
	return len(files), nil
}

// Symlink creates localeDir/rel as a relative link to primaryLocaleDir/rel,
// e.g. out/jp/img/cat.jpg -> ../../en/img/cat.jpg.
func Symlink(rel, localeDir, primaryLocaleDir string) error {
	link := filepath.Join(localeDir, rel)
	primary := filepath.Join(primaryLocaleDir, rel)

	target, err := LinkTarget(filepath.Dir(link), primary)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(link), 0o755); err != nil {
		return fmt.Errorf("create link directory: %w", err)
	}

	if err := os.Symlink(target, link); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrAssetCollision, link)
		}
		return err
	}
	return nil
}

// LinkTarget returns the path to file relative to linkDir.
func LinkTarget(linkDir, file string) (string, error) {
	relDir, err := filepath.Rel(linkDir, filepath.Dir(file))
	if err != nil {
		return "", fmt.Errorf("compute relative link target: %w", err)
	}
	return filepath.Join(relDir, filepath.Base(file)), nil
}

// copyFile copies a single file from src to dst, preserving its permissions.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}
	defer func() {
		_ = srcFile.Close()
	}()

	info, err := srcFile.Stat()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	// #nosec G304 -- dst is derived from the walked source tree and the output root.
	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return err
	}
	if err := dstFile.Close(); err != nil {
		return err
	}
	return os.Chmod(dst, info.Mode().Perm())
}
