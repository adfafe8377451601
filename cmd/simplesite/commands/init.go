package commands

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/simplesite/internal/config"
	ferrors "git.home.luguber.info/inful/simplesite/internal/foundation/errors"
)

//go:embed all:scaffold
var scaffold embed.FS

const scaffoldRoot = "scaffold"

// InitCmd implements the 'init' command.
type InitCmd struct {
	Dir   string `arg:"" type:"path" help:"Directory to create the starter site in"`
	Force bool   `help:"Overwrite existing files"`
}

func (i *InitCmd) Run(g *Global, _ *CLI) error {
	return RunInit(g, i.Dir, i.Force)
}

// RunInit writes the starter site and a configuration file into dir.
func RunInit(g *Global, dir string, force bool) error {
	out := g.out()
	// Provide friendly user-facing messages on stdout.
	_, _ = fmt.Fprintf(out, "Initializing simplesite project in %s\n", dir)

	files, err := scaffoldFiles()
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "read scaffold").Build()
	}
	if !force {
		for _, rel := range append(files, config.DefaultPath) {
			target := filepath.Join(dir, filepath.FromSlash(rel))
			if _, err := os.Stat(target); err == nil {
				_, _ = fmt.Fprintln(out, "Initialization failed")
				return ferrors.ValidationError("file already exists (use --force to overwrite)").
					WithContext("path", target).
					Build()
			}
		}
	}

	for _, rel := range files {
		if err := writeScaffoldFile(dir, rel); err != nil {
			return err
		}
	}
	if err := config.Init(filepath.Join(dir, config.DefaultPath), force); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, "initialized successfully")
	_, _ = fmt.Fprintf(out, "Next: cd %s && simplesite build src out\n", dir)
	return nil
}

// scaffoldFiles returns the slash-separated paths of every scaffold file,
// relative to the scaffold root.
func scaffoldFiles() ([]string, error) {
	var files []string
	err := fs.WalkDir(scaffold, scaffoldRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, ok := strings.CutPrefix(p, scaffoldRoot+"/")
		if !ok {
			return errors.New("unexpected scaffold path " + p)
		}
		files = append(files, rel)
		return nil
	})
	return files, err
}

func writeScaffoldFile(dir, rel string) error {
	data, err := scaffold.ReadFile(path.Join(scaffoldRoot, rel))
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "read scaffold file").Build()
	}
	target := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "create directory").
			WithContext("path", filepath.Dir(target)).
			Build()
	}
	if err := os.WriteFile(target, data, 0o644); err != nil { // #nosec G306 -- site sources are public
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "write scaffold file").
			WithContext("path", target).
			Build()
	}
	return nil
}
