package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/simplesite/internal/config"
	ferrors "git.home.luguber.info/inful/simplesite/internal/foundation/errors"
	"git.home.luguber.info/inful/simplesite/internal/locale"
	"git.home.luguber.info/inful/simplesite/internal/paths"
	"git.home.luguber.info/inful/simplesite/internal/site"
)

// ListCmd implements the 'list' command.
type ListCmd struct {
	Source      string `arg:"" type:"existingdir" help:"Source directory with templates and assets"`
	Strings     string `short:"s" type:"path" help:"Localization table, TOML or YAML (default strings.toml, optional)"`
	TemplateExt string `name:"template-ext" help:"Extension marking template files (default .tmpl)"`
}

func (l *ListCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Load(root.Config, root.Config != config.DefaultPath)
	if err != nil {
		return err
	}
	if l.TemplateExt != "" {
		cfg.TemplateExtension = l.TemplateExt
		if err := cfg.Validate(); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryValidation, "invalid list settings").Build()
		}
	}
	mapper := paths.NewMapper(cfg.TemplateExtension, cfg.OutputExtension)

	stringsFile, required := cfg.StringsFile, cfg.StringsFile != locale.DefaultPath
	if l.Strings != "" {
		stringsFile, required = l.Strings, true
	}
	var locales []string
	if required || locale.Exists(stringsFile) {
		table, err := locale.Load(stringsFile)
		if err != nil {
			return err
		}
		locales = table.Locales()
	}
	if len(locales) == 0 {
		locales = []string{""}
	}

	ignored, err := site.ReadIgnoreFile(filepath.Join(l.Source, cfg.IgnoreFile))
	if err != nil {
		return err
	}
	templates, err := site.DiscoverTemplates(l.Source, mapper, ignored)
	if err != nil {
		return err
	}

	out := g.out()
	for _, t := range templates {
		for _, loc := range locales {
			_, _ = fmt.Fprintf(out, "%s\t%s\n", t.Name, filepath.ToSlash(mapper.OutputPath(t.Name, loc, "")))
		}
	}
	_, _ = fmt.Fprintf(out, "%d templates, %d ignored\n", len(templates), ignored.Len())
	return nil
}
