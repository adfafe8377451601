package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/simplesite/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	SiteFlags `embed:""`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return RunBuild(ctx, g, root, &b.SiteFlags)
}

// RunBuild performs a single build with the given flags.
func RunBuild(ctx context.Context, g *Global, root *CLI, flags *SiteFlags) error {
	out := g.out()
	logger := g.logger()

	// Provide friendly user-facing messages on stdout.
	_, _ = fmt.Fprintln(out, "Starting simplesite build")

	settings, err := flags.resolve(root, logger)
	if err != nil {
		return err
	}

	report, err := site.NewBuilder(settings.Options).Build(ctx)
	settings.flushMetrics(logger)
	if err != nil {
		_, _ = fmt.Fprintln(out, "Build failed")
		return err
	}

	if report.Skipped {
		_, _ = fmt.Fprintf(out, "Nothing to build: %s declares no locales\n", settings.Options.StringsFile)
		return nil
	}
	printReport(g, report, settings.Options.OutputDir)
	_, _ = fmt.Fprintln(out, "Build completed successfully")
	return nil
}

func printReport(g *Global, report *site.Report, outputDir string) {
	out := g.out()
	if !report.Localized() {
		_, _ = fmt.Fprintf(out, "Rendered %d pages and %d assets into %s\n", report.Pages[""], report.Assets[""], outputDir)
		return
	}
	for _, loc := range report.Locales {
		_, _ = fmt.Fprintf(out, "  %-8s %d pages, %d assets (%s)\n", loc, report.Pages[loc], report.Assets[loc], report.AssetModes[loc])
	}
	_, _ = fmt.Fprintf(out, "Rendered %d pages in %d locales into %s\n", report.TotalPages(), len(report.Locales), outputDir)
}
